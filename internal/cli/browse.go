// internal/cli/browse.go
package benchlens

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mwiater/benchlens/internal/appconfig"
	"github.com/mwiater/benchlens/internal/backend"
	"github.com/mwiater/benchlens/internal/tui"
)

var browseOpts queryOptions

// browseCmd implements 'browse', the interactive table. The query runs
// inside the browser so the spinner shows while it is in flight.
var browseCmd = &cobra.Command{
	Use:         "browse",
	Short:       "Browse a query result in an interactive heat-shaded table",
	Annotations: map[string]string{quietLogAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := GetConfig()
		if cfg == nil {
			cfg = &appconfig.Config{}
		}
		st, err := browseOpts.newStore(ctx, cmd, cfg, backend.New(cfg))
		if err != nil {
			return err
		}
		if browseOpts.input == stdinInput {
			return errors.New("browse reads keys from the terminal; pass --input a file")
		}
		if browseOpts.input != "" {
			if err := loadInput(st, browseOpts.input, nil); err != nil {
				return err
			}
		}

		m := tui.New(ctx, st, queryTitle(st))
		if s, err := parseSort(browseOpts.sort); err != nil {
			return err
		} else if s.Column != "" {
			m.SetSort(s)
		}
		return tui.Run(ctx, m)
	},
}

func init() {
	browseOpts.addFlags(browseCmd)
	rootCmd.AddCommand(browseCmd)
}
