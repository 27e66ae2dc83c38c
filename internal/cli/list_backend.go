// internal/cli/list_backend.go
package benchlens

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwiater/benchlens/internal/appconfig"
	"github.com/mwiater/benchlens/internal/backend"
	"github.com/mwiater/benchlens/internal/util"
)

var reportSearch string

// maxTitleWidth caps report titles in listings.
const maxTitleWidth = 60

func newClient() *backend.Client {
	cfg := GetConfig()
	if cfg == nil {
		cfg = &appconfig.Config{}
	}
	return backend.New(cfg)
}

// entitiesCmd implements 'list entities'.
var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "List the institutions available for filtering",
	RunE: func(cmd *cobra.Command, args []string) error {
		entities, err := newClient().Entities(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		width := len("ID")
		for _, e := range entities {
			width = max(width, util.DisplayWidth(e.ID))
		}
		fmt.Fprintf(out, "%s  %s\n", util.PadRight("ID", width), "Name")
		for _, e := range entities {
			line := fmt.Sprintf("%s  %s", util.PadRight(e.ID, width), e.Name)
			if e.Type != "" {
				line += " " + dimColor("("+e.Type+")")
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprintf(out, "%d entities\n", len(entities))
		return nil
	},
}

// dimensionValuesCmd implements 'list dimension-values <dimension>'.
var dimensionValuesCmd = &cobra.Command{
	Use:   "dimension-values <dimension>",
	Short: "List the distinct values of a dimension",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := newClient().DimensionValues(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, v := range values {
			fmt.Fprintln(out, v)
		}
		if len(values) == 0 {
			fmt.Fprintln(out, warnColor("No values"))
		}
		return nil
	},
}

// reportsCmd implements 'list reports'.
var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List saved reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		reports, err := newClient().Reports(cmd.Context(), reportSearch)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		width := len("ID")
		for _, r := range reports {
			width = max(width, util.DisplayWidth(r.ID))
		}
		for _, r := range reports {
			line := fmt.Sprintf("%s  %s  %s", util.PadRight(r.ID, width), util.TruncateToWidth(r.Title, maxTitleWidth), dimColor("["+r.ChartType.String()+"]"))
			if len(r.Tags) > 0 {
				line += " " + dimColor(strings.Join(r.Tags, ", "))
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprintf(out, "%d reports\n", len(reports))
		return nil
	},
}

func init() {
	reportsCmd.Flags().StringVarP(&reportSearch, "search", "s", "", "filter reports by title")
	listCmd.AddCommand(entitiesCmd)
	listCmd.AddCommand(dimensionValuesCmd)
	listCmd.AddCommand(reportsCmd)
}
