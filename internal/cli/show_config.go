// internal/cli/show_config.go
package benchlens

import (
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/mwiater/benchlens/internal/appconfig"
)

// showConfigCmd implements 'show config', which prints the merged
// configuration so file values and flag overrides can be checked.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON configs are loaded properly and overridden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		cfg := GetConfig()
		appconfig.ShowConfig(out, loadedConfig, cfg, appconfig.Config{})
		if cfg != nil && cfg.Debug {
			pp.ColoringEnabled = false
			_, _ = pp.Fprintln(out, cfg)
		}
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
}
