// internal/cli/verify.go
package benchlens

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwiater/benchlens/internal/appconfig"
	"github.com/mwiater/benchlens/internal/backend"
	"github.com/mwiater/benchlens/internal/store"
	"github.com/mwiater/benchlens/internal/util"
)

const sqlWrapWidth = 100

var verifyOpts queryOptions

// verifyCmd implements 'verify', which cross-checks a query against the raw
// SQL the backend generates for it.
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Cross-check a query against raw SQL",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := GetConfig()
		if cfg == nil {
			cfg = &appconfig.Config{}
		}
		client := backend.New(cfg)
		st, err := verifyOpts.newStore(ctx, cmd, cfg, client)
		if err != nil {
			return err
		}
		req := st.Request()
		if len(req.MetricIDs) == 0 {
			return store.ErrNoMetrics
		}

		v, err := client.Verify(ctx, req)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if v.Match {
			fmt.Fprintf(out, "%s analytics and raw SQL results match\n", okColor("✔ MATCH"))
		} else {
			fmt.Fprintf(out, "%s %d discrepancies\n", failColor("✘ MISMATCH"), len(v.Discrepancies))
			for _, d := range v.Discrepancies {
				fmt.Fprintf(out, "  - %s\n", d)
			}
		}
		if v.AnalyticsResult != nil {
			fmt.Fprintf(out, "Analytics rows: %d, raw rows: %d\n", len(v.AnalyticsResult.Rows), len(v.RawQueryResult))
		}
		if v.RawSQL != "" {
			fmt.Fprintln(out, "\nRaw SQL:")
			fmt.Fprintln(out, dimColor(util.WrapToWidth(v.RawSQL, sqlWrapWidth)))
		}
		return nil
	},
}

func init() {
	verifyOpts.addFlags(verifyCmd)
	rootCmd.AddCommand(verifyCmd)
}
