// internal/cli/query.go
package benchlens

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwiater/benchlens/internal/chart"
	"github.com/mwiater/benchlens/internal/tableview"
	"github.com/mwiater/benchlens/internal/tui"
)

var (
	queryOpts   queryOptions
	queryFormat string
)

// queryCmd implements 'query', which runs an explore query and prints the
// result as a table or as one of the derived JSON views.
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run an explore query and print the result",
	Long: `Run an explore query and print the result.

Formats:
  table   heat-shaded table of every row (default)
  json    the raw result
  series  the chart-ready series pivot
  grid    the chart plan, including facet panels`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := queryOpts.run(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		var payload any
		switch strings.ToLower(queryFormat) {
		case "", "table":
			s, err := parseSort(queryOpts.sort)
			if err != nil {
				return err
			}
			view := tableview.New(st.Result())
			view.SetSort(s)
			if view.Len() == 0 {
				fmt.Fprintln(out, warnColor("No data to display"))
				return nil
			}
			fmt.Fprintln(out, tui.RenderRows(view, view.Sorted(), -1))
			fmt.Fprintf(out, "%d rows\n", view.Len())
			fmt.Fprintf(out, "Recommended charts: %s\n", recommendedLabels(len(st.Snapshot().GroupBy)))
			return nil
		case "json":
			payload = st.Result()
		case "series":
			payload = st.View().Series
		case "grid":
			payload = st.Grid()
		default:
			return fmt.Errorf("unknown format %q (want table, json, series or grid)", queryFormat)
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	},
}

func recommendedLabels(groupBy int) string {
	types := chart.Recommended(groupBy)
	labels := make([]string, len(types))
	for i, t := range types {
		labels[i] = t.Label()
	}
	return strings.Join(labels, ", ")
}

func init() {
	queryOpts.addFlags(queryCmd)
	queryCmd.Flags().StringVarP(&queryFormat, "format", "f", "table", "output format: table, json, series, grid")
	rootCmd.AddCommand(queryCmd)
}
