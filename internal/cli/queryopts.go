// internal/cli/queryopts.go
package benchlens

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwiater/benchlens/internal/appconfig"
	"github.com/mwiater/benchlens/internal/backend"
	"github.com/mwiater/benchlens/internal/chart"
	"github.com/mwiater/benchlens/internal/logging"
	"github.com/mwiater/benchlens/internal/result"
	"github.com/mwiater/benchlens/internal/store"
	"github.com/mwiater/benchlens/internal/tableview"
)

// queryOptions are the flags shared by every command that builds a query or
// a chart from one.
type queryOptions struct {
	metrics     []string
	groupBy     []string
	entities    []string
	yearStart   int
	yearEnd     int
	dimensions  []string
	aggregation string
	chartType   string
	labels      bool
	legend      bool
	grid        bool
	sort        string
	report      string
	reportID    string
	input       string
}

func (o *queryOptions) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceVarP(&o.metrics, "metric", "m", nil, "metric id to query (repeatable)")
	f.StringSliceVarP(&o.groupBy, "group-by", "g", nil, "dimension to group by, in order (repeatable)")
	f.StringSliceVar(&o.entities, "entity", nil, "restrict to an entity id (repeatable)")
	f.IntVar(&o.yearStart, "from", 0, "first fiscal year")
	f.IntVar(&o.yearEnd, "to", 0, "last fiscal year")
	f.StringArrayVar(&o.dimensions, "dim", nil, "dimension filter name=value[,value...] (repeatable)")
	f.StringVarP(&o.aggregation, "agg", "a", "", "aggregation: "+aggregationNames())
	f.StringVarP(&o.chartType, "type", "t", "", "chart type: "+strings.Join(chartTypeNames(), ", "))
	f.BoolVar(&o.labels, "labels", false, "show data labels")
	f.BoolVar(&o.legend, "legend", true, "show the legend")
	f.BoolVar(&o.grid, "grid", true, "show grid lines")
	f.StringVar(&o.sort, "sort", "", "table sort column, optionally suffixed with :desc")
	f.StringVar(&o.report, "report", "", "load the query from a saved report JSON file")
	f.StringVar(&o.reportID, "report-id", "", "load the query from a saved report on the backend")
	f.StringVarP(&o.input, "input", "i", "", "read the result from a JSON file (- for stdin) instead of querying")
}

func aggregationNames() string {
	names := make([]string, len(backend.Aggregations))
	for i, a := range backend.Aggregations {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

func chartTypeNames() []string {
	types := chart.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}

// parseSort reads "column" or "column:asc|desc".
func parseSort(s string) (tableview.Sort, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return tableview.Sort{}, nil
	}
	col, dir, found := strings.Cut(s, ":")
	out := tableview.Sort{Column: strings.TrimSpace(col)}
	if !found {
		return out, nil
	}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "asc":
	case "desc":
		out.Direction = tableview.Desc
	default:
		return tableview.Sort{}, fmt.Errorf("unknown sort direction %q", dir)
	}
	return out, nil
}

// parseDimensions turns name=v1,v2 flags into dimension filters.
func parseDimensions(flags []string) (map[string][]string, error) {
	out := map[string][]string{}
	for _, f := range flags {
		name, values, ok := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid dimension filter %q (want name=value[,value...])", f)
		}
		for _, v := range strings.Split(values, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out[name] = append(out[name], v)
			}
		}
	}
	return out, nil
}

// newStore builds a store seeded from cfg, then a saved report if one was
// given, then the explicit flags.
func (o *queryOptions) newStore(ctx context.Context, cmd *cobra.Command, cfg *appconfig.Config, client *backend.Client) (*store.Store, error) {
	st := store.New(client, store.DefaultsFromConfig(*cfg))

	switch {
	case o.report != "":
		r, err := st.LoadReport(o.report)
		if err != nil {
			return nil, err
		}
		logging.LogEvent("cli: loaded report %q from %s", r.Title, o.report)
	case o.reportID != "":
		r, err := client.Report(ctx, o.reportID)
		if err != nil {
			return nil, fmt.Errorf("load report %s: %w", o.reportID, err)
		}
		st.LoadFromReport(*r)
		logging.LogEvent("cli: loaded report %q (%s)", r.Title, r.ID)
	}

	flags := cmd.Flags()
	if flags.Changed("metric") {
		st.SetMetrics(o.metrics)
	}
	if flags.Changed("group-by") {
		st.SetGroupBy(o.groupBy)
	}
	if flags.Changed("entity") || flags.Changed("from") || flags.Changed("to") || flags.Changed("dim") {
		filters := st.Snapshot().Filters
		if flags.Changed("entity") {
			filters.EntityIDs = o.entities
		}
		if flags.Changed("from") {
			year := o.yearStart
			filters.FiscalYearStart = &year
		}
		if flags.Changed("to") {
			year := o.yearEnd
			filters.FiscalYearEnd = &year
		}
		if flags.Changed("dim") {
			dims, err := parseDimensions(o.dimensions)
			if err != nil {
				return nil, err
			}
			filters.DimensionFilters = dims
		}
		st.SetFilters(filters)
	}
	if flags.Changed("agg") {
		agg, err := backend.ParseAggregation(o.aggregation)
		if err != nil {
			return nil, err
		}
		st.SetAggregation(agg)
	}
	if flags.Changed("type") {
		t, err := chart.ParseTypeStrict(o.chartType)
		if err != nil {
			return nil, err
		}
		st.SetChartType(t)
	}

	var patch store.ChartConfigPatch
	if flags.Changed("labels") {
		patch.ShowDataLabels = &o.labels
	}
	if flags.Changed("legend") {
		patch.ShowLegend = &o.legend
	}
	if flags.Changed("grid") {
		patch.ShowGrid = &o.grid
	}
	st.SetChartConfig(patch)
	return st, nil
}

// run builds the store and fills it with a result, either from --input or
// by executing the query.
func (o *queryOptions) run(cmd *cobra.Command) (*store.Store, error) {
	ctx := cmd.Context()
	cfg := GetConfig()
	if cfg == nil {
		cfg = &appconfig.Config{}
	}
	client := backend.New(cfg)
	st, err := o.newStore(ctx, cmd, cfg, client)
	if err != nil {
		return nil, err
	}

	if o.input != "" {
		if err := loadInput(st, o.input, cmd.InOrStdin()); err != nil {
			return nil, err
		}
		return st, nil
	}
	if err := st.Execute(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

// stdinInput names standard input as the --input source.
const stdinInput = "-"

// loadInput installs a result read from a JSON file, or from in when path
// is "-".
func loadInput(st *store.Store, path string, in io.Reader) error {
	var (
		res *result.Result
		err error
	)
	if path == stdinInput {
		res, err = result.Read(in)
		path = "stdin"
	} else {
		res, err = result.Load(path)
	}
	if err != nil {
		return err
	}
	st.SetResult(res)
	logging.LogEvent("cli: loaded %d rows from %s", len(res.Rows), path)
	return nil
}

// queryTitle names the output after the selected metrics.
func queryTitle(st *store.Store) string {
	snap := st.Snapshot()
	if len(snap.MetricIDs) == 0 {
		return "benchlens"
	}
	return strings.Join(snap.MetricIDs, ", ")
}
