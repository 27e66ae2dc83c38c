// internal/store/store.go
// Package store holds the query builder state and the current result. It is
// the single writer of the result; views derived from it are memoized by
// result identity.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/mwiater/benchlens/internal/appconfig"
	"github.com/mwiater/benchlens/internal/backend"
	"github.com/mwiater/benchlens/internal/chart"
	"github.com/mwiater/benchlens/internal/logging"
	"github.com/mwiater/benchlens/internal/result"
	"github.com/mwiater/benchlens/internal/transform"
)

// ErrNoMetrics is returned by Execute when no metric is selected.
var ErrNoMetrics = errors.New("Select at least one metric")

// Fetcher runs explore queries. *backend.Client implements it.
type Fetcher interface {
	Explore(ctx context.Context, req backend.ExploreRequest) (*result.Result, error)
}

// Defaults seed a fresh store and are restored by Reset.
type Defaults struct {
	Aggregation backend.Aggregation
	ChartType   chart.Type
	ChartConfig chart.Config
	SortBy      string
	SortOrder   string
	Limit       int
}

// DefaultsFromConfig reads query and chart defaults from cfg.
func DefaultsFromConfig(cfg appconfig.Config) Defaults {
	agg, err := backend.ParseAggregation(cfg.Aggregation())
	if err != nil {
		agg = backend.AggSum
	}
	return Defaults{
		Aggregation: agg,
		ChartType:   cfg.DefaultChartType(),
		ChartConfig: cfg.ChartConfig(),
		SortBy:      cfg.SortBy(),
		SortOrder:   cfg.SortOrder(),
		Limit:       cfg.QueryLimit(),
	}
}

// ChartConfigPatch updates only the toggles that are set.
type ChartConfigPatch struct {
	ShowDataLabels *bool
	ShowLegend     *bool
	ShowGrid       *bool
}

// Snapshot is a copy of the store state safe to read without locking.
type Snapshot struct {
	MetricIDs   []string
	GroupBy     []string
	Filters     backend.Filters
	Aggregation backend.Aggregation
	ChartType   chart.Type
	ChartConfig chart.Config
	Result      *result.Result
	Loading     bool
	Error       string
	Generation  uint64
}

// Store is the query builder state machine.
type Store struct {
	mu       sync.Mutex
	fetcher  Fetcher
	defaults Defaults

	metricIDs   []string
	groupBy     []string
	filters     backend.Filters
	aggregation backend.Aggregation
	chartType   chart.Type
	chartConfig chart.Config

	res     *result.Result
	loading bool
	err     string
	gen     uint64

	memo transform.Memo
}

// New creates a store with the given defaults.
func New(f Fetcher, d Defaults) *Store {
	if d.Aggregation == "" {
		d.Aggregation = backend.AggSum
	}
	if d.Limit <= 0 {
		d.Limit = 500
	}
	if d.SortBy == "" {
		d.SortBy = "value"
	}
	if d.SortOrder == "" {
		d.SortOrder = "desc"
	}
	s := &Store{fetcher: f, defaults: d}
	s.resetLocked()
	return s
}

func (s *Store) resetLocked() {
	s.metricIDs = []string{}
	s.groupBy = []string{}
	s.filters = backend.EmptyFilters()
	s.aggregation = s.defaults.Aggregation
	s.chartType = s.defaults.ChartType
	s.chartConfig = s.defaults.ChartConfig
	s.res = nil
	s.loading = false
	s.err = ""
	s.memo.Reset()
}

// SetMetrics selects the metrics to query.
func (s *Store) SetMetrics(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metricIDs = slices.Clone(ids)
}

// SetGroupBy sets the grouping dimensions in order.
func (s *Store) SetGroupBy(dims []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groupBy = slices.Clone(dims)
}

// SetFilters replaces the filters; nil lists and maps become empty.
func (s *Store) SetFilters(f backend.Filters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.EntityIDs == nil {
		f.EntityIDs = []string{}
	}
	if f.DimensionFilters == nil {
		f.DimensionFilters = map[string][]string{}
	}
	s.filters = f
}

// SetAggregation sets the aggregation sent with the query.
func (s *Store) SetAggregation(a backend.Aggregation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aggregation = a
}

// SetChartType selects the chart drawn from the current result.
func (s *Store) SetChartType(t chart.Type) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chartType = t
}

// SetChartConfig applies the set fields of p over the current config.
func (s *Store) SetChartConfig(p ChartConfigPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ShowDataLabels != nil {
		s.chartConfig.ShowDataLabels = *p.ShowDataLabels
	}
	if p.ShowLegend != nil {
		s.chartConfig.ShowLegend = *p.ShowLegend
	}
	if p.ShowGrid != nil {
		s.chartConfig.ShowGrid = *p.ShowGrid
	}
}

// Request builds the explore request from the current state.
func (s *Store) Request() backend.ExploreRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestLocked()
}

func (s *Store) requestLocked() backend.ExploreRequest {
	return backend.ExploreRequest{
		MetricIDs:   slices.Clone(s.metricIDs),
		GroupBy:     slices.Clone(s.groupBy),
		Filters:     s.filters,
		Aggregation: s.aggregation,
		SortBy:      s.defaults.SortBy,
		SortOrder:   s.defaults.SortOrder,
		Limit:       s.defaults.Limit,
	}
}

// Execute runs the current query. Each call takes a new generation; a
// response that arrives after a newer Execute, Reset or LoadFromReport is
// dropped. On failure the error is recorded and the previous result is kept.
func (s *Store) Execute(ctx context.Context) error {
	s.mu.Lock()
	if len(s.metricIDs) == 0 {
		s.err = ErrNoMetrics.Error()
		s.mu.Unlock()
		return ErrNoMetrics
	}
	s.gen++
	gen := s.gen
	req := s.requestLocked()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	logging.LogEvent("store: executing query generation=%d metrics=%v group_by=%v", gen, req.MetricIDs, req.GroupBy)
	res, err := s.fetcher.Explore(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		logging.LogEvent("store: dropped stale response generation=%d current=%d", gen, s.gen)
		return nil
	}
	s.loading = false
	if err != nil {
		s.err = err.Error()
		if s.err == "" {
			s.err = "Query failed"
		}
		return err
	}
	s.res = res
	logging.LogEvent("store: generation=%d returned %d rows", gen, len(res.Rows))
	return nil
}

// SetResult installs a result obtained outside Execute, such as one read
// from a file. Any in-flight query is invalidated.
func (s *Store) SetResult(res *result.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.res = res
	s.err = ""
	s.loading = false
}

// LoadFromReport replaces the builder state with a saved report and clears
// the result. Any in-flight query is invalidated.
func (s *Store) LoadFromReport(r backend.SavedReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	qc := r.QueryConfig
	s.metricIDs = slices.Clone(qc.MetricIDs)
	if s.metricIDs == nil {
		s.metricIDs = []string{}
	}
	s.groupBy = slices.Clone(qc.GroupBy)
	if s.groupBy == nil {
		s.groupBy = []string{}
	}
	s.filters = qc.Filters
	if s.filters.EntityIDs == nil {
		s.filters.EntityIDs = []string{}
	}
	if s.filters.DimensionFilters == nil {
		s.filters.DimensionFilters = map[string][]string{}
	}
	s.aggregation = qc.Aggregation
	if s.aggregation == "" {
		s.aggregation = s.defaults.Aggregation
	}
	s.chartType = r.ChartType
	s.chartConfig = s.defaults.ChartConfig
	if r.ChartConfig != nil {
		s.chartConfig = *r.ChartConfig
	}
	s.res = nil
	s.err = ""
	s.loading = false
	s.gen++
	s.memo.Reset()
}

// LoadReport reads a saved report JSON file into the store.
func (s *Store) LoadReport(path string) (backend.SavedReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return backend.SavedReport{}, fmt.Errorf("could not read report %q: %w", path, err)
	}
	var r backend.SavedReport
	if err := json.Unmarshal(data, &r); err != nil {
		return backend.SavedReport{}, fmt.Errorf("could not parse report %q: %w", path, err)
	}
	s.LoadFromReport(r)
	return r, nil
}

// Reset restores the defaults and invalidates any in-flight query.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.gen++
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		MetricIDs:   slices.Clone(s.metricIDs),
		GroupBy:     slices.Clone(s.groupBy),
		Filters:     s.filters,
		Aggregation: s.aggregation,
		ChartType:   s.chartType,
		ChartConfig: s.chartConfig,
		Result:      s.res,
		Loading:     s.loading,
		Error:       s.err,
		Generation:  s.gen,
	}
}

// Result returns the current result, or nil.
func (s *Store) Result() *result.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.res
}

// View returns the memoized transform view of the current result.
func (s *Store) View() transform.View {
	s.mu.Lock()
	res := s.res
	s.mu.Unlock()
	return s.memo.Get(res)
}

// Grid lays out the current result with the selected chart type and config.
func (s *Store) Grid() chart.Grid {
	s.mu.Lock()
	res, t, cfg := s.res, s.chartType, s.chartConfig
	s.mu.Unlock()
	return chart.BuildGridView(res, s.memo.Get(res), t, cfg)
}

// Computations reports how often the derived view has been rebuilt.
func (s *Store) Computations() int {
	return s.memo.Computations()
}
