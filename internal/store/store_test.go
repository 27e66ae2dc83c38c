package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/benchlens/internal/appconfig"
	"github.com/mwiater/benchlens/internal/backend"
	"github.com/mwiater/benchlens/internal/chart"
	"github.com/mwiater/benchlens/internal/result"
	"github.com/mwiater/benchlens/internal/transform"
)

type fetchFunc func(ctx context.Context, req backend.ExploreRequest) (*result.Result, error)

func (f fetchFunc) Explore(ctx context.Context, req backend.ExploreRequest) (*result.Result, error) {
	return f(ctx, req)
}

func rows(n int) *result.Result {
	res := &result.Result{Columns: []result.Column{
		{Name: "institution", Type: result.TypeString},
		{Name: "value", Type: result.TypeNumber},
	}}
	for i := 0; i < n; i++ {
		res.Rows = append(res.Rows, result.Row{"institution": string(rune('A' + i)), "value": float64(i)})
	}
	return res
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	s := New(nil, Defaults{})
	snap := s.Snapshot()
	assert.Empty(t, snap.MetricIDs)
	assert.Equal(t, backend.AggSum, snap.Aggregation)
	assert.Equal(t, chart.Bar, snap.ChartType)
	assert.Nil(t, snap.Result)

	req := s.Request()
	assert.Equal(t, "value", req.SortBy)
	assert.Equal(t, "desc", req.SortOrder)
	assert.Equal(t, 500, req.Limit)
	assert.NotNil(t, req.Filters.EntityIDs)
}

func TestDefaultsFromConfig(t *testing.T) {
	t.Parallel()

	cfg := appconfig.Config{
		Query: appconfig.QueryDefaults{Limit: 50, Aggregation: "median", SortOrder: "asc"},
		Chart: appconfig.ChartDefaults{Type: "line"},
	}
	d := DefaultsFromConfig(cfg)
	assert.Equal(t, backend.AggMedian, d.Aggregation)
	assert.Equal(t, chart.Line, d.ChartType)
	assert.Equal(t, 50, d.Limit)
	assert.Equal(t, "asc", d.SortOrder)
	assert.Equal(t, chart.DefaultConfig(), d.ChartConfig)
}

func TestExecuteRequiresMetrics(t *testing.T) {
	t.Parallel()

	called := false
	s := New(fetchFunc(func(context.Context, backend.ExploreRequest) (*result.Result, error) {
		called = true
		return nil, nil
	}), Defaults{})
	err := s.Execute(context.Background())
	assert.ErrorIs(t, err, ErrNoMetrics)
	assert.Equal(t, "Select at least one metric", s.Snapshot().Error)
	assert.False(t, called)
}

func TestExecuteSuccessAndFailure(t *testing.T) {
	t.Parallel()

	first := rows(2)
	fail := false
	var got backend.ExploreRequest
	s := New(fetchFunc(func(_ context.Context, req backend.ExploreRequest) (*result.Result, error) {
		got = req
		if fail {
			return nil, &backend.APIError{Status: 400, Detail: "Unknown metric"}
		}
		return first, nil
	}), Defaults{})

	s.SetMetrics([]string{"tuition"})
	s.SetGroupBy([]string{"institution"})
	s.SetAggregation(backend.AggAverage)
	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"institution"}, got.GroupBy)
	assert.Equal(t, backend.AggAverage, got.Aggregation)

	snap := s.Snapshot()
	assert.Same(t, first, snap.Result)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)

	fail = true
	err := s.Execute(context.Background())
	require.Error(t, err)
	snap = s.Snapshot()
	assert.Equal(t, "Unknown metric", snap.Error)
	assert.Same(t, first, snap.Result, "failure keeps the previous result")
	assert.False(t, snap.Loading)
}

func TestExecuteDropsStaleResponse(t *testing.T) {
	t.Parallel()

	slow := rows(1)
	fast := rows(3)
	release := make(chan struct{})
	started := make(chan struct{})

	var calls int
	var mu sync.Mutex
	s := New(fetchFunc(func(_ context.Context, _ backend.ExploreRequest) (*result.Result, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(started)
			<-release
			return slow, nil
		}
		return fast, nil
	}), Defaults{})
	s.SetMetrics([]string{"m"})

	done := make(chan error, 1)
	go func() { done <- s.Execute(context.Background()) }()
	<-started

	require.NoError(t, s.Execute(context.Background()))
	close(release)
	require.NoError(t, <-done)

	assert.Same(t, fast, s.Result(), "the older response must not overwrite the newer one")
	assert.False(t, s.Snapshot().Loading)
}

func TestResetInvalidatesInFlight(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})
	s := New(fetchFunc(func(context.Context, backend.ExploreRequest) (*result.Result, error) {
		close(started)
		<-release
		return rows(1), nil
	}), Defaults{})
	s.SetMetrics([]string{"m"})

	done := make(chan error, 1)
	go func() { done <- s.Execute(context.Background()) }()
	<-started
	s.Reset()
	close(release)
	require.NoError(t, <-done)

	snap := s.Snapshot()
	assert.Nil(t, snap.Result)
	assert.Empty(t, snap.MetricIDs)
}

func TestSetChartConfigPartial(t *testing.T) {
	t.Parallel()

	s := New(nil, Defaults{ChartConfig: chart.DefaultConfig()})
	on := true
	s.SetChartConfig(ChartConfigPatch{ShowDataLabels: &on})
	cfg := s.Snapshot().ChartConfig
	assert.True(t, cfg.ShowDataLabels)
	assert.True(t, cfg.ShowLegend)
	assert.True(t, cfg.ShowGrid)

	off := false
	s.SetChartConfig(ChartConfigPatch{ShowGrid: &off})
	cfg = s.Snapshot().ChartConfig
	assert.True(t, cfg.ShowDataLabels)
	assert.False(t, cfg.ShowGrid)
}

func TestLoadReport(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.json")
	report := `{
      "report_id": "r1",
      "title": "Endowment",
      "query_config": {
        "metric_ids": ["endowment"],
        "group_by": ["institution", "fiscal_year"],
        "filters": {"entity_ids": ["e1"], "fiscal_year_start": 2019, "fiscal_year_end": 2023, "dimension_filters": {}},
        "aggregation": "max"
      },
      "chart_type": "area"
    }`
	require.NoError(t, os.WriteFile(path, []byte(report), 0o644))

	s := New(fetchFunc(func(context.Context, backend.ExploreRequest) (*result.Result, error) {
		return rows(2), nil
	}), Defaults{ChartConfig: chart.DefaultConfig()})
	s.SetMetrics([]string{"old"})
	require.NoError(t, s.Execute(context.Background()))

	r, err := s.LoadReport(path)
	require.NoError(t, err)
	assert.Equal(t, "Endowment", r.Title)

	snap := s.Snapshot()
	assert.Equal(t, []string{"endowment"}, snap.MetricIDs)
	assert.Equal(t, []string{"institution", "fiscal_year"}, snap.GroupBy)
	assert.Equal(t, backend.AggMax, snap.Aggregation)
	assert.Equal(t, chart.Area, snap.ChartType)
	assert.Equal(t, chart.DefaultConfig(), snap.ChartConfig)
	assert.Equal(t, 2019, *snap.Filters.FiscalYearStart)
	assert.Nil(t, snap.Result)

	_, err = s.LoadReport(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDerivedViewsAreMemoized(t *testing.T) {
	t.Parallel()

	res := rows(4)
	s := New(fetchFunc(func(context.Context, backend.ExploreRequest) (*result.Result, error) {
		return res, nil
	}), Defaults{ChartConfig: chart.DefaultConfig()})
	s.SetMetrics([]string{"m"})
	require.NoError(t, s.Execute(context.Background()))

	v := s.View()
	assert.Equal(t, "institution", v.Series.XKey)
	g := s.Grid()
	assert.Equal(t, transform.ModeSingle, g.Mode)
	require.Len(t, g.Panels, 1)
	assert.Equal(t, chart.KindSeries, g.Panels[0].Plan.Kind)
	assert.Equal(t, 1, s.Computations())

	s.SetChartType(chart.Pie)
	g = s.Grid()
	assert.Equal(t, chart.KindPie, g.Panels[0].Plan.Kind)
	assert.Equal(t, 1, s.Computations(), "changing the chart type must not recompute transforms")
}

func TestSetResultInvalidatesInFlight(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})
	s := New(fetchFunc(func(context.Context, backend.ExploreRequest) (*result.Result, error) {
		close(started)
		<-release
		return rows(1), nil
	}), Defaults{})
	s.SetMetrics([]string{"m"})

	done := make(chan error, 1)
	go func() { done <- s.Execute(context.Background()) }()
	<-started

	file := rows(5)
	s.SetResult(file)
	close(release)
	require.NoError(t, <-done)

	assert.Same(t, file, s.Result())
	assert.False(t, s.Snapshot().Loading)
	assert.Len(t, s.View().Series.ChartData, 5)
}
