package chart

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/benchlens/internal/result"
	"github.com/mwiater/benchlens/internal/transform"
)

func institutionYears() *result.Result {
	return &result.Result{
		Columns: []result.Column{
			{Name: "institution", Type: result.TypeString},
			{Name: "fiscal_year", Type: result.TypeString},
			{Name: "unit", Type: result.TypeString},
			{Name: "value", Type: result.TypeNumber},
		},
		Rows: []result.Row{
			{"institution": "A", "fiscal_year": "2022", "unit": "USD", "value": 1.0},
			{"institution": "A", "fiscal_year": "2023", "unit": "USD", "value": 2.0},
			{"institution": "B", "fiscal_year": "2022", "unit": "USD", "value": 3.0},
		},
		TotalRows: 3,
	}
}

func TestParseType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Type
		ok   bool
	}{
		{"line", Line, true},
		{"bar", Bar, true},
		{"bar_horizontal", BarHorizontal, true},
		{"stacked_bar", StackedBar, true},
		{"area", Area, true},
		{"pie", Pie, true},
		{" Donut ", Donut, true},
		{"table", Table, true},
		{"radar", Bar, false},
		{"", Bar, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseType(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}

	_, err := ParseTypeStrict("radar")
	assert.Error(t, err)
	for _, typ := range Types() {
		parsed, err := ParseTypeStrict(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}
}

func TestTypeTextRoundTrip(t *testing.T) {
	t.Parallel()

	var out struct {
		Type Type `json:"type"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"type":"stacked_bar"}`), &out))
	assert.Equal(t, StackedBar, out.Type)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"sparkline"}`), &out))
	assert.Equal(t, Bar, out.Type)

	assert.Equal(t, "bar", Type(99).String())
}

func TestRecommended(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []Type{Bar, Table}, Recommended(0))
	assert.Equal(t, []Type{Bar, Pie, BarHorizontal}, Recommended(1))
	assert.Equal(t, []Type{Line, StackedBar, Bar}, Recommended(3))
}

func TestDispatchNoData(t *testing.T) {
	t.Parallel()

	res := institutionYears()
	res.Rows = nil
	for _, typ := range Types() {
		p := Dispatch(res, typ, DefaultConfig())
		assert.Equal(t, KindNoData, p.Kind, typ.String())
	}
	assert.Equal(t, KindNoData, Dispatch(nil, Bar, DefaultConfig()).Kind)
}

func TestDispatchSeries(t *testing.T) {
	t.Parallel()

	p := Dispatch(institutionYears(), Line, DefaultConfig())
	require.Equal(t, KindSeries, p.Kind)
	assert.Equal(t, "institution", p.Series.XKey)
	assert.Equal(t, []string{"2022", "2023"}, p.Series.SeriesKeys)
	assert.Equal(t, "USD", p.Unit)
	assert.True(t, p.ShowLegend)
	require.Len(t, p.Legend, 2)
	assert.Equal(t, 4.0, p.Legend[0].Total)
	assert.Equal(t, 2.0, p.Legend[1].Total)

	cfg := DefaultConfig()
	cfg.ShowLegend = false
	assert.False(t, Dispatch(institutionYears(), Line, cfg).ShowLegend)
}

func TestDispatchSingleSeriesHidesLegend(t *testing.T) {
	t.Parallel()

	res := &result.Result{
		Columns: []result.Column{
			{Name: "institution", Type: result.TypeString},
			{Name: "value", Type: result.TypeNumber},
		},
		Rows: []result.Row{{"institution": "A", "value": 1.0}},
	}
	p := Dispatch(res, Bar, DefaultConfig())
	assert.False(t, p.ShowLegend)
	assert.Empty(t, p.Unit)
}

func TestDispatchUnknownTypeFallsBackToBar(t *testing.T) {
	t.Parallel()

	p := Dispatch(institutionYears(), Type(42), DefaultConfig())
	assert.Equal(t, KindSeries, p.Kind)
	assert.Equal(t, Bar, p.Type)
}

func TestDispatchPie(t *testing.T) {
	t.Parallel()

	res := &result.Result{
		Columns: []result.Column{
			{Name: "metric_id", Type: result.TypeString},
			{Name: "institution", Type: result.TypeString},
			{Name: "value", Type: result.TypeNumber},
		},
		Rows: []result.Row{
			{"metric_id": "m1", "institution": "A", "value": 5.0},
			{"metric_id": "m1", "institution": nil, "value": 3.0},
		},
	}
	p := Dispatch(res, Donut, DefaultConfig())
	require.Equal(t, KindPie, p.Kind)
	assert.True(t, p.Donut)
	require.Len(t, p.Slices, 2)
	assert.Equal(t, "A", p.Slices[0].Label)
	assert.Equal(t, "Unknown", p.Slices[1].Label)
	assert.Equal(t, transform.ColorForIndex(1).CSS(), p.Slices[1].CSS)
	assert.Equal(t, 8.0, p.Total())

	numeric := &result.Result{
		Columns: []result.Column{{Name: "value", Type: result.TypeNumber}},
		Rows:    []result.Row{{"value": 7.0}},
	}
	p = Dispatch(numeric, Pie, DefaultConfig())
	require.Len(t, p.Slices, 1)
	assert.Equal(t, "Value", p.Slices[0].Label)
	assert.False(t, p.Donut)
}

func TestDispatchTable(t *testing.T) {
	t.Parallel()

	res := institutionYears()
	p := Dispatch(res, Table, DefaultConfig())
	assert.Equal(t, KindTable, p.Kind)
	assert.Same(t, res, p.Data)
}

func TestBuildGridSingle(t *testing.T) {
	t.Parallel()

	g := BuildGrid(institutionYears(), Bar, DefaultConfig())
	assert.Equal(t, transform.ModeSingle, g.Mode)
	require.Len(t, g.Panels, 1)
	assert.Equal(t, SingleHeight, g.Panels[0].Plan.Height)
	assert.Equal(t, KindSeries, g.Panels[0].Plan.Kind)
}

func TestBuildGridFacets(t *testing.T) {
	t.Parallel()

	res := &result.Result{Columns: []result.Column{
		{Name: "institution", Type: result.TypeString},
		{Name: "fiscal_year", Type: result.TypeString},
		{Name: "region", Type: result.TypeString},
		{Name: "value", Type: result.TypeNumber},
	}}
	for r := 0; r < 14; r++ {
		res.Rows = append(res.Rows, result.Row{
			"institution": "I",
			"fiscal_year": "2024",
			"region":      fmt.Sprintf("R%02d", r),
			"value":       float64(r),
		})
	}

	g := BuildGrid(res, StackedBar, DefaultConfig())
	assert.Equal(t, transform.ModeGrid, g.Mode)
	assert.Equal(t, "region", g.FacetColumn)
	assert.Equal(t, 3, g.GridCols)
	assert.Equal(t, 2, g.HiddenFacets)
	require.Len(t, g.Panels, transform.MaxFacets)
	assert.Equal(t, "R00", g.Panels[0].Label)
	assert.Equal(t, FacetHeight, g.Panels[0].Plan.Height)
	assert.False(t, g.Panels[0].Plan.Data.HasColumn("region"))

	var memo transform.Memo
	viaMemo := BuildGridView(res, memo.Get(res), StackedBar, DefaultConfig())
	assert.Equal(t, g.Panels[3].Label, viaMemo.Panels[3].Label)
	assert.Equal(t, g.HiddenFacets, viaMemo.HiddenFacets)
}

func TestBuildGridEmpty(t *testing.T) {
	t.Parallel()

	g := BuildGrid(&result.Result{}, Pie, DefaultConfig())
	require.Len(t, g.Panels, 1)
	assert.Equal(t, KindNoData, g.Panels[0].Plan.Kind)
}
