package transform

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/benchlens/internal/result"
)

func col(name string, typ result.ColumnType) result.Column {
	return result.Column{Name: name, Type: typ}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	res := &result.Result{Columns: []result.Column{
		col("metric_id", result.TypeString),
		col("institution", result.TypeString),
		col("fiscal_year", result.TypeDate),
		col("unit", result.TypeString),
		col("peer_group", result.TypeString),
		col("value", result.TypeNumber),
	}}

	c := Classify(res)
	assert.Equal(t, []string{"institution", "peer_group"}, c.CategoricalNames())
	assert.Equal(t, "value", c.Value)
	require.Len(t, c.Dates, 1)
	assert.Equal(t, "fiscal_year", c.Dates[0].Name)
	require.Len(t, c.Excluded, 2)
	assert.Equal(t, "metric_id", c.Excluded[0].Name)
	assert.Equal(t, "unit", c.Excluded[1].Name)
}

func TestClassifyFallsBackToFirstNumericColumn(t *testing.T) {
	t.Parallel()

	res := &result.Result{Columns: []result.Column{
		col("institution", result.TypeString),
		col("amount", result.TypeNumber),
		col("count", result.TypeNumber),
	}}
	assert.Equal(t, "amount", Classify(res).Value)
	assert.Empty(t, Classify(&result.Result{Columns: []result.Column{col("x", result.TypeString)}}).Value)
	assert.Empty(t, Classify(nil).Categorical)
}

func TestBuildSeriesDataNoCategoricalColumns(t *testing.T) {
	t.Parallel()

	res := &result.Result{
		Columns: []result.Column{col("value", result.TypeNumber), col("unit", result.TypeString)},
		Rows: []result.Row{
			{"value": 5.0, "unit": "%"},
			{"value": nil, "unit": "%"},
			{"value": 7.5, "unit": "%"},
		},
	}

	s := BuildSeriesData(res)
	assert.Equal(t, RowLabelKey, s.XKey)
	assert.Equal(t, []string{"value"}, s.SeriesKeys)
	require.Len(t, s.ChartData, len(res.Rows))
	assert.Equal(t, []string{"Row 1", "Row 2", "Row 3"}, s.Labels())
	assert.Equal(t, []float64{5, 0, 7.5}, s.Column("value"))
}

func TestBuildSeriesDataSingleDimensionLastWriteWins(t *testing.T) {
	t.Parallel()

	res := &result.Result{
		Columns: []result.Column{col("x", result.TypeString), col("value", result.TypeNumber)},
		Rows: []result.Row{
			{"x": "A", "value": 1.0},
			{"x": "B", "value": 3.0},
			{"x": "A", "value": 2.0},
		},
	}

	s := BuildSeriesData(res)
	assert.Equal(t, "x", s.XKey)
	assert.Equal(t, []string{"value"}, s.SeriesKeys)
	require.Len(t, s.ChartData, 2)
	assert.Equal(t, "A", s.ChartData[0].Label)
	assert.Equal(t, 2.0, s.ChartData[0].Value("value"))
	assert.Equal(t, 3.0, s.ChartData[1].Value("value"))
}

func TestBuildSeriesDataPivot(t *testing.T) {
	t.Parallel()

	res := &result.Result{
		Columns: []result.Column{
			col("institution", result.TypeString),
			col("year", result.TypeString),
			col("value", result.TypeNumber),
		},
		Rows: []result.Row{
			{"institution": "A", "year": "2023", "value": 100.0},
			{"institution": "A", "year": "2024", "value": 110.0},
			{"institution": "B", "year": "2023", "value": 90.0},
		},
	}

	s := BuildSeriesData(res)
	assert.Equal(t, "institution", s.XKey)
	assert.Equal(t, []string{"2023", "2024"}, s.SeriesKeys)

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"chartData": [
			{"institution": "A", "2023": 100, "2024": 110},
			{"institution": "B", "2023": 90, "2024": 0}
		],
		"seriesKeys": ["2023", "2024"],
		"xKey": "institution"
	}`, string(raw))
}

func TestSeriesRecordLabelShadowsSeriesNamedLikeXKey(t *testing.T) {
	t.Parallel()

	res := &result.Result{
		Columns: []result.Column{
			col("institution", result.TypeString),
			col("year", result.TypeString),
			col("value", result.TypeNumber),
		},
		Rows: []result.Row{{"institution": "A", "year": "institution", "value": 5.0}},
	}

	s := BuildSeriesData(res)
	require.Equal(t, []string{"institution"}, s.SeriesKeys)
	require.Len(t, s.ChartData, 1)
	assert.Equal(t, 5.0, s.ChartData[0].Value("institution"))
	assert.Equal(t, []float64{5}, s.Column("institution"))

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"chartData": [{"institution": "A"}],
		"seriesKeys": ["institution"],
		"xKey": "institution"
	}`, string(raw))
}

func TestBuildSeriesDataPivotKeepsFirstSeenOrderAndCoerces(t *testing.T) {
	t.Parallel()

	res := &result.Result{
		Columns: []result.Column{
			col("peer", result.TypeString),
			col("year", result.TypeString),
			col("value", result.TypeNumber),
		},
		Rows: []result.Row{
			{"peer": "P1", "year": "2025", "value": "n/a"},
			{"peer": "P2", "year": "2021", "value": 4.0},
			{"peer": "P1", "year": nil, "value": 9.0},
			{"peer": "P2", "year": "2023", "value": nil},
		},
	}

	s := BuildSeriesData(res)
	assert.Equal(t, []string{"2025", "2021", "2023"}, s.SeriesKeys)
	require.Len(t, s.ChartData, 2)
	for _, row := range s.ChartData {
		for _, k := range s.SeriesKeys {
			_, ok := row.Values[k]
			assert.True(t, ok, "row %s missing series %s", row.Label, k)
		}
	}
	assert.Equal(t, 0.0, s.ChartData[0].Value("2025"))
	assert.Equal(t, 4.0, s.ChartData[1].Value("2021"))
	assert.Equal(t, 0.0, s.ChartData[1].Value("2023"))
}

func TestBuildSeriesDataWithoutValueColumn(t *testing.T) {
	t.Parallel()

	res := &result.Result{
		Columns: []result.Column{col("institution", result.TypeString)},
		Rows:    []result.Row{{"institution": "A"}},
	}
	s := BuildSeriesData(res)
	assert.Equal(t, "institution", s.XKey)
	assert.Empty(t, s.SeriesKeys)
	assert.Empty(t, s.ChartData)
}

func TestBuildSeriesDataIsDeterministic(t *testing.T) {
	t.Parallel()

	res := facetResult(5, 3)
	first, err := json.Marshal(BuildSeriesData(res))
	require.NoError(t, err)
	second, err := json.Marshal(BuildSeriesData(res))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

// facetResult builds a result with three categorical columns where the third
// ("region") takes `regions` distinct values, each with `perRegion` rows.
func facetResult(regions, perRegion int) *result.Result {
	res := &result.Result{
		Columns: []result.Column{
			col("institution", result.TypeString),
			col("year", result.TypeString),
			col("unit", result.TypeString),
			col("region", result.TypeString),
			col("value", result.TypeNumber),
		},
	}
	for i := 0; i < perRegion; i++ {
		for r := 0; r < regions; r++ {
			res.Rows = append(res.Rows, result.Row{
				"institution": fmt.Sprintf("I%d", i),
				"year":        "2024",
				"unit":        "USD",
				"region":      fmt.Sprintf("R%02d", r),
				"value":       float64(r*100 + i),
			})
		}
	}
	res.TotalRows = len(res.Rows)
	return res
}

func TestDecomposeDataSingleMode(t *testing.T) {
	t.Parallel()

	res := &result.Result{Columns: []result.Column{
		col("institution", result.TypeString),
		col("year", result.TypeString),
		col("unit", result.TypeString),
		col("metric_id", result.TypeString),
		col("value", result.TypeNumber),
	}}
	d := DecomposeData(res)
	assert.Equal(t, ModeSingle, d.Mode)
	assert.Empty(t, d.Facets)
}

func TestDecomposeDataGrid(t *testing.T) {
	t.Parallel()

	res := facetResult(3, 2)
	d := DecomposeData(res)
	require.Equal(t, ModeGrid, d.Mode)
	assert.Equal(t, "region", d.FacetColumn)
	assert.Equal(t, 2, d.GridCols)
	require.Len(t, d.Facets, 3)
	assert.Equal(t, "R00", d.Facets[0].Label)

	for _, f := range d.Facets {
		assert.False(t, f.Data.HasColumn("region"))
		assert.Equal(t, len(f.Data.Rows), f.Data.TotalRows)
		for _, row := range f.Data.Rows {
			_, ok := row["region"]
			assert.False(t, ok)
		}
		s := BuildSeriesData(f.Data)
		assert.Equal(t, "institution", s.XKey)
		assert.Equal(t, []string{"2024"}, s.SeriesKeys)
	}
}

func TestDecomposeDataFacetsOwnMetadata(t *testing.T) {
	t.Parallel()

	res := facetResult(2, 1)
	res.Metadata = map[string]any{"source": "ipeds"}
	d := DecomposeData(res)
	require.Len(t, d.Facets, 2)

	d.Facets[0].Data.Metadata["source"] = "edited"
	assert.Equal(t, "ipeds", res.Metadata["source"])
	assert.Equal(t, "ipeds", d.Facets[1].Data.Metadata["source"])
}

func TestDecomposeDataCapsFacetsInEncounterOrder(t *testing.T) {
	t.Parallel()

	res := facetResult(200, 2)
	d := DecomposeData(res)
	require.Equal(t, ModeGrid, d.Mode)
	require.Len(t, d.Facets, MaxFacets)
	assert.Equal(t, 3, d.GridCols)
	for i, f := range d.Facets {
		assert.Equal(t, fmt.Sprintf("R%02d", i), f.Label)
	}
	assert.Equal(t, 200-MaxFacets, HiddenFacetValues(res))
}

func TestDecomposeDataRoundTrip(t *testing.T) {
	t.Parallel()

	res := facetResult(15, 3)
	d := DecomposeData(res)

	retained := make(map[string]bool)
	for _, f := range d.Facets {
		retained[f.Label] = true
	}

	var want []result.Row
	for _, row := range res.Rows {
		if retained[result.String(row["region"])] {
			want = append(want, row)
		}
	}

	var got []result.Row
	for _, f := range d.Facets {
		got = append(got, f.Data.Rows...)
	}
	require.Len(t, got, len(want))

	counts := make(map[string]int)
	for _, row := range got {
		counts[fmt.Sprintf("%v|%v", row["institution"], row["value"])]++
	}
	for _, row := range want {
		key := fmt.Sprintf("%v|%v", row["institution"], row["value"])
		assert.Equal(t, 1, counts[key], "row %s should appear in exactly one facet", key)
	}
}

func TestDecomposeDataNullFacetValue(t *testing.T) {
	t.Parallel()

	res := &result.Result{
		Columns: []result.Column{
			col("a", result.TypeString),
			col("b", result.TypeString),
			col("c", result.TypeString),
			col("value", result.TypeNumber),
		},
		Rows: []result.Row{
			{"a": "x", "b": "y", "c": nil, "value": 1.0},
			{"a": "x", "b": "y", "c": "", "value": 2.0},
			{"a": "x", "b": "y", "c": "k", "value": 3.0},
		},
	}
	d := DecomposeData(res)
	require.Len(t, d.Facets, 2)
	assert.Equal(t, "", d.Facets[0].Label)
	assert.Len(t, d.Facets[0].Data.Rows, 2)
}

func TestColorForIndex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hsl(210, 55%, 40%)", ColorForIndex(0).CSS())
	assert.Equal(t, ColorForIndex(1), ColorForIndex(1+PaletteSize))
	assert.Equal(t, ColorForIndex(0), ColorForIndex(-3))
	assert.Len(t, SeriesColors(10), 10)
	assert.Regexp(t, `^#[0-9a-f]{6}$`, ColorForIndex(2).Hex())
	assert.Equal(t, "#ffffff", ColorForIndex(0).BlendHex(0))
}

func TestLegendItems(t *testing.T) {
	t.Parallel()

	s := SeriesData{
		XKey:       "x",
		SeriesKeys: []string{"a", "b"},
		ChartData: []SeriesRow{
			{Label: "1", Values: map[string]float64{"a": 1, "b": 2}},
			{Label: "2", Values: map[string]float64{"a": 3, "b": 4}},
		},
	}
	items := LegendItems(s)
	require.Len(t, items, 2)
	assert.Equal(t, 4.0, items[0].Total)
	assert.Equal(t, 6.0, items[1].Total)
	assert.Equal(t, ColorForIndex(1).CSS(), items[1].CSS)
}

func TestMemoRecomputesOnlyOnNewResult(t *testing.T) {
	t.Parallel()

	var m Memo
	res := facetResult(2, 2)

	first := m.Get(res)
	second := m.Get(res)
	assert.Equal(t, 1, m.Computations())
	assert.Equal(t, first.Series.SeriesKeys, second.Series.SeriesKeys)

	m.Get(facetResult(2, 2))
	assert.Equal(t, 2, m.Computations())

	m.Reset()
	m.Get(res)
	assert.Equal(t, 3, m.Computations())
}
