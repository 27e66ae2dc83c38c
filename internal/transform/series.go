package transform

import (
	"encoding/json"
	"fmt"

	"github.com/mwiater/benchlens/internal/result"
)

// RowLabelKey is the X key used when a result has no categorical column.
const RowLabelKey = "label"

// SeriesRow is one X-axis position with a number per series key.
type SeriesRow struct {
	Label  string
	Values map[string]float64
}

// SeriesData is a pivoted, chart-ready view of a Result.
type SeriesData struct {
	ChartData  []SeriesRow
	SeriesKeys []string
	XKey       string
}

// Value returns the number stored for key, 0 when absent.
func (r SeriesRow) Value(key string) float64 {
	return r.Values[key]
}

// Record flattens the row into a single mapping keyed by xKey and series keys.
// A series key equal to xKey is shadowed by the X label, which identifies the
// row; read such a series through Value instead.
func (r SeriesRow) Record(xKey string) map[string]any {
	rec := make(map[string]any, len(r.Values)+1)
	for k, v := range r.Values {
		rec[k] = v
	}
	rec[xKey] = r.Label
	return rec
}

// Labels returns the X labels in row order.
func (s SeriesData) Labels() []string {
	labels := make([]string, len(s.ChartData))
	for i, row := range s.ChartData {
		labels[i] = row.Label
	}
	return labels
}

// Column returns the values of one series in row order.
func (s SeriesData) Column(key string) []float64 {
	values := make([]float64, len(s.ChartData))
	for i, row := range s.ChartData {
		values[i] = row.Value(key)
	}
	return values
}

// MarshalJSON emits chartData as flat records so the output matches what
// charting front-ends expect.
func (s SeriesData) MarshalJSON() ([]byte, error) {
	records := make([]map[string]any, len(s.ChartData))
	for i, row := range s.ChartData {
		records[i] = row.Record(s.XKey)
	}
	keys := s.SeriesKeys
	if keys == nil {
		keys = []string{}
	}
	return json.Marshal(struct {
		ChartData  []map[string]any `json:"chartData"`
		SeriesKeys []string         `json:"seriesKeys"`
		XKey       string           `json:"xKey"`
	}{records, keys, s.XKey})
}

// BuildSeriesData pivots res by its categorical columns. With no categorical
// column each row becomes "Row n"; with one, that column is the X axis; with
// two or more, the second column's values become series. Missing and
// non-numeric values are coerced to 0.
func BuildSeriesData(res *result.Result) SeriesData {
	return buildSeries(res, Classify(res))
}

func buildSeries(res *result.Result, c Classification) SeriesData {
	cats := c.Categorical
	var data SeriesData
	switch {
	case len(cats) == 0:
		data.XKey = RowLabelKey
	default:
		data.XKey = cats[0].Name
	}
	if res == nil || c.Value == "" {
		return data
	}

	switch len(cats) {
	case 0:
		data.SeriesKeys = []string{ValueColumn}
		data.ChartData = make([]SeriesRow, len(res.Rows))
		for i, row := range res.Rows {
			data.ChartData[i] = SeriesRow{
				Label:  fmt.Sprintf("Row %d", i+1),
				Values: map[string]float64{ValueColumn: result.Number(row[c.Value])},
			}
		}
	case 1:
		data.SeriesKeys = []string{ValueColumn}
		index := make(map[string]int)
		for _, row := range res.Rows {
			x := result.String(row[data.XKey])
			v := result.Number(row[c.Value])
			if pos, ok := index[x]; ok {
				data.ChartData[pos].Values[ValueColumn] = v
				continue
			}
			index[x] = len(data.ChartData)
			data.ChartData = append(data.ChartData, SeriesRow{
				Label:  x,
				Values: map[string]float64{ValueColumn: v},
			})
		}
	default:
		data.SeriesKeys, data.ChartData = pivot(res.Rows, data.XKey, cats[1].Name, c.Value)
	}
	return data
}

func pivot(rows []result.Row, xKey, seriesCol, valueCol string) ([]string, []SeriesRow) {
	var keys []string
	seenKey := make(map[string]bool)
	for _, row := range rows {
		if row[seriesCol] == nil {
			continue
		}
		sk := result.String(row[seriesCol])
		if !seenKey[sk] {
			seenKey[sk] = true
			keys = append(keys, sk)
		}
	}

	var out []SeriesRow
	index := make(map[string]int)
	for _, row := range rows {
		x := result.String(row[xKey])
		pos, ok := index[x]
		if !ok {
			pos = len(out)
			index[x] = pos
			values := make(map[string]float64, len(keys))
			for _, k := range keys {
				values[k] = 0
			}
			out = append(out, SeriesRow{Label: x, Values: values})
		}
		if row[seriesCol] == nil {
			continue
		}
		out[pos].Values[result.String(row[seriesCol])] = result.Number(row[valueCol])
	}
	return keys, out
}

// LegendItem describes one series in a chart legend.
type LegendItem struct {
	Label string      `json:"label"`
	Color SeriesColor `json:"-"`
	CSS   string      `json:"color"`
	Total float64     `json:"value"`
}

// LegendItems returns one item per series key with its color and the sum of
// its values across all rows.
func LegendItems(s SeriesData) []LegendItem {
	items := make([]LegendItem, len(s.SeriesKeys))
	for i, key := range s.SeriesKeys {
		var total float64
		for _, row := range s.ChartData {
			total += row.Value(key)
		}
		color := ColorForIndex(i)
		items[i] = LegendItem{Label: key, Color: color, CSS: color.CSS(), Total: total}
	}
	return items
}
