package chart

import (
	"github.com/mwiater/benchlens/internal/result"
	"github.com/mwiater/benchlens/internal/transform"
)

const (
	// SingleHeight is the pixel height of an unfaceted chart.
	SingleHeight = 420
	// FacetHeight is the pixel height of each chart in a grid.
	FacetHeight = 280
	// PanelHeight is the height of a standalone chart without a grid.
	PanelHeight = 380

	unknownSlice = "Unknown"
	valueSlice   = "Value"
)

// Kind tells a renderer which drawing path a Plan takes.
type Kind string

const (
	KindNoData Kind = "no_data"
	KindSeries Kind = "series"
	KindPie    Kind = "pie"
	KindTable  Kind = "table"
)

// PieSlice is one wedge of a pie or donut.
type PieSlice struct {
	Label string                `json:"label"`
	Value float64               `json:"value"`
	Color transform.SeriesColor `json:"-"`
	CSS   string                `json:"color"`
}

// Plan is everything a renderer needs to draw one chart.
type Plan struct {
	Kind   Kind   `json:"kind"`
	Type   Type   `json:"type"`
	Config Config `json:"config"`
	Height int    `json:"height"`

	// Series and Legend are set for KindSeries.
	Series transform.SeriesData  `json:"series,omitempty"`
	Legend []transform.LegendItem `json:"legend,omitempty"`
	// ShowLegend is the effective legend toggle: series charts only show a
	// legend for more than one series.
	ShowLegend bool `json:"showLegend"`
	// Unit is the first row's unit cell, if the result carries units.
	Unit string `json:"unit,omitempty"`

	// Slices is set for KindPie. Donut is the inner-radius variant.
	Slices []PieSlice `json:"slices,omitempty"`
	Donut  bool       `json:"donut,omitempty"`

	// Data is the source result; table renderers page through it.
	Data *result.Result `json:"-"`
}

// Dispatch builds the plan for drawing res as chart type t. Empty results
// short-circuit to a no-data plan before any transformation runs, and unknown
// types draw as a bar chart.
func Dispatch(res *result.Result, t Type, cfg Config) Plan {
	return dispatch(res, t, cfg, PanelHeight)
}

func dispatch(res *result.Result, t Type, cfg Config, height int) Plan {
	p := Plan{Kind: KindNoData, Type: t, Config: cfg, Height: height, Data: res}
	if res == nil || res.Empty() {
		return p
	}

	switch t {
	case Line, Bar, BarHorizontal, StackedBar, Area:
		return seriesPlan(p, res)
	case Pie, Donut:
		return piePlan(p, res)
	case Table:
		p.Kind = KindTable
		return p
	default:
		p.Type = Bar
		return seriesPlan(p, res)
	}
}

func seriesPlan(p Plan, res *result.Result) Plan {
	p.Kind = KindSeries
	p.Series = transform.BuildSeriesData(res)
	p.Legend = transform.LegendItems(p.Series)
	p.ShowLegend = p.Config.ShowLegend && len(p.Series.SeriesKeys) > 1
	p.Unit = unitOf(res)
	return p
}

func piePlan(p Plan, res *result.Result) Plan {
	c := transform.Classify(res)
	var labelCol string
	if len(c.Categorical) > 0 {
		labelCol = c.Categorical[0].Name
	}

	p.Kind = KindPie
	p.Donut = p.Type == Donut
	p.ShowLegend = p.Config.ShowLegend
	p.Unit = unitOf(res)
	p.Slices = make([]PieSlice, len(res.Rows))
	for i, row := range res.Rows {
		label := valueSlice
		if labelCol != "" {
			label = unknownSlice
			if v := row[labelCol]; v != nil {
				label = result.String(v)
			}
		}
		var value float64
		if c.Value != "" {
			value = result.Number(row[c.Value])
		}
		color := transform.ColorForIndex(i)
		p.Slices[i] = PieSlice{Label: label, Value: value, Color: color, CSS: color.CSS()}
	}
	return p
}

// Total sums the slice values.
func (p Plan) Total() float64 {
	var total float64
	for _, s := range p.Slices {
		total += s.Value
	}
	return total
}

func unitOf(res *result.Result) string {
	if !res.HasColumn(transform.UnitColumn) || len(res.Rows) == 0 {
		return ""
	}
	v := res.Rows[0][transform.UnitColumn]
	if v == nil {
		return ""
	}
	return result.String(v)
}
