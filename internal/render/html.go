// internal/render/html.go
// Package render draws chart grids to files: interactive HTML pages built on
// ECharts and static SVG images.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/mwiater/benchlens/internal/chart"
	"github.com/mwiater/benchlens/internal/result"
	"github.com/mwiater/benchlens/internal/tableview"
	"github.com/mwiater/benchlens/internal/transform"
)

// ErrUnsupported is returned when a renderer cannot draw a chart kind.
var ErrUnsupported = errors.New("unsupported chart for this output")

// DefaultWidth is the page width in pixels that panels divide between them.
const DefaultWidth = 1200

// Options controls page-level output.
type Options struct {
	Title string
	Width int
	// Sort orders table panels.
	Sort tableview.Sort
}

func (o Options) width() int {
	if o.Width <= 0 {
		return DefaultWidth
	}
	return o.Width
}

func (o Options) title() string {
	if o.Title == "" {
		return "benchlens"
	}
	return o.Title
}

// panelWidth divides the page between the grid columns.
func panelWidth(g chart.Grid, o Options) int {
	if g.Mode != transform.ModeGrid || g.GridCols <= 1 {
		return o.width()
	}
	return o.width()/g.GridCols - 16
}

// HTML writes g as a standalone page. Series and pie panels become ECharts
// instances; table and no-data panels are rendered as plain HTML above them.
func HTML(w io.Writer, g chart.Grid, o Options) error {
	page := components.NewPage()
	page.PageTitle = o.title()
	if g.Mode == transform.ModeGrid {
		page.SetLayout(components.PageFlexLayout)
	} else {
		page.SetLayout(components.PageCenterLayout)
	}

	width := panelWidth(g, o)
	view := pageView{Title: o.title(), Grid: g}
	for i, panel := range g.Panels {
		id := fmt.Sprintf("benchlens_%d", i)
		switch panel.Plan.Kind {
		case chart.KindSeries:
			page.AddCharts(seriesChart(id, panel, width))
			view.Legends = append(view.Legends, legendView(panel))
		case chart.KindPie:
			page.AddCharts(pieChart(id, panel, width))
		case chart.KindTable:
			view.Tables = append(view.Tables, tableHTMLView(panel, o.Sort))
		default:
			view.Empty = append(view.Empty, panelLabel(panel))
		}
	}

	var buf strings.Builder
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}

	var header bytes.Buffer
	if err := headerTemplate.Execute(&header, view); err != nil {
		return fmt.Errorf("failed to render page header: %w", err)
	}

	doc := buf.String()
	doc = strings.Replace(doc, "</head>", pageCSS+"</head>", 1)
	doc = strings.Replace(doc, "<body>", "<body>\n"+header.String(), 1)
	_, err := io.WriteString(w, doc)
	return err
}

func panelLabel(p chart.Panel) string {
	if p.Label == "" {
		return "Result"
	}
	return p.Label
}

func initOpts(id string, width, height int) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		ChartID: id,
		Width:   fmt.Sprintf("%dpx", width),
		Height:  fmt.Sprintf("%dpx", height),
	})
}

func colorOpts(n int) charts.GlobalOpts {
	n = min(n, transform.PaletteSize)
	colors := make(opts.Colors, 0, n)
	for _, c := range transform.SeriesColors(n) {
		colors = append(colors, c.Hex())
	}
	return charts.WithColorsOpts(colors)
}

func labelOpts(show bool, position string) charts.SeriesOpts {
	return charts.WithLabelOpts(opts.Label{
		Show:     opts.Bool(show),
		Position: position,
	})
}

func seriesChart(id string, panel chart.Panel, width int) components.Charter {
	p := panel.Plan
	global := []charts.GlobalOpts{
		initOpts(id, width, p.Height),
		colorOpts(max(len(p.Series.SeriesKeys), 1)),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(p.ShowLegend), Bottom: "0"}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      p.Unit,
			SplitLine: &opts.SplitLine{Show: opts.Bool(p.Config.ShowGrid)},
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      p.Series.XKey,
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
	}
	if panel.Label != "" {
		global = append(global, charts.WithTitleOpts(opts.Title{Title: panel.Label}))
	}

	labels := p.Series.Labels()
	switch p.Type {
	case chart.Line, chart.Area:
		line := charts.NewLine()
		line.SetGlobalOptions(global...)
		line.SetXAxis(labels)
		for _, key := range p.Series.SeriesKeys {
			data := make([]opts.LineData, 0, len(p.Series.ChartData))
			for _, v := range p.Series.Column(key) {
				data = append(data, opts.LineData{Value: v})
			}
			seriesOpts := []charts.SeriesOpts{
				charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
				labelOpts(p.Config.ShowDataLabels, "top"),
			}
			if p.Type == chart.Area {
				seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{
					Opacity: 0.15,
				}))
			}
			line.AddSeries(key, data, seriesOpts...)
		}
		return line
	default:
		bar := charts.NewBar()
		bar.SetGlobalOptions(global...)
		bar.SetXAxis(labels)
		position := "top"
		if p.Type == chart.BarHorizontal {
			position = "right"
		}
		for _, key := range p.Series.SeriesKeys {
			data := make([]opts.BarData, 0, len(p.Series.ChartData))
			for _, v := range p.Series.Column(key) {
				data = append(data, opts.BarData{Value: v})
			}
			seriesOpts := []charts.SeriesOpts{labelOpts(p.Config.ShowDataLabels, position)}
			if p.Type == chart.StackedBar {
				seriesOpts = append(seriesOpts, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
			}
			bar.AddSeries(key, data, seriesOpts...)
		}
		if p.Type == chart.BarHorizontal {
			bar.XYReversal()
		}
		return bar
	}
}

func pieChart(id string, panel chart.Panel, width int) components.Charter {
	p := panel.Plan
	pie := charts.NewPie()
	global := []charts.GlobalOpts{
		initOpts(id, width, p.Height),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(p.ShowLegend), Bottom: "0"}),
	}
	if panel.Label != "" {
		global = append(global, charts.WithTitleOpts(opts.Title{Title: panel.Label}))
	}
	pie.SetGlobalOptions(global...)

	data := make([]opts.PieData, len(p.Slices))
	for i, s := range p.Slices {
		data[i] = opts.PieData{
			Name:      s.Label,
			Value:     s.Value,
			ItemStyle: &opts.ItemStyle{Color: s.Color.Hex()},
		}
	}
	radius := []string{"0%", "80%"}
	if p.Donut {
		radius = []string{"55%", "80%"}
	}
	pie.AddSeries("value", data,
		charts.WithPieChartOpts(opts.PieChart{Radius: radius}),
		charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(p.Config.ShowDataLabels),
			Formatter: "{b} {d}%",
		}),
	)
	return pie
}

type pageView struct {
	Title   string
	Grid    chart.Grid
	Legends []legendBlock
	Tables  []tableBlock
	Empty   []string
}

type legendBlock struct {
	Label string
	Unit  string
	Items []legendEntry
}

type legendEntry struct {
	Label string
	Color template.CSS
	Total string
}

type tableBlock struct {
	Label   string
	Headers []tableHeader
	Rows    [][]tableCell
	Count   int
}

type tableHeader struct {
	Label string
	Arrow string
}

type tableCell struct {
	Text  string
	Style template.CSS
	Num   bool
}

func legendView(panel chart.Panel) legendBlock {
	b := legendBlock{Label: panel.Label, Unit: panel.Plan.Unit}
	if !panel.Plan.ShowLegend {
		return b
	}
	for _, item := range panel.Plan.Legend {
		b.Items = append(b.Items, legendEntry{
			Label: item.Label,
			Color: template.CSS("background:" + item.CSS),
			Total: tableview.FormatNumber(item.Total),
		})
	}
	return b
}

func tableHTMLView(panel chart.Panel, s tableview.Sort) tableBlock {
	view := tableview.New(panel.Plan.Data)
	view.SetSort(s)
	heat := view.Heat()

	b := tableBlock{Label: panel.Label, Count: view.Len()}
	for _, c := range view.Columns() {
		h := tableHeader{Label: tableview.HeaderLabel(c.Name)}
		if s.Column == c.Name {
			h.Arrow = "▲"
			if s.Direction == tableview.Desc {
				h.Arrow = "▼"
			}
		}
		b.Headers = append(b.Headers, h)
	}
	for _, row := range view.Sorted() {
		cells := make([]tableCell, 0, len(view.Columns()))
		for _, c := range view.Columns() {
			cell := tableCell{
				Text: tableview.FormatCell(c, row[c.Name]),
				Num:  c.Type == result.TypeNumber,
			}
			if bg := heat.CSS(c.Name, row[c.Name]); bg != "" {
				cell.Style = template.CSS("background:" + bg)
			}
			cells = append(cells, cell)
		}
		b.Rows = append(b.Rows, cells)
	}
	return b
}

var headerTemplate = template.Must(template.New("benchlens-header").Funcs(template.FuncMap{
	"plural": func(n int) string {
		if n == 1 {
			return ""
		}
		return "s"
	},
}).Parse(headerTemplateHTML))

const headerTemplateHTML = `<div class="bl-header">
  <h1>{{ .Title }}</h1>
  {{- if eq .Grid.Mode "grid" }}
  <p class="bl-muted">Showing {{ len .Grid.Panels }} chart{{ plural (len .Grid.Panels) }}, split by <strong>{{ .Grid.FacetColumn }}</strong></p>
  {{- if .Grid.HiddenFacets }}
  <p class="bl-notice">{{ .Grid.HiddenFacets }} more value{{ plural .Grid.HiddenFacets }} of {{ .Grid.FacetColumn }} not shown</p>
  {{- end }}
  {{- end }}
</div>
{{- range .Legends }}{{ if .Items }}
<div class="bl-legend">
  {{- if .Label }}<span class="bl-legend-title">{{ .Label }}</span>{{ end }}
  {{- range .Items }}
  <span class="bl-legend-item"><i style="{{ .Color }}"></i>{{ .Label }} <b>{{ .Total }}</b></span>
  {{- end }}
  {{- if .Unit }}<span class="bl-muted">{{ .Unit }}</span>{{ end }}
</div>
{{- end }}{{ end }}
{{- range .Empty }}
<div class="bl-empty"><strong>{{ . }}</strong> No data to display</div>
{{- end }}
{{- range .Tables }}
<div class="bl-table">
  {{- if .Label }}<h3>{{ .Label }}</h3>{{ end }}
  <table>
    <thead><tr>{{ range .Headers }}<th>{{ .Label }}{{ if .Arrow }} {{ .Arrow }}{{ end }}</th>{{ end }}</tr></thead>
    <tbody>
    {{- range .Rows }}
      <tr>{{ range . }}<td{{ if .Num }} class="num"{{ end }}{{ if .Style }} style="{{ .Style }}"{{ end }}>{{ .Text }}</td>{{ end }}</tr>
    {{- end }}
    </tbody>
  </table>
  <p class="bl-muted">{{ .Count }} row{{ plural .Count }}</p>
</div>
{{- end }}
`

const pageCSS = `
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif; font-size: 14px; max-width: 1240px; margin: 0 auto; padding: 20px; }
        .bl-header h1 { font-size: 18px; margin: 0 0 6px 0; }
        .bl-muted { color: #64748b; font-size: 12px; }
        .bl-notice { color: #b45309; font-size: 12px; }
        .bl-legend { display: flex; flex-wrap: wrap; gap: 12px; font-size: 12px; margin: 6px 0; }
        .bl-legend-title { font-weight: 600; }
        .bl-legend-item i { display: inline-block; width: 10px; height: 10px; border-radius: 2px; margin-right: 4px; }
        .bl-empty { padding: 24px; color: #64748b; text-align: center; border: 1px dashed #cbd5e1; margin: 8px 0; }
        .bl-table table { border-collapse: collapse; width: 100%; font-size: 12px; }
        .bl-table th { text-align: left; border-bottom: 2px solid #334155; padding: 4px 8px; text-transform: capitalize; }
        .bl-table td { border-bottom: 1px solid #e2e8f0; padding: 4px 8px; }
        .bl-table td.num { text-align: right; font-variant-numeric: tabular-nums; }
    </style>
`
