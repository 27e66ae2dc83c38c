package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/mwiater/benchlens/internal/chart"
	"github.com/mwiater/benchlens/internal/logging"
	"github.com/mwiater/benchlens/internal/transform"
)

func hexColor(c transform.SeriesColor) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(c.Hex(), "#"))
}

// yRange pads a flat or single-valued range so axis ticks can be computed.
func yRange(values []float64) *gochart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}

// SVG writes one panel as an SVG image. Tables have no SVG form and return
// ErrUnsupported, as do panels with nothing to draw.
func SVG(w io.Writer, panel chart.Panel, width int) error {
	p := panel.Plan
	if width <= 0 {
		width = DefaultWidth
	}
	switch p.Kind {
	case chart.KindSeries:
		return svgSeries(w, panel, width)
	case chart.KindPie:
		return svgPie(w, panel, width)
	case chart.KindTable:
		return fmt.Errorf("svg %s: %w", p.Type, ErrUnsupported)
	default:
		return fmt.Errorf("svg: no data: %w", ErrUnsupported)
	}
}

func svgSeries(w io.Writer, panel chart.Panel, width int) error {
	p := panel.Plan
	labels := p.Series.Labels()

	switch {
	case p.Type == chart.Line || p.Type == chart.Area:
		return svgLine(w, panel, width)
	case len(p.Series.SeriesKeys) <= 1 && p.Type != chart.StackedBar:
		var key string
		if len(p.Series.SeriesKeys) == 1 {
			key = p.Series.SeriesKeys[0]
		}
		values := p.Series.Column(key)
		bars := make([]gochart.Value, len(values))
		for i, v := range values {
			bars[i] = gochart.Value{
				Value: v,
				Label: labels[i],
				Style: gochart.Style{FillColor: hexColor(transform.ColorForIndex(0)), StrokeColor: hexColor(transform.ColorForIndex(0))},
			}
		}
		bc := gochart.BarChart{
			Title:    panel.Label,
			Width:    width,
			Height:   p.Height,
			BarWidth: max(8, min(60, width/(2*max(len(bars), 1)))),
			Bars:     bars,
			YAxis: gochart.YAxis{
				Name:  p.Unit,
				Range: yRange(values),
			},
		}
		if p.Config.ShowGrid {
			bc.YAxis.GridMajorStyle = gochart.Style{StrokeColor: drawing.ColorFromHex("e2e8f0"), StrokeWidth: 1}
		}
		return bc.Render(gochart.SVG, w)
	default:
		// go-chart has no grouped bars; multi-series bars draw stacked.
		stacked := make([]gochart.StackedBar, len(labels))
		for i, row := range p.Series.ChartData {
			values := make([]gochart.Value, len(p.Series.SeriesKeys))
			for j, key := range p.Series.SeriesKeys {
				c := hexColor(transform.ColorForIndex(j))
				values[j] = gochart.Value{
					Value: row.Value(key),
					Label: key,
					Style: gochart.Style{FillColor: c, StrokeColor: c},
				}
			}
			stacked[i] = gochart.StackedBar{Name: labels[i], Values: values}
		}
		sbc := gochart.StackedBarChart{
			Title:  panel.Label,
			Width:  width,
			Height: p.Height,
			Bars:   stacked,
		}
		return sbc.Render(gochart.SVG, w)
	}
}

func svgLine(w io.Writer, panel chart.Panel, width int) error {
	p := panel.Plan
	labels := p.Series.Labels()
	xs := make([]float64, len(labels))
	ticks := make([]gochart.Tick, len(labels))
	for i, l := range labels {
		xs[i] = float64(i)
		ticks[i] = gochart.Tick{Value: float64(i), Label: l}
	}

	var (
		series []gochart.Series
		all    []float64
	)
	for i, key := range p.Series.SeriesKeys {
		ys := p.Series.Column(key)
		all = append(all, ys...)
		c := hexColor(transform.ColorForIndex(i))
		style := gochart.Style{StrokeColor: c, StrokeWidth: 2}
		if p.Type == chart.Area {
			style.FillColor = c.WithAlpha(38)
		}
		if p.Config.ShowDataLabels {
			style.DotColor = c
			style.DotWidth = 3
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    key,
			XValues: xs,
			YValues: ys,
			Style:   style,
		})
	}

	ch := gochart.Chart{
		Title:  panel.Label,
		Width:  width,
		Height: p.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 20, Left: 16, Right: 12, Bottom: 16},
		},
		XAxis: gochart.XAxis{
			Name:  p.Series.XKey,
			Ticks: ticks,
			Range: &gochart.ContinuousRange{Min: 0, Max: float64(max(len(labels)-1, 1))},
		},
		YAxis: gochart.YAxis{
			Name:  p.Unit,
			Range: yRange(all),
		},
		Series: series,
	}
	if p.Config.ShowGrid {
		ch.YAxis.GridMajorStyle = gochart.Style{StrokeColor: drawing.ColorFromHex("e2e8f0"), StrokeWidth: 1}
	}
	if p.ShowLegend {
		ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	}
	return ch.Render(gochart.SVG, w)
}

func svgPie(w io.Writer, panel chart.Panel, width int) error {
	p := panel.Plan
	values := make([]gochart.Value, len(p.Slices))
	for i, s := range p.Slices {
		c := hexColor(s.Color)
		values[i] = gochart.Value{
			Value: s.Value,
			Label: s.Label,
			Style: gochart.Style{FillColor: c, StrokeColor: drawing.ColorWhite},
		}
	}
	if p.Donut {
		dc := gochart.DonutChart{Title: panel.Label, Width: width, Height: p.Height, Values: values}
		return dc.Render(gochart.SVG, w)
	}
	pc := gochart.PieChart{Title: panel.Label, Width: width, Height: p.Height, Values: values}
	return pc.Render(gochart.SVG, w)
}

// SVGFiles writes every drawable panel of g to dir as <base>[-<n>].svg and
// returns the written paths. Panels without an SVG form are skipped and
// logged; a grid with no drawable panel returns ErrUnsupported.
func SVGFiles(dir, base string, g chart.Grid, width int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if g.Mode == transform.ModeGrid && width <= 0 {
		width = panelWidth(g, Options{})
	}

	var paths []string
	for i, panel := range g.Panels {
		name := base + ".svg"
		if len(g.Panels) > 1 {
			name = fmt.Sprintf("%s-%02d.svg", base, i+1)
		}
		path := filepath.Join(dir, name)

		var buf strings.Builder
		if err := SVG(&buf, panel, width); err != nil {
			if len(g.Panels) == 1 {
				return nil, err
			}
			logging.LogEvent("svg: skipped panel %q: %v", panel.Label, err)
			continue
		}
		if err := os.WriteFile(path, []byte(buf.String()), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("svg %s: %w", g.Type, ErrUnsupported)
	}
	return paths, nil
}
