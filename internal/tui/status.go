// internal/tui/status.go
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/benchlens/internal/chart"
	"github.com/mwiater/benchlens/internal/tableview"
	"github.com/mwiater/benchlens/internal/transform"
)

var (
	titleStyle   = lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	badgeStyle   = lipgloss.NewStyle().Background(lipgloss.Color("255")).Foreground(lipgloss.Color("0")).Padding(0, 1).MarginLeft(1)
	loadingStyle = lipgloss.NewStyle().Background(lipgloss.Color("229")).Foreground(lipgloss.Color("0")).Padding(0, 1).MarginLeft(1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// sortLabel describes the active sort for the status bar.
func sortLabel(s tableview.Sort) string {
	if s.Column == "" {
		return "Sort: none"
	}
	return fmt.Sprintf("Sort: %s %s", tableview.HeaderLabel(s.Column), arrow(s.Direction))
}

func arrow(d tableview.Direction) string {
	if d == tableview.Desc {
		return "▼"
	}
	return "▲"
}

// renderBadge returns a lipgloss badge for a status label.
func renderBadge(label string) string {
	return badgeStyle.Render(label)
}

// chartSummary describes the chart the current result would produce: its
// type, the facet split, and legend totals for a single multi-series chart.
func chartSummary(g chart.Grid) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Chart: %s", g.Type.Label())
	if g.Mode == transform.ModeGrid {
		fmt.Fprintf(&b, " · %d charts split by %s", len(g.Panels), g.FacetColumn)
		if g.HiddenFacets > 0 {
			fmt.Fprintf(&b, " (%d more not shown)", g.HiddenFacets)
		}
		return b.String()
	}
	if len(g.Panels) == 0 {
		return b.String()
	}
	plan := g.Panels[0].Plan
	switch plan.Kind {
	case chart.KindNoData:
		b.WriteString(" · no data")
	case chart.KindSeries:
		if plan.ShowLegend {
			parts := make([]string, 0, len(plan.Legend))
			for _, item := range plan.Legend {
				parts = append(parts, fmt.Sprintf("%s %s", item.Label, tableview.FormatNumber(item.Total)))
			}
			b.WriteString(" · " + strings.Join(parts, ", "))
		}
		if plan.Unit != "" {
			b.WriteString(" (" + plan.Unit + ")")
		}
	case chart.KindPie:
		fmt.Fprintf(&b, " · %d slices, total %s", len(plan.Slices), tableview.FormatNumber(plan.Total()))
	}
	return b.String()
}
