// internal/tui/model.go
// Package tui is the terminal browser for query results: a paginated,
// sortable table with heat shading, backed by the query store when one is
// available.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mwiater/benchlens/internal/chart"
	"github.com/mwiater/benchlens/internal/logging"
	"github.com/mwiater/benchlens/internal/result"
	"github.com/mwiater/benchlens/internal/store"
	"github.com/mwiater/benchlens/internal/tableview"
	"github.com/mwiater/benchlens/internal/util"
)

// maxCellWidth caps the terminal width of one table cell.
const maxCellWidth = 28

// heatForeground keeps text readable over the light heat fills.
var heatForeground = lipgloss.Color("#0f172a")

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	selectedStyle = headerStyle.Foreground(lipgloss.Color("205")).Underline(true)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// queryDoneMsg reports that a store query finished. The store has already
// applied or dropped the response.
type queryDoneMsg struct {
	err error
}

// Model is the bubbletea model of the table browser.
type Model struct {
	ctx   context.Context
	store *store.Store
	title string

	res  *result.Result
	view *tableview.View
	col  int

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	loading bool
	err     string
	width   int
}

// New creates a browser. With a nil store the browser shows whatever
// SetResult provides and re-running queries is disabled.
func New(ctx context.Context, st *store.Store, title string) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := &Model{
		ctx:     ctx,
		store:   st,
		title:   title,
		keys:    defaultKeys(),
		help:    help.New(),
		spinner: s,
		view:    tableview.New(nil),
	}
	if st != nil {
		snap := st.Snapshot()
		m.err = snap.Error
		m.SetResult(snap.Result)
	}
	m.keys.Refresh.SetEnabled(st != nil)
	m.keys.Chart.SetEnabled(st != nil)
	return m
}

// SetResult replaces the displayed result. The active sort carries over when
// its column still exists; the page starts over.
func (m *Model) SetResult(res *result.Result) {
	prev := m.view.Sort()
	m.res = res
	m.view = tableview.New(res)
	if prev.Column != "" && res != nil && res.HasColumn(prev.Column) {
		m.view.SetSort(prev)
	}
	if n := len(m.view.Columns()); m.col >= n {
		m.col = max(0, n-1)
	}
}

// SetSort applies s to the current table.
func (m *Model) SetSort(s tableview.Sort) {
	m.view.SetSort(s)
}

// Init starts the first query when the store has metrics but no result yet.
func (m *Model) Init() tea.Cmd {
	if m.store == nil {
		return nil
	}
	snap := m.store.Snapshot()
	if snap.Result != nil || len(snap.MetricIDs) == 0 {
		return nil
	}
	return m.startQuery()
}

func (m *Model) startQuery() tea.Cmd {
	m.loading = true
	m.err = ""
	return tea.Batch(m.spinner.Tick, m.queryCmd())
}

func (m *Model) queryCmd() tea.Cmd {
	st, ctx := m.store, m.ctx
	return func() tea.Msg {
		return queryDoneMsg{err: st.Execute(ctx)}
	}
}

// Update handles key presses, window resizes and query completion.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case queryDoneMsg:
		m.loading = false
		snap := m.store.Snapshot()
		m.err = snap.Error
		if msg.err != nil {
			logging.LogEvent("tui: query failed: %v", msg.err)
		}
		if snap.Result != m.res {
			m.SetResult(snap.Result)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := m.view.Columns()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Left):
		if m.col > 0 {
			m.col--
		}
	case key.Matches(msg, m.keys.Right):
		if m.col < len(cols)-1 {
			m.col++
		}
	case key.Matches(msg, m.keys.Sort):
		if m.col < len(cols) {
			m.view.ToggleSort(cols[m.col].Name)
		}
	case key.Matches(msg, m.keys.Next):
		m.view.NextPage()
	case key.Matches(msg, m.keys.Prev):
		m.view.PrevPage()
	case key.Matches(msg, m.keys.First):
		m.view.SetPage(0)
	case key.Matches(msg, m.keys.Last):
		m.view.SetPage(m.view.TotalPages() - 1)
	case key.Matches(msg, m.keys.Chart):
		m.cycleChart()
	case key.Matches(msg, m.keys.Refresh):
		if !m.loading {
			return m, m.startQuery()
		}
	}
	return m, nil
}

func (m *Model) cycleChart() {
	types := chart.Types()
	current := m.store.Snapshot().ChartType
	for i, t := range types {
		if t == current {
			m.store.SetChartType(types[(i+1)%len(types)])
			return
		}
	}
	m.store.SetChartType(types[0])
}

// View renders the status bar, the current page and the help line.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString(renderBadge(sortLabel(m.view.Sort())))
	if m.loading {
		b.WriteString(loadingStyle.Render(m.spinner.View() + " Running query"))
	}
	b.WriteString("\n")
	if m.store != nil {
		b.WriteString(mutedStyle.Render(chartSummary(m.store.Grid())))
		b.WriteString("\n")
	}
	if m.err != "" {
		msg := m.err
		if m.width > 0 {
			msg = util.WrapToWidth(msg, m.width)
		}
		b.WriteString(errorStyle.Render(msg))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.view.Len() == 0 {
		b.WriteString(mutedStyle.Render("No data to display"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTable())
		b.WriteString("\n")
		first, last := m.view.Range()
		fmt.Fprintf(&b, "Showing %d-%d of %d rows · Page %d of %d\n",
			first, last, m.view.Len(), m.view.Page()+1, m.view.TotalPages())
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderTable() string {
	return RenderRows(m.view, m.view.Rows(), m.col)
}

// RenderRows draws rows of v as a bordered table with heat backgrounds and
// the sort arrow in the header. selected highlights one header; pass -1 for
// none.
func RenderRows(v *tableview.View, rows []result.Row, selected int) string {
	cols := v.Columns()
	heat := v.Heat()
	s := v.Sort()

	headers := make([]string, len(cols))
	for i, c := range cols {
		label := tableview.HeaderLabel(c.Name)
		if s.Column == c.Name {
			label += " " + arrow(s.Direction)
		}
		headers[i] = label
	}

	cells := make([][]string, len(rows))
	for r, row := range rows {
		line := make([]string, len(cols))
		for i, c := range cols {
			line[i] = util.TruncateRunes(tableview.FormatCell(c, row[c.Name]), maxCellWidth)
		}
		cells[r] = line
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				if col == selected {
					return selectedStyle
				}
				return headerStyle
			}
			style := cellStyle
			if col >= len(cols) || row < 0 || row >= len(rows) {
				return style
			}
			c := cols[col]
			if c.Type == result.TypeNumber {
				style = style.Align(lipgloss.Right)
			}
			if hex := heat.Hex(c.Name, rows[row][c.Name]); hex != "" {
				style = style.Background(lipgloss.Color(hex)).Foreground(heatForeground)
			}
			return style
		})
	return t.Render()
}
