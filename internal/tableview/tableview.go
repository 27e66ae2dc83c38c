// internal/tableview/tableview.go
// Package tableview presents a Result as a sortable, paginated grid with
// per-column heat annotations.
package tableview

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mwiater/benchlens/internal/result"
	"github.com/mwiater/benchlens/internal/transform"
)

// PageSize is the fixed number of rows per page.
const PageSize = 25

// Direction is a sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// Sort is the active sort column and direction. An empty Column means the
// rows keep their original order.
type Sort struct {
	Column    string
	Direction Direction
}

// Toggle returns the sort state after activating col: the same column flips
// direction, a new column starts ascending.
func (s Sort) Toggle(col string) Sort {
	if s.Column == col {
		if s.Direction == Asc {
			return Sort{Column: col, Direction: Desc}
		}
		return Sort{Column: col, Direction: Asc}
	}
	return Sort{Column: col, Direction: Asc}
}

// Columns returns the displayable columns of res: everything except unit.
func Columns(res *result.Result) []result.Column {
	if res == nil {
		return nil
	}
	return res.WithoutColumn(transform.UnitColumn)
}

// SortRows returns a stably sorted copy of rows. Numbers compare
// numerically, other values by locale collation, and nulls always sort last.
func SortRows(rows []result.Row, s Sort) []result.Row {
	out := slices.Clone(rows)
	if s.Column == "" {
		return out
	}
	coll := collate.New(language.Und)
	slices.SortStableFunc(out, func(a, b result.Row) int {
		return compareCells(coll, a[s.Column], b[s.Column], s.Direction)
	})
	return out
}

func compareCells(coll *collate.Collator, av, bv any, dir Direction) int {
	switch {
	case av == nil && bv == nil:
		return 0
	case av == nil:
		return 1
	case bv == nil:
		return -1
	}

	var cmp int
	af, aNum := av.(float64)
	bf, bNum := bv.(float64)
	if aNum && bNum {
		switch {
		case af < bf:
			cmp = -1
		case af > bf:
			cmp = 1
		}
	} else {
		cmp = coll.CompareString(result.String(av), result.String(bv))
	}
	if dir == Desc {
		return -cmp
	}
	return cmp
}

// TotalPages returns the page count for n rows.
func TotalPages(n int) int {
	return (n + PageSize - 1) / PageSize
}

// Page returns the rows of the zero-based page index. Out-of-range pages are
// empty.
func Page(rows []result.Row, page int) []result.Row {
	start := page * PageSize
	if page < 0 || start >= len(rows) {
		return nil
	}
	end := min(start+PageSize, len(rows))
	return rows[start:end]
}

// View is the stateful table over one Result: it remembers the sort and page
// the caller selected. Changing the sort does not reset the page.
type View struct {
	res     *result.Result
	columns []result.Column
	heat    Heat
	sort    Sort
	page    int
	sorted  []result.Row
}

// New builds a View over res with no sort applied.
func New(res *result.Result) *View {
	v := &View{
		res:     res,
		columns: Columns(res),
		heat:    NewHeat(res),
	}
	if res != nil {
		v.sorted = slices.Clone(res.Rows)
	}
	return v
}

// Columns returns the displayed columns.
func (v *View) Columns() []result.Column { return v.columns }

// Sort returns the active sort.
func (v *View) Sort() Sort { return v.sort }

// Page returns the current zero-based page index.
func (v *View) Page() int { return v.page }

// Heat returns the heat ranges computed over all rows.
func (v *View) Heat() Heat { return v.heat }

// Len returns the total number of rows.
func (v *View) Len() int { return len(v.sorted) }

// TotalPages returns the number of pages.
func (v *View) TotalPages() int { return TotalPages(len(v.sorted)) }

// ToggleSort activates col as the sort column.
func (v *View) ToggleSort(col string) {
	v.SetSort(v.sort.Toggle(col))
}

// SetSort applies s.
func (v *View) SetSort(s Sort) {
	v.sort = s
	if v.res == nil {
		return
	}
	v.sorted = SortRows(v.res.Rows, s)
}

// SetPage moves to page p, clamped to the valid range.
func (v *View) SetPage(p int) {
	last := v.TotalPages() - 1
	if p > last {
		p = last
	}
	if p < 0 {
		p = 0
	}
	v.page = p
}

// NextPage advances one page if possible.
func (v *View) NextPage() { v.SetPage(v.page + 1) }

// PrevPage goes back one page if possible.
func (v *View) PrevPage() { v.SetPage(v.page - 1) }

// Rows returns the rows of the current page in sorted order.
func (v *View) Rows() []result.Row {
	return Page(v.sorted, v.page)
}

// Sorted returns every row in sorted order.
func (v *View) Sorted() []result.Row { return v.sorted }

// Range returns the 1-based first and last row numbers shown on the current
// page, or zeros for an empty table.
func (v *View) Range() (int, int) {
	if len(v.sorted) == 0 {
		return 0, 0
	}
	first := v.page*PageSize + 1
	last := min((v.page+1)*PageSize, len(v.sorted))
	return first, last
}
