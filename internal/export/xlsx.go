// internal/export/xlsx.go
// Package export writes results to spreadsheet workbooks with the same
// columns, ordering and heat shading as the table view.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mwiater/benchlens/internal/result"
	"github.com/mwiater/benchlens/internal/tableview"
	"github.com/mwiater/benchlens/internal/transform"
	"github.com/mwiater/benchlens/internal/util"
)

// DataSheet is the name of the sheet holding every row.
const DataSheet = "Data"

const maxSheetName = 31

// Options controls workbook output.
type Options struct {
	Sort tableview.Sort
	// Facets adds one sheet per facet when the result decomposes into a grid.
	Facets bool
}

type workbook struct {
	f      *excelize.File
	header int
	styles map[string]int
	names  map[string]bool
}

// WriteXLSX writes res as a workbook to w.
func WriteXLSX(w io.Writer, res *result.Result, o Options) error {
	f, err := build(res, o)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// SaveXLSX writes res as a workbook to path, creating parent directories.
func SaveXLSX(path string, res *result.Result, o Options) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := build(res, o)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func build(res *result.Result, o Options) (*excelize.File, error) {
	if res == nil {
		res = &result.Result{}
	}
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: []excelize.Border{{Type: "bottom", Color: "334155", Style: 2}},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	wb := &workbook{f: f, header: header, styles: map[string]int{}, names: map[string]bool{}}

	if err := f.SetSheetName("Sheet1", DataSheet); err != nil {
		f.Close()
		return nil, err
	}
	wb.names[DataSheet] = true
	if err := wb.writeSheet(DataSheet, res, o.Sort); err != nil {
		f.Close()
		return nil, err
	}

	if o.Facets {
		d := transform.DecomposeData(res)
		for _, facet := range d.Facets {
			name := wb.sheetName(facet.Label)
			if _, err := f.NewSheet(name); err != nil {
				f.Close()
				return nil, err
			}
			if err := wb.writeSheet(name, facet.Data, o.Sort); err != nil {
				f.Close()
				return nil, err
			}
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func (wb *workbook) writeSheet(sheet string, res *result.Result, s tableview.Sort) error {
	view := tableview.New(res)
	view.SetSort(s)
	heat := view.Heat()
	columns := view.Columns()

	for i, c := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		label := tableview.HeaderLabel(c.Name)
		if c.Unit != "" {
			label += " (" + c.Unit + ")"
		}
		if err := wb.f.SetCellValue(sheet, cell, label); err != nil {
			return err
		}
		if err := wb.f.SetCellStyle(sheet, cell, cell, wb.header); err != nil {
			return err
		}
		width := max(12, min(40, util.DisplayWidth(label)+4))
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := wb.f.SetColWidth(sheet, col, col, float64(width)); err != nil {
			return err
		}
	}

	for r, row := range view.Sorted() {
		for i, c := range columns {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return err
			}
			v := row[c.Name]
			if v == nil {
				continue
			}
			var value any = result.String(v)
			if c.Type == result.TypeNumber {
				value = result.Number(v)
			}
			if err := wb.f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
			if hex := heat.Hex(c.Name, v); hex != "" {
				style, err := wb.fill(hex)
				if err != nil {
					return err
				}
				if err := wb.f.SetCellStyle(sheet, cell, cell, style); err != nil {
					return err
				}
			}
		}
	}

	return wb.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (wb *workbook) fill(hex string) (int, error) {
	if id, ok := wb.styles[hex]; ok {
		return id, nil
	}
	id, err := wb.f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hex}},
	})
	if err != nil {
		return 0, err
	}
	wb.styles[hex] = id
	return id, nil
}

var sheetNameReplacer = strings.NewReplacer(":", "-", "\\", "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")")

// sheetName makes label a valid, unique worksheet name.
func (wb *workbook) sheetName(label string) string {
	base := strings.TrimSpace(sheetNameReplacer.Replace(label))
	if base == "" {
		base = "Blank"
	}
	base = util.TruncateRunes(base, maxSheetName)
	name := base
	for n := 2; wb.names[name]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = util.TruncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	wb.names[name] = true
	return name
}
