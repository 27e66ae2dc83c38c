// internal/result/result.go
// Package result models the flat, typed tabular payload returned by the
// analytics query endpoint.
package result

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/spf13/cast"
)

// ColumnType is the declared type of a result column.
type ColumnType string

const (
	// TypeString marks a categorical column used as a grouping key.
	TypeString ColumnType = "string"
	// TypeNumber marks a measured quantity.
	TypeNumber ColumnType = "number"
	// TypeDate marks a date column.
	TypeDate ColumnType = "date"
)

// Column describes one column of a Result.
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
	Unit string     `json:"unit,omitempty"`
}

// Row maps declared column names to a cell value. Cells are nil, string,
// float64 or bool.
type Row map[string]any

// Result is the flat query payload. TotalRows may exceed len(Rows) when the
// backend truncated the result.
type Result struct {
	Columns   []Column       `json:"columns"`
	Rows      []Row          `json:"rows"`
	TotalRows int            `json:"total_rows"`
	Metadata  map[string]any `json:"metadata"`
}

// Column returns the descriptor with the given name.
func (r *Result) Column(name string) (Column, bool) {
	if r == nil {
		return Column{}, false
	}
	for _, c := range r.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HasColumn reports whether the result declares a column with the given name.
func (r *Result) HasColumn(name string) bool {
	_, ok := r.Column(name)
	return ok
}

// Empty reports whether the result carries no rows.
func (r *Result) Empty() bool {
	return r == nil || len(r.Rows) == 0
}

// WithoutColumn returns a copy of the column list minus the named column.
func (r *Result) WithoutColumn(name string) []Column {
	cols := make([]Column, 0, len(r.Columns))
	for _, c := range r.Columns {
		if c.Name != name {
			cols = append(cols, c)
		}
	}
	return cols
}

// Normalize rewrites every row so that it holds exactly one entry per
// declared column. Extraneous keys are dropped and missing keys become nil.
func (r *Result) Normalize() {
	for i, row := range r.Rows {
		clean := make(Row, len(r.Columns))
		for _, c := range r.Columns {
			clean[c.Name] = normalizeCell(row[c.Name])
		}
		r.Rows[i] = clean
	}
	if r.TotalRows < len(r.Rows) {
		r.TotalRows = len(r.Rows)
	}
}

func normalizeCell(v any) any {
	switch val := v.(type) {
	case nil, string, float64, bool:
		return val
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case float32:
		return float64(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return nil
		}
		return string(data)
	}
}

// String renders a cell the way grouping keys are compared: nil becomes the
// empty string and numbers use their shortest decimal form.
func String(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return cast.ToString(val)
	}
}

// Number coerces a cell to float64. Nil and non-numeric values become 0.
func Number(v any) float64 {
	if v == nil {
		return 0
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
