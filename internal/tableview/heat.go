package tableview

import (
	"github.com/mwiater/benchlens/internal/result"
	"github.com/mwiater/benchlens/internal/transform"
)

const (
	// HeatLow is the alpha applied to a column's minimum.
	HeatLow = 0.06
	// HeatHigh is the alpha applied to a column's maximum.
	HeatHigh = 0.20
)

// heatColor is the base hue of every heat cell.
var heatColor = transform.ColorForIndex(0)

// Range is the min/max of a numeric column across all rows.
type Range struct {
	Min, Max float64
}

// Alpha interpolates v between HeatLow and HeatHigh. A flat range yields no
// heat.
func (r Range) Alpha(v float64) (float64, bool) {
	if r.Max == r.Min {
		return 0, false
	}
	pct := (v - r.Min) / (r.Max - r.Min)
	return HeatLow + pct*(HeatHigh-HeatLow), true
}

// Heat holds the ranges of every numeric column.
type Heat map[string]Range

// NewHeat scans all rows of res, not only one page, for numeric ranges. Null
// cells are ignored; columns with no numeric cells get no range.
func NewHeat(res *result.Result) Heat {
	h := Heat{}
	if res == nil {
		return h
	}
	for _, c := range Columns(res) {
		if c.Type != result.TypeNumber {
			continue
		}
		var (
			r     Range
			found bool
		)
		for _, row := range res.Rows {
			f, ok := row[c.Name].(float64)
			if !ok {
				continue
			}
			if !found {
				r = Range{Min: f, Max: f}
				found = true
				continue
			}
			r.Min = min(r.Min, f)
			r.Max = max(r.Max, f)
		}
		if found {
			h[c.Name] = r
		}
	}
	return h
}

// Alpha returns the heat alpha of a cell, or false for neutral cells.
func (h Heat) Alpha(col string, v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	r, ok := h[col]
	if !ok {
		return 0, false
	}
	return r.Alpha(f)
}

// CSS returns the hsla() background of a cell, or "" for neutral cells.
func (h Heat) CSS(col string, v any) string {
	alpha, ok := h.Alpha(col, v)
	if !ok {
		return ""
	}
	return heatColor.CSSAlpha(alpha)
}

// Hex returns the background of a cell blended over white, or "" for neutral
// cells.
func (h Heat) Hex(col string, v any) string {
	alpha, ok := h.Alpha(col, v)
	if !ok {
		return ""
	}
	return heatColor.BlendHex(alpha)
}
