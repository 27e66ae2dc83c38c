// internal/chart/chart.go
// Package chart decides what to draw for a Result and a chart type. It turns
// transform output into render plans that the html, svg and terminal
// renderers consume without touching raw rows again.
package chart

import (
	"fmt"
	"strings"
)

// Type is a chart type selected by the user.
type Type int

const (
	Bar Type = iota
	Line
	BarHorizontal
	StackedBar
	Area
	Pie
	Donut
	Table
)

var typeNames = [...]string{
	Bar:           "bar",
	Line:          "line",
	BarHorizontal: "bar_horizontal",
	StackedBar:    "stacked_bar",
	Area:          "area",
	Pie:           "pie",
	Donut:         "donut",
	Table:         "table",
}

var typeLabels = [...]string{
	Bar:           "Bar",
	Line:          "Line",
	BarHorizontal: "Horizontal Bar",
	StackedBar:    "Stacked Bar",
	Area:          "Area",
	Pie:           "Pie",
	Donut:         "Donut",
	Table:         "Table",
}

// Types lists every chart type in display order.
func Types() []Type {
	return []Type{Line, Bar, BarHorizontal, StackedBar, Area, Pie, Donut, Table}
}

func (t Type) valid() bool {
	return t >= Bar && int(t) < len(typeNames)
}

// String returns the wire name of t.
func (t Type) String() string {
	if !t.valid() {
		return typeNames[Bar]
	}
	return typeNames[t]
}

// Label returns a human readable name.
func (t Type) Label() string {
	if !t.valid() {
		return typeLabels[Bar]
	}
	return typeLabels[t]
}

// Series reports whether t is drawn from pivoted series data.
func (t Type) Series() bool {
	switch t {
	case Line, Bar, BarHorizontal, StackedBar, Area:
		return true
	default:
		return false
	}
}

// ParseType maps a wire name to a Type. Unknown names fall back to Bar and
// report false.
func ParseType(name string) (Type, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range typeNames {
		if n == name {
			return Type(i), true
		}
	}
	return Bar, false
}

// MustParseType is ParseType for callers that accept the Bar fallback.
func MustParseType(name string) Type {
	t, _ := ParseType(name)
	return t
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode to
// Bar.
func (t *Type) UnmarshalText(b []byte) error {
	*t = MustParseType(string(b))
	return nil
}

// ParseTypeStrict is ParseType returning an error for unknown names, for
// command line validation.
func ParseTypeStrict(name string) (Type, error) {
	t, ok := ParseType(name)
	if !ok {
		return t, fmt.Errorf("unknown chart type %q (want one of %s)", name, strings.Join(typeNames[:], ", "))
	}
	return t, nil
}

// Recommended suggests chart types for a query grouped by n dimensions.
func Recommended(groupBy int) []Type {
	switch {
	case groupBy <= 0:
		return []Type{Bar, Table}
	case groupBy == 1:
		return []Type{Bar, Pie, BarHorizontal}
	default:
		return []Type{Line, StackedBar, Bar}
	}
}

// Config holds the display toggles shared by every chart type.
type Config struct {
	ShowDataLabels bool `json:"showDataLabels" mapstructure:"show_data_labels"`
	ShowLegend     bool `json:"showLegend" mapstructure:"show_legend"`
	ShowGrid       bool `json:"showGrid" mapstructure:"show_grid"`
}

// DefaultConfig is labels off, legend and grid on.
func DefaultConfig() Config {
	return Config{ShowDataLabels: false, ShowLegend: true, ShowGrid: true}
}
