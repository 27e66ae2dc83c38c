package transform

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// SeriesColor is one palette entry, kept in HSL so it can be emitted as a CSS
// color or converted to hex for terminals and spreadsheets.
type SeriesColor struct {
	H, S, L float64
}

// palette is a muted eight-color scheme indexed by series position.
var palette = []SeriesColor{
	{210, 0.55, 0.40}, // deep blue
	{152, 0.38, 0.38}, // sage green
	{20, 0.55, 0.52},  // terracotta
	{270, 0.35, 0.48}, // muted purple
	{35, 0.50, 0.48},  // amber gold
	{190, 0.45, 0.40}, // teal
	{340, 0.40, 0.48}, // rose
	{60, 0.30, 0.42},  // olive
}

// PaletteSize is the number of distinct series colors before wrapping.
var PaletteSize = len(palette)

// ColorForIndex returns the color for the series at position i in
// SeriesKeys. Negative indexes are treated as 0.
func ColorForIndex(i int) SeriesColor {
	if i < 0 {
		i = 0
	}
	return palette[i%len(palette)]
}

// SeriesColors returns the first n palette colors, wrapping as needed.
func SeriesColors(n int) []SeriesColor {
	colors := make([]SeriesColor, n)
	for i := range colors {
		colors[i] = ColorForIndex(i)
	}
	return colors
}

// CSS renders the color as a CSS hsl() value.
func (c SeriesColor) CSS() string {
	return fmt.Sprintf("hsl(%.0f, %.0f%%, %.0f%%)", c.H, c.S*100, c.L*100)
}

// CSSAlpha renders the color as a CSS hsla() value with the given alpha.
func (c SeriesColor) CSSAlpha(alpha float64) string {
	return fmt.Sprintf("hsla(%.0f, %.0f%%, %.0f%%, %.3f)", c.H, c.S*100, c.L*100, alpha)
}

// Hex renders the color as #rrggbb.
func (c SeriesColor) Hex() string {
	return colorful.Hsl(c.H, c.S, c.L).Clamped().Hex()
}

// BlendHex renders the color composited over white at the given alpha, for
// targets without transparency support.
func (c SeriesColor) BlendHex(alpha float64) string {
	white := colorful.Color{R: 1, G: 1, B: 1}
	return white.BlendRgb(colorful.Hsl(c.H, c.S, c.L), alpha).Clamped().Hex()
}
