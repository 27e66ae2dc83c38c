package tableview

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/mwiater/benchlens/internal/result"
)

// NullCell is shown for null values.
const NullCell = "-"

var printer = message.NewPrinter(language.English)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatCell renders a cell for display: numbers with grouping and at most
// two fraction digits, dates as month/day/year, everything else verbatim.
func FormatCell(c result.Column, v any) string {
	if v == nil {
		return NullCell
	}
	switch c.Type {
	case result.TypeNumber:
		return FormatNumber(result.Number(v))
	case result.TypeDate:
		s := result.String(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format("1/2/2006")
			}
		}
		return s
	default:
		return result.String(v)
	}
}

// FormatNumber groups thousands and keeps at most two fraction digits.
func FormatNumber(f float64) string {
	return printer.Sprint(number.Decimal(f, number.MaxFractionDigits(2)))
}

// HeaderLabel turns a column name into a header: underscores become spaces.
func HeaderLabel(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}
