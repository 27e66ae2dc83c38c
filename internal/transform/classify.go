// internal/transform/classify.go
// Package transform turns a flat query Result into chart-ready structures:
// column roles, pivoted series, and faceted sub-results. Every function in
// this package is pure and never fails for a well-typed Result.
package transform

import "github.com/mwiater/benchlens/internal/result"

const (
	// ValueColumn is the conventional name of the measured column.
	ValueColumn = "value"
	// UnitColumn carries the unit of the value column.
	UnitColumn = "unit"
	// MetricIDColumn identifies the metric a row belongs to.
	MetricIDColumn = "metric_id"
)

// Classification groups the columns of a Result by role.
type Classification struct {
	// Categorical holds string columns usable as grouping keys, in declared order.
	Categorical []result.Column `json:"categorical"`
	// Value is the name of the numeric value column, or empty when there is none.
	Value    string          `json:"value"`
	Numeric  []result.Column `json:"numeric"`
	Dates    []result.Column `json:"dates"`
	Excluded []result.Column `json:"excluded"`
}

// CategoricalNames returns the categorical column names in order.
func (c Classification) CategoricalNames() []string {
	names := make([]string, len(c.Categorical))
	for i, col := range c.Categorical {
		names[i] = col.Name
	}
	return names
}

// Classify assigns a role to every column of res.
func Classify(res *result.Result) Classification {
	var c Classification
	if res == nil {
		return c
	}

	for _, col := range res.Columns {
		switch col.Type {
		case result.TypeString:
			if col.Name == UnitColumn || col.Name == MetricIDColumn {
				c.Excluded = append(c.Excluded, col)
				continue
			}
			c.Categorical = append(c.Categorical, col)
		case result.TypeNumber:
			c.Numeric = append(c.Numeric, col)
			if col.Name == ValueColumn {
				c.Value = col.Name
			}
		case result.TypeDate:
			c.Dates = append(c.Dates, col)
		}
	}

	if c.Value == "" && len(c.Numeric) > 0 {
		c.Value = c.Numeric[0].Name
	}
	return c
}
