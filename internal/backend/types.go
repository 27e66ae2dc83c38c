package backend

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mwiater/benchlens/internal/chart"
	"github.com/mwiater/benchlens/internal/result"
)

// Aggregation is how values are combined across grouped rows.
type Aggregation string

const (
	AggNone    Aggregation = "none"
	AggSum     Aggregation = "sum"
	AggAverage Aggregation = "average"
	AggMedian  Aggregation = "median"
	AggMin     Aggregation = "min"
	AggMax     Aggregation = "max"
	AggCount   Aggregation = "count"
	AggLatest  Aggregation = "latest"
)

// Aggregations lists every aggregation the backend accepts.
var Aggregations = []Aggregation{AggNone, AggSum, AggAverage, AggMedian, AggMin, AggMax, AggCount, AggLatest}

// ParseAggregation validates an aggregation name.
func ParseAggregation(name string) (Aggregation, error) {
	n := Aggregation(strings.ToLower(strings.TrimSpace(name)))
	for _, a := range Aggregations {
		if a == n {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown aggregation %q", name)
}

// Filters restrict an explore query. Nil year bounds are sent as null.
type Filters struct {
	EntityIDs        []string            `json:"entity_ids"`
	FiscalYearStart  *int                `json:"fiscal_year_start"`
	FiscalYearEnd    *int                `json:"fiscal_year_end"`
	DimensionFilters map[string][]string `json:"dimension_filters"`
}

// EmptyFilters returns filters that match everything, with non-nil
// collections so they encode as [] and {}.
func EmptyFilters() Filters {
	return Filters{EntityIDs: []string{}, DimensionFilters: map[string][]string{}}
}

// ExploreRequest is the body of the explore and verify endpoints.
type ExploreRequest struct {
	MetricIDs   []string    `json:"metric_ids"`
	GroupBy     []string    `json:"group_by"`
	Filters     Filters     `json:"filters"`
	Aggregation Aggregation `json:"aggregation"`
	SortBy      string      `json:"sort_by,omitempty"`
	SortOrder   string      `json:"sort_order,omitempty"`
	Limit       int         `json:"limit,omitempty"`
}

// Entity is one institution known to the backend.
type Entity struct {
	ID   string `json:"entity_id"`
	Name string `json:"entity_name"`
	Type string `json:"entity_type"`
}

// Discrepancy is one mismatch between the analytics query and raw SQL.
type Discrepancy struct {
	Type           string         `json:"type"`
	Row            *int           `json:"row,omitempty"`
	AnalyticsValue *float64       `json:"analytics_value,omitempty"`
	RawValue       *float64       `json:"raw_value,omitempty"`
	AnalyticsCount *int           `json:"analytics_count,omitempty"`
	RawCount       *int           `json:"raw_count,omitempty"`
	Context        map[string]any `json:"context,omitempty"`
}

// RowCountMismatch is the discrepancy type for differing row counts.
const RowCountMismatch = "row_count_mismatch"

func (d Discrepancy) String() string {
	if d.Type == RowCountMismatch {
		return fmt.Sprintf("Row count: analytics=%s, raw=%s", intString(d.AnalyticsCount), intString(d.RawCount))
	}
	return fmt.Sprintf("Row %s: analytics=%s, raw=%s", intString(d.Row), floatString(d.AnalyticsValue), floatString(d.RawValue))
}

func intString(v *int) string {
	if v == nil {
		return "undefined"
	}
	return fmt.Sprint(*v)
}

func floatString(v *float64) string {
	if v == nil {
		return "undefined"
	}
	return result.String(*v)
}

// Validation is the verify endpoint's cross-check of a query against raw SQL.
type Validation struct {
	AnalyticsResult *result.Result   `json:"-"`
	RawQueryResult  []map[string]any `json:"raw_query_result"`
	Match           bool             `json:"match"`
	Discrepancies   []Discrepancy    `json:"discrepancies"`
	RawSQL          string           `json:"raw_sql"`
}

type validationWire struct {
	Validation
	AnalyticsResult json.RawMessage `json:"analytics_result"`
}

// SavedReport is a stored query with its chart settings.
type SavedReport struct {
	ID          string         `json:"report_id"`
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	Tags        []string       `json:"tags"`
	QueryConfig ExploreRequest `json:"query_config"`
	ChartType   chart.Type     `json:"chart_type"`
	ChartConfig *chart.Config  `json:"chart_config,omitempty"`
	CreatedAt   string         `json:"created_at,omitempty"`
	UpdatedAt   string         `json:"updated_at,omitempty"`
	CreatedBy   string         `json:"created_by,omitempty"`
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}
