package transform

import (
	"maps"

	"github.com/mwiater/benchlens/internal/result"
)

// MaxFacets caps the number of sub-charts in a faceted grid.
const MaxFacets = 12

// facetColumnIndex is the position of the categorical column that splits a
// result into facets; the first two are consumed by the series pivot.
const facetColumnIndex = 2

// Mode tells the renderer whether to draw one chart or a grid.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeGrid   Mode = "grid"
)

// Facet is a sub-result restricted to one value of the facet column.
type Facet struct {
	Label string         `json:"label"`
	Data  *result.Result `json:"data"`
}

// Decomposition is the outcome of DecomposeData.
type Decomposition struct {
	Mode        Mode    `json:"mode"`
	FacetColumn string  `json:"facetColumn,omitempty"`
	Facets      []Facet `json:"facets,omitempty"`
	GridCols    int     `json:"gridCols,omitempty"`
}

// DecomposeData decides between a single chart and a faceted grid. Results
// with three or more categorical columns are split on the third one. Facet
// values are collected in encounter order and scanning stops at MaxFacets, so
// rows whose value is first seen after the cap belong to no facet.
func DecomposeData(res *result.Result) Decomposition {
	return decompose(res, Classify(res))
}

func decompose(res *result.Result, c Classification) Decomposition {
	if res == nil || len(c.Categorical) <= facetColumnIndex {
		return Decomposition{Mode: ModeSingle}
	}

	col := c.Categorical[facetColumnIndex].Name
	values := facetValues(res.Rows, col, MaxFacets)

	facets := make([]Facet, 0, len(values))
	columns := res.WithoutColumn(col)
	for _, v := range values {
		var rows []result.Row
		for _, row := range res.Rows {
			if result.String(row[col]) != v {
				continue
			}
			trimmed := make(result.Row, len(columns))
			for _, fc := range columns {
				trimmed[fc.Name] = row[fc.Name]
			}
			rows = append(rows, trimmed)
		}
		facets = append(facets, Facet{
			Label: v,
			Data: &result.Result{
				Columns:   columns,
				Rows:      rows,
				TotalRows: len(rows),
				Metadata:  maps.Clone(res.Metadata),
			},
		})
	}

	return Decomposition{
		Mode:        ModeGrid,
		FacetColumn: col,
		Facets:      facets,
		GridCols:    gridCols(len(facets)),
	}
}

func gridCols(n int) int {
	if n <= 4 {
		return 2
	}
	return 3
}

// facetValues returns distinct stringified values of col in encounter order,
// stopping once limit values have been found. A limit <= 0 scans every row.
func facetValues(rows []result.Row, col string, limit int) []string {
	var values []string
	seen := make(map[string]bool)
	for _, row := range rows {
		v := result.String(row[col])
		if seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
		if limit > 0 && len(values) >= limit {
			break
		}
	}
	return values
}

// HiddenFacetValues reports how many distinct facet values were left out of
// the grid by the MaxFacets cap. It does not change which facets are shown.
func HiddenFacetValues(res *result.Result) int {
	c := Classify(res)
	if res == nil || len(c.Categorical) <= facetColumnIndex {
		return 0
	}
	total := len(facetValues(res.Rows, c.Categorical[facetColumnIndex].Name, 0))
	if total <= MaxFacets {
		return 0
	}
	return total - MaxFacets
}
