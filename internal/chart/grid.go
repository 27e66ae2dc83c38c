package chart

import (
	"github.com/mwiater/benchlens/internal/result"
	"github.com/mwiater/benchlens/internal/transform"
)

// Panel is one titled chart in a Grid. Single-mode grids have one untitled
// panel.
type Panel struct {
	Label string `json:"label,omitempty"`
	Plan  Plan   `json:"plan"`
}

// Grid is the full layout for a Result: either one chart or a small-multiples
// grid split by a facet column.
type Grid struct {
	Mode        transform.Mode `json:"mode"`
	Type        Type           `json:"type"`
	FacetColumn string         `json:"facetColumn,omitempty"`
	GridCols    int            `json:"gridCols,omitempty"`
	Panels      []Panel        `json:"panels"`
	// HiddenFacets counts facet values beyond the cap that are not drawn.
	HiddenFacets int `json:"hiddenFacets,omitempty"`
}

// BuildGrid decomposes res and dispatches every facet. Empty results give a
// single no-data panel.
func BuildGrid(res *result.Result, t Type, cfg Config) Grid {
	if res == nil || res.Empty() {
		return Grid{
			Mode:   transform.ModeSingle,
			Type:   t,
			Panels: []Panel{{Plan: dispatch(res, t, cfg, SingleHeight)}},
		}
	}
	return gridFrom(res, transform.DecomposeData(res), transform.HiddenFacetValues(res), t, cfg)
}

// BuildGridView is BuildGrid over a precomputed transform view, so a memoized
// decomposition is not recomputed.
func BuildGridView(res *result.Result, v transform.View, t Type, cfg Config) Grid {
	if res == nil || res.Empty() {
		return BuildGrid(res, t, cfg)
	}
	return gridFrom(res, v.Decomposition, v.HiddenFacets, t, cfg)
}

func gridFrom(res *result.Result, d transform.Decomposition, hidden int, t Type, cfg Config) Grid {
	if d.Mode != transform.ModeGrid {
		return Grid{
			Mode:   transform.ModeSingle,
			Type:   t,
			Panels: []Panel{{Plan: dispatch(res, t, cfg, SingleHeight)}},
		}
	}

	g := Grid{
		Mode:         transform.ModeGrid,
		Type:         t,
		FacetColumn:  d.FacetColumn,
		GridCols:     d.GridCols,
		Panels:       make([]Panel, len(d.Facets)),
		HiddenFacets: hidden,
	}
	for i, f := range d.Facets {
		g.Panels[i] = Panel{Label: f.Label, Plan: dispatch(f.Data, t, cfg, FacetHeight)}
	}
	return g
}
