package transform

import (
	"sync"

	"github.com/mwiater/benchlens/internal/result"
)

// View bundles every derived structure for one Result.
type View struct {
	Classification Classification
	Series         SeriesData
	Decomposition  Decomposition
	HiddenFacets   int
}

// Memo caches the derived View of the last Result it saw. The cache is keyed
// by pointer identity: a new Result value recomputes, the same pointer does
// not. Callers must treat a Result as immutable once handed to Memo.
type Memo struct {
	mu       sync.Mutex
	src      *result.Result
	view     View
	valid    bool
	computed int
}

// Get returns the derived view for res, recomputing only when res differs
// from the previous call.
func (m *Memo) Get(res *result.Result) View {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid && m.src == res {
		return m.view
	}
	c := Classify(res)
	m.view = View{
		Classification: c,
		Series:         buildSeries(res, c),
		Decomposition:  decompose(res, c),
		HiddenFacets:   HiddenFacetValues(res),
	}
	m.src = res
	m.valid = true
	m.computed++
	return m.view
}

// Computations returns how many times the view has been rebuilt.
func (m *Memo) Computations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.computed
}

// Reset drops the cached view.
func (m *Memo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.src = nil
	m.view = View{}
	m.valid = false
}
