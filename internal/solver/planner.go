package solver

import (
	"github.com/eseidel/better-idle-sub000/internal/catalog"
	"github.com/eseidel/better-idle-sub000/internal/tuning"
)

// Planner plans toward goals over a fixed catalog. It is stateless across
// calls; all per-solve bookkeeping lives on the stack of Solve.
type Planner struct {
	cat  *catalog.Catalog
	tune tuning.Tuning
	diag Publisher
}

// New returns a Planner. A nil diag disables diagnostics.
func New(cat *catalog.Catalog, tune tuning.Tuning, diag Publisher) *Planner {
	if diag == nil {
		diag = NopPublisher()
	}
	return &Planner{cat: cat, tune: tune, diag: diag}
}

// Catalog returns the catalog the planner was built over.
func (p *Planner) Catalog() *catalog.Catalog { return p.cat }

// Tuning returns the planner knobs in effect.
func (p *Planner) Tuning() tuning.Tuning { return p.tune }
