package solver

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profile collects search statistics for tuning. It is diagnostic only:
// nothing in planning or execution reads it back.
type Profile struct {
	ExpandedNodes int
	EnqueuedNodes int
	DedupedNodes  int

	// FrontierPeak is the high-water mark of the frontier size.
	FrontierPeak int

	Segments int
	Replans  int

	// Boundaries counts every boundary hit during planning and execution,
	// by kind.
	Boundaries map[BoundaryKind]int

	// Macro aggregates the traces of every macro expansion the search ran.
	Macro MacroTrace

	// BestValue is the highest value-per-tick observed at any node.
	BestValue float64

	// SolveTime and ExecTime split the wall clock between planning and
	// running the real simulation.
	SolveTime time.Duration
	ExecTime  time.Duration

	PlannedTicks  int64
	ExecutedTicks int64
}

// NewProfile returns an empty profile.
func NewProfile() *Profile {
	return &Profile{Boundaries: make(map[BoundaryKind]int)}
}

// CountBoundary records one boundary hit.
func (pr *Profile) CountBoundary(k BoundaryKind) {
	if pr == nil {
		return
	}
	pr.Boundaries[k]++
}

// Observe keeps the running maximum of value per tick.
func (pr *Profile) Observe(value float64) {
	if pr == nil {
		return
	}
	if value > pr.BestValue {
		pr.BestValue = value
	}
}

// Merge folds another profile into this one.
func (pr *Profile) Merge(o *Profile) {
	if pr == nil || o == nil {
		return
	}
	pr.ExpandedNodes += o.ExpandedNodes
	pr.EnqueuedNodes += o.EnqueuedNodes
	pr.DedupedNodes += o.DedupedNodes
	if o.FrontierPeak > pr.FrontierPeak {
		pr.FrontierPeak = o.FrontierPeak
	}
	pr.Segments += o.Segments
	pr.Replans += o.Replans
	for k, n := range o.Boundaries {
		pr.Boundaries[k] += n
	}
	pr.Macro.Merge(o.Macro)
	if o.BestValue > pr.BestValue {
		pr.BestValue = o.BestValue
	}
	pr.SolveTime += o.SolveTime
	pr.ExecTime += o.ExecTime
	pr.PlannedTicks += o.PlannedTicks
	pr.ExecutedTicks += o.ExecutedTicks
}

// Summary renders the profile for humans.
func (pr *Profile) Summary() string {
	if pr == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "nodes: %d expanded, %d enqueued, %d deduped, frontier peak %d\n",
		pr.ExpandedNodes, pr.EnqueuedNodes, pr.DedupedNodes, pr.FrontierPeak)
	fmt.Fprintf(&b, "segments: %d solved, %d replans\n", pr.Segments, pr.Replans)
	fmt.Fprintf(&b, "macros: %d batched stocks, %d single stocks, %d training runs\n",
		pr.Macro.BatchedStocks, pr.Macro.SingleStocks, pr.Macro.TrainRuns)
	if len(pr.Boundaries) > 0 {
		kinds := make([]BoundaryKind, 0, len(pr.Boundaries))
		for k := range pr.Boundaries {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		b.WriteString("boundaries:")
		for _, k := range kinds {
			fmt.Fprintf(&b, " %s=%d", k, pr.Boundaries[k])
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "best value/tick: %.4f\n", pr.BestValue)
	if pr.SolveTime > 0 || pr.ExecTime > 0 {
		fmt.Fprintf(&b, "wall time: %s solving, %s executing\n",
			pr.SolveTime.Round(time.Millisecond), pr.ExecTime.Round(time.Millisecond))
	}
	if pr.PlannedTicks > 0 || pr.ExecutedTicks > 0 {
		fmt.Fprintf(&b, "ticks: %d planned, %d executed\n", pr.PlannedTicks, pr.ExecutedTicks)
	}
	return b.String()
}
