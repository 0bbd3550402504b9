package solver

import (
	"context"
	"fmt"

	"github.com/eseidel/better-idle-sub000/internal/sim"
)

// Segment is a sub-plan bounded by one expected boundary. It is the unit
// the executor runs and replans around.
type Segment struct {
	Steps            []Step
	Ticks            int64
	InteractionCount int
	StopBoundary     Boundary
	Watch            WatchSet
}

// Describe renders the segment for logs.
func (seg Segment) Describe() string {
	return fmt.Sprintf("%d steps, %d ticks, until %s",
		len(seg.Steps), seg.Ticks, seg.StopBoundary.Describe())
}

// SegmentResult is one planned segment with its projected end state, or
// the search failure that prevented planning it.
type SegmentResult struct {
	Segment Segment
	State   sim.State
	Profile *Profile
	Failure *SolverFailure
}

// Success reports whether a segment was planned.
func (r SegmentResult) Success() bool { return r.Failure == nil }

// SolveSegment plans from s toward goal and truncates the plan at the
// first boundary the projection crosses. The suffix past the boundary is
// discarded: execution will have drifted by then, so it gets replanned
// from real state anyway.
func (p *Planner) SolveSegment(ctx context.Context, s sim.State, goal Goal, maxExpandedNodes int) SegmentResult {
	res := p.Solve(ctx, s, goal, Options{MaxExpandedNodes: maxExpandedNodes, CollectProfile: true})
	if !res.Success() {
		return SegmentResult{Failure: res.Failure, Profile: res.Profile}
	}
	watch := p.EnumerateCandidates(s, goal).Watch

	// Walk the raw plan. Its wait steps end exactly at decision deltas, so
	// no single step crosses a watched boundary and checking after each
	// step is exact. Compression happens after the cut.
	cur := s.Clone()
	var elapsed int64
	var kept []Step
	stop := Boundary{Kind: BoundaryGoalReached}
	for _, st := range res.Plan.Steps {
		next, adv, err := p.applyStepProjected(cur, st)
		if err != nil {
			return SegmentResult{Failure: &SolverFailure{
				Reason: fmt.Sprintf("projected plan step %q failed: %v", st.Describe(p.cat), err),
			}, Profile: res.Profile}
		}
		kept = append(kept, st)
		cur = next
		elapsed += adv
		if b, ok := p.DetectBoundary(cur, goal, watch, elapsed); ok {
			stop = b
			break
		}
	}

	compressed := NewPlan(kept).Compress()
	seg := Segment{
		Steps:            compressed.Steps,
		Ticks:            compressed.TotalTicks,
		InteractionCount: compressed.InteractionCount,
		StopBoundary:     stop,
		Watch:            watch,
	}
	p.diag.Publish(ctx, Event{Type: EventSegmentSolved, Tick: elapsed, Detail: seg.Describe()})
	if res.Profile != nil {
		res.Profile.Segments++
		res.Profile.CountBoundary(stop.Kind)
	}
	return SegmentResult{Segment: seg, State: cur, Profile: res.Profile}
}

// applyStepProjected applies one step under the expected-value projection.
// Returns the new state and how many ticks the step consumed.
func (p *Planner) applyStepProjected(s sim.State, st Step) (sim.State, int64, error) {
	switch st.Kind {
	case StepInteraction:
		next, err := sim.ApplyInteraction(p.cat, s, st.Interaction)
		return next, 0, err
	case StepWait:
		next, _ := sim.Advance(p.cat, s, st.Ticks)
		return next, st.Ticks, nil
	case StepMacro:
		cur := s
		var total int64
		for _, inner := range st.Macro.Steps {
			next, adv, err := p.applyStepProjected(cur, inner)
			if err != nil {
				return cur, total, err
			}
			cur = next
			total += adv
		}
		return cur, total, nil
	default:
		return s, 0, fmt.Errorf("unknown step kind %d", st.Kind)
	}
}
