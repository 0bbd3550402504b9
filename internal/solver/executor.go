package solver

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/eseidel/better-idle-sub000/internal/sim"
)

// ErrDiverged reports that real execution drifted far enough from the
// projection that a planned interaction is no longer valid. The caller
// replans from the returned state.
var ErrDiverged = errors.New("execution diverged from plan")

// SegmentExecution is the outcome of running one segment against the real
// randomized simulation.
type SegmentExecution struct {
	State       sim.State
	BoundaryHit Boundary
	Hit         bool
	ActualTicks int64
	Deaths      int64
	Completions int64
	Failures    int64
}

// ExecuteSegment runs a segment's steps against the stochastic simulation
// in small batches, checking the watch set after every batch. The first
// boundary that becomes true stops execution and is reported, whether or
// not it is the one the segment declared.
func (p *Planner) ExecuteSegment(ctx context.Context, s sim.State, seg Segment, watch WatchSet, goal Goal, rng *rand.Rand) (SegmentExecution, error) {
	exec := SegmentExecution{State: s.Clone()}
	err := p.runReal(ctx, &exec, seg.Steps, watch, goal, rng)
	if exec.Hit {
		p.diag.Publish(ctx, Event{Type: EventBoundaryHit, Tick: exec.ActualTicks,
			Detail: exec.BoundaryHit.Describe()})
	}
	return exec, err
}

// runReal executes steps until done, the first boundary, an error, or
// cancellation. Macro steps recurse into their expansion.
func (p *Planner) runReal(ctx context.Context, exec *SegmentExecution, steps []Step, watch WatchSet, goal Goal, rng *rand.Rand) error {
	for _, st := range steps {
		if exec.Hit {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		switch st.Kind {
		case StepInteraction:
			next, err := sim.ApplyInteraction(p.cat, exec.State, st.Interaction)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrDiverged, st.Interaction.Describe(p.cat), err)
			}
			exec.State = next
			p.checkReal(exec, watch, goal)
		case StepWait:
			p.runRealWait(exec, st.Ticks, watch, goal, rng)
		case StepMacro:
			if err := p.runReal(ctx, exec, st.Macro.Steps, watch, goal, rng); err != nil {
				return err
			}
		}
	}
	return nil
}

// runRealWait consumes real ticks in exec-batch slices, stopping at the
// first boundary.
func (p *Planner) runRealWait(exec *SegmentExecution, ticks int64, watch WatchSet, goal Goal, rng *rand.Rand) {
	remaining := ticks
	for remaining > 0 && !exec.Hit {
		batch := p.tune.ExecBatchTicks
		if batch > remaining {
			batch = remaining
		}
		next, report := sim.ConsumeTicks(p.cat, exec.State, batch, rng)
		exec.State = next
		exec.ActualTicks += batch
		exec.Deaths += report.Deaths
		exec.Completions += report.Completions
		exec.Failures += report.Failures
		remaining -= batch
		p.checkReal(exec, watch, goal)
	}
}

func (p *Planner) checkReal(exec *SegmentExecution, watch WatchSet, goal Goal) {
	if b, ok := p.DetectBoundary(exec.State, goal, watch, exec.ActualTicks); ok {
		exec.BoundaryHit = b
		exec.Hit = true
	}
}

// GoalRun is the outcome of a full solve-execute-replan loop.
type GoalRun struct {
	Segments     []Segment
	Plan         Plan
	FinalState   sim.State
	PlannedTicks int64
	ActualTicks  int64
	Deaths       int64
	Replans      int
	Unexpected   int
	Reached      bool
	Profile      *Profile
}

// SolveToGoal alternates planning and execution until the goal holds:
// solve a segment from real state, execute it against the real simulation,
// and replan whenever the boundary hit is not the goal. Planning and
// execution never overlap; randomness enters only through rng.
func (p *Planner) SolveToGoal(ctx context.Context, s sim.State, goal Goal, rng *rand.Rand) (run GoalRun, err error) {
	run = GoalRun{FinalState: s.Clone()}
	prof := NewProfile()
	defer func() {
		run.Plan = PlanFromSegments(run.Segments)
		if run.Replans = len(run.Segments) - 1; run.Replans < 0 {
			run.Replans = 0
		}
		prof.Replans = run.Replans
		prof.PlannedTicks = run.PlannedTicks
		prof.ExecutedTicks = run.ActualTicks
		run.Profile = prof
	}()

	for len(run.Segments) < p.tune.MaxSegments {
		if err := ctx.Err(); err != nil {
			return run, err
		}
		if goal.IsSatisfied(p.cat, run.FinalState) {
			run.Reached = true
			return run, nil
		}

		segRes := p.SolveSegment(ctx, run.FinalState, goal, p.tune.MaxExpandedNodes)
		prof.Merge(segRes.Profile)
		if !segRes.Success() {
			return run, fmt.Errorf("segment %d: %w", len(run.Segments)+1, segRes.Failure)
		}
		seg := segRes.Segment

		execStart := time.Now()
		exec, err := p.ExecuteSegment(ctx, run.FinalState, seg, seg.Watch, goal, rng)
		prof.ExecTime += time.Since(execStart)
		run.Segments = append(run.Segments, seg)
		run.FinalState = exec.State
		run.ActualTicks += exec.ActualTicks
		run.PlannedTicks += seg.Ticks
		run.Deaths += exec.Deaths
		if err != nil {
			if errors.Is(err, ErrDiverged) {
				run.Unexpected++
				p.diag.Publish(ctx, Event{Type: EventReplan, Tick: run.ActualTicks,
					Detail: err.Error()})
				continue
			}
			return run, err
		}
		if exec.Hit {
			prof.CountBoundary(exec.BoundaryHit.Kind)
			if !exec.BoundaryHit.Same(seg.StopBoundary) {
				run.Unexpected++
			}
			if exec.BoundaryHit.Kind == BoundaryGoalReached {
				run.Reached = true
				return run, nil
			}
		} else if goal.IsSatisfied(p.cat, run.FinalState) {
			run.Reached = true
			return run, nil
		}
		p.diag.Publish(ctx, Event{Type: EventReplan, Tick: run.ActualTicks,
			Detail: fmt.Sprintf("after %s", seg.StopBoundary.Describe())})
	}
	return run, fmt.Errorf("goal %s not reached within %d segments", goal.Describe(), p.tune.MaxSegments)
}

// PlanExecution is the outcome of replaying a stitched plan without
// replanning.
type PlanExecution struct {
	FinalState   sim.State
	ActualTicks  int64
	PlannedTicks int64
	Deaths       int64
	Unexpected   int
	Reached      bool
}

// ExecutePlan replays an already-built plan against the real simulation.
// Segment markers partition the plan into spans; each span runs until its
// declared boundary or its steps run out. A span that stops at some other
// boundary counts as unexpected, and execution continues with the next
// span from wherever the real state landed.
func (p *Planner) ExecutePlan(ctx context.Context, s sim.State, plan Plan, goal Goal, rng *rand.Rand) (PlanExecution, error) {
	out := PlanExecution{FinalState: s.Clone(), PlannedTicks: plan.TotalTicks}

	type span struct {
		steps    []Step
		expected Boundary
	}
	var spans []span
	if len(plan.Markers) == 0 {
		spans = []span{{steps: plan.Steps, expected: Boundary{Kind: BoundaryGoalReached}}}
	} else {
		for i, m := range plan.Markers {
			end := len(plan.Steps)
			if i+1 < len(plan.Markers) {
				end = plan.Markers[i+1].StepIndex
			}
			spans = append(spans, span{steps: plan.Steps[m.StepIndex:end], expected: m.Boundary})
		}
	}

	for _, sp := range spans {
		seg := Segment{Steps: sp.steps, Ticks: stepTicks(sp.steps), StopBoundary: sp.expected}
		watch := watchWithStop(WatchSet{}, sp.expected)
		exec, err := p.ExecuteSegment(ctx, out.FinalState, seg, watch, goal, rng)
		out.FinalState = exec.State
		out.ActualTicks += exec.ActualTicks
		out.Deaths += exec.Deaths
		if err != nil {
			return out, err
		}
		if exec.Hit {
			if !exec.BoundaryHit.Same(sp.expected) {
				out.Unexpected++
			}
			if exec.BoundaryHit.Kind == BoundaryGoalReached {
				out.Reached = true
				return out, nil
			}
		}
	}
	if goal != nil && goal.IsSatisfied(p.cat, out.FinalState) {
		out.Reached = true
	}
	return out, nil
}
