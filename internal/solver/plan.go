package solver

import (
	"fmt"
	"strings"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
	"github.com/eseidel/better-idle-sub000/internal/sim"
)

// StepKind discriminates plan steps.
type StepKind int

const (
	StepInteraction StepKind = iota
	StepWait
	StepMacro
)

// Step is one plan entry. Interaction steps are instantaneous; wait steps
// run the active action for Ticks; macro steps carry their expansion.
type Step struct {
	Kind        StepKind
	Interaction sim.Interaction
	Ticks       int64
	Reason      WaitReason
	Macro       *MacroDetail
}

// MacroDetail is an expanded macro: the name for rendering plus the
// primitive steps it stands for. Ticks on the enclosing Step is the sum of
// the inner waits.
type MacroDetail struct {
	Name  string
	Steps []Step
}

// InteractionStep wraps an interaction as a plan step.
func InteractionStep(it sim.Interaction) Step {
	return Step{Kind: StepInteraction, Interaction: it}
}

// WaitStep waits ticks for the stated reason.
func WaitStep(ticks int64, reason WaitReason) Step {
	return Step{Kind: StepWait, Ticks: ticks, Reason: reason}
}

// MacroStep wraps an expanded macro as one plan step.
func MacroStep(name string, steps []Step) Step {
	detail := &MacroDetail{Name: name, Steps: steps}
	return Step{Kind: StepMacro, Ticks: stepTicks(steps), Macro: detail}
}

// Describe renders one step.
func (st Step) Describe(cat *catalog.Catalog) string {
	switch st.Kind {
	case StepInteraction:
		return st.Interaction.Describe(cat)
	case StepWait:
		return fmt.Sprintf("wait %d ticks (%s)", st.Ticks, st.Reason.Describe())
	case StepMacro:
		return fmt.Sprintf("%s [%d steps, %d ticks]", st.Macro.Name, len(st.Macro.Steps), st.Ticks)
	default:
		return "unknown step"
	}
}

// SegmentMarker records where a segment begins inside a stitched plan and
// which boundary it expects to stop at.
type SegmentMarker struct {
	StepIndex   int
	Boundary    Boundary
	Description string
}

// Plan is an ordered action script. Immutable once built; Compress returns
// a new Plan.
type Plan struct {
	Steps            []Step
	TotalTicks       int64
	InteractionCount int
	Markers          []SegmentMarker
}

// NewPlan builds a plan from steps, computing the aggregates.
func NewPlan(steps []Step) Plan {
	return Plan{
		Steps:            steps,
		TotalTicks:       stepTicks(steps),
		InteractionCount: interactionCount(steps),
	}
}

func stepTicks(steps []Step) int64 {
	var total int64
	for _, st := range steps {
		total += st.Ticks
	}
	return total
}

func interactionCount(steps []Step) int {
	count := 0
	for _, st := range steps {
		switch st.Kind {
		case StepInteraction:
			count++
		case StepMacro:
			count += interactionCount(st.Macro.Steps)
		}
	}
	return count
}

// Empty reports whether the plan has nothing to do.
func (p Plan) Empty() bool { return len(p.Steps) == 0 }

// Compress merges runs of consecutive wait steps into one step that keeps
// the run's final reason, and drops a switch to the activity a previous
// step already switched to. Total ticks are preserved.
func (p Plan) Compress() Plan {
	steps := make([]Step, 0, len(p.Steps))
	activeKnown := false
	var active catalog.ActionID
	for _, st := range p.Steps {
		switch st.Kind {
		case StepWait:
			if n := len(steps); n > 0 && steps[n-1].Kind == StepWait {
				steps[n-1].Ticks += st.Ticks
				steps[n-1].Reason = st.Reason
				continue
			}
		case StepInteraction:
			switch st.Interaction.Kind {
			case sim.InteractSwitch:
				if activeKnown && st.Interaction.Action == active {
					continue
				}
				activeKnown = true
				active = st.Interaction.Action
			case sim.InteractStop:
				activeKnown = true
				active = ""
			}
		case StepMacro:
			// A macro may leave any action running.
			activeKnown = false
		}
		steps = append(steps, st)
	}

	compressed := NewPlan(steps)
	compressed.Markers = remapMarkers(p, steps)
	return compressed
}

// remapMarkers moves segment markers onto the nearest surviving step.
func remapMarkers(p Plan, steps []Step) []SegmentMarker {
	if len(p.Markers) == 0 {
		return nil
	}
	markers := make([]SegmentMarker, 0, len(p.Markers))
	for _, m := range p.Markers {
		idx := m.StepIndex
		if idx > len(steps)-1 {
			idx = len(steps) - 1
		}
		if idx < 0 {
			idx = 0
		}
		m.StepIndex = idx
		markers = append(markers, m)
	}
	return markers
}

// PlanFromSegments stitches executed or planned segments into one plan,
// marking where each segment starts and what boundary it expected.
func PlanFromSegments(segments []Segment) Plan {
	var steps []Step
	var markers []SegmentMarker
	for _, seg := range segments {
		markers = append(markers, SegmentMarker{
			StepIndex:   len(steps),
			Boundary:    seg.StopBoundary,
			Description: seg.StopBoundary.Describe(),
		})
		steps = append(steps, seg.Steps...)
	}
	plan := NewPlan(steps)
	plan.Markers = markers
	return plan
}

// PrettyPrint renders at most maxSteps steps for humans. The rendering is
// informational only; the step list is the authoritative script.
func (p Plan) PrettyPrint(cat *catalog.Catalog, maxSteps int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "plan: %d steps, %d ticks, %d interactions\n",
		len(p.Steps), p.TotalTicks, p.InteractionCount)
	markerAt := make(map[int]SegmentMarker, len(p.Markers))
	for _, m := range p.Markers {
		markerAt[m.StepIndex] = m
	}
	shown := len(p.Steps)
	if maxSteps > 0 && shown > maxSteps {
		shown = maxSteps
	}
	for i := 0; i < shown; i++ {
		if m, ok := markerAt[i]; ok && len(p.Markers) > 1 {
			fmt.Fprintf(&b, "-- segment until %s\n", m.Description)
		}
		fmt.Fprintf(&b, "%4d. %s\n", i+1, p.Steps[i].Describe(cat))
	}
	if shown < len(p.Steps) {
		fmt.Fprintf(&b, "      ... and %d more steps\n", len(p.Steps)-shown)
	}
	return b.String()
}
