package solver

import (
	"strings"
	"testing"

	"github.com/eseidel/better-idle-sub000/internal/sim"
)

func TestPlanCompressMergesWaits(t *testing.T) {
	plan := NewPlan([]Step{
		WaitStep(10, WaitReason{Kind: WaitSkillLevel, Skill: "woodcutting", Level: 2}),
		WaitStep(20, WaitReason{Kind: WaitGoal}),
		InteractionStep(sim.SwitchTo("chop_oak")),
		WaitStep(5, WaitReason{Kind: WaitGoal}),
	})

	got := plan.Compress()
	if got.TotalTicks != plan.TotalTicks {
		t.Fatalf("TotalTicks = %d, want %d", got.TotalTicks, plan.TotalTicks)
	}
	if len(got.Steps) != 3 {
		t.Fatalf("len(Steps) = %d, want 3", len(got.Steps))
	}
	if got.Steps[0].Ticks != 30 {
		t.Errorf("merged wait Ticks = %d, want 30", got.Steps[0].Ticks)
	}
	// The merged wait keeps the reason of the run's last piece.
	if got.Steps[0].Reason.Kind != WaitGoal {
		t.Errorf("merged wait Reason = %v, want WaitGoal", got.Steps[0].Reason.Kind)
	}
	if got.InteractionCount != 1 {
		t.Errorf("InteractionCount = %d, want 1", got.InteractionCount)
	}
}

func TestPlanCompressDropsRedundantSwitch(t *testing.T) {
	plan := NewPlan([]Step{
		InteractionStep(sim.SwitchTo("chop_tree")),
		WaitStep(10, WaitReason{Kind: WaitSkillLevel}),
		InteractionStep(sim.SwitchTo("chop_tree")),
		WaitStep(5, WaitReason{Kind: WaitSkillLevel}),
	})

	got := plan.Compress()
	if len(got.Steps) != 2 {
		t.Fatalf("len(Steps) = %d, want 2: %+v", len(got.Steps), got.Steps)
	}
	if got.Steps[1].Ticks != 15 {
		t.Errorf("wait Ticks = %d, want 15", got.Steps[1].Ticks)
	}
	if got.TotalTicks != 15 || got.InteractionCount != 1 {
		t.Errorf("totals = %d ticks %d interactions, want 15 and 1",
			got.TotalTicks, got.InteractionCount)
	}
}

func TestPlanCompressKeepsSwitchAfterMacro(t *testing.T) {
	inner := []Step{
		InteractionStep(sim.SwitchTo("mine_copper")),
		WaitStep(60, WaitReason{Kind: WaitStock, Item: "copper_ore", Level: 2}),
	}
	plan := NewPlan([]Step{
		InteractionStep(sim.SwitchTo("chop_tree")),
		MacroStep("stock 2 copper_ore for smelt_bronze_bar", inner),
		InteractionStep(sim.SwitchTo("chop_tree")),
	})

	// The macro leaves mine_copper running, so the trailing switch is
	// live and must survive.
	got := plan.Compress()
	if len(got.Steps) != 3 {
		t.Fatalf("len(Steps) = %d, want 3", len(got.Steps))
	}
	if got.Steps[2].Kind != StepInteraction {
		t.Errorf("Steps[2].Kind = %v, want interaction", got.Steps[2].Kind)
	}
	if got.TotalTicks != 60 {
		t.Errorf("TotalTicks = %d, want 60", got.TotalTicks)
	}
	// Macro interactions count toward the plan's interaction total.
	if got.InteractionCount != 3 {
		t.Errorf("InteractionCount = %d, want 3", got.InteractionCount)
	}
}

func TestPlanFromSegmentsMarksBoundaries(t *testing.T) {
	cat := testPlanner().Catalog()
	segments := []Segment{
		{
			Steps: []Step{
				InteractionStep(sim.SwitchTo("chop_tree")),
				WaitStep(100, WaitReason{Kind: WaitSkillLevel, Skill: "woodcutting", Level: 10}),
			},
			Ticks:            100,
			InteractionCount: 1,
			StopBoundary:     Boundary{Kind: BoundaryUnlock, Skill: "woodcutting", Action: "chop_oak"},
		},
		{
			Steps: []Step{
				InteractionStep(sim.SwitchTo("chop_oak")),
				WaitStep(50, WaitReason{Kind: WaitGoal}),
			},
			Ticks:            50,
			InteractionCount: 1,
			StopBoundary:     Boundary{Kind: BoundaryGoalReached},
		},
	}

	plan := PlanFromSegments(segments)
	if plan.TotalTicks != 150 || plan.InteractionCount != 2 {
		t.Errorf("totals = %d ticks %d interactions, want 150 and 2",
			plan.TotalTicks, plan.InteractionCount)
	}
	if len(plan.Markers) != 2 {
		t.Fatalf("len(Markers) = %d, want 2", len(plan.Markers))
	}
	if plan.Markers[0].StepIndex != 0 || plan.Markers[1].StepIndex != 2 {
		t.Errorf("marker indices = %d, %d, want 0, 2",
			plan.Markers[0].StepIndex, plan.Markers[1].StepIndex)
	}

	out := plan.PrettyPrint(cat, 0)
	if !strings.Contains(out, "plan: 4 steps, 150 ticks, 2 interactions") {
		t.Errorf("PrettyPrint header missing:\n%s", out)
	}
	if !strings.Contains(out, "-- segment until woodcutting unlocked chop_oak") {
		t.Errorf("PrettyPrint segment marker missing:\n%s", out)
	}

	trimmed := plan.PrettyPrint(cat, 2)
	if !strings.Contains(trimmed, "... and 2 more steps") {
		t.Errorf("PrettyPrint truncation missing:\n%s", trimmed)
	}
}

func TestPlanCompressRemapsMarkers(t *testing.T) {
	plan := PlanFromSegments([]Segment{
		{Steps: []Step{WaitStep(10, WaitReason{Kind: WaitGoal}), WaitStep(20, WaitReason{Kind: WaitGoal})}, Ticks: 30},
		{Steps: []Step{WaitStep(5, WaitReason{Kind: WaitGoal})}, Ticks: 5},
	})

	got := plan.Compress()
	if len(got.Steps) != 1 || got.TotalTicks != 35 {
		t.Fatalf("compressed to %d steps %d ticks, want 1 step 35 ticks",
			len(got.Steps), got.TotalTicks)
	}
	if len(got.Markers) != 2 {
		t.Fatalf("len(Markers) = %d, want 2", len(got.Markers))
	}
	for i, m := range got.Markers {
		if m.StepIndex != 0 {
			t.Errorf("Markers[%d].StepIndex = %d, want 0", i, m.StepIndex)
		}
	}
}

func TestPlanEmpty(t *testing.T) {
	plan := NewPlan(nil)
	if !plan.Empty() {
		t.Error("NewPlan(nil) not empty")
	}
	if plan.TotalTicks != 0 || plan.InteractionCount != 0 {
		t.Errorf("totals = %d ticks %d interactions, want zeros",
			plan.TotalTicks, plan.InteractionCount)
	}
}
