package solver

import (
	"math"
	"testing"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
	"github.com/eseidel/better-idle-sub000/internal/sim"
)

func TestGoldGoalCountsBankTowardDistance(t *testing.T) {
	cat := catalog.Default()
	g := ReachGold(100)
	s := sim.NewState(cat)
	s.Gold = 20
	s.Bank["bronze_bar"] = 5 // sells for 8 each

	if g.IsSatisfied(cat, s) {
		t.Fatal("goal satisfied with 20 gold")
	}
	if got, want := g.Distance(cat, s), 100.0-20-40; got != want {
		t.Errorf("Distance = %v, want %v", got, want)
	}

	// Liquidatable wealth closes the distance but does not satisfy the
	// goal; the plan still has to sell.
	s.Bank["bronze_bar"] = 100
	if got := g.Distance(cat, s); got != 0 {
		t.Errorf("Distance with a rich bank = %v, want 0", got)
	}
	if g.IsSatisfied(cat, s) {
		t.Error("IsSatisfied counted unsold bank value")
	}

	s.Gold = 100
	if !g.IsSatisfied(cat, s) {
		t.Error("goal not satisfied at the target balance")
	}
}

func TestSkillGoalDistanceAndClosingRate(t *testing.T) {
	cat := catalog.Default()
	g := ReachSkillLevel(catalog.SkillWoodcutting, 2)
	s := sim.NewState(cat)
	s.SkillXP[catalog.SkillWoodcutting] = 33

	wantDist := catalog.XPForLevel(2) - 33
	if got := g.Distance(cat, s); got != wantDist {
		t.Errorf("Distance = %v, want %v", got, wantDist)
	}

	s.Active = "chop_tree"
	r := sim.ExpectedRates(cat, s)
	wantRate := 10.0 / 30.0
	if got := g.ClosingRate(cat, r); math.Abs(got-wantRate) > 1e-9 {
		t.Errorf("ClosingRate = %v, want %v", got, wantRate)
	}

	ticks, ok := TicksToReach(cat, g, s, r)
	if !ok {
		t.Fatal("TicksToReach reported unreachable despite a positive xp rate")
	}
	if want := wantDist / wantRate; math.Abs(ticks-want) > 1e-9 {
		t.Errorf("TicksToReach = %v, want %v", ticks, want)
	}
}

func TestTicksToReachEdges(t *testing.T) {
	cat := catalog.Default()
	s := sim.NewState(cat)

	// Idle: no rates, goal unreachable.
	g := ReachSkillLevel(catalog.SkillMining, 5)
	if _, ok := TicksToReach(cat, g, s, sim.ExpectedRates(cat, s)); ok {
		t.Error("TicksToReach ok while idle")
	}

	// Already satisfied: zero ticks regardless of rates.
	s.SkillXP[catalog.SkillMining] = catalog.XPForLevel(5)
	ticks, ok := TicksToReach(cat, g, s, sim.ExpectedRates(cat, s))
	if !ok || ticks != 0 {
		t.Errorf("TicksToReach on satisfied goal = %v, %v, want 0, true", ticks, ok)
	}
}

func TestParseGoal(t *testing.T) {
	cat := catalog.Default()

	tests := []struct {
		spec    string
		wantErr bool
		want    string
	}{
		{spec: "gold:5000", want: "reach 5000 gold"},
		{spec: "skill:smithing:30", want: "reach smithing level 30"},
		{spec: "gold:abc", wantErr: true},
		{spec: "gold:-5", wantErr: true},
		{spec: "gold:0", wantErr: true},
		{spec: "gold", wantErr: true},
		{spec: "skill:smithing", wantErr: true},
		{spec: "skill:alchemy:10", wantErr: true},
		{spec: "skill:smithing:1", wantErr: true},
		{spec: "skill:smithing:100", wantErr: true},
		{spec: "quest:dragon", wantErr: true},
	}
	for _, tt := range tests {
		g, err := ParseGoal(cat, tt.spec)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseGoal(%q) = %v, want error", tt.spec, g.Describe())
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseGoal(%q): %v", tt.spec, err)
			continue
		}
		if got := g.Describe(); got != tt.want {
			t.Errorf("ParseGoal(%q).Describe() = %q, want %q", tt.spec, got, tt.want)
		}
	}
}

func TestGoalRelevantSkill(t *testing.T) {
	if _, ok := ReachGold(100).RelevantSkill(); ok {
		t.Error("gold goal claims a relevant skill")
	}
	skill, ok := ReachSkillLevel(catalog.SkillCooking, 10).RelevantSkill()
	if !ok || skill != catalog.SkillCooking {
		t.Errorf("RelevantSkill = %v, %v, want cooking, true", skill, ok)
	}
}
