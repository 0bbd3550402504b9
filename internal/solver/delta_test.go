package solver

import (
	"math"
	"strings"
	"testing"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
	"github.com/eseidel/better-idle-sub000/internal/sim"
	"github.com/eseidel/better-idle-sub000/internal/tuning"
)

func TestNextDecisionDeltaSkillLevelBinds(t *testing.T) {
	p := testPlanner()
	s := sim.NewState(p.Catalog())
	s.Active = "chop_tree"

	d := p.NextDecisionDelta(s, nil, Candidates{}, 0)
	if d.DeadEnd {
		t.Fatalf("dead end: %v", d.ZeroReason)
	}
	// 10 xp per 30-tick completion.
	want := int64(math.Ceil(catalog.XPForLevel(2) / (10.0 / 30.0)))
	if d.Ticks != want {
		t.Errorf("Ticks = %d, want %d", d.Ticks, want)
	}
	if d.Reason.Kind != WaitSkillLevel || d.Reason.Skill != catalog.SkillWoodcutting || d.Reason.Level != 2 {
		t.Errorf("Reason = %+v, want woodcutting level 2", d.Reason)
	}

	// A sliver of missing xp still waits at least one tick.
	s.SkillXP[catalog.SkillWoodcutting] = catalog.XPForLevel(2) - 0.01
	d = p.NextDecisionDelta(s, nil, Candidates{}, 0)
	if d.Ticks != 1 {
		t.Errorf("Ticks for fractional wait = %d, want 1", d.Ticks)
	}
}

func TestNextDecisionDeltaGoalBinds(t *testing.T) {
	p := testPlanner()
	s := sim.NewState(p.Catalog())
	s.Active = "chop_tree"

	d := p.NextDecisionDelta(s, ReachGold(10), Candidates{}, 0)
	// Logs and nest drops liquidate at (1 + 0.005*350)/30 gold per tick,
	// which reaches 10 gold long before woodcutting 2.
	rate := (1 + 0.005*350) / 30.0
	want := int64(math.Ceil(10 / rate))
	if d.Ticks != want {
		t.Errorf("Ticks = %d, want %d", d.Ticks, want)
	}
	if d.Reason.Kind != WaitGoal {
		t.Errorf("Reason.Kind = %v, want WaitGoal", d.Reason.Kind)
	}
}

func TestNextDecisionDeltaUpgradeGoldBinds(t *testing.T) {
	p := testPlanner()
	s := sim.NewState(p.Catalog())
	s.Active = "pickpocket_citizen"
	c := Candidates{BuyUpgrades: []catalog.UpgradeID{"axe_iron"}}

	d := p.NextDecisionDelta(s, nil, c, 0)
	// 3.5 expected gold per 39 effective ticks; 50 gold arrives just
	// ahead of thieving 2.
	goldRate := 5 * 0.7 / 39.0
	want := int64(math.Ceil(50 / goldRate))
	if d.Ticks != want {
		t.Errorf("Ticks = %d, want %d", d.Ticks, want)
	}
	if d.Reason.Kind != WaitUpgradeGold || d.Reason.Upgrade != "axe_iron" {
		t.Errorf("Reason = %+v, want WaitUpgradeGold axe_iron", d.Reason)
	}

	// Already affordable: no gold wait, the level wait binds instead.
	s.Gold = 50
	d = p.NextDecisionDelta(s, nil, c, 0)
	if d.Reason.Kind != WaitSkillLevel {
		t.Errorf("Reason.Kind with gold in hand = %v, want WaitSkillLevel", d.Reason.Kind)
	}
}

func TestNextDecisionDeltaDepletionBinds(t *testing.T) {
	p := testPlanner()
	s := sim.NewState(p.Catalog())
	s.Active = "smelt_bronze_bar"
	s.Bank["copper_ore"] = 3
	s.Bank["tin_ore"] = 100

	d := p.NextDecisionDelta(s, nil, Candidates{}, 0)
	// One copper per 20-tick smelt: 3 ore last exactly 60 ticks.
	if d.Ticks != 60 {
		t.Errorf("Ticks = %d, want 60", d.Ticks)
	}
	if d.Reason.Kind != WaitDepletion || d.Reason.Item != "copper_ore" {
		t.Errorf("Reason = %+v, want WaitDepletion copper_ore", d.Reason)
	}
}

func TestNextDecisionDeltaDeathBinds(t *testing.T) {
	p := testPlanner()
	s := sim.NewState(p.Catalog())
	s.Active = "fight_chicken"
	s.Health = 10

	d := p.NextDecisionDelta(s, nil, Candidates{}, 0)
	// 4 damage per 60-tick kill drains 10 health in 150 ticks, well
	// before combat 2.
	if d.Ticks != 150 {
		t.Errorf("Ticks = %d, want 150", d.Ticks)
	}
	if d.Reason.Kind != WaitDeath {
		t.Errorf("Reason.Kind = %v, want WaitDeath", d.Reason.Kind)
	}
}

func TestNextDecisionDeltaHorizonBinds(t *testing.T) {
	p := testPlanner()
	s := sim.NewState(p.Catalog())
	s.Active = "chop_tree"
	s.SkillXP[catalog.SkillWoodcutting] = catalog.XPForLevel(99)
	s.MasteryXP["chop_tree"] = catalog.XPForLevel(99)

	elapsed := p.Tuning().MaxSegmentTicks - 1000
	d := p.NextDecisionDelta(s, nil, Candidates{}, elapsed)
	if d.Ticks != 1000 {
		t.Errorf("Ticks = %d, want 1000", d.Ticks)
	}
	if d.Reason.Kind != WaitHorizon {
		t.Errorf("Reason.Kind = %v, want WaitHorizon", d.Reason.Kind)
	}
}

func TestNextDecisionDeltaIdleYieldsNoWait(t *testing.T) {
	p := testPlanner()
	s := sim.NewState(p.Catalog())

	// Zero rates with decisions on the menu: an interaction has to move
	// first, so the delta is empty rather than a dead end.
	c := p.EnumerateCandidates(s, nil)
	d := p.NextDecisionDelta(s, nil, c, 0)
	if d.DeadEnd {
		t.Fatalf("dead end: %v", d.ZeroReason)
	}
	if d.Ticks != 0 {
		t.Errorf("Ticks = %d, want 0", d.Ticks)
	}
}

func TestNextDecisionDeltaDeadEnds(t *testing.T) {
	globals := catalog.Globals{MaxHealth: 100, RespawnTicks: 600, BaseBankSlots: 4, LevelCap: 99}

	locked, err := catalog.New(
		[]catalog.Action{{ID: "prospect", Name: "Prospect", Skill: catalog.SkillMining, UnlockLevel: 50, BaseTicks: 30, XP: 5}},
		nil, nil, nil, globals,
	)
	if err != nil {
		t.Fatal(err)
	}
	p := New(locked, tuning.Default(), nil)
	s := sim.NewState(locked)
	d := p.NextDecisionDelta(s, nil, p.EnumerateCandidates(s, nil), 0)
	if !d.DeadEnd {
		t.Fatalf("no dead end, got %+v", d)
	}
	if d.ZeroReason != RateZeroNoUnlockedActions {
		t.Errorf("ZeroReason = %v, want no unlocked actions", d.ZeroReason)
	}
	if !strings.Contains(d.ZeroReason.String(), "no unlocked actions") {
		t.Errorf("ZeroReason.String() = %q", d.ZeroReason.String())
	}

	starved, err := catalog.New(
		[]catalog.Action{{ID: "weave", Name: "Weave", Skill: catalog.SkillSmithing, UnlockLevel: 1, BaseTicks: 30, XP: 5,
			Inputs:  []catalog.ItemQuantity{{Item: "thread", Quantity: 1}},
			Outputs: []catalog.ItemQuantity{{Item: "cloth", Quantity: 1}}}},
		[]catalog.Item{{ID: "thread", Name: "Thread"}, {ID: "cloth", Name: "Cloth"}},
		nil, nil, globals,
	)
	if err != nil {
		t.Fatal(err)
	}
	p = New(starved, tuning.Default(), nil)
	s = sim.NewState(starved)
	d = p.NextDecisionDelta(s, nil, p.EnumerateCandidates(s, nil), 0)
	if !d.DeadEnd {
		t.Fatalf("no dead end, got %+v", d)
	}
	if d.ZeroReason != RateZeroInputsRequired {
		t.Errorf("ZeroReason = %v, want inputs required", d.ZeroReason)
	}
}
