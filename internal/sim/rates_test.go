package sim

import (
	"math"
	"testing"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func ratesEqual(a, b Rates) bool {
	if a.GoldPerTick != b.GoldPerTick ||
		a.MasteryXPPerTick != b.MasteryXPPerTick ||
		a.HealthLossPerTick != b.HealthLossPerTick {
		return false
	}
	if len(a.ItemFlow) != len(b.ItemFlow) || len(a.SkillXP) != len(b.SkillXP) {
		return false
	}
	for item, v := range a.ItemFlow {
		if b.ItemFlow[item] != v {
			return false
		}
	}
	for skill, v := range a.SkillXP {
		if b.SkillXP[skill] != v {
			return false
		}
	}
	return true
}

func TestExpectedRatesGathering(t *testing.T) {
	cat := catalog.Default()
	s := NewState(cat)
	s.Active = "chop_tree"

	r := ExpectedRates(cat, s)
	if !almost(r.ItemFlow["logs"], 1.0/30) {
		t.Errorf("logs flow = %v, want %v", r.ItemFlow["logs"], 1.0/30)
	}
	if !almost(r.SkillXP[catalog.SkillWoodcutting], 10.0/30) {
		t.Errorf("xp rate = %v, want %v", r.SkillXP[catalog.SkillWoodcutting], 10.0/30)
	}
	if !almost(r.ItemFlow["bird_nest"], 0.005/30) {
		t.Errorf("bird_nest flow = %v, want %v", r.ItemFlow["bird_nest"], 0.005/30)
	}
	if r.GoldPerTick != 0 || r.HealthLossPerTick != 0 {
		t.Errorf("gathering action leaked gold %v or damage %v", r.GoldPerTick, r.HealthLossPerTick)
	}
}

func TestExpectedRatesStunLengthensCycle(t *testing.T) {
	cat := catalog.Default()
	s := NewState(cat)
	s.Active = "pickpocket_citizen"

	// base 30 plus 0.30 failure chance at 30 stun ticks.
	eff := 30.0 + 0.30*30
	r := ExpectedRates(cat, s)
	if !almost(r.GoldPerTick, 5*0.70/eff) {
		t.Errorf("gold/tick = %v, want %v", r.GoldPerTick, 5*0.70/eff)
	}
	if !almost(r.SkillXP[catalog.SkillThieving], 8*0.70/eff) {
		t.Errorf("xp/tick = %v, want %v", r.SkillXP[catalog.SkillThieving], 8*0.70/eff)
	}
	if !almost(r.HealthLossPerTick, 0.30*10/eff) {
		t.Errorf("health loss/tick = %v, want %v", r.HealthLossPerTick, 0.30*10/eff)
	}
}

func TestExpectedRatesInputsUnscaledBySuccess(t *testing.T) {
	cat := catalog.Default()
	s := NewState(cat)
	s.Active = "cook_shrimp"
	s.Bank["raw_shrimp"] = 50

	r := ExpectedRates(cat, s)
	if !almost(r.ItemFlow["raw_shrimp"], -1.0/20) {
		t.Errorf("raw input flow = %v, want %v (burns consume fish too)", r.ItemFlow["raw_shrimp"], -1.0/20)
	}
	if !almost(r.ItemFlow["shrimp"], 0.90/20) {
		t.Errorf("cooked output flow = %v, want %v", r.ItemFlow["shrimp"], 0.90/20)
	}
}

func TestExpectedRatesZeroCases(t *testing.T) {
	cat := catalog.Default()
	base := NewState(cat)

	idle := base.Clone()
	if r := ExpectedRates(cat, idle); !r.IsZero() {
		t.Errorf("idle state produced rates %+v", r)
	}

	locked := base.Clone()
	if r := ExpectedRatesFor(cat, locked, "mine_iron"); !r.IsZero() {
		t.Errorf("locked action produced rates %+v", r)
	}

	stalled := base.Clone()
	stalled.Active = "smelt_bronze_bar"
	if r := ExpectedRates(cat, stalled); !r.IsZero() {
		t.Errorf("stalled action produced rates %+v", r)
	}

	if r := ExpectedRatesFor(cat, base, "no_such_action"); !r.IsZero() {
		t.Errorf("unknown action produced rates %+v", r)
	}
}

func TestRateInvarianceAcrossUnrelatedUpgrades(t *testing.T) {
	cat := catalog.Default()
	s := NewState(cat)
	s.Gold = 10000

	thievingBefore := ExpectedRatesFor(cat, s, "pickpocket_citizen")
	chopBefore := ExpectedRatesFor(cat, s, "chop_tree")

	for _, id := range []catalog.UpgradeID{"axe_iron", "rod_willow", "pickaxe_iron"} {
		next, err := ApplyInteraction(cat, s, Buy(id))
		if err != nil {
			t.Fatalf("Buy(%s): %v", id, err)
		}
		s = next
	}

	if got := ExpectedRatesFor(cat, s, "pickpocket_citizen"); !ratesEqual(got, thievingBefore) {
		t.Errorf("thieving rates changed after tool upgrades: %+v != %+v", got, thievingBefore)
	}
	chopAfter := ExpectedRatesFor(cat, s, "chop_tree")
	if ratesEqual(chopAfter, chopBefore) {
		t.Error("woodcutting rates did not change after buying an axe")
	}
	if chopAfter.ItemFlow["logs"] <= chopBefore.ItemFlow["logs"] {
		t.Errorf("axe should speed up logs: %v -> %v", chopBefore.ItemFlow["logs"], chopAfter.ItemFlow["logs"])
	}
}

func TestTicksUntilDeathAndCycleFactor(t *testing.T) {
	cat := catalog.Default()
	s := NewState(cat)
	s.SkillXP[catalog.SkillCombat] = catalog.XPForLevel(10)
	s.Active = "fight_cow"

	r := ExpectedRates(cat, s)
	ttd, dies := TicksUntilDeath(s, r)
	if !dies {
		t.Fatal("fighting cows should eventually kill you")
	}
	if !almost(ttd, 900) {
		t.Errorf("ticks until death = %v, want 900", ttd)
	}
	// 900 productive ticks per 600-tick respawn.
	if f := DeathCycleFactor(cat, s, r); !almost(f, 0.6) {
		t.Errorf("death cycle factor = %v, want 0.6", f)
	}

	s.Active = "chop_tree"
	safe := ExpectedRates(cat, s)
	if _, dies := TicksUntilDeath(s, safe); dies {
		t.Error("woodcutting reported a death time")
	}
	if f := DeathCycleFactor(cat, s, safe); f != 1 {
		t.Errorf("safe action cycle factor = %v, want 1", f)
	}
}
