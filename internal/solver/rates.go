package solver

import (
	"github.com/eseidel/better-idle-sub000/internal/catalog"
	"github.com/eseidel/better-idle-sub000/internal/sim"
)

// DeathCycleAdjustedRates discounts every productive rate by the share of
// time an action spends alive. For safe actions, or with zero respawn
// overhead, this is the identity transform.
func DeathCycleAdjustedRates(cat *catalog.Catalog, s sim.State, r sim.Rates) sim.Rates {
	factor := sim.DeathCycleFactor(cat, s, r)
	if factor >= 1 {
		return r
	}
	adj := r.Clone()
	adj.GoldPerTick *= factor
	adj.MasteryXPPerTick *= factor
	for item, flow := range adj.ItemFlow {
		adj.ItemFlow[item] = flow * factor
	}
	for skill, rate := range adj.SkillXP {
		adj.SkillXP[skill] = rate * factor
	}
	return adj
}

// TicksUntilNextSkillLevel returns the ticks until the source action's
// skill gains a level. ok is false with no xp income or at the level cap.
func TicksUntilNextSkillLevel(cat *catalog.Catalog, s sim.State, r sim.Rates) (float64, bool) {
	a, ok := cat.Action(r.Source)
	if !ok {
		return 0, false
	}
	rate := r.SkillXP[a.Skill]
	if rate <= 0 {
		return 0, false
	}
	level := s.SkillLevel(a.Skill)
	if level >= cat.Globals().LevelCap {
		return 0, false
	}
	need := catalog.XPForLevel(level+1) - s.SkillXP[a.Skill]
	if need <= 0 {
		return 0, true
	}
	return need / rate, true
}

// TicksUntilNextMasteryLevel is the mastery-track analogue of
// TicksUntilNextSkillLevel.
func TicksUntilNextMasteryLevel(cat *catalog.Catalog, s sim.State, r sim.Rates) (float64, bool) {
	if r.MasteryXPPerTick <= 0 {
		return 0, false
	}
	level := s.MasteryLevel(r.Source)
	if level >= cat.Globals().LevelCap {
		return 0, false
	}
	need := catalog.XPForLevel(level+1) - s.MasteryXP[r.Source]
	if need <= 0 {
		return 0, true
	}
	return need / r.MasteryXPPerTick, true
}

// TicksUntilDepletion returns the ticks until the bank runs out of the
// scarcest net-consumed item. ok is false when nothing is being drained.
func TicksUntilDepletion(cat *catalog.Catalog, s sim.State, r sim.Rates) (float64, bool) {
	soonest := 0.0
	found := false
	for _, item := range sortedFlowKeys(r.ItemFlow) {
		flow := r.ItemFlow[item]
		if flow >= 0 {
			continue
		}
		t := s.Bank[item] / -flow
		if !found || t < soonest {
			soonest = t
			found = true
		}
	}
	return soonest, found
}

// TicksUntilGoldAmount returns the ticks until the gold balance reaches
// amount at the current direct income. Bank value does not count: buying
// spends the balance, and liquidation is a separate decision.
func TicksUntilGoldAmount(s sim.State, r sim.Rates, amount float64) (float64, bool) {
	deficit := amount - s.Gold
	if deficit <= 0 {
		return 0, true
	}
	if r.GoldPerTick <= 0 {
		return 0, false
	}
	return deficit / r.GoldPerTick, true
}
