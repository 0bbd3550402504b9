package sim

import (
	"github.com/eseidel/better-idle-sub000/internal/catalog"
)

// Rates hold the expected per-tick yields of a (state, action) pair. Inputs
// appear as negative item flow. All expectations are taken over the
// effective completion duration, which already includes failure stun time.
type Rates struct {
	Source            catalog.ActionID
	GoldPerTick       float64
	ItemFlow          map[catalog.ItemID]float64
	SkillXP           map[catalog.SkillID]float64
	MasteryXPPerTick  float64
	HealthLossPerTick float64
}

// IsZero reports whether the rates carry no movement at all.
func (r Rates) IsZero() bool {
	if r.GoldPerTick != 0 || r.MasteryXPPerTick != 0 || r.HealthLossPerTick != 0 {
		return false
	}
	for _, v := range r.ItemFlow {
		if v != 0 {
			return false
		}
	}
	for _, v := range r.SkillXP {
		if v != 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (r Rates) Clone() Rates {
	nr := r
	nr.ItemFlow = make(map[catalog.ItemID]float64, len(r.ItemFlow))
	for k, v := range r.ItemFlow {
		nr.ItemFlow[k] = v
	}
	nr.SkillXP = make(map[catalog.SkillID]float64, len(r.SkillXP))
	for k, v := range r.SkillXP {
		nr.SkillXP[k] = v
	}
	return nr
}

func zeroRates(source catalog.ActionID) Rates {
	return Rates{
		Source:   source,
		ItemFlow: make(map[catalog.ItemID]float64),
		SkillXP:  make(map[catalog.SkillID]float64),
	}
}

// ExpectedRates returns the expected per-tick rates of the active action, or
// zero rates when the player is idle or the action is stalled.
func ExpectedRates(cat *catalog.Catalog, s State) Rates {
	return ExpectedRatesFor(cat, s, s.Active)
}

// ExpectedRatesFor returns the rates the player would see with action as the
// active activity, without switching. Locked or stalled actions yield zero
// rates: neither can produce anything right now.
//
// A failed completion consumes inputs but yields nothing, so gold, outputs,
// drops and experience scale by the success chance while inputs do not.
func ExpectedRatesFor(cat *catalog.Catalog, s State, action catalog.ActionID) Rates {
	r := zeroRates(action)
	if action == "" {
		return r
	}
	a, ok := cat.Action(action)
	if !ok {
		return r
	}
	if !s.ActionUnlocked(a) || s.CompletionsPossible(a) < 1 {
		return r
	}
	eff := s.EffectiveTicks(cat, a)
	if eff <= 0 {
		return r
	}
	success := 1 - a.FailureChance

	r.GoldPerTick = a.Gold * success / eff
	for _, q := range a.Outputs {
		r.ItemFlow[q.Item] += float64(q.Quantity) * success / eff
	}
	for _, d := range a.Drops {
		r.ItemFlow[d.Item] += float64(d.Quantity) * d.Probability * success / eff
	}
	for _, d := range cat.SkillDrops(a.Skill) {
		r.ItemFlow[d.Item] += float64(d.Quantity) * d.Probability * success / eff
	}
	for _, q := range a.Inputs {
		r.ItemFlow[q.Item] -= float64(q.Quantity) / eff
	}
	r.SkillXP[a.Skill] = a.XP * success / eff
	r.MasteryXPPerTick = a.MasteryXP * success / eff
	r.HealthLossPerTick = (a.Damage + a.FailureChance*a.FailureDamage) / eff
	return r
}

// TicksUntilDeath returns the expected ticks before health reaches zero at
// these rates. ok is false when no health is being lost.
func TicksUntilDeath(s State, r Rates) (float64, bool) {
	if r.HealthLossPerTick <= 0 {
		return 0, false
	}
	return s.Health / r.HealthLossPerTick, true
}

// DeathCycleFactor returns the productive share of time for rates that lose
// health: ticks-to-death over ticks-to-death plus respawn overhead. With no
// health loss or no respawn overhead this is 1.
func DeathCycleFactor(cat *catalog.Catalog, s State, r Rates) float64 {
	ttd, dying := TicksUntilDeath(s, r)
	if !dying {
		return 1
	}
	respawn := float64(cat.Globals().RespawnTicks)
	if respawn <= 0 {
		return 1
	}
	return ttd / (ttd + respawn)
}
