package sim

import (
	"math"
	"math/rand"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
)

// TickReport summarizes what actually happened during a ConsumeTicks run.
type TickReport struct {
	Ticks       int64
	Completions int64
	Failures    int64
	Deaths      int64
	GoldGained  float64
	XPGained    float64
	ItemsGained map[catalog.ItemID]int64
	IdleTicks   int64
}

// ConsumeTicks runs the active action for real, rolling dice. Completions
// are integer, failures stun, damage can kill. Rolls are drawn from rng in
// a fixed order per attempt (success first, then action drops in catalog
// order, then skill drops), so a seeded rng replays exactly.
//
// Damage is applied deterministically per attempt; only the success and
// drop outcomes are random. A consuming action that runs out of inputs
// idles for the rest of the window.
func ConsumeTicks(cat *catalog.Catalog, s State, ticks int64, rng *rand.Rand) (State, TickReport) {
	ns := s.Clone()
	report := TickReport{Ticks: ticks, ItemsGained: make(map[catalog.ItemID]int64)}
	if ticks <= 0 {
		return ns, report
	}
	ns.Ticks += ticks

	a, ok := cat.Action(ns.Active)
	if !ok || !ns.ActionUnlocked(a) {
		report.IdleTicks = ticks
		return ns, report
	}
	mult := cat.SpeedMultiplier(a.Skill, ns.OwnsUpgrade)
	cycle := int64(math.Ceil(float64(a.BaseTicks) * mult))
	if cycle < 1 {
		cycle = 1
	}
	maxHP := cat.Globals().MaxHealth
	respawn := cat.Globals().RespawnTicks

	remaining := ticks
	for remaining > 0 {
		if len(a.Inputs) > 0 && ns.CompletionsPossible(a) < 1 {
			report.IdleTicks += remaining
			break
		}
		needed := cycle - int64(ns.Progress)
		if needed < 1 {
			needed = 1
		}
		if remaining < needed {
			ns.Progress += float64(remaining)
			remaining = 0
			break
		}
		remaining -= needed
		ns.Progress = 0

		for _, in := range a.Inputs {
			v := ns.Bank[in.Item] - float64(in.Quantity)
			if v <= 1e-9 {
				delete(ns.Bank, in.Item)
			} else {
				ns.Bank[in.Item] = v
			}
		}

		failed := a.FailureChance > 0 && rng.Float64() < a.FailureChance
		ns.Health -= a.Damage
		if failed {
			report.Failures++
			ns.Health -= a.FailureDamage
			if a.StunTicks > 0 {
				stun := a.StunTicks
				if stun > remaining {
					stun = remaining
				}
				remaining -= stun
			}
		} else {
			report.Completions++
			ns.Gold += a.Gold
			report.GoldGained += a.Gold
			ns.SkillXP[a.Skill] += a.XP
			ns.MasteryXP[a.ID] += a.MasteryXP
			report.XPGained += a.XP
			for _, out := range a.Outputs {
				if bankItem(cat, &ns, out.Item, float64(out.Quantity)) {
					report.ItemsGained[out.Item] += int64(out.Quantity)
				}
			}
			for _, d := range a.Drops {
				if rng.Float64() < d.Probability {
					if bankItem(cat, &ns, d.Item, float64(d.Quantity)) {
						report.ItemsGained[d.Item] += int64(d.Quantity)
					}
				}
			}
			for _, d := range cat.SkillDrops(a.Skill) {
				if rng.Float64() < d.Probability {
					if bankItem(cat, &ns, d.Item, float64(d.Quantity)) {
						report.ItemsGained[d.Item] += int64(d.Quantity)
					}
				}
			}
		}

		if ns.Health <= 0 {
			report.Deaths++
			ns.Deaths++
			ns.Health = maxHP
			if respawn > remaining {
				remaining = 0
			} else {
				remaining -= respawn
			}
		}
	}
	return ns, report
}

// bankItem deposits a yield, honoring bank capacity. Opening a new slot
// when the bank is full loses the yield; the report should not count it.
func bankItem(cat *catalog.Catalog, s *State, item catalog.ItemID, qty float64) bool {
	if s.Bank[item] <= 0 && s.BankSlotsUsed() >= s.BankCapacity(cat) {
		return false
	}
	s.Bank[item] += qty
	return true
}
