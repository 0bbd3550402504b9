package sim

import (
	"math"
	"sort"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
)

// Advance projects the state deltaTicks forward using expected values only.
// It is the planner's view of the world: fully deterministic, fractional
// yields, no random rolls. It returns the new state and the expected number
// of deaths inside the window. Real gameplay uses ConsumeTicks instead.
//
// A consuming action stalls at input depletion and the rest of the window
// idles. Hazardous actions alternate survival time and respawn downtime;
// after the first death the remaining window is smeared over the steady
// death cycle, which keeps the projection closed-form.
func Advance(cat *catalog.Catalog, s State, deltaTicks int64) (State, float64) {
	ns := s.Clone()
	if deltaTicks <= 0 {
		return ns, 0
	}
	ns.Ticks += deltaTicks
	r := ExpectedRates(cat, s)
	if r.IsZero() {
		return ns, 0
	}
	a, ok := cat.Action(s.Active)
	if !ok {
		return ns, 0
	}
	eff := s.EffectiveTicks(cat, a)
	window := float64(deltaTicks)

	// Productive ticks are bounded by input depletion.
	budget := math.Inf(1)
	for _, q := range a.Inputs {
		limit := s.Bank[q.Item] / (float64(q.Quantity) / eff)
		if limit < budget {
			budget = limit
		}
	}

	productive, deaths, health := productiveSplit(cat, s.Health, r.HealthLossPerTick, window, budget)

	ns.Gold += r.GoldPerTick * productive
	capacity := ns.BankCapacity(cat)
	for _, item := range sortedFlowItems(r.ItemFlow) {
		flow := r.ItemFlow[item]
		if flow == 0 {
			continue
		}
		if flow > 0 && ns.Bank[item] <= 0 && ns.BankSlotsUsed() >= capacity {
			continue // no free slot, the yield is lost
		}
		v := ns.Bank[item] + flow*productive
		if v <= 1e-9 {
			delete(ns.Bank, item)
		} else {
			ns.Bank[item] = v
		}
	}
	ns.SkillXP[a.Skill] += r.SkillXP[a.Skill] * productive
	ns.MasteryXP[a.ID] += r.MasteryXPPerTick * productive
	ns.Health = health
	ns.Progress = math.Mod(s.Progress+productive, eff)
	return ns, deaths
}

// productiveSplit divides a wall-clock window into productive action time
// and respawn downtime. budget caps total productive ticks (input
// depletion); lossRate of zero means the whole window is productive.
func productiveSplit(cat *catalog.Catalog, health, lossRate, window, budget float64) (productive, deaths, finalHealth float64) {
	if lossRate <= 0 {
		return math.Min(window, budget), 0, health
	}
	maxHP := cat.Globals().MaxHealth
	respawn := float64(cat.Globals().RespawnTicks)

	ttd := health / lossRate
	if ttd < 0 {
		ttd = 0
	}
	// Reaching the exact time to death counts as the death.
	if math.Min(window, budget) < ttd {
		productive = math.Min(window, budget)
		return productive, 0, health - lossRate*productive
	}

	// First death, then whole survival/respawn cycles in bulk.
	deaths = 1
	productive = ttd
	finalHealth = maxHP
	wallLeft := window - ttd - respawn
	fullPool := maxHP / lossRate
	cycle := fullPool + respawn
	if wallLeft > 0 {
		n := math.Floor(wallLeft / cycle)
		if limit := math.Floor((budget - productive) / fullPool); n > limit {
			n = limit
		}
		if n > 0 {
			deaths += n
			productive += n * fullPool
			wallLeft -= n * cycle
		}
	}
	// Tail: at most one more death fits before the window or budget ends.
	if wallLeft > 0 && budget > productive {
		pool := math.Min(fullPool, budget-productive)
		switch {
		case wallLeft <= pool:
			productive += wallLeft
			finalHealth = maxHP - lossRate*wallLeft
		case pool < fullPool:
			productive += pool
			finalHealth = maxHP - lossRate*pool
		default:
			deaths++
			productive += fullPool
		}
	}
	return productive, deaths, finalHealth
}

func sortedFlowItems(flow map[catalog.ItemID]float64) []catalog.ItemID {
	items := make([]catalog.ItemID, 0, len(flow))
	for item := range flow {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })
	return items
}
