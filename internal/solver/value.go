package solver

import (
	"sort"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
	"github.com/eseidel/better-idle-sub000/internal/sim"
)

// GoldValueRate folds a rate vector into a single gold-per-tick scalar:
// direct gold plus the sell value of every item flow, drops included.
// Input flows are negative, so consuming actions pay for their materials.
// Summation walks items in sorted order to stay bit-for-bit reproducible.
func GoldValueRate(cat *catalog.Catalog, r sim.Rates) float64 {
	total := r.GoldPerTick
	for _, item := range sortedFlowKeys(r.ItemFlow) {
		total += r.ItemFlow[item] * cat.SellPrice(item)
	}
	return total
}

// ValuePerTick ranks an action for the candidate enumerator and the search
// heuristic: the gold value rate discounted by death-cycle overhead, so a
// lucrative activity that keeps killing the player scores accordingly.
func ValuePerTick(cat *catalog.Catalog, s sim.State, r sim.Rates) float64 {
	return GoldValueRate(cat, r) * sim.DeathCycleFactor(cat, s, r)
}

func sortedFlowKeys(flow map[catalog.ItemID]float64) []catalog.ItemID {
	items := make([]catalog.ItemID, 0, len(flow))
	for item := range flow {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })
	return items
}
