package solver

import (
	"math"
	"sort"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
	"github.com/eseidel/better-idle-sub000/internal/sim"
)

// ActionSummary is one action's planning view: its rates as if it were the
// active action right now, and whether it can be.
type ActionSummary struct {
	ID           catalog.ActionID
	Skill        catalog.SkillID
	GoldRate     float64
	XPRate       float64
	ValuePerTick float64
	Unlocked     bool
	HasInputs    bool
	CanStartNow  bool
}

// WatchSet names the boundaries worth checking while a plan runs: locked
// actions whose unlock is plausibly near, upgrades the enumerator found
// competitive, and whether inventory pressure matters. Rebuilt on every
// enumeration, never persisted.
type WatchSet struct {
	LockedActions []catalog.ActionID
	Upgrades      []catalog.UpgradeID
	InventoryFlag bool
}

// StockRequest asks the macro expander to stock an input for a consuming
// action that is currently blocked on it.
type StockRequest struct {
	Item     catalog.ItemID
	Quantity float64
	Consumer catalog.ActionID
}

// Candidates is the pruned decision menu for one search node.
type Candidates struct {
	SwitchTo       []catalog.ActionID
	BuyUpgrades    []catalog.UpgradeID
	IncludeSellAll bool
	MacroStock     []StockRequest
	Watch          WatchSet
}

// BuildActionSummaries summarizes every action in id order. Blocked
// consuming actions are summarized with the inputs hypothetically stocked,
// so their potential value is visible even with a dry bank.
func (p *Planner) BuildActionSummaries(s sim.State) []ActionSummary {
	actions := p.cat.Actions()
	summaries := make([]ActionSummary, 0, len(actions))
	for _, a := range actions {
		sum := ActionSummary{
			ID:          a.ID,
			Skill:       a.Skill,
			Unlocked:    s.ActionUnlocked(a),
			HasInputs:   a.IsConsuming(),
			CanStartNow: s.CanStart(a),
		}
		if sum.Unlocked {
			r := p.potentialRates(s, a)
			sum.GoldRate = r.GoldPerTick
			sum.XPRate = r.SkillXP[a.Skill]
			sum.ValuePerTick = ValuePerTick(p.cat, s, r)
		}
		summaries = append(summaries, sum)
	}
	return summaries
}

// potentialRates estimates rates for an unlocked action as if its inputs
// were in the bank. For startable actions this is the plain estimate.
func (p *Planner) potentialRates(s sim.State, a *catalog.Action) sim.Rates {
	if s.CanStart(a) {
		return sim.ExpectedRatesFor(p.cat, s, a.ID)
	}
	hypo := s.Clone()
	for _, in := range a.Inputs {
		if hypo.Bank[in.Item] < float64(in.Quantity) {
			hypo.Bank[in.Item] = float64(in.Quantity)
		}
	}
	return sim.ExpectedRatesFor(p.cat, hypo, a.ID)
}

// EnumerateCandidates builds the decision menu for a state: the top
// activities by value, producers for valuable blocked consumers, upgrades
// that beat the current best rate, and a sell decision under inventory
// pressure. Identical input yields byte-identical output.
func (p *Planner) EnumerateCandidates(s sim.State, goal Goal) Candidates {
	summaries := p.BuildActionSummaries(s)
	bySummary := make(map[catalog.ActionID]ActionSummary, len(summaries))
	for _, sum := range summaries {
		bySummary[sum.ID] = sum
	}

	startable := make([]ActionSummary, 0, len(summaries))
	for _, sum := range summaries {
		if sum.Unlocked && sum.CanStartNow {
			startable = append(startable, sum)
		}
	}
	sort.Slice(startable, func(i, j int) bool {
		if startable[i].ValuePerTick != startable[j].ValuePerTick {
			return startable[i].ValuePerTick > startable[j].ValuePerTick
		}
		return startable[i].ID < startable[j].ID
	})

	var c Candidates
	bestValue := 0.0
	if len(startable) > 0 {
		bestValue = startable[0].ValuePerTick
	}
	limit := p.tune.ActivityCount
	if limit > len(startable) {
		limit = len(startable)
	}
	seen := make(map[catalog.ActionID]bool, limit)
	for _, sum := range startable[:limit] {
		c.SwitchTo = append(c.SwitchTo, sum.ID)
		seen[sum.ID] = true
	}

	// A skill goal needs its skill trained even when the skill pays badly:
	// append the best xp earner for that skill.
	if goal != nil {
		if skill, ok := goal.RelevantSkill(); ok {
			best := catalog.ActionID("")
			bestXP := 0.0
			for _, sum := range startable {
				if sum.Skill != skill {
					continue
				}
				if sum.XPRate > bestXP || (sum.XPRate == bestXP && best != "" && sum.ID < best) {
					best, bestXP = sum.ID, sum.XPRate
				}
			}
			if best != "" && !seen[best] {
				c.SwitchTo = append(c.SwitchTo, best)
				seen[best] = true
			}
		}
	}

	// Blocked consuming actions with positive net value pull in their
	// producers, and a stock request so the search can batch the inputs.
	for _, sum := range summaries {
		if !sum.Unlocked || sum.CanStartNow || !sum.HasInputs || sum.ValuePerTick <= 0 {
			continue
		}
		a, _ := p.cat.Action(sum.ID)
		for _, in := range a.Inputs {
			if s.Bank[in.Item] >= float64(in.Quantity) {
				continue
			}
			c.MacroStock = append(c.MacroStock, StockRequest{
				Item:     in.Item,
				Quantity: p.stockTarget(s, a, in),
				Consumer: a.ID,
			})
			for _, producer := range p.cat.Producers(in.Item) {
				prod, ok := bySummary[producer]
				if !ok || !prod.Unlocked || !prod.CanStartNow || seen[producer] {
					continue
				}
				c.SwitchTo = append(c.SwitchTo, producer)
				seen[producer] = true
				break
			}
		}
	}

	c.BuyUpgrades = p.competitiveUpgrades(s, bestValue)

	used, total := s.BankSlotsUsed(), s.BankCapacity(p.cat)
	pressure := total > 0 && float64(used) > p.tune.SellPressureFraction*float64(total)
	sellWins := false
	if goal != nil && !goal.IsSatisfied(p.cat, s) && len(s.Bank) > 0 {
		if sold, err := sim.ApplyInteraction(p.cat, s, sim.SellAll()); err == nil {
			sellWins = goal.IsSatisfied(p.cat, sold)
		}
	}
	c.IncludeSellAll = (pressure && len(s.Bank) > 0) || sellWins

	c.Watch = WatchSet{
		LockedActions: p.watchedLocked(s),
		Upgrades:      c.BuyUpgrades,
		InventoryFlag: c.IncludeSellAll,
	}
	return c
}

// stockTarget sizes a stocking batch: enough input for the completions
// that reach the consumer skill's next level, bounded by the batch cap.
func (p *Planner) stockTarget(s sim.State, consumer *catalog.Action, in catalog.ItemQuantity) float64 {
	perCompletion := float64(in.Quantity)
	target := perCompletion
	xpPer := consumer.XP * (1 - consumer.FailureChance)
	level := s.SkillLevel(consumer.Skill)
	if xpPer > 0 && level < p.cat.Globals().LevelCap {
		need := catalog.XPForLevel(level+1) - s.SkillXP[consumer.Skill]
		if need > 0 {
			completions := math.Ceil(need / xpPer)
			target = completions * perCompletion
		}
	}
	if ceiling := float64(p.tune.StockBatchCap); target > ceiling {
		target = ceiling
	}
	if target < perCompletion {
		target = perCompletion
	}
	return target
}

// competitiveUpgrades returns the upgrades whose purchase would push some
// activity's value strictly above the current best, scaled by the margin
// knob. Affordability is not considered here; waiting for gold is the delta
// layer's business.
func (p *Planner) competitiveUpgrades(s sim.State, bestValue float64) []catalog.UpgradeID {
	bar := bestValue * p.tune.CompetitiveMargin
	var ids []catalog.UpgradeID
	for _, u := range p.cat.Upgrades() {
		if u.SpeedBonus <= 0 {
			continue // storage upgrades do not change any rate
		}
		if s.OwnsUpgrade(u.ID) {
			continue
		}
		if u.Requires != "" && !s.OwnsUpgrade(u.Requires) {
			continue
		}
		hypo := s.Clone()
		hypo.Upgrades[u.ID] = true
		for _, a := range p.cat.ActionsForSkill(u.Skill) {
			if !s.ActionUnlocked(a) {
				continue
			}
			r := p.potentialRates(hypo, a)
			if ValuePerTick(p.cat, hypo, r) > bar {
				ids = append(ids, u.ID)
				break
			}
		}
	}
	return ids
}

// watchedLocked lists locked actions whose unlock level is within the
// watch window of the current skill level, nearest first.
func (p *Planner) watchedLocked(s sim.State) []catalog.ActionID {
	type gap struct {
		id     catalog.ActionID
		levels int
	}
	var gaps []gap
	for _, a := range p.cat.Actions() {
		if s.ActionUnlocked(a) {
			continue
		}
		away := a.UnlockLevel - s.SkillLevel(a.Skill)
		if away > 0 && away <= p.tune.WatchWindowLevels {
			gaps = append(gaps, gap{id: a.ID, levels: away})
		}
	}
	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].levels != gaps[j].levels {
			return gaps[i].levels < gaps[j].levels
		}
		return gaps[i].id < gaps[j].id
	})
	ids := make([]catalog.ActionID, len(gaps))
	for i, g := range gaps {
		ids[i] = g.id
	}
	return ids
}
