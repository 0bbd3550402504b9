package solver

import (
	"fmt"
	"math"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
	"github.com/eseidel/better-idle-sub000/internal/sim"
)

// WaitKind identifies why a wait step stops where it does.
type WaitKind int

const (
	WaitNone WaitKind = iota
	WaitSkillLevel
	WaitMasteryLevel
	WaitDeath
	WaitGoal
	WaitUpgradeGold
	WaitDepletion
	WaitHorizon
	WaitStock
)

// WaitReason is the wait-step payload: which event the wait runs up to.
type WaitReason struct {
	Kind    WaitKind
	Skill   catalog.SkillID
	Action  catalog.ActionID
	Upgrade catalog.UpgradeID
	Item    catalog.ItemID
	Level   int
}

// Describe renders the reason for plan output.
func (r WaitReason) Describe() string {
	switch r.Kind {
	case WaitSkillLevel:
		return fmt.Sprintf("until %s level %d", r.Skill, r.Level)
	case WaitMasteryLevel:
		return fmt.Sprintf("until %s mastery %d", r.Action, r.Level)
	case WaitDeath:
		return "until death"
	case WaitGoal:
		return "until the goal is in reach"
	case WaitUpgradeGold:
		return fmt.Sprintf("until %s is affordable", r.Upgrade)
	case WaitDepletion:
		return fmt.Sprintf("until %s runs out", r.Item)
	case WaitHorizon:
		return "until the horizon cap"
	case WaitStock:
		return fmt.Sprintf("until %d %s stocked", r.Level, r.Item)
	default:
		return "wait"
	}
}

// RateZeroReason classifies a dead end: why no rate is positive and no
// decision can change that.
type RateZeroReason int

const (
	RateZeroUnknown RateZeroReason = iota
	RateZeroNoRelevantSkill
	RateZeroNoUnlockedActions
	RateZeroInputsRequired
	RateZeroZeroTicks
)

func (r RateZeroReason) String() string {
	switch r {
	case RateZeroNoRelevantSkill:
		return "no action trains the goal's skill"
	case RateZeroNoUnlockedActions:
		return "no unlocked actions"
	case RateZeroInputsRequired:
		return "every remaining action requires unavailable inputs"
	case RateZeroZeroTicks:
		return "every remaining action has zero duration"
	default:
		return "unknown"
	}
}

// Delta is the outcome of the next-decision-delta computation: how long the
// search may advance in one hop, or the dead-end diagnosis.
type Delta struct {
	Ticks      int64
	Reason     WaitReason
	DeadEnd    bool
	ZeroReason RateZeroReason
}

// NextDecisionDelta bounds how far the current action can run before some
// decision could change: the nearest of skill/mastery level, death, goal
// reach, upgrade affordability, input depletion and the horizon cap. This
// bound lets the search advance thousands of ticks per node.
func (p *Planner) NextDecisionDelta(s sim.State, goal Goal, c Candidates, elapsed int64) Delta {
	r := sim.ExpectedRates(p.cat, s)
	if r.IsZero() {
		if len(c.SwitchTo) == 0 && len(c.BuyUpgrades) == 0 && len(c.MacroStock) == 0 && !c.IncludeSellAll {
			return Delta{DeadEnd: true, ZeroReason: p.classifyDeadEnd(s, goal)}
		}
		// An interaction child has to move first; a wait gains nothing.
		return Delta{}
	}

	best := math.Inf(1)
	var reason WaitReason
	consider := func(t float64, why WaitReason) {
		if t < best {
			best = t
			reason = why
		}
	}

	if t, ok := TicksUntilNextSkillLevel(p.cat, s, r); ok {
		a, _ := p.cat.Action(r.Source)
		consider(t, WaitReason{Kind: WaitSkillLevel, Skill: a.Skill, Level: s.SkillLevel(a.Skill) + 1})
	}
	if t, ok := TicksUntilNextMasteryLevel(p.cat, s, r); ok {
		consider(t, WaitReason{Kind: WaitMasteryLevel, Action: r.Source, Level: s.MasteryLevel(r.Source) + 1})
	}
	if t, ok := sim.TicksUntilDeath(s, r); ok {
		consider(t, WaitReason{Kind: WaitDeath})
	}
	if goal != nil {
		if t, ok := TicksToReach(p.cat, goal, s, r); ok {
			consider(t, WaitReason{Kind: WaitGoal})
		}
	}
	for _, id := range c.BuyUpgrades {
		u, ok := p.cat.Upgrade(id)
		if !ok || s.Gold >= u.Cost {
			continue
		}
		if t, ok := TicksUntilGoldAmount(s, r, u.Cost); ok {
			consider(t, WaitReason{Kind: WaitUpgradeGold, Upgrade: id})
		}
	}
	if t, ok := TicksUntilDepletion(p.cat, s, r); ok {
		a, _ := p.cat.Action(r.Source)
		var item catalog.ItemID
		if a != nil {
			remaining := math.Inf(1)
			for _, in := range a.Inputs {
				flow := r.ItemFlow[in.Item]
				if flow >= 0 {
					continue
				}
				if left := s.Bank[in.Item] / -flow; left < remaining {
					remaining = left
					item = in.Item
				}
			}
		}
		consider(t, WaitReason{Kind: WaitDepletion, Action: r.Source, Item: item})
	}
	if left := p.tune.MaxSegmentTicks - elapsed; left > 0 {
		consider(float64(left), WaitReason{Kind: WaitHorizon})
	}

	if math.IsInf(best, 1) {
		return Delta{}
	}
	ticks := int64(math.Ceil(best))
	if ticks < 1 {
		ticks = 1
	}
	return Delta{Ticks: ticks, Reason: reason}
}

// classifyDeadEnd explains a zero-rate state with no way out.
func (p *Planner) classifyDeadEnd(s sim.State, goal Goal) RateZeroReason {
	if goal != nil {
		if skill, ok := goal.RelevantSkill(); ok {
			if len(p.cat.ActionsForSkill(skill)) == 0 {
				return RateZeroNoRelevantSkill
			}
		}
	}
	anyUnlocked := false
	for _, a := range p.cat.Actions() {
		if s.ActionUnlocked(a) {
			anyUnlocked = true
			break
		}
	}
	if !anyUnlocked {
		return RateZeroNoUnlockedActions
	}
	for _, a := range p.cat.Actions() {
		if !s.ActionUnlocked(a) {
			continue
		}
		if s.CanStart(a) {
			// Startable yet zero rates: durations must be degenerate.
			return RateZeroZeroTicks
		}
	}
	return RateZeroInputsRequired
}
