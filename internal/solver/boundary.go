package solver

import (
	"fmt"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
	"github.com/eseidel/better-idle-sub000/internal/sim"
)

// BoundaryKind identifies a replanning boundary.
type BoundaryKind int

const (
	BoundaryGoalReached BoundaryKind = iota
	BoundaryHorizonCap
	BoundaryInventoryPressure
	BoundaryUpgradeAffordable
	BoundaryUnlock
	BoundaryInputsDepleted
)

// String returns a short identifier for the boundary kind.
func (k BoundaryKind) String() string {
	switch k {
	case BoundaryGoalReached:
		return "GoalReached"
	case BoundaryHorizonCap:
		return "HorizonCap"
	case BoundaryInventoryPressure:
		return "InventoryPressure"
	case BoundaryUpgradeAffordable:
		return "UpgradeAffordable"
	case BoundaryUnlock:
		return "Unlock"
	case BoundaryInputsDepleted:
		return "InputsDepleted"
	default:
		return "Unknown"
	}
}

// Priority returns the detection precedence when several boundaries are
// true at once. Lower wins. The order is part of the observable contract;
// keep it stable.
func (k BoundaryKind) Priority() int {
	switch k {
	case BoundaryGoalReached:
		return 0
	case BoundaryHorizonCap:
		return 1
	case BoundaryInventoryPressure:
		return 2
	case BoundaryUpgradeAffordable:
		return 3
	case BoundaryUnlock:
		return 4
	case BoundaryInputsDepleted:
		return 5
	default:
		return 99
	}
}

// Boundary is one replanning boundary with its payload. Which payload
// fields are set depends on Kind.
type Boundary struct {
	Kind BoundaryKind

	Skill   catalog.SkillID   // Unlock: the skill that leveled
	Action  catalog.ActionID  // Unlock: newly available action; InputsDepleted: the stalled action
	Upgrade catalog.UpgradeID // UpgradeAffordable
	Item    catalog.ItemID    // InputsDepleted: the missing input

	UsedSlots  int // InventoryPressure
	TotalSlots int // InventoryPressure

	Elapsed int64 // HorizonCap: ticks elapsed when the cap hit
}

// Describe renders the boundary for plan output and logs.
func (b Boundary) Describe() string {
	switch b.Kind {
	case BoundaryGoalReached:
		return "goal reached"
	case BoundaryHorizonCap:
		return fmt.Sprintf("horizon cap at %d ticks", b.Elapsed)
	case BoundaryInventoryPressure:
		return fmt.Sprintf("inventory %d/%d slots", b.UsedSlots, b.TotalSlots)
	case BoundaryUpgradeAffordable:
		return fmt.Sprintf("can afford %s", b.Upgrade)
	case BoundaryUnlock:
		return fmt.Sprintf("%s unlocked %s", b.Skill, b.Action)
	case BoundaryInputsDepleted:
		return fmt.Sprintf("%s ran out of %s", b.Action, b.Item)
	default:
		return "unknown boundary"
	}
}

// Same reports whether two boundaries are the same decision point: the
// same kind over the same subject, ignoring measurement fields like slot
// counts and elapsed ticks.
func (b Boundary) Same(o Boundary) bool {
	if b.Kind != o.Kind {
		return false
	}
	switch b.Kind {
	case BoundaryUpgradeAffordable:
		return b.Upgrade == o.Upgrade
	case BoundaryUnlock:
		return b.Action == o.Action
	case BoundaryInputsDepleted:
		return b.Action == o.Action && b.Item == o.Item
	default:
		return true
	}
}

// DetectBoundary evaluates every watched boundary against the state and
// returns the highest-priority one that holds. The evaluation order is the
// priority order, so the first hit wins.
func (p *Planner) DetectBoundary(s sim.State, goal Goal, watch WatchSet, elapsed int64) (Boundary, bool) {
	if goal != nil && goal.IsSatisfied(p.cat, s) {
		return Boundary{Kind: BoundaryGoalReached}, true
	}
	if elapsed >= p.tune.MaxSegmentTicks {
		return Boundary{Kind: BoundaryHorizonCap, Elapsed: elapsed}, true
	}
	if watch.InventoryFlag {
		used, total := s.BankSlotsUsed(), s.BankCapacity(p.cat)
		if total > 0 && float64(used) > p.tune.SellPressureFraction*float64(total) {
			return Boundary{Kind: BoundaryInventoryPressure, UsedSlots: used, TotalSlots: total}, true
		}
	}
	for _, id := range watch.Upgrades {
		u, ok := p.cat.Upgrade(id)
		if !ok || s.OwnsUpgrade(id) {
			continue
		}
		if u.Requires != "" && !s.OwnsUpgrade(u.Requires) {
			continue
		}
		if s.Gold >= u.Cost {
			return Boundary{Kind: BoundaryUpgradeAffordable, Upgrade: id}, true
		}
	}
	for _, id := range watch.LockedActions {
		a, ok := p.cat.Action(id)
		if !ok {
			continue
		}
		if s.ActionUnlocked(a) {
			return Boundary{Kind: BoundaryUnlock, Skill: a.Skill, Action: id}, true
		}
	}
	if a, ok := p.cat.Action(s.Active); ok && len(a.Inputs) > 0 {
		if s.CompletionsPossible(a) < 1 {
			for _, in := range a.Inputs {
				if s.Bank[in.Item] < float64(in.Quantity) {
					return Boundary{Kind: BoundaryInputsDepleted, Action: a.ID, Item: in.Item}, true
				}
			}
		}
	}
	return Boundary{}, false
}
