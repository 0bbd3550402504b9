// Package sim implements the idle-game world: immutable state snapshots,
// instantaneous interactions, a deterministic expected-value projection for
// planning, and stochastic tick execution for real play.
package sim

import (
	"math"
	"sort"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
)

// State is one player's world snapshot. Package functions never mutate a
// State in place; every transition clones first. Bank amounts are float64 so
// the expected-value projection can carry fractional yields; real execution
// only ever adds whole items.
type State struct {
	Ticks     int64
	Gold      float64
	Health    float64
	Deaths    int64
	Active    catalog.ActionID
	Progress  float64
	Bank      map[catalog.ItemID]float64
	SkillXP   map[catalog.SkillID]float64
	MasteryXP map[catalog.ActionID]float64
	Upgrades  map[catalog.UpgradeID]bool
}

// NewState returns a fresh level-1 player with an empty bank.
func NewState(cat *catalog.Catalog) State {
	return State{
		Health:    cat.Globals().MaxHealth,
		Bank:      make(map[catalog.ItemID]float64),
		SkillXP:   make(map[catalog.SkillID]float64),
		MasteryXP: make(map[catalog.ActionID]float64),
		Upgrades:  make(map[catalog.UpgradeID]bool),
	}
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	ns := s
	ns.Bank = make(map[catalog.ItemID]float64, len(s.Bank))
	for k, v := range s.Bank {
		ns.Bank[k] = v
	}
	ns.SkillXP = make(map[catalog.SkillID]float64, len(s.SkillXP))
	for k, v := range s.SkillXP {
		ns.SkillXP[k] = v
	}
	ns.MasteryXP = make(map[catalog.ActionID]float64, len(s.MasteryXP))
	for k, v := range s.MasteryXP {
		ns.MasteryXP[k] = v
	}
	ns.Upgrades = make(map[catalog.UpgradeID]bool, len(s.Upgrades))
	for k, v := range s.Upgrades {
		ns.Upgrades[k] = v
	}
	return ns
}

// SkillLevel returns the current level of skill.
func (s State) SkillLevel(skill catalog.SkillID) int {
	return catalog.LevelForXP(s.SkillXP[skill])
}

// MasteryLevel returns the mastery level of action.
func (s State) MasteryLevel(action catalog.ActionID) int {
	return catalog.LevelForXP(s.MasteryXP[action])
}

// OwnsUpgrade reports whether the upgrade has been purchased.
func (s State) OwnsUpgrade(id catalog.UpgradeID) bool { return s.Upgrades[id] }

// ItemCount returns the banked amount of item.
func (s State) ItemCount(item catalog.ItemID) float64 { return s.Bank[item] }

// BankSlotsUsed counts distinct item kinds held. Each kind occupies one slot
// regardless of stack size.
func (s State) BankSlotsUsed() int {
	used := 0
	for _, v := range s.Bank {
		if v > 0 {
			used++
		}
	}
	return used
}

// BankCapacity returns the slot capacity including purchased expansions.
func (s State) BankCapacity(cat *catalog.Catalog) int {
	slots := cat.Globals().BaseBankSlots
	for _, u := range cat.Upgrades() {
		if u.BankSlots > 0 && s.Upgrades[u.ID] {
			slots += u.BankSlots
		}
	}
	return slots
}

// BankValue returns the gold obtained by selling the whole bank. Items are
// summed in sorted order so the result is bit-for-bit reproducible.
func (s State) BankValue(cat *catalog.Catalog) float64 {
	total := 0.0
	for _, item := range s.sortedBankItems() {
		total += s.Bank[item] * cat.SellPrice(item)
	}
	return total
}

func (s State) sortedBankItems() []catalog.ItemID {
	items := make([]catalog.ItemID, 0, len(s.Bank))
	for item := range s.Bank {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })
	return items
}

// ActionUnlocked reports whether the skill level requirement is met.
func (s State) ActionUnlocked(a *catalog.Action) bool {
	return s.SkillLevel(a.Skill) >= a.UnlockLevel
}

// CompletionsPossible returns how many completions the banked inputs allow,
// +Inf for actions without inputs.
func (s State) CompletionsPossible(a *catalog.Action) float64 {
	if len(a.Inputs) == 0 {
		return math.Inf(1)
	}
	possible := math.Inf(1)
	for _, q := range a.Inputs {
		n := s.Bank[q.Item] / float64(q.Quantity)
		if n < possible {
			possible = n
		}
	}
	if possible < 0 {
		return 0
	}
	return possible
}

// CanStart reports whether the action is unlocked and has inputs for at
// least one completion.
func (s State) CanStart(a *catalog.Action) bool {
	return s.ActionUnlocked(a) && s.CompletionsPossible(a) >= 1
}

// EffectiveTicks returns the expected duration of one completion: the base
// duration under the owned tool tier plus the expected stun time from
// failures.
func (s State) EffectiveTicks(cat *catalog.Catalog, a *catalog.Action) float64 {
	mult := cat.SpeedMultiplier(a.Skill, s.OwnsUpgrade)
	return float64(a.BaseTicks)*mult + a.FailureChance*float64(a.StunTicks)
}
