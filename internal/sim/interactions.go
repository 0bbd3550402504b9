package sim

import (
	"errors"
	"fmt"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
)

// InteractionKind tags the closed set of instantaneous player decisions.
type InteractionKind string

const (
	InteractSwitch  InteractionKind = "switch"
	InteractBuy     InteractionKind = "buy"
	InteractSellAll InteractionKind = "sell_all"
	InteractStop    InteractionKind = "stop"
)

// Interaction is one instantaneous player decision.
type Interaction struct {
	Kind    InteractionKind
	Action  catalog.ActionID
	Upgrade catalog.UpgradeID
}

// SwitchTo returns the interaction that makes action the active activity.
func SwitchTo(action catalog.ActionID) Interaction {
	return Interaction{Kind: InteractSwitch, Action: action}
}

// Buy returns the interaction that purchases the upgrade.
func Buy(upgrade catalog.UpgradeID) Interaction {
	return Interaction{Kind: InteractBuy, Upgrade: upgrade}
}

// SellAll returns the interaction that liquidates the whole bank.
func SellAll() Interaction { return Interaction{Kind: InteractSellAll} }

// Stop returns the interaction that halts the active action.
func Stop() Interaction { return Interaction{Kind: InteractStop} }

// Describe renders the interaction for humans.
func (i Interaction) Describe(cat *catalog.Catalog) string {
	switch i.Kind {
	case InteractSwitch:
		if a, ok := cat.Action(i.Action); ok {
			return fmt.Sprintf("switch to %s", a.Name)
		}
		return fmt.Sprintf("switch to %s", i.Action)
	case InteractBuy:
		if u, ok := cat.Upgrade(i.Upgrade); ok {
			return fmt.Sprintf("buy %s (%.0f gold)", u.Name, u.Cost)
		}
		return fmt.Sprintf("buy %s", i.Upgrade)
	case InteractSellAll:
		return "sell inventory"
	case InteractStop:
		return "stop action"
	}
	return string(i.Kind)
}

// Validation failures for interactions. The planner only constructs
// interactions it has already checked, so hitting one of these from a plan
// means projection and reality disagree.
var (
	ErrUnknownAction   = errors.New("unknown action")
	ErrUnknownUpgrade  = errors.New("unknown upgrade")
	ErrActionLocked    = errors.New("action locked")
	ErrMissingInputs   = errors.New("missing inputs")
	ErrUnaffordable    = errors.New("not enough gold")
	ErrAlreadyOwned    = errors.New("upgrade already owned")
	ErrPrerequisite    = errors.New("missing prerequisite upgrade")
	ErrUnknownInteract = errors.New("unknown interaction kind")
)

// ApplyInteraction applies one instantaneous decision and returns the new
// state. Invalid decisions are hard errors; nothing is clamped silently.
func ApplyInteraction(cat *catalog.Catalog, s State, it Interaction) (State, error) {
	switch it.Kind {
	case InteractSwitch:
		a, ok := cat.Action(it.Action)
		if !ok {
			return State{}, fmt.Errorf("switch to %q: %w", it.Action, ErrUnknownAction)
		}
		if !s.ActionUnlocked(a) {
			return State{}, fmt.Errorf("switch to %s: %w: need %s level %d, have %d",
				a.ID, ErrActionLocked, a.Skill, a.UnlockLevel, s.SkillLevel(a.Skill))
		}
		if s.CompletionsPossible(a) < 1 {
			return State{}, fmt.Errorf("switch to %s: %w", a.ID, ErrMissingInputs)
		}
		ns := s.Clone()
		if ns.Active != a.ID {
			ns.Active = a.ID
			ns.Progress = 0
		}
		return ns, nil

	case InteractBuy:
		u, ok := cat.Upgrade(it.Upgrade)
		if !ok {
			return State{}, fmt.Errorf("buy %q: %w", it.Upgrade, ErrUnknownUpgrade)
		}
		if s.Upgrades[u.ID] {
			return State{}, fmt.Errorf("buy %s: %w", u.ID, ErrAlreadyOwned)
		}
		if u.Requires != "" && !s.Upgrades[u.Requires] {
			return State{}, fmt.Errorf("buy %s: %w: %s", u.ID, ErrPrerequisite, u.Requires)
		}
		if s.Gold < u.Cost {
			return State{}, fmt.Errorf("buy %s: %w: cost %.0f, have %.2f", u.ID, ErrUnaffordable, u.Cost, s.Gold)
		}
		ns := s.Clone()
		ns.Gold -= u.Cost
		ns.Upgrades[u.ID] = true
		return ns, nil

	case InteractSellAll:
		ns := s.Clone()
		ns.Gold += ns.BankValue(cat)
		ns.Bank = make(map[catalog.ItemID]float64)
		return ns, nil

	case InteractStop:
		ns := s.Clone()
		ns.Active = ""
		ns.Progress = 0
		return ns, nil
	}
	return State{}, fmt.Errorf("%w: %q", ErrUnknownInteract, it.Kind)
}
