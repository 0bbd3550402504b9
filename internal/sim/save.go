package sim

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
)

type stateJSON struct {
	Ticks     int64              `json:"ticks"`
	Gold      float64            `json:"gold"`
	Health    float64            `json:"health"`
	Deaths    int64              `json:"deaths,omitempty"`
	Active    string             `json:"active_action,omitempty"`
	Progress  float64            `json:"progress,omitempty"`
	Bank      map[string]float64 `json:"bank,omitempty"`
	SkillXP   map[string]float64 `json:"skill_xp,omitempty"`
	MasteryXP map[string]float64 `json:"mastery_xp,omitempty"`
	Upgrades  []string           `json:"upgrades,omitempty"`
}

// SaveState writes the state as indented JSON.
func SaveState(path string, s State) error {
	out := stateJSON{
		Ticks:     s.Ticks,
		Gold:      s.Gold,
		Health:    s.Health,
		Deaths:    s.Deaths,
		Active:    string(s.Active),
		Progress:  s.Progress,
		Bank:      make(map[string]float64, len(s.Bank)),
		SkillXP:   make(map[string]float64, len(s.SkillXP)),
		MasteryXP: make(map[string]float64, len(s.MasteryXP)),
	}
	for item, qty := range s.Bank {
		out.Bank[string(item)] = qty
	}
	for skill, xp := range s.SkillXP {
		out.SkillXP[string(skill)] = xp
	}
	for action, xp := range s.MasteryXP {
		out.MasteryXP[string(action)] = xp
	}
	for id, owned := range s.Upgrades {
		if owned {
			out.Upgrades = append(out.Upgrades, string(id))
		}
	}
	sort.Strings(out.Upgrades)
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// LoadState reads a saved state and checks every id against the catalog.
func LoadState(cat *catalog.Catalog, path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, fmt.Errorf("failed to read state: %w", err)
	}
	var in stateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return State{}, fmt.Errorf("failed to parse state: %w", err)
	}
	s := NewState(cat)
	s.Ticks = in.Ticks
	s.Gold = in.Gold
	s.Deaths = in.Deaths
	s.Progress = in.Progress
	if in.Health > 0 {
		s.Health = in.Health
	}
	if in.Active != "" {
		if _, ok := cat.Action(catalog.ActionID(in.Active)); !ok {
			return State{}, fmt.Errorf("state references unknown action %q", in.Active)
		}
		s.Active = catalog.ActionID(in.Active)
	}
	for item, qty := range in.Bank {
		if _, ok := cat.Item(catalog.ItemID(item)); !ok {
			return State{}, fmt.Errorf("state references unknown item %q", item)
		}
		s.Bank[catalog.ItemID(item)] = qty
	}
	for skill, xp := range in.SkillXP {
		s.SkillXP[catalog.SkillID(skill)] = xp
	}
	for action, xp := range in.MasteryXP {
		if _, ok := cat.Action(catalog.ActionID(action)); !ok {
			return State{}, fmt.Errorf("state references unknown action %q", action)
		}
		s.MasteryXP[catalog.ActionID(action)] = xp
	}
	for _, id := range in.Upgrades {
		if _, ok := cat.Upgrade(catalog.UpgradeID(id)); !ok {
			return State{}, fmt.Errorf("state references unknown upgrade %q", id)
		}
		s.Upgrades[catalog.UpgradeID(id)] = true
	}
	return s, nil
}
