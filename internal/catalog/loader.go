package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ItemQuantityJSON is the JSON shape of an item count.
type ItemQuantityJSON struct {
	Item     string `json:"item" jsonschema:"required"`
	Quantity int    `json:"quantity" jsonschema:"required"`
}

// DropJSON is the JSON shape of a probabilistic drop.
type DropJSON struct {
	Item        string  `json:"item" jsonschema:"required"`
	Quantity    int     `json:"quantity" jsonschema:"required"`
	Probability float64 `json:"probability" jsonschema:"required"`
}

// ActionJSON is the JSON shape of an action definition.
type ActionJSON struct {
	ID            string             `json:"id" jsonschema:"required"`
	Name          string             `json:"name" jsonschema:"required"`
	Skill         string             `json:"skill" jsonschema:"required"`
	UnlockLevel   int                `json:"unlock_level"`
	BaseTicks     int64              `json:"base_ticks" jsonschema:"required"`
	XP            float64            `json:"xp" jsonschema:"required"`
	MasteryXP     float64            `json:"mastery_xp,omitempty"`
	Inputs        []ItemQuantityJSON `json:"inputs,omitempty"`
	Outputs       []ItemQuantityJSON `json:"outputs,omitempty"`
	Drops         []DropJSON         `json:"drops,omitempty"`
	Gold          float64            `json:"gold,omitempty"`
	FailureChance float64            `json:"failure_chance,omitempty"`
	StunTicks     int64              `json:"stun_ticks,omitempty"`
	FailureDamage float64            `json:"failure_damage,omitempty"`
	Damage        float64            `json:"damage,omitempty"`
}

// ItemJSON is the JSON shape of an item definition.
type ItemJSON struct {
	ID        string  `json:"id" jsonschema:"required"`
	Name      string  `json:"name" jsonschema:"required"`
	SellPrice float64 `json:"sell_price" jsonschema:"required"`
}

// UpgradeJSON is the JSON shape of an upgrade definition.
type UpgradeJSON struct {
	ID         string  `json:"id" jsonschema:"required"`
	Name       string  `json:"name" jsonschema:"required"`
	Cost       float64 `json:"cost" jsonschema:"required"`
	Skill      string  `json:"skill,omitempty"`
	SpeedBonus float64 `json:"speed_bonus,omitempty"`
	BankSlots  int     `json:"bank_slots,omitempty"`
	Requires   string  `json:"requires,omitempty"`
}

// GlobalsJSON is the JSON shape of the world constants.
type GlobalsJSON struct {
	MaxHealth     float64 `json:"max_health" jsonschema:"required"`
	RespawnTicks  int64   `json:"respawn_ticks" jsonschema:"required"`
	BaseBankSlots int     `json:"base_bank_slots" jsonschema:"required"`
	LevelCap      int     `json:"level_cap" jsonschema:"required"`
}

// Load reads actions.json, items.json, upgrades.json, skill_drops.json and
// globals.json from dataDir and builds a validated Catalog.
func Load(dataDir string) (*Catalog, error) {
	var rawItems []ItemJSON
	if err := readJSON(dataDir, "items.json", &rawItems); err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(rawItems))
	for _, r := range rawItems {
		items = append(items, Item{ID: ItemID(r.ID), Name: r.Name, SellPrice: r.SellPrice})
	}

	var rawActions []ActionJSON
	if err := readJSON(dataDir, "actions.json", &rawActions); err != nil {
		return nil, err
	}
	actions := make([]Action, 0, len(rawActions))
	for _, r := range rawActions {
		actions = append(actions, Action{
			ID:            ActionID(r.ID),
			Name:          r.Name,
			Skill:         SkillID(r.Skill),
			UnlockLevel:   r.UnlockLevel,
			BaseTicks:     r.BaseTicks,
			XP:            r.XP,
			MasteryXP:     r.MasteryXP,
			Inputs:        convertQuantities(r.Inputs),
			Outputs:       convertQuantities(r.Outputs),
			Drops:         convertDrops(r.Drops),
			Gold:          r.Gold,
			FailureChance: r.FailureChance,
			StunTicks:     r.StunTicks,
			FailureDamage: r.FailureDamage,
			Damage:        r.Damage,
		})
	}

	var rawUpgrades []UpgradeJSON
	if err := readJSON(dataDir, "upgrades.json", &rawUpgrades); err != nil {
		return nil, err
	}
	upgrades := make([]Upgrade, 0, len(rawUpgrades))
	for _, r := range rawUpgrades {
		upgrades = append(upgrades, Upgrade{
			ID:         UpgradeID(r.ID),
			Name:       r.Name,
			Cost:       r.Cost,
			Skill:      SkillID(r.Skill),
			SpeedBonus: r.SpeedBonus,
			BankSlots:  r.BankSlots,
			Requires:   UpgradeID(r.Requires),
		})
	}

	var rawDrops map[string][]DropJSON
	if err := readJSON(dataDir, "skill_drops.json", &rawDrops); err != nil {
		return nil, err
	}
	skillDrops := make(map[SkillID][]Drop, len(rawDrops))
	for skill, drops := range rawDrops {
		skillDrops[SkillID(skill)] = convertDrops(drops)
	}

	var rawGlobals GlobalsJSON
	if err := readJSON(dataDir, "globals.json", &rawGlobals); err != nil {
		return nil, err
	}
	globals := Globals{
		MaxHealth:     rawGlobals.MaxHealth,
		RespawnTicks:  rawGlobals.RespawnTicks,
		BaseBankSlots: rawGlobals.BaseBankSlots,
		LevelCap:      rawGlobals.LevelCap,
	}

	c, err := New(actions, items, upgrades, skillDrops, globals)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog data in %s: %w", dataDir, err)
	}
	return c, nil
}

func readJSON(dataDir, name string, v any) error {
	data, err := os.ReadFile(filepath.Join(dataDir, name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func convertQuantities(raw []ItemQuantityJSON) []ItemQuantity {
	if len(raw) == 0 {
		return nil
	}
	out := make([]ItemQuantity, 0, len(raw))
	for _, r := range raw {
		out = append(out, ItemQuantity{Item: ItemID(r.Item), Quantity: r.Quantity})
	}
	return out
}

func convertDrops(raw []DropJSON) []Drop {
	if len(raw) == 0 {
		return nil
	}
	out := make([]Drop, 0, len(raw))
	for _, r := range raw {
		out = append(out, Drop{Item: ItemID(r.Item), Quantity: r.Quantity, Probability: r.Probability})
	}
	return out
}
