// Package catalog holds the static game content: actions, items, upgrades
// and world constants. A Catalog is immutable after construction and is
// passed explicitly to the simulation and the planner so that neither ever
// reads ambient global state.
package catalog

import (
	"fmt"
	"sort"
)

// Catalog is the read-only content registry.
type Catalog struct {
	actions    map[ActionID]*Action
	items      map[ItemID]*Item
	upgrades   map[UpgradeID]*Upgrade
	skillDrops map[SkillID][]Drop
	globals    Globals

	actionOrder  []ActionID
	itemOrder    []ItemID
	upgradeOrder []UpgradeID
	producers    map[ItemID][]ActionID
}

// New builds a Catalog from definition slices, validating every cross
// reference. Definitions are copied; the inputs may be reused by the caller.
func New(actions []Action, items []Item, upgrades []Upgrade, skillDrops map[SkillID][]Drop, globals Globals) (*Catalog, error) {
	c := &Catalog{
		actions:    make(map[ActionID]*Action, len(actions)),
		items:      make(map[ItemID]*Item, len(items)),
		upgrades:   make(map[UpgradeID]*Upgrade, len(upgrades)),
		skillDrops: make(map[SkillID][]Drop, len(skillDrops)),
		globals:    globals,
		producers:  make(map[ItemID][]ActionID),
	}

	if globals.MaxHealth <= 0 {
		return nil, fmt.Errorf("globals: max health must be positive, got %v", globals.MaxHealth)
	}
	if globals.BaseBankSlots <= 0 {
		return nil, fmt.Errorf("globals: base bank slots must be positive, got %d", globals.BaseBankSlots)
	}
	if globals.LevelCap < 1 || globals.LevelCap > MaxLevel {
		return nil, fmt.Errorf("globals: level cap %d outside 1..%d", globals.LevelCap, MaxLevel)
	}

	for i := range items {
		it := items[i]
		if it.ID == "" {
			return nil, fmt.Errorf("item %d: empty id", i)
		}
		if _, dup := c.items[it.ID]; dup {
			return nil, fmt.Errorf("item %q: duplicate id", it.ID)
		}
		if it.SellPrice < 0 {
			return nil, fmt.Errorf("item %q: negative sell price", it.ID)
		}
		c.items[it.ID] = &it
		c.itemOrder = append(c.itemOrder, it.ID)
	}
	sort.Slice(c.itemOrder, func(i, j int) bool { return c.itemOrder[i] < c.itemOrder[j] })

	validSkill := make(map[SkillID]bool)
	for _, s := range AllSkills() {
		validSkill[s] = true
	}

	for i := range actions {
		a := actions[i]
		if a.ID == "" {
			return nil, fmt.Errorf("action %d: empty id", i)
		}
		if _, dup := c.actions[a.ID]; dup {
			return nil, fmt.Errorf("action %q: duplicate id", a.ID)
		}
		if !validSkill[a.Skill] {
			return nil, fmt.Errorf("action %q: unknown skill %q", a.ID, a.Skill)
		}
		if a.BaseTicks <= 0 {
			return nil, fmt.Errorf("action %q: base ticks must be positive", a.ID)
		}
		if a.FailureChance < 0 || a.FailureChance >= 1 {
			return nil, fmt.Errorf("action %q: failure chance %v outside [0,1)", a.ID, a.FailureChance)
		}
		if a.UnlockLevel < 1 {
			a.UnlockLevel = 1
		}
		if a.MasteryXP == 0 {
			a.MasteryXP = a.XP
		}
		for _, q := range a.Inputs {
			if err := c.checkItemRef(q.Item, a.ID, "input"); err != nil {
				return nil, err
			}
			if q.Quantity <= 0 {
				return nil, fmt.Errorf("action %q: input %q quantity must be positive", a.ID, q.Item)
			}
		}
		for _, q := range a.Outputs {
			if err := c.checkItemRef(q.Item, a.ID, "output"); err != nil {
				return nil, err
			}
			if q.Quantity <= 0 {
				return nil, fmt.Errorf("action %q: output %q quantity must be positive", a.ID, q.Item)
			}
		}
		for _, d := range a.Drops {
			if err := c.checkItemRef(d.Item, a.ID, "drop"); err != nil {
				return nil, err
			}
			if d.Probability <= 0 || d.Probability > 1 {
				return nil, fmt.Errorf("action %q: drop %q probability %v outside (0,1]", a.ID, d.Item, d.Probability)
			}
		}
		c.actions[a.ID] = &a
		c.actionOrder = append(c.actionOrder, a.ID)
	}
	sort.Slice(c.actionOrder, func(i, j int) bool { return c.actionOrder[i] < c.actionOrder[j] })

	for skill, drops := range skillDrops {
		if !validSkill[skill] {
			return nil, fmt.Errorf("skill drops: unknown skill %q", skill)
		}
		for _, d := range drops {
			if _, ok := c.items[d.Item]; !ok {
				return nil, fmt.Errorf("skill %q drop: unknown item %q", skill, d.Item)
			}
			if d.Probability <= 0 || d.Probability > 1 {
				return nil, fmt.Errorf("skill %q drop %q: probability %v outside (0,1]", skill, d.Item, d.Probability)
			}
		}
		c.skillDrops[skill] = append([]Drop(nil), drops...)
	}

	for i := range upgrades {
		u := upgrades[i]
		if u.ID == "" {
			return nil, fmt.Errorf("upgrade %d: empty id", i)
		}
		if _, dup := c.upgrades[u.ID]; dup {
			return nil, fmt.Errorf("upgrade %q: duplicate id", u.ID)
		}
		if u.Cost <= 0 {
			return nil, fmt.Errorf("upgrade %q: cost must be positive", u.ID)
		}
		if u.Skill != "" && !validSkill[u.Skill] {
			return nil, fmt.Errorf("upgrade %q: unknown skill %q", u.ID, u.Skill)
		}
		if u.SpeedBonus < 0 || u.SpeedBonus >= 1 {
			return nil, fmt.Errorf("upgrade %q: speed bonus %v outside [0,1)", u.ID, u.SpeedBonus)
		}
		c.upgrades[u.ID] = &u
		c.upgradeOrder = append(c.upgradeOrder, u.ID)
	}
	sort.Slice(c.upgradeOrder, func(i, j int) bool { return c.upgradeOrder[i] < c.upgradeOrder[j] })
	for _, id := range c.upgradeOrder {
		u := c.upgrades[id]
		if u.Requires != "" {
			if _, ok := c.upgrades[u.Requires]; !ok {
				return nil, fmt.Errorf("upgrade %q: unknown prerequisite %q", id, u.Requires)
			}
		}
	}

	// Producer index: actions whose outputs or drops include the item,
	// ordered by unlock level so the cheapest unlock is found first.
	for _, id := range c.actionOrder {
		a := c.actions[id]
		for _, q := range a.Outputs {
			c.producers[q.Item] = append(c.producers[q.Item], id)
		}
	}
	for item := range c.producers {
		ids := c.producers[item]
		sort.Slice(ids, func(i, j int) bool {
			ai, aj := c.actions[ids[i]], c.actions[ids[j]]
			if ai.UnlockLevel != aj.UnlockLevel {
				return ai.UnlockLevel < aj.UnlockLevel
			}
			return ids[i] < ids[j]
		})
	}

	return c, nil
}

func (c *Catalog) checkItemRef(item ItemID, action ActionID, kind string) error {
	if _, ok := c.items[item]; !ok {
		return fmt.Errorf("action %q: unknown %s item %q", action, kind, item)
	}
	return nil
}

// Action returns the action definition for id.
func (c *Catalog) Action(id ActionID) (*Action, bool) {
	a, ok := c.actions[id]
	return a, ok
}

// Actions returns every action sorted by id.
func (c *Catalog) Actions() []*Action {
	out := make([]*Action, 0, len(c.actionOrder))
	for _, id := range c.actionOrder {
		out = append(out, c.actions[id])
	}
	return out
}

// ActionsForSkill returns the skill's actions sorted by unlock level, then id.
func (c *Catalog) ActionsForSkill(skill SkillID) []*Action {
	var out []*Action
	for _, id := range c.actionOrder {
		if c.actions[id].Skill == skill {
			out = append(out, c.actions[id])
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UnlockLevel != out[j].UnlockLevel {
			return out[i].UnlockLevel < out[j].UnlockLevel
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Item returns the item definition for id.
func (c *Catalog) Item(id ItemID) (*Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// Items returns every item sorted by id.
func (c *Catalog) Items() []*Item {
	out := make([]*Item, 0, len(c.itemOrder))
	for _, id := range c.itemOrder {
		out = append(out, c.items[id])
	}
	return out
}

// SellPrice returns the vendor price for id, zero for unknown items.
func (c *Catalog) SellPrice(id ItemID) float64 {
	if it, ok := c.items[id]; ok {
		return it.SellPrice
	}
	return 0
}

// Upgrade returns the upgrade definition for id.
func (c *Catalog) Upgrade(id UpgradeID) (*Upgrade, bool) {
	u, ok := c.upgrades[id]
	return u, ok
}

// Upgrades returns every upgrade sorted by id.
func (c *Catalog) Upgrades() []*Upgrade {
	out := make([]*Upgrade, 0, len(c.upgradeOrder))
	for _, id := range c.upgradeOrder {
		out = append(out, c.upgrades[id])
	}
	return out
}

// SkillDrops returns the skill-level drop table, shared by every action of
// the skill.
func (c *Catalog) SkillDrops(skill SkillID) []Drop {
	return c.skillDrops[skill]
}

// Producers returns the actions producing item as a deterministic output,
// ordered by unlock level then id. Nil when nothing produces it.
func (c *Catalog) Producers(item ItemID) []ActionID {
	return c.producers[item]
}

// Globals returns the world constants.
func (c *Catalog) Globals() Globals { return c.globals }

// SpeedMultiplier returns the duration multiplier for a skill given the set
// of owned upgrades. Tool tiers supersede lower tiers, so the strongest
// owned bonus wins.
func (c *Catalog) SpeedMultiplier(skill SkillID, owned func(UpgradeID) bool) float64 {
	best := 0.0
	for _, id := range c.upgradeOrder {
		u := c.upgrades[id]
		if u.Skill == skill && u.SpeedBonus > best && owned(id) {
			best = u.SpeedBonus
		}
	}
	return 1 - best
}
