package catalog

import "fmt"

// defaultCatalog is built once at package init; Default hands out the shared
// immutable instance.
var defaultCatalog = mustBuild()

// Default returns the built-in content shipped with the binary. The same
// content lives under data/ for the JSON loader.
func Default() *Catalog { return defaultCatalog }

func mustBuild() *Catalog {
	c, err := New(defaultActions(), defaultItems(), defaultUpgrades(), defaultSkillDrops(), DefaultGlobals())
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid built-in content: %v", err))
	}
	return c
}

// DefaultGlobals returns the built-in world constants.
func DefaultGlobals() Globals {
	return Globals{
		MaxHealth:     100,
		RespawnTicks:  600,
		BaseBankSlots: 12,
		LevelCap:      MaxLevel,
	}
}

func defaultItems() []Item {
	return []Item{
		{ID: "logs", Name: "Logs", SellPrice: 1},
		{ID: "oak_logs", Name: "Oak Logs", SellPrice: 5},
		{ID: "willow_logs", Name: "Willow Logs", SellPrice: 12},
		{ID: "bird_nest", Name: "Bird Nest", SellPrice: 350},
		{ID: "raw_shrimp", Name: "Raw Shrimp", SellPrice: 1},
		{ID: "raw_sardine", Name: "Raw Sardine", SellPrice: 4},
		{ID: "raw_trout", Name: "Raw Trout", SellPrice: 12},
		{ID: "shrimp", Name: "Shrimp", SellPrice: 2},
		{ID: "sardine", Name: "Sardine", SellPrice: 8},
		{ID: "trout", Name: "Trout", SellPrice: 25},
		{ID: "copper_ore", Name: "Copper Ore", SellPrice: 2},
		{ID: "tin_ore", Name: "Tin Ore", SellPrice: 2},
		{ID: "iron_ore", Name: "Iron Ore", SellPrice: 8},
		{ID: "gem", Name: "Gem", SellPrice: 250},
		{ID: "bronze_bar", Name: "Bronze Bar", SellPrice: 8},
		{ID: "iron_bar", Name: "Iron Bar", SellPrice: 22},
		{ID: "bronze_dagger", Name: "Bronze Dagger", SellPrice: 25},
		{ID: "iron_sword", Name: "Iron Sword", SellPrice: 70},
		{ID: "feathers", Name: "Feathers", SellPrice: 1},
		{ID: "leather", Name: "Leather", SellPrice: 5},
	}
}

func defaultActions() []Action {
	return []Action{
		// Woodcutting.
		{ID: "chop_tree", Name: "Chop Normal Tree", Skill: SkillWoodcutting, UnlockLevel: 1, BaseTicks: 30, XP: 10,
			Outputs: []ItemQuantity{{Item: "logs", Quantity: 1}}},
		{ID: "chop_oak", Name: "Chop Oak Tree", Skill: SkillWoodcutting, UnlockLevel: 10, BaseTicks: 40, XP: 15,
			Outputs: []ItemQuantity{{Item: "oak_logs", Quantity: 1}}},
		{ID: "chop_willow", Name: "Chop Willow Tree", Skill: SkillWoodcutting, UnlockLevel: 25, BaseTicks: 50, XP: 22.5,
			Outputs: []ItemQuantity{{Item: "willow_logs", Quantity: 1}}},

		// Fishing.
		{ID: "fish_shrimp", Name: "Fish Shrimp", Skill: SkillFishing, UnlockLevel: 1, BaseTicks: 50, XP: 5,
			Outputs: []ItemQuantity{{Item: "raw_shrimp", Quantity: 1}}},
		{ID: "fish_sardine", Name: "Fish Sardine", Skill: SkillFishing, UnlockLevel: 5, BaseTicks: 50, XP: 9,
			Outputs: []ItemQuantity{{Item: "raw_sardine", Quantity: 1}}},
		{ID: "fish_trout", Name: "Fish Trout", Skill: SkillFishing, UnlockLevel: 20, BaseTicks: 60, XP: 18,
			Outputs: []ItemQuantity{{Item: "raw_trout", Quantity: 1}}},

		// Mining.
		{ID: "mine_copper", Name: "Mine Copper", Skill: SkillMining, UnlockLevel: 1, BaseTicks: 30, XP: 7,
			Outputs: []ItemQuantity{{Item: "copper_ore", Quantity: 1}}},
		{ID: "mine_tin", Name: "Mine Tin", Skill: SkillMining, UnlockLevel: 1, BaseTicks: 30, XP: 7,
			Outputs: []ItemQuantity{{Item: "tin_ore", Quantity: 1}}},
		{ID: "mine_iron", Name: "Mine Iron", Skill: SkillMining, UnlockLevel: 15, BaseTicks: 40, XP: 14,
			Outputs: []ItemQuantity{{Item: "iron_ore", Quantity: 1}}},

		// Smithing consumes ores and bars.
		{ID: "smelt_bronze_bar", Name: "Smelt Bronze Bar", Skill: SkillSmithing, UnlockLevel: 1, BaseTicks: 20, XP: 8,
			Inputs:  []ItemQuantity{{Item: "copper_ore", Quantity: 1}, {Item: "tin_ore", Quantity: 1}},
			Outputs: []ItemQuantity{{Item: "bronze_bar", Quantity: 1}}},
		{ID: "smith_bronze_dagger", Name: "Smith Bronze Dagger", Skill: SkillSmithing, UnlockLevel: 5, BaseTicks: 25, XP: 12.5,
			Inputs:  []ItemQuantity{{Item: "bronze_bar", Quantity: 1}},
			Outputs: []ItemQuantity{{Item: "bronze_dagger", Quantity: 1}}},
		{ID: "smelt_iron_bar", Name: "Smelt Iron Bar", Skill: SkillSmithing, UnlockLevel: 15, BaseTicks: 25, XP: 15,
			Inputs:  []ItemQuantity{{Item: "iron_ore", Quantity: 1}},
			Outputs: []ItemQuantity{{Item: "iron_bar", Quantity: 1}}},
		{ID: "smith_iron_sword", Name: "Smith Iron Sword", Skill: SkillSmithing, UnlockLevel: 20, BaseTicks: 30, XP: 25,
			Inputs:  []ItemQuantity{{Item: "iron_bar", Quantity: 2}},
			Outputs: []ItemQuantity{{Item: "iron_sword", Quantity: 1}}},

		// Cooking burns on failure; the raw fish is consumed either way.
		{ID: "cook_shrimp", Name: "Cook Shrimp", Skill: SkillCooking, UnlockLevel: 1, BaseTicks: 20, XP: 6,
			Inputs:        []ItemQuantity{{Item: "raw_shrimp", Quantity: 1}},
			Outputs:       []ItemQuantity{{Item: "shrimp", Quantity: 1}},
			FailureChance: 0.10},
		{ID: "cook_sardine", Name: "Cook Sardine", Skill: SkillCooking, UnlockLevel: 5, BaseTicks: 20, XP: 10,
			Inputs:        []ItemQuantity{{Item: "raw_sardine", Quantity: 1}},
			Outputs:       []ItemQuantity{{Item: "sardine", Quantity: 1}},
			FailureChance: 0.08},
		{ID: "cook_trout", Name: "Cook Trout", Skill: SkillCooking, UnlockLevel: 20, BaseTicks: 25, XP: 20,
			Inputs:        []ItemQuantity{{Item: "raw_trout", Quantity: 1}},
			Outputs:       []ItemQuantity{{Item: "trout", Quantity: 1}},
			FailureChance: 0.05},

		// Thieving pays gold directly; a failed pick stuns and hurts.
		{ID: "pickpocket_citizen", Name: "Pickpocket Citizen", Skill: SkillThieving, UnlockLevel: 1, BaseTicks: 30, XP: 8,
			Gold: 5, FailureChance: 0.30, StunTicks: 30, FailureDamage: 10},
		{ID: "pickpocket_farmer", Name: "Pickpocket Farmer", Skill: SkillThieving, UnlockLevel: 10, BaseTicks: 30, XP: 14,
			Gold: 12, FailureChance: 0.25, StunTicks: 30, FailureDamage: 15},
		{ID: "pickpocket_merchant", Name: "Pickpocket Merchant", Skill: SkillThieving, UnlockLevel: 25, BaseTicks: 30, XP: 25,
			Gold: 30, FailureChance: 0.22, StunTicks: 30, FailureDamage: 25},

		// Combat trades health for gold and materials.
		{ID: "fight_chicken", Name: "Fight Chicken", Skill: SkillCombat, UnlockLevel: 1, BaseTicks: 60, XP: 12,
			Gold:    3,
			Outputs: []ItemQuantity{{Item: "feathers", Quantity: 5}},
			Damage:  4},
		{ID: "fight_cow", Name: "Fight Cow", Skill: SkillCombat, UnlockLevel: 10, BaseTicks: 90, XP: 25,
			Gold:    8,
			Outputs: []ItemQuantity{{Item: "leather", Quantity: 1}},
			Damage:  10},
	}
}

func defaultSkillDrops() map[SkillID][]Drop {
	return map[SkillID][]Drop{
		SkillWoodcutting: {{Item: "bird_nest", Quantity: 1, Probability: 0.005}},
		SkillMining:      {{Item: "gem", Quantity: 1, Probability: 0.01}},
	}
}

func defaultUpgrades() []Upgrade {
	return []Upgrade{
		{ID: "axe_iron", Name: "Iron Axe", Cost: 50, Skill: SkillWoodcutting, SpeedBonus: 0.05},
		{ID: "axe_steel", Name: "Steel Axe", Cost: 750, Skill: SkillWoodcutting, SpeedBonus: 0.10, Requires: "axe_iron"},
		{ID: "axe_mithril", Name: "Mithril Axe", Cost: 5000, Skill: SkillWoodcutting, SpeedBonus: 0.15, Requires: "axe_steel"},
		{ID: "rod_willow", Name: "Willow Rod", Cost: 100, Skill: SkillFishing, SpeedBonus: 0.05},
		{ID: "rod_carbon", Name: "Carbon Rod", Cost: 2000, Skill: SkillFishing, SpeedBonus: 0.10, Requires: "rod_willow"},
		{ID: "pickaxe_iron", Name: "Iron Pickaxe", Cost: 100, Skill: SkillMining, SpeedBonus: 0.05},
		{ID: "pickaxe_steel", Name: "Steel Pickaxe", Cost: 1000, Skill: SkillMining, SpeedBonus: 0.10, Requires: "pickaxe_iron"},
		{ID: "pickaxe_mithril", Name: "Mithril Pickaxe", Cost: 6000, Skill: SkillMining, SpeedBonus: 0.15, Requires: "pickaxe_steel"},
		{ID: "fire_controlled", Name: "Controlled Heat", Cost: 250, Skill: SkillCooking, SpeedBonus: 0.05},
		{ID: "fire_perfect", Name: "Perfect Heat", Cost: 2500, Skill: SkillCooking, SpeedBonus: 0.10, Requires: "fire_controlled"},
		{ID: "bank_pouch", Name: "Bank Pouch", Cost: 100, BankSlots: 2},
		{ID: "bank_satchel", Name: "Bank Satchel", Cost: 500, BankSlots: 2, Requires: "bank_pouch"},
		{ID: "bank_chest", Name: "Bank Chest", Cost: 2000, BankSlots: 4, Requires: "bank_satchel"},
	}
}
