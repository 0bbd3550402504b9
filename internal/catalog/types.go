package catalog

// SkillID identifies a trainable skill.
type SkillID string

const (
	SkillWoodcutting SkillID = "woodcutting"
	SkillFishing     SkillID = "fishing"
	SkillMining      SkillID = "mining"
	SkillSmithing    SkillID = "smithing"
	SkillCooking     SkillID = "cooking"
	SkillThieving    SkillID = "thieving"
	SkillCombat      SkillID = "combat"
)

// AllSkills returns every skill in a fixed, deterministic order.
func AllSkills() []SkillID {
	return []SkillID{
		SkillWoodcutting,
		SkillFishing,
		SkillMining,
		SkillSmithing,
		SkillCooking,
		SkillThieving,
		SkillCombat,
	}
}

// ActionID identifies a player-performable action.
type ActionID string

// ItemID identifies an inventory item.
type ItemID string

// UpgradeID identifies a one-time shop purchase.
type UpgradeID string

// ItemQuantity is an item with a per-completion count.
type ItemQuantity struct {
	Item     ItemID
	Quantity int
}

// Drop is a probabilistic item yield rolled once per successful completion.
type Drop struct {
	Item        ItemID
	Quantity    int
	Probability float64
}

// Action describes one repeatable activity. One completion takes BaseTicks
// (before tool speed bonuses), consumes Inputs, and on success yields
// Outputs, Drops, Gold and XP. FailureChance is the per-completion chance
// that the attempt yields nothing; a failure still consumes Inputs, adds
// StunTicks of downtime and deals FailureDamage. Damage is health lost per
// completion regardless of outcome (combat hits taken).
type Action struct {
	ID            ActionID
	Name          string
	Skill         SkillID
	UnlockLevel   int
	BaseTicks     int64
	XP            float64
	MasteryXP     float64
	Inputs        []ItemQuantity
	Outputs       []ItemQuantity
	Drops         []Drop
	Gold          float64
	FailureChance float64
	StunTicks     int64
	FailureDamage float64
	Damage        float64
}

// IsConsuming reports whether the action consumes inputs per completion.
func (a *Action) IsConsuming() bool { return len(a.Inputs) > 0 }

// IsHazardous reports whether the action can cost health.
func (a *Action) IsHazardous() bool {
	return a.Damage > 0 || (a.FailureChance > 0 && a.FailureDamage > 0)
}

// Item describes a bankable item and its vendor sell price.
type Item struct {
	ID        ItemID
	Name      string
	SellPrice float64
}

// Upgrade describes a one-time gold purchase. A tool upgrade carries a
// Skill and a SpeedBonus (fraction of base duration removed; tiers
// supersede, they do not stack). A bank upgrade carries BankSlots.
// Requires names the previous tier, if any.
type Upgrade struct {
	ID         UpgradeID
	Name       string
	Cost       float64
	Skill      SkillID
	SpeedBonus float64
	BankSlots  int
	Requires   UpgradeID
}

// Globals holds world constants shared by every action.
type Globals struct {
	MaxHealth     float64
	RespawnTicks  int64
	BaseBankSlots int
	LevelCap      int
}
