package solver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
	"github.com/eseidel/better-idle-sub000/internal/sim"
)

// Goal is a planning target. Implementations must be pure: the planner
// calls them on projected states thousands of times per solve. Adding a
// variant means implementing this interface; Search never switches on
// concrete goal types.
type Goal interface {
	// IsSatisfied reports whether the state meets the goal as it stands,
	// without further liquidation or action.
	IsSatisfied(cat *catalog.Catalog, s sim.State) bool
	// Distance returns how far the state is from the goal, in goal units.
	// It must decrease monotonically as the state approaches the goal and
	// reach zero exactly when satisfied (liquidatable wealth counts for a
	// currency goal even before selling).
	Distance(cat *catalog.Catalog, s sim.State) float64
	// ClosingRate returns how fast Distance shrinks per tick under the
	// given rates, in the same units as Distance.
	ClosingRate(cat *catalog.Catalog, r sim.Rates) float64
	// RelevantSkill names the skill the goal is about, if any.
	RelevantSkill() (catalog.SkillID, bool)
	Describe() string
}

// TicksToReach estimates ticks until the goal is satisfied at the given
// rates. ok is false when the rates never get there.
func TicksToReach(cat *catalog.Catalog, g Goal, s sim.State, r sim.Rates) (float64, bool) {
	d := g.Distance(cat, s)
	if d <= 0 {
		return 0, true
	}
	rate := g.ClosingRate(cat, r)
	if rate <= 0 {
		return 0, false
	}
	return d / rate, true
}

// ReachGold targets a gold balance. Bank value counts toward distance, but
// satisfaction is the balance alone: the plan must actually sell.
func ReachGold(amount float64) Goal { return goldGoal{amount: amount} }

type goldGoal struct {
	amount float64
}

func (g goldGoal) IsSatisfied(cat *catalog.Catalog, s sim.State) bool {
	return s.Gold >= g.amount
}

func (g goldGoal) Distance(cat *catalog.Catalog, s sim.State) float64 {
	d := g.amount - s.Gold - s.BankValue(cat)
	if d < 0 {
		return 0
	}
	return d
}

func (g goldGoal) ClosingRate(cat *catalog.Catalog, r sim.Rates) float64 {
	return GoldValueRate(cat, r)
}

func (g goldGoal) RelevantSkill() (catalog.SkillID, bool) { return "", false }

func (g goldGoal) Describe() string {
	return fmt.Sprintf("reach %.0f gold", g.amount)
}

// ReachSkillLevel targets a skill level.
func ReachSkillLevel(skill catalog.SkillID, level int) Goal {
	return skillGoal{skill: skill, level: level}
}

type skillGoal struct {
	skill catalog.SkillID
	level int
}

func (g skillGoal) IsSatisfied(cat *catalog.Catalog, s sim.State) bool {
	return s.SkillLevel(g.skill) >= g.level
}

func (g skillGoal) Distance(cat *catalog.Catalog, s sim.State) float64 {
	d := catalog.XPForLevel(g.level) - s.SkillXP[g.skill]
	if d < 0 {
		return 0
	}
	return d
}

func (g skillGoal) ClosingRate(cat *catalog.Catalog, r sim.Rates) float64 {
	return r.SkillXP[g.skill]
}

func (g skillGoal) RelevantSkill() (catalog.SkillID, bool) { return g.skill, true }

func (g skillGoal) Describe() string {
	return fmt.Sprintf("reach %s level %d", g.skill, g.level)
}

// ParseGoal parses the CLI goal syntax: "gold:5000" or "skill:smithing:30".
func ParseGoal(cat *catalog.Catalog, spec string) (Goal, error) {
	parts := strings.Split(spec, ":")
	switch parts[0] {
	case "gold":
		if len(parts) != 2 {
			return nil, fmt.Errorf("goal %q: want gold:<amount>", spec)
		}
		amount, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || amount <= 0 {
			return nil, fmt.Errorf("goal %q: bad amount", spec)
		}
		return ReachGold(amount), nil
	case "skill":
		if len(parts) != 3 {
			return nil, fmt.Errorf("goal %q: want skill:<name>:<level>", spec)
		}
		skill := catalog.SkillID(parts[1])
		known := false
		for _, id := range catalog.AllSkills() {
			if id == skill {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("goal %q: unknown skill %q", spec, parts[1])
		}
		level, err := strconv.Atoi(parts[2])
		if err != nil || level < 2 || level > cat.Globals().LevelCap {
			return nil, fmt.Errorf("goal %q: level must be 2..%d", spec, cat.Globals().LevelCap)
		}
		return ReachSkillLevel(skill, level), nil
	}
	return nil, fmt.Errorf("goal %q: want gold:<amount> or skill:<name>:<level>", spec)
}
