package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDataFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadMinimalDataDir(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "items.json", `[
		{"id": "logs", "name": "Logs", "sell_price": 1}
	]`)
	writeDataFile(t, dir, "actions.json", `[
		{"id": "chop", "name": "Chop", "skill": "woodcutting", "unlock_level": 1,
		 "base_ticks": 30, "xp": 10, "outputs": [{"item": "logs", "quantity": 1}]}
	]`)
	writeDataFile(t, dir, "upgrades.json", `[
		{"id": "axe_iron", "name": "Iron Axe", "cost": 50, "skill": "woodcutting", "speed_bonus": 0.05}
	]`)
	writeDataFile(t, dir, "skill_drops.json", `{}`)
	writeDataFile(t, dir, "globals.json", `{
		"max_health": 100, "respawn_ticks": 600, "base_bank_slots": 12, "level_cap": 99
	}`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	a, ok := c.Action("chop")
	if !ok {
		t.Fatal("loaded catalog missing action chop")
	}
	if a.Skill != SkillWoodcutting || a.BaseTicks != 30 || a.XP != 10 {
		t.Errorf("action loaded wrong: %+v", a)
	}
	if a.MasteryXP != a.XP {
		t.Errorf("MasteryXP default not applied on load: %v", a.MasteryXP)
	}
	if got := c.SellPrice("logs"); got != 1 {
		t.Errorf("SellPrice(logs) = %v, want 1", got)
	}
}

func TestLoadRejectsDanglingReference(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "items.json", `[]`)
	writeDataFile(t, dir, "actions.json", `[
		{"id": "chop", "name": "Chop", "skill": "woodcutting", "base_ticks": 30, "xp": 10,
		 "outputs": [{"item": "logs", "quantity": 1}]}
	]`)
	writeDataFile(t, dir, "upgrades.json", `[]`)
	writeDataFile(t, dir, "skill_drops.json", `{}`)
	writeDataFile(t, dir, "globals.json", `{"max_health": 100, "respawn_ticks": 600, "base_bank_slots": 12, "level_cap": 99}`)

	if _, err := Load(dir); err == nil {
		t.Fatal("Load accepted an action output referencing a missing item")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("Load of empty dir succeeded")
	}
}

// The shipped data directory must stay equivalent to the built-in content.
func TestShippedDataMatchesDefault(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "data"))
	if err != nil {
		t.Fatalf("Load shipped data: %v", err)
	}
	d := Default()
	if got, want := len(c.Actions()), len(d.Actions()); got != want {
		t.Errorf("shipped actions = %d, built-in = %d", got, want)
	}
	if got, want := len(c.Items()), len(d.Items()); got != want {
		t.Errorf("shipped items = %d, built-in = %d", got, want)
	}
	if got, want := len(c.Upgrades()), len(d.Upgrades()); got != want {
		t.Errorf("shipped upgrades = %d, built-in = %d", got, want)
	}
	for _, want := range d.Actions() {
		got, ok := c.Action(want.ID)
		if !ok {
			t.Errorf("shipped data missing action %s", want.ID)
			continue
		}
		if got.BaseTicks != want.BaseTicks || got.XP != want.XP || got.Skill != want.Skill {
			t.Errorf("action %s differs: shipped %+v, built-in %+v", want.ID, got, want)
		}
	}
	if c.Globals() != d.Globals() {
		t.Errorf("globals differ: shipped %+v, built-in %+v", c.Globals(), d.Globals())
	}
}

func TestShippedDataValidatesAgainstSchemas(t *testing.T) {
	dataDir := filepath.Join("..", "..", "data")
	schemaDir := filepath.Join("..", "..", "schemas")
	if err := ValidateDir(dataDir, schemaDir); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}
