package sim

import (
	"testing"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
)

func TestAdvanceAccruesLinearly(t *testing.T) {
	cat := catalog.Default()
	s := NewState(cat)
	s.Active = "chop_tree"

	ns, deaths := Advance(cat, s, 300)
	if deaths != 0 {
		t.Errorf("deaths = %v, want 0", deaths)
	}
	if ns.Ticks != 300 {
		t.Errorf("ticks = %d, want 300", ns.Ticks)
	}
	if !almost(ns.Bank["logs"], 10) {
		t.Errorf("logs = %v, want 10", ns.Bank["logs"])
	}
	if !almost(ns.Bank["bird_nest"], 300*0.005/30) {
		t.Errorf("bird_nest = %v, want %v", ns.Bank["bird_nest"], 300*0.005/30)
	}
	if !almost(ns.SkillXP[catalog.SkillWoodcutting], 100) {
		t.Errorf("xp = %v, want 100", ns.SkillXP[catalog.SkillWoodcutting])
	}
	if ns.Progress != 0 {
		t.Errorf("progress = %v, want 0", ns.Progress)
	}
	// The input state must be untouched.
	if s.Ticks != 0 || len(s.Bank) != 0 {
		t.Errorf("input state mutated: %+v", s)
	}
}

func TestAdvanceComposes(t *testing.T) {
	cat := catalog.Default()
	s := NewState(cat)
	s.Active = "chop_tree"

	direct, _ := Advance(cat, s, 300)
	step1, _ := Advance(cat, s, 100)
	step2, _ := Advance(cat, step1, 200)

	if step2.Ticks != direct.Ticks {
		t.Errorf("ticks: %d != %d", step2.Ticks, direct.Ticks)
	}
	if !almost(step2.Bank["logs"], direct.Bank["logs"]) {
		t.Errorf("logs: %v != %v", step2.Bank["logs"], direct.Bank["logs"])
	}
	if !almost(step2.SkillXP[catalog.SkillWoodcutting], direct.SkillXP[catalog.SkillWoodcutting]) {
		t.Errorf("xp: %v != %v", step2.SkillXP[catalog.SkillWoodcutting], direct.SkillXP[catalog.SkillWoodcutting])
	}
	if !almost(step2.Progress, direct.Progress) {
		t.Errorf("progress: %v != %v", step2.Progress, direct.Progress)
	}
}

func TestAdvanceProgressWraps(t *testing.T) {
	cat := catalog.Default()
	s := NewState(cat)
	s.Active = "chop_tree"

	ns, _ := Advance(cat, s, 45)
	if !almost(ns.Progress, 15) {
		t.Errorf("progress = %v, want 15", ns.Progress)
	}
	if !almost(ns.Bank["logs"], 1.5) {
		t.Errorf("logs = %v, want 1.5", ns.Bank["logs"])
	}
}

func TestAdvanceStallsAtInputDepletion(t *testing.T) {
	cat := catalog.Default()
	s := NewState(cat)
	s.Active = "smelt_bronze_bar"
	s.Bank["copper_ore"] = 5
	s.Bank["tin_ore"] = 5

	// 0.05 ore per tick: the bank is dry after 100 of the 200 ticks.
	ns, _ := Advance(cat, s, 200)
	if !almost(ns.Bank["bronze_bar"], 5) {
		t.Errorf("bars = %v, want 5", ns.Bank["bronze_bar"])
	}
	if _, ok := ns.Bank["copper_ore"]; ok {
		t.Errorf("copper not depleted: %v", ns.Bank["copper_ore"])
	}
	if !almost(ns.SkillXP[catalog.SkillSmithing], 40) {
		t.Errorf("xp = %v, want 40 (idle half earns nothing)", ns.SkillXP[catalog.SkillSmithing])
	}
	if ns.Ticks != 200 {
		t.Errorf("ticks = %d, want 200 (wall clock still moves)", ns.Ticks)
	}
}

func TestAdvanceDeathCycles(t *testing.T) {
	cat := catalog.Default()
	base := NewState(cat)
	base.SkillXP[catalog.SkillCombat] = catalog.XPForLevel(10)
	base.Active = "fight_cow"

	// Health 100 at 10 damage per 90 ticks: death at 900, respawn 600.
	tests := []struct {
		name       string
		window     int64
		wantDeaths float64
		wantHP     float64
		wantGold   float64
	}{
		{"before first death", 450, 0, 50, 40},
		{"exactly one cycle", 1500, 1, 100, 80},
		{"two full cycles", 3000, 2, 100, 160},
		{"partway into second pool", 2000, 1, 100 - (10.0/90)*500, 80 + (8.0/90)*500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns, deaths := Advance(cat, base, tt.window)
			if deaths != tt.wantDeaths {
				t.Errorf("deaths = %v, want %v", deaths, tt.wantDeaths)
			}
			if !almost(ns.Health, tt.wantHP) {
				t.Errorf("health = %v, want %v", ns.Health, tt.wantHP)
			}
			if !almost(ns.Gold, tt.wantGold) {
				t.Errorf("gold = %v, want %v", ns.Gold, tt.wantGold)
			}
		})
	}
}

func TestAdvanceLosesYieldWhenBankFull(t *testing.T) {
	cat := catalog.Default()
	fillers := []catalog.ItemID{
		"oak_logs", "willow_logs", "raw_shrimp", "raw_sardine", "raw_trout",
		"shrimp", "sardine", "trout", "copper_ore", "tin_ore", "iron_ore", "feathers",
	}

	s := NewState(cat)
	s.Active = "chop_tree"
	for _, item := range fillers {
		s.Bank[item] = 1
	}
	if got := s.BankSlotsUsed(); got != s.BankCapacity(cat) {
		t.Fatalf("setup: %d slots used, want %d", got, s.BankCapacity(cat))
	}

	ns, _ := Advance(cat, s, 300)
	if _, ok := ns.Bank["logs"]; ok {
		t.Errorf("logs banked with no free slot: %v", ns.Bank["logs"])
	}
	if !almost(ns.SkillXP[catalog.SkillWoodcutting], 100) {
		t.Errorf("xp = %v, want 100 (xp accrues even when yield is lost)", ns.SkillXP[catalog.SkillWoodcutting])
	}

	// With logs already stacked the yield keeps accruing.
	s.Bank["logs"] = 2
	delete(s.Bank, "feathers")
	ns, _ = Advance(cat, s, 300)
	if !almost(ns.Bank["logs"], 12) {
		t.Errorf("logs = %v, want 12", ns.Bank["logs"])
	}
}

func TestAdvanceIdleAndZeroWindows(t *testing.T) {
	cat := catalog.Default()
	s := NewState(cat)

	ns, deaths := Advance(cat, s, 500)
	if deaths != 0 || ns.Ticks != 500 {
		t.Errorf("idle advance: deaths %v ticks %d", deaths, ns.Ticks)
	}
	if len(ns.Bank) != 0 || ns.Gold != 0 {
		t.Errorf("idle advance accrued: %+v", ns)
	}

	s.Active = "chop_tree"
	ns, deaths = Advance(cat, s, 0)
	if deaths != 0 || ns.Ticks != 0 || len(ns.Bank) != 0 {
		t.Errorf("zero window changed state: %+v", ns)
	}
}
