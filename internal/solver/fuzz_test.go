package solver

import (
	"math"
	"testing"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
	"github.com/eseidel/better-idle-sub000/internal/sim"
)

// FuzzGoldValueRate fuzzes the value fold with arbitrary flow vectors.
func FuzzGoldValueRate(f *testing.F) {
	f.Add(uint8(10), uint8(4), uint8(0))
	f.Add(uint8(0), uint8(0), uint8(0))
	f.Add(uint8(255), uint8(255), uint8(255))
	f.Add(uint8(1), uint8(200), uint8(30))

	cat := catalog.Default()
	items := cat.Items()
	produced := items[0].ID
	consumed := items[1].ID

	f.Fuzz(func(t *testing.T, gold, out, in uint8) {
		r := sim.Rates{
			Source:      "fight_chicken",
			GoldPerTick: float64(gold) / 100,
			ItemFlow: map[catalog.ItemID]float64{
				produced: float64(out) / 100,
				consumed: -float64(in) / 100,
			},
			SkillXP: map[catalog.SkillID]float64{},
		}
		v := GoldValueRate(cat, r)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("GoldValueRate = %v for gold=%d out=%d in=%d", v, gold, out, in)
		}

		richer := r.Clone()
		richer.ItemFlow[produced] += 0.5
		if got := GoldValueRate(cat, richer); got < v {
			t.Errorf("extra output lowered the value: %v < %v", got, v)
		}

		s := sim.NewState(cat)
		hazardous := r.Clone()
		hazardous.HealthLossPerTick = 0.05
		got := ValuePerTick(cat, s, hazardous)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("ValuePerTick = %v for gold=%d out=%d in=%d", got, gold, out, in)
		}
		if v >= 0 && got > v+1e-9 {
			t.Errorf("death overhead raised the value: %v > %v", got, v)
		}
		if (v > 0) != (got > 0) && v != 0 {
			t.Errorf("death overhead flipped the sign: %v vs %v", got, v)
		}
	})
}

// FuzzPlanCompress fuzzes compression with arbitrary step scripts.
func FuzzPlanCompress(f *testing.F) {
	f.Add([]byte{0, 1, 2, 3, 4, 5})
	f.Add([]byte{1, 1, 1, 1})
	f.Add([]byte{})
	f.Add([]byte{7, 0, 7, 0, 7})
	f.Add([]byte{0, 4, 8, 12, 16})

	actions := []catalog.ActionID{"chop_tree", "fish_shrimp", "mine_copper"}

	f.Fuzz(func(t *testing.T, script []byte) {
		var steps []Step
		for _, b := range script {
			switch b % 4 {
			case 0:
				steps = append(steps, WaitStep(int64(b)+1, WaitReason{Kind: WaitHorizon}))
			case 1:
				steps = append(steps, InteractionStep(sim.SwitchTo(actions[int(b/4)%len(actions)])))
			case 2:
				steps = append(steps, InteractionStep(sim.SellAll()))
			case 3:
				steps = append(steps, InteractionStep(sim.Stop()))
			}
		}
		plan := NewPlan(steps)
		got := plan.Compress()

		if got.TotalTicks != plan.TotalTicks {
			t.Fatalf("TotalTicks = %d, want %d", got.TotalTicks, plan.TotalTicks)
		}
		if len(got.Steps) > len(plan.Steps) {
			t.Errorf("compression grew the plan: %d > %d steps", len(got.Steps), len(plan.Steps))
		}
		if got.InteractionCount > plan.InteractionCount {
			t.Errorf("InteractionCount = %d, want <= %d", got.InteractionCount, plan.InteractionCount)
		}
		for i := 1; i < len(got.Steps); i++ {
			if got.Steps[i].Kind == StepWait && got.Steps[i-1].Kind == StepWait {
				t.Fatalf("consecutive wait steps survive at index %d", i)
			}
		}

		again := got.Compress()
		if len(again.Steps) != len(got.Steps) || again.TotalTicks != got.TotalTicks {
			t.Errorf("compress is not idempotent: %d steps/%d ticks became %d/%d",
				len(got.Steps), got.TotalTicks, len(again.Steps), again.TotalTicks)
		}
	})
}
