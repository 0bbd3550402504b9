package solver

import (
	"fmt"
	"math"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
	"github.com/eseidel/better-idle-sub000/internal/sim"
)

// NoProducerError reports that no action produces a required item at any
// skill level, so a production chain cannot be completed.
type NoProducerError struct {
	Item catalog.ItemID
	For  catalog.ActionID
}

func (e *NoProducerError) Error() string {
	return fmt.Sprintf("no producer for %s required by %s", e.Item, e.For)
}

// MacroTrace counts what an expansion did. The batched/single split is the
// regression guard for stocking behavior: multi-tier chains must stock in
// batches, not unit by unit.
type MacroTrace struct {
	BatchedStocks int
	SingleStocks  int
	TrainRuns     int
	StockedItems  []StockRequest
}

// Merge folds another trace into this one.
func (t *MacroTrace) Merge(o MacroTrace) {
	t.BatchedStocks += o.BatchedStocks
	t.SingleStocks += o.SingleStocks
	t.TrainRuns += o.TrainRuns
	t.StockedItems = append(t.StockedItems, o.StockedItems...)
}

// MacroResult is one macro expansion: the primitive steps, the projected
// state after them, and the boundary that ended the macro, if any.
type MacroResult struct {
	Steps    []Step
	State    sim.State
	Elapsed  int64
	Boundary Boundary
	Hit      bool
}

// Expander expands macros into primitive steps against projected states.
// An Expander is good for one expansion tree: it carries the recursion
// depth, a shared iteration budget, and the absolute segment clock used
// for horizon math.
type Expander struct {
	p          *Planner
	goal       Goal
	trace      MacroTrace
	clock      int64
	depth      int
	iterations int
}

// NewExpander returns an expander planning toward goal, with the segment
// clock already at start ticks.
func (p *Planner) NewExpander(goal Goal, start int64) *Expander {
	return &Expander{p: p, goal: goal, clock: start}
}

// Trace returns what the expansion did so far.
func (e *Expander) Trace() MacroTrace { return e.trace }

func (e *Expander) spend() error {
	e.iterations++
	if e.iterations > e.p.tune.MacroMaxIterations {
		return fmt.Errorf("macro expansion exceeded %d iterations", e.p.tune.MacroMaxIterations)
	}
	return nil
}

// TrainSkillUntil runs action (or the skill's best xp earner when empty)
// and waits decision by decision until stop, the goal, or any other
// watched boundary fires. Boundaries are checked after every wait, so an
// upgrade becoming affordable mid-macro cuts the macro short. Input
// depletion of the trainer itself is not a stop: the macro restocks and
// keeps going.
func (e *Expander) TrainSkillUntil(s sim.State, skill catalog.SkillID, stop Boundary, action catalog.ActionID) (MacroResult, error) {
	if e.depth >= e.p.tune.MacroMaxDepth {
		return MacroResult{}, fmt.Errorf("macro recursion deeper than %d", e.p.tune.MacroMaxDepth)
	}
	e.depth++
	defer func() { e.depth-- }()
	e.trace.TrainRuns++

	res := MacroResult{State: s}
	if action == "" {
		action = e.bestTrainer(s, skill)
		if action == "" {
			return res, fmt.Errorf("no unlocked action trains %s", skill)
		}
	}
	a, ok := e.p.cat.Action(action)
	if !ok || a.Skill != skill {
		return res, fmt.Errorf("%s does not train %s", action, skill)
	}

	for {
		if err := e.spend(); err != nil {
			return res, err
		}
		if !res.State.ActionUnlocked(a) {
			return res, fmt.Errorf("trainer %s is locked at %s level %d",
				a.ID, a.Skill, res.State.SkillLevel(a.Skill))
		}
		// A consuming trainer restocks its own inputs first.
		if res.State.CompletionsPossible(a) < 1 {
			for _, in := range a.Inputs {
				if res.State.Bank[in.Item] >= float64(in.Quantity) {
					continue
				}
				sub, err := e.EnsureStock(res.State, in.Item, e.p.stockTarget(res.State, a, in), a.ID)
				if err != nil {
					return res, err
				}
				res = res.absorb(sub)
				if sub.Hit {
					return res, nil
				}
			}
		}
		if res.State.Active != a.ID {
			next, err := sim.ApplyInteraction(e.p.cat, res.State, sim.SwitchTo(a.ID))
			if err != nil {
				return res, fmt.Errorf("macro switch: %w", err)
			}
			res.Steps = append(res.Steps, InteractionStep(sim.SwitchTo(a.ID)))
			res.State = next
		}

		c := e.p.EnumerateCandidates(res.State, e.goal)
		watch := watchWithStop(c.Watch, stop)
		if b, ok := e.stopAt(res.State, watch, stop); ok {
			res.Boundary = b
			res.Hit = true
			return res, nil
		}

		d := e.p.NextDecisionDelta(res.State, e.goal, c, e.clock)
		if d.DeadEnd {
			return res, fmt.Errorf("training %s dead-ended: %s", skill, d.ZeroReason)
		}
		if d.Ticks <= 0 {
			return res, fmt.Errorf("training %s stalled with no wait available", skill)
		}
		res.Steps = append(res.Steps, WaitStep(d.Ticks, d.Reason))
		next, _ := sim.Advance(e.p.cat, res.State, d.Ticks)
		res.State = next
		res.Elapsed += d.Ticks
		e.clock += d.Ticks

		if b, ok := e.stopAt(res.State, watch, stop); ok {
			res.Boundary = b
			res.Hit = true
			return res, nil
		}
	}
}

// EnsureStock brings the bank up to target units of item, expanding the
// whole deficit as one batch. A locked producer is handled by recursively
// training its skill; missing producers are a hard error naming the item
// and the consumer that wants it.
func (e *Expander) EnsureStock(s sim.State, item catalog.ItemID, target float64, consumer catalog.ActionID) (MacroResult, error) {
	res := MacroResult{State: s}
	deficit := target - s.Bank[item]
	if deficit <= 0 {
		return res, nil
	}
	if e.depth >= e.p.tune.MacroMaxDepth {
		return res, fmt.Errorf("macro recursion deeper than %d", e.p.tune.MacroMaxDepth)
	}
	e.depth++
	defer func() { e.depth-- }()
	if err := e.spend(); err != nil {
		return res, err
	}

	producers := e.p.cat.Producers(item)
	if len(producers) == 0 {
		return res, &NoProducerError{Item: item, For: consumer}
	}
	producer, unlocked := e.pickProducer(res.State, producers)
	if !unlocked {
		// Train the producing skill up to the producer's unlock first.
		pa, _ := e.p.cat.Action(producer)
		stop := Boundary{Kind: BoundaryUnlock, Skill: pa.Skill, Action: producer}
		sub, err := e.TrainSkillUntil(res.State, pa.Skill, stop, "")
		if err != nil {
			return res, fmt.Errorf("unlocking %s for %s: %w", producer, item, err)
		}
		res = res.absorb(sub)
		if sub.Hit && !sub.Boundary.Same(stop) {
			return res, nil
		}
		res.Hit = false
		if !res.State.ActionUnlocked(pa) {
			return res, fmt.Errorf("training stopped before %s unlocked", producer)
		}
	}

	a, _ := e.p.cat.Action(producer)
	outQty := producedQuantity(a, item)
	if outQty <= 0 {
		return res, &NoProducerError{Item: item, For: consumer}
	}
	success := 1 - a.FailureChance
	completions := math.Ceil(deficit / (outQty * success))

	// Batch the producer's own inputs in one recursive call each.
	for _, in := range a.Inputs {
		need := completions * float64(in.Quantity)
		sub, err := e.EnsureStock(res.State, in.Item, need, a.ID)
		if err != nil {
			return res, err
		}
		res = res.absorb(sub)
		if sub.Hit {
			return res, nil
		}
	}

	if res.State.Active != a.ID {
		next, err := sim.ApplyInteraction(e.p.cat, res.State, sim.SwitchTo(a.ID))
		if err != nil {
			return res, fmt.Errorf("macro switch: %w", err)
		}
		res.Steps = append(res.Steps, InteractionStep(sim.SwitchTo(a.ID)))
		res.State = next
	}

	eff := res.State.EffectiveTicks(e.p.cat, a)
	ticks := int64(math.Ceil(completions * eff))
	if ticks < 1 {
		ticks = 1
	}
	reason := WaitReason{Kind: WaitStock, Item: item, Level: int(math.Ceil(target))}
	res.Steps = append(res.Steps, WaitStep(ticks, reason))
	next, _ := sim.Advance(e.p.cat, res.State, ticks)
	res.State = next
	res.Elapsed += ticks
	e.clock += ticks

	if completions > 1 {
		e.trace.BatchedStocks++
	} else {
		e.trace.SingleStocks++
	}
	e.trace.StockedItems = append(e.trace.StockedItems, StockRequest{Item: item, Quantity: target, Consumer: consumer})

	if b, ok := e.stopAt(res.State, WatchSet{}, Boundary{}); ok {
		res.Boundary = b
		res.Hit = true
	}
	return res, nil
}

// stopAt runs boundary detection for a macro. Input depletion is the one
// boundary a macro swallows, unless it is the explicit stop: the expansion
// restocks instead of replanning.
func (e *Expander) stopAt(s sim.State, watch WatchSet, stop Boundary) (Boundary, bool) {
	b, ok := e.p.DetectBoundary(s, e.goal, watch, e.clock)
	if !ok {
		return Boundary{}, false
	}
	if b.Kind == BoundaryInputsDepleted && !b.Same(stop) {
		return Boundary{}, false
	}
	return b, true
}

// absorb appends a sub-result's steps and adopts its state and clock.
func (r MacroResult) absorb(sub MacroResult) MacroResult {
	r.Steps = append(r.Steps, sub.Steps...)
	r.State = sub.State
	r.Elapsed += sub.Elapsed
	r.Boundary = sub.Boundary
	r.Hit = sub.Hit
	return r
}

// bestTrainer picks the unlocked action with the best xp rate for a skill.
// Consuming trainers count even with a dry bank; stocking is the caller's
// problem.
func (e *Expander) bestTrainer(s sim.State, skill catalog.SkillID) catalog.ActionID {
	best := catalog.ActionID("")
	bestXP := 0.0
	for _, a := range e.p.cat.ActionsForSkill(skill) {
		if !s.ActionUnlocked(a) {
			continue
		}
		r := e.p.potentialRates(s, a)
		if xp := r.SkillXP[skill]; xp > bestXP {
			best, bestXP = a.ID, xp
		}
	}
	return best
}

// pickProducer returns the first unlocked producer, or the lowest-unlock
// producer with unlocked=false when none is available yet.
func (e *Expander) pickProducer(s sim.State, producers []catalog.ActionID) (catalog.ActionID, bool) {
	for _, id := range producers {
		a, ok := e.p.cat.Action(id)
		if !ok {
			continue
		}
		if s.ActionUnlocked(a) {
			return id, true
		}
	}
	return producers[0], false
}

func producedQuantity(a *catalog.Action, item catalog.ItemID) float64 {
	for _, out := range a.Outputs {
		if out.Item == item {
			return float64(out.Quantity)
		}
	}
	for _, d := range a.Drops {
		if d.Item == item {
			return float64(d.Quantity) * d.Probability
		}
	}
	return 0
}

// watchWithStop widens a watch set so the macro's own stop boundary is
// always detected, even outside the enumerator's watch window.
func watchWithStop(w WatchSet, stop Boundary) WatchSet {
	switch stop.Kind {
	case BoundaryUnlock:
		for _, id := range w.LockedActions {
			if id == stop.Action {
				return w
			}
		}
		w.LockedActions = append(append([]catalog.ActionID(nil), w.LockedActions...), stop.Action)
	case BoundaryUpgradeAffordable:
		for _, id := range w.Upgrades {
			if id == stop.Upgrade {
				return w
			}
		}
		w.Upgrades = append(append([]catalog.UpgradeID(nil), w.Upgrades...), stop.Upgrade)
	case BoundaryInventoryPressure:
		w.InventoryFlag = true
	}
	return w
}
