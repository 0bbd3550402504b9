package solver

import (
	"container/heap"
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
	"github.com/eseidel/better-idle-sub000/internal/sim"
)

// Options configures one solve call.
type Options struct {
	// MaxExpandedNodes caps the search size. Zero means the tuning default.
	MaxExpandedNodes int
	// CollectProfile attaches search statistics to the result.
	CollectProfile bool
}

// SolverFailure explains a search that ended without a plan. It is a
// result, not a panic: unreachable goals are an expected outcome.
type SolverFailure struct {
	Reason        string
	ExpandedNodes int
	EnqueuedNodes int
	BestValue     float64
}

func (f *SolverFailure) Error() string { return f.Reason }

// Result is the outcome of a solve. Failure nil means success; a success
// with an empty plan means the goal already held.
type Result struct {
	Plan    Plan
	State   sim.State
	Elapsed int64
	Profile *Profile
	Failure *SolverFailure
}

// Success reports whether the search produced a plan.
func (r Result) Success() bool { return r.Failure == nil }

// node is one search position: a projected state and the planner time it
// was reached at. steps holds the steps that led here from the parent.
type node struct {
	state    sim.State
	elapsed  int64
	parent   *node
	steps    []Step
	priority float64
	sequence int64
}

// nodeHeap implements heap.Interface ordered by (priority, elapsed,
// sequence) so identical inputs always pop in the same order.
type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	if h[i].elapsed != h[j].elapsed {
		return h[i].elapsed < h[j].elapsed
	}
	return h[i].sequence < h[j].sequence
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(*node)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

// frontier wraps the heap with a per-search sequence counter. The counter
// is local, not global, so repeated solves are bit-for-bit repeatable.
type frontier struct {
	h   nodeHeap
	seq int64
}

func newFrontier() *frontier {
	f := &frontier{h: make(nodeHeap, 0, 64)}
	heap.Init(&f.h)
	return f
}

func (f *frontier) push(n *node) {
	f.seq++
	n.sequence = f.seq
	heap.Push(&f.h, n)
}

func (f *frontier) pop() *node  { return heap.Pop(&f.h).(*node) }
func (f *frontier) empty() bool { return len(f.h) == 0 }

// Solve runs best-first search from s toward goal over expected-value
// projections. Every advancement uses the rate estimator, never a random
// source, so the resulting plan is a pure function of its inputs.
func (p *Planner) Solve(ctx context.Context, s sim.State, goal Goal, opts Options) Result {
	budget := opts.MaxExpandedNodes
	if budget <= 0 {
		budget = p.tune.MaxExpandedNodes
	}
	prof := NewProfile()
	started := time.Now()
	defer func() { prof.SolveTime += time.Since(started) }()

	if goal.IsSatisfied(p.cat, s) {
		p.diag.Publish(ctx, Event{Type: EventGoalReached, Detail: goal.Describe()})
		return p.succeeded(prof, opts, NewPlan(nil), s.Clone(), 0)
	}

	f := newFrontier()
	seen := make(map[string]struct{})
	bestRate := 0.0

	root := &node{state: s.Clone()}
	root.priority = p.priorityFor(root, goal, &bestRate, prof)
	seen[p.bucketKey(root.state)] = struct{}{}
	f.push(root)
	prof.EnqueuedNodes++
	prof.FrontierPeak = 1

	var lastMacroErr error
	var deadEnd RateZeroReason
	sawDeadEnd := false

	for !f.empty() {
		if err := ctx.Err(); err != nil {
			return p.failed(prof, opts, fmt.Sprintf("search canceled: %v", err))
		}
		n := f.pop()
		if goal.IsSatisfied(p.cat, n.state) {
			p.diag.Publish(ctx, Event{Type: EventGoalReached, Tick: n.elapsed, Detail: goal.Describe()})
			return p.succeeded(prof, opts, NewPlan(pathSteps(n)), n.state, n.elapsed)
		}
		prof.ExpandedNodes++
		if prof.ExpandedNodes > budget {
			p.diag.Publish(ctx, Event{Type: EventBudgetExhausted, Tick: n.elapsed,
				Detail: fmt.Sprintf("%d nodes", budget)})
			return p.failed(prof, opts,
				fmt.Sprintf("node budget of %d expanded nodes exhausted before reaching %s",
					budget, goal.Describe()))
		}
		p.diag.Publish(ctx, Event{Type: EventNodeExpanded, Tick: n.elapsed,
			Detail: string(n.state.Active)})

		c := p.EnumerateCandidates(n.state, goal)

		for _, id := range c.SwitchTo {
			if id == n.state.Active {
				continue
			}
			next, err := sim.ApplyInteraction(p.cat, n.state, sim.SwitchTo(id))
			if err != nil {
				continue
			}
			p.addChild(ctx, f, seen, prof, goal, &bestRate, n, next, n.elapsed,
				[]Step{InteractionStep(sim.SwitchTo(id))})
		}
		for _, id := range c.BuyUpgrades {
			u, ok := p.cat.Upgrade(id)
			if !ok || n.state.Gold < u.Cost {
				continue // not affordable yet, the wait child gets it there
			}
			next, err := sim.ApplyInteraction(p.cat, n.state, sim.Buy(id))
			if err != nil {
				continue
			}
			p.addChild(ctx, f, seen, prof, goal, &bestRate, n, next, n.elapsed,
				[]Step{InteractionStep(sim.Buy(id))})
		}
		if c.IncludeSellAll {
			if next, err := sim.ApplyInteraction(p.cat, n.state, sim.SellAll()); err == nil {
				p.addChild(ctx, f, seen, prof, goal, &bestRate, n, next, n.elapsed,
					[]Step{InteractionStep(sim.SellAll())})
			}
		}

		for _, req := range c.MacroStock {
			x := p.NewExpander(goal, n.elapsed)
			res, err := x.EnsureStock(n.state, req.Item, req.Quantity, req.Consumer)
			prof.Macro.Merge(x.Trace())
			if err != nil {
				lastMacroErr = err
				continue
			}
			if len(res.Steps) == 0 {
				continue
			}
			name := fmt.Sprintf("stock %d %s for %s",
				int64(math.Ceil(req.Quantity)), req.Item, req.Consumer)
			p.diag.Publish(ctx, Event{Type: EventMacroExpanded, Tick: n.elapsed, Detail: name})
			p.addChild(ctx, f, seen, prof, goal, &bestRate, n, res.State,
				n.elapsed+res.Elapsed, []Step{MacroStep(name, res.Steps)})
		}

		d := p.NextDecisionDelta(n.state, goal, c, n.elapsed)
		if d.DeadEnd {
			sawDeadEnd = true
			deadEnd = d.ZeroReason
			continue
		}
		if d.Ticks > 0 {
			next, _ := sim.Advance(p.cat, n.state, d.Ticks)
			p.addChild(ctx, f, seen, prof, goal, &bestRate, n, next,
				n.elapsed+d.Ticks, []Step{WaitStep(d.Ticks, d.Reason)})
		}
	}

	reason := fmt.Sprintf("search exhausted the reachable state space without satisfying %s",
		goal.Describe())
	if lastMacroErr != nil {
		reason = fmt.Sprintf("%s: %v", reason, lastMacroErr)
	} else if sawDeadEnd {
		reason = fmt.Sprintf("%s: %s", reason, deadEnd)
	}
	return p.failed(prof, opts, reason)
}

func (p *Planner) succeeded(prof *Profile, opts Options, plan Plan, s sim.State, elapsed int64) Result {
	prof.PlannedTicks += plan.TotalTicks
	res := Result{Plan: plan, State: s, Elapsed: elapsed}
	if opts.CollectProfile {
		res.Profile = prof
	}
	return res
}

func (p *Planner) failed(prof *Profile, opts Options, reason string) Result {
	res := Result{Failure: &SolverFailure{
		Reason:        reason,
		ExpandedNodes: prof.ExpandedNodes,
		EnqueuedNodes: prof.EnqueuedNodes,
		BestValue:     prof.BestValue,
	}}
	if opts.CollectProfile {
		res.Profile = prof
	}
	return res
}

// addChild deduplicates by bucket key and enqueues. Goal-satisfying
// children bypass the dedup set so a coarse bucket can never swallow the
// terminal node.
func (p *Planner) addChild(ctx context.Context, f *frontier, seen map[string]struct{},
	prof *Profile, goal Goal, bestRate *float64, parent *node,
	state sim.State, elapsed int64, steps []Step) {

	if !goal.IsSatisfied(p.cat, state) {
		key := p.bucketKey(state)
		if _, dup := seen[key]; dup {
			prof.DedupedNodes++
			p.diag.Publish(ctx, Event{Type: EventNodeDeduped, Tick: elapsed, Detail: key})
			return
		}
		seen[key] = struct{}{}
	}
	child := &node{state: state, elapsed: elapsed, parent: parent, steps: steps}
	child.priority = p.priorityFor(child, goal, bestRate, prof)
	f.push(child)
	prof.EnqueuedNodes++
	if n := len(f.h); n > prof.FrontierPeak {
		prof.FrontierPeak = n
	}
}

// priorityFor orders the frontier by elapsed ticks plus remaining distance
// over the best closing rate seen anywhere in this search. Until any
// positive rate is observed the ordering degrades to plain elapsed time.
func (p *Planner) priorityFor(n *node, goal Goal, bestRate *float64, prof *Profile) float64 {
	r := sim.ExpectedRates(p.cat, n.state)
	prof.Observe(ValuePerTick(p.cat, n.state, r))
	adj := DeathCycleAdjustedRates(p.cat, n.state, r)
	if cr := goal.ClosingRate(p.cat, adj); cr > *bestRate {
		*bestRate = cr
	}
	dist := goal.Distance(p.cat, n.state)
	if dist <= 0 || *bestRate <= 0 {
		return float64(n.elapsed)
	}
	return float64(n.elapsed) + dist / *bestRate
}

// bucketKey digests a state coarsely: skill levels, bucketed gold, active
// action, bucketed bank value and health, owned upgrades. Raw experience
// never enters the key, so negligible numeric drift cannot split buckets.
func (p *Planner) bucketKey(s sim.State) string {
	var b strings.Builder
	b.WriteString("a=")
	b.WriteString(string(s.Active))
	fmt.Fprintf(&b, "|g=%d", int64(s.Gold/p.tune.GoldBucket))
	fmt.Fprintf(&b, "|v=%d", int64(s.BankValue(p.cat)/p.tune.BankValueBucket))
	fmt.Fprintf(&b, "|h=%d", int64(s.Health/p.tune.HealthBucket))

	skills := make([]catalog.SkillID, 0, len(s.SkillXP))
	for id := range s.SkillXP {
		skills = append(skills, id)
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i] < skills[j] })
	for _, id := range skills {
		fmt.Fprintf(&b, "|%s=%d", id, s.SkillLevel(id))
	}

	ups := make([]catalog.UpgradeID, 0, len(s.Upgrades))
	for id, owned := range s.Upgrades {
		if owned {
			ups = append(ups, id)
		}
	}
	sort.Slice(ups, func(i, j int) bool { return ups[i] < ups[j] })
	for _, id := range ups {
		b.WriteString("|u=")
		b.WriteString(string(id))
	}
	return b.String()
}

// pathSteps rebuilds the step sequence from the root to n.
func pathSteps(n *node) []Step {
	var chunks [][]Step
	for cur := n; cur != nil; cur = cur.parent {
		if len(cur.steps) > 0 {
			chunks = append(chunks, cur.steps)
		}
	}
	var steps []Step
	for i := len(chunks) - 1; i >= 0; i-- {
		steps = append(steps, chunks[i]...)
	}
	return steps
}
