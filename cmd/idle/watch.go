package main

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
	"github.com/eseidel/better-idle-sub000/internal/sim"
	"github.com/eseidel/better-idle-sub000/internal/solver"
	"github.com/eseidel/better-idle-sub000/internal/tuning"
)

var (
	watchTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	watchLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	watchEventStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	watchDoneStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	watchFailStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// eventMsg carries one solver event into the view.
type eventMsg solver.Event

// doneMsg carries the finished run out of the solver goroutine.
type doneMsg struct {
	run solver.GoalRun
	err error
}

// tickMsg refreshes the wall clock.
type tickMsg time.Time

const watchTailLen = 8

// watchModel is the live view of a solve-execute-replan run. Node events
// only bump counters; segment-level events also scroll through a short tail.
type watchModel struct {
	goal    string
	started time.Time
	cancel  context.CancelFunc
	events  <-chan solver.Event

	counts   map[solver.EventType]int
	tail     []string
	lastTick int64

	quitting bool
	done     bool
	run      solver.GoalRun
	err      error
}

func newWatchModel(goal string, events <-chan solver.Event, cancel context.CancelFunc) watchModel {
	return watchModel{
		goal:    goal,
		started: time.Now(),
		cancel:  cancel,
		events:  events,
		counts:  make(map[solver.EventType]int),
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), watchTick())
}

func waitForEvent(ch <-chan solver.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(e)
	}
}

func watchTick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m = m.observe(solver.Event(msg))
		return m, waitForEvent(m.events)
	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, watchTick()
	case doneMsg:
		m.done = true
		m.run = msg.run
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			if !m.quitting {
				m.quitting = true
				if m.cancel != nil {
					m.cancel()
				}
			}
			return m, nil
		}
	}
	return m, nil
}

// observe folds one event into the counters and the rolling tail.
func (m watchModel) observe(e solver.Event) watchModel {
	m.counts[e.Type]++
	if e.Tick > m.lastTick {
		m.lastTick = e.Tick
	}
	switch e.Type {
	case solver.EventNodeExpanded, solver.EventNodeDeduped:
		return m
	}
	line := fmt.Sprintf("%-16s %s", e.Type, e.Detail)
	tail := append(m.tail, line)
	if len(tail) > watchTailLen {
		tail = tail[len(tail)-watchTailLen:]
	}
	m.tail = tail
	return m
}

func (m watchModel) View() string {
	var b strings.Builder
	b.WriteString(watchTitleStyle.Render("🎯 "+m.goal) + "\n\n")

	elapsed := time.Since(m.started).Round(time.Second)
	b.WriteString(watchLabelStyle.Render("wall time") + fmt.Sprintf(" %s\n", elapsed))
	b.WriteString(watchLabelStyle.Render("sim ticks") + fmt.Sprintf(" %d (%s)\n", m.lastTick, formatTicks(m.lastTick)))
	b.WriteString(watchLabelStyle.Render("nodes    ") + fmt.Sprintf(" %d expanded, %d deduped\n",
		m.counts[solver.EventNodeExpanded], m.counts[solver.EventNodeDeduped]))
	b.WriteString(watchLabelStyle.Render("segments ") + fmt.Sprintf(" %d solved, %d boundaries, %d replans\n",
		m.counts[solver.EventSegmentSolved], m.counts[solver.EventBoundaryHit], m.counts[solver.EventReplan]))

	if len(m.tail) > 0 {
		b.WriteString("\n")
		for _, line := range m.tail {
			b.WriteString(watchEventStyle.Render(line) + "\n")
		}
	}

	switch {
	case m.quitting && !m.done:
		b.WriteString("\n" + watchFailStyle.Render("cancelling...") + "\n")
	case m.done && m.err != nil:
		b.WriteString("\n" + watchFailStyle.Render("failed: "+m.err.Error()) + "\n")
	case m.done && m.run.Reached:
		b.WriteString("\n" + watchDoneStyle.Render("goal reached") + "\n")
	case m.done:
		b.WriteString("\n" + watchFailStyle.Render("goal not reached") + "\n")
	default:
		b.WriteString("\n" + watchLabelStyle.Render("press q to cancel") + "\n")
	}
	return b.String()
}

// runWatched executes SolveToGoal behind the live view. The view's event
// channel drops when it falls behind; publishers in pubs see every event.
func runWatched(ctx context.Context, cat *catalog.Catalog, tune tuning.Tuning, s sim.State, goal solver.Goal, rng *rand.Rand, pubs []solver.Publisher) (solver.GoalRun, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan solver.Event, 256)
	pubs = append(pubs, solver.PublisherFunc(func(_ context.Context, e solver.Event) {
		select {
		case events <- e:
		default:
		}
	}))

	prog := tea.NewProgram(newWatchModel(goal.Describe(), events, cancel))

	result := make(chan doneMsg, 1)
	go func() {
		p := solver.New(cat, tune, fanOut(pubs))
		run, err := p.SolveToGoal(ctx, s, goal, rng)
		close(events)
		d := doneMsg{run: run, err: err}
		result <- d
		prog.Send(d)
	}()

	final, err := prog.Run()
	if err != nil {
		cancel()
		d := <-result
		if d.err != nil {
			return d.run, d.err
		}
		return d.run, err
	}
	m := final.(watchModel)
	if !m.done {
		cancel()
		d := <-result
		return d.run, d.err
	}
	return m.run, m.err
}
