package solver

import "context"

// EventType tags a diagnostic event emitted while planning or executing.
type EventType string

const (
	EventNodeExpanded    EventType = "node_expanded"
	EventNodeDeduped     EventType = "node_deduped"
	EventSegmentSolved   EventType = "segment_solved"
	EventBoundaryHit     EventType = "boundary_hit"
	EventMacroExpanded   EventType = "macro_expanded"
	EventReplan          EventType = "replan"
	EventBudgetExhausted EventType = "budget_exhausted"
	EventGoalReached     EventType = "goal_reached"
)

// Event is one diagnostic record. Tick is planner time (elapsed ticks from
// the segment start), not wall clock.
type Event struct {
	Type    EventType      `json:"type"`
	Tick    int64          `json:"tick"`
	Detail  string         `json:"detail,omitempty"`
	Payload any            `json:"payload,omitempty"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// Publisher receives diagnostic events. Implementations must be cheap when
// disabled; the planner publishes from its hot loop.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, event Event)

func (f PublisherFunc) Publish(ctx context.Context, event Event) {
	if f == nil {
		return
	}
	f(ctx, event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}

// NopPublisher returns a Publisher that drops everything.
func NopPublisher() Publisher {
	return nopPublisher{}
}

// WithExtra returns a copy of the event with one extra field set.
func (e Event) WithExtra(key string, value any) Event {
	extra := make(map[string]any, len(e.Extra)+1)
	for k, v := range e.Extra {
		extra[k] = v
	}
	extra[key] = value
	e.Extra = extra
	return e
}
