package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStep          EventType = "step"
	EventTick          EventType = "tick"
	EventNodeTerminate EventType = "node_terminate"
	EventRunComplete   EventType = "run_complete"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Scenario  string    `json:"scenario"`
}

// StepEvent is emitted after a simulator step was received and published.
type StepEvent struct {
	EventBase
	Step     int           `json:"step"`
	GameTime GameTime      `json:"game_time"`
	Latency  time.Duration `json:"latency"`
}

// TickEvent is emitted after the tree was ticked once.
type TickEvent struct {
	EventBase
	Tick   int     `json:"tick"`
	Status Status  `json:"status"`
	Time   float64 `json:"time"`
}

// NodeEvent is emitted when a node terminates, whether by completing or by interruption.
type NodeEvent struct {
	EventBase
	Node   string  `json:"node"`
	Kind   string  `json:"kind"`
	Status Status  `json:"status"`
	Time   float64 `json:"time"`
}

// LifecycleHooks defines callbacks for run observability.
type LifecycleHooks struct {
	OnStep          func(context.Context, *StepEvent)
	OnTick          func(context.Context, *TickEvent)
	OnNodeTerminate func(context.Context, *NodeEvent)
	OnRunComplete   func(context.Context, *Report)
}

// Merge returns hooks that call h and then o for every event.
func (h LifecycleHooks) Merge(o LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStep:          chain(h.OnStep, o.OnStep),
		OnTick:          chain(h.OnTick, o.OnTick),
		OnNodeTerminate: chain(h.OnNodeTerminate, o.OnNodeTerminate),
		OnRunComplete:   chain(h.OnRunComplete, o.OnRunComplete),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
