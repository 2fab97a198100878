package scheduler

import (
	"time"

	"focuspulse/internal/core/model"
)

// EventType identifies the kind of scheduler event.
type EventType string

const (
	EventTick       EventType = "tick"
	EventPhaseStart EventType = "phase_start"
	EventLifecycle  EventType = "lifecycle"
	EventAdjust     EventType = "adjust"
)

// LifecycleType identifies which phase just completed.
type LifecycleType string

const (
	PulseComplete LifecycleType = "pulse_complete"
	MicroComplete LifecycleType = "micro_complete"
	MacroComplete LifecycleType = "macro_complete"
)

// Event is one of TickEvent, PhaseStartEvent, LifecycleEvent or AdjustEvent.
type Event interface {
	Type() EventType
	Time() time.Time
}

// TickEvent is emitted on every clock sample while a phase is running.
type TickEvent struct {
	Phase            model.Phase
	RemainingSeconds int
	TotalSeconds     int
	PulsesDone       int
	At               time.Time
}

// PhaseStartEvent is emitted once per phase entry.
type PhaseStartEvent struct {
	Phase        model.Phase
	TotalSeconds int
	PulsesDone   int
	At           time.Time
}

// LifecycleEvent is emitted once per phase completion, before the
// PhaseStartEvent of the phase that follows.
type LifecycleEvent struct {
	Kind       LifecycleType
	Skipped    bool
	PulsesDone int
	At         time.Time
}

// AdjustEvent is emitted when Adjust changes the running phase. The
// remaining time it carries is the new baseline for later ticks.
type AdjustEvent struct {
	Phase            model.Phase
	DeltaSeconds     int
	RemainingSeconds int
	TotalSeconds     int
	Paused           bool
	At               time.Time
}

func (TickEvent) Type() EventType       { return EventTick }
func (PhaseStartEvent) Type() EventType { return EventPhaseStart }
func (LifecycleEvent) Type() EventType  { return EventLifecycle }
func (AdjustEvent) Type() EventType     { return EventAdjust }

func (event TickEvent) Time() time.Time       { return event.At }
func (event PhaseStartEvent) Time() time.Time { return event.At }
func (event LifecycleEvent) Time() time.Time  { return event.At }
func (event AdjustEvent) Time() time.Time     { return event.At }

// Observer receives scheduler events synchronously, in emission order.
// Implementations must not call back into the Scheduler.
type Observer interface {
	HandleEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// HandleEvent calls fn(event).
func (fn ObserverFunc) HandleEvent(event Event) {
	fn(event)
}

func completionOf(phase model.Phase) LifecycleType {
	switch phase {
	case model.PhaseMicro:
		return MicroComplete
	case model.PhaseMacro:
		return MacroComplete
	default:
		return PulseComplete
	}
}
