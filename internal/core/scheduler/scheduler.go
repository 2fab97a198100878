// Package scheduler drives a focus session through focus, micro-break and
// macro-break phases according to a plan.
//
// Timing is sampled from a monotonic clock rather than counted per tick:
// every tick recomputes the remaining time from the last anchor, so late or
// missed ticks catch up instead of drifting.
package scheduler

import (
	"sync"
	"time"

	"focuspulse/internal/clock"
	"focuspulse/internal/core/model"

	"go.uber.org/zap"
)

// Bounds applied to the phase length by Adjust.
const (
	MinAdjustedSeconds = 10
	MaxAdjustedSeconds = 3600
)

// Config contains runtime options for the Scheduler.
type Config struct {
	TickInterval time.Duration
	Clock        clock.Clock
	Logger       *zap.Logger
}

// Scheduler is the phase state machine. All operations are synchronous and
// serialized with the tick callback.
type Scheduler struct {
	mu      sync.Mutex
	options Config
	logger  *zap.Logger

	plan       *model.Plan
	phase      model.Phase
	remaining  int
	total      int
	pulsesDone int
	paused     bool

	// anchor is when remaining was last pinned; anchorRemaining is its value then.
	anchor          time.Time
	anchorRemaining int

	timer      clock.Timer
	generation uint64

	observers []Observer
	events    []chan Event
	closed    bool
}

// New creates an idle Scheduler with no plan.
func New(options Config) *Scheduler {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}

	return &Scheduler{
		options: options,
		logger:  options.Logger.Named("scheduler"),
		phase:   model.PhaseIdle,
	}
}

// AddObserver registers an observer. Observers are called while the
// scheduler is locked.
func (scheduler *Scheduler) AddObserver(observer Observer) {
	if observer == nil {
		return
	}
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	scheduler.observers = append(scheduler.observers, observer)
}

// Subscribe registers a new observer channel. Sends never block: when the
// channel is full the event is dropped for that subscriber.
func (scheduler *Scheduler) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	if scheduler.closed {
		close(ch)
		return ch
	}
	scheduler.events = append(scheduler.events, ch)
	return ch
}

// Close cancels the pending tick and closes subscriber channels.
func (scheduler *Scheduler) Close() {
	scheduler.mu.Lock()
	if scheduler.closed {
		scheduler.mu.Unlock()
		return
	}
	scheduler.closed = true
	scheduler.cancelTickLocked()
	events := scheduler.events
	scheduler.events = nil
	scheduler.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Configure stores the plan used for future phases. The running phase keeps
// its length.
func (scheduler *Scheduler) Configure(plan model.Plan) {
	normalized := plan.Normalize()
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	scheduler.plan = &normalized
	scheduler.logger.Debug("plan configured",
		zap.Int("focus_seconds", normalized.FocusSeconds),
		zap.Int("micro_seconds", normalized.MicroBreakSeconds),
		zap.Int("macro_seconds", normalized.MacroBreakSeconds),
		zap.Int("pulses_per_set", normalized.PulsesPerSet),
		zap.String("tag", string(normalized.Tag)))
}

// Plan returns the configured plan, if any.
func (scheduler *Scheduler) Plan() (model.Plan, bool) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	if scheduler.plan == nil {
		return model.Plan{}, false
	}
	return *scheduler.plan, true
}

// Snapshot returns a copy of the current timing state.
func (scheduler *Scheduler) Snapshot() model.SchedulerState {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return model.SchedulerState{
		Phase:            scheduler.phase,
		RemainingSeconds: scheduler.remaining,
		TotalSeconds:     scheduler.total,
		PulsesDone:       scheduler.pulsesDone,
		Paused:           scheduler.paused,
	}
}

// StartFocus enters a focus phase. Without a plan it does nothing.
func (scheduler *Scheduler) StartFocus() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	scheduler.startFocusLocked(scheduler.options.Clock.Now())
}

// Pause freezes the running phase. Remaining time is left as last sampled.
func (scheduler *Scheduler) Pause() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	scheduler.pauseLocked()
}

// PauseIn pauses only while the scheduler is running the given phase. It
// reports whether it paused.
func (scheduler *Scheduler) PauseIn(phase model.Phase) bool {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	if scheduler.phase != phase {
		return false
	}
	return scheduler.pauseLocked()
}

func (scheduler *Scheduler) pauseLocked() bool {
	if scheduler.phase == model.PhaseIdle || scheduler.paused {
		return false
	}
	scheduler.paused = true
	scheduler.cancelTickLocked()
	scheduler.logger.Debug("paused",
		zap.String("phase", string(scheduler.phase)),
		zap.Int("remaining", scheduler.remaining))
	return true
}

// Resume continues a paused phase. The remaining time becomes the new phase
// length and the clock is re-anchored, so pause cycles never accumulate drift.
// Resume on a running phase is a no-op; its total and anchor stay as they are.
func (scheduler *Scheduler) Resume() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	if scheduler.phase == model.PhaseIdle || !scheduler.paused {
		return
	}
	scheduler.paused = false
	if scheduler.remaining > 0 {
		scheduler.total = scheduler.remaining
	}
	scheduler.anchorLocked(scheduler.options.Clock.Now())
	scheduler.scheduleTickLocked()
	scheduler.logger.Debug("resumed",
		zap.String("phase", string(scheduler.phase)),
		zap.Int("remaining", scheduler.remaining))
}

// Adjust lengthens or shortens the current phase by deltaSeconds. The phase
// length is bounded to [MinAdjustedSeconds, MaxAdjustedSeconds] and the
// remaining time to [0, phase length]. Works while paused. Observers get an
// AdjustEvent instead of a tick.
func (scheduler *Scheduler) Adjust(deltaSeconds int) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	if scheduler.phase == model.PhaseIdle {
		return
	}
	now := scheduler.options.Clock.Now()
	if !scheduler.paused {
		scheduler.sampleLocked(now)
	}
	scheduler.total = model.Clamp(scheduler.total+deltaSeconds, MinAdjustedSeconds, MaxAdjustedSeconds)
	scheduler.remaining = model.Clamp(scheduler.remaining+deltaSeconds, 0, scheduler.total)
	scheduler.anchorLocked(now)
	scheduler.emitLocked(AdjustEvent{
		Phase:            scheduler.phase,
		DeltaSeconds:     deltaSeconds,
		RemainingSeconds: scheduler.remaining,
		TotalSeconds:     scheduler.total,
		Paused:           scheduler.paused,
		At:               now,
	})
	scheduler.logger.Debug("adjusted",
		zap.Int("delta", deltaSeconds),
		zap.Int("total", scheduler.total),
		zap.Int("remaining", scheduler.remaining))
}

// Skip completes the current phase immediately.
func (scheduler *Scheduler) Skip() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	if scheduler.phase == model.PhaseIdle {
		return
	}
	scheduler.completeLocked(true, scheduler.options.Clock.Now())
}

// Reset returns to idle and clears the pulse count. The plan is kept.
func (scheduler *Scheduler) Reset() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	scheduler.cancelTickLocked()
	scheduler.phase = model.PhaseIdle
	scheduler.remaining = 0
	scheduler.total = 0
	scheduler.pulsesDone = 0
	scheduler.paused = false
	scheduler.anchor = time.Time{}
	scheduler.anchorRemaining = 0
	scheduler.logger.Debug("reset")
}

func (scheduler *Scheduler) tick(generation uint64) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	if generation != scheduler.generation || scheduler.paused || scheduler.phase == model.PhaseIdle {
		return
	}
	scheduler.timer = nil

	now := scheduler.options.Clock.Now()
	scheduler.sampleLocked(now)
	scheduler.emitLocked(TickEvent{
		Phase:            scheduler.phase,
		RemainingSeconds: scheduler.remaining,
		TotalSeconds:     scheduler.total,
		PulsesDone:       scheduler.pulsesDone,
		At:               now,
	})

	if scheduler.remaining == 0 {
		scheduler.completeLocked(false, now)
		return
	}
	scheduler.scheduleTickLocked()
}

func (scheduler *Scheduler) completeLocked(skipped bool, now time.Time) {
	scheduler.cancelTickLocked()
	scheduler.remaining = 0
	finished := scheduler.phase

	if finished == model.PhaseFocus {
		scheduler.pulsesDone++
	}
	scheduler.emitLocked(LifecycleEvent{
		Kind:       completionOf(finished),
		Skipped:    skipped,
		PulsesDone: scheduler.pulsesDone,
		At:         now,
	})
	scheduler.logger.Info("phase complete",
		zap.String("phase", string(finished)),
		zap.Bool("skipped", skipped),
		zap.Int("pulses_done", scheduler.pulsesDone))

	if finished != model.PhaseFocus {
		scheduler.startFocusLocked(now)
		return
	}

	plan := scheduler.plan
	if scheduler.pulsesDone%plan.PulsesPerSet == 0 {
		scheduler.enterPhaseLocked(model.PhaseMacro, plan.MacroBreakSeconds, now)
		return
	}
	scheduler.enterPhaseLocked(model.PhaseMicro, plan.MicroBreakSeconds, now)
}

func (scheduler *Scheduler) startFocusLocked(now time.Time) {
	if scheduler.plan == nil {
		scheduler.logger.Debug("start focus ignored: no plan configured")
		return
	}
	scheduler.enterPhaseLocked(model.PhaseFocus, scheduler.plan.FocusSeconds, now)
}

func (scheduler *Scheduler) enterPhaseLocked(phase model.Phase, seconds int, now time.Time) {
	scheduler.cancelTickLocked()
	scheduler.phase = phase
	scheduler.total = seconds
	scheduler.remaining = seconds
	scheduler.paused = false
	scheduler.anchorLocked(now)

	scheduler.emitLocked(PhaseStartEvent{
		Phase:        phase,
		TotalSeconds: seconds,
		PulsesDone:   scheduler.pulsesDone,
		At:           now,
	})
	scheduler.scheduleTickLocked()
}

func (scheduler *Scheduler) anchorLocked(now time.Time) {
	scheduler.anchor = now
	scheduler.anchorRemaining = scheduler.remaining
}

// sampleLocked recomputes remaining from the anchor. Only the lower bound is
// enforced.
func (scheduler *Scheduler) sampleLocked(now time.Time) {
	elapsed := int(now.Sub(scheduler.anchor) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := scheduler.anchorRemaining - elapsed
	if remaining < 0 {
		remaining = 0
	}
	scheduler.remaining = remaining
}

func (scheduler *Scheduler) scheduleTickLocked() {
	if scheduler.closed {
		return
	}
	scheduler.cancelTickLocked()
	generation := scheduler.generation
	scheduler.timer = scheduler.options.Clock.AfterFunc(scheduler.options.TickInterval, func() {
		scheduler.tick(generation)
	})
}

// cancelTickLocked stops the pending tick and invalidates any callback that
// already fired but has not acquired the lock yet.
func (scheduler *Scheduler) cancelTickLocked() {
	scheduler.generation++
	if scheduler.timer != nil {
		scheduler.timer.Stop()
		scheduler.timer = nil
	}
}

func (scheduler *Scheduler) emitLocked(event Event) {
	for _, observer := range scheduler.observers {
		observer.HandleEvent(event)
	}
	for _, ch := range scheduler.events {
		select {
		case ch <- event:
		default:
		}
	}
}
