// Package session coordinates one focus session: it owns the application
// state, asks the planner for plans, drives the scheduler and reacts to its
// events with points, streaks, persistence and feedback cues.
package session

import (
	"strings"
	"sync"
	"time"

	"focuspulse/internal/core/model"
	"focuspulse/internal/core/planner"
	"focuspulse/internal/core/scheduler"
	"focuspulse/internal/feedback"
	"focuspulse/internal/storage"

	"go.uber.org/zap"
)

// Scheduler is the part of the phase engine the coordinator drives.
type Scheduler interface {
	AddObserver(scheduler.Observer)
	Configure(model.Plan)
	Plan() (model.Plan, bool)
	StartFocus()
	Pause()
	PauseIn(model.Phase) bool
	Resume()
	Adjust(deltaSeconds int)
	Skip()
	Reset()
}

// Options configures a Coordinator.
type Options struct {
	Store     storage.Store
	Scheduler Scheduler
	Notifier  feedback.Notifier
	Logger    *zap.Logger
	Now       func() time.Time
}

// Coordinator owns the AppState. It registers itself as a scheduler observer,
// so its event handlers run on the scheduler's thread; its own methods never
// hold the state lock while calling into the scheduler.
type Coordinator struct {
	mu        sync.Mutex
	state     AppState
	store     storage.Store
	scheduler Scheduler
	feedback  *feedback.Async
	logger    *zap.Logger
	now       func() time.Time

	phase          model.Phase
	paused         bool
	lastRemaining  int
	focusElapsed   int
	minutesCounted int
}

// New loads the persisted state and attaches the coordinator to the scheduler.
func New(options Options) *Coordinator {
	if options.Store == nil {
		options.Store = storage.NewMemoryStore()
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	coordinator := &Coordinator{
		store:     options.Store,
		scheduler: options.Scheduler,
		feedback:  feedback.NewAsync(options.Notifier, options.Logger),
		logger:    options.Logger.Named("session"),
		now:       options.Now,
		phase:     model.PhaseIdle,
	}
	coordinator.load()
	if coordinator.scheduler != nil {
		coordinator.scheduler.AddObserver(coordinator)
	}
	return coordinator
}

func (coordinator *Coordinator) load() {
	store := coordinator.store
	state := AppState{
		Tasks:    storage.GetOr(store, KeyTasks, []model.Task{}),
		Sliders:  storage.GetOr(store, KeySliders, model.SliderState{}).Resolved(),
		Stats:    storage.GetOr(store, KeyStats, Stats{}),
		Settings: storage.GetOr(store, KeySettings, DefaultSettings()),
		Intent:   storage.GetOr(store, KeyIntent, ""),
	}
	var plan model.Plan
	if store.Get(KeyPlan, &plan) {
		plan = plan.Normalize()
		state.Plan = &plan
	}
	state.Settings.Theme = normalizeTheme(state.Settings.Theme)
	coordinator.state = state
	coordinator.logger.Debug("state loaded",
		zap.Int("tasks", len(state.Tasks)),
		zap.Bool("has_plan", state.Plan != nil),
		zap.Int("points", state.Stats.Points))
}

// Close waits for in-flight feedback cues.
func (coordinator *Coordinator) Close() {
	coordinator.feedback.Wait()
}

// State returns a copy of the application state.
func (coordinator *Coordinator) State() AppState {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	return coordinator.state.clone()
}

// AddTask creates and persists a task.
func (coordinator *Coordinator) AddTask(title string, tag model.Tag, energy, distraction int) model.Task {
	task := model.NewTask(title, tag, energy, distraction, coordinator.now())
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	coordinator.state.Tasks = append(coordinator.state.Tasks, task)
	coordinator.store.Set(KeyTasks, coordinator.state.Tasks)
	return task
}

// DeleteTask removes a task. It reports whether the task existed.
func (coordinator *Coordinator) DeleteTask(id string) bool {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	for index, task := range coordinator.state.Tasks {
		if task.ID == id {
			coordinator.state.Tasks = append(coordinator.state.Tasks[:index:index], coordinator.state.Tasks[index+1:]...)
			coordinator.store.Set(KeyTasks, coordinator.state.Tasks)
			return true
		}
	}
	return false
}

// Tasks returns every task in creation order.
func (coordinator *Coordinator) Tasks() []model.Task {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	return append([]model.Task(nil), coordinator.state.Tasks...)
}

// Task looks a task up by ID.
func (coordinator *Coordinator) Task(id string) (model.Task, bool) {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	return coordinator.findTaskLocked(id)
}

func (coordinator *Coordinator) findTaskLocked(id string) (model.Task, bool) {
	for _, task := range coordinator.state.Tasks {
		if task.ID == id {
			return task, true
		}
	}
	return model.Task{}, false
}

// SetSliders stores the user's energy and distraction, clamped to 1..5.
func (coordinator *Coordinator) SetSliders(energy, distraction int) model.SliderState {
	sliders := model.SliderState{
		Energy:      model.Clamp(energy, model.MinRating, model.MaxRating),
		Distraction: model.Clamp(distraction, model.MinRating, model.MaxRating),
	}
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	coordinator.state.Sliders = sliders
	coordinator.store.Set(KeySliders, sliders)
	return sliders
}

// SetIntent stores the free-text session intent.
func (coordinator *Coordinator) SetIntent(text string) {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	coordinator.state.Intent = strings.TrimSpace(text)
	coordinator.store.Set(KeyIntent, coordinator.state.Intent)
}

// SetTheme stores the theme. Unknown names become "system".
func (coordinator *Coordinator) SetTheme(theme string) string {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	coordinator.state.Settings.Theme = normalizeTheme(theme)
	coordinator.store.Set(KeySettings, coordinator.state.Settings)
	return coordinator.state.Settings.Theme
}

// SetSound turns feedback cues on or off.
func (coordinator *Coordinator) SetSound(on bool) {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	coordinator.state.Settings.Sound = on
	coordinator.store.Set(KeySettings, coordinator.state.Settings)
}

// PlanFor asks the planner for a plan for the task with the given ID (an
// unknown or empty ID plans a generic task), stores it as the current plan
// and hands it to the scheduler.
func (coordinator *Coordinator) PlanFor(taskID string) model.Plan {
	coordinator.mu.Lock()
	var task *model.Task
	if found, ok := coordinator.findTaskLocked(taskID); ok {
		task = &found
	}
	history := coordinator.state.History()
	plan := planner.Suggest(task, coordinator.state.Sliders, &history)
	coordinator.state.Plan = &plan
	coordinator.store.Set(KeyPlan, plan)
	coordinator.mu.Unlock()

	coordinator.logger.Info("plan suggested",
		zap.String("task_id", taskID),
		zap.String("rationale", plan.Rationale))
	if coordinator.scheduler != nil {
		coordinator.scheduler.Configure(plan)
	}
	return plan
}

// Start begins a focus phase. The scheduler gets the current plan first if
// it has none, and a generic plan is suggested if there is no current plan.
func (coordinator *Coordinator) Start() {
	if coordinator.scheduler == nil {
		return
	}
	if _, ok := coordinator.scheduler.Plan(); !ok {
		coordinator.mu.Lock()
		current := coordinator.state.Plan
		coordinator.mu.Unlock()
		if current != nil {
			coordinator.scheduler.Configure(*current)
		} else {
			coordinator.PlanFor("")
		}
	}
	coordinator.scheduler.StartFocus()
}

// Pause pauses the running phase.
func (coordinator *Coordinator) Pause() {
	if coordinator.scheduler == nil {
		return
	}
	coordinator.scheduler.Pause()
	coordinator.mu.Lock()
	if coordinator.phase != model.PhaseIdle {
		coordinator.paused = true
	}
	coordinator.mu.Unlock()
}

// pauseFocus pauses only while a focus phase is running, checked atomically
// by the scheduler. It reports whether it paused.
func (coordinator *Coordinator) pauseFocus() bool {
	if coordinator.scheduler == nil || !coordinator.scheduler.PauseIn(model.PhaseFocus) {
		return false
	}
	coordinator.mu.Lock()
	coordinator.paused = true
	coordinator.mu.Unlock()
	return true
}

// Resume resumes a paused phase.
func (coordinator *Coordinator) Resume() {
	if coordinator.scheduler == nil {
		return
	}
	coordinator.scheduler.Resume()
	coordinator.mu.Lock()
	coordinator.paused = false
	coordinator.mu.Unlock()
}

// TogglePause pauses a running phase or resumes a paused one.
func (coordinator *Coordinator) TogglePause() {
	coordinator.mu.Lock()
	paused := coordinator.paused
	coordinator.mu.Unlock()
	if paused {
		coordinator.Resume()
		return
	}
	coordinator.Pause()
}

// Skip completes the current phase early.
func (coordinator *Coordinator) Skip() {
	if coordinator.scheduler != nil {
		coordinator.scheduler.Skip()
	}
}

// Adjust lengthens or shortens the current phase.
func (coordinator *Coordinator) Adjust(deltaSeconds int) {
	if coordinator.scheduler != nil {
		coordinator.scheduler.Adjust(deltaSeconds)
	}
}

// Reset ends the session. Stats and the current plan are kept.
func (coordinator *Coordinator) Reset() {
	if coordinator.scheduler != nil {
		coordinator.scheduler.Reset()
	}
	coordinator.mu.Lock()
	coordinator.phase = model.PhaseIdle
	coordinator.paused = false
	coordinator.mu.Unlock()
}

// Phase returns the phase last reported by the scheduler and whether it is paused.
func (coordinator *Coordinator) Phase() (model.Phase, bool) {
	coordinator.mu.Lock()
	defer coordinator.mu.Unlock()
	return coordinator.phase, coordinator.paused
}

// HandleEvent implements scheduler.Observer.
func (coordinator *Coordinator) HandleEvent(event scheduler.Event) {
	switch event := event.(type) {
	case scheduler.PhaseStartEvent:
		coordinator.onPhaseStart(event)
	case scheduler.TickEvent:
		coordinator.onTick(event)
	case scheduler.LifecycleEvent:
		coordinator.onLifecycle(event)
	case scheduler.AdjustEvent:
		coordinator.mu.Lock()
		coordinator.lastRemaining = event.RemainingSeconds
		coordinator.mu.Unlock()
	}
}

func (coordinator *Coordinator) onPhaseStart(event scheduler.PhaseStartEvent) {
	coordinator.mu.Lock()
	coordinator.phase = event.Phase
	coordinator.paused = false
	coordinator.lastRemaining = event.TotalSeconds
	coordinator.focusElapsed = 0
	coordinator.minutesCounted = 0
	coordinator.mu.Unlock()

	switch event.Phase {
	case model.PhaseFocus:
		coordinator.cue(feedback.KindFocusStart)
	case model.PhaseMicro:
		coordinator.cue(feedback.KindMicroStart)
	case model.PhaseMacro:
		coordinator.cue(feedback.KindMacroStart)
	}
}

// onTick counts focus seconds from successive remaining values. Adjust events
// rebase lastRemaining, so only clock time between samples is counted.
func (coordinator *Coordinator) onTick(event scheduler.TickEvent) {
	coordinator.mu.Lock()
	if event.Phase != model.PhaseFocus {
		coordinator.lastRemaining = event.RemainingSeconds
		coordinator.mu.Unlock()
		return
	}
	if delta := coordinator.lastRemaining - event.RemainingSeconds; delta > 0 {
		coordinator.focusElapsed += delta
	}
	coordinator.lastRemaining = event.RemainingSeconds
	minutes := coordinator.focusElapsed / 60
	newMinute := minutes > coordinator.minutesCounted
	if newMinute {
		coordinator.minutesCounted = minutes
	}
	coordinator.mu.Unlock()

	if newMinute {
		coordinator.cue(feedback.KindMinute)
	}
}

func (coordinator *Coordinator) onLifecycle(event scheduler.LifecycleEvent) {
	if event.Kind != scheduler.PulseComplete {
		coordinator.logger.Debug("break complete",
			zap.String("kind", string(event.Kind)),
			zap.Bool("skipped", event.Skipped))
		return
	}

	coordinator.mu.Lock()
	tag := model.TagGeneric
	if coordinator.state.Plan != nil {
		tag = coordinator.state.Plan.Tag
	}
	coordinator.state.Stats.recordPulse(event.Skipped, tag, event.PulsesDone, coordinator.now())
	stats := coordinator.state.Stats
	coordinator.store.Set(KeyStats, stats)
	coordinator.mu.Unlock()

	coordinator.logger.Info("pulse complete",
		zap.Int("pulses_done", event.PulsesDone),
		zap.Bool("skipped", event.Skipped),
		zap.Int("points", stats.Points),
		zap.Int("streak", stats.Streak))
}

func (coordinator *Coordinator) cue(kind feedback.Kind) {
	coordinator.mu.Lock()
	sound := coordinator.state.Settings.Sound
	coordinator.mu.Unlock()
	if sound {
		coordinator.feedback.Notify(kind)
	}
}
