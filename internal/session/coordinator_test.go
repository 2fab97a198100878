package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"focuspulse/internal/clock"
	"focuspulse/internal/core/model"
	"focuspulse/internal/core/planner"
	"focuspulse/internal/core/scheduler"
	"focuspulse/internal/feedback"
	"focuspulse/internal/platform"
	"focuspulse/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu    sync.Mutex
	kinds []feedback.Kind
}

func (n *recordingNotifier) Notify(kind feedback.Kind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
}

func (n *recordingNotifier) count(kind feedback.Kind) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, k := range n.kinds {
		if k == kind {
			total++
		}
	}
	return total
}

func (n *recordingNotifier) total() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.kinds)
}

type harness struct {
	coordinator *Coordinator
	scheduler   *scheduler.Scheduler
	clock       *clock.Fake
	notifier    *recordingNotifier
	store       *storage.MemoryStore
}

func newHarness(t *testing.T, store *storage.MemoryStore) *harness {
	t.Helper()
	if store == nil {
		store = storage.NewMemoryStore()
	}
	fake := clock.NewFake(time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))
	sched := scheduler.New(scheduler.Config{TickInterval: time.Second, Clock: fake})
	notifier := &recordingNotifier{}
	coordinator := New(Options{
		Store:     store,
		Scheduler: sched,
		Notifier:  notifier,
		Now:       fake.Now,
	})
	t.Cleanup(func() {
		sched.Close()
		coordinator.Close()
	})
	return &harness{
		coordinator: coordinator,
		scheduler:   sched,
		clock:       fake,
		notifier:    notifier,
		store:       store,
	}
}

func TestNew_Defaults(t *testing.T) {
	h := newHarness(t, nil)

	state := h.coordinator.State()
	assert.Empty(t, state.Tasks)
	assert.Equal(t, model.SliderState{Energy: 3, Distraction: 3}, state.Sliders)
	assert.Nil(t, state.Plan)
	assert.Equal(t, DefaultSettings(), state.Settings)
	assert.Equal(t, Stats{}, state.Stats)

	phase, paused := h.coordinator.Phase()
	assert.Equal(t, model.PhaseIdle, phase)
	assert.False(t, paused)
}

func TestNew_CorruptStateFallsBack(t *testing.T) {
	store := storage.NewMemoryStore()
	store.SetRaw(KeyTasks, []byte("{{{"))
	store.SetRaw(KeyStats, []byte("points: lots"))
	store.SetRaw(KeySettings, []byte("theme: neon\nsound: false\n"))

	h := newHarness(t, store)

	state := h.coordinator.State()
	assert.Empty(t, state.Tasks)
	assert.Equal(t, Stats{}, state.Stats)
	assert.Equal(t, "system", state.Settings.Theme)
	assert.False(t, state.Settings.Sound)
}

func TestTasks_PersistAcrossRestarts(t *testing.T) {
	h := newHarness(t, nil)
	first := h.coordinator.AddTask("Refactor parser", model.TagCoding, 4, 2)
	second := h.coordinator.AddTask("Expenses", model.TagAdmin, 2, 4)

	reloaded := newHarness(t, h.store)
	tasks := reloaded.coordinator.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, first.ID, tasks[0].ID)
	assert.Equal(t, "Expenses", tasks[1].Title)

	assert.True(t, reloaded.coordinator.DeleteTask(first.ID))
	assert.False(t, reloaded.coordinator.DeleteTask(first.ID))

	got, ok := reloaded.coordinator.Task(second.ID)
	require.True(t, ok)
	assert.Equal(t, model.TagAdmin, got.Tag)
	assert.Len(t, storage.GetOr(h.store, KeyTasks, []model.Task{}), 1)
}

func TestPlanFor_UsesTaskSlidersAndHistory(t *testing.T) {
	h := newHarness(t, nil)
	task := h.coordinator.AddTask("Inbox", model.TagAdmin, 3, 3)
	h.coordinator.SetSliders(5, 1)

	plan := h.coordinator.PlanFor(task.ID)

	want := planner.Suggest(&task, model.SliderState{Energy: 5, Distraction: 1}, &model.SessionHistory{})
	assert.Equal(t, want, plan)
	assert.Equal(t, 720, plan.FocusSeconds)

	configured, ok := h.scheduler.Plan()
	require.True(t, ok)
	assert.Equal(t, plan, configured)
	assert.Equal(t, plan, storage.GetOr(h.store, KeyPlan, model.Plan{}))
}

func TestPlanFor_UnknownTaskIsGeneric(t *testing.T) {
	h := newHarness(t, nil)

	plan := h.coordinator.PlanFor("no-such-task")

	assert.Equal(t, model.TagGeneric, plan.Tag)
}

func TestSetSliders_Clamps(t *testing.T) {
	h := newHarness(t, nil)

	sliders := h.coordinator.SetSliders(9, 0)

	assert.Equal(t, model.SliderState{Energy: 5, Distraction: 1}, sliders)
	assert.Equal(t, sliders, storage.GetOr(h.store, KeySliders, model.SliderState{}))
}

func TestStart_WithoutPlanUsesGenericPlan(t *testing.T) {
	h := newHarness(t, nil)

	h.coordinator.Start()

	state := h.scheduler.Snapshot()
	assert.Equal(t, model.PhaseFocus, state.Phase)
	assert.Equal(t, 480, state.TotalSeconds)
	require.NotNil(t, h.coordinator.State().Plan)
}

func TestStart_RestoresPersistedPlan(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Set(KeyPlan, model.Plan{FocusSeconds: 600, MicroBreakSeconds: 30, MacroBreakSeconds: 360, PulsesPerSet: 3, Tag: model.TagStudy})

	h := newHarness(t, store)
	h.coordinator.Start()

	assert.Equal(t, 600, h.scheduler.Snapshot().TotalSeconds)
}

func TestPulseComplete_UpdatesStats(t *testing.T) {
	h := newHarness(t, nil)
	task := h.coordinator.AddTask("Essay", model.TagWriting, 3, 3)
	plan := h.coordinator.PlanFor(task.ID)
	h.coordinator.Start()

	h.coordinator.Skip()
	stats := h.coordinator.State().Stats
	assert.Equal(t, PointsPerSkippedPulse, stats.Points)
	assert.Equal(t, 1, stats.TotalPulses)
	assert.Equal(t, 1, stats.Streak)
	assert.Equal(t, "2026-05-04", stats.LastActiveDay)
	assert.Equal(t, &model.SessionSummary{Tag: model.TagWriting, CompletedPulses: 1}, stats.LastSession)

	h.coordinator.Skip()
	h.clock.Advance(time.Duration(plan.FocusSeconds) * time.Second)

	stats = h.coordinator.State().Stats
	assert.Equal(t, PointsPerSkippedPulse+PointsPerPulse, stats.Points)
	assert.Equal(t, 2, stats.TotalPulses)
	assert.Equal(t, 2, stats.LastSession.CompletedPulses)
	assert.Equal(t, stats, storage.GetOr(h.store, KeyStats, Stats{}))
}

func TestBreakCompletion_DoesNotScore(t *testing.T) {
	h := newHarness(t, nil)
	h.coordinator.Start()
	h.coordinator.Skip()
	points := h.coordinator.State().Stats.Points

	h.coordinator.Skip()

	assert.Equal(t, points, h.coordinator.State().Stats.Points)
	phase, _ := h.coordinator.Phase()
	assert.Equal(t, model.PhaseFocus, phase)
}

func TestHistory_GrowsNextPlan(t *testing.T) {
	h := newHarness(t, nil)
	task := h.coordinator.AddTask("Feature", model.TagCoding, 3, 3)
	first := h.coordinator.PlanFor(task.ID)
	require.Equal(t, 4, first.PulsesPerSet)
	h.coordinator.Start()
	for i := 0; i < 7; i++ {
		h.coordinator.Skip()
	}
	h.coordinator.Reset()

	next := h.coordinator.PlanFor(task.ID)

	assert.Equal(t, 5, next.PulsesPerSet)
}

func TestCues_PhaseStartsAndMinutes(t *testing.T) {
	h := newHarness(t, nil)
	h.coordinator.Start()

	h.clock.Advance(150 * time.Second)
	h.coordinator.Pause()
	h.clock.Advance(10 * time.Minute)
	h.coordinator.Resume()
	h.coordinator.Adjust(45)
	h.clock.Advance(40 * time.Second)
	h.coordinator.Skip()
	h.coordinator.Close()

	assert.Equal(t, 1, h.notifier.count(feedback.KindFocusStart))
	assert.Equal(t, 3, h.notifier.count(feedback.KindMinute))
	assert.Equal(t, 1, h.notifier.count(feedback.KindMicroStart))
}

func TestCues_NegativeAdjustIsNotElapsedFocus(t *testing.T) {
	h := newHarness(t, nil)
	h.coordinator.Start()

	h.clock.Advance(10 * time.Second)
	h.coordinator.Adjust(-60)
	h.clock.Advance(time.Second)
	h.coordinator.Adjust(-120)
	h.clock.Advance(40 * time.Second)
	h.coordinator.Close()

	assert.Zero(t, h.notifier.count(feedback.KindMinute), "51s of focus")
	assert.Equal(t, 1, h.notifier.count(feedback.KindFocusStart))
}

func TestCues_MinuteAfterAdjustCountsClockTimeOnly(t *testing.T) {
	h := newHarness(t, nil)
	h.coordinator.Start()

	h.clock.Advance(30 * time.Second)
	h.coordinator.Adjust(-90)
	h.clock.Advance(29 * time.Second)
	h.coordinator.Adjust(45)
	h.clock.Advance(time.Second)
	h.coordinator.Close()

	assert.Equal(t, 1, h.notifier.count(feedback.KindMinute))
}

func TestCues_MacroAfterFullSet(t *testing.T) {
	h := newHarness(t, nil)
	h.coordinator.PlanFor("")
	h.coordinator.Start()
	for i := 0; i < 5; i++ {
		h.coordinator.Skip()
	}
	h.coordinator.Close()

	assert.Equal(t, 1, h.notifier.count(feedback.KindMacroStart))
	assert.Equal(t, 2, h.notifier.count(feedback.KindMicroStart))
	assert.Equal(t, 3, h.notifier.count(feedback.KindFocusStart))
}

func TestCues_SilentWhenSoundOff(t *testing.T) {
	h := newHarness(t, nil)
	h.coordinator.SetSound(false)

	h.coordinator.Start()
	h.clock.Advance(2 * time.Minute)
	h.coordinator.Skip()
	h.coordinator.Close()

	assert.Zero(t, h.notifier.total())
	assert.False(t, storage.GetOr(h.store, KeySettings, DefaultSettings()).Sound)
}

func TestCues_FailingNotifierDoesNotStopSession(t *testing.T) {
	fake := clock.NewFake(time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))
	sched := scheduler.New(scheduler.Config{Clock: fake})
	defer sched.Close()
	coordinator := New(Options{
		Scheduler: sched,
		Notifier:  feedback.NotifierFunc(func(feedback.Kind) { panic("no audio device") }),
		Now:       fake.Now,
	})

	coordinator.Start()
	coordinator.Skip()
	coordinator.Close()

	assert.Equal(t, model.PhaseMicro, sched.Snapshot().Phase)
	assert.Equal(t, 1, coordinator.State().Stats.TotalPulses)
}

func TestTogglePauseAndReset(t *testing.T) {
	h := newHarness(t, nil)
	h.coordinator.Start()

	h.coordinator.TogglePause()
	_, paused := h.coordinator.Phase()
	assert.True(t, paused)
	assert.True(t, h.scheduler.Snapshot().Paused)

	h.coordinator.TogglePause()
	_, paused = h.coordinator.Phase()
	assert.False(t, paused)

	h.coordinator.Skip()
	h.coordinator.Reset()
	phase, _ := h.coordinator.Phase()
	assert.Equal(t, model.PhaseIdle, phase)
	assert.Equal(t, model.PhaseIdle, h.scheduler.Snapshot().Phase)
	assert.Equal(t, 1, h.coordinator.State().Stats.TotalPulses)
}

func TestPause_WhileIdleStaysUnpaused(t *testing.T) {
	h := newHarness(t, nil)

	h.coordinator.Pause()

	_, paused := h.coordinator.Phase()
	assert.False(t, paused)
}

func TestSettingsAndIntent(t *testing.T) {
	h := newHarness(t, nil)

	assert.Equal(t, "dark", h.coordinator.SetTheme(" Dark "))
	assert.Equal(t, "system", h.coordinator.SetTheme("sepia"))
	h.coordinator.SetIntent("  finish the migration ")

	reloaded := newHarness(t, h.store)
	state := reloaded.coordinator.State()
	assert.Equal(t, "system", state.Settings.Theme)
	assert.Equal(t, "finish the migration", state.Intent)
}

func TestWithoutScheduler(t *testing.T) {
	coordinator := New(Options{})

	assert.NotPanics(t, func() {
		coordinator.Start()
		coordinator.Pause()
		coordinator.Resume()
		coordinator.Skip()
		coordinator.Adjust(30)
		coordinator.Reset()
		coordinator.PlanFor("")
	})
}

type idleStub struct {
	calls atomic.Int32
	idle  time.Duration
	err   error
}

func (stub *idleStub) IdleDuration() (time.Duration, error) {
	stub.calls.Add(1)
	return stub.idle, stub.err
}

func TestWatchIdle_PausesFocus(t *testing.T) {
	h := newHarness(t, nil)
	h.coordinator.Start()
	stub := &idleStub{idle: 10 * time.Minute}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- h.coordinator.WatchIdle(ctx, stub, 5*time.Minute, 5*time.Millisecond) }()

	assert.Eventually(t, func() bool {
		_, paused := h.coordinator.Phase()
		return paused
	}, time.Second, 5*time.Millisecond)
	assert.True(t, h.scheduler.Snapshot().Paused)

	cancel()
	assert.NoError(t, <-done)
}

func TestPauseFocus_LeavesBreaksRunning(t *testing.T) {
	h := newHarness(t, nil)
	h.coordinator.Start()
	h.coordinator.Skip()
	require.Equal(t, model.PhaseMicro, h.scheduler.Snapshot().Phase)

	assert.False(t, h.coordinator.pauseFocus())
	assert.False(t, h.scheduler.Snapshot().Paused)
	_, paused := h.coordinator.Phase()
	assert.False(t, paused)

	h.coordinator.Skip()
	require.Equal(t, model.PhaseFocus, h.scheduler.Snapshot().Phase)
	assert.True(t, h.coordinator.pauseFocus())
	_, paused = h.coordinator.Phase()
	assert.True(t, paused)
	assert.True(t, h.scheduler.Snapshot().Paused)
}

func TestWatchIdle_IgnoresShortIdleAndBreaks(t *testing.T) {
	h := newHarness(t, nil)
	stub := &idleStub{idle: time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, h.coordinator.WatchIdle(ctx, stub, time.Minute, 5*time.Millisecond))
	assert.Zero(t, stub.calls.Load(), "idle phase never polls")

	h.coordinator.Start()
	ctx, cancel = context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, h.coordinator.WatchIdle(ctx, stub, time.Minute, 5*time.Millisecond))

	assert.Positive(t, stub.calls.Load())
	_, paused := h.coordinator.Phase()
	assert.False(t, paused)
}

func TestWatchIdle_StopsWhenUnsupported(t *testing.T) {
	h := newHarness(t, nil)
	h.coordinator.Start()
	stub := &idleStub{err: platform.ErrIdleUnsupported}

	err := h.coordinator.WatchIdle(context.Background(), stub, time.Minute, time.Millisecond)

	assert.True(t, errors.Is(err, platform.ErrIdleUnsupported))
	assert.ErrorIs(t, h.coordinator.WatchIdle(context.Background(), nil, time.Minute, time.Millisecond), platform.ErrIdleUnsupported)
}

func TestWatchIdle_TransientErrorsContinue(t *testing.T) {
	h := newHarness(t, nil)
	h.coordinator.Start()
	stub := &idleStub{err: errors.New("xprintidle: exit status 1")}
	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	require.NoError(t, h.coordinator.WatchIdle(ctx, stub, time.Minute, 5*time.Millisecond))
	assert.Greater(t, stub.calls.Load(), int32(1))
}
