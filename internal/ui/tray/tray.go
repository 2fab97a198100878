// Package tray renders the session controls in the desktop system tray.
package tray

import (
	"fmt"

	"focuspulse/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// AdjustStepSeconds is how much the +/- menu items change the phase length.
const AdjustStepSeconds = 60

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnStart       func()
	OnTogglePause func()
	OnSkip        func()
	OnAdjust      func(deltaSeconds int)
	OnReset       func()
	OnPreferences func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app        desktop.App
	callbacks  Callbacks
	statusItem *fyne.MenuItem
	planItem   *fyne.MenuItem
	startItem  *fyne.MenuItem
	pauseItem  *fyne.MenuItem
	skipItem   *fyne.MenuItem
	longer     *fyne.MenuItem
	shorter    *fyne.MenuItem
	resetItem  *fyne.MenuItem
	prefsItem  *fyne.MenuItem
	quitItem   *fyne.MenuItem
	state      model.SchedulerState
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		state:     model.SchedulerState{Phase: model.PhaseIdle},
	}

	manager.statusItem = fyne.NewMenuItem("", nil)
	manager.statusItem.Disabled = true
	manager.planItem = fyne.NewMenuItem("No plan yet", nil)
	manager.planItem.Disabled = true

	manager.startItem = fyne.NewMenuItem("Start focus", func() { call(manager.callbacks.OnStart) })
	manager.pauseItem = fyne.NewMenuItem("Pause", func() { call(manager.callbacks.OnTogglePause) })
	manager.skipItem = fyne.NewMenuItem("Skip phase", func() { call(manager.callbacks.OnSkip) })
	manager.longer = fyne.NewMenuItem(fmt.Sprintf("+%d min", AdjustStepSeconds/60), func() {
		if manager.callbacks.OnAdjust != nil {
			manager.callbacks.OnAdjust(AdjustStepSeconds)
		}
	})
	manager.shorter = fyne.NewMenuItem(fmt.Sprintf("-%d min", AdjustStepSeconds/60), func() {
		if manager.callbacks.OnAdjust != nil {
			manager.callbacks.OnAdjust(-AdjustStepSeconds)
		}
	})
	manager.resetItem = fyne.NewMenuItem("End session", func() { call(manager.callbacks.OnReset) })
	manager.prefsItem = fyne.NewMenuItem("Preferences…", func() { call(manager.callbacks.OnPreferences) })
	manager.quitItem = fyne.NewMenuItem("Quit", func() { call(manager.callbacks.OnQuit) })

	manager.refresh()
	return manager
}

// SetPlan shows the plan rationale.
func (manager *Manager) SetPlan(plan model.Plan) {
	manager.planItem.Label = plan.Rationale
	manager.refresh()
}

// SetState updates the status line and enables the items that apply.
func (manager *Manager) SetState(state model.SchedulerState) {
	manager.state = state
	manager.refresh()
}

func (manager *Manager) refresh() {
	running := manager.state.Phase != model.PhaseIdle
	manager.statusItem.Label = StatusLine(manager.state)
	manager.startItem.Disabled = running
	manager.pauseItem.Disabled = !running
	manager.skipItem.Disabled = !running
	manager.longer.Disabled = !running
	manager.shorter.Disabled = !running
	manager.resetItem.Disabled = !running
	if manager.state.Paused {
		manager.pauseItem.Label = "Resume"
	} else {
		manager.pauseItem.Label = "Pause"
	}

	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("focuspulse",
		manager.statusItem,
		manager.planItem,
		fyne.NewMenuItemSeparator(),
		manager.startItem,
		manager.pauseItem,
		manager.skipItem,
		manager.longer,
		manager.shorter,
		manager.resetItem,
		fyne.NewMenuItemSeparator(),
		manager.prefsItem,
		manager.quitItem,
	))
}

// StatusLine renders a scheduler state for the tray and the terminal.
func StatusLine(state model.SchedulerState) string {
	if state.Phase == model.PhaseIdle {
		return "Idle"
	}
	status := fmt.Sprintf("%s %s · %d pulses", phaseLabel(state.Phase), FormatRemaining(state.RemainingSeconds), state.PulsesDone)
	if state.Paused {
		status += " (paused)"
	}
	return status
}

// FormatRemaining renders seconds as MM:SS.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func phaseLabel(phase model.Phase) string {
	switch phase {
	case model.PhaseFocus:
		return "Focus"
	case model.PhaseMicro:
		return "Micro-break"
	case model.PhaseMacro:
		return "Macro-break"
	default:
		return string(phase)
	}
}

func call(callback func()) {
	if callback != nil {
		callback()
	}
}
