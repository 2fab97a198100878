package main

import (
	"context"
	"fmt"
	"sync"

	"focuspulse/internal/config"
	"focuspulse/internal/core/model"
	"focuspulse/internal/feedback"
	"focuspulse/internal/platform"
	"focuspulse/internal/session"
	"focuspulse/internal/ui/preferences"
	"focuspulse/internal/ui/tray"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/cobra"
)

const appID = "io.focuspulse.app"

var fyneApp fyne.App

var trayCmd = &cobra.Command{
	Use:   "tray [task-id]",
	Short: "Run the session from the desktop system tray",
	Args:  cobra.MaximumNArgs(1),
	// The tray posts cues as desktop notifications, so the application is
	// wired with a notifier bound to the fyne app.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		fyneApp = fyneapp.NewWithID(appID)
		var err error
		app, err = newApplication(configFile, verbose, feedback.Multi{
			feedback.NewBell(cmd.ErrOrStderr()),
			tray.NewDesktopNotifier(fyneApp),
		})
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		desktopApp, ok := fyneApp.(desktop.App)
		if !ok {
			return fmt.Errorf("system tray unsupported on this platform")
		}

		lock, err := platform.AcquireSessionLock(config.AppName)
		if err != nil {
			return err
		}
		defer func() { _ = lock.Release() }()

		taskID := ""
		if len(args) == 1 {
			if _, ok := app.coordinator.Task(args[0]); !ok {
				return fmt.Errorf("unknown task %q", args[0])
			}
			taskID = args[0]
		}

		state := app.coordinator.State()
		applyTheme(fyneApp, state.Settings.Theme)

		trayWindow := fyneApp.NewWindow("focuspulse")
		intent := state.Intent
		if intent == "" {
			intent = "focuspulse is running in the system tray."
		}
		trayWindow.SetContent(widget.NewLabel(intent))
		trayWindow.SetCloseIntercept(func() {
			trayWindow.Hide()
		})
		trayWindow.Hide()
		desktopApp.SetSystemTrayWindow(trayWindow)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		var manager *tray.Manager
		prefsWindow := preferences.New(fyneApp, session.Themes, func(values preferences.Values) {
			app.coordinator.SetSliders(values.Energy, values.Distraction)
			app.coordinator.SetIntent(values.Intent)
			applyTheme(fyneApp, app.coordinator.SetTheme(values.Theme))
			app.coordinator.SetSound(values.Sound)
			taskID = values.TaskID
			manager.SetPlan(app.coordinator.PlanFor(taskID))
		})
		refresh := func() {
			snapshot := app.scheduler.Snapshot()
			manager.SetState(snapshot)
			desktopApp.SetSystemTrayIcon(trayIcon(snapshot))
		}
		// Pause and resume emit no scheduler events, so menu actions refresh
		// the tray themselves.
		then := func(action func()) func() {
			return func() {
				action()
				refresh()
			}
		}
		manager = tray.New(desktopApp, tray.Callbacks{
			OnStart:       then(app.coordinator.Start),
			OnTogglePause: then(app.coordinator.TogglePause),
			OnSkip:        then(app.coordinator.Skip),
			OnAdjust: func(deltaSeconds int) {
				app.coordinator.Adjust(deltaSeconds)
				refresh()
			},
			OnReset: then(app.coordinator.Reset),
			OnPreferences: func() {
				current := app.coordinator.State()
				prefsWindow.Update(preferences.Values{
					Energy:      current.Sliders.Energy,
					Distraction: current.Sliders.Distraction,
					Intent:      current.Intent,
					Theme:       current.Settings.Theme,
					Sound:       current.Settings.Sound,
					TaskID:      taskID,
				}, current.Tasks)
				prefsWindow.Show()
			},
			OnQuit: func() {
				cancel()
				fyneApp.Quit()
			},
		})
		manager.SetPlan(app.coordinator.PlanFor(taskID))
		refresh()

		var wg sync.WaitGroup
		events := app.scheduler.Subscribe(16)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range events {
				fyne.Do(refresh)
			}
		}()
		startIdleWatch(ctx, &wg)

		fyneApp.Run()
		cancel()
		app.coordinator.Reset()
		app.scheduler.Close()
		wg.Wait()
		return nil
	},
}

func trayIcon(state model.SchedulerState) fyne.Resource {
	if state.Phase == model.PhaseIdle || state.Paused {
		return theme.MediaPauseIcon()
	}
	if state.Phase.IsBreak() {
		return theme.MediaReplayIcon()
	}
	return theme.MediaPlayIcon()
}

func applyTheme(target fyne.App, name string) {
	switch name {
	case "light":
		target.Settings().SetTheme(theme.LightTheme())
	case "dark":
		target.Settings().SetTheme(theme.DarkTheme())
	default:
		target.Settings().SetTheme(theme.DefaultTheme())
	}
}
