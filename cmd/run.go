package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"focuspulse/internal/config"
	"focuspulse/internal/core/model"
	"focuspulse/internal/core/scheduler"
	"focuspulse/internal/platform"
	"focuspulse/internal/session"
	"focuspulse/internal/ui/tray"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const runHelp = "commands: p pause/resume · s skip · +N/-N adjust seconds · x end session · r start again · q quit"

var runCmd = &cobra.Command{
	Use:   "run [task-id]",
	Short: "Plan a task and run a focus session in the terminal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		plan := app.coordinator.PlanFor(taskID)
		printPlan(out, plan)
		fmt.Fprintln(out, runHelp)

		var wg sync.WaitGroup
		events := app.scheduler.Subscribe(64)
		wg.Add(1)
		go func() {
			defer wg.Done()
			printEvents(out, events)
		}()
		startIdleWatch(ctx, &wg)

		app.coordinator.Start()
		err = readCommands(ctx, cmd.InOrStdin(), out, app.coordinator)
		stop()
		app.coordinator.Reset()
		// Closing the scheduler closes the subscription and ends printEvents.
		app.scheduler.Close()
		wg.Wait()
		return err
	},
}

// startIdleWatch pauses focus after inactivity when enabled in the config.
func startIdleWatch(ctx context.Context, wg *sync.WaitGroup) {
	if !app.config.Idle.Enabled {
		return
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := app.coordinator.WatchIdle(ctx, platform.NewIdleChecker(),
			app.config.Idle.PauseAfter(), app.config.Idle.CheckInterval())
		if err != nil {
			app.logger.Info("idle watch stopped", zap.Error(err))
		}
	}()
}

func printEvents(out io.Writer, events <-chan scheduler.Event) {
	for event := range events {
		switch event := event.(type) {
		case scheduler.PhaseStartEvent:
			fmt.Fprintf(out, "\n== %s (%s)\n", event.Phase, tray.FormatRemaining(event.TotalSeconds))
		case scheduler.TickEvent:
			fmt.Fprintf(out, "\r%s   ", tray.StatusLine(model.SchedulerState{
				Phase:            event.Phase,
				RemainingSeconds: event.RemainingSeconds,
				TotalSeconds:     event.TotalSeconds,
				PulsesDone:       event.PulsesDone,
			}))
		case scheduler.LifecycleEvent:
			if event.Kind == scheduler.PulseComplete {
				fmt.Fprintf(out, "\npulse %d done\n", event.PulsesDone)
			}
		}
	}
}

// sessionControls is the subset of the coordinator the terminal loop drives.
type sessionControls interface {
	Start()
	TogglePause()
	Skip()
	Adjust(deltaSeconds int)
	Reset()
}

var _ sessionControls = (*session.Coordinator)(nil)

// readCommands executes one command per input line until q, EOF or ctx ends.
func readCommands(ctx context.Context, in io.Reader, out io.Writer, controls sessionControls) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-scanErr:
			return err
		case line := <-lines:
			quit, err := runCommand(strings.TrimSpace(line), controls)
			if err != nil {
				fmt.Fprintln(out, err)
				fmt.Fprintln(out, runHelp)
				continue
			}
			if quit {
				return nil
			}
		}
	}
}

var errUnknownCommand = errors.New("unknown command")

// runCommand applies a single terminal command. It reports whether the loop
// should stop.
func runCommand(line string, controls sessionControls) (bool, error) {
	switch {
	case line == "":
		return false, nil
	case line == "p":
		controls.TogglePause()
	case line == "s":
		controls.Skip()
	case line == "x":
		controls.Reset()
	case line == "r":
		controls.Start()
	case line == "q":
		return true, nil
	case line[0] == '+' || line[0] == '-':
		delta := tray.AdjustStepSeconds
		if len(line) > 1 {
			parsed, err := strconv.Atoi(line[1:])
			if err != nil || parsed <= 0 {
				return false, fmt.Errorf("%w: %q", errUnknownCommand, line)
			}
			delta = parsed
		}
		if line[0] == '-' {
			delta = -delta
		}
		controls.Adjust(delta)
	default:
		return false, fmt.Errorf("%w: %q", errUnknownCommand, line)
	}
	return false, nil
}
