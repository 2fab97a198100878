package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"focuspulse/internal/core/model"
	"focuspulse/internal/core/planner"
	"focuspulse/internal/ui/tray"

	"github.com/spf13/cobra"
)

var (
	planTag         string
	planTitle       string
	planEnergy      int
	planDistraction int

	taskTag         string
	taskEnergy      int
	taskDistraction int
)

var planCmd = &cobra.Command{
	Use:   "plan [task-id]",
	Short: "Suggest a plan for a saved task, or for an ad-hoc one described by flags",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			if _, ok := app.coordinator.Task(args[0]); !ok {
				return fmt.Errorf("unknown task %q", args[0])
			}
			printPlan(cmd.OutOrStdout(), app.coordinator.PlanFor(args[0]))
			return nil
		}

		state := app.coordinator.State()
		sliders := state.Sliders
		if cmd.Flags().Changed("energy") {
			sliders.Energy = planEnergy
		}
		if cmd.Flags().Changed("distraction") {
			sliders.Distraction = planDistraction
		}
		var task *model.Task
		if cmd.Flags().Changed("tag") || planTitle != "" {
			task = &model.Task{Title: planTitle, Tag: model.ParseTag(planTag)}
		}
		history := state.History()
		printPlan(cmd.OutOrStdout(), planner.Suggest(task, sliders, &history))
		return nil
	},
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task := app.coordinator.AddTask(strings.Join(args, " "), model.ParseTag(taskTag), taskEnergy, taskDistraction)
		fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", task.ID, task.Tag)
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks := app.coordinator.Tasks()
		if len(tasks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no tasks")
			return nil
		}
		writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "ID\tTAG\tENERGY\tDISTRACTION\tTITLE")
		for _, task := range tasks {
			fmt.Fprintf(writer, "%s\t%s\t%d\t%d\t%s\n", task.ID, task.Tag, task.Energy, task.Distraction, task.Title)
		}
		return writer.Flush()
	},
}

var taskRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !app.coordinator.DeleteTask(args[0]) {
			return fmt.Errorf("unknown task %q", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

var slidersCmd = &cobra.Command{
	Use:   "sliders [energy distraction]",
	Short: "Show or set how energetic and distracted you feel (1-5)",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected no arguments or exactly two, got %d", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		sliders := app.coordinator.State().Sliders
		if len(args) == 2 {
			energy, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("parse energy: %w", err)
			}
			distraction, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("parse distraction: %w", err)
			}
			sliders = app.coordinator.SetSliders(energy, distraction)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "energy %d, distraction %d\n", sliders.Energy, sliders.Distraction)
		return nil
	},
}

var intentCmd = &cobra.Command{
	Use:   "intent [text]",
	Short: "Show or set what this session is for",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			app.coordinator.SetIntent(strings.Join(args, " "))
		}
		intent := app.coordinator.State().Intent
		if intent == "" {
			intent = "(none)"
		}
		fmt.Fprintln(cmd.OutOrStdout(), intent)
		return nil
	},
}

var themeCmd = &cobra.Command{
	Use:       "theme [system|light|dark]",
	Short:     "Show or set the theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"system", "light", "dark"},
	RunE: func(cmd *cobra.Command, args []string) error {
		theme := app.coordinator.State().Settings.Theme
		if len(args) == 1 {
			theme = app.coordinator.SetTheme(args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme)
		return nil
	},
}

var soundCmd = &cobra.Command{
	Use:       "sound [on|off]",
	Short:     "Show or toggle feedback cues",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			on, err := parseSwitch(args[0])
			if err != nil {
				return err
			}
			app.coordinator.SetSound(on)
		}
		if app.coordinator.State().Settings.Sound {
			fmt.Fprintln(cmd.OutOrStdout(), "on")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "off")
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show points, streak and pulse totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats := app.coordinator.State().Stats
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "points:       %d\n", stats.Points)
		fmt.Fprintf(out, "streak:       %d\n", stats.Streak)
		fmt.Fprintf(out, "total pulses: %d\n", stats.TotalPulses)
		if stats.LastActiveDay != "" {
			fmt.Fprintf(out, "last active:  %s\n", stats.LastActiveDay)
		}
		if last := stats.LastSession; last != nil {
			fmt.Fprintf(out, "last session: %d %s pulses\n", last.CompletedPulses, last.Tag)
		}
		fmt.Fprintf(out, "data dir:     %s\n", app.store.Dir())
		return nil
	},
}

func init() {
	planCmd.Flags().StringVar(&planTag, "tag", string(model.TagGeneric), "task tag: coding, writing, study, admin, chores, generic")
	planCmd.Flags().StringVar(&planTitle, "title", "", "task title")
	planCmd.Flags().IntVar(&planEnergy, "energy", model.NeutralRating, "energy 1-5 (default: saved sliders)")
	planCmd.Flags().IntVar(&planDistraction, "distraction", model.NeutralRating, "distraction 1-5 (default: saved sliders)")

	taskAddCmd.Flags().StringVar(&taskTag, "tag", string(model.TagGeneric), "task tag: coding, writing, study, admin, chores, generic")
	taskAddCmd.Flags().IntVar(&taskEnergy, "energy", model.NeutralRating, "energy the task needs, 1-5 (recorded with the task; plans use the current sliders)")
	taskAddCmd.Flags().IntVar(&taskDistraction, "distraction", model.NeutralRating, "how distracting the task is, 1-5 (recorded with the task; plans use the current sliders)")
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskRemoveCmd)
}

func printPlan(out io.Writer, plan model.Plan) {
	fmt.Fprintln(out, plan.Rationale)
	fmt.Fprintf(out, "  focus        %s\n", tray.FormatRemaining(plan.FocusSeconds))
	fmt.Fprintf(out, "  micro-break  %s\n", tray.FormatRemaining(plan.MicroBreakSeconds))
	fmt.Fprintf(out, "  macro-break  %s\n", tray.FormatRemaining(plan.MacroBreakSeconds))
	fmt.Fprintf(out, "  set          %d pulses\n", plan.PulsesPerSet)
}

func parseSwitch(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", value)
	}
}
