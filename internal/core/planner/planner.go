// Package planner derives a focus plan from a task, the user's sliders and
// the previous session. It is deterministic and has no side effects.
package planner

import (
	"fmt"
	"math"
	"strings"

	"focuspulse/internal/core/model"
)

// RationaleSeparator joins the parts of Plan.Rationale.
const RationaleSeparator = " · "

const (
	deepWorkFocusMinutes = 12
	shallowFocusMinutes  = 7
	defaultFocusMinutes  = 8
	minFocusMinutes      = 5
	maxFocusMinutes      = 18

	baseMicroSeconds      = 40
	microSecondsPerPoint  = 10
	highEnergyThreshold   = 4
	highEnergyMacroMinute = 6
	lowEnergyMacroMinute  = 8

	deepWorkPulsesPerSet = 4
	defaultPulsesPerSet  = 3
)

var phrases = map[model.Tag]string{
	model.TagCoding:  "Deep build",
	model.TagWriting: "Generate words",
	model.TagStudy:   "Active recall",
	model.TagAdmin:   "Quick admin sweep",
	model.TagChores:  "Momentum burst",
}

// Suggest builds a plan. A nil task stands for an untitled generic task and
// a nil history for no previous session. Inputs are defaulted or clamped,
// never rejected.
func Suggest(task *model.Task, sliders model.SliderState, history *model.SessionHistory) model.Plan {
	current := model.Task{Tag: model.TagGeneric}
	if task != nil {
		current = *task
		current.Tag = model.ParseTag(string(task.Tag))
	}
	resolved := sliders.Resolved()

	focusMinutes := baseFocusMinutes(current.Tag)
	focusMinutes += roundHalfAway(float64(resolved.Energy-model.NeutralRating) * 1.5)
	focusMinutes -= roundHalfAway(float64(resolved.Distraction-model.NeutralRating) * 1.0)
	focusMinutes = model.Clamp(focusMinutes, minFocusMinutes, maxFocusMinutes)

	micro := model.Clamp(
		baseMicroSeconds+(resolved.Distraction-model.NeutralRating)*microSecondsPerPoint,
		model.MinMicroBreakSeconds,
		model.MaxMicroBreakSeconds,
	)

	macroMinutes := lowEnergyMacroMinute
	if resolved.Energy >= highEnergyThreshold {
		macroMinutes = highEnergyMacroMinute
	}

	return model.Plan{
		FocusSeconds:      focusMinutes * 60,
		MicroBreakSeconds: micro,
		MacroBreakSeconds: macroMinutes * 60,
		PulsesPerSet:      pulsesPerSet(current.Tag, history),
		Tag:               current.Tag,
		Rationale:         rationale(current, resolved),
	}
}

func baseFocusMinutes(tag model.Tag) int {
	switch tag {
	case model.TagCoding, model.TagWriting, model.TagStudy:
		return deepWorkFocusMinutes
	case model.TagAdmin, model.TagChores:
		return shallowFocusMinutes
	default:
		return defaultFocusMinutes
	}
}

// pulsesPerSet grows the set by one when the last session was the same kind
// of work and filled at least a full base set.
func pulsesPerSet(tag model.Tag, history *model.SessionHistory) int {
	base := defaultPulsesPerSet
	if tag.DeepWork() {
		base = deepWorkPulsesPerSet
	}
	pulses := base
	if history != nil && history.LastSession != nil {
		last := history.LastSession
		if last.Tag == tag && last.CompletedPulses >= base {
			pulses++
		}
	}
	return model.Clamp(pulses, model.MinPulsesPerSet, model.MaxPulsesPerSet)
}

func rationale(task model.Task, sliders model.SliderState) string {
	parts := make([]string, 0, 3)
	if title := strings.TrimSpace(task.Title); title != "" {
		parts = append(parts, title)
	}
	parts = append(parts, fmt.Sprintf("Energy %d%sDistraction %d", sliders.Energy, RationaleSeparator, sliders.Distraction))
	parts = append(parts, Phrase(task.Tag))
	return strings.Join(parts, RationaleSeparator)
}

// Phrase returns the short motivational label for a tag.
func Phrase(tag model.Tag) string {
	if phrase, ok := phrases[tag]; ok {
		return phrase
	}
	return "Momentum pulse"
}

// roundHalfAway rounds to the nearest integer, halves away from zero.
func roundHalfAway(value float64) int {
	return int(math.Round(value))
}
