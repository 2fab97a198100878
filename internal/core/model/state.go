package model

// Phase is the scheduler's current mode.
type Phase string

const (
	PhaseIdle  Phase = "idle"
	PhaseFocus Phase = "focus"
	PhaseMicro Phase = "micro"
	PhaseMacro Phase = "macro"
)

// IsBreak reports whether the phase is a micro or macro break.
func (phase Phase) IsBreak() bool {
	return phase == PhaseMicro || phase == PhaseMacro
}

// SchedulerState is a point-in-time copy of the scheduler's timing state.
type SchedulerState struct {
	Phase            Phase
	RemainingSeconds int
	TotalSeconds     int
	PulsesDone       int
	Paused           bool
}

// Progress returns the elapsed fraction of the current phase in [0, 1].
func (state SchedulerState) Progress() float64 {
	if state.TotalSeconds <= 0 {
		return 0
	}
	progress := float64(state.TotalSeconds-state.RemainingSeconds) / float64(state.TotalSeconds)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}
