package model

// Plan bounds, in seconds unless noted.
const (
	MinFocusSeconds      = 300
	MaxFocusSeconds      = 1080
	MinMicroBreakSeconds = 20
	MaxMicroBreakSeconds = 90
	ShortMacroSeconds    = 360
	LongMacroSeconds     = 480
	MinPulsesPerSet      = 3
	MaxPulsesPerSet      = 6
)

// Plan is the timing plan for one session. It is produced by the planner and
// handed to the scheduler.
type Plan struct {
	FocusSeconds      int    `yaml:"focus_seconds"`
	MicroBreakSeconds int    `yaml:"micro_break_seconds"`
	MacroBreakSeconds int    `yaml:"macro_break_seconds"`
	PulsesPerSet      int    `yaml:"pulses_per_set"`
	Tag               Tag    `yaml:"tag"`
	Rationale         string `yaml:"rationale"`
}

// Normalize returns a copy with every field clamped into its bounds.
// A macro break that is neither of the two allowed lengths snaps to the
// nearer one.
func (plan Plan) Normalize() Plan {
	plan.FocusSeconds = Clamp(plan.FocusSeconds, MinFocusSeconds, MaxFocusSeconds)
	plan.MicroBreakSeconds = Clamp(plan.MicroBreakSeconds, MinMicroBreakSeconds, MaxMicroBreakSeconds)
	if plan.MacroBreakSeconds != ShortMacroSeconds && plan.MacroBreakSeconds != LongMacroSeconds {
		if plan.MacroBreakSeconds <= (ShortMacroSeconds+LongMacroSeconds)/2 {
			plan.MacroBreakSeconds = ShortMacroSeconds
		} else {
			plan.MacroBreakSeconds = LongMacroSeconds
		}
	}
	plan.PulsesPerSet = Clamp(plan.PulsesPerSet, MinPulsesPerSet, MaxPulsesPerSet)
	plan.Tag = ParseTag(string(plan.Tag))
	return plan
}

// Clamp bounds value into [low, high].
func Clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
