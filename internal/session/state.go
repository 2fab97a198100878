package session

import (
	"strings"
	"time"

	"focuspulse/internal/core/model"
)

// Persisted keys.
const (
	KeyTasks    = "tasks"
	KeySliders  = "sliders"
	KeyPlan     = "plan"
	KeyStats    = "stats"
	KeySettings = "settings"
	KeyIntent   = "intent"
)

// Points awarded per completed pulse.
const (
	PointsPerPulse        = 10
	PointsPerSkippedPulse = 5
)

const dayLayout = "2006-01-02"

// Themes accepted by SetTheme.
var Themes = []string{"system", "light", "dark"}

// Stats tracks progress across sessions.
type Stats struct {
	Points        int                   `yaml:"points"`
	Streak        int                   `yaml:"streak"`
	LastActiveDay string                `yaml:"last_active_day,omitempty"`
	TotalPulses   int                   `yaml:"total_pulses"`
	LastSession   *model.SessionSummary `yaml:"last_session,omitempty"`
}

// Settings are user preferences.
type Settings struct {
	Theme string `yaml:"theme"`
	Sound bool   `yaml:"sound"`
}

// DefaultSettings returns the settings used before the user changes anything.
func DefaultSettings() Settings {
	return Settings{Theme: "system", Sound: true}
}

// AppState is everything the coordinator owns and persists.
type AppState struct {
	Tasks    []model.Task
	Sliders  model.SliderState
	Plan     *model.Plan
	Stats    Stats
	Settings Settings
	Intent   string
}

func (state AppState) clone() AppState {
	state.Tasks = append([]model.Task(nil), state.Tasks...)
	if state.Plan != nil {
		plan := *state.Plan
		state.Plan = &plan
	}
	if state.Stats.LastSession != nil {
		summary := *state.Stats.LastSession
		state.Stats.LastSession = &summary
	}
	return state
}

// History returns what the planner needs to know about the last session.
func (state AppState) History() model.SessionHistory {
	if state.Stats.LastSession == nil {
		return model.SessionHistory{}
	}
	summary := *state.Stats.LastSession
	return model.SessionHistory{LastSession: &summary}
}

// recordPulse applies one completed pulse to the stats.
func (stats *Stats) recordPulse(skipped bool, tag model.Tag, pulsesDone int, now time.Time) {
	if skipped {
		stats.Points += PointsPerSkippedPulse
	} else {
		stats.Points += PointsPerPulse
	}
	stats.TotalPulses++
	stats.touchDay(now)
	stats.LastSession = &model.SessionSummary{Tag: tag, CompletedPulses: pulsesDone}
}

// touchDay updates the streak: same day keeps it, the following day extends
// it, anything else starts over at 1.
func (stats *Stats) touchDay(now time.Time) {
	today := now.Format(dayLayout)
	switch stats.LastActiveDay {
	case today:
		if stats.Streak == 0 {
			stats.Streak = 1
		}
	case now.AddDate(0, 0, -1).Format(dayLayout):
		stats.Streak++
	default:
		stats.Streak = 1
	}
	stats.LastActiveDay = today
}

func normalizeTheme(theme string) string {
	theme = strings.ToLower(strings.TrimSpace(theme))
	for _, known := range Themes {
		if theme == known {
			return theme
		}
	}
	return Themes[0]
}
