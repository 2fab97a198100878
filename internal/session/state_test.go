package session

import (
	"testing"
	"time"

	"focuspulse/internal/core/model"

	"github.com/stretchr/testify/assert"
)

func day(value string) time.Time {
	parsed, err := time.Parse(dayLayout, value)
	if err != nil {
		panic(err)
	}
	return parsed.Add(15 * time.Hour)
}

func TestStats_TouchDay(t *testing.T) {
	tests := []struct {
		name       string
		stats      Stats
		now        string
		wantStreak int
	}{
		{"first ever session", Stats{}, "2026-05-04", 1},
		{"same day keeps streak", Stats{Streak: 3, LastActiveDay: "2026-05-04"}, "2026-05-04", 3},
		{"next day extends", Stats{Streak: 3, LastActiveDay: "2026-05-03"}, "2026-05-04", 4},
		{"across month end", Stats{Streak: 1, LastActiveDay: "2026-04-30"}, "2026-05-01", 2},
		{"gap restarts", Stats{Streak: 9, LastActiveDay: "2026-04-28"}, "2026-05-04", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := tt.stats
			stats.touchDay(day(tt.now))
			assert.Equal(t, tt.wantStreak, stats.Streak)
			assert.Equal(t, tt.now, stats.LastActiveDay)
		})
	}
}

func TestStats_RecordPulse(t *testing.T) {
	var stats Stats

	stats.recordPulse(false, model.TagStudy, 1, day("2026-05-04"))
	stats.recordPulse(true, model.TagStudy, 2, day("2026-05-04"))

	assert.Equal(t, PointsPerPulse+PointsPerSkippedPulse, stats.Points)
	assert.Equal(t, 2, stats.TotalPulses)
	assert.Equal(t, 1, stats.Streak)
	assert.Equal(t, &model.SessionSummary{Tag: model.TagStudy, CompletedPulses: 2}, stats.LastSession)
}

func TestAppState_CloneAndHistory(t *testing.T) {
	plan := model.Plan{FocusSeconds: 300}
	state := AppState{
		Tasks: []model.Task{{ID: "a"}},
		Plan:  &plan,
		Stats: Stats{LastSession: &model.SessionSummary{Tag: model.TagCoding, CompletedPulses: 4}},
	}

	clone := state.clone()
	clone.Tasks[0].ID = "b"
	clone.Plan.FocusSeconds = 900
	clone.Stats.LastSession.CompletedPulses = 0

	assert.Equal(t, "a", state.Tasks[0].ID)
	assert.Equal(t, 300, state.Plan.FocusSeconds)
	assert.Equal(t, 4, state.History().LastSession.CompletedPulses)
	assert.Nil(t, AppState{}.History().LastSession)
}
