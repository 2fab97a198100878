package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tag categorizes a task.
type Tag string

const (
	TagCoding  Tag = "coding"
	TagWriting Tag = "writing"
	TagStudy   Tag = "study"
	TagAdmin   Tag = "admin"
	TagChores  Tag = "chores"
	TagGeneric Tag = "generic"
)

// Tags lists every known tag.
var Tags = []Tag{TagCoding, TagWriting, TagStudy, TagAdmin, TagChores, TagGeneric}

// ParseTag maps free text onto a known tag. Unknown input is generic.
func ParseTag(value string) Tag {
	tag := Tag(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range Tags {
		if tag == known {
			return tag
		}
	}
	return TagGeneric
}

// DeepWork reports whether the tag needs long uninterrupted focus.
func (tag Tag) DeepWork() bool {
	return tag == TagCoding || tag == TagWriting || tag == TagStudy
}

// Rating bounds shared by tasks and sliders.
const (
	MinRating     = 1
	MaxRating     = 5
	NeutralRating = 3
)

// Task is a unit of work the user wants to focus on.
type Task struct {
	ID          string    `yaml:"id"`
	Title       string    `yaml:"title"`
	Tag         Tag       `yaml:"tag"`
	Energy      int       `yaml:"energy"`
	Distraction int       `yaml:"distraction"`
	CreatedAt   time.Time `yaml:"created_at"`
}

// NewTask creates a task with a fresh ID and ratings clamped into range.
func NewTask(title string, tag Tag, energy, distraction int, createdAt time.Time) Task {
	return Task{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(title),
		Tag:         ParseTag(string(tag)),
		Energy:      Clamp(energy, MinRating, MaxRating),
		Distraction: Clamp(distraction, MinRating, MaxRating),
		CreatedAt:   createdAt,
	}
}

// SliderState holds the user's current self-assessment. Zero means unset.
type SliderState struct {
	Energy      int `yaml:"energy"`
	Distraction int `yaml:"distraction"`
}

// Resolved returns the sliders with unset values defaulted and the rest clamped.
func (sliders SliderState) Resolved() SliderState {
	return SliderState{
		Energy:      resolveRating(sliders.Energy),
		Distraction: resolveRating(sliders.Distraction),
	}
}

func resolveRating(value int) int {
	if value == 0 {
		return NeutralRating
	}
	return Clamp(value, MinRating, MaxRating)
}

// SessionSummary describes the most recent session.
type SessionSummary struct {
	Tag             Tag `yaml:"tag"`
	CompletedPulses int `yaml:"completed_pulses"`
}

// SessionHistory is what the planner knows about past sessions.
type SessionHistory struct {
	LastSession *SessionSummary `yaml:"last_session,omitempty"`
}
