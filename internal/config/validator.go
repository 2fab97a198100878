package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError is a single invalid field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every invalid field.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, err := range e {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}

// ValidLogLevels returns the accepted log levels.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks every field and returns all problems found.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	if c.TickIntervalMs < 50 || c.TickIntervalMs > 60000 {
		errs = append(errs, ValidationError{
			Field:   "tick_interval_ms",
			Value:   c.TickIntervalMs,
			Message: "must be between 50 and 60000",
		})
	}
	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Log.Level)) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Value:   c.Log.Level,
			Message: "must be one of " + strings.Join(ValidLogLevels(), ", "),
		})
	}
	if c.Idle.Enabled {
		if c.Idle.PauseAfterSeconds < 30 {
			errs = append(errs, ValidationError{
				Field:   "idle.pause_after_seconds",
				Value:   c.Idle.PauseAfterSeconds,
				Message: "must be at least 30",
			})
		}
		if c.Idle.CheckIntervalSeconds < 1 {
			errs = append(errs, ValidationError{
				Field:   "idle.check_interval_seconds",
				Value:   c.Idle.CheckIntervalSeconds,
				Message: "must be positive",
			})
		}
	}
	return errs
}
