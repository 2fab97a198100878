// Package platform wraps OS-specific facilities: the single-session lock and
// user idle detection.
package platform

import (
	"errors"
	"time"
)

// ErrIdleUnsupported indicates idle detection is not available on this system.
var ErrIdleUnsupported = errors.New("idle detection unsupported")

// IdleChecker reports the duration since the last user input.
type IdleChecker interface {
	IdleDuration() (time.Duration, error)
}

// NewIdleChecker returns the checker for the current OS.
func NewIdleChecker() IdleChecker {
	return newIdleChecker()
}

type unsupportedIdleChecker struct{}

func (unsupportedIdleChecker) IdleDuration() (time.Duration, error) {
	return 0, ErrIdleUnsupported
}
