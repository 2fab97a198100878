package session

import (
	"context"
	"errors"
	"time"

	"focuspulse/internal/core/model"
	"focuspulse/internal/platform"

	"go.uber.org/zap"
)

// WatchIdle polls checker every interval and pauses a running focus phase
// once the user has been inactive for at least after. It returns nil when ctx
// ends, or the checker's error once idle detection turns out to be
// unsupported. Other checker errors are logged and the watch continues.
func (coordinator *Coordinator) WatchIdle(ctx context.Context, checker platform.IdleChecker, after, interval time.Duration) error {
	if checker == nil {
		return platform.ErrIdleUnsupported
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		phase, paused := coordinator.Phase()
		if phase != model.PhaseFocus || paused {
			continue
		}

		idle, err := checker.IdleDuration()
		if err != nil {
			if errors.Is(err, platform.ErrIdleUnsupported) {
				coordinator.logger.Info("idle detection unavailable", zap.Error(err))
				return err
			}
			coordinator.logger.Warn("idle check failed", zap.Error(err))
			continue
		}
		if idle >= after && coordinator.pauseFocus() {
			coordinator.logger.Info("paused focus after inactivity", zap.Duration("idle", idle))
		}
	}
}
