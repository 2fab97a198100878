// Package feedback delivers fire-and-forget cues for session events.
package feedback

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Kind names a feedback cue.
type Kind string

const (
	KindFocusStart Kind = "focus_start"
	KindMicroStart Kind = "micro_start"
	KindMacroStart Kind = "macro_start"
	KindMinute     Kind = "minute"
)

// Notifier delivers a cue.
type Notifier interface {
	Notify(kind Kind)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Kind)

// Notify calls fn(kind).
func (fn NotifierFunc) Notify(kind Kind) {
	fn(kind)
}

// Message returns the human-readable text for a cue.
func Message(kind Kind) string {
	switch kind {
	case KindFocusStart:
		return "Focus pulse started"
	case KindMicroStart:
		return "Micro-break: stand up, look away"
	case KindMacroStart:
		return "Set complete: take a long break"
	case KindMinute:
		return "Another minute of focus"
	default:
		return string(kind)
	}
}

// Bell writes a terminal bell followed by the cue message.
type Bell struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewBell returns a Bell writing to writer.
func NewBell(writer io.Writer) *Bell {
	return &Bell{writer: writer}
}

// Notify implements Notifier. Minute cues are silent.
func (bell *Bell) Notify(kind Kind) {
	if kind == KindMinute {
		return
	}
	bell.mu.Lock()
	defer bell.mu.Unlock()
	_, _ = fmt.Fprintf(bell.writer, "\a%s\n", Message(kind))
}

// Log records cues in the structured log.
type Log struct {
	logger *zap.Logger
}

// NewLog returns a notifier that logs each cue at info level.
func NewLog(logger *zap.Logger) Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Log{logger: logger.Named("feedback")}
}

// Notify implements Notifier.
func (notifier Log) Notify(kind Kind) {
	notifier.logger.Info("cue", zap.String("kind", string(kind)))
}

// Multi fans a cue out to every notifier in order.
type Multi []Notifier

// Notify implements Notifier.
func (multi Multi) Notify(kind Kind) {
	for _, notifier := range multi {
		if notifier != nil {
			notifier.Notify(kind)
		}
	}
}

// Async wraps a notifier so each cue runs on its own goroutine. Panics are
// recovered and logged; the caller is never blocked.
type Async struct {
	next   Notifier
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewAsync wraps next.
func NewAsync(next Notifier, logger *zap.Logger) *Async {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Async{next: next, logger: logger.Named("feedback")}
}

// Notify implements Notifier.
func (async *Async) Notify(kind Kind) {
	if async.next == nil {
		return
	}
	async.wg.Add(1)
	go func() {
		defer async.wg.Done()
		defer func() {
			if recovered := recover(); recovered != nil {
				async.logger.Warn("notifier failed",
					zap.String("kind", string(kind)),
					zap.Any("panic", recovered))
			}
		}()
		async.next.Notify(kind)
	}()
}

// Wait blocks until every in-flight cue has finished.
func (async *Async) Wait() {
	async.wg.Wait()
}
