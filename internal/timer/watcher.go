// Package timer watches the drawing session for idle steps.
package timer

import (
	"context"
	"fmt"
	"time"

	"github.com/hammamikhairi/ottodraw/internal/domain"
	"github.com/hammamikhairi/ottodraw/internal/logger"
)

// StateSource reports the current session.
type StateSource interface {
	State() domain.SessionState
}

// MessageFunc builds the nudge for a step the user has been on for idle.
type MessageFunc func(st domain.SessionState, idle time.Duration) string

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithWatchInterval sets how often the watcher checks session state.
func WithWatchInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.interval = d }
}

// WithIdleAfter sets how long a step may stay open before a nudge.
func WithIdleAfter(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.idleAfter = d }
}

// WithMessage replaces the default nudge text.
func WithMessage(fn MessageFunc) WatcherOption {
	return func(w *Watcher) { w.message = fn }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) WatcherOption {
	return func(w *Watcher) { w.now = now }
}

// Watcher nudges a user who has sat on one step longer than idleAfter.
// Each step visit gets at most one nudge; moving to another step or
// redrawing starts a new visit.
type Watcher struct {
	source    StateSource
	notifier  domain.Notifier
	log       *logger.Logger
	interval  time.Duration
	idleAfter time.Duration
	message   MessageFunc
	now       func() time.Time

	nudged visit
}

// visit identifies one stay on a step.
type visit struct {
	session string
	step    int
	started time.Time
}

// NewWatcher creates a watcher with the given dependencies.
func NewWatcher(source StateSource, notifier domain.Notifier, log *logger.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		source:    source,
		notifier:  notifier,
		log:       log,
		interval:  15 * time.Second,
		idleAfter: 2 * time.Minute,
		message:   DefaultMessage,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run checks the session every interval until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("watcher started (interval=%s, idle=%s)", w.interval, w.idleAfter)
	for {
		select {
		case <-ctx.Done():
			w.log.Info("watcher stopped")
			return
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}

// Check runs one cycle and reports whether a nudge was sent. Run calls
// it on every tick; it is exported so callers can drive it directly.
func (w *Watcher) Check(ctx context.Context) bool {
	st := w.source.State()
	if st.Phase != domain.PhaseDrawing || st.StepStartedAt.IsZero() {
		return false
	}

	v := visit{session: st.ID, step: st.StepIndex, started: st.StepStartedAt}
	if v == w.nudged {
		return false
	}

	idle := w.now().Sub(st.StepStartedAt)
	if idle < w.idleAfter {
		w.log.Debug("watcher: %s step %d open for %s", st.Animal.Name, st.StepIndex+1, idle.Round(time.Second))
		return false
	}

	w.nudged = v
	msg := w.message(st, idle)
	if msg == "" {
		return false
	}
	if err := w.notifier.Notify(ctx, msg); err != nil {
		w.log.Error("watcher: notify: %v", err)
		return false
	}
	w.log.Info("watcher: nudged on %s step %d after %s", st.Animal.Name, st.StepIndex+1, idle.Round(time.Second))
	return true
}

// DefaultMessage names the step and how long it has been open.
func DefaultMessage(st domain.SessionState, idle time.Duration) string {
	return fmt.Sprintf("Still on step %d of %d of the %s (%s). Say next when you're ready.",
		st.StepIndex+1, st.Animal.StepCount(), st.Animal.Name, roundIdle(idle))
}

func roundIdle(d time.Duration) string {
	if d >= time.Minute {
		return fmt.Sprintf("%d min", int(d.Minutes()))
	}
	return fmt.Sprintf("%d s", int(d.Seconds()))
}
