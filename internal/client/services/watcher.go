package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/dragoncontacts/internal/logging"
)

const DefaultCheckInterval = time.Minute

// Authenticator is the part of AuthService the watcher needs.
type Authenticator interface {
	IsAuthenticated(ctx context.Context) (bool, error)
}

// SessionWatcher periodically re-checks the session, which renews it when it
// is close to expiry, and reports when a live session has expired.
type SessionWatcher struct {
	auth      Authenticator
	interval  time.Duration
	onExpired func()
	log       logging.Logger
}

// NewSessionWatcher builds a watcher. onExpired may be nil.
func NewSessionWatcher(auth Authenticator, interval time.Duration, onExpired func(), log logging.Logger) *SessionWatcher {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	if onExpired == nil {
		onExpired = func() {}
	}
	return &SessionWatcher{
		auth:      auth,
		interval:  interval,
		onExpired: onExpired,
		log:       log.With("component", "session-watcher"),
	}
}

// Run checks once per interval until ctx is cancelled. It always returns nil.
func (w *SessionWatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	active := w.check(ctx, false)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			active = w.check(ctx, active)
		}
	}
}

// check returns the new authentication state given the previous one.
func (w *SessionWatcher) check(ctx context.Context, wasActive bool) bool {
	ok, err := w.auth.IsAuthenticated(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Warn(ctx, "session check failed", "error", err)
		}
		return wasActive
	}
	if wasActive && !ok {
		w.log.Info(ctx, "session expired")
		w.onExpired()
	}
	return ok
}
