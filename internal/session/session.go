// Package session models an authenticated user session and its token form.
//
// A Session is a plain value: the subject (user id) and the instant it stops
// being valid. All time decisions take an explicit "now" so callers control
// the clock.
package session

import "time"

// Defaults used when configuration does not override them.
const (
	DefaultLifetime      = time.Hour
	DefaultRenewalWindow = 5 * time.Minute
)

type Session struct {
	SubjectID string
	ExpiresAt time.Time
}

// New starts a session for subjectID lasting lifetime from now.
// The expiry is truncated to whole seconds, the precision of the token form.
func New(subjectID string, now time.Time, lifetime time.Duration) Session {
	return Session{
		SubjectID: subjectID,
		ExpiresAt: now.Add(lifetime).Truncate(time.Second),
	}
}

// IsValid reports whether the session has not expired at now.
func (s Session) IsValid(now time.Time) bool {
	return s.ExpiresAt.After(now)
}

// Remaining is the time left before expiry; negative once expired.
func (s Session) Remaining(now time.Time) time.Duration {
	return s.ExpiresAt.Sub(now)
}

// NeedsRenewal reports whether the session is still valid but will expire
// within window.
func (s Session) NeedsRenewal(now time.Time, window time.Duration) bool {
	left := s.Remaining(now)
	return left > 0 && left < window
}

// Renew returns a session for the same subject expiring lifetime from now.
func (s Session) Renew(now time.Time, lifetime time.Duration) Session {
	return New(s.SubjectID, now, lifetime)
}
