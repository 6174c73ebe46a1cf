// Package system provides the clocks used to stamp a site build.
package system

import "time"

// Clock implements content.Clock using time.Now.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a clock pinned to one instant. It makes rebuilds reproducible when
// the build time is supplied from outside (for example from CI).
type Fixed struct {
	at time.Time
}

// NewFixed returns a clock that always reports at, in UTC.
func NewFixed(at time.Time) Fixed {
	return Fixed{at: at.UTC()}
}

// Now returns the pinned instant.
func (f Fixed) Now() time.Time {
	return f.at
}
