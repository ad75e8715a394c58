// Package ratelimit defines the admission-control contract shared by the
// in-memory and Redis-backed limiters.
package ratelimit

import "time"

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is how long a rejected caller should wait. Zero when
	// Allowed.
	RetryAfter time.Duration
	// Reset is when the current window fully elapses.
	Reset time.Time
}

// Limiter admits or rejects a request for the given client key. It is
// applied once per inbound request, before identity resolution or any
// handler logic.
type Limiter interface {
	Allow(key string) Decision
}
