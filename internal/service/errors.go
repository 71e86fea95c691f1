// Package service implements the seat allocator and the tracking core
// (sessions, position ingestion, authorized reads, retention purge) on top
// of small store interfaces.  Handlers translate the sentinel errors below
// into the API's stable error codes.
package service

import (
    "errors"
    "fmt"
    "time"
)

// Validation errors: caller-fixable, never retried automatically.
var (
    // ErrInvalidSeatCount is returned when seats_requested is not 1 or 2.
    ErrInvalidSeatCount = errors.New("seats requested must be 1 or 2")

    // ErrMissingPaymentProof is returned when a two-seat allocation carries
    // neither a receipt URL nor a transaction id.  The request is rejected,
    // not silently coerced to one seat.
    ErrMissingPaymentProof = errors.New("payment proof required for two seats")

    // ErrOutOfRange is returned when a coordinate falls outside
    // [-90,90] latitude or [-180,180] longitude.
    ErrOutOfRange = errors.New("coordinates out of range")

    // ErrAccuracyTooLow is returned when a fix reports accuracy worse than
    // the configured threshold.  Low-precision fixes are discarded rather
    // than stored degraded.
    ErrAccuracyTooLow = errors.New("position accuracy too low")

    // ErrInvalidSpeed is returned when a reported speed is negative or
    // implausibly high.
    ErrInvalidSpeed = errors.New("speed outside plausible range")
)

// Authorization errors: terminal, surfaced as-is.
var (
    // ErrNotAssignedDriver is returned when a caller acts on a trip they
    // are not the assigned driver of.
    ErrNotAssignedDriver = errors.New("caller is not the assigned driver")

    // ErrNotAuthorized is returned by the read gateway's privacy boundary
    // and by ingestion when the session belongs to another driver.
    ErrNotAuthorized = errors.New("not authorized")

    // ErrSessionNotActive is returned when a sample arrives for a session
    // that has already ended.
    ErrSessionNotActive = errors.New("session is not active")
)

// RateLimitedError tells an ingesting client it sent too soon after the
// last stored sample.  RetryAfter is how long to back off; the call should
// be resent, not assumed successful.
type RateLimitedError struct {
    RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
    return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// RetryAfterSeconds rounds the hint up to whole seconds for the
// Retry-After header; a sub-second remainder still reports 1.
func (e *RateLimitedError) RetryAfterSeconds() int {
    secs := int(e.RetryAfter / time.Second)
    if e.RetryAfter%time.Second != 0 {
        secs++
    }
    if secs < 1 {
        secs = 1
    }
    return secs
}
