// Package repository defines the data access layer and the sentinel error
// values shared across repositories.  Handlers and services compare against
// these with errors.Is to map failures onto the stable error surface of the
// API without inspecting driver-specific errors themselves.
package repository

import "errors"

// ErrTripNotFound is returned when a trip id does not exist.
var ErrTripNotFound = errors.New("trip not found")

// ErrTripNotBookable is returned when seats are requested on a trip whose
// lifecycle status is not "scheduled".
var ErrTripNotBookable = errors.New("trip not bookable")

// ErrCapacityExceeded is returned when an allocation asks for more seats
// than the trip has remaining.  Callers should surface it so the client can
// offer its extra-vehicle fallback.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrSessionNotFound is returned when a tracking session id does not exist,
// or when no active session exists for a trip.
var ErrSessionNotFound = errors.New("tracking session not found")

// ErrReservationNotFound is returned when a reservation does not exist or
// is not visible to the requesting user.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrNoSamples is returned when a session has no stored position yet.
var ErrNoSamples = errors.New("no position samples")

// ErrContention signals a transient storage conflict (deadlock or lock wait
// timeout) during the atomic allocation step.  The allocator retries these
// a bounded number of times; they are never surfaced to callers.
var ErrContention = errors.New("storage contention")
