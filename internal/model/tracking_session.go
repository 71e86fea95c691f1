package model

import "time"

// Tracking session statuses.  Ended is terminal; a new active session may be
// opened later for the same trip, but never while one is still active.
const (
    SessionActive = "active"
    SessionEnded  = "ended"
)

// TrackingSession is the bounded window during which a driver shares their
// location for a trip.  Starting the session is the consent act, so
// ConsentAt always equals StartedAt and no session exists without consent.
// Sessions are never deleted; ended rows remain for audit.
//
// Fields:
//  ID        – primary key identifier.
//  TripID    – trip being tracked.
//  DriverID  – driver who opened the session.
//  ConsentAt – when the driver consented to sharing.
//  StartedAt – when sharing began (equals ConsentAt).
//  EndedAt   – when sharing stopped, nil while active.
//  Status    – active or ended.
type TrackingSession struct {
    ID        uint64     // driver_tracking_sessions.id
    TripID    uint64     // driver_tracking_sessions.trip_id
    DriverID  uint64     // driver_tracking_sessions.driver_id
    ConsentAt time.Time  // driver_tracking_sessions.consent_at
    StartedAt time.Time  // driver_tracking_sessions.started_at
    EndedAt   *time.Time // driver_tracking_sessions.ended_at (nullable)
    Status    string     // driver_tracking_sessions.status
    CreatedAt time.Time  // driver_tracking_sessions.created_at
}

// Active reports whether the session is still sharing positions.
func (s *TrackingSession) Active() bool {
    return s.Status == SessionActive
}
