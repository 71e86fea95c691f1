package service

import (
    "context"
    "errors"
    "time"

    "github.com/sirupsen/logrus"

    "github.com/meshwar/ride-backend/internal/model"
    "github.com/meshwar/ride-backend/internal/repository"
)

// TripReader is the read-only view of the booking-owned trips table needed
// by the tracking core.
type TripReader interface {
    GetByID(ctx context.Context, id uint64) (*model.Trip, error)
}

// SessionStore persists tracking sessions.  StartActive must guarantee the
// single-active-session-per-trip invariant atomically, returning the
// existing session (created=false) when one is already open.
type SessionStore interface {
    GetByID(ctx context.Context, id uint64) (*model.TrackingSession, error)
    ActiveByTrip(ctx context.Context, tripID uint64) (*model.TrackingSession, error)
    StartActive(ctx context.Context, tripID, driverID uint64, now time.Time) (*model.TrackingSession, bool, error)
    End(ctx context.Context, sessionID uint64, now time.Time) error
}

// PositionStore persists position samples for sessions.
type PositionStore interface {
    Append(ctx context.Context, sample model.PositionSample) (*model.PositionSample, error)
    LatestBySession(ctx context.Context, sessionID uint64) (*model.PositionSample, error)
    ListBySession(ctx context.Context, sessionID uint64, limit int) ([]model.PositionSample, error)
    DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ConfirmedReservationReader answers the one question the privacy boundary
// asks of the booking data: does this user hold a confirmed reservation on
// the trip.
type ConfirmedReservationReader interface {
    HasConfirmed(ctx context.Context, tripID, userID uint64) (bool, error)
}

// Tracking implements the session state machine, the position ingestion
// pipeline, the authorized read gateway and the retention purge.
type Tracking struct {
    trips        TripReader
    sessions     SessionStore
    positions    PositionStore
    reservations ConfirmedReservationReader

    maxAccuracyM float64
    maxSpeedMS   float64
    minInterval  time.Duration

    log *logrus.Logger
    now func() time.Time // overridable in tests
}

// NewTracking wires the tracking core.  The accuracy/speed/interval knobs
// come from TrackingConfig; see internal/config.
func NewTracking(trips TripReader, sessions SessionStore, positions PositionStore,
    reservations ConfirmedReservationReader,
    maxAccuracyM, maxSpeedMS float64, minInterval time.Duration,
    log *logrus.Logger) *Tracking {
    return &Tracking{
        trips:        trips,
        sessions:     sessions,
        positions:    positions,
        reservations: reservations,
        maxAccuracyM: maxAccuracyM,
        maxSpeedMS:   maxSpeedMS,
        minInterval:  minInterval,
        log:          log,
        now:          time.Now,
    }
}

// StartSession opens a location-sharing session for the trip.  Only the
// trip's assigned driver may start one.  Starting while a session is
// already active returns that session with created=false rather than an
// error, so reconnecting drivers converge on the same session id.
func (t *Tracking) StartSession(ctx context.Context, tripID uint64, caller Identity) (*model.TrackingSession, bool, error) {
    trip, err := t.trips.GetByID(ctx, tripID)
    if err != nil {
        return nil, false, err
    }
    if trip.DriverID == nil || *trip.DriverID != caller.UserID {
        return nil, false, ErrNotAssignedDriver
    }

    session, created, err := t.sessions.StartActive(ctx, tripID, caller.UserID, t.now().UTC())
    if err != nil {
        return nil, false, err
    }
    if created {
        t.log.WithFields(logrus.Fields{
            "trip_id":    tripID,
            "session_id": session.ID,
            "driver_id":  caller.UserID,
        }).Info("tracking session started")
    }
    return session, created, nil
}

// EndSession closes a session.  The session's driver may end it, and so may
// an administrator (administrative override).  Ending an already-ended
// session succeeds without effect.
func (t *Tracking) EndSession(ctx context.Context, sessionID uint64, caller Identity) error {
    session, err := t.sessions.GetByID(ctx, sessionID)
    if err != nil {
        return err
    }
    if session.DriverID != caller.UserID && !caller.Admin() {
        return ErrNotAssignedDriver
    }
    if !session.Active() {
        return nil
    }
    if err := t.sessions.End(ctx, sessionID, t.now().UTC()); err != nil {
        return err
    }
    t.log.WithFields(logrus.Fields{
        "session_id": sessionID,
        "ended_by":   caller.UserID,
        "override":   caller.UserID != session.DriverID,
    }).Info("tracking session ended")
    return nil
}

// PurgePositionsOlderThan bulk-deletes samples older than retentionDays and
// returns the deleted count.  Strictly age-based, hence idempotent and safe
// to run concurrently with ingestion.
func (t *Tracking) PurgePositionsOlderThan(ctx context.Context, retentionDays int) (int64, error) {
    cutoff := t.now().UTC().AddDate(0, 0, -retentionDays)
    deleted, err := t.positions.DeleteOlderThan(ctx, cutoff)
    if err != nil {
        return 0, err
    }
    if deleted > 0 {
        t.log.WithFields(logrus.Fields{
            "deleted":        deleted,
            "retention_days": retentionDays,
        }).Info("purged stale position samples")
    }
    return deleted, nil
}

// authorizeViewer is the single authorization predicate shared by the read
// paths: the caller must be an admin, the assigned driver, or hold a
// confirmed reservation on the trip.  Evaluated on every call; the decision
// is never cached.
func (t *Tracking) authorizeViewer(ctx context.Context, tripID uint64, assignedDriver *uint64, caller Identity) error {
    if caller.Admin() {
        return nil
    }
    if assignedDriver != nil && *assignedDriver == caller.UserID {
        return nil
    }
    confirmed, err := t.reservations.HasConfirmed(ctx, tripID, caller.UserID)
    if err != nil {
        return err
    }
    if !confirmed {
        return ErrNotAuthorized
    }
    return nil
}

// sessionNotFound reports whether err means "no session", which the
// snapshot path treats as a valid inactive state rather than a failure.
func sessionNotFound(err error) bool {
    return errors.Is(err, repository.ErrSessionNotFound)
}
