package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/meshwar/ride-backend/internal/model"
)

// TrackingSessionRepo persists driver tracking sessions.  Rows are owned
// exclusively by this core: created on session start, closed on end, never
// deleted (kept for audit).
type TrackingSessionRepo struct {
    db *sql.DB
}

// NewTrackingSessionRepo returns a TrackingSessionRepo bound to the given
// database.
func NewTrackingSessionRepo(db *sql.DB) *TrackingSessionRepo {
    return &TrackingSessionRepo{db: db}
}

const sessionColumns = `id, trip_id, driver_id, consent_at, started_at, ended_at, status, created_at`

func scanSession(scan func(dest ...any) error) (*model.TrackingSession, error) {
    var s model.TrackingSession
    var endedAt sql.NullTime
    if err := scan(
        &s.ID, &s.TripID, &s.DriverID, &s.ConsentAt, &s.StartedAt, &endedAt, &s.Status, &s.CreatedAt,
    ); err != nil {
        return nil, err
    }
    if endedAt.Valid {
        t := endedAt.Time
        s.EndedAt = &t
    }
    return &s, nil
}

// GetByID returns one session or ErrSessionNotFound.
func (r *TrackingSessionRepo) GetByID(ctx context.Context, id uint64) (*model.TrackingSession, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+sessionColumns+` FROM driver_tracking_sessions WHERE id = ?`, id)
    s, err := scanSession(row.Scan)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrSessionNotFound
        }
        return nil, err
    }
    return s, nil
}

// ActiveByTrip returns the trip's active session, or ErrSessionNotFound
// when none is open.  At most one active row can exist per trip; StartActive
// enforces that under a lock.
func (r *TrackingSessionRepo) ActiveByTrip(ctx context.Context, tripID uint64) (*model.TrackingSession, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+sessionColumns+` FROM driver_tracking_sessions
         WHERE trip_id = ? AND status = ?`, tripID, model.SessionActive)
    s, err := scanSession(row.Scan)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrSessionNotFound
        }
        return nil, err
    }
    return s, nil
}

// StartActive opens an active session for the trip, or returns the one that
// already exists (idempotent start).  The check-then-insert runs in a
// transaction holding the trip row lock, so two concurrent starts cannot
// both insert; created reports which case occurred.
//
// Consent is structural: consent_at and started_at are the same instant,
// because starting the session is the consent act.
func (r *TrackingSessionRepo) StartActive(ctx context.Context, tripID, driverID uint64, now time.Time) (*model.TrackingSession, bool, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, false, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // Serialize per trip on the trip row, same as seat allocation does.
    var tripExists uint64
    if err := tx.QueryRowContext(ctx,
        `SELECT id FROM trips WHERE id = ? FOR UPDATE`, tripID,
    ).Scan(&tripExists); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, false, ErrTripNotFound
        }
        return nil, false, err
    }

    row := tx.QueryRowContext(ctx,
        `SELECT `+sessionColumns+` FROM driver_tracking_sessions
         WHERE trip_id = ? AND status = ?`, tripID, model.SessionActive)
    existing, err := scanSession(row.Scan)
    if err == nil {
        if err := tx.Commit(); err != nil {
            return nil, false, err
        }
        committed = true
        return existing, false, nil
    }
    if !errors.Is(err, sql.ErrNoRows) {
        return nil, false, err
    }

    res, err := tx.ExecContext(ctx,
        `INSERT INTO driver_tracking_sessions
           (trip_id, driver_id, consent_at, started_at, status)
         VALUES (?, ?, ?, ?, ?)`,
        tripID, driverID, now, now, model.SessionActive)
    if err != nil {
        return nil, false, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return nil, false, err
    }
    if err := tx.Commit(); err != nil {
        return nil, false, err
    }
    committed = true

    return &model.TrackingSession{
        ID:        uint64(id),
        TripID:    tripID,
        DriverID:  driverID,
        ConsentAt: now,
        StartedAt: now,
        Status:    model.SessionActive,
        CreatedAt: now,
    }, true, nil
}

// End closes a session.  Ending an already-ended session is a no-op; the
// original ended_at is preserved.
func (r *TrackingSessionRepo) End(ctx context.Context, sessionID uint64, now time.Time) error {
    _, err := r.db.ExecContext(ctx,
        `UPDATE driver_tracking_sessions
         SET status = ?, ended_at = ?
         WHERE id = ? AND status = ?`,
        model.SessionEnded, now, sessionID, model.SessionActive)
    return err
}
