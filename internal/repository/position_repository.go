package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/meshwar/ride-backend/internal/model"
)

// PositionRepo persists position samples.  The table is append-only:
// samples are inserted by the ingestion pipeline and removed only by the
// retention sweeper's age-based bulk delete.
type PositionRepo struct {
    db *sql.DB
}

// NewPositionRepo returns a PositionRepo bound to the given database.
func NewPositionRepo(db *sql.DB) *PositionRepo { return &PositionRepo{db: db} }

// Append stores one sample with a server-assigned timestamp and returns it
// with its generated id.
func (r *PositionRepo) Append(ctx context.Context, sample model.PositionSample) (*model.PositionSample, error) {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO driver_positions (session_id, lat, lng, accuracy_m, speed_m_s, sent_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
        sample.SessionID, sample.Lat, sample.Lng, sample.AccuracyM, sample.SpeedMS, sample.SentAt)
    if err != nil {
        return nil, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return nil, err
    }
    sample.ID = uint64(id)
    return &sample, nil
}

const positionColumns = `id, session_id, lat, lng, accuracy_m, speed_m_s, sent_at`

func scanPosition(scan func(dest ...any) error) (*model.PositionSample, error) {
    var p model.PositionSample
    var accuracy, speed sql.NullFloat64
    if err := scan(&p.ID, &p.SessionID, &p.Lat, &p.Lng, &accuracy, &speed, &p.SentAt); err != nil {
        return nil, err
    }
    if accuracy.Valid {
        v := accuracy.Float64
        p.AccuracyM = &v
    }
    if speed.Valid {
        v := speed.Float64
        p.SpeedMS = &v
    }
    return &p, nil
}

// LatestBySession returns the most recently stored sample for the session,
// or ErrNoSamples.  The rate limiter compares against this row's sent_at,
// not wall-clock arrival order, so reordered deliveries cannot bypass it.
func (r *PositionRepo) LatestBySession(ctx context.Context, sessionID uint64) (*model.PositionSample, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+positionColumns+` FROM driver_positions
         WHERE session_id = ? ORDER BY sent_at DESC, id DESC LIMIT 1`, sessionID)
    p, err := scanPosition(row.Scan)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNoSamples
        }
        return nil, err
    }
    return p, nil
}

// ListBySession returns up to limit samples for the session, newest first.
func (r *PositionRepo) ListBySession(ctx context.Context, sessionID uint64, limit int) ([]model.PositionSample, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+positionColumns+` FROM driver_positions
         WHERE session_id = ? ORDER BY sent_at DESC, id DESC LIMIT ?`,
        sessionID, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := make([]model.PositionSample, 0, limit)
    for rows.Next() {
        p, err := scanPosition(rows.Scan)
        if err != nil {
            return nil, err
        }
        out = append(out, *p)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// DeleteOlderThan bulk-deletes samples with sent_at before the cutoff and
// returns the number removed.  Deletion is strictly by age, so it is
// idempotent and safe to run concurrently with ingestion.
func (r *PositionRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
    res, err := r.db.ExecContext(ctx,
        `DELETE FROM driver_positions WHERE sent_at < ?`, cutoff)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
