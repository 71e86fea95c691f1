package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/meshwar/ride-backend/internal/model"
)

// TripRepo reads trips and, inside allocation transactions, locks and
// updates their seat counters.  Trip lifecycle mutations (status changes,
// driver assignment) belong to the booking subsystem and are deliberately
// absent here.
type TripRepo struct {
    db *sql.DB
}

// NewTripRepo returns a TripRepo bound to the given database.
func NewTripRepo(db *sql.DB) *TripRepo { return &TripRepo{db: db} }

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning multiple repositories.
func (r *TripRepo) DB() *sql.DB { return r.db }

const tripColumns = `id, origin, destination, dest_lat, dest_lng, departs_at,
       price_cents, seats_total, seats_remaining, is_full, status, driver_id,
       created_at, updated_at`

func scanTrip(row *sql.Row) (*model.Trip, error) {
    var t model.Trip
    var destLat, destLng sql.NullFloat64
    var driverID sql.NullInt64
    err := row.Scan(
        &t.ID, &t.Origin, &t.Destination, &destLat, &destLng, &t.DepartsAt,
        &t.PriceCents, &t.SeatsTotal, &t.SeatsRemaining, &t.IsFull, &t.Status, &driverID,
        &t.CreatedAt, &t.UpdatedAt,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrTripNotFound
        }
        return nil, err
    }
    if destLat.Valid {
        v := destLat.Float64
        t.DestLat = &v
    }
    if destLng.Valid {
        v := destLng.Float64
        t.DestLng = &v
    }
    if driverID.Valid {
        id := uint64(driverID.Int64)
        t.DriverID = &id
    }
    return &t, nil
}

// GetByID returns a single trip or ErrTripNotFound.
func (r *TripRepo) GetByID(ctx context.Context, id uint64) (*model.Trip, error) {
    return scanTrip(r.db.QueryRowContext(ctx,
        `SELECT `+tripColumns+` FROM trips WHERE id = ?`, id))
}

// GetByIDForUpdateTx loads a trip within the given transaction while
// holding a row lock.  This serializes concurrent allocations per trip: the
// lock is released on commit or rollback.
func (r *TripRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Trip, error) {
    return scanTrip(tx.QueryRowContext(ctx,
        `SELECT `+tripColumns+` FROM trips WHERE id = ? FOR UPDATE`, id))
}

// UpdateSeatCountersTx writes the remaining-seat counter and fullness flag
// within the caller's transaction.  Must only be called while the trip row
// is locked by GetByIDForUpdateTx.
func (r *TripRepo) UpdateSeatCountersTx(ctx context.Context, tx *sql.Tx, tripID uint64, remaining uint32, isFull bool) error {
    _, err := tx.ExecContext(ctx,
        `UPDATE trips SET seats_remaining = ?, is_full = ? WHERE id = ?`,
        remaining, isFull, tripID)
    return err
}

// ListBookable returns scheduled trips that still have seats, soonest
// departure first.  This backs the public browse endpoint passengers poll.
func (r *TripRepo) ListBookable(ctx context.Context) ([]model.Trip, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+tripColumns+` FROM trips
         WHERE status = ? AND is_full = FALSE
         ORDER BY departs_at ASC`, model.TripScheduled)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    trips := make([]model.Trip, 0)
    for rows.Next() {
        var t model.Trip
        var destLat, destLng sql.NullFloat64
        var driverID sql.NullInt64
        if err := rows.Scan(
            &t.ID, &t.Origin, &t.Destination, &destLat, &destLng, &t.DepartsAt,
            &t.PriceCents, &t.SeatsTotal, &t.SeatsRemaining, &t.IsFull, &t.Status, &driverID,
            &t.CreatedAt, &t.UpdatedAt,
        ); err != nil {
            return nil, err
        }
        if destLat.Valid {
            v := destLat.Float64
            t.DestLat = &v
        }
        if destLng.Valid {
            v := destLng.Float64
            t.DestLng = &v
        }
        if driverID.Valid {
            id := uint64(driverID.Int64)
            t.DriverID = &id
        }
        trips = append(trips, t)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return trips, nil
}
