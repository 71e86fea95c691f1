package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/go-sql-driver/mysql"

    "github.com/meshwar/ride-backend/internal/model"
)

// ReservationRepo provides access to reservations and implements the atomic
// seat allocation step.  Reservations are created exclusively through
// Allocate; nothing else inserts rows or touches queue positions.
type ReservationRepo struct {
    db    *sql.DB
    trips *TripRepo
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
// The trip repository is needed because allocation locks and updates the
// trip row inside the same transaction.
func NewReservationRepo(db *sql.DB, trips *TripRepo) *ReservationRepo {
    return &ReservationRepo{db: db, trips: trips}
}

// AllocationRequest carries one validated allocation attempt.  Validation
// (seat count, payment proof) happens in the service layer before the
// request reaches the store.
type AllocationRequest struct {
    TripID               uint64
    UserID               uint64
    Seats                uint32
    PaymentProofURL      *string
    PaymentTransactionID *string
}

// AllocationResult reports a successful allocation together with the trip
// state after the counters were updated, so callers can publish events
// without re-reading.
type AllocationResult struct {
    ReservationID uint64
    QueuePosition uint32
    Trip          model.Trip
}

// isContention reports whether err is a transient MySQL conflict that is
// safe to retry: 1213 (deadlock victim) or 1205 (lock wait timeout).
func isContention(err error) bool {
    var me *mysql.MySQLError
    if errors.As(err, &me) {
        return me.Number == 1213 || me.Number == 1205
    }
    return false
}

// Allocate executes the seat allocation as a single transaction: lock the
// trip row, verify the trip is bookable and has capacity, compute the next
// queue position from the reservation count, insert the reservation and
// decrement the seat counter.  Two concurrent requests for the last seat
// serialize on the row lock, so they can never both succeed or share a
// queue position.
//
// Transient conflicts surface as ErrContention for the service to retry;
// any other failure rolls the transaction back with no partial state.
func (r *ReservationRepo) Allocate(ctx context.Context, req AllocationRequest) (*AllocationResult, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    trip, err := r.trips.GetByIDForUpdateTx(ctx, tx, req.TripID)
    if err != nil {
        if isContention(err) {
            return nil, ErrContention
        }
        return nil, err
    }
    if !trip.Bookable() {
        return nil, ErrTripNotBookable
    }
    if trip.SeatsRemaining < req.Seats {
        return nil, ErrCapacityExceeded
    }

    // Queue position is count+1 over all reservations ever created for the
    // trip, so positions stay immutable even when later rows are cancelled.
    var count uint32
    if err := tx.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM reservations WHERE trip_id = ?`, req.TripID,
    ).Scan(&count); err != nil {
        return nil, err
    }
    position := count + 1

    res, err := tx.ExecContext(ctx,
        `INSERT INTO reservations
           (trip_id, user_id, seats_requested, queue_position, status,
            payment_status, payment_proof_url, payment_transaction_id)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
        req.TripID, req.UserID, req.Seats, position,
        model.ReservationPending, model.PaymentPending,
        req.PaymentProofURL, req.PaymentTransactionID)
    if err != nil {
        if isContention(err) {
            return nil, ErrContention
        }
        return nil, err
    }
    reservationID, err := res.LastInsertId()
    if err != nil {
        return nil, err
    }

    trip.SeatsRemaining -= req.Seats
    trip.IsFull = trip.SeatsRemaining == 0
    if err := r.trips.UpdateSeatCountersTx(ctx, tx, trip.ID, trip.SeatsRemaining, trip.IsFull); err != nil {
        if isContention(err) {
            return nil, ErrContention
        }
        return nil, err
    }

    if err := tx.Commit(); err != nil {
        if isContention(err) {
            return nil, ErrContention
        }
        return nil, err
    }
    committed = true

    return &AllocationResult{
        ReservationID: uint64(reservationID),
        QueuePosition: position,
        Trip:          *trip,
    }, nil
}

const reservationColumns = `id, trip_id, user_id, seats_requested, queue_position,
       status, payment_status, payment_proof_url, payment_transaction_id,
       created_at, updated_at`

func scanReservation(scan func(dest ...any) error) (*model.Reservation, error) {
    var rec model.Reservation
    var proofURL, txnID sql.NullString
    if err := scan(
        &rec.ID, &rec.TripID, &rec.UserID, &rec.SeatsRequested, &rec.QueuePosition,
        &rec.Status, &rec.PaymentStatus, &proofURL, &txnID,
        &rec.CreatedAt, &rec.UpdatedAt,
    ); err != nil {
        return nil, err
    }
    if proofURL.Valid {
        v := proofURL.String
        rec.PaymentProofURL = &v
    }
    if txnID.Valid {
        v := txnID.String
        rec.PaymentTransactionID = &v
    }
    return &rec, nil
}

// GetByIDForUser returns a single reservation owned by the given user, or
// ErrReservationNotFound.  Ownership is enforced in the query so a foreign
// id is indistinguishable from a missing one.
func (r *ReservationRepo) GetByIDForUser(ctx context.Context, reservationID, userID uint64) (*model.Reservation, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+reservationColumns+` FROM reservations WHERE id = ? AND user_id = ?`,
        reservationID, userID)
    rec, err := scanReservation(row.Scan)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrReservationNotFound
        }
        return nil, err
    }
    return rec, nil
}

// ListByUser returns all reservations of a user, newest first.  An empty
// slice is returned when the user has none.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+reservationColumns+` FROM reservations
         WHERE user_id = ? ORDER BY created_at DESC`, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := make([]model.Reservation, 0)
    for rows.Next() {
        rec, err := scanReservation(rows.Scan)
        if err != nil {
            return nil, err
        }
        out = append(out, *rec)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// HasConfirmed reports whether the user holds a reservation on the trip
// whose status is exactly "confirmed".  Pending and completed reservations
// do not grant tracking access.
func (r *ReservationRepo) HasConfirmed(ctx context.Context, tripID, userID uint64) (bool, error) {
    var one int
    err := r.db.QueryRowContext(ctx,
        `SELECT 1 FROM reservations
         WHERE trip_id = ? AND user_id = ? AND status = ? LIMIT 1`,
        tripID, userID, model.ReservationConfirmed,
    ).Scan(&one)
    if errors.Is(err, sql.ErrNoRows) {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}
