package model

import "time"

// Reservation lifecycle statuses.
const (
    ReservationPending   = "pending"
    ReservationConfirmed = "confirmed"
    ReservationCompleted = "completed"
    ReservationCancelled = "cancelled"
)

// Payment review statuses for a reservation's proof of payment.
const (
    PaymentPending   = "pending"
    PaymentConfirmed = "confirmed"
    PaymentRejected  = "rejected"
)

// Reservation records a user's claim on one or two seats of a trip.  Rows
// are created only through the seat allocator, which assigns QueuePosition
// atomically; the position never changes afterwards.
//
// Invariant: among non-cancelled reservations of a trip, queue positions
// form the contiguous sequence 1..N ordered by creation time.
//
// Fields:
//  ID                   – primary key identifier.
//  TripID               – trip being booked.
//  UserID               – requesting passenger.
//  SeatsRequested       – 1 or 2.
//  QueuePosition        – 1-based rank within the trip's booking order.
//  Status               – lifecycle status (pending, confirmed, completed, cancelled).
//  PaymentStatus        – proof review status (pending, confirmed, rejected).
//  PaymentProofURL      – uploaded receipt path, required for 2 seats unless
//                         a transaction id is given.
//  PaymentTransactionID – external transaction reference, alternative proof.
type Reservation struct {
    ID                   uint64    // reservations.id
    TripID               uint64    // reservations.trip_id
    UserID               uint64    // reservations.user_id
    SeatsRequested       uint32    // reservations.seats_requested
    QueuePosition        uint32    // reservations.queue_position
    Status               string    // reservations.status
    PaymentStatus        string    // reservations.payment_status
    PaymentProofURL      *string   // reservations.payment_proof_url (nullable)
    PaymentTransactionID *string   // reservations.payment_transaction_id (nullable)
    CreatedAt            time.Time // reservations.created_at
    UpdatedAt            time.Time // reservations.updated_at
}
