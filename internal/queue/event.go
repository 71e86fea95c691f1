// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// SeatAllocatedEvent is published when the allocator successfully assigns
// seats.  It carries enough context for the booking/notification subsystem
// to drive payment confirmation and SMS/push notices without querying the
// primary database.
type SeatAllocatedEvent struct {
    ReservationID  uint64 `json:"reservation_id"`
    TripID         uint64 `json:"trip_id"`
    UserID         uint64 `json:"user_id"`
    SeatsRequested uint32 `json:"seats_requested"`
    QueuePosition  uint32 `json:"queue_position"`
    Origin         string `json:"origin"`
    Destination    string `json:"destination"`
    DepartsAt      string `json:"departs_at"`
    PriceCents     uint32 `json:"price_cents"`
    SeatsRemaining uint32 `json:"seats_remaining"`
    TripFull       bool   `json:"trip_full"`
    AllocatedAt    string `json:"allocated_at"`
}
