package model

import "time"

// Trip lifecycle statuses.  A trip is only bookable while scheduled.
const (
    TripScheduled  = "scheduled"
    TripInProgress = "in_progress"
    TripCompleted  = "completed"
    TripCancelled  = "cancelled"
)

// Trip represents a scheduled ride with fixed capacity.  The booking
// subsystem owns trip lifecycle; this core only reads trips and mutates
// their seat counters through the allocator.
//
// Invariants: 0 <= SeatsRemaining <= SeatsTotal, and IsFull holds exactly
// when SeatsRemaining is zero.
//
// Fields:
//  ID             – primary key identifier.
//  Origin         – departure point (display name).
//  Destination    – arrival point (display name).
//  DestLat/Lng    – optional destination coordinates, used for ETA.
//  DepartsAt      – scheduled departure time (UTC).
//  PriceCents     – price per seat in cents.
//  SeatsTotal     – capacity of the vehicle.
//  SeatsRemaining – seats still available for allocation.
//  IsFull         – derived fullness flag (SeatsRemaining == 0).
//  Status         – lifecycle status (scheduled, in_progress, completed, cancelled).
//  DriverID       – assigned driver, nil until assignment.
type Trip struct {
    ID             uint64     // trips.id
    Origin         string     // trips.origin
    Destination    string     // trips.destination
    DestLat        *float64   // trips.dest_lat (nullable)
    DestLng        *float64   // trips.dest_lng (nullable)
    DepartsAt      time.Time  // trips.departs_at
    PriceCents     uint32     // trips.price_cents
    SeatsTotal     uint32     // trips.seats_total
    SeatsRemaining uint32     // trips.seats_remaining
    IsFull         bool       // trips.is_full
    Status         string     // trips.status
    DriverID       *uint64    // trips.driver_id (nullable)
    CreatedAt      time.Time  // trips.created_at
    UpdatedAt      time.Time  // trips.updated_at
}

// Bookable reports whether seats may still be allocated on the trip.
func (t *Trip) Bookable() bool {
    return t.Status == TripScheduled
}
