package model

import "time"

// PositionSample is one timestamped location reading within a tracking
// session.  Samples are append-only: created by the ingestion pipeline,
// never updated, and deleted only by the retention sweeper.
//
// SentAt is assigned by the server at insert time, which makes it the
// authority for the rate-limit window regardless of client clock skew.
type PositionSample struct {
    ID        uint64    // driver_positions.id
    SessionID uint64    // driver_positions.session_id
    Lat       float64   // driver_positions.lat
    Lng       float64   // driver_positions.lng
    AccuracyM *float64  // driver_positions.accuracy_m (nullable, meters)
    SpeedMS   *float64  // driver_positions.speed_m_s (nullable, m/s)
    SentAt    time.Time // driver_positions.sent_at (server-assigned)
}
