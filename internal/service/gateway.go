package service

import (
    "context"
    "time"

    "github.com/meshwar/ride-backend/internal/geo"
    "github.com/meshwar/ride-backend/internal/model"
)

// MaxPositionLimit caps how many samples a single read may return.
const MaxPositionLimit = 100

// DefaultPositionLimit applies when a caller omits the limit.
const DefaultPositionLimit = 20

// LastPosition is the sanitized latest fix exposed to viewers: coordinates,
// timestamp and speed only, never layered with rider data.
type LastPosition struct {
    Lat     float64   `json:"lat"`
    Lng     float64   `json:"lng"`
    SentAt  time.Time `json:"sent_at"`
    SpeedMS *float64  `json:"speed_m_s,omitempty"`
}

// SessionSnapshot is the answer to "is this trip being tracked right now".
// When no session is active only Active=false is populated.  ETAMinutes is
// present when the trip has destination coordinates and a position exists.
type SessionSnapshot struct {
    Active       bool          `json:"active"`
    SessionID    *uint64       `json:"session_id,omitempty"`
    StartedAt    *time.Time    `json:"started_at,omitempty"`
    LastPosition *LastPosition `json:"last_position,omitempty"`
    ETAMinutes   *int          `json:"eta_minutes,omitempty"`
}

// GetActiveSession returns the trip's tracking snapshot for an authorized
// viewer.  Authorization runs through the shared predicate on every call.
// An absent session is a normal answer (Active=false), not an error.
func (t *Tracking) GetActiveSession(ctx context.Context, tripID uint64, caller Identity) (*SessionSnapshot, error) {
    trip, err := t.trips.GetByID(ctx, tripID)
    if err != nil {
        return nil, err
    }
    if err := t.authorizeViewer(ctx, tripID, trip.DriverID, caller); err != nil {
        return nil, err
    }

    session, err := t.sessions.ActiveByTrip(ctx, tripID)
    if err != nil {
        if sessionNotFound(err) {
            return &SessionSnapshot{Active: false}, nil
        }
        return nil, err
    }

    snapshot := &SessionSnapshot{
        Active:    true,
        SessionID: &session.ID,
        StartedAt: &session.StartedAt,
    }

    latest, err := t.positions.LatestBySession(ctx, session.ID)
    if err != nil {
        if noSamples(err) {
            return snapshot, nil
        }
        return nil, err
    }
    snapshot.LastPosition = &LastPosition{
        Lat:     latest.Lat,
        Lng:     latest.Lng,
        SentAt:  latest.SentAt,
        SpeedMS: latest.SpeedMS,
    }
    if trip.DestLat != nil && trip.DestLng != nil {
        speed := 0.0
        if latest.SpeedMS != nil {
            speed = *latest.SpeedMS
        }
        eta := geo.EstimateETA(latest.Lat, latest.Lng, *trip.DestLat, *trip.DestLng, speed)
        snapshot.ETAMinutes = &eta
    }
    return snapshot, nil
}

// GetPositions returns up to limit recent samples for the session, newest
// first, for an authorized viewer.  Limits outside [1,MaxPositionLimit]
// are replaced by the default or clamped to the maximum.
func (t *Tracking) GetPositions(ctx context.Context, sessionID uint64, caller Identity, limit int) ([]model.PositionSample, error) {
    session, err := t.sessions.GetByID(ctx, sessionID)
    if err != nil {
        return nil, err
    }
    driverID := session.DriverID
    if err := t.authorizeViewer(ctx, session.TripID, &driverID, caller); err != nil {
        return nil, err
    }

    if limit <= 0 {
        limit = DefaultPositionLimit
    }
    if limit > MaxPositionLimit {
        limit = MaxPositionLimit
    }
    return t.positions.ListBySession(ctx, sessionID, limit)
}
