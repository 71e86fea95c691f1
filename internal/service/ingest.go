package service

import (
    "context"
    "errors"

    "github.com/meshwar/ride-backend/internal/model"
    "github.com/meshwar/ride-backend/internal/repository"
)

// Ingest validates and stores one location sample for an active session.
// Checks run in a fixed order and short-circuit on the first failure:
// coordinate range, accuracy, speed plausibility, authorization, then the
// per-session time gate.  Only a sample passing all five is appended, with
// a server-assigned timestamp.
//
// The server deliberately applies no minimum-distance suppression; that
// heuristic is a client-side bandwidth optimization, not a correctness
// rule.  The time gate compares against the latest stored sample so
// reordered deliveries cannot slip through.
func (t *Tracking) Ingest(ctx context.Context, sessionID, driverID uint64, lat, lng float64, accuracyM, speedMS *float64) (*model.PositionSample, error) {
    if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
        return nil, ErrOutOfRange
    }
    if accuracyM != nil && *accuracyM > t.maxAccuracyM {
        return nil, ErrAccuracyTooLow
    }
    if speedMS != nil && (*speedMS < 0 || *speedMS > t.maxSpeedMS) {
        return nil, ErrInvalidSpeed
    }

    session, err := t.sessions.GetByID(ctx, sessionID)
    if err != nil {
        return nil, err
    }
    if session.DriverID != driverID {
        return nil, ErrNotAuthorized
    }
    if !session.Active() {
        return nil, ErrSessionNotActive
    }

    now := t.now().UTC()
    latest, err := t.positions.LatestBySession(ctx, sessionID)
    switch {
    case err == nil:
        if elapsed := now.Sub(latest.SentAt); elapsed < t.minInterval {
            return nil, &RateLimitedError{RetryAfter: t.minInterval - elapsed}
        }
    case !noSamples(err):
        return nil, err
    }

    return t.positions.Append(ctx, model.PositionSample{
        SessionID: sessionID,
        Lat:       lat,
        Lng:       lng,
        AccuracyM: accuracyM,
        SpeedMS:   speedMS,
        SentAt:    now,
    })
}

func noSamples(err error) bool {
    return errors.Is(err, repository.ErrNoSamples)
}
