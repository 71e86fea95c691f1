package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshwar/ride-backend/internal/model"
	"github.com/meshwar/ride-backend/internal/repository"
)

const (
	tripID   = uint64(1)
	driverID = uint64(10)
)

func floatPtr(f float64) *float64 { return &f }

// newTestTracking builds a Tracking service over fakes with one scheduled
// trip assigned to driverID and a fixed clock starting at base.
func newTestTracking(base time.Time) (*Tracking, *memSessions, *memPositions, *memReservations, *time.Time) {
	driver := driverID
	destLat, destLng := 31.2001, 29.9187
	trips := &memTrips{trips: map[uint64]model.Trip{
		tripID: {
			ID:       tripID,
			Origin:   "Cairo",
			DestLat:  &destLat,
			DestLng:  &destLng,
			Status:   model.TripInProgress,
			DriverID: &driver,
		},
	}}
	sessions := newMemSessions()
	positions := &memPositions{}
	reservations := &memReservations{confirmed: map[[2]uint64]bool{}}

	now := base
	tr := NewTracking(trips, sessions, positions, reservations,
		200, 55, 3*time.Second, testLogger())
	tr.now = func() time.Time { return now }
	return tr, sessions, positions, reservations, &now
}

func TestStartSession_RequiresAssignedDriver(t *testing.T) {
	tr, _, _, _, _ := newTestTracking(time.Now())

	_, _, err := tr.StartSession(context.Background(), tripID, Identity{UserID: 99, Role: RoleDriver})
	assert.ErrorIs(t, err, ErrNotAssignedDriver)

	_, _, err = tr.StartSession(context.Background(), 42, Identity{UserID: driverID, Role: RoleDriver})
	assert.ErrorIs(t, err, repository.ErrTripNotFound)
}

func TestStartSession_IdempotentWhileActive(t *testing.T) {
	tr, sessions, _, _, _ := newTestTracking(time.Now())
	caller := Identity{UserID: driverID, Role: RoleDriver}

	first, created, err := tr.StartSession(context.Background(), tripID, caller)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, first.ConsentAt, first.StartedAt)

	second, created, err := tr.StartSession(context.Background(), tripID, caller)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, sessions.activeCount(tripID))
}

func TestEndSession_IdempotentAndScoped(t *testing.T) {
	tr, sessions, _, _, _ := newTestTracking(time.Now())
	caller := Identity{UserID: driverID, Role: RoleDriver}

	session, _, err := tr.StartSession(context.Background(), tripID, caller)
	require.NoError(t, err)

	// A stranger cannot end it; an admin can.
	err = tr.EndSession(context.Background(), session.ID, Identity{UserID: 99, Role: RolePassenger})
	assert.ErrorIs(t, err, ErrNotAssignedDriver)
	require.NoError(t, tr.EndSession(context.Background(), session.ID, Identity{UserID: 500, Role: RoleAdmin}))
	assert.Equal(t, 0, sessions.activeCount(tripID))

	// Double end is a no-op, and unknown ids are reported as such.
	require.NoError(t, tr.EndSession(context.Background(), session.ID, caller))
	err = tr.EndSession(context.Background(), 404, caller)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestStartSession_NewSessionAfterEnd(t *testing.T) {
	tr, sessions, _, _, _ := newTestTracking(time.Now())
	caller := Identity{UserID: driverID, Role: RoleDriver}

	first, _, err := tr.StartSession(context.Background(), tripID, caller)
	require.NoError(t, err)
	require.NoError(t, tr.EndSession(context.Background(), first.ID, caller))

	second, created, err := tr.StartSession(context.Background(), tripID, caller)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, sessions.activeCount(tripID))
}

func TestIngest_ValidationOrder(t *testing.T) {
	tr, _, positions, _, _ := newTestTracking(time.Now())
	caller := Identity{UserID: driverID, Role: RoleDriver}
	session, _, err := tr.StartSession(context.Background(), tripID, caller)
	require.NoError(t, err)

	// Coordinate range is checked first, even when accuracy is also bad.
	_, err = tr.Ingest(context.Background(), session.ID, driverID, 200, 31.2, floatPtr(500), nil)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = tr.Ingest(context.Background(), session.ID, driverID, 30.0, 181, nil, nil)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = tr.Ingest(context.Background(), session.ID, driverID, 30.0, 31.2, floatPtr(500), nil)
	assert.ErrorIs(t, err, ErrAccuracyTooLow)

	_, err = tr.Ingest(context.Background(), session.ID, driverID, 30.0, 31.2, nil, floatPtr(-1))
	assert.ErrorIs(t, err, ErrInvalidSpeed)
	_, err = tr.Ingest(context.Background(), session.ID, driverID, 30.0, 31.2, nil, floatPtr(80))
	assert.ErrorIs(t, err, ErrInvalidSpeed)

	// Nothing was persisted by the rejected calls.
	assert.Equal(t, 0, positions.count(session.ID))
}

func TestIngest_AuthorizationChecks(t *testing.T) {
	tr, _, _, _, _ := newTestTracking(time.Now())
	caller := Identity{UserID: driverID, Role: RoleDriver}
	session, _, err := tr.StartSession(context.Background(), tripID, caller)
	require.NoError(t, err)

	_, err = tr.Ingest(context.Background(), 404, driverID, 30.0, 31.2, nil, nil)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	_, err = tr.Ingest(context.Background(), session.ID, 99, 30.0, 31.2, nil, nil)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	require.NoError(t, tr.EndSession(context.Background(), session.ID, caller))
	_, err = tr.Ingest(context.Background(), session.ID, driverID, 30.0, 31.2, nil, nil)
	assert.ErrorIs(t, err, ErrSessionNotActive)
}

func TestIngest_RateLimitAgainstLatestStoredSample(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tr, _, positions, _, now := newTestTracking(base)
	caller := Identity{UserID: driverID, Role: RoleDriver}
	session, _, err := tr.StartSession(context.Background(), tripID, caller)
	require.NoError(t, err)

	_, err = tr.Ingest(context.Background(), session.ID, driverID, 30.0, 31.2, floatPtr(15), floatPtr(12))
	require.NoError(t, err)

	// Two seconds later: below the 3s window, rejected with a hint.
	*now = base.Add(2 * time.Second)
	_, err = tr.Ingest(context.Background(), session.ID, driverID, 30.001, 31.2, nil, nil)
	var rl *RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, time.Second, rl.RetryAfter)
	assert.Equal(t, 1, rl.RetryAfterSeconds())
	assert.Equal(t, 1, positions.count(session.ID))

	// At exactly the window boundary the sample is accepted.
	*now = base.Add(3 * time.Second)
	sample, err := tr.Ingest(context.Background(), session.ID, driverID, 30.001, 31.2, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, base.Add(3*time.Second), sample.SentAt)
	assert.Equal(t, 2, positions.count(session.ID))
}

func TestGetActiveSession_PrivacyBoundary(t *testing.T) {
	tr, _, _, reservations, _ := newTestTracking(time.Now())
	driver := Identity{UserID: driverID, Role: RoleDriver}
	_, _, err := tr.StartSession(context.Background(), tripID, driver)
	require.NoError(t, err)

	// A stranger and a merely-pending passenger are both rejected.
	_, err = tr.GetActiveSession(context.Background(), tripID, Identity{UserID: 70, Role: RolePassenger})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	// Confirmed reservation, assigned driver and admin all pass.
	reservations.confirmed[[2]uint64{tripID, 70}] = true
	for _, caller := range []Identity{
		{UserID: 70, Role: RolePassenger},
		driver,
		{UserID: 500, Role: RoleAdmin},
	} {
		snap, err := tr.GetActiveSession(context.Background(), tripID, caller)
		require.NoError(t, err)
		assert.True(t, snap.Active)
	}
}

func TestGetActiveSession_Snapshot(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tr, _, _, _, now := newTestTracking(base)
	driver := Identity{UserID: driverID, Role: RoleDriver}

	// No session yet: inactive snapshot, not an error.
	snap, err := tr.GetActiveSession(context.Background(), tripID, driver)
	require.NoError(t, err)
	assert.False(t, snap.Active)
	assert.Nil(t, snap.SessionID)

	session, _, err := tr.StartSession(context.Background(), tripID, driver)
	require.NoError(t, err)

	// Session without positions: active, no last position, no ETA.
	snap, err = tr.GetActiveSession(context.Background(), tripID, driver)
	require.NoError(t, err)
	assert.True(t, snap.Active)
	require.NotNil(t, snap.SessionID)
	assert.Equal(t, session.ID, *snap.SessionID)
	assert.Nil(t, snap.LastPosition)
	assert.Nil(t, snap.ETAMinutes)

	_, err = tr.Ingest(context.Background(), session.ID, driverID, 31.0, 29.9187, nil, floatPtr(12.5))
	require.NoError(t, err)
	*now = base.Add(5 * time.Second)
	_, err = tr.Ingest(context.Background(), session.ID, driverID, 31.1, 29.9187, nil, floatPtr(13.0))
	require.NoError(t, err)

	snap, err = tr.GetActiveSession(context.Background(), tripID, driver)
	require.NoError(t, err)
	require.NotNil(t, snap.LastPosition)
	assert.Equal(t, 31.1, snap.LastPosition.Lat)
	require.NotNil(t, snap.LastPosition.SpeedMS)
	assert.Equal(t, 13.0, *snap.LastPosition.SpeedMS)
	// Destination coordinates are set on the trip, so an ETA is included.
	require.NotNil(t, snap.ETAMinutes)
	assert.Greater(t, *snap.ETAMinutes, 0)
}

func TestGetPositions_OrderAndLimit(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tr, _, positions, _, now := newTestTracking(base)
	driver := Identity{UserID: driverID, Role: RoleDriver}
	session, _, err := tr.StartSession(context.Background(), tripID, driver)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		*now = base.Add(time.Duration(i*5) * time.Second)
		_, err := tr.Ingest(context.Background(), session.ID, driverID, 30.0+float64(i)*0.01, 31.2, nil, nil)
		require.NoError(t, err)
	}

	out, err := tr.GetPositions(context.Background(), session.ID, driver, 3)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i := 1; i < len(out); i++ {
		assert.False(t, out[i].SentAt.After(out[i-1].SentAt), "positions must be newest first")
	}

	// Omitted and oversized limits are normalized.
	_, err = tr.GetPositions(context.Background(), session.ID, driver, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPositionLimit, positions.lastListLimit)
	_, err = tr.GetPositions(context.Background(), session.ID, driver, 1000)
	require.NoError(t, err)
	assert.Equal(t, MaxPositionLimit, positions.lastListLimit)

	_, err = tr.GetPositions(context.Background(), session.ID, Identity{UserID: 71, Role: RolePassenger}, 10)
	assert.ErrorIs(t, err, ErrNotAuthorized)
	_, err = tr.GetPositions(context.Background(), 404, driver, 10)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestPurge_IdempotentByAge(t *testing.T) {
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	tr, _, positions, _, now := newTestTracking(base)
	driver := Identity{UserID: driverID, Role: RoleDriver}
	session, _, err := tr.StartSession(context.Background(), tripID, driver)
	require.NoError(t, err)

	// Two stale samples and one fresh one.
	for i, age := range []time.Duration{9 * 24 * time.Hour, 8 * 24 * time.Hour, time.Hour} {
		*now = base.Add(-age)
		_, err := tr.Ingest(context.Background(), session.ID, driverID, 30.0+float64(i)*0.01, 31.2, nil, nil)
		require.NoError(t, err)
	}
	*now = base

	deleted, err := tr.PurgePositionsOlderThan(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Equal(t, 1, positions.count(session.ID))

	deleted, err = tr.PurgePositionsOlderThan(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}
