package service

// In-memory store fakes used by the allocator and tracking tests.  They
// honor the same contracts as the MySQL repositories (sentinel errors,
// atomic allocation under a lock, single active session per trip) so the
// concurrency properties can be exercised without a database.

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/meshwar/ride-backend/internal/model"
	"github.com/meshwar/ride-backend/internal/repository"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// memAllocationStore implements AllocationStore over a single trip with a
// mutex standing in for the trip row lock.
type memAllocationStore struct {
	mu             sync.Mutex
	trip           model.Trip
	nextID         uint64
	reservations   []model.Reservation
	contentionLeft int // return ErrContention this many times before succeeding
}

func (s *memAllocationStore) Allocate(_ context.Context, req repository.AllocationRequest) (*repository.AllocationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.contentionLeft > 0 {
		s.contentionLeft--
		return nil, repository.ErrContention
	}
	if req.TripID != s.trip.ID {
		return nil, repository.ErrTripNotFound
	}
	if s.trip.Status != model.TripScheduled {
		return nil, repository.ErrTripNotBookable
	}
	if s.trip.SeatsRemaining < req.Seats {
		return nil, repository.ErrCapacityExceeded
	}

	s.nextID++
	position := uint32(len(s.reservations)) + 1
	s.reservations = append(s.reservations, model.Reservation{
		ID:             s.nextID,
		TripID:         req.TripID,
		UserID:         req.UserID,
		SeatsRequested: req.Seats,
		QueuePosition:  position,
		Status:         model.ReservationPending,
		PaymentStatus:  model.PaymentPending,
	})
	s.trip.SeatsRemaining -= req.Seats
	s.trip.IsFull = s.trip.SeatsRemaining == 0

	return &repository.AllocationResult{
		ReservationID: s.nextID,
		QueuePosition: position,
		Trip:          s.trip,
	}, nil
}

// memTrips implements TripReader.
type memTrips struct {
	trips map[uint64]model.Trip
}

func (m *memTrips) GetByID(_ context.Context, id uint64) (*model.Trip, error) {
	t, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrTripNotFound
	}
	return &t, nil
}

// memSessions implements SessionStore.
type memSessions struct {
	mu       sync.Mutex
	nextID   uint64
	sessions map[uint64]model.TrackingSession
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[uint64]model.TrackingSession)}
}

func (m *memSessions) GetByID(_ context.Context, id uint64) (*model.TrackingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memSessions) ActiveByTrip(_ context.Context, tripID uint64) (*model.TrackingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.TripID == tripID && s.Status == model.SessionActive {
			return &s, nil
		}
	}
	return nil, repository.ErrSessionNotFound
}

func (m *memSessions) StartActive(_ context.Context, tripID, driverID uint64, now time.Time) (*model.TrackingSession, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.TripID == tripID && s.Status == model.SessionActive {
			return &s, false, nil
		}
	}
	m.nextID++
	s := model.TrackingSession{
		ID:        m.nextID,
		TripID:    tripID,
		DriverID:  driverID,
		ConsentAt: now,
		StartedAt: now,
		Status:    model.SessionActive,
		CreatedAt: now,
	}
	m.sessions[s.ID] = s
	return &s, true, nil
}

func (m *memSessions) End(_ context.Context, sessionID uint64, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || s.Status != model.SessionActive {
		return nil
	}
	s.Status = model.SessionEnded
	s.EndedAt = &now
	m.sessions[sessionID] = s
	return nil
}

func (m *memSessions) activeCount(tripID uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sessions {
		if s.TripID == tripID && s.Status == model.SessionActive {
			n++
		}
	}
	return n
}

// memPositions implements PositionStore.  lastListLimit records the limit
// passed to the most recent ListBySession call so clamping is observable.
type memPositions struct {
	mu            sync.Mutex
	nextID        uint64
	samples       []model.PositionSample
	lastListLimit int
}

func (m *memPositions) Append(_ context.Context, sample model.PositionSample) (*model.PositionSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	sample.ID = m.nextID
	m.samples = append(m.samples, sample)
	return &sample, nil
}

func (m *memPositions) LatestBySession(_ context.Context, sessionID uint64) (*model.PositionSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.PositionSample
	for i := range m.samples {
		s := m.samples[i]
		if s.SessionID != sessionID {
			continue
		}
		if latest == nil || s.SentAt.After(latest.SentAt) ||
			(s.SentAt.Equal(latest.SentAt) && s.ID > latest.ID) {
			latest = &s
		}
	}
	if latest == nil {
		return nil, repository.ErrNoSamples
	}
	out := *latest
	return &out, nil
}

func (m *memPositions) ListBySession(_ context.Context, sessionID uint64, limit int) ([]model.PositionSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastListLimit = limit
	out := make([]model.PositionSample, 0)
	for _, s := range m.samples {
		if s.SessionID == sessionID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SentAt.Equal(out[j].SentAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].SentAt.After(out[j].SentAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memPositions) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.samples[:0]
	var deleted int64
	for _, s := range m.samples {
		if s.SentAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	m.samples = kept
	return deleted, nil
}

func (m *memPositions) count(sessionID uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.samples {
		if s.SessionID == sessionID {
			n++
		}
	}
	return n
}

// memReservations implements ConfirmedReservationReader.
type memReservations struct {
	confirmed map[[2]uint64]bool // (tripID, userID) -> has confirmed reservation
}

func (m *memReservations) HasConfirmed(_ context.Context, tripID, userID uint64) (bool, error) {
	return m.confirmed[[2]uint64{tripID, userID}], nil
}
