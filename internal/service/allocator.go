package service

import (
    "context"
    "errors"
    "time"

    "github.com/sirupsen/logrus"

    "github.com/meshwar/ride-backend/internal/repository"
)

// AllocationStore executes the atomic allocation step: read occupancy,
// assign the next queue position, decrement remaining seats and insert the
// reservation as one indivisible unit.  It returns repository.ErrContention
// for transient conflicts that are safe to retry.
type AllocationStore interface {
    Allocate(ctx context.Context, req repository.AllocationRequest) (*repository.AllocationResult, error)
}

// Allocator assigns contended trip seats.  It validates the request, then
// drives the store's atomic step with a small bounded retry on transient
// contention.  Validation and capacity failures are returned synchronously;
// the caller decides whether to resubmit.
type Allocator struct {
    store      AllocationStore
    maxRetries int
    log        *logrus.Logger
}

// NewAllocator constructs an Allocator.  maxRetries bounds the transparent
// retries of the atomic step on contention; values below 1 are raised to 1.
func NewAllocator(store AllocationStore, maxRetries int, log *logrus.Logger) *Allocator {
    if maxRetries < 1 {
        maxRetries = 1
    }
    return &Allocator{store: store, maxRetries: maxRetries, log: log}
}

// Allocate books the requested seats on the trip for the user.  For two seats a
// payment proof (receipt URL or transaction id) is mandatory.  On success
// the reservation id and its immutable queue position are returned.
func (a *Allocator) Allocate(ctx context.Context, tripID, userID uint64, seats uint32, proofURL, transactionID *string) (*repository.AllocationResult, error) {
    if seats < 1 || seats > 2 {
        return nil, ErrInvalidSeatCount
    }
    if seats == 2 && emptyRef(proofURL) && emptyRef(transactionID) {
        return nil, ErrMissingPaymentProof
    }

    req := repository.AllocationRequest{
        TripID:               tripID,
        UserID:               userID,
        Seats:                seats,
        PaymentProofURL:      proofURL,
        PaymentTransactionID: transactionID,
    }

    var lastErr error
    for attempt := 1; attempt <= a.maxRetries; attempt++ {
        result, err := a.store.Allocate(ctx, req)
        if err == nil {
            a.log.WithFields(logrus.Fields{
                "trip_id":        tripID,
                "user_id":        userID,
                "seats":          seats,
                "reservation_id": result.ReservationID,
                "queue_position": result.QueuePosition,
            }).Info("seats allocated")
            return result, nil
        }
        if !errors.Is(err, repository.ErrContention) {
            return nil, err
        }
        lastErr = err
        a.log.WithFields(logrus.Fields{
            "trip_id": tripID,
            "attempt": attempt,
        }).Warn("allocation contention, retrying")
        select {
        case <-ctx.Done():
            return nil, ctx.Err()
        case <-time.After(time.Duration(attempt) * 10 * time.Millisecond):
        }
    }
    return nil, lastErr
}

func emptyRef(s *string) bool { return s == nil || *s == "" }
