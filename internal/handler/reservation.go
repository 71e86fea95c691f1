package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/meshwar/ride-backend/internal/model"
    "github.com/meshwar/ride-backend/internal/queue"
    "github.com/meshwar/ride-backend/internal/repository"
    "github.com/meshwar/ride-backend/internal/service"
)

// ReservationHandler exposes seat allocation and the passenger's own
// reservation views. Allocation delegates to the service-layer allocator;
// the handler only binds input, maps errors and publishes the allocation
// event.
type ReservationHandler struct {
    Allocator    *service.Allocator
    Reservations *repository.ReservationRepo
    Log          *logrus.Logger
}

func NewReservationHandler(allocator *service.Allocator, reservations *repository.ReservationRepo, log *logrus.Logger) *ReservationHandler {
    if allocator == nil || reservations == nil {
        panic("nil dependency passed to NewReservationHandler")
    }
    return &ReservationHandler{Allocator: allocator, Reservations: reservations, Log: log}
}

// allocateRequest is the body of POST /v1/trips/:id/reservations. Exactly
// one of the proof fields is needed when booking two seats; the service
// enforces that rule so the validate tags only bound the seat count.
type allocateRequest struct {
    Seats                uint32  `json:"seats" validate:"required,min=1,max=2"`
    PaymentProofURL      *string `json:"payment_proof_url"`
    PaymentTransactionID *string `json:"payment_transaction_id"`
}

// Create handles POST /v1/trips/:id/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return apiError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
    }
    tripID, ok := pathID(c, "id")
    if !ok {
        return apiError(c, http.StatusBadRequest, "invalid_trip_id", "invalid trip id")
    }
    var body allocateRequest
    if err := c.Bind(&body); err != nil {
        return apiError(c, http.StatusBadRequest, "invalid_body", "invalid request body")
    }
    if err := c.Validate(&body); err != nil {
        return apiError(c, http.StatusBadRequest, "invalid_seat_count", "seats must be 1 or 2")
    }

    res, err := h.Allocator.Allocate(c.Request().Context(), tripID, uid, body.Seats,
        body.PaymentProofURL, body.PaymentTransactionID)
    if err != nil {
        return respondServiceError(c, err)
    }

    // Best-effort: the booking must succeed even when the broker is down.
    go h.publishAllocated(res, uid, body.Seats)

    return c.JSON(http.StatusCreated, echo.Map{
        "reservation_id": res.ReservationID,
        "trip_id":        res.Trip.ID,
        "queue_position": res.QueuePosition,
        "seats":          body.Seats,
        "status":         model.ReservationPending,
        "payment_status": model.PaymentPending,
    })
}

func (h *ReservationHandler) publishAllocated(res *repository.AllocationResult, userID uint64, seats uint32) {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    _ = queue.PublishSeatAllocated(ctx, h.Log, queue.SeatAllocatedEvent{
        ReservationID:  res.ReservationID,
        TripID:         res.Trip.ID,
        UserID:         userID,
        SeatsRequested: seats,
        QueuePosition:  res.QueuePosition,
        Origin:         res.Trip.Origin,
        Destination:    res.Trip.Destination,
        DepartsAt:      res.Trip.DepartsAt.UTC().Format(time.RFC3339),
        PriceCents:     res.Trip.PriceCents,
        SeatsRemaining: res.Trip.SeatsRemaining,
        TripFull:       res.Trip.IsFull,
        AllocatedAt:    time.Now().UTC().Format(time.RFC3339),
    })
}

// ListMine handles GET /v1/my-reservations, newest first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return apiError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
    }
    rows, err := h.Reservations.ListByUser(c.Request().Context(), uid)
    if err != nil {
        return apiError(c, http.StatusInternalServerError, "internal_error", "database error")
    }
    out := make([]echo.Map, 0, len(rows))
    for i := range rows {
        out = append(out, reservationJSON(&rows[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// Get handles GET /v1/reservations/:id, scoped to the owner.
func (h *ReservationHandler) Get(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return apiError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
    }
    id, ok := pathID(c, "id")
    if !ok {
        return apiError(c, http.StatusBadRequest, "invalid_reservation_id", "invalid reservation id")
    }
    r, err := h.Reservations.GetByIDForUser(c.Request().Context(), id, uid)
    if err != nil {
        return respondServiceError(c, err)
    }
    return c.JSON(http.StatusOK, reservationJSON(r))
}

func reservationJSON(r *model.Reservation) echo.Map {
    return echo.Map{
        "id":             r.ID,
        "trip_id":        r.TripID,
        "seats":          r.SeatsRequested,
        "queue_position": r.QueuePosition,
        "status":         r.Status,
        "payment_status": r.PaymentStatus,
        "created_at":     r.CreatedAt.UTC().Format(time.RFC3339),
    }
}
