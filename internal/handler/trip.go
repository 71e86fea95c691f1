package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/meshwar/ride-backend/internal/model"
    "github.com/meshwar/ride-backend/internal/repository"
)

// TripHandler serves the public trip browse endpoints. These are read-only
// and sit behind the response cache; seat counters may therefore lag by up
// to the cache TTL.
type TripHandler struct {
    Trips *repository.TripRepo
}

func NewTripHandler(trips *repository.TripRepo) *TripHandler {
    if trips == nil {
        panic("nil repository passed to NewTripHandler")
    }
    return &TripHandler{Trips: trips}
}

// List handles GET /v1/trips. It returns upcoming bookable trips ordered by
// departure time.
func (h *TripHandler) List(c echo.Context) error {
    trips, err := h.Trips.ListBookable(c.Request().Context())
    if err != nil {
        return apiError(c, http.StatusInternalServerError, "internal_error", "database error")
    }
    out := make([]echo.Map, 0, len(trips))
    for i := range trips {
        out = append(out, tripJSON(&trips[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"trips": out})
}

// Get handles GET /v1/trips/:id.
func (h *TripHandler) Get(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return apiError(c, http.StatusBadRequest, "invalid_trip_id", "invalid trip id")
    }
    trip, err := h.Trips.GetByID(c.Request().Context(), id)
    if err != nil {
        return respondServiceError(c, err)
    }
    return c.JSON(http.StatusOK, tripJSON(trip))
}

func tripJSON(t *model.Trip) echo.Map {
    return echo.Map{
        "id":              t.ID,
        "origin":          t.Origin,
        "destination":     t.Destination,
        "departs_at":      t.DepartsAt.UTC().Format(time.RFC3339),
        "price_cents":     t.PriceCents,
        "seats_total":     t.SeatsTotal,
        "seats_remaining": t.SeatsRemaining,
        "is_full":         t.IsFull,
        "status":          t.Status,
    }
}
