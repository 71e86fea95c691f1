// Package handler contains the HTTP handlers for the booking and tracking
// API. Handlers assume JWT authentication and role checks already ran in
// middleware; they translate service-layer sentinel errors into the stable
// error surface consumed by the mobile clients.
package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/meshwar/ride-backend/internal/repository"
    "github.com/meshwar/ride-backend/internal/service"
)

// getUserID extracts the authenticated user id from context and converts it
// to uint64. JWT claims arrive as float64 or string depending on how the
// token was minted, so all plausible types are accepted.
func getUserID(c echo.Context) (uint64, error) {
    switch t := c.Get("user_id").(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// getIdentity builds the caller identity from the claims middleware placed
// in context.
func getIdentity(c echo.Context) (service.Identity, error) {
    uid, err := getUserID(c)
    if err != nil {
        return service.Identity{}, err
    }
    role, _ := c.Get("role").(string)
    return service.Identity{UserID: uid, Role: role}, nil
}

// apiError writes the stable error body shape {"error": code, "message": text}.
func apiError(c echo.Context, status int, code, message string) error {
    return c.JSON(status, echo.Map{"error": code, "message": message})
}

// respondServiceError maps service and repository sentinels onto HTTP
// responses. Unknown errors become an opaque 500 so internal details never
// leak to clients.
func respondServiceError(c echo.Context, err error) error {
    var rl *service.RateLimitedError
    if errors.As(err, &rl) {
        secs := rl.RetryAfterSeconds()
        c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
        return c.JSON(http.StatusTooManyRequests, echo.Map{
            "error":       "rate_limited",
            "message":     "position sent too soon after the previous one",
            "retry_after": secs,
        })
    }

    switch {
    case errors.Is(err, service.ErrInvalidSeatCount):
        return apiError(c, http.StatusBadRequest, "invalid_seat_count", "seats must be 1 or 2")
    case errors.Is(err, service.ErrMissingPaymentProof):
        return apiError(c, http.StatusBadRequest, "missing_payment_proof", "booking two seats requires a payment proof")
    case errors.Is(err, service.ErrOutOfRange):
        return apiError(c, http.StatusBadRequest, "out_of_range", "coordinates out of range")
    case errors.Is(err, service.ErrAccuracyTooLow):
        return apiError(c, http.StatusBadRequest, "accuracy_too_low", "position accuracy exceeds the acceptable threshold")
    case errors.Is(err, service.ErrInvalidSpeed):
        return apiError(c, http.StatusBadRequest, "invalid_speed", "reported speed is not plausible")
    case errors.Is(err, repository.ErrTripNotFound):
        return apiError(c, http.StatusNotFound, "trip_not_found", "trip not found")
    case errors.Is(err, repository.ErrSessionNotFound):
        return apiError(c, http.StatusNotFound, "session_not_found", "tracking session not found")
    case errors.Is(err, repository.ErrReservationNotFound):
        return apiError(c, http.StatusNotFound, "reservation_not_found", "reservation not found")
    case errors.Is(err, repository.ErrTripNotBookable):
        return apiError(c, http.StatusConflict, "trip_not_bookable", "trip is not open for booking")
    case errors.Is(err, repository.ErrCapacityExceeded):
        return apiError(c, http.StatusConflict, "capacity_exceeded", "not enough seats remaining")
    case errors.Is(err, service.ErrSessionNotActive):
        return apiError(c, http.StatusConflict, "session_not_active", "tracking session already ended")
    case errors.Is(err, service.ErrNotAssignedDriver):
        return apiError(c, http.StatusForbidden, "not_assigned_driver", "caller is not the trip's assigned driver")
    case errors.Is(err, service.ErrNotAuthorized):
        return apiError(c, http.StatusForbidden, "not_authorized", "caller may not view this trip's tracking data")
    case errors.Is(err, repository.ErrContention):
        return apiError(c, http.StatusServiceUnavailable, "contention", "storage is busy, retry shortly")
    }
    return apiError(c, http.StatusInternalServerError, "internal_error", "internal server error")
}

// pathID parses a positive uint64 path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    return id, err == nil && id > 0
}
