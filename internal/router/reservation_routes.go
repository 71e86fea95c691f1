package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/meshwar/ride-backend/internal/config"
    "github.com/meshwar/ride-backend/internal/handler"
    "github.com/meshwar/ride-backend/internal/middleware"
)

// RegisterReservations registers passenger booking endpoints under /v1.
// All routes require a valid JWT with the PASSENGER role and pass through
// the token-bucket limiter; booking storms around popular departures are
// the main load spike this service sees.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string,
    rlCfg config.RateLimitConfig, rdb *redis.Client) {

    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("PASSENGER"),
        middleware.NewTokenBucket(rlCfg, rdb),
    )
    g.POST("/trips/:id/reservations", h.Create)
    g.GET("/my-reservations", h.ListMine)
    g.GET("/reservations/:id", h.Get)
}
