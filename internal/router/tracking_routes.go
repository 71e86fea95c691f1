package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/meshwar/ride-backend/internal/config"
    "github.com/meshwar/ride-backend/internal/handler"
    "github.com/meshwar/ride-backend/internal/middleware"
)

// RegisterTracking registers the tracking endpoints under /v1/tracking.
// Write endpoints are driver-only (ending a session additionally allows
// admins, enforced in the service); the read endpoints accept any
// authenticated role because the fine-grained viewing policy lives in the
// service layer and depends on reservation state, not on the role alone.
func RegisterTracking(e *echo.Echo, h *handler.TrackingHandler, jwtSecret string,
    rlCfg config.RateLimitConfig, rdb *redis.Client) {

    limited := middleware.NewTokenBucket(rlCfg, rdb)

    driver := e.Group(
        "/v1/tracking",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("DRIVER"),
        limited,
    )
    driver.POST("/start", h.Start)
    driver.POST("/position", h.Position)

    // End accepts DRIVER and ADMIN; the service verifies the driver owns
    // the session while admins may end any.
    e.POST("/v1/tracking/end", h.End,
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("DRIVER", "ADMIN"),
        limited,
    )

    authed := e.Group(
        "/v1/tracking",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("PASSENGER", "DRIVER", "ADMIN"),
        limited,
    )
    authed.GET("/session", h.Session)
    authed.GET("/positions", h.Positions)

    admin := e.Group(
        "/v1/admin/tracking",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("ADMIN"),
    )
    admin.POST("/purge", h.Purge)
}
