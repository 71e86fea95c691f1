// Package router wires HTTP routes to handlers and their middleware.
package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/meshwar/ride-backend/internal/config"
    "github.com/meshwar/ride-backend/internal/handler"
    "github.com/meshwar/ride-backend/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated trip browse endpoints behind
// the Redis response cache. Only these routes are cached; authenticated
// endpoints must always be served live.
func RegisterPublic(e *echo.Echo, t *handler.TripHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
    cached := middleware.NewRedisCache(cacheCfg, rdb)
    e.GET("/v1/trips", t.List, cached)
    e.GET("/v1/trips/:id", t.Get, cached)
}
