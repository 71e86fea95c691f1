package handler

import (
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/meshwar/ride-backend/internal/model"
    "github.com/meshwar/ride-backend/internal/service"
)

// TrackingHandler exposes the trip-tracking API: driver session lifecycle,
// position ingestion, the policy-gated read endpoints and the admin purge.
type TrackingHandler struct {
    Tracking      *service.Tracking
    RetentionDays int // default for the admin purge endpoint
}

func NewTrackingHandler(tracking *service.Tracking, retentionDays int) *TrackingHandler {
    if tracking == nil {
        panic("nil service passed to NewTrackingHandler")
    }
    return &TrackingHandler{Tracking: tracking, RetentionDays: retentionDays}
}

// Start handles POST /v1/tracking/start. Starting a session is the driver's
// consent act; repeating the call while a session is active returns the
// existing one with 200 instead of 201.
func (h *TrackingHandler) Start(c echo.Context) error {
    caller, err := getIdentity(c)
    if err != nil {
        return apiError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
    }
    var body struct {
        TripID uint64 `json:"trip_id"`
    }
    if err := c.Bind(&body); err != nil || body.TripID == 0 {
        return apiError(c, http.StatusBadRequest, "invalid_body", "trip_id is required")
    }

    sess, created, err := h.Tracking.StartSession(c.Request().Context(), body.TripID, caller)
    if err != nil {
        return respondServiceError(c, err)
    }
    status := http.StatusOK
    if created {
        status = http.StatusCreated
    }
    return c.JSON(status, sessionJSON(sess))
}

// End handles POST /v1/tracking/end. The assigned driver may end their own
// session; admins may end any. Ending an already-ended session is a no-op.
func (h *TrackingHandler) End(c echo.Context) error {
    caller, err := getIdentity(c)
    if err != nil {
        return apiError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
    }
    var body struct {
        SessionID uint64 `json:"session_id"`
    }
    if err := c.Bind(&body); err != nil || body.SessionID == 0 {
        return apiError(c, http.StatusBadRequest, "invalid_body", "session_id is required")
    }

    if err := h.Tracking.EndSession(c.Request().Context(), body.SessionID, caller); err != nil {
        return respondServiceError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"session_id": body.SessionID, "status": model.SessionEnded})
}

// positionRequest is the body of POST /v1/tracking/position. Lat and lng are
// pointers so a missing field is distinguishable from a legitimate zero
// coordinate.
type positionRequest struct {
    SessionID uint64   `json:"session_id" validate:"required"`
    Lat       *float64 `json:"lat" validate:"required"`
    Lng       *float64 `json:"lng" validate:"required"`
    AccuracyM *float64 `json:"accuracy_m"`
    SpeedMS   *float64 `json:"speed_m_s"`
}

// Position handles POST /v1/tracking/position.
func (h *TrackingHandler) Position(c echo.Context) error {
    caller, err := getIdentity(c)
    if err != nil {
        return apiError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
    }
    var body positionRequest
    if err := c.Bind(&body); err != nil {
        return apiError(c, http.StatusBadRequest, "invalid_body", "invalid request body")
    }
    if err := c.Validate(&body); err != nil {
        return apiError(c, http.StatusBadRequest, "invalid_body", "session_id, lat and lng are required")
    }

    sample, err := h.Tracking.Ingest(c.Request().Context(), body.SessionID, caller.UserID,
        *body.Lat, *body.Lng, body.AccuracyM, body.SpeedMS)
    if err != nil {
        return respondServiceError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "id":      sample.ID,
        "sent_at": sample.SentAt.UTC().Format(time.RFC3339),
    })
}

// Session handles GET /v1/tracking/session?trip_id=. Admins, the assigned
// driver and passengers with a confirmed reservation may view; everyone
// else gets 403 regardless of whether a session exists.
func (h *TrackingHandler) Session(c echo.Context) error {
    caller, err := getIdentity(c)
    if err != nil {
        return apiError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
    }
    tripID, err := strconv.ParseUint(c.QueryParam("trip_id"), 10, 64)
    if err != nil || tripID == 0 {
        return apiError(c, http.StatusBadRequest, "invalid_trip_id", "trip_id query parameter is required")
    }

    snap, err := h.Tracking.GetActiveSession(c.Request().Context(), tripID, caller)
    if err != nil {
        return respondServiceError(c, err)
    }
    return c.JSON(http.StatusOK, snap)
}

// Positions handles GET /v1/tracking/positions?session_id=&limit=.
func (h *TrackingHandler) Positions(c echo.Context) error {
    caller, err := getIdentity(c)
    if err != nil {
        return apiError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
    }
    sessionID, err := strconv.ParseUint(c.QueryParam("session_id"), 10, 64)
    if err != nil || sessionID == 0 {
        return apiError(c, http.StatusBadRequest, "invalid_session_id", "session_id query parameter is required")
    }
    limit := 0
    if raw := c.QueryParam("limit"); raw != "" {
        n, err := strconv.Atoi(raw)
        if err != nil || n < 0 {
            return apiError(c, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
        }
        limit = n
    }

    samples, err := h.Tracking.GetPositions(c.Request().Context(), sessionID, caller, limit)
    if err != nil {
        return respondServiceError(c, err)
    }
    out := make([]echo.Map, 0, len(samples))
    for i := range samples {
        out = append(out, positionJSON(&samples[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"session_id": sessionID, "positions": out})
}

// Purge handles POST /v1/admin/tracking/purge. An optional retention_days
// query overrides the configured default for this run only.
func (h *TrackingHandler) Purge(c echo.Context) error {
    days := h.RetentionDays
    if raw := c.QueryParam("retention_days"); raw != "" {
        n, err := strconv.Atoi(raw)
        if err != nil || n < 1 {
            return apiError(c, http.StatusBadRequest, "invalid_retention_days", "retention_days must be a positive integer")
        }
        days = n
    }
    deleted, err := h.Tracking.PurgePositionsOlderThan(c.Request().Context(), days)
    if err != nil {
        return apiError(c, http.StatusInternalServerError, "internal_error", "database error")
    }
    return c.JSON(http.StatusOK, echo.Map{"deleted_count": deleted, "retention_days": days})
}

func sessionJSON(s *model.TrackingSession) echo.Map {
    m := echo.Map{
        "session_id": s.ID,
        "trip_id":    s.TripID,
        "driver_id":  s.DriverID,
        "consent_at": s.ConsentAt.UTC().Format(time.RFC3339),
        "started_at": s.StartedAt.UTC().Format(time.RFC3339),
        "status":     s.Status,
    }
    if s.EndedAt != nil {
        m["ended_at"] = s.EndedAt.UTC().Format(time.RFC3339)
    }
    return m
}

func positionJSON(p *model.PositionSample) echo.Map {
    m := echo.Map{
        "id":      p.ID,
        "lat":     p.Lat,
        "lng":     p.Lng,
        "sent_at": p.SentAt.UTC().Format(time.RFC3339),
    }
    if p.AccuracyM != nil {
        m["accuracy_m"] = *p.AccuracyM
    }
    if p.SpeedMS != nil {
        m["speed_m_s"] = *p.SpeedMS
    }
    return m
}
