package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestLoadTrackingConfigDefaults(t *testing.T) {
    cfg := LoadTrackingConfig()

    assert.Equal(t, 200.0, cfg.MaxAccuracyMeters)
    assert.Equal(t, 55.0, cfg.MaxSpeedMS)
    assert.Equal(t, 3*time.Second, cfg.MinInterval)
    assert.Equal(t, 7, cfg.RetentionDays)
    assert.Equal(t, 24*time.Hour, cfg.SweepInterval)
    assert.Equal(t, 3, cfg.AllocateMaxRetries)
}

func TestLoadTrackingConfigOverrides(t *testing.T) {
    t.Setenv("MAX_ACCURACY_METERS", "50")
    t.Setenv("MAX_SPEED_M_S", "33.5")
    t.Setenv("MIN_INTERVAL_SECONDS", "10")
    t.Setenv("TRACKING_RETENTION_DAYS", "30")
    t.Setenv("TRACKING_SWEEP_INTERVAL", "1h")
    t.Setenv("ALLOCATE_MAX_RETRIES", "5")

    cfg := LoadTrackingConfig()

    assert.Equal(t, 50.0, cfg.MaxAccuracyMeters)
    assert.Equal(t, 33.5, cfg.MaxSpeedMS)
    assert.Equal(t, 10*time.Second, cfg.MinInterval)
    assert.Equal(t, 30, cfg.RetentionDays)
    assert.Equal(t, time.Hour, cfg.SweepInterval)
    assert.Equal(t, 5, cfg.AllocateMaxRetries)
}

func TestLoadTrackingConfigClampsNonsense(t *testing.T) {
    t.Setenv("MAX_ACCURACY_METERS", "-1")
    t.Setenv("MAX_SPEED_M_S", "0")
    t.Setenv("MIN_INTERVAL_SECONDS", "0")
    t.Setenv("TRACKING_RETENTION_DAYS", "0")
    t.Setenv("ALLOCATE_MAX_RETRIES", "-2")

    cfg := LoadTrackingConfig()

    assert.Equal(t, 200.0, cfg.MaxAccuracyMeters)
    assert.Equal(t, 55.0, cfg.MaxSpeedMS)
    assert.Equal(t, 3*time.Second, cfg.MinInterval)
    assert.Equal(t, 7, cfg.RetentionDays)
    assert.Equal(t, 3, cfg.AllocateMaxRetries)
}

func TestLoadRateLimitConfigTTLFloor(t *testing.T) {
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")

    cfg := LoadRateLimitConfig()

    // TTL may never undercut the refill interval or buckets reset early.
    assert.Equal(t, 10*time.Second, cfg.TTL)
    assert.Equal(t, 2*time.Second, cfg.RefillInterval)
}

func TestLoadCacheConfigMethods(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head")

    cfg := LoadCacheConfig()

    assert.True(t, cfg.Methods["GET"])
    assert.True(t, cfg.Methods["HEAD"])
    assert.False(t, cfg.Methods["POST"])
}
