package config

import "time"

// TrackingConfig carries the knobs for the position ingestion pipeline and
// the retention sweeper.  Defaults match the values the mobile clients were
// tuned against; deployments override them per environment.
type TrackingConfig struct {
    MaxAccuracyMeters  float64       // fixes less precise than this are rejected
    MaxSpeedMS         float64       // plausibility ceiling for reported speed (m/s)
    MinInterval        time.Duration // minimum time between stored samples per session
    RetentionDays      int           // position samples older than this are purged
    SweepInterval      time.Duration // how often the in-process sweeper runs
    AllocateMaxRetries int           // bounded retries for contended seat allocation
}

// LoadTrackingConfig reads the tracking/allocation settings from the
// environment, falling back to the documented defaults.  MIN_INTERVAL_SECONDS
// is an integer for parity with the client configuration.
func LoadTrackingConfig() TrackingConfig {
    cfg := TrackingConfig{
        MaxAccuracyMeters:  envFloat("MAX_ACCURACY_METERS", 200),
        MaxSpeedMS:         envFloat("MAX_SPEED_M_S", 55),
        MinInterval:        time.Duration(envInt("MIN_INTERVAL_SECONDS", 3)) * time.Second,
        RetentionDays:      envInt("TRACKING_RETENTION_DAYS", 7),
        SweepInterval:      envDur("TRACKING_SWEEP_INTERVAL", 24*time.Hour),
        AllocateMaxRetries: envInt("ALLOCATE_MAX_RETRIES", 3),
    }
    if cfg.MaxAccuracyMeters <= 0 {
        cfg.MaxAccuracyMeters = 200
    }
    if cfg.MaxSpeedMS <= 0 {
        cfg.MaxSpeedMS = 55
    }
    if cfg.MinInterval <= 0 {
        cfg.MinInterval = 3 * time.Second
    }
    if cfg.RetentionDays < 1 {
        cfg.RetentionDays = 7
    }
    if cfg.SweepInterval <= 0 {
        cfg.SweepInterval = 24 * time.Hour
    }
    if cfg.AllocateMaxRetries < 1 {
        cfg.AllocateMaxRetries = 3
    }
    return cfg
}
