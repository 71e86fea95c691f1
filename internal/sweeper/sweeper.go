// Package sweeper runs the periodic retention job that deletes old position
// samples. Sessions are never touched; only samples past the retention
// window are removed.
package sweeper

import (
    "context"
    "time"

    "github.com/sirupsen/logrus"

    "github.com/meshwar/ride-backend/internal/service"
)

// Sweeper periodically purges position samples older than the retention
// window. Deleting by absolute cutoff makes the job idempotent: a second
// run over the same window deletes nothing.
type Sweeper struct {
    tracking      *service.Tracking
    interval      time.Duration
    retentionDays int
    log           *logrus.Logger
}

func New(tracking *service.Tracking, interval time.Duration, retentionDays int, log *logrus.Logger) *Sweeper {
    return &Sweeper{tracking: tracking, interval: interval, retentionDays: retentionDays, log: log}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
// Intended to be launched as a goroutine from main.
func (s *Sweeper) Run(ctx context.Context) {
    s.sweep(ctx)

    ticker := time.NewTicker(s.interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            s.log.Info("retention sweeper stopped")
            return
        case <-ticker.C:
            s.sweep(ctx)
        }
    }
}

func (s *Sweeper) sweep(ctx context.Context) {
    deleted, err := s.tracking.PurgePositionsOlderThan(ctx, s.retentionDays)
    if err != nil {
        s.log.WithError(err).Error("retention sweep failed")
        return
    }
    s.log.WithFields(logrus.Fields{
        "deleted_count":  deleted,
        "retention_days": s.retentionDays,
    }).Info("retention sweep completed")
}
