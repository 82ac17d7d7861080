// AngelaMos | 2026
// janitor.go

package subscription

import (
	"context"
	"log/slog"
	"time"
)

const DefaultCleanupInterval = 10 * time.Minute

// Janitor periodically purges expired subscriptions for every user. Reads
// never trigger cleanup on their own.
type Janitor struct {
	service  *Service
	interval time.Duration
	logger   *slog.Logger
}

func NewJanitor(service *Service, interval time.Duration, logger *slog.Logger) *Janitor {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps once right away and then once per interval until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	j.logger.Info("subscription janitor started", "interval", j.interval)

	j.sweep(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("subscription janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	start := time.Now()

	removed, err := j.service.CleanupAll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		j.logger.Error("subscription sweep failed", "error", err)
		return
	}

	j.logger.Debug("subscription sweep complete",
		"removed", removed,
		"duration", time.Since(start),
	)
}
