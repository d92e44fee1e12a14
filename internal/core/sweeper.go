package core

// sweeper.go removes temp uploads left behind by failed imports.
//
// Failed imports keep their temp file so it can be inspected. The sweeper
// runs on start and then every Interval, deleting uploads older than
// Retention. Individual sweep failures are logged and never stop the loop.

import (
	"context"
	"log/slog"
	"time"
)

// SweepConfig holds the sweeper schedule.
type SweepConfig struct {
	Retention time.Duration // Age after which a temp upload is removed (default: 24h)
	Interval  time.Duration // How often to sweep (default: 1h)
}

func (c SweepConfig) withDefaults() SweepConfig {
	if c.Retention <= 0 {
		c.Retention = 24 * time.Hour
	}
	if c.Interval <= 0 {
		c.Interval = time.Hour
	}
	return c
}

// StartSweeper blocks, sweeping abandoned temp uploads until ctx is
// cancelled. Run it in its own goroutine.
func (s *Service) StartSweeper(ctx context.Context, cfg SweepConfig) {
	cfg = cfg.withDefaults()
	slog.Info("temp sweeper started", "retention", cfg.Retention, "interval", cfg.Interval)

	s.SweepOnce(ctx, cfg.Retention)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("temp sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx, cfg.Retention)
		}
	}
}

// SweepOnce removes temp uploads older than retention and returns how many
// were removed.
func (s *Service) SweepOnce(ctx context.Context, retention time.Duration) int {
	start := time.Now()
	removed, err := s.temp.Sweep(ctx, start.Add(-retention))
	if err != nil {
		slog.Error("temp sweep failed", "error", err, "removed", removed)
		return removed
	}
	if removed > 0 {
		slog.Info("removed abandoned temp uploads",
			"removed", removed,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return removed
}
