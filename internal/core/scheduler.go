package core

// scheduler.go runs periodic maintenance:
//  1. Close table sessions idle longer than the session TTL
//  2. Purge stored form drafts older than the draft retention
//
// The sweeper is long-running and stops with its context. Failures are
// logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// StartSweeper runs Sweep every interval until ctx is cancelled.
// It blocks; call it in its own goroutine.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	slog.Info("session sweeper started",
		"interval", interval.String(),
		"session_ttl", s.cfg.SessionTTL.String(),
		"draft_retention", s.cfg.DraftRetention.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs one eviction + purge cycle.
func (s *Service) Sweep(ctx context.Context) SweepResult {
	start := time.Now()
	var res SweepResult

	res.SessionsEvicted = s.EvictIdle()

	purged, err := s.drafts.Purge(ctx, s.cfg.DraftRetention)
	if err != nil {
		slog.Error("draft purge failed", "error", err)
	} else {
		res.DraftsPurged = purged
	}

	if res.SessionsEvicted > 0 || res.DraftsPurged > 0 {
		slog.Info("sweep completed",
			"sessions_evicted", res.SessionsEvicted,
			"drafts_purged", res.DraftsPurged,
			"sessions_open", s.SessionCount(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	return res
}
