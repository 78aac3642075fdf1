// Package cleanup drives the final transition of the record lifecycle
// (active -> soft_deleted -> purged). Nothing else ever removes rows
// physically.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type CleanupStorage interface {
	HardDeleteLogsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteOrphanReferences(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

type Runner struct {
	log       *slog.Logger
	storage   CleanupStorage
	retention time.Duration
	interval  time.Duration
}

func New(log *slog.Logger, storage CleanupStorage, retention, interval time.Duration) *Runner {
	return &Runner{log: log, storage: storage, retention: retention, interval: interval}
}

// Run purges once at start, then on every tick until the context ends.
func (r *Runner) Run(ctx context.Context) {
	const op = "service.cleanup.Run"

	if err := r.PurgeOnce(ctx); err != nil {
		r.log.Error("cleanup failed", slog.String("op", op), slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.PurgeOnce(ctx); err != nil {
				r.log.Error("cleanup failed", slog.String("op", op), slog.String("error", err.Error()))
			}
		}
	}
}

// PurgeOnce hard-deletes soft-deleted logs past retention, then reclaims
// reference rows nothing references anymore, then drops expired sessions.
// Logs go first so references orphaned by the purge are collected in the
// same pass.
func (r *Runner) PurgeOnce(ctx context.Context) error {
	const op = "service.cleanup.PurgeOnce"

	cutoff := time.Now().Add(-r.retention)

	purged, err := r.storage.HardDeleteLogsOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("%s: purge logs: %w", op, err)
	}

	orphans, err := r.storage.DeleteOrphanReferences(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("%s: reclaim references: %w", op, err)
	}

	sessions, err := r.storage.DeleteExpiredSessions(ctx)
	if err != nil {
		return fmt.Errorf("%s: expire sessions: %w", op, err)
	}

	r.log.Info("cleanup pass done",
		slog.Int64("purged_logs", purged),
		slog.Int64("orphan_references", orphans),
		slog.Int64("expired_sessions", sessions),
	)

	return nil
}
