package storage

import (
	"context"
	"time"

	"bounty-recon/internal/domain"
)

// SnapshotStore provides access to refresh_runs and target_snapshots storage.
type SnapshotStore interface {
	// SaveRun stores a run and all of its target snapshots atomically.
	// Returns ErrDuplicateKey if run_id or any snapshot_id exists.
	SaveRun(ctx context.Context, run *domain.RunSnapshot) error

	// GetRun retrieves a run with its targets in stored order. Returns ErrNotFound if not exists.
	GetRun(ctx context.Context, runID string) (*domain.RunSnapshot, error)

	// GetTargetHistory retrieves snapshots of one target, newest first.
	// limit <= 0 returns all of them.
	GetTargetHistory(ctx context.Context, name string, limit int) ([]*domain.TargetSnapshot, error)
}

// TVLTimeseriesStore provides access to tvl_timeseries storage.
type TVLTimeseriesStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate (slug, run_id).
	InsertBulk(ctx context.Context, points []*domain.TVLPoint) error

	// GetBySlug retrieves points for a slug observed within [start, end] (inclusive),
	// ordered by observed_at ASC.
	GetBySlug(ctx context.Context, slug string, start, end time.Time) ([]*domain.TVLPoint, error)
}
