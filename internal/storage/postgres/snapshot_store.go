package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bounty-recon/internal/domain"
	"bounty-recon/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using PostgreSQL.
type SnapshotStore struct {
	pool *Pool
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(pool *Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

const targetColumns = `
	snapshot_id, run_id, name, chain, tvl_usd, max_bounty_usd,
	priority, risk_score, tvl_source, generated_at
`

// SaveRun stores a run and its target snapshots in one transaction.
func (s *SnapshotStore) SaveRun(ctx context.Context, run *domain.RunSnapshot) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}
	for _, t := range run.Targets {
		if t == nil || t.SnapshotID == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO refresh_runs (
			run_id, generated_at, target_count, live_updates,
			total_tvl_usd, total_max_bounty_usd
		) VALUES ($1, $2, $3, $4, $5, $6)
	`,
		run.RunID, run.GeneratedAt, run.TargetCount, run.LiveUpdates,
		run.TotalTVLUSD, run.TotalMaxBountyUSD,
	)
	if err != nil {
		return translate("insert refresh run", err)
	}

	query := `
		INSERT INTO target_snapshots (` + targetColumns + `, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	for i, t := range run.Targets {
		_, err := tx.Exec(ctx, query,
			t.SnapshotID, run.RunID, t.Name, t.Chain, t.TVLUSD, t.MaxBountyUSD,
			string(t.Priority), t.RiskScore, t.TVLSource, t.GeneratedAt, i,
		)
		if err != nil {
			return translate("insert target snapshot", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetRun retrieves a run with its targets in stored order. Returns ErrNotFound if not exists.
func (s *SnapshotStore) GetRun(ctx context.Context, runID string) (*domain.RunSnapshot, error) {
	var run domain.RunSnapshot
	err := s.pool.QueryRow(ctx, `
		SELECT run_id, generated_at, target_count, live_updates,
			total_tvl_usd, total_max_bounty_usd
		FROM refresh_runs
		WHERE run_id = $1
	`, runID).Scan(
		&run.RunID, &run.GeneratedAt, &run.TargetCount, &run.LiveUpdates,
		&run.TotalTVLUSD, &run.TotalMaxBountyUSD,
	)
	if err != nil {
		return nil, translate("get refresh run", err)
	}
	run.GeneratedAt = run.GeneratedAt.UTC()

	rows, err := s.pool.Query(ctx, `
		SELECT `+targetColumns+`
		FROM target_snapshots
		WHERE run_id = $1
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query target snapshots: %w", err)
	}
	defer rows.Close()

	run.Targets, err = scanTargetSnapshots(rows)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetTargetHistory retrieves snapshots of one target, newest first.
func (s *SnapshotStore) GetTargetHistory(ctx context.Context, name string, limit int) ([]*domain.TargetSnapshot, error) {
	query := `
		SELECT ` + targetColumns + `
		FROM target_snapshots
		WHERE name = $1
		ORDER BY generated_at DESC, run_id ASC
	`
	args := []any{name}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query target history: %w", err)
	}
	defer rows.Close()

	return scanTargetSnapshots(rows)
}

// scanTargetSnapshots scans multiple rows.
func scanTargetSnapshots(rows pgx.Rows) ([]*domain.TargetSnapshot, error) {
	var result []*domain.TargetSnapshot
	for rows.Next() {
		var t domain.TargetSnapshot
		var priority string
		err := rows.Scan(
			&t.SnapshotID, &t.RunID, &t.Name, &t.Chain, &t.TVLUSD, &t.MaxBountyUSD,
			&priority, &t.RiskScore, &t.TVLSource, &t.GeneratedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan target snapshot: %w", err)
		}
		t.Priority = domain.Priority(priority)
		t.GeneratedAt = t.GeneratedAt.UTC()
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate target snapshots: %w", err)
	}
	return result, nil
}
