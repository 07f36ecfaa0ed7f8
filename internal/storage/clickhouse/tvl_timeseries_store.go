package clickhouse

import (
	"context"
	"fmt"
	"time"

	"bounty-recon/internal/domain"
	"bounty-recon/internal/storage"
)

// TVLTimeseriesStore implements storage.TVLTimeseriesStore using ClickHouse.
type TVLTimeseriesStore struct {
	conn *Conn
}

// NewTVLTimeseriesStore creates a new TVLTimeseriesStore.
func NewTVLTimeseriesStore(conn *Conn) *TVLTimeseriesStore {
	return &TVLTimeseriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TVLTimeseriesStore = (*TVLTimeseriesStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (slug, run_id).
// MergeTree does not enforce keys, so duplicates are checked before the insert.
func (s *TVLTimeseriesStore) InsertBulk(ctx context.Context, points []*domain.TVLPoint) error {
	if len(points) == 0 {
		return nil
	}

	type key struct {
		slug  string
		runID string
	}
	seen := make(map[key]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.Slug == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.Slug, p.RunID}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, p := range points {
		exists, err := s.exists(ctx, p.Slug, p.RunID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO tvl_timeseries (
			slug, name, chain, tvl_usd, observed_at, run_id
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(p.Slug, p.Name, p.Chain, p.TVLUSD, p.ObservedAt.UTC(), p.RunID)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetBySlug retrieves points for a slug within [start, end] (inclusive), ordered by observed_at ASC.
func (s *TVLTimeseriesStore) GetBySlug(ctx context.Context, slug string, start, end time.Time) ([]*domain.TVLPoint, error) {
	query := `
		SELECT slug, name, chain, tvl_usd, observed_at, run_id
		FROM tvl_timeseries
		WHERE slug = ? AND observed_at >= ? AND observed_at <= ?
		ORDER BY observed_at ASC
	`

	rows, err := s.conn.Query(ctx, query, slug, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("query by slug: %w", err)
	}
	defer rows.Close()

	return scanTVLPoints(rows)
}

// exists checks if a point with the given key exists.
func (s *TVLTimeseriesStore) exists(ctx context.Context, slug, runID string) (bool, error) {
	query := `
		SELECT count(*) FROM tvl_timeseries
		WHERE slug = ? AND run_id = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, slug, runID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanTVLPoints scans multiple rows.
func scanTVLPoints(rows chRows) ([]*domain.TVLPoint, error) {
	var points []*domain.TVLPoint

	for rows.Next() {
		var p domain.TVLPoint
		err := rows.Scan(&p.Slug, &p.Name, &p.Chain, &p.TVLUSD, &p.ObservedAt, &p.RunID)
		if err != nil {
			return nil, fmt.Errorf("scan tvl timeseries row: %w", err)
		}
		p.ObservedAt = p.ObservedAt.UTC()
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tvl timeseries rows: %w", err)
	}
	return points, nil
}
