package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"bounty-recon/internal/domain"
	"bounty-recon/internal/storage"
)

// TVLTimeseriesStore is an in-memory implementation of storage.TVLTimeseriesStore.
type TVLTimeseriesStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.TVLPoint // keyed by slug
	keys map[tvlKey]struct{}
}

type tvlKey struct {
	slug  string
	runID string
}

// NewTVLTimeseriesStore creates a new in-memory TVL timeseries store.
func NewTVLTimeseriesStore() *TVLTimeseriesStore {
	return &TVLTimeseriesStore{
		data: make(map[string][]*domain.TVLPoint),
		keys: make(map[tvlKey]struct{}),
	}
}

// Compile-time interface check.
var _ storage.TVLTimeseriesStore = (*TVLTimeseriesStore)(nil)

// InsertBulk adds multiple points atomically. Fails entire batch on duplicate (slug, run_id).
func (s *TVLTimeseriesStore) InsertBulk(_ context.Context, points []*domain.TVLPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[tvlKey]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.Slug == "" {
			return storage.ErrInvalidInput
		}
		k := tvlKey{p.Slug, p.RunID}
		if _, exists := s.keys[k]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}
	}

	for _, p := range points {
		c := *p
		s.data[p.Slug] = append(s.data[p.Slug], &c)
		s.keys[tvlKey{p.Slug, p.RunID}] = struct{}{}
	}
	return nil
}

// GetBySlug retrieves points for a slug within [start, end] (inclusive), ordered by observed_at ASC.
func (s *TVLTimeseriesStore) GetBySlug(_ context.Context, slug string, start, end time.Time) ([]*domain.TVLPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TVLPoint
	for _, p := range s.data[slug] {
		if p.ObservedAt.Before(start) || p.ObservedAt.After(end) {
			continue
		}
		c := *p
		result = append(result, &c)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ObservedAt.Before(result[j].ObservedAt)
	})
	return result, nil
}
