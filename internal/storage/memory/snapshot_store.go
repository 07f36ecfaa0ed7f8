package memory

import (
	"context"
	"sort"
	"sync"

	"bounty-recon/internal/domain"
	"bounty-recon/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu        sync.RWMutex
	runs      map[string]*domain.RunSnapshot // keyed by run_id
	order     []string                       // run_ids in insertion order
	snapshots map[string]struct{}            // snapshot_ids already stored
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		runs:      make(map[string]*domain.RunSnapshot),
		snapshots: make(map[string]struct{}),
	}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// SaveRun stores a run atomically. Returns ErrDuplicateKey if run_id or a snapshot_id exists.
func (s *SnapshotStore) SaveRun(_ context.Context, run *domain.RunSnapshot) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	// First pass: validate every snapshot (existing + intra-batch)
	batchKeys := make(map[string]struct{}, len(run.Targets))
	for _, t := range run.Targets {
		if t == nil || t.SnapshotID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.snapshots[t.SnapshotID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[t.SnapshotID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[t.SnapshotID] = struct{}{}
	}

	// Second pass: store
	for id := range batchKeys {
		s.snapshots[id] = struct{}{}
	}
	s.runs[run.RunID] = copyRun(run)
	s.order = append(s.order, run.RunID)
	return nil
}

// GetRun retrieves a run by ID. Returns ErrNotFound if not exists.
func (s *SnapshotStore) GetRun(_ context.Context, runID string) (*domain.RunSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyRun(run), nil
}

// GetTargetHistory retrieves snapshots of one target, newest first.
func (s *SnapshotStore) GetTargetHistory(_ context.Context, name string, limit int) ([]*domain.TargetSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TargetSnapshot
	// Walk runs newest-inserted first so equal timestamps keep that order.
	for i := len(s.order) - 1; i >= 0; i-- {
		for _, t := range s.runs[s.order[i]].Targets {
			if t.Name == name {
				c := *t
				result = append(result, &c)
			}
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].GeneratedAt.After(result[j].GeneratedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func copyRun(run *domain.RunSnapshot) *domain.RunSnapshot {
	c := *run
	c.Targets = make([]*domain.TargetSnapshot, len(run.Targets))
	for i, t := range run.Targets {
		tc := *t
		c.Targets[i] = &tc
	}
	return &c
}
