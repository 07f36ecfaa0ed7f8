package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bounty-recon/internal/domain"
	"bounty-recon/internal/storage"
	"bounty-recon/internal/storage/postgres"
)

func makeRun(runID string, at time.Time, names ...string) *domain.RunSnapshot {
	run := &domain.RunSnapshot{
		RunID:             runID,
		GeneratedAt:       at,
		TargetCount:       len(names),
		LiveUpdates:       1,
		TotalTVLUSD:       1e9,
		TotalMaxBountyUSD: 1e6,
	}
	for i, name := range names {
		run.Targets = append(run.Targets, &domain.TargetSnapshot{
			SnapshotID:   runID + "-" + name,
			RunID:        runID,
			Name:         name,
			Chain:        "Ethereum",
			TVLUSD:       float64(i+1) * 1e8,
			MaxBountyUSD: 1e5,
			Priority:     domain.PriorityHigh,
			RiskScore:    45,
			TVLSource:    domain.TVLSourceDefiLlama,
			GeneratedAt:  at,
		})
	}
	return run
}

func TestSnapshotStore_SaveAndGetRun(t *testing.T) {
	pool := setupTestDB(t)
	store := postgres.NewSnapshotStore(pool)
	ctx := context.Background()
	at := time.Date(2025, 2, 1, 8, 30, 0, 0, time.UTC)

	run := makeRun("run-1", at, "Lido", "Aave", "Curve")
	require.NoError(t, store.SaveRun(ctx, run))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	if diff := cmp.Diff(run, got); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotStore_DuplicateKey(t *testing.T) {
	pool := setupTestDB(t)
	store := postgres.NewSnapshotStore(pool)
	ctx := context.Background()
	at := time.Date(2025, 2, 1, 8, 30, 0, 0, time.UTC)

	require.NoError(t, store.SaveRun(ctx, makeRun("run-1", at, "Aave")))
	assert.ErrorIs(t, store.SaveRun(ctx, makeRun("run-1", at, "Lido")), storage.ErrDuplicateKey)

	// A clashing snapshot rolls back the whole run.
	clash := makeRun("run-2", at, "Lido")
	clash.Targets = append(clash.Targets, &domain.TargetSnapshot{SnapshotID: "run-1-Aave", Name: "Aave", GeneratedAt: at})
	assert.ErrorIs(t, store.SaveRun(ctx, clash), storage.ErrDuplicateKey)

	_, err := store.GetRun(ctx, "run-2")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSnapshotStore_GetTargetHistory(t *testing.T) {
	pool := setupTestDB(t)
	store := postgres.NewSnapshotStore(pool)
	ctx := context.Background()
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveRun(ctx, makeRun("run-b", base.Add(2*time.Hour), "Aave", "Lido")))
	require.NoError(t, store.SaveRun(ctx, makeRun("run-a", base.Add(time.Hour), "Aave")))
	require.NoError(t, store.SaveRun(ctx, makeRun("run-c", base.Add(3*time.Hour), "Lido")))

	history, err := store.GetTargetHistory(ctx, "Aave", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "run-b", history[0].RunID)
	assert.Equal(t, "run-a", history[1].RunID)

	limited, err := store.GetTargetHistory(ctx, "Lido", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "run-c", limited[0].RunID)

	none, err := store.GetTargetHistory(ctx, "Unknown", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSnapshotStore_InvalidInput(t *testing.T) {
	// Validation happens before any query.
	store := postgres.NewSnapshotStore(nil)
	ctx := context.Background()

	assert.ErrorIs(t, store.SaveRun(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.SaveRun(ctx, &domain.RunSnapshot{}), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.SaveRun(ctx, &domain.RunSnapshot{
		RunID:   "run-1",
		Targets: []*domain.TargetSnapshot{{Name: "Aave"}},
	}), storage.ErrInvalidInput)
}
