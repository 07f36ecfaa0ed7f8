package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"bounty-recon/internal/domain"
	"bounty-recon/internal/idhash"
	"bounty-recon/internal/observability"
	"bounty-recon/internal/storage/memory"
)

type failingSnapshots struct{}

func (failingSnapshots) SaveRun(context.Context, *domain.RunSnapshot) error {
	return errors.New("connection reset")
}

func (failingSnapshots) GetRun(context.Context, string) (*domain.RunSnapshot, error) {
	return nil, errors.New("connection reset")
}

func (failingSnapshots) GetTargetHistory(context.Context, string, int) ([]*domain.TargetSnapshot, error) {
	return nil, errors.New("connection reset")
}

func enrichedReport() *domain.Report {
	return &domain.Report{
		GeneratedAt: fixedNow.Unix(),
		Stats:       domain.Stats{CountTargets: 3, CountLiveUpdates: 1, TotalTVLUSD: 30},
		Targets: []*domain.Target{
			{Name: "Aave", Chain: "Ethereum", TVLUSD: 10, Priority: domain.PriorityCritical, Live: true, TVLSource: domain.TVLSourceDefiLlama},
			{Name: "Fork", TVLUSD: 10, Priority: domain.PriorityLow},
			{Name: "Fork", TVLUSD: 10, Priority: domain.PriorityLow},
		},
	}
}

func TestBuildRunSnapshot(t *testing.T) {
	run := BuildRunSnapshot("run-1", fixedNow, enrichedReport())

	assert.Equal(t, "run-1", run.RunID)
	assert.Equal(t, 3, run.TargetCount)
	assert.Equal(t, 1, run.LiveUpdates)
	require.Len(t, run.Targets, 3)

	assert.Equal(t, idhash.ComputeSnapshotID("run-1", "Aave"), run.Targets[0].SnapshotID)
	assert.Equal(t, domain.UnknownChain, run.Targets[1].Chain)
	assert.Equal(t, idhash.ComputeSnapshotID("run-1", "Fork"), run.Targets[1].SnapshotID)
	assert.Equal(t, idhash.ComputeSnapshotID("run-1", "Fork#1"), run.Targets[2].SnapshotID)
	assert.Equal(t, "Fork", run.Targets[2].Name)
}

func TestBuildTVLPoints(t *testing.T) {
	list := []*domain.Target{
		{Name: "Aave", TVLUSD: 5, Live: true},
		{Name: "Aave", TVLUSD: 5, Live: true},
		{Name: "Lido", TVLUSD: 7},
		{Name: "Unmapped", TVLUSD: 9, Live: true},
	}

	points := BuildTVLPoints("run-1", fixedNow, list)

	require.Len(t, points, 1)
	assert.Equal(t, "aave", points[0].Slug)
	assert.Equal(t, fixedNow, points[0].ObservedAt)
	assert.Equal(t, domain.UnknownChain, points[0].Chain)
}

func TestRecorder_Record(t *testing.T) {
	snapshots := memory.NewSnapshotStore()
	tvl := memory.NewTVLTimeseriesStore()
	rec := NewRecorder(snapshots, tvl, nil).WithRunID("run-1")

	runID := rec.Record(context.Background(), enrichedReport())
	assert.Equal(t, "run-1", runID)

	run, err := snapshots.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, fixedNow, run.GeneratedAt)

	points, err := tvl.GetBySlug(context.Background(), "aave", time.Time{}, fixedNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, points, 1)
}

func TestRecorder_Record_FailuresAreWarnings(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	m := observability.NewMetrics("")
	tvl := memory.NewTVLTimeseriesStore()
	rec := NewRecorder(failingSnapshots{}, tvl, zap.New(core)).WithRunID("run-1").WithMetrics(m)

	rec.Record(context.Background(), enrichedReport())
	// Same run id again: the TVL insert now hits a duplicate key.
	rec.Record(context.Background(), enrichedReport())

	require.Equal(t, 3, logs.Len())
	assert.Equal(t, "failed to save run snapshot", logs.All()[0].Message)
	assert.Equal(t, "failed to insert TVL timeseries", logs.All()[2].Message)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StoreErrors.WithLabelValues("snapshots")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreErrors.WithLabelValues("tvl_timeseries")))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var rec *Recorder
	assert.Empty(t, rec.Record(context.Background(), enrichedReport()))
	assert.Empty(t, NewRecorder(nil, nil, nil).Record(context.Background(), enrichedReport()))
}
