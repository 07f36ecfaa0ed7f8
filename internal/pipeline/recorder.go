package pipeline

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"bounty-recon/internal/domain"
	"bounty-recon/internal/enrich"
	"bounty-recon/internal/idhash"
	"bounty-recon/internal/observability"
	"bounty-recon/internal/storage"
)

// Recorder writes finished runs to the optional history stores.
// A nil Recorder, or one without stores, records nothing.
type Recorder struct {
	snapshots storage.SnapshotStore
	tvl       storage.TVLTimeseriesStore
	logger    *zap.Logger
	metrics   *observability.Metrics
	newRunID  func() string
}

// NewRecorder creates a recorder. Either store may be nil.
func NewRecorder(snapshots storage.SnapshotStore, tvl storage.TVLTimeseriesStore, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		snapshots: snapshots,
		tvl:       tvl,
		logger:    logger,
		newRunID:  idhash.NewRunID,
	}
}

// WithMetrics counts store failures.
func (rec *Recorder) WithMetrics(m *observability.Metrics) *Recorder {
	rec.metrics = m
	return rec
}

// WithRunID fixes the run id, for reproducible tests and re-imports.
func (rec *Recorder) WithRunID(runID string) *Recorder {
	rec.newRunID = func() string { return runID }
	return rec
}

// Record persists report. Failures are logged as warnings and never returned.
func (rec *Recorder) Record(ctx context.Context, report *domain.Report) string {
	if rec == nil || (rec.snapshots == nil && rec.tvl == nil) {
		return ""
	}

	runID := rec.newRunID()
	at := time.Unix(report.GeneratedAt, 0).UTC()

	if rec.snapshots != nil {
		if err := rec.snapshots.SaveRun(ctx, BuildRunSnapshot(runID, at, report)); err != nil {
			rec.metrics.RecordStoreError("snapshots")
			rec.logger.Warn("failed to save run snapshot", zap.String("run_id", runID), zap.Error(err))
		}
	}

	if rec.tvl != nil {
		points := BuildTVLPoints(runID, at, report.Targets)
		if err := rec.tvl.InsertBulk(ctx, points); err != nil {
			rec.metrics.RecordStoreError("tvl_timeseries")
			rec.logger.Warn("failed to insert TVL timeseries", zap.String("run_id", runID), zap.Error(err))
		}
	}

	rec.logger.Debug("recorded run", zap.String("run_id", runID))
	return runID
}

// BuildRunSnapshot converts a report into its stored form. Targets keep report order.
func BuildRunSnapshot(runID string, at time.Time, report *domain.Report) *domain.RunSnapshot {
	run := &domain.RunSnapshot{
		RunID:             runID,
		GeneratedAt:       at,
		TargetCount:       report.Stats.CountTargets,
		LiveUpdates:       report.Stats.CountLiveUpdates,
		TotalTVLUSD:       report.Stats.TotalTVLUSD,
		TotalMaxBountyUSD: report.Stats.TotalMaxBountyUSD,
		Targets:           make([]*domain.TargetSnapshot, 0, len(report.Targets)),
	}

	// Repeated names get an occurrence suffix so snapshot ids stay unique.
	seen := make(map[string]int, len(report.Targets))
	for _, t := range report.Targets {
		key := t.Name
		if n := seen[t.Name]; n > 0 {
			key = t.Name + "#" + strconv.Itoa(n)
		}
		seen[t.Name]++

		run.Targets = append(run.Targets, &domain.TargetSnapshot{
			SnapshotID:   idhash.ComputeSnapshotID(runID, key),
			RunID:        runID,
			Name:         t.Name,
			Chain:        t.ChainOrUnknown(),
			TVLUSD:       t.TVLUSD,
			MaxBountyUSD: t.MaxBountyUSD,
			Priority:     t.Priority,
			RiskScore:    t.RiskScore,
			TVLSource:    t.TVLSource,
			GeneratedAt:  at,
		})
	}
	return run
}

// BuildTVLPoints returns one point per target refreshed live in this run.
func BuildTVLPoints(runID string, at time.Time, list []*domain.Target) []*domain.TVLPoint {
	var points []*domain.TVLPoint
	seen := make(map[string]struct{})
	for _, t := range list {
		if !t.Live {
			continue
		}
		slug, ok := enrich.SlugFor(t.Name)
		if !ok {
			continue
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		points = append(points, &domain.TVLPoint{
			Slug:       slug,
			Name:       t.Name,
			Chain:      t.ChainOrUnknown(),
			TVLUSD:     t.TVLUSD,
			ObservedAt: at,
			RunID:      runID,
		})
	}
	return points
}
