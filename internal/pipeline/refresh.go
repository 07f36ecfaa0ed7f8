// Package pipeline runs a TVL refresh: load, fetch, enrich, aggregate, sort, write.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"bounty-recon/internal/domain"
	"bounty-recon/internal/enrich"
	"bounty-recon/internal/observability"
	"bounty-recon/internal/reporting"
	"bounty-recon/internal/targets"
)

const topN = 3

// TVLSource supplies the live TVL lookup. Implementations never fail; an
// unavailable source returns an empty lookup.
type TVLSource interface {
	FetchTVL(ctx context.Context) domain.TVLLookup
}

// Refresh orchestrates one refresh run.
type Refresh struct {
	source   TVLSource
	logger   *zap.Logger
	metrics  *observability.Metrics
	recorder *Recorder
	clock    func() time.Time
}

// NewRefresh creates a refresh pipeline reading live TVL from source.
func NewRefresh(source TVLSource, logger *zap.Logger) *Refresh {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresh{
		source: source,
		logger: logger,
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

// WithMetrics records per-target and per-run metrics.
func (r *Refresh) WithMetrics(m *observability.Metrics) *Refresh {
	r.metrics = m
	return r
}

// WithRecorder persists each finished run. Recording happens after the
// output file is written and cannot fail the run.
func (r *Refresh) WithRecorder(rec *Recorder) *Refresh {
	r.recorder = rec
	return r
}

// WithClock sets a custom clock function for deterministic output.
func (r *Refresh) WithClock(clock func() time.Time) *Refresh {
	r.clock = clock
	return r
}

// Run enriches targets in place and returns the report. The returned
// report's Targets holds the same pointers, sorted.
func (r *Refresh) Run(ctx context.Context, list []*domain.Target) *domain.Report {
	r.logger.Info("fetching live TVL data")
	lookup := r.source.FetchTVL(ctx)

	now := r.clock().UTC()
	enricher := enrich.NewEnricher(lookup).WithClock(func() time.Time { return now })
	agg := enrich.NewAggregator()

	for _, t := range list {
		enricher.Enrich(t)
		agg.Add(t)
		r.metrics.RecordTarget(t.Live)
		r.logger.Debug("enriched target",
			zap.String("name", t.Name),
			zap.String("priority", string(t.Priority)),
			zap.Float64("tvl_usd", t.TVLUSD),
			zap.Bool("live", t.Live),
		)
	}

	enrich.SortTargets(list)

	stats := agg.Stats()
	stats.Top3ByTVL = enrich.TopNames(list, topN)
	stats.Top3ByBounty = enrich.TopNames(enrich.ByBounty(list), topN)

	for _, p := range domain.Priorities {
		r.metrics.RecordPriorityCount(string(p), stats.CountFor(p))
	}

	if list == nil {
		list = []*domain.Target{}
	}
	return &domain.Report{
		GeneratedAt:    now.Unix(),
		GeneratedAtISO: now.Format(time.RFC3339),
		Stats:          stats,
		Targets:        list,
	}
}

// Execute runs the whole tool: load input, refresh, write output, print the
// summary panel to summary. Only input and output errors are returned.
func (r *Refresh) Execute(ctx context.Context, inputPath, outputPath string, summary io.Writer) (*domain.Report, error) {
	start := time.Now()

	list, err := targets.Load(inputPath)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("loaded targets", zap.String("path", inputPath), zap.Int("count", len(list)))

	report := r.Run(ctx, list)

	if err := reporting.WriteJSON(outputPath, report); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}
	if err := reporting.RenderSummary(summary, report, outputPath); err != nil {
		r.logger.Warn("failed to print summary", zap.Error(err))
	}

	r.recorder.Record(ctx, report)

	r.metrics.RecordRun(time.Since(start).Seconds(), report.GeneratedAt)
	return report, nil
}
