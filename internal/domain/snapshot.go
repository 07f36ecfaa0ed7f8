package domain

import "time"

// RunSnapshot records one refresh run.
// Corresponds to refresh_runs table in PostgreSQL.
type RunSnapshot struct {
	RunID             string    // PRIMARY KEY, uuid
	GeneratedAt       time.Time // UTC, second precision
	TargetCount       int
	LiveUpdates       int
	TotalTVLUSD       float64
	TotalMaxBountyUSD float64
	Targets           []*TargetSnapshot
}

// TargetSnapshot is the state of one target at the end of a run.
// Corresponds to target_snapshots table in PostgreSQL.
type TargetSnapshot struct {
	SnapshotID   string // PRIMARY KEY, deterministic hash of run_id|name
	RunID        string
	Name         string
	Chain        string // "unknown" when absent
	TVLUSD       float64
	MaxBountyUSD float64
	Priority     Priority
	RiskScore    int
	TVLSource    string // empty when not refreshed live
	GeneratedAt  time.Time
}

// TVLPoint is one live TVL observation.
// Corresponds to tvl_timeseries table in ClickHouse.
type TVLPoint struct {
	Slug       string
	Name       string
	Chain      string
	TVLUSD     float64
	ObservedAt time.Time // UTC, second precision
	RunID      string
}
