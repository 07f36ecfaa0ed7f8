package domain

// TVLLookup maps a lowercase protocol slug to its live TVL in USD.
// Built once per run from the API response and never mutated afterwards.
type TVLLookup map[string]float64

// Get returns the TVL for slug, 0 when unknown.
func (l TVLLookup) Get(slug string) float64 {
	return l[slug]
}

// Stats is the statistics block of a refresh report.
type Stats struct {
	CountTargets            int            `json:"count_targets"`
	CountCritical           int            `json:"count_critical"`
	CountHigh               int            `json:"count_high"`
	CountMedium             int            `json:"count_medium"`
	CountLow                int            `json:"count_low"`
	CountLiveUpdates        int            `json:"count_live_updates"`
	TotalTVLUSD             float64        `json:"total_tvl_usd"`
	TotalTVLFormatted       string         `json:"total_tvl_formatted"`
	TotalMaxBountyUSD       float64        `json:"total_max_bounty_usd"`
	TotalMaxBountyFormatted string         `json:"total_max_bounty_formatted"`
	Chains                  map[string]int `json:"chains"`
	Top3ByTVL               []string       `json:"top_3_by_tvl"`
	Top3ByBounty            []string       `json:"top_3_by_bounty"`
}

// CountFor returns the tally for one priority class.
func (s *Stats) CountFor(p Priority) int {
	switch p {
	case PriorityCritical:
		return s.CountCritical
	case PriorityHigh:
		return s.CountHigh
	case PriorityMedium:
		return s.CountMedium
	case PriorityLow:
		return s.CountLow
	}
	return 0
}

// Report is the document written by a TVL refresh run.
type Report struct {
	GeneratedAt    int64     `json:"generated_at"`     // epoch seconds
	GeneratedAtISO string    `json:"generated_at_iso"` // RFC 3339 UTC
	Stats          Stats     `json:"stats"`
	Targets        []*Target `json:"targets"` // sorted by priority, then TVL descending
}
