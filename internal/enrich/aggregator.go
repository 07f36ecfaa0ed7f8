package enrich

import "bounty-recon/internal/domain"

// Aggregator accumulates run statistics, one Add per enriched target.
type Aggregator struct {
	count         int
	liveUpdates   int
	totalTVL      float64
	totalBounty   float64
	countPriority map[domain.Priority]int
	countChain    map[string]int
}

// NewAggregator creates an aggregator with a zeroed tally for every priority class.
func NewAggregator() *Aggregator {
	a := &Aggregator{
		countPriority: make(map[domain.Priority]int, len(domain.Priorities)),
		countChain:    make(map[string]int),
	}
	for _, p := range domain.Priorities {
		a.countPriority[p] = 0
	}
	return a
}

// Add records one enriched target.
func (a *Aggregator) Add(t *domain.Target) {
	a.count++
	if t.Live {
		a.liveUpdates++
	}
	a.totalTVL += t.TVLUSD
	a.totalBounty += t.MaxBountyUSD
	a.countPriority[t.Priority]++
	a.countChain[t.ChainOrUnknown()]++
}

// Stats returns the accumulated statistics. Top-N lists are left empty;
// they depend on the final sort order.
func (a *Aggregator) Stats() domain.Stats {
	chains := make(map[string]int, len(a.countChain))
	for k, v := range a.countChain {
		chains[k] = v
	}

	return domain.Stats{
		CountTargets:            a.count,
		CountCritical:           a.countPriority[domain.PriorityCritical],
		CountHigh:               a.countPriority[domain.PriorityHigh],
		CountMedium:             a.countPriority[domain.PriorityMedium],
		CountLow:                a.countPriority[domain.PriorityLow],
		CountLiveUpdates:        a.liveUpdates,
		TotalTVLUSD:             a.totalTVL,
		TotalTVLFormatted:       FormatUSD(a.totalTVL),
		TotalMaxBountyUSD:       a.totalBounty,
		TotalMaxBountyFormatted: FormatUSD(a.totalBounty),
		Chains:                  chains,
		Top3ByTVL:               []string{},
		Top3ByBounty:            []string{},
	}
}
