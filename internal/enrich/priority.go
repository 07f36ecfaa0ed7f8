// Package enrich derives priority, formatting and risk fields for bounty targets.
package enrich

import "bounty-recon/internal/domain"

// Priority thresholds. A class matches when either floor is reached.
const (
	CriticalTVL    = 10_000_000_000
	CriticalBounty = 10_000_000
	HighTVL        = 1_000_000_000
	HighBounty     = 2_000_000
	MediumTVL      = 100_000_000
	MediumBounty   = 1_000_000
)

// Classify maps TVL and max bounty to a priority class. First match wins.
func Classify(tvlUSD, maxBountyUSD float64) domain.Priority {
	switch {
	case tvlUSD >= CriticalTVL || maxBountyUSD >= CriticalBounty:
		return domain.PriorityCritical
	case tvlUSD >= HighTVL || maxBountyUSD >= HighBounty:
		return domain.PriorityHigh
	case tvlUSD >= MediumTVL || maxBountyUSD >= MediumBounty:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}
