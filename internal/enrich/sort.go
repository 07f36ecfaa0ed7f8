package enrich

import (
	"cmp"
	"slices"

	"bounty-recon/internal/domain"
)

// SortTargets orders targets by priority (CRITICAL first), then TVL descending.
// The sort is stable: equal keys keep input order.
func SortTargets(targets []*domain.Target) {
	slices.SortStableFunc(targets, func(a, b *domain.Target) int {
		if c := cmp.Compare(a.Priority.Rank(), b.Priority.Rank()); c != 0 {
			return c
		}
		return cmp.Compare(b.TVLUSD, a.TVLUSD)
	})
}

// ByBounty returns a copy of targets ordered by max bounty descending.
// The input slice is not modified.
func ByBounty(targets []*domain.Target) []*domain.Target {
	out := slices.Clone(targets)
	slices.SortStableFunc(out, func(a, b *domain.Target) int {
		return cmp.Compare(b.MaxBountyUSD, a.MaxBountyUSD)
	})
	return out
}

// TopNames returns the names of the first n targets.
func TopNames(targets []*domain.Target, n int) []string {
	names := make([]string, 0, n)
	for _, t := range targets[:min(n, len(targets))] {
		names = append(names, t.Name)
	}
	return names
}
