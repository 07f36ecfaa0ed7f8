package enrich

import (
	"strings"

	"bounty-recon/internal/domain"
)

// Risk score weights.
const (
	MaxRiskScore          = 100
	pointsPerAttackVector = 10
	largeTVLPoints        = 20 // tvl_usd > 1B
	largeBountyPoints     = 30 // max_bounty_usd >= 10M
	staleAuditPoints      = 15 // last audit in 2022 or 2023
)

// staleAuditYears are matched as substrings of the free-text last_audit field.
var staleAuditYears = []string{"2023", "2022"}

// RiskScore computes the bounded [0, 100] risk heuristic for a target.
func RiskScore(t *domain.Target) int {
	score := len(t.AttackVectors) * pointsPerAttackVector

	if t.TVLUSD > HighTVL {
		score += largeTVLPoints
	}
	if t.MaxBountyUSD >= CriticalBounty {
		score += largeBountyPoints
	}
	for _, year := range staleAuditYears {
		if strings.Contains(t.LastAudit, year) {
			score += staleAuditPoints
			break
		}
	}

	return min(score, MaxRiskScore)
}
