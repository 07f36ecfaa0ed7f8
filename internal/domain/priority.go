package domain

// Priority is the CRITICAL/HIGH/MEDIUM/LOW classification of a target.
type Priority string

// Priority classes, highest first.
const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
)

// Priorities lists all classes in rank order.
var Priorities = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

// unknownPriorityRank sorts unexpected values after every known class.
const unknownPriorityRank = 999

// Rank returns the sort rank (CRITICAL=0 ... LOW=3).
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return unknownPriorityRank
	}
}
