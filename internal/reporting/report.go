package reporting

import "time"

// NotAvailable is printed for fields a target does not carry.
const NotAvailable = "n/a"

// ReconSummary is the Markdown recon summary built from one or more enriched JSON files.
type ReconSummary struct {
	GeneratedAt time.Time
	Entries     []ReconEntry
}

// ReconEntry is one target as shown in the recon summary.
// Every field is already rendered as text.
type ReconEntry struct {
	Name      string // "Unknown" when absent
	Chain     string
	TVL       string // "$1,234,567" for numbers, raw text otherwise
	BountyURL string
	LastAudit string
	Priority  string // empty for targets that were never enriched
	RiskScore string
}
