package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders recon entries as CSV string.
func RenderCSV(summary *ReconSummary) string {
	var sb strings.Builder

	// Header
	sb.WriteString("name,chain,tvl,priority,risk_score,bounty_url,last_audit\n")

	// Rows
	for _, e := range summary.Entries {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s\n",
			csvField(e.Name),
			csvField(e.Chain),
			csvField(e.TVL),
			csvField(e.Priority),
			csvField(e.RiskScore),
			csvField(e.BountyURL),
			csvField(e.LastAudit),
		))
	}

	return sb.String()
}

// csvField quotes values containing separators, quotes or newlines.
func csvField(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
