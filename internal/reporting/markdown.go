package reporting

import (
	"fmt"
	"strings"
)

// EmptyMessage is printed in place of target sections when no input produced a target.
const EmptyMessage = "No targets found in the provided JSON files."

// RenderMarkdown renders the recon summary.
func RenderMarkdown(summary *ReconSummary) string {
	var sb strings.Builder

	sb.WriteString("# Recon Summary\n\n")
	sb.WriteString(fmt.Sprintf("_Last update: %s UTC_\n", summary.GeneratedAt.UTC().Format("2006-01-02 15:04:05")))

	if len(summary.Entries) == 0 {
		sb.WriteString("\n" + EmptyMessage + "\n")
		return sb.String()
	}

	for _, e := range summary.Entries {
		sb.WriteString(fmt.Sprintf("\n## %s\n", e.Name))
		sb.WriteString(fmt.Sprintf("- Chain: %s\n", e.Chain))
		sb.WriteString(fmt.Sprintf("- TVL: %s\n", e.TVL))
		sb.WriteString(fmt.Sprintf("- Bounty: %s\n", e.BountyURL))
		sb.WriteString(fmt.Sprintf("- Last audit: %s\n", e.LastAudit))
	}

	return sb.String()
}
