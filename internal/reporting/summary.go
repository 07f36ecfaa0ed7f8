package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"bounty-recon/internal/domain"
	"bounty-recon/internal/enrich"
)

const (
	panelTitle = "TVL REFRESH COMPLETE"
	panelInner = 49 // text columns inside the border padding
	topN       = 3
	maxNameLen = 20
)

// RenderSummary writes the human-readable run panel followed by the output
// confirmation line. The panel goes to w verbatim; it is not a log line.
func RenderSummary(w io.Writer, report *domain.Report, outputPath string) error {
	style := lipgloss.NewRenderer(w).NewStyle().
		Border(lipgloss.DoubleBorder()).
		Padding(0, 1).
		Width(panelInner + 2)

	panel := style.Render(strings.Join(summaryLines(report), "\n"))
	_, err := fmt.Fprintf(w, "\n%s\n\n[✓] Output written to %s\n", panel, outputPath)
	return err
}

func summaryLines(report *domain.Report) []string {
	s := report.Stats
	rule := strings.Repeat("─", panelInner)

	lines := []string{
		lipgloss.PlaceHorizontal(panelInner, lipgloss.Center, panelTitle),
		rule,
		fmt.Sprintf("%-19s%30d", "Targets Processed:", s.CountTargets),
		fmt.Sprintf("%-19s%30d", "Live TVL Updates:", s.CountLiveUpdates),
		fmt.Sprintf("%-19s%30s", "Total TVL:", s.TotalTVLFormatted),
		fmt.Sprintf("%-19s%30s", "Total Bounties:", s.TotalMaxBountyFormatted),
		rule,
		"Priority Breakdown:",
	}
	for _, p := range domain.Priorities {
		lines = append(lines, fmt.Sprintf("  %-10s%37d", string(p)+":", s.CountFor(p)))
	}

	lines = append(lines, rule, "Top 3 Targets by TVL:")
	for _, t := range report.Targets[:min(topN, len(report.Targets))] {
		lines = append(lines, topLine(t.Name, t.TVLFormatted))
	}

	lines = append(lines, rule, "Top 3 Bounties:")
	byBounty := enrich.ByBounty(report.Targets)
	for _, t := range byBounty[:min(topN, len(byBounty))] {
		lines = append(lines, topLine(t.Name, t.MaxBountyFormatted))
	}
	return lines
}

func topLine(name, value string) string {
	if value == "" {
		value = "N/A"
	}
	return fmt.Sprintf("  • %-20s %24s", truncate(name, maxNameLen), value)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
