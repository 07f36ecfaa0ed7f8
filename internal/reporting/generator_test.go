package reporting

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"bounty-recon/internal/domain"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGenerator_Generate(t *testing.T) {
	dir := t.TempDir()
	list := writeFile(t, dir, "list.json", `[
  {"name": "Aave", "chain": "Ethereum", "tvl_usd": 21500000000.4, "bounty_url": "https://immunefi.com/bounty/aave", "last_audit": "2024-01"},
  {"name": "Curve", "tvl_usd": "TBD"}
]`)
	wrapped := writeFile(t, dir, "enriched.json", `{"generated_at": 1, "targets": [{"name": "Lido", "chain": "Ethereum", "tvl_usd": 1234.5, "priority": "HIGH", "risk_score": 40}]}`)
	single := writeFile(t, dir, "single.json", `{"chain": "Solana"}`)
	broken := writeFile(t, dir, "broken.json", `{"name": `)

	core, logs := observer.New(zapcore.WarnLevel)
	gen := NewGenerator(zap.New(core)).WithClock(func() time.Time { return fixedNow })

	summary := gen.Generate([]string{list, filepath.Join(dir, "missing.json"), wrapped, dir, broken, single})

	require.Len(t, summary.Entries, 4)
	assert.Equal(t, fixedNow, summary.GeneratedAt)

	assert.Equal(t, ReconEntry{
		Name:      "Aave",
		Chain:     "Ethereum",
		TVL:       "$21,500,000,000",
		BountyURL: "https://immunefi.com/bounty/aave",
		LastAudit: "2024-01",
	}, summary.Entries[0])
	assert.Equal(t, "TBD", summary.Entries[1].TVL)
	assert.Equal(t, NotAvailable, summary.Entries[1].Chain)
	assert.Equal(t, "$1,234", summary.Entries[2].TVL)
	assert.Equal(t, "HIGH", summary.Entries[2].Priority)
	assert.Equal(t, "40", summary.Entries[2].RiskScore)
	assert.Equal(t, "Unknown", summary.Entries[3].Name)
	assert.Equal(t, NotAvailable, summary.Entries[3].TVL)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "failed to parse input", logs.All()[0].Message)
}

func TestRenderMarkdown(t *testing.T) {
	summary := &ReconSummary{
		GeneratedAt: fixedNow,
		Entries: []ReconEntry{
			{Name: "Aave", Chain: "Ethereum", TVL: "$21,500,000,000", BountyURL: "https://immunefi.com/bounty/aave", LastAudit: "2024-01"},
			{Name: "Unknown", Chain: NotAvailable, TVL: NotAvailable, BountyURL: NotAvailable, LastAudit: NotAvailable},
		},
	}

	expected := `# Recon Summary

_Last update: 2025-03-14 09:26:53 UTC_

## Aave
- Chain: Ethereum
- TVL: $21,500,000,000
- Bounty: https://immunefi.com/bounty/aave
- Last audit: 2024-01

## Unknown
- Chain: n/a
- TVL: n/a
- Bounty: n/a
- Last audit: n/a
`
	assert.Equal(t, expected, RenderMarkdown(summary))
}

func TestRenderMarkdown_Empty(t *testing.T) {
	out := RenderMarkdown(&ReconSummary{GeneratedAt: fixedNow})
	assert.Equal(t, "# Recon Summary\n\n_Last update: 2025-03-14 09:26:53 UTC_\n\n"+EmptyMessage+"\n", out)
}

func TestRenderCSV(t *testing.T) {
	summary := &ReconSummary{Entries: []ReconEntry{
		{Name: "Aave", Chain: "Ethereum", TVL: "$1,000", Priority: "LOW", RiskScore: "10", BountyURL: "n/a", LastAudit: "2024"},
		{Name: `Say "hi"`, Chain: "Multi", TVL: "n/a"},
	}}

	lines := strings.Split(strings.TrimSuffix(RenderCSV(summary), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,chain,tvl,priority,risk_score,bounty_url,last_audit", lines[0])
	assert.Equal(t, `Aave,Ethereum,"$1,000",LOW,10,n/a,2024`, lines[1])
	assert.Equal(t, `"Say ""hi""",Multi,n/a,,,,`, lines[2])
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.json")

	require.NoError(t, WriteJSON(path, map[string]any{"url": "https://a.b/?x=1&y=<2>", "name": "Ünïcode"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"Ünïcode\",\n  \"url\": \"https://a.b/?x=1&y=<2>\"\n}\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	// Overwrite leaves no temp files behind.
	require.NoError(t, WriteJSON(path, []int{1}))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteJSON_EncodeFailureKeepsExistingFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "out.json", `{"old": true}`)

	err := WriteJSON(path, map[string]any{"bad": make(chan int)})
	require.Error(t, err)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, `{"old": true}`, string(data))

	entries, readErr := os.ReadDir(filepath.Dir(path))
	require.NoError(t, readErr)
	assert.Len(t, entries, 1)
}

func TestRenderSummary(t *testing.T) {
	report := &domain.Report{
		Stats: domain.Stats{
			CountTargets:            4,
			CountCritical:           1,
			CountLow:                3,
			CountLiveUpdates:        2,
			TotalTVLFormatted:       "$21.50B",
			TotalMaxBountyFormatted: "$1.00M",
		},
		Targets: []*domain.Target{
			{Name: "Aave V3 Protocol With A Long Name", TVLFormatted: "$21.50B", MaxBountyFormatted: "$250.00K", MaxBountyUSD: 250_000},
			{Name: "Beta", TVLFormatted: "$1.00K", MaxBountyFormatted: "$500.00K", MaxBountyUSD: 500_000},
			{Name: "Gamma", TVLFormatted: "$10.00", MaxBountyFormatted: "$250.00K", MaxBountyUSD: 250_000},
			{Name: "Delta", TVLFormatted: "$0.00", MaxBountyFormatted: "$0.00"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, report, "out/targets.json"))
	out := buf.String()

	assert.Contains(t, out, panelTitle)
	assert.Contains(t, out, "Targets Processed:")
	assert.Contains(t, out, "  CRITICAL:")
	assert.Contains(t, out, "• Aave V3 Protocol Wit ")
	assert.NotContains(t, out, "Delta")
	assert.True(t, strings.HasSuffix(out, "\n[✓] Output written to out/targets.json\n"))

	// Bounty order: Beta first, then the two 250K entries in input order.
	beta := strings.LastIndex(out, "• Beta ")
	require.Greater(t, beta, strings.Index(out, "Top 3 Bounties:"))
	assert.Less(t, beta, strings.LastIndex(out, "Aave V3"))
	assert.Less(t, strings.LastIndex(out, "Aave V3"), strings.LastIndex(out, "Gamma"))
}

func TestWriteJSON_Report(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	report := &domain.Report{
		GeneratedAt:    1700000000,
		GeneratedAtISO: "2023-11-14T22:13:20Z",
		Stats:          domain.Stats{Chains: map[string]int{}, Top3ByTVL: []string{}, Top3ByBounty: []string{}},
		Targets:        []*domain.Target{{Name: "Aave", Extra: map[string]any{"notes": "x"}}},
	}
	require.NoError(t, WriteJSON(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(1700000000), decoded["generated_at"])
	targets := decoded["targets"].([]any)
	require.Len(t, targets, 1)
	assert.Equal(t, "x", targets[0].(map[string]any)["notes"])
}
