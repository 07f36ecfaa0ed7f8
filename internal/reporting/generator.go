package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Generator builds recon summaries from enriched JSON files.
type Generator struct {
	logger *zap.Logger
	now    func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new recon summary generator.
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate loads every path and builds the summary. Paths that are not regular
// files are skipped; unreadable or invalid files are logged and contribute nothing.
func (g *Generator) Generate(paths []string) *ReconSummary {
	summary := &ReconSummary{GeneratedAt: g.now()}
	for _, path := range paths {
		for _, fields := range g.loadTargets(path) {
			summary.Entries = append(summary.Entries, entryFromFields(fields))
		}
	}
	return summary
}

// loadTargets reads a list of targets, an object with a "targets" list, or a single object.
func (g *Generator) loadTargets(path string) []map[string]any {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		g.logger.Debug("skipping non-file input", zap.String("path", path))
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		g.logger.Warn("failed to read input", zap.String("path", path), zap.Error(err))
		return nil
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		g.logger.Warn("failed to parse input", zap.String("path", path), zap.Error(err))
		return nil
	}

	switch v := doc.(type) {
	case []any:
		return objects(v, path, g.logger)
	case map[string]any:
		if list, ok := v["targets"].([]any); ok {
			return objects(list, path, g.logger)
		}
		return []map[string]any{v}
	}
	g.logger.Warn("input is neither a list nor an object", zap.String("path", path))
	return nil
}

func objects(items []any, path string, logger *zap.Logger) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			logger.Warn("skipping non-object target", zap.String("path", path), zap.Int("index", i))
			continue
		}
		out = append(out, m)
	}
	return out
}

func entryFromFields(f map[string]any) ReconEntry {
	entry := ReconEntry{
		Name:      textOr(f, "name", "Unknown"),
		Chain:     textOr(f, "chain", NotAvailable),
		TVL:       formatTVL(f["tvl_usd"]),
		BountyURL: textOr(f, "bounty_url", NotAvailable),
		LastAudit: textOr(f, "last_audit", NotAvailable),
		Priority:  textOr(f, "priority", ""),
	}
	if _, ok := f["risk_score"]; ok {
		entry.RiskScore = textOr(f, "risk_score", "")
	}
	return entry
}

// formatTVL renders numbers as whole dollars with thousands separators.
func formatTVL(v any) string {
	switch x := v.(type) {
	case nil:
		return NotAvailable
	case float64:
		whole, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 0, 64), 64)
		return "$" + humanize.Commaf(whole)
	case string:
		return x
	}
	return fmt.Sprint(v)
}

func textOr(f map[string]any, key, fallback string) string {
	switch x := f[key].(type) {
	case nil:
		return fallback
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
