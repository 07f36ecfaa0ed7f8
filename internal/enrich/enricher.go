package enrich

import (
	"time"

	"bounty-recon/internal/domain"
)

// Enricher overlays live TVL and computes the derived fields of each target.
type Enricher struct {
	lookup domain.TVLLookup
	now    func() time.Time // Injectable clock for deterministic output
}

// NewEnricher creates an enricher over a live TVL lookup. A nil or empty
// lookup leaves every stored TVL untouched.
func NewEnricher(lookup domain.TVLLookup) *Enricher {
	return &Enricher{
		lookup: lookup,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (e *Enricher) WithClock(now func() time.Time) *Enricher {
	e.now = now
	return e
}

// Enrich updates t in place. It never fails; missing fields were already defaulted by the loader.
func (e *Enricher) Enrich(t *domain.Target) {
	e.applyLiveTVL(t)

	t.Priority = Classify(t.TVLUSD, t.MaxBountyUSD)
	t.TVLFormatted = FormatUSD(t.TVLUSD)
	t.MaxBountyFormatted = FormatUSD(t.MaxBountyUSD)
	t.RiskScore = RiskScore(t)
}

func (e *Enricher) applyLiveTVL(t *domain.Target) {
	slug, ok := SlugFor(t.Name)
	if !ok {
		return
	}
	live := e.lookup.Get(slug)
	if live <= 0 {
		return
	}

	previous := t.TVLUSD
	t.TVLUSD = live
	t.TVLSource = domain.TVLSourceDefiLlama
	t.TVLUpdatedAt = e.now().UTC().Format(time.RFC3339)
	t.Live = true

	if previous > 0 {
		raw := (live - previous) / previous * 100
		pct := round(raw, 2)
		t.TVLChangePct = &pct
		t.TVLChangeFormatted = FormatChange(raw)
	}
}
