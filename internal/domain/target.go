package domain

import "encoding/json"

// TVLSourceDefiLlama marks a tvl_usd value that was overwritten from the live API.
const TVLSourceDefiLlama = "defillama_api"

// UnknownChain is used for statistics when a target has no chain.
const UnknownChain = "unknown"

// Target represents one bug-bounty target record.
// Recognized fields are typed; every other key of the source document is kept in Extra
// and written back unchanged.
type Target struct {
	Name          string   // display key and key into the protocol slug table
	Chain         string   // empty when absent in the source
	TVLUSD        float64  // non-negative, 0 when absent
	MaxBountyUSD  float64  // non-negative, 0 when absent
	AttackVectors []string // nil when absent, only the count is used
	LastAudit     string   // free text

	// Derived by the enricher
	TVLSource          string   // "defillama_api" after a live overlay
	TVLUpdatedAt       string   // RFC 3339 UTC
	TVLChangePct       *float64 // rounded to 2 decimals, nil when no prior TVL
	TVLChangeFormatted string   // "+12.5%"
	Priority           Priority
	TVLFormatted       string
	MaxBountyFormatted string
	RiskScore          int // [0, 100]

	// Live is set when this run overwrote TVLUSD from the API. Not serialized.
	Live bool

	Extra map[string]any
}

// ChainOrUnknown returns the chain used for per-chain statistics.
func (t *Target) ChainOrUnknown() string {
	if t.Chain == "" {
		return UnknownChain
	}
	return t.Chain
}

// KeepRaw stores the input value of a recognized field in Extra when keep is
// set. Such a value is written back as it came in instead of the typed field.
func (t *Target) KeepRaw(key string, value any, keep bool) {
	if !keep {
		return
	}
	if t.Extra == nil {
		t.Extra = make(map[string]any)
	}
	t.Extra[key] = value
}

// Fields returns the record as a flat key/value mapping, Extra included.
func (t *Target) Fields() map[string]any {
	out := make(map[string]any, len(t.Extra)+16)
	for k, v := range t.Extra {
		out[k] = v
	}

	out["name"] = t.Name
	if _, raw := t.Extra["chain"]; !raw && t.Chain != "" {
		out["chain"] = t.Chain
	}
	out["tvl_usd"] = t.TVLUSD
	out["max_bounty_usd"] = t.MaxBountyUSD
	if _, raw := t.Extra["attack_vectors"]; !raw && t.AttackVectors != nil {
		out["attack_vectors"] = t.AttackVectors
	}
	if _, raw := t.Extra["last_audit"]; !raw && t.LastAudit != "" {
		out["last_audit"] = t.LastAudit
	}

	if t.TVLSource != "" {
		out["tvl_source"] = t.TVLSource
	}
	if t.TVLUpdatedAt != "" {
		out["tvl_updated_at"] = t.TVLUpdatedAt
	}
	if t.TVLChangePct != nil {
		out["tvl_change_pct"] = *t.TVLChangePct
	}
	if t.TVLChangeFormatted != "" {
		out["tvl_change_formatted"] = t.TVLChangeFormatted
	}
	if t.Priority != "" {
		out["priority"] = string(t.Priority)
	}
	if t.TVLFormatted != "" {
		out["tvl_formatted"] = t.TVLFormatted
	}
	if t.MaxBountyFormatted != "" {
		out["max_bounty_formatted"] = t.MaxBountyFormatted
	}
	if t.Priority != "" {
		out["risk_score"] = t.RiskScore
	}
	return out
}

// MarshalJSON writes the target as a single flat object.
func (t *Target) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Fields())
}
