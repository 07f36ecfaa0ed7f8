package defillama

// Protocol is one entry of the /protocols response.
// Only the fields the recon tools read are decoded.
type Protocol struct {
	Name     string   `json:"name"`
	Slug     string   `json:"slug"`
	Chain    string   `json:"chain"`
	Category string   `json:"category"`
	TVL      *float64 `json:"tvl"` // null for delisted protocols
}

// TVLValue returns the protocol TVL, 0 when missing or negative.
func (p Protocol) TVLValue() float64 {
	if p.TVL == nil || *p.TVL < 0 {
		return 0
	}
	return *p.TVL
}
