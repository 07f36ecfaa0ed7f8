package enrich

// protocolSlugs maps target names to DefiLlama protocol slugs.
var protocolSlugs = map[string]string{
	"Aave":       "aave",
	"Curve":      "curve-dex",
	"Wormhole":   "wormhole",
	"Arbitrum":   "arbitrum",
	"Lido":       "lido",
	"MakerDAO":   "makerdao",
	"Compound":   "compound",
	"Uniswap":    "uniswap",
	"Optimism":   "optimism",
	"Base":       "base",
	"EigenLayer": "eigenlayer",
	"Pendle":     "pendle",
	"Blast":      "blast",
}

// SlugFor returns the DefiLlama slug for a target name.
func SlugFor(name string) (string, bool) {
	slug, ok := protocolSlugs[name]
	return slug, ok
}
