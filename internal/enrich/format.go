package enrich

import (
	"fmt"
	"math"
)

// FormatUSD renders an amount as $X.XXB, $X.XXM, $X.XXK or $X.XX.
func FormatUSD(n float64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("$%.2fB", n/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("$%.2fM", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("$%.2fK", n/1_000)
	}
	return fmt.Sprintf("$%.2f", n)
}

// FormatChange renders a percentage change with one decimal and an explicit + for gains.
func FormatChange(pct float64) string {
	sign := ""
	if pct > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f%%", sign, pct)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
