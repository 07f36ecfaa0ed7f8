package targets

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"bounty-recon/internal/domain"
)

// numCleaner strips everything that cannot be part of a float literal ("$1,200" -> "1200").
var numCleaner = regexp.MustCompile(`[^0-9eE+\-.]`)

// FromFields builds a target from a decoded mapping. It never fails:
// absent or wrong-typed fields fall back to their zero value and
// negative amounts are clamped to 0. Input values that the typed fields
// cannot reproduce are kept in Extra so they are written back unchanged.
func FromFields(fields map[string]any) *domain.Target {
	t := &domain.Target{Extra: make(map[string]any)}

	for key, value := range fields {
		switch key {
		case "name":
			t.Name = ToText(value)
		case "chain":
			if isScalar(value) {
				t.Chain = ToText(value)
			}
			t.KeepRaw(key, Normalize(value), t.Chain == "")
		case "tvl_usd":
			t.TVLUSD = nonNegative(ToFloat(value))
		case "max_bounty_usd":
			t.MaxBountyUSD = nonNegative(ToFloat(value))
		case "attack_vectors":
			t.AttackVectors = toStrings(value)
			t.KeepRaw(key, Normalize(value), !isTextList(value))
		case "last_audit":
			if isScalar(value) {
				t.LastAudit = ToText(value)
			}
			t.KeepRaw(key, Normalize(value), t.LastAudit == "")
		case "tvl_source":
			t.TVLSource = ToText(value)
			t.KeepRaw(key, Normalize(value), t.TVLSource == "")
		case "tvl_updated_at":
			t.TVLUpdatedAt = ToText(value)
			t.KeepRaw(key, Normalize(value), t.TVLUpdatedAt == "")
		case "tvl_change_pct":
			if f, ok := toNumber(value); ok {
				t.TVLChangePct = &f
			} else {
				t.KeepRaw(key, Normalize(value), true)
			}
		case "tvl_change_formatted":
			t.TVLChangeFormatted = ToText(value)
			t.KeepRaw(key, Normalize(value), t.TVLChangeFormatted == "")
		case "priority", "tvl_formatted", "max_bounty_formatted", "risk_score":
			// recomputed on every run
		default:
			t.Extra[key] = Normalize(value)
		}
	}
	return t
}

// Normalize converts a decoded YAML value into one encoding/json can write:
// map keys become text and non-finite floats become their text form.
func Normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = Normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[ToText(k)] = Normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = Normalize(item)
		}
		return out
	case float64:
		if !finite(x) {
			return strconv.FormatFloat(x, 'f', -1, 64)
		}
	case float32:
		if !finite(float64(x)) {
			return strconv.FormatFloat(float64(x), 'f', -1, 32)
		}
	}
	return v
}

// ToFloat converts a loosely typed value to a finite float64, 0 when not numeric.
func ToFloat(v any) float64 {
	if f, ok := toNumber(v); ok {
		return f
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(numCleaner.ReplaceAllString(s, ""), 64)
		if err == nil && finite(f) {
			return f
		}
	}
	return 0
}

// ToText renders a scalar as text. Dates decoded by YAML keep their calendar form.
func ToText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func toNumber(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint64:
		f = float64(x)
	case float64:
		f = x
	case float32:
		f = float64(x)
	default:
		return 0, false
	}
	return f, finite(f)
}

// isScalar reports whether ToText gives v a faithful text form.
func isScalar(v any) bool {
	switch x := v.(type) {
	case string, time.Time, bool, int, int64, uint64:
		return true
	case float64:
		return finite(x)
	}
	return false
}

func isTextList(v any) bool {
	items, ok := v.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if _, ok := item.(string); !ok {
			return false
		}
	}
	return true
}

func toStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, ToText(item))
	}
	return out
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
