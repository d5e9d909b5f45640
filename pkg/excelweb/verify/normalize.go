package verify

import (
	"strconv"
	"strings"
)

// displayJunk lists the decorations stripped from displayed values
// before numeric comparison: thousands separators, currency symbols,
// and surrounding whitespace.
var displayJunk = strings.NewReplacer(
	",", "",
	"₩", "",
	"$", "",
	"원", "",
	"%", "",
	" ", "",
	" ", "",
)

// NormalizeDisplay strips display decorations from a rendered value.
func NormalizeDisplay(s string) string {
	return displayJunk.Replace(strings.TrimSpace(s))
}

// numeric converts a value read from a cell or the DOM to float64.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(NormalizeDisplay(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// valuesMatch compares an expected cached value against a displayed
// actual value. Numeric values compare within tolerance after display
// normalization; everything else compares exactly after trimming.
func valuesMatch(expected any, actual string, tolerance float64) bool {
	if want, ok := numeric(expected); ok {
		got, ok := numeric(actual)
		if !ok {
			return false
		}
		diff := want - got
		if diff < 0 {
			diff = -diff
		}
		return diff <= tolerance
	}
	return strings.TrimSpace(formatValue(expected)) == strings.TrimSpace(actual)
}

// formatValue renders a cached value the way it is typed into an input.
func formatValue(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(n, 10)
	case int:
		return strconv.Itoa(n)
	case bool:
		return strconv.FormatBool(n)
	default:
		return ""
	}
}
