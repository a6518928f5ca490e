package lens

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Stellar native precision.
const amountPrecision = 7

// ParseAmount parses a decimal amount string. The second return is false for
// empty or non-numeric input.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FormatAmount renders an amount at Stellar's 7-decimal precision with
// trailing zeros trimmed. Values with more fractional digits are rounded to
// 7 places first; this mirrors the upstream fixed-precision behaviour.
func FormatAmount(d decimal.Decimal) string {
	s := d.Round(amountPrecision).String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}

// amountsEqual compares two amount strings numerically. Either side failing
// to parse means no match.
func amountsEqual(a, b string) bool {
	da, ok := ParseAmount(a)
	if !ok {
		return false
	}
	db, ok := ParseAmount(b)
	if !ok {
		return false
	}
	return da.Equal(db)
}
