// Package normalize cleans free-form numeric and text strings from noisy
// statement sources into canonical values. All functions degrade to
// zero/absent/empty on invalid input; they never fail.
package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonAmountRe  = regexp.MustCompile(`[^0-9.-]`)
)

// Text trims the input and collapses runs of whitespace, including
// newlines, to a single space.
func Text(raw string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(raw), " ")
}

// Amount cleans a free-form amount string ("Ksh1,500.00.", "  450 -") to
// a decimal, or nil when nothing numeric survives cleaning. Extra decimal
// points beyond the first are collapsed into the fraction.
func Amount(raw string) *decimal.Decimal {
	cleaned := nonAmountRe.ReplaceAllString(strings.TrimSpace(raw), "")
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return nil
	}
	if parts := strings.Split(cleaned, "."); len(parts) > 2 {
		cleaned = parts[0] + "." + strings.Join(parts[1:], "")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	return &d
}

// AmountOrZero is Amount with zero instead of nil for absent or
// unparsable input. The SMS extraction path uses this variant; the
// tabular path keeps the absent/zero distinction and uses Amount.
func AmountOrZero(raw string) decimal.Decimal {
	if d := Amount(raw); d != nil {
		return *d
	}
	return decimal.Zero
}
