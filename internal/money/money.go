// Package money parses cashier-entered amounts and formats amounts for display.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrMalformedAmount = errors.New("malformed amount")
	ErrNegativeAmount  = errors.New("amount must not be negative")
)

// Shortcut suffixes cashiers type instead of trailing zeros: "50k", "1.5jt", "300rb".
var suffixes = []struct {
	s string
	m decimal.Decimal
}{
	{"jt", decimal.NewFromInt(1_000_000)},
	{"rb", decimal.NewFromInt(1_000)},
	{"k", decimal.NewFromInt(1_000)},
}

// ParseAmount parses a non-negative amount. Commas, underscores and spaces
// are treated as grouping; "." is always the decimal point. An empty string
// is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	tok := strings.ToLower(strings.TrimSpace(s))
	if tok == "" {
		return decimal.Zero, nil
	}

	multiplier := decimal.NewFromInt(1)
	for _, sf := range suffixes {
		if strings.HasSuffix(tok, sf.s) {
			tok = strings.TrimSpace(tok[:len(tok)-len(sf.s)])
			multiplier = sf.m
			break
		}
	}

	tok = strings.NewReplacer(",", "", "_", "", " ", "").Replace(tok)
	if tok == "" || !isPlainNumber(tok) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	if strings.HasPrefix(tok, ".") {
		tok = "0" + tok
	}
	if strings.HasSuffix(tok, ".") {
		tok = tok + "0"
	}

	d, err := decimal.NewFromString(tok)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	d = d.Mul(multiplier)
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNegativeAmount, s)
	}
	return d, nil
}

// LenientAmount parses s and falls back to zero on any error.
func LenientAmount(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// isPlainNumber accepts an optional leading sign, digits and at most one dot.
// Exponents ("1e5") are rejected.
func isPlainNumber(tok string) bool {
	digits, dots := 0, 0
	for i, r := range tok {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		case (r == '-' || r == '+') && i == 0:
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// Format renders d rounded to whole units with "." thousands grouping and
// an optional currency suffix, e.g. Format(50000, "₫") == "50.000 ₫".
func Format(d decimal.Decimal, suffix string) string {
	r := d.Round(0)
	neg := r.IsNegative()
	digits := r.Abs().String()

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	sb.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		sb.WriteByte('.')
		sb.WriteString(digits[i : i+3])
	}
	if suffix != "" {
		sb.WriteByte(' ')
		sb.WriteString(suffix)
	}
	return sb.String()
}
