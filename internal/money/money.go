// Package money converts between the display strings stored on records
// ("$1,234.56") and numbers.
package money

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Parse extracts a number from a free-text currency string. Every character other
// than digits, '.' and '-' is dropped and the longest numeric prefix of what remains
// is used, so "1.2.3" reads as 1.2. Empty or unparseable input yields 0.
func Parse(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := numericPrefix(b.String())
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseDecimal is Parse for callers that sum many values.
func ParseDecimal(s string) decimal.Decimal {
	return decimal.NewFromFloat(Parse(s))
}

func numericPrefix(s string) string {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
			frac++
		}
		if frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return ""
	}
	return s[:i]
}

// Format renders n as USD with thousands separators and the given number of
// fraction digits, e.g. Format(1234.5, 2) == "$1,234.50" and
// Format(-1234.5, 0) == "-$1,235".
func Format(n float64, digits int) string {
	return FormatDecimal(decimal.NewFromFloat(n), digits)
}

// FormatDecimal is Format for decimal totals.
func FormatDecimal(d decimal.Decimal, digits int) string {
	if digits < 0 {
		digits = 0
	}
	d = d.Round(int32(digits))
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	out := sign + "$" + humanize.Comma(d.Truncate(0).IntPart())
	if digits > 0 {
		fixed := d.StringFixed(int32(digits))
		out += fixed[strings.IndexByte(fixed, '.'):]
	}
	return out
}

// FormatCents is Format with two fraction digits.
func FormatCents(n float64) string { return Format(n, 2) }

// FormatWhole is Format with no fraction digits.
func FormatWhole(n float64) string { return Format(n, 0) }

// Fixed renders n as "$" plus a fixed-point number without grouping, the shape the
// fee breakdown fields are stored in ("$1234.50").
func Fixed(n float64, digits int) string {
	d := decimal.NewFromFloat(n).Round(int32(digits))
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(int32(digits))
	}
	return "$" + d.StringFixed(int32(digits))
}

// Round2 rounds to cents, half away from zero.
func Round2(n float64) float64 {
	f, _ := decimal.NewFromFloat(n).Round(2).Float64()
	return f
}
