// Package money formats invoice amounts for people. Stored amounts keep full
// precision; everything here rounds half away from zero to two decimals.
package money

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Round2 rounds x to 2 decimal places.
func Round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// Format renders x as a dollar amount with thousands separators, e.g. "$3,849.85".
// Negative amounts render as "-$12.50".
func Format(x float64) string {
	d := decimal.NewFromFloat(x).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	_, frac, _ := strings.Cut(d.StringFixed(2), ".")
	return sign + "$" + humanize.Comma(d.IntPart()) + "." + frac
}

// Percent renders a rate for labels: 8.5 → "8.5", 10 → "10".
func Percent(rate float64) string {
	return decimal.NewFromFloat(rate).String()
}

// Dollars renders x as "$1234.50" with no grouping, for tabular exports.
func Dollars(x float64) string {
	d := decimal.NewFromFloat(x).Round(2)
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
