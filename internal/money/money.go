// Package money holds the fixed-point helpers shared by accounts and transactions.
// Amounts are decimal values in major units, kept at two fractional digits.
package money

import (
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits stored for every amount and balance.
const Places = 2

// Round normalises d to the stored precision.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Parse reads a plain decimal string ("1234.5", "-10") and rounds it to the stored precision.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}

	return Round(d), nil
}

// ParseEuropean parses a European-formatted amount such as "1.234,56" or "-588,74".
func ParseEuropean(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	return Parse(clean)
}

// ValidCurrency reports whether code is a known ISO 4217 currency.
func ValidCurrency(code string) bool {
	return len(code) == 3 && gomoney.GetCurrency(strings.ToUpper(code)) != nil
}

// Format renders amount using the currency's symbol and separators.
// Unknown currencies fall back to a plain "1234.56 XYZ" rendering.
func Format(amount decimal.Decimal, code string) string {
	cur := gomoney.GetCurrency(strings.ToUpper(code))
	if cur == nil {
		return amount.StringFixed(Places) + " " + code
	}

	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()

	return cur.Formatter().Format(minor)
}
