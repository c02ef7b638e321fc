// Package core provides money parsing and handling utilities.
//
// Amounts live as decimal.Decimal in the domain and as integer cents at the
// storage boundary. ParseAmount handles user-typed numbers; NormalizePrice
// handles currency-formatted text coming from external sources.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest amount a single transaction or shopping item
// may carry. In cents it stays well inside int64, so sums over many rows
// still fit.
var MaxAmount = decimal.New(1, 13)

// CheckAmount rejects negative amounts and amounts above MaxAmount.
func CheckAmount(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return Invalid(field, "must be a non-negative number")
	}
	if d.Round(2).GreaterThan(MaxAmount) {
		return Invalid(field, "must not exceed "+MaxAmount.String())
	}
	return nil
}

// ParseAmount parses a user-entered non-negative amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted.
// The value is rounded half-up to two decimals and must not exceed
// MaxAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,346") -> 12.35
//	ParseAmount("-1")     -> ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.Replace(s, ",", ".", 1)
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := CheckAmount("amount", d); err != nil {
		return decimal.Zero, err
	}
	return d.Round(2), nil
}

// NormalizePrice converts currency-formatted text into a decimal.
//
// Currency symbols, letters and whitespace are stripped. A trailing ",-" or
// ".-" means no minor units. When both '.' and ',' appear, the rightmost
// one is the decimal separator. A lone separator followed by exactly three
// digits is read as a thousands separator, except a single comma which is
// always decimal when followed by at most two digits, and a dot after a
// leading zero, which is always decimal.
//
// The three-digit rule is ambiguous: "1.299" could be 1.299 or 1299. Price
// feeds almost never carry fractions of a cent, so the thousands reading
// wins.
//
//	NormalizePrice("₺120,50")    -> 120.50
//	NormalizePrice("₺1.234,56")  -> 1234.56
//	NormalizePrice("$1,234.56")  -> 1234.56
//	NormalizePrice("1.299 TL")   -> 1299
//	NormalizePrice("€ 120,-")    -> 120
//	NormalizePrice("0.125")      -> 0.13
func NormalizePrice(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if strings.HasSuffix(trimmed, ",-") || strings.HasSuffix(trimmed, ".-") {
		trimmed = trimmed[:len(trimmed)-2]
	}
	var b strings.Builder
	for _, r := range trimmed {
		switch {
		case unicode.IsDigit(r) && r < unicode.MaxASCII:
			b.WriteRune(r)
		case r == '.' || r == ',':
			b.WriteRune(r)
		case r == '-' || r == '−':
			return decimal.Zero, Invalid("price", "negative price")
		}
	}
	clean := strings.Trim(b.String(), ".,")
	if clean == "" {
		return decimal.Zero, Invalid("price", "no digits in "+quote(s))
	}

	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			clean = decimalAt(clean, ",", ".")
		} else {
			clean = decimalAt(clean, ".", ",")
		}
	case lastComma >= 0:
		if strings.Count(clean, ",") == 1 && len(clean)-lastComma-1 <= 2 {
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case lastDot >= 0:
		leadingZero := strings.HasPrefix(clean, "0.")
		if strings.Count(clean, ".") > 1 || (len(clean)-lastDot-1 == 3 && !leadingZero) {
			clean = strings.ReplaceAll(clean, ".", "")
		}
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, Invalid("price", "malformed "+quote(s))
	}
	if err := CheckAmount("price", d); err != nil {
		return decimal.Zero, err
	}
	return d.Round(2), nil
}

// decimalAt drops every thousands separator and turns the decimal
// separator into a dot.
func decimalAt(s, decimalSep, thousandsSep string) string {
	s = strings.ReplaceAll(s, thousandsSep, "")
	return strings.Replace(s, decimalSep, ".", 1)
}

func quote(s string) string {
	return "\"" + s + "\""
}

// ToCents rounds half-up to two decimals and returns minor units. Amounts
// that do not fit in int64 cents are reported, never wrapped.
func ToCents(d decimal.Decimal) (int64, error) {
	cents := d.Round(2).Shift(2)
	if !cents.BigInt().IsInt64() {
		return 0, Invalid("amount", d.String()+" is out of range")
	}
	return cents.IntPart(), nil
}

// FromCents converts minor units back to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatAmount renders an amount with two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
