package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// All monetary amounts in the system are integers denominated in kuruş
// (minor currency units). These helpers are the only place where decimal
// lira values are converted to and from cents.

// ToCents converts a decimal lira value to integer cents, rounding to the
// nearest cent.
func ToCents(lira float64) int64 {
	return int64(math.Round(lira * 100))
}

// ToLira converts integer cents to a decimal lira value.
func ToLira(cents int64) float64 {
	return float64(cents) / 100
}

// moneyInputRegex accepts a plain decimal amount with at most two fraction
// digits, e.g. "120", "120.5", "120.50".
var moneyInputRegex = regexp.MustCompile(`^\d+(\.\d{0,2})?$`)

// ParseMoneyToCents parses an operator-entered decimal currency string
// (comma or dot as the decimal separator) into integer cents. Invalid or
// empty input yields 0, mirroring how the cash-tender input treats
// unparsable text as "nothing entered".
func ParseMoneyToCents(input string) int64 {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0
	}
	normalized := strings.Replace(trimmed, ",", ".", 1)
	if !moneyInputRegex.MatchString(normalized) {
		return 0
	}
	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0
	}
	return ToCents(value)
}

// CentsToInputString renders cents as a "whole.fraction" string suitable
// for pre-filling a tendered-amount input, e.g. 12345 -> "123.45".
func CentsToInputString(cents int64) string {
	if cents < 0 {
		cents = 0
	}
	whole := cents / 100
	frac := cents % 100
	return strconv.FormatInt(whole, 10) + "." + padFraction(frac)
}

func padFraction(frac int64) string {
	s := strconv.FormatInt(frac, 10)
	if len(s) < 2 {
		return "0" + s
	}
	return s
}

// FormatLira formats cents as whole lira with Turkish thousands grouping,
// e.g. 123400 -> "1.234". Fractions are dropped for display, matching the
// receipt style used on the floor.
func FormatLira(cents int64) string {
	lira := int64(math.Round(float64(cents) / 100))
	negative := lira < 0
	if negative {
		lira = -lira
	}
	digits := strconv.FormatInt(lira, 10)
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte('.')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// FormatCurrency formats cents as a display string with the lira symbol,
// e.g. 123400 -> "1.234 ₺".
func FormatCurrency(cents int64) string {
	return FormatLira(cents) + " ₺"
}
