// Package amount provides shared purchase-amount parsing and formatting.
//
// The event feed carries amounts as decimal strings with exactly two
// fractional digits. All arithmetic is done on int64 values in the
// smallest unit (1 dollar = 100 pennies).
package amount

import (
	"strconv"
	"strings"
)

const Decimals = 2

// Parse converts a decimal string (e.g. "1601.83") to pennies (160183).
// Returns (0, false) on input that does not match the feed's shape.
//
// Rules:
//   - Negative amounts are rejected
//   - Exactly one decimal point with exactly two fractional digits
//   - Everything else must be digits
func Parse(s string) (int64, bool) {
	if s == "" || strings.HasPrefix(s, "-") {
		return 0, false
	}

	dot := strings.IndexByte(s, '.')
	if dot < 0 || len(s)-dot-1 != Decimals {
		return 0, false
	}

	pennies, err := strconv.ParseInt(s[:dot]+s[dot+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return pennies, true
}

// Format converts pennies to a decimal string with exactly two fractional
// digits, zero-padding small values ("3" of a dollar → "0.03").
func Format(pennies int64) string {
	neg := pennies < 0
	if neg {
		pennies = -pennies
	}
	s := strconv.FormatInt(pennies, 10)
	for len(s) < Decimals+1 {
		s = "0" + s
	}
	split := len(s) - Decimals
	result := s[:split] + "." + s[split:]
	if neg {
		result = "-" + result
	}
	return result
}
