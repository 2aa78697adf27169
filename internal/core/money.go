// Package core provides money parsing and handling utilities.
//
// Amounts are whole Rupiah stored as int64; the currency has no minor unit
// in everyday use, so there is no cents conversion.
package core

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rupiahPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah renders an amount with Indonesian digit grouping.
//
// Examples:
//
//	FormatRupiah(0)       -> "Rp 0"
//	FormatRupiah(1500000) -> "Rp 1.500.000"
//	FormatRupiah(-2500)   -> "Rp -2.500"
func FormatRupiah(value int64) string {
	return "Rp " + rupiahPrinter.Sprintf("%d", value)
}

// ParseAmount keeps only the digits of s, so "Rp 1.500.000" and "1,500,000"
// both yield 1500000. Input without digits, or too large for int64, yields 0.
func ParseAmount(s string) int64 {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	v, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Percent returns round(part/whole*100), clamping part into [0, whole].
// A non-positive whole yields 0.
func Percent(part, whole int64) int {
	if whole <= 0 {
		return 0
	}
	if part < 0 {
		part = 0
	}
	if part > whole {
		part = whole
	}
	return int((part*200 + whole) / (2 * whole))
}
