// Package money converts between display price text and integer cents.
// Amounts are held as int64 minor units everywhere to avoid floating-point
// rounding error in totals.
package money

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const currencyPrefix = "NT$"

var printer = message.NewPrinter(language.English)

// ParseCents converts price text such as "NT$1,234", "1234" or "1,234.50"
// into cents. Unparseable input yields 0 so a bad price never blocks the
// user; the caller ends up with a zero-priced line instead of an error.
func ParseCents(text string) int64 {
	p := strings.ReplaceAll(text, currencyPrefix, "")
	p = strings.ReplaceAll(p, ",", "")
	p = strings.TrimSpace(p)

	value, err := strconv.ParseFloat(p, 64)
	if err != nil {
		return 0
	}

	return int64(math.Round(value * 100))
}

// FormatNTD renders cents as "NT$" plus the thousands-grouped whole-unit
// amount, with no decimals.
func FormatNTD(cents int64) string {
	units := int64(math.Round(float64(cents) / 100))

	return printer.Sprintf("%s%d", currencyPrefix, units)
}
