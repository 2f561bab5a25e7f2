package utils

import (
	"strings"
	"unicode"
)

// Slugify lowercases letters and digits and collapses everything else to
// '-', trimming leading and trailing dashes. Guest cart keys and product
// URLs both derive from item names this way, so the mapping must stay
// stable. Letters are matched per Unicode class so CJK product names keep
// their characters.
func Slugify(name string) string {
	var b strings.Builder

	for _, ch := range name {
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
			b.WriteRune(unicode.ToLower(ch))
		} else {
			b.WriteByte('-')
		}
	}

	return strings.Trim(b.String(), "-")
}
