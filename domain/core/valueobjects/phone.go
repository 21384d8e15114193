package valueobjects

import (
	"strings"
	"unicode"
)

// NormalizePhone keeps only the ASCII digits of a phone number so that
// "+1 (555) 010-2000" and "15550102000" compare equal.
func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
