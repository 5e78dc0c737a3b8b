// Package slug builds storage-safe key segments from human names.
// Participant names are Spanish and routinely carry diacritics; keys must
// stay stable across platforms that normalize Unicode differently, so names
// are normalized before slugging.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Make converts a name to a lowercase ascii slug: "José Pérez" -> "jose-perez".
// Returns "unnamed" for inputs that slug to nothing.
func Make(name string) string {
	// Decompose so combining marks can be stripped
	decomposed := norm.NFD.String(name)

	var b strings.Builder
	lastDash := true // suppress leading dashes
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark from decomposition, drop
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	out := strings.Trim(norm.NFC.String(b.String()), "-")
	if out == "" {
		return "unnamed"
	}
	return out
}
