// Package identity reconciles player identity across ranking sources
// that share no stable key. Names arrive as "First Last", "Last, First",
// with or without diacritics, and (for doubles) sometimes as two names
// concatenated into one string.
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining marks after NFD decomposition, turning
// "Côté" into "Cote".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize reduces a display name to its canonical lookup key:
// diacritics stripped, lowercased, punctuation other than the comma
// replaced by spaces, whitespace collapsed. A "Last, First" name is
// reordered so that "Lai, Victor" and "Victor Lai" share one key.
func Normalize(name string) string {
	s := clean(name)
	if i := strings.IndexByte(s, ','); i >= 0 {
		parts := splitComma(s)
		if len(parts) >= 2 {
			s = parts[1] + " " + parts[0]
		} else {
			s = strings.ReplaceAll(s, ",", " ")
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// AlternateKey returns the un-reordered "last first" key for a comma
// name. Some source lists print "Last First" without the comma, so the
// reverse index carries both spellings.
func AlternateKey(name string) (string, bool) {
	s := clean(name)
	parts := splitComma(s)
	if len(parts) < 2 {
		return "", false
	}
	return parts[0] + " " + parts[1], true
}

func clean(name string) string {
	s, _, err := transform.String(stripMarks, strings.TrimSpace(name))
	if err != nil {
		s = strings.TrimSpace(name)
	}
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == ',':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func splitComma(s string) []string {
	var parts []string
	for _, p := range strings.Split(s, ",") {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
