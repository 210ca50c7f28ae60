package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SanitizeTitle turns a media title into a filesystem-safe file stem: the
// title is NFC-normalized, everything except letters, digits and whitespace is
// dropped, and each whitespace run becomes a single underscore. Leading and
// trailing whitespace is discarded, so the result never starts or ends with an
// underscore. The result is empty when nothing survives.
func SanitizeTitle(title string) string {
	title = norm.NFC.String(title)
	var b strings.Builder
	b.Grow(len(title))
	pendingSpace := false
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}
	return b.String()
}

// SanitizeToken converts a string to a filesystem-safe token. ASCII letters
// keep their case (video ids are case-sensitive), digits and hyphens or
// underscores are kept, everything else becomes an underscore. Returns
// "unknown" for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}
