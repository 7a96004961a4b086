package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripAccents folds accented letters to their base form: "Ñuñoa" -> "Nunoa".
// Idempotent.
func StripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// Tokenize splits free text into lowercase ascii tokens. Anything outside
// [a-z0-9] acts as a separator, so "Pérez-Gómez" yields ["perez", "gomez"].
func Tokenize(s string) []string {
	folded := strings.ToLower(StripAccents(s))
	spaced := strings.Map(func(r rune) rune {
		if isLowerAlnum(r) {
			return r
		}
		return ' '
	}, folded)
	return strings.Fields(spaced)
}

// IdentityKey collapses a free-text cell into an uppercase alphanumeric key
// for exact matching, e.g. " ingresó " == "INGRESO".
func IdentityKey(s string) string {
	folded := strings.ToUpper(StripAccents(s))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CanonicalEmail lowercases and accent-folds an address, keeping only
// [a-z0-9.] in the local part and domain. A value with no "@" stays a bare
// local part, directory exports sometimes omit the domain alias.
func CanonicalEmail(s string) string {
	folded := strings.ToLower(StripAccents(s))
	local, domain, hasDomain := strings.Cut(folded, "@")
	if !hasDomain {
		return keepEmailRunes(local)
	}
	return keepEmailRunes(local) + "@" + keepEmailRunes(domain)
}

// DigitsOnly keeps decimal digits: "DNI 12345678-9" -> "123456789".
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func keepEmailRunes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isLowerAlnum(r) || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isLowerAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
