package wheel

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize strips diacritics, upper-cases and drops whitespace, so that
// "café" and "CAFE" compare equal. Marks go before case mapping: some
// precomposed letters have no single-rune upper case of their own.
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(s string) string {
	// Transformers are stateful, build a fresh chain per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, stripped)
}

// NormalizeLetter maps a guessed rune onto the phrase alphabet.
func NormalizeLetter(r rune) (rune, bool) {
	n := []rune(Normalize(string(r)))
	if len(n) != 1 || !unicode.IsLetter(n[0]) {
		return 0, false
	}
	return n[0], true
}
