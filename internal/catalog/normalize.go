package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var vietnameseLower = cases.Lower(language.Vietnamese)

// NameKey is the form of a movie name stored in name_lower and used for prefix search.
// It is NFC-normalized, lower-cased, and trimmed; accents are preserved.
func NameKey(name string) string {
	s := norm.NFC.String(strings.TrimSpace(name))
	return vietnameseLower.String(s)
}

// Slugify turns a display name into a URL slug: "Hành Động" -> "hanh-dong".
func Slugify(name string) string {
	s := strings.ToLower(removeAccents(name))
	// đ has no combining-mark decomposition
	s = strings.ReplaceAll(s, "đ", "d")

	var b strings.Builder
	dash := false
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}
