package validation

import "regexp"

// Locale-specific name patterns. The default covers Latin plus Cyrillic
// (including the Ukrainian letters) with common name punctuation, total
// length 2-20.
var (
	nameLatin    = regexp.MustCompile(`(?i)^[a-zñáéíóúü ,.'-]+$`)
	namePolish   = regexp.MustCompile(`(?i)^.*[a-ząćęłńóśżź ,.'-]{2,}$`)
	nameRomanian = regexp.MustCompile(`(?i)^[a-z0-9à-ž ,.'-]{2,}$`)
	nameDefault  = regexp.MustCompile("(?i)^.[a-zа-яёїієґ0-9 ,.'`-]{1,19}$")
)

// NamePattern returns the name regexp for the locale, falling back to the
// permissive Latin+Cyrillic default.
func NamePattern(locale string) *regexp.Regexp {
	switch locale {
	case "en", "es":
		return nameLatin
	case "pl":
		return namePolish
	case "ro":
		return nameRomanian
	default:
		return nameDefault
	}
}
