package i18n

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed locales.yaml
var localesYAML []byte

// Message keys every locale dictionary must provide. Completeness is checked
// once at startup; a missing entry is a configuration fault, not something to
// discover on a live submission.
const (
	KeyThanks         = "thanks"
	KeyError          = "error"
	KeyReply          = "reply"
	KeyTryAgain       = "tryAgain"
	KeyLoading        = "loadingMessage"
	KeyEmailNotExists = "emailNotExists"
	KeyBotInvite      = "botInvite"

	KeyFieldRequired = "validation.required"
	KeyNameInvalid   = "validation.name.invalid"
	KeyMinLength     = "validation.minLength"
	KeyMaxLength     = "validation.maxLength"
	KeyEmailInvalid  = "validation.email.invalid"
	KeyPhoneInvalid  = "validation.phone.invalid"
	KeyZipInvalid    = "validation.zip.invalid"
)

// RequiredKeys lists every key a locale must define.
var RequiredKeys = []string{
	KeyThanks, KeyError, KeyReply, KeyTryAgain, KeyLoading,
	KeyEmailNotExists, KeyBotInvite,
	KeyFieldRequired, KeyNameInvalid, KeyMinLength, KeyMaxLength,
	KeyEmailInvalid, KeyPhoneInvalid, KeyZipInvalid,
}

// Bundle holds the loaded locale dictionaries.
type Bundle struct {
	locales map[string]map[string]string
}

// Load parses the embedded dictionaries.
func Load() (*Bundle, error) {
	var locales map[string]map[string]string
	if err := yaml.Unmarshal(localesYAML, &locales); err != nil {
		return nil, fmt.Errorf("i18n: parse locales: %w", err)
	}
	if len(locales) == 0 {
		return nil, fmt.Errorf("i18n: no locales defined")
	}
	return &Bundle{locales: locales}, nil
}

// ErrLocaleNotFound reports a locale with no dictionary.
type ErrLocaleNotFound struct {
	Locale string
}

func (e *ErrLocaleNotFound) Error() string {
	return fmt.Sprintf("i18n: no dictionary for locale %q", e.Locale)
}

// VerifyComplete checks that every listed locale defines every required key.
// Run at startup; an error here halts initialization.
func (b *Bundle) VerifyComplete(locales []string) error {
	for _, loc := range locales {
		dict, ok := b.locales[loc]
		if !ok {
			return &ErrLocaleNotFound{Locale: loc}
		}
		for _, key := range RequiredKeys {
			if _, ok := dict[key]; !ok {
				return fmt.Errorf("i18n: locale %q is missing key %q", loc, key)
			}
		}
	}
	return nil
}

// Has reports whether the locale has a dictionary at all.
func (b *Bundle) Has(locale string) bool {
	_, ok := b.locales[locale]
	return ok
}

// Locales returns the supported locale codes, sorted.
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.locales))
	for loc := range b.locales {
		out = append(out, loc)
	}
	sort.Strings(out)
	return out
}

// T returns the message for key in the given locale, applying fmt args when
// present. Unknown keys come back as the key itself so the UI never renders
// an empty string; VerifyComplete is what keeps that branch unreachable.
func (b *Bundle) T(locale, key string, args ...any) string {
	dict, ok := b.locales[locale]
	if !ok {
		dict, ok = b.locales["en"]
		if !ok {
			return key
		}
	}
	msg, ok := dict[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
