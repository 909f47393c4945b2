package validation

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidPhone is returned when a number cannot be normalized to E.164.
var ErrInvalidPhone = errors.New("validation: phone number is not a valid E.164 number")

var e164Pattern = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)

// NormalizePhone strips formatting characters and checks the result is a
// full international E.164 number. The page delegated this to the phone
// widget; here it is the explicit gate after the field rules.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
			// formatting, dropped
		default:
			return "", ErrInvalidPhone
		}
	}
	phone := b.String()
	if !e164Pattern.MatchString(phone) {
		return "", ErrInvalidPhone
	}
	return phone, nil
}
