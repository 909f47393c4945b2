package i18n

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadAndVerifyComplete(t *testing.T) {
	b, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.VerifyComplete(b.Locales()); err != nil {
		t.Fatalf("embedded dictionaries incomplete: %v", err)
	}
}

func TestVerifyCompleteReportsMissingLocale(t *testing.T) {
	b, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = b.VerifyComplete([]string{"en", "xx"})
	if err == nil {
		t.Fatal("expected an error for an unknown locale")
	}
	var notFound *ErrLocaleNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrLocaleNotFound, got %v", err)
	}
	if notFound.Locale != "xx" {
		t.Errorf("expected locale xx in error, got %q", notFound.Locale)
	}
}

func TestTranslateWithArgs(t *testing.T) {
	b, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := b.T("en", KeyMinLength, 3)
	if !strings.Contains(got, "3") {
		t.Errorf("expected the length in the message, got %q", got)
	}
}

func TestTranslateFallsBackToKey(t *testing.T) {
	b, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := b.T("en", "no.such.key"); got != "no.such.key" {
		t.Errorf("expected the key as fallback, got %q", got)
	}
}

func TestUnknownLocaleFallsBackToEnglish(t *testing.T) {
	b, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := b.T("xx", KeyThanks); got == KeyThanks {
		t.Errorf("expected an English message for unknown locale, got the key %q", got)
	}
}
