package notify

import (
	"testing"

	"github.com/dsergienko/leadgate/internal/i18n"
)

func testPresenter(t *testing.T) *Presenter {
	t.Helper()
	bundle, err := i18n.Load()
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}
	return NewPresenter(bundle)
}

func TestSuccessNotificationAutoCloses(t *testing.T) {
	p := testPresenter(t)
	n := p.Success("en", "")

	if !n.AutoClose {
		t.Error("expected success notification to auto-close")
	}
	if n.AutoCloseMS != 2000 {
		t.Errorf("expected 2000ms auto-close window, got %d", n.AutoCloseMS)
	}
	if !n.Countdown {
		t.Error("expected countdown on auto-closing notification")
	}
	if n.Icon != "success" {
		t.Errorf("expected success icon, got %q", n.Icon)
	}
	if n.Message == "" || n.Message == i18n.KeyReply {
		t.Errorf("expected a localized message, got %q", n.Message)
	}
}

func TestErrorNotificationAutoCloses(t *testing.T) {
	p := testPresenter(t)
	n := p.Error("uk", "")

	if !n.AutoClose || n.AutoCloseMS != 2000 {
		t.Errorf("expected 2000ms auto-close, got %+v", n)
	}
	if n.Icon != "error" {
		t.Errorf("expected error icon, got %q", n.Icon)
	}
}

func TestConfirmNotificationStaysOpen(t *testing.T) {
	p := testPresenter(t)
	n := p.Confirm("en", i18n.KeyBotInvite, "Telegram", "https://t.me/lead_bot?start=UID-abc")

	if n.AutoClose {
		t.Error("expected confirm notification to require manual dismissal")
	}
	if n.ConfirmText != "Telegram" {
		t.Errorf("unexpected confirm text %q", n.ConfirmText)
	}
	if n.ConfirmLink == "" {
		t.Error("expected a confirm link")
	}
}
