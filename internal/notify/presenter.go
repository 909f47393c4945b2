package notify

import (
	"time"

	"github.com/dsergienko/leadgate/internal/i18n"
)

// autoCloseAfter is the fixed dismissal window for transient notifications.
const autoCloseAfter = 2 * time.Second

// Notification is the transient message the client renders after a
// submission outcome. Text is always localized; raw error strings never
// reach this struct.
type Notification struct {
	Title       string `json:"title"`
	Message     string `json:"message"`
	Icon        string `json:"icon"`
	AutoClose   bool   `json:"auto_close"`
	AutoCloseMS int    `json:"auto_close_ms,omitempty"`
	Countdown   bool   `json:"countdown,omitempty"`
	ConfirmText string `json:"confirm_text,omitempty"`
	ConfirmLink string `json:"confirm_link,omitempty"`
}

// Presenter maps outcomes to localized notifications.
type Presenter struct {
	bundle *i18n.Bundle
}

// NewPresenter creates a presenter over the loaded dictionaries.
func NewPresenter(bundle *i18n.Bundle) *Presenter {
	return &Presenter{bundle: bundle}
}

// Success builds an auto-closing success notification. An empty messageKey
// falls back to the stock reply message.
func (p *Presenter) Success(locale, messageKey string) Notification {
	if messageKey == "" {
		messageKey = i18n.KeyReply
	}
	return Notification{
		Title:       p.bundle.T(locale, i18n.KeyThanks),
		Message:     p.bundle.T(locale, messageKey),
		Icon:        "success",
		AutoClose:   true,
		AutoCloseMS: int(autoCloseAfter.Milliseconds()),
		Countdown:   true,
	}
}

// Error builds an auto-closing error notification. An empty messageKey falls
// back to the generic try-again message.
func (p *Presenter) Error(locale, messageKey string) Notification {
	if messageKey == "" {
		messageKey = i18n.KeyTryAgain
	}
	return Notification{
		Title:       p.bundle.T(locale, i18n.KeyError),
		Message:     p.bundle.T(locale, messageKey),
		Icon:        "error",
		AutoClose:   true,
		AutoCloseMS: int(autoCloseAfter.Milliseconds()),
		Countdown:   true,
	}
}

// Confirm builds a manual-dismiss notification carrying a follow-up link the
// client opens in a new browsing context on confirmation.
func (p *Presenter) Confirm(locale, messageKey, confirmText, confirmLink string) Notification {
	return Notification{
		Title:       p.bundle.T(locale, i18n.KeyThanks),
		Message:     p.bundle.T(locale, messageKey),
		Icon:        "success",
		AutoClose:   false,
		ConfirmText: confirmText,
		ConfirmLink: confirmLink,
	}
}
