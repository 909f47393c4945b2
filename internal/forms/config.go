package forms

import "strings"

// RedirectTarget is the single post-submission destination of a form. The
// variant is closed and decided once at resolution time; there is no runtime
// flag sniffing on the submission path.
type RedirectTarget int

const (
	// TargetNone shows the localized success message and stops.
	TargetNone RedirectTarget = iota
	// TargetCRMEmbed hands the visitor to the third-party CRM embed.
	TargetCRMEmbed
	// TargetBot hands the visitor to the Telegram bot backend.
	TargetBot
)

func (t RedirectTarget) String() string {
	switch t {
	case TargetCRMEmbed:
		return "crm_embed"
	case TargetBot:
		return "bot"
	default:
		return "none"
	}
}

// Defaults are the site-wide values a form inherits when its overrides leave
// a field unset. They come from the environment at startup.
type Defaults struct {
	ProductName    string
	ProductID      string
	Locale         string
	EmailTitle     string
	EmailRecipient string

	// Redirect configuration. Setting both halts registration.
	CRMEmbedHash  string
	BotBackendURL string
	BotName       string
}

// Overrides are per-form settings supplied by the hosting page.
type Overrides struct {
	FormID         string `json:"form_id"`
	ProductName    string `json:"product_name,omitempty"`
	ProductID      string `json:"product_id,omitempty"`
	NeedSendEmail  bool   `json:"need_send_email,omitempty"`
	OnlySendEmail  bool   `json:"only_send_email,omitempty"`
	EmailTitle     string `json:"email_title,omitempty"`
	EmailRecipient string `json:"email_recipient,omitempty"`
	Locale         string `json:"locale,omitempty"`
	CRMEmbedHash   string `json:"crm_embed_hash,omitempty"`
	BotBackendURL  string `json:"bot_backend_url,omitempty"`
	BotName        string `json:"bot_name,omitempty"`
}

// FormConfig is the resolved, immutable configuration of one registered
// form. Precedence: explicit override > environment default > static
// fallback.
type FormConfig struct {
	FormID         string
	ProductName    string
	ProductID      string
	NeedSendEmail  bool
	OnlySendEmail  bool
	EmailTitle     string
	EmailRecipient string
	Locale         string

	Target        RedirectTarget
	CRMEmbedHash  string
	BotBackendURL string
	BotName       string
}

const (
	defaultEmailTitle = "New request"
	defaultLocale     = "uk"
)

// Resolve merges overrides with defaults into a FormConfig. Pure; safe to
// call repeatedly. Conflicting redirect targets and an unusable bot setup
// are rejected here, once, not on the submission path.
func Resolve(o Overrides, d Defaults) (*FormConfig, error) {
	if strings.TrimSpace(o.FormID) == "" {
		return nil, ErrMissingFormID
	}

	embedHash := strings.TrimSpace(firstNonEmpty(o.CRMEmbedHash, d.CRMEmbedHash))
	botURL := strings.TrimSpace(firstNonEmpty(o.BotBackendURL, d.BotBackendURL))
	botName := strings.TrimSpace(firstNonEmpty(o.BotName, d.BotName))
	if embedHash != "" && botURL != "" {
		return nil, ErrConflictingRedirectTargets
	}

	target := TargetNone
	switch {
	case embedHash != "":
		target = TargetCRMEmbed
	case botURL != "":
		target = TargetBot
		if botName == "" {
			return nil, ErrBotNotConfigured
		}
	}

	cfg := &FormConfig{
		FormID:         o.FormID,
		ProductName:    firstNonEmpty(o.ProductName, d.ProductName),
		ProductID:      firstNonEmpty(o.ProductID, d.ProductID),
		NeedSendEmail:  o.NeedSendEmail,
		OnlySendEmail:  o.OnlySendEmail,
		EmailTitle:     firstNonEmpty(o.EmailTitle, d.EmailTitle, defaultEmailTitle),
		EmailRecipient: firstNonEmpty(o.EmailRecipient, d.EmailRecipient),
		Locale:         firstNonEmpty(o.Locale, d.Locale, defaultLocale),
		Target:         target,
		CRMEmbedHash:   embedHash,
		BotBackendURL:  strings.TrimRight(botURL, "/"),
		BotName:        botName,
	}

	// onlySendEmail implies the email path is actually taken.
	if cfg.OnlySendEmail {
		cfg.NeedSendEmail = true
	}
	if cfg.NeedSendEmail && cfg.EmailRecipient == "" {
		return nil, ErrMissingEmailRecipient
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
