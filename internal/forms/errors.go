package forms

import "errors"

var (
	// ErrConflictingRedirectTargets is returned when a form is configured
	// with both the CRM embed and the bot backend hand-off.
	ErrConflictingRedirectTargets = errors.New("forms: only one of CRM embed or bot backend redirect may be configured")

	// ErrMissingFormID is returned when an override has no form id.
	ErrMissingFormID = errors.New("forms: form id is required")

	// ErrBotNotConfigured is returned when the bot backend URL is set
	// without a bot username to deep-link to.
	ErrBotNotConfigured = errors.New("forms: bot backend requires a bot username")

	// ErrMissingEmailRecipient is returned when a form asks for email
	// notification but no recipient is configured.
	ErrMissingEmailRecipient = errors.New("forms: email notification requires a recipient")

	// ErrDuplicateForm is returned when a form id is registered twice.
	ErrDuplicateForm = errors.New("forms: form id already registered")

	// ErrFormNotFound is returned when looking up an unregistered form.
	ErrFormNotFound = errors.New("forms: form not found")
)
