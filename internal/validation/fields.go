package validation

// FieldKind is the semantic category of a form field. It decides which rule
// set applies, the way the markup's data-field attribute did on the page.
type FieldKind string

const (
	FieldName     FieldKind = "name"
	FieldPhone    FieldKind = "phone"
	FieldEmail    FieldKind = "email"
	FieldMessage  FieldKind = "message"
	FieldCheckbox FieldKind = "checkbox"
	FieldZip      FieldKind = "zip"
	FieldText     FieldKind = "text"
	FieldTextarea FieldKind = "textarea"
	FieldSelect   FieldKind = "select"
)

// KnownKinds lists every kind with a rule table.
var KnownKinds = []FieldKind{
	FieldName, FieldPhone, FieldEmail, FieldMessage, FieldCheckbox,
	FieldZip, FieldText, FieldTextarea, FieldSelect,
}

// FieldValue is one submitted field to validate.
type FieldValue struct {
	ID       string    `json:"id"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
	Value    string    `json:"value"`
}

// FieldError reports the first failing rule for a field. Validation of one
// field never touches the state of another.
type FieldError struct {
	FieldID    string   `json:"field_id"`
	Rule       RuleKind `json:"rule"`
	MessageKey string   `json:"message_key"`
	MessageArg int      `json:"message_arg,omitempty"`
}

// Context carries the per-pass inputs rule resolution depends on. The country
// code follows the country select widget, so it may differ between passes.
type Context struct {
	Locale      string
	CountryCode string
}
