package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dsergienko/leadgate/internal/i18n"
)

// RuleKind identifies the check a Rule performs.
type RuleKind string

const (
	RuleRequired  RuleKind = "required"
	RuleMinLength RuleKind = "minLength"
	RuleMaxLength RuleKind = "maxLength"
	RuleRegexp    RuleKind = "regexp"
	RuleCustom    RuleKind = "custom"
)

// Rule is one declarative validation check. Rules are resolved from the
// tables below at validation time, never stored per field instance.
type Rule struct {
	Kind       RuleKind
	Length     int
	Pattern    *regexp.Regexp
	Check      func(value string, ctx Context) bool
	MessageKey string
	MessageArg int
}

// emailPattern is deliberately stricter than net/mail: no leading dot or
// dash in the local part, a real dotted domain with a 2-10 letter TLD.
var emailPattern = regexp.MustCompile(`^[^-.\\!?&/][^<>!?&()\[\],;:\s@"]*(\.[^<>()\[\]\\.,;:\s@"]+)*@([a-zA-Z0-9-]+\.)+[a-zA-Z]{2,10}$`)

// baseRules holds the static per-kind tables in declared order. The required
// rule is not part of the tables; RulesFor prepends it for fields marked
// required in the markup.
var baseRules = map[FieldKind][]Rule{
	FieldName: {
		{Kind: RuleCustom, Check: nameValid, MessageKey: i18n.KeyNameInvalid},
		{Kind: RuleMinLength, Length: 3, MessageKey: i18n.KeyMinLength, MessageArg: 3},
		{Kind: RuleMaxLength, Length: 30, MessageKey: i18n.KeyMaxLength, MessageArg: 30},
	},
	FieldPhone: {},
	FieldEmail: {
		{Kind: RuleMinLength, Length: 3, MessageKey: i18n.KeyMinLength, MessageArg: 3},
		{Kind: RuleMaxLength, Length: 63, MessageKey: i18n.KeyMaxLength, MessageArg: 63},
		{Kind: RuleRegexp, Pattern: emailPattern, MessageKey: i18n.KeyEmailInvalid},
	},
	FieldMessage: {
		{Kind: RuleMinLength, Length: 3, MessageKey: i18n.KeyMinLength, MessageArg: 3},
		{Kind: RuleMaxLength, Length: 1000, MessageKey: i18n.KeyMaxLength, MessageArg: 1000},
	},
	FieldCheckbox: {},
	FieldZip: {
		{Kind: RuleMinLength, Length: 2, MessageKey: i18n.KeyMinLength, MessageArg: 2},
		{Kind: RuleMaxLength, Length: 20, MessageKey: i18n.KeyMaxLength, MessageArg: 20},
	},
	FieldText: {
		{Kind: RuleMinLength, Length: 3, MessageKey: i18n.KeyMinLength, MessageArg: 3},
		{Kind: RuleMaxLength, Length: 100, MessageKey: i18n.KeyMaxLength, MessageArg: 100},
	},
	FieldTextarea: {
		{Kind: RuleMinLength, Length: 3, MessageKey: i18n.KeyMinLength, MessageArg: 3},
		{Kind: RuleMaxLength, Length: 500, MessageKey: i18n.KeyMaxLength, MessageArg: 500},
	},
	FieldSelect: {},
}

var requiredRule = Rule{Kind: RuleRequired, MessageKey: i18n.KeyFieldRequired}

// RulesFor resolves the ordered rule sequence for a field kind. The required
// rule, when present, always comes first; the rest keep the table's declared
// order. The zip pattern rule is looked up from the postal table on every
// call because the selected country can change between passes.
func RulesFor(kind FieldKind, required bool, ctx Context) []Rule {
	base := baseRules[kind]
	out := make([]Rule, 0, len(base)+2)
	if required {
		out = append(out, requiredRule)
	}
	out = append(out, base...)
	if kind == FieldZip {
		if pattern := postalPattern(ctx.CountryCode); pattern != nil {
			out = append(out, Rule{
				Kind:       RuleCustom,
				Check:      zipCheck(pattern),
				MessageKey: i18n.KeyZipInvalid,
			})
		}
	}
	return out
}

// zipCheck mirrors the page's behavior: values of a single character are let
// through so the length rules report first.
func zipCheck(pattern *regexp.Regexp) func(string, Context) bool {
	return func(value string, _ Context) bool {
		if utf8.RuneCountInString(value) <= 1 {
			return true
		}
		return pattern.MatchString(value)
	}
}

func nameValid(value string, ctx Context) bool {
	return NamePattern(ctx.Locale).MatchString(value)
}

// valid applies one rule to a value.
func (r Rule) valid(value string, ctx Context) bool {
	switch r.Kind {
	case RuleRequired:
		return strings.TrimSpace(value) != ""
	case RuleMinLength:
		return utf8.RuneCountInString(value) >= r.Length
	case RuleMaxLength:
		return utf8.RuneCountInString(value) <= r.Length
	case RuleRegexp:
		return r.Pattern.MatchString(value)
	case RuleCustom:
		return r.Check(value, ctx)
	default:
		return true
	}
}

// ValidateField runs the resolved rules against one value and returns the
// first failure, or nil. Non-required rules are skipped on empty values so an
// optional blank field never fails a length or pattern check.
func ValidateField(field FieldValue, ctx Context) *FieldError {
	for _, rule := range RulesFor(field.Kind, field.Required, ctx) {
		if rule.Kind != RuleRequired && strings.TrimSpace(field.Value) == "" {
			continue
		}
		if !rule.valid(field.Value, ctx) {
			return &FieldError{
				FieldID:    field.ID,
				Rule:       rule.Kind,
				MessageKey: rule.MessageKey,
				MessageArg: rule.MessageArg,
			}
		}
	}
	return nil
}

// Validate checks every field independently and collects the first failing
// rule of each.
func Validate(fields []FieldValue, ctx Context) []FieldError {
	var errs []FieldError
	for _, f := range fields {
		if fe := ValidateField(f, ctx); fe != nil {
			errs = append(errs, *fe)
		}
	}
	return errs
}
