package leads

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// sanitizer strips any markup from free-text input before it reaches a sink.
var sanitizer = bluemonday.StrictPolicy()

// LeadRecord is the normalized captured lead. Built once per successful
// validation pass and passed by value to every sink; never mutated after
// construction.
type LeadRecord struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Message     string `json:"message,omitempty"`
	ProductName string `json:"product_name"`
	ProductID   string `json:"product_id"`
}

// NewLeadRecord builds a lead from validated input. Name and message are
// trimmed and stripped of markup; phone is expected to already be E.164.
func NewLeadRecord(name, phone, email, message, productName, productID string) LeadRecord {
	return LeadRecord{
		Name:        sanitize(name),
		Phone:       strings.TrimSpace(phone),
		Email:       strings.TrimSpace(email),
		Message:     sanitize(message),
		ProductName: productName,
		ProductID:   productID,
	}
}

// sanitize strips markup, then unescapes the entities bluemonday inserts.
// Sinks render plain text, not HTML, so "O'Neil" must stay "O'Neil".
func sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(s)))
}
