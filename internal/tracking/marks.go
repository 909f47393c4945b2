package tracking

import (
	"net/http"
	"time"
)

// UTMMarks are the campaign parameters captured from the landing URL.
var UTMMarks = []string{"utm_source", "utm_medium", "utm_content", "utm_term", "utm_campaign"}

// ReferralMarks identify partner traffic for the bot hand-off.
var ReferralMarks = []string{"SRC", "from", "fromID"}

const markCookieTTL = 30 * 24 * time.Hour

// AllMarks is every mark the gateway tracks.
func AllMarks() []string {
	return append(append([]string{}, UTMMarks...), ReferralMarks...)
}

// CaptureMarks copies the listed query parameters into cookies so they
// survive navigation until the visitor submits a form.
func CaptureMarks(marks []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query := r.URL.Query()
			for _, mark := range marks {
				value := query.Get(mark)
				if value == "" {
					continue
				}
				http.SetCookie(w, &http.Cookie{
					Name:     mark,
					Value:    value,
					Path:     "/",
					Expires:  time.Now().Add(markCookieTTL),
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MarksFromRequest reads the listed marks back from cookies, skipping the
// ones that were never captured.
func MarksFromRequest(r *http.Request, marks []string) map[string]string {
	out := make(map[string]string)
	for _, mark := range marks {
		if c, err := r.Cookie(mark); err == nil && c.Value != "" {
			out[mark] = c.Value
		}
	}
	return out
}
