package submission

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dsergienko/leadgate/internal/forms"
	"github.com/dsergienko/leadgate/internal/geo"
	"github.com/dsergienko/leadgate/internal/i18n"
	"github.com/dsergienko/leadgate/internal/tracking"
	"github.com/dsergienko/leadgate/internal/validation"
	"github.com/dsergienko/leadgate/pkg/logging"
)

const sessionCookie = "lg_session"

// HandlerConfig wires the HTTP surface of the submission service.
type HandlerConfig struct {
	Service  *Service
	Registry *forms.Registry
	Geo      *geo.Resolver
	Bundle   *i18n.Bundle
	Logger   *logging.Logger

	DefaultPhoneCountry string
	PreferredCountries  []string
	ExcludedCountries   []string
	GTMID               string
}

// Handler serves the form context and submission endpoints.
type Handler struct {
	service  *Service
	registry *forms.Registry
	geo      *geo.Resolver
	bundle   *i18n.Bundle
	logger   *logging.Logger

	defaultPhoneCountry string
	preferredCountries  []string
	excludedCountries   []string
	gtmID               string
}

// NewHandler creates the handler.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service:             cfg.Service,
		registry:            cfg.Registry,
		geo:                 cfg.Geo,
		bundle:              cfg.Bundle,
		logger:              logger,
		defaultPhoneCountry: cfg.DefaultPhoneCountry,
		preferredCountries:  cfg.PreferredCountries,
		excludedCountries:   cfg.ExcludedCountries,
		gtmID:               cfg.GTMID,
	}
}

type contextResponse struct {
	FormID             string            `json:"form_id"`
	Locale             string            `json:"locale"`
	Step               int               `json:"step"`
	CountryCode        string            `json:"country_code"`
	PreferredCountries []string          `json:"preferred_countries"`
	ExcludedCountries  []string          `json:"excluded_countries"`
	GTMID              string            `json:"gtm_id,omitempty"`
	Messages           map[string]string `json:"messages"`
}

// FormContext returns everything the client needs to render a form: the
// visitor's country for the phone widget, localized strings, and the
// session's current step.
func (h *Handler) FormContext(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")
	cfg, err := h.registry.Get(formID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	country := h.defaultPhoneCountry
	if h.geo != nil {
		country = h.geo.ResolveCountry(r.Context(), h.defaultPhoneCountry)
	}

	messages := make(map[string]string, len(i18n.RequiredKeys))
	for _, key := range i18n.RequiredKeys {
		messages[key] = h.bundle.T(cfg.Locale, key)
	}

	sessionID := h.session(w, r)
	writeJSON(w, http.StatusOK, contextResponse{
		FormID:             cfg.FormID,
		Locale:             cfg.Locale,
		Step:               h.service.Step(formID, sessionID),
		CountryCode:        country,
		PreferredCountries: h.preferredCountries,
		ExcludedCountries:  h.excludedCountries,
		GTMID:              h.gtmID,
		Messages:           messages,
	})
}

type submitRequest struct {
	CountryCode string                  `json:"country_code"`
	GoogleID    string                  `json:"google_id"`
	Fields      []validation.FieldValue `json:"fields"`
}

// Submit accepts one submission attempt and returns the rendering
// directive. Tracking marks come from the cookies the marks middleware
// captured, not from the request body.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Fields) == 0 {
		writeError(w, http.StatusBadRequest, "no fields submitted")
		return
	}

	sessionID := h.session(w, r)
	result, err := h.service.Submit(r.Context(), formID, Request{
		SessionID:   sessionID,
		CountryCode: req.CountryCode,
		GoogleID:    req.GoogleID,
		Fields:      req.Fields,
		Marks:       tracking.MarksFromRequest(r, tracking.AllMarks()),
	})
	if err != nil {
		h.logger.Error("submission failed", "form", formID, "error", err)
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// EmbedMounted records the client's report that the CRM embed finished
// mounting.
func (h *Handler) EmbedMounted(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")
	if err := h.service.SignalEmbedMounted(formID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// session returns the visitor's session id, minting a cookie on first
// contact.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
