package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dsergienko/leadgate/internal/crm"
	"github.com/dsergienko/leadgate/internal/domaincheck"
	httpmiddleware "github.com/dsergienko/leadgate/internal/http/middleware"
	"github.com/dsergienko/leadgate/internal/notify"
	"github.com/dsergienko/leadgate/internal/submission"
	"github.com/dsergienko/leadgate/internal/tracking"
	"github.com/dsergienko/leadgate/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	FormsHandler       *submission.Handler
	DomainHandler      *domaincheck.Handler
	MailHandler        *notify.Handler
	CRMHandler         *crm.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	r.Use(tracking.CaptureMarks(tracking.AllMarks()))

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/forms/{formID}", func(r chi.Router) {
		r.Get("/context", cfg.FormsHandler.FormContext)
		// Submissions get a tighter budget than reads.
		r.Group(func(r chi.Router) {
			if cfg.RateLimitPerSecond > 0 {
				r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
			}
			r.Post("/submit", cfg.FormsHandler.Submit)
			r.Post("/embed-mounted", cfg.FormsHandler.EmbedMounted)
		})
	})

	if cfg.DomainHandler != nil {
		r.Post("/check-email", cfg.DomainHandler.CheckEmail)
	}
	if cfg.MailHandler != nil {
		r.Post("/mail", cfg.MailHandler.SendMail)
	}
	if cfg.CRMHandler != nil {
		r.Post("/crm/lead", cfg.CRMHandler.ForwardLead)
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
