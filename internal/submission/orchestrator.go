package submission

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dsergienko/leadgate/internal/domaincheck"
	"github.com/dsergienko/leadgate/internal/forms"
	"github.com/dsergienko/leadgate/internal/i18n"
	"github.com/dsergienko/leadgate/internal/leads"
	"github.com/dsergienko/leadgate/internal/notify"
	"github.com/dsergienko/leadgate/internal/observability/metrics"
	"github.com/dsergienko/leadgate/internal/validation"
	"github.com/dsergienko/leadgate/pkg/logging"
)

// ErrCRMNotConfigured is returned when a form routes to the CRM but no
// connector is wired.
var ErrCRMNotConfigured = errors.New("submission: crm sink not configured")

// CRMSink receives the lead record; HTTP 200 upstream is the only success.
type CRMSink interface {
	SubmitLead(ctx context.Context, lead leads.LeadRecord) error
}

// BotSink registers the lead against an opaque session id and builds the
// deep link that continues the conversation.
type BotSink interface {
	SetUserVariables(ctx context.Context, uid string, variables map[string]string) error
	DeepLink(uid, fromID string) string
}

// Analytics receives page-level events (the dataLayer pushes of the legacy
// page).
type Analytics interface {
	Push(event string)
}

// LogAnalytics records analytics events in the structured log. Stands in
// when no tag-manager relay is wired.
type LogAnalytics struct {
	Logger *logging.Logger
}

func (a LogAnalytics) Push(event string) {
	if a.Logger != nil {
		a.Logger.Info("analytics event", "event", event)
	}
}

// Config wires the orchestrator's collaborators.
type Config struct {
	Registry  *forms.Registry
	Email     notify.EmailSender
	CRM       CRMSink
	Bot       BotSink
	Domain    domaincheck.Checker
	Presenter *notify.Presenter
	Analytics Analytics
	Metrics   *metrics.SubmissionMetrics
	Logger    *logging.Logger

	EmbedPollInterval time.Duration
	EmbedPollTimeout  time.Duration
}

// Service drives the submission lifecycle: validate, gate on the email
// domain, build the lead, dispatch to the configured sinks, and decide the
// post-submit hand-off.
type Service struct {
	registry  *forms.Registry
	email     notify.EmailSender
	crm       CRMSink
	bot       BotSink
	domain    domaincheck.Checker
	presenter *notify.Presenter
	analytics Analytics
	metrics   *metrics.SubmissionMetrics
	logger    *logging.Logger

	embedInterval time.Duration
	embedTimeout  time.Duration

	mu    sync.Mutex
	flows map[string]*flow
	gates map[string]*EmbedGate
}

// NewService creates the orchestrator.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	analytics := cfg.Analytics
	if analytics == nil {
		analytics = LogAnalytics{Logger: logger}
	}
	return &Service{
		registry:      cfg.Registry,
		email:         cfg.Email,
		crm:           cfg.CRM,
		bot:           cfg.Bot,
		domain:        cfg.Domain,
		presenter:     cfg.Presenter,
		analytics:     analytics,
		metrics:       cfg.Metrics,
		logger:        logger,
		embedInterval: cfg.EmbedPollInterval,
		embedTimeout:  cfg.EmbedPollTimeout,
		flows:         make(map[string]*flow),
		gates:         make(map[string]*EmbedGate),
	}
}

// SessionIDFunc generates bot session identifiers; swapped in tests.
var SessionIDFunc = defaultSessionID

func defaultSessionID() string {
	buf := make([]byte, 15)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(buf)
}

// Request is one submission attempt from the client.
type Request struct {
	SessionID   string
	CountryCode string
	GoogleID    string
	Fields      []validation.FieldValue
	Marks       map[string]string
}

// Redirect tells the client where to take the visitor after success.
type Redirect struct {
	Kind        string     `json:"kind"`
	Embed       *EmbedInit `json:"embed,omitempty"`
	EmbedParams url.Values `json:"embed_params,omitempty"`
	DeepLink    string     `json:"deep_link,omitempty"`
}

// Result is the full directive the thin client renders.
type Result struct {
	Ignored      bool                    `json:"ignored,omitempty"`
	Outcome      Outcome                 `json:"outcome,omitempty"`
	Step         int                     `json:"step"`
	FieldErrors  []validation.FieldError `json:"field_errors,omitempty"`
	Notification *notify.Notification    `json:"notification,omitempty"`
	Redirect     *Redirect               `json:"redirect,omitempty"`
	ShowForm     bool                    `json:"show_form,omitempty"`
	ResetForm    bool                    `json:"reset_form,omitempty"`
}

// Submit runs one submission attempt through the state machine. Attempts
// arriving while an earlier one is between Submitting and Terminal are
// ignored.
func (s *Service) Submit(ctx context.Context, formID string, req Request) (Result, error) {
	cfg, err := s.registry.Get(formID)
	if err != nil {
		return Result{}, err
	}

	fl := s.flow(formID, req.SessionID)
	if !fl.begin() {
		s.logger.Debug("submission ignored, cycle in flight", "form", formID)
		return Result{Ignored: true, Step: fl.currentStep()}, nil
	}

	// Field rules first, then phone validity, then the domain gate. Noting
	// the order here because each later check is costlier than the last.
	vctx := validation.Context{Locale: cfg.Locale, CountryCode: req.CountryCode}
	if errs := validation.Validate(req.Fields, vctx); len(errs) > 0 {
		fl.backToEditing()
		return Result{Step: StepInput, FieldErrors: errs, ShowForm: true}, nil
	}

	rawPhone, email, name, message := fieldValues(req.Fields)
	var phone string
	if rawPhone != "" {
		phone, err = validation.NormalizePhone(rawPhone)
		if err != nil {
			fl.backToEditing()
			return Result{
				Step:     StepInput,
				ShowForm: true,
				FieldErrors: []validation.FieldError{{
					FieldID:    fieldID(req.Fields, validation.FieldPhone),
					Rule:       validation.RuleCustom,
					MessageKey: i18n.KeyPhoneInvalid,
				}},
			}, nil
		}
	}

	if s.domain != nil {
		if err := s.domain.Check(ctx, email); err != nil {
			s.logger.Info("email domain rejected", "form", formID, "error", err)
			fl.backToEditing()
			errNote := s.presenter.Error(cfg.Locale, i18n.KeyEmailNotExists)
			return Result{Step: StepInput, ShowForm: true, Notification: &errNote}, nil
		}
	}

	// Everything downstream of this point sees a valid lead.
	lead := leads.NewLeadRecord(name, phone, email, message, cfg.ProductName, cfg.ProductID)
	fl.advance(StateSubmitting, StepInput)

	// Both dispatches start before either is awaited; their outcomes are
	// handled independently.
	var emailCh, crmCh chan error
	if cfg.NeedSendEmail {
		emailCh = make(chan error, 1)
		go func() { emailCh <- s.dispatchEmail(ctx, cfg, lead) }()
	}
	if !cfg.OnlySendEmail {
		crmCh = make(chan error, 1)
		go func() { crmCh <- s.dispatchCRM(ctx, lead) }()
	}

	s.analytics.Push("lead")

	if cfg.OnlySendEmail {
		res := s.completeEmailOnly(cfg, <-emailCh)
		fl.finish(res.Step)
		s.observe(formID, res.Outcome)
		return res, nil
	}

	fl.advance(StateSubmitting, StepTransition)

	crmErr := <-crmCh
	if emailCh != nil {
		// Drained for determinism; the outcome stays independent of the
		// CRM path.
		if err := <-emailCh; err != nil {
			s.logger.Error("email sink failed", "form", formID, "error", err)
		}
	}

	res := s.completeFullFlow(ctx, cfg, fl, lead, req, crmErr)
	fl.finish(res.Step)
	s.observe(formID, res.Outcome)
	return res, nil
}

// completeEmailOnly ends the flow on the email outcome alone; the CRM sink
// was never invoked.
func (s *Service) completeEmailOnly(cfg *forms.FormConfig, emailErr error) Result {
	if emailErr != nil {
		s.logger.Error("email sink failed", "form", cfg.FormID, "error", emailErr)
		errNote := s.presenter.Error(cfg.Locale, "")
		return Result{Outcome: OutcomeEmailFailed, Step: StepTerminal, Notification: &errNote, ShowForm: true}
	}
	okNote := s.presenter.Success(cfg.Locale, "")
	return Result{Outcome: OutcomeSuccess, Step: StepTerminal, Notification: &okNote, ResetForm: true}
}

func (s *Service) completeFullFlow(ctx context.Context, cfg *forms.FormConfig, fl *flow, lead leads.LeadRecord, req Request, crmErr error) Result {
	if crmErr != nil {
		s.logger.Error("crm sink failed", "form", cfg.FormID, "error", crmErr)
		// Re-show the form so the visitor can retry; the step indicator
		// stays on the transition step.
		errNote := s.presenter.Error(cfg.Locale, "")
		return Result{Outcome: OutcomeCrmFailed, Step: StepTransition, Notification: &errNote, ShowForm: true}
	}

	switch cfg.Target {
	case forms.TargetCRMEmbed:
		fl.advance(StateRedirectingCRM, StepTransition)
		return s.redirectToEmbed(cfg, lead, req)
	case forms.TargetBot:
		fl.advance(StateRedirectingBot, StepTransition)
		return s.redirectToBot(ctx, cfg, lead, req)
	default:
		fl.advance(StateCompleted, StepTerminal)
		okNote := s.presenter.Success(cfg.Locale, i18n.KeyReply)
		return Result{Outcome: OutcomeSuccess, Step: StepTerminal, Notification: &okNote, ResetForm: true}
	}
}

func (s *Service) redirectToEmbed(cfg *forms.FormConfig, lead leads.LeadRecord, req Request) Result {
	values := map[string]string{
		"phone":     lead.Phone,
		"email":     lead.Email,
		"name":      lead.Name,
		"google_id": req.GoogleID,
	}
	for mark, value := range req.Marks {
		values[mark] = value
	}

	gate := s.gate(cfg)
	init := gate.Initialize()

	// The mount wait runs detached: the client needs the embed payload
	// before it can mount anything. The bounded wait decides only the
	// analytics/metrics outcome.
	go s.watchEmbedMount(cfg.FormID, gate)

	return Result{
		Outcome: OutcomeSuccess,
		Step:    StepTerminal,
		Redirect: &Redirect{
			Kind:        cfg.Target.String(),
			Embed:       &init,
			EmbedParams: EmbedParams(values),
		},
		ResetForm: true,
	}
}

// watchEmbedMount waits for the client's mount signal and records how the
// hand-off ended.
func (s *Service) watchEmbedMount(formID string, gate *EmbedGate) {
	start := time.Now()
	if err := gate.AwaitMount(context.Background()); err != nil {
		s.logger.Error("embed mount wait failed", "form", formID, "error", err)
		s.observe(formID, OutcomeRedirectFailed)
		return
	}
	s.metrics.ObserveEmbedMountWait(time.Since(start).Seconds())
	s.analytics.Push("embed_mounted")
}

func (s *Service) redirectToBot(ctx context.Context, cfg *forms.FormConfig, lead leads.LeadRecord, req Request) Result {
	if s.bot == nil {
		s.logger.Error("bot redirect requested without a bot sink", "form", cfg.FormID)
		errNote := s.presenter.Error(cfg.Locale, "")
		return Result{Outcome: OutcomeRedirectFailed, Step: StepTerminal, Notification: &errNote}
	}
	uid := SessionIDFunc()

	variables := map[string]string{
		"name":         lead.Name,
		"phone":        lead.Phone,
		"email":        lead.Email,
		"product_name": lead.ProductName,
		"product_id":   lead.ProductID,
	}
	for mark, value := range req.Marks {
		variables[mark] = value
	}

	if err := s.bot.SetUserVariables(ctx, uid, variables); err != nil {
		s.logger.Error("bot sink failed", "form", cfg.FormID, "error", err)
		s.metrics.ObserveSinkFailure("bot")
		errNote := s.presenter.Error(cfg.Locale, "")
		return Result{Outcome: OutcomeRedirectFailed, Step: StepTerminal, Notification: &errNote}
	}

	deepLink := s.bot.DeepLink(uid, req.Marks["fromID"])
	note := s.presenter.Confirm(cfg.Locale, i18n.KeyBotInvite, "Telegram", deepLink)
	return Result{
		Outcome:      OutcomeSuccess,
		Step:         StepTerminal,
		Notification: &note,
		Redirect:     &Redirect{Kind: cfg.Target.String(), DeepLink: deepLink},
		ResetForm:    true,
	}
}

func (s *Service) dispatchEmail(ctx context.Context, cfg *forms.FormConfig, lead leads.LeadRecord) error {
	start := time.Now()
	err := s.email.Send(ctx, notify.EmailMessage{
		To:      cfg.EmailRecipient,
		Subject: cfg.EmailTitle,
		Name:    lead.Name,
		Phone:   lead.Phone,
		Email:   lead.Email,
		Message: lead.Message,
	})
	s.metrics.ObserveSinkLatency("email", time.Since(start).Seconds())
	if err != nil {
		s.metrics.ObserveSinkFailure("email")
	}
	return err
}

func (s *Service) dispatchCRM(ctx context.Context, lead leads.LeadRecord) error {
	if s.crm == nil {
		s.metrics.ObserveSinkFailure("crm")
		return ErrCRMNotConfigured
	}
	start := time.Now()
	err := s.crm.SubmitLead(ctx, lead)
	s.metrics.ObserveSinkLatency("crm", time.Since(start).Seconds())
	if err != nil {
		s.metrics.ObserveSinkFailure("crm")
	}
	return err
}

// SignalEmbedMounted forwards the client's mount report to the form's gate.
func (s *Service) SignalEmbedMounted(formID string) error {
	cfg, err := s.registry.Get(formID)
	if err != nil {
		return err
	}
	s.gate(cfg).SignalMounted()
	return nil
}

// Step reports the current form step for a session, for the context
// endpoint.
func (s *Service) Step(formID, sessionID string) int {
	return s.flow(formID, sessionID).currentStep()
}

func (s *Service) flow(formID, sessionID string) *flow {
	if sessionID == "" {
		sessionID = "default"
	}
	key := formID + ":" + sessionID
	s.mu.Lock()
	defer s.mu.Unlock()
	fl, ok := s.flows[key]
	if !ok {
		fl = newFlow()
		s.flows[key] = fl
	}
	return fl
}

func (s *Service) gate(cfg *forms.FormConfig) *EmbedGate {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gates[cfg.FormID]
	if !ok {
		g = NewEmbedGate(cfg.CRMEmbedHash, s.embedInterval, s.embedTimeout)
		s.gates[cfg.FormID] = g
	}
	return g
}

func (s *Service) observe(formID string, outcome Outcome) {
	if outcome == "" {
		return
	}
	s.metrics.ObserveSubmission(formID, string(outcome))
}

func fieldValues(fields []validation.FieldValue) (phone, email, name, message string) {
	for _, f := range fields {
		switch f.Kind {
		case validation.FieldPhone:
			phone = f.Value
		case validation.FieldEmail:
			email = f.Value
		case validation.FieldName:
			name = f.Value
		case validation.FieldMessage, validation.FieldTextarea:
			if message == "" {
				message = f.Value
			}
		}
	}
	return
}

func fieldID(fields []validation.FieldValue, kind validation.FieldKind) string {
	for _, f := range fields {
		if f.Kind == kind {
			return f.ID
		}
	}
	return string(kind)
}
