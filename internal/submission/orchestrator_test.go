package submission

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dsergienko/leadgate/internal/domaincheck"
	"github.com/dsergienko/leadgate/internal/forms"
	"github.com/dsergienko/leadgate/internal/i18n"
	"github.com/dsergienko/leadgate/internal/leads"
	"github.com/dsergienko/leadgate/internal/notify"
	"github.com/dsergienko/leadgate/internal/validation"
)

type fakeEmail struct {
	mu   sync.Mutex
	sent []notify.EmailMessage
	err  error
}

func (f *fakeEmail) Send(_ context.Context, msg notify.EmailMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

func (f *fakeEmail) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeCRM struct {
	mu    sync.Mutex
	leads []leads.LeadRecord
	err   error
	block chan struct{}
}

func (f *fakeCRM) SubmitLead(_ context.Context, lead leads.LeadRecord) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leads = append(f.leads, lead)
	return f.err
}

func (f *fakeCRM) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.leads)
}

type fakeBot struct {
	uid  string
	vars map[string]string
	err  error
}

func (f *fakeBot) SetUserVariables(_ context.Context, uid string, variables map[string]string) error {
	f.uid = uid
	f.vars = variables
	return f.err
}

func (f *fakeBot) DeepLink(uid, fromID string) string {
	link := "https://t.me/lead_bot?start=UID-" + uid
	if fromID != "" {
		link += "__FROM-" + fromID
	}
	return link
}

type fakeDomain struct {
	err     error
	checked []string
}

func (f *fakeDomain) Check(_ context.Context, email string) error {
	f.checked = append(f.checked, email)
	return f.err
}

type env struct {
	service *Service
	email   *fakeEmail
	crm     *fakeCRM
	bot     *fakeBot
	domain  *fakeDomain
}

func newTestEnv(t *testing.T, defaults forms.Defaults, overrides ...forms.Overrides) *env {
	t.Helper()

	bundle, err := i18n.Load()
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}

	registry := forms.NewRegistry()
	if len(overrides) == 0 {
		overrides = []forms.Overrides{{FormID: "leadForm"}}
	}
	for _, o := range overrides {
		if _, err := registry.Register(o, defaults); err != nil {
			t.Fatalf("register form: %v", err)
		}
	}

	e := &env{
		email:  &fakeEmail{},
		crm:    &fakeCRM{},
		bot:    &fakeBot{},
		domain: &fakeDomain{},
	}
	e.service = NewService(Config{
		Registry:          registry,
		Email:             e.email,
		CRM:               e.crm,
		Bot:               e.bot,
		Domain:            e.domain,
		Presenter:         notify.NewPresenter(bundle),
		EmbedPollInterval: time.Millisecond,
		EmbedPollTimeout:  10 * time.Millisecond,
	})
	return e
}

func validFields() []validation.FieldValue {
	return []validation.FieldValue{
		{ID: "name", Kind: validation.FieldName, Required: true, Value: "John Smith"},
		{ID: "phone", Kind: validation.FieldPhone, Required: true, Value: "+1 212 555 0100"},
		{ID: "email", Kind: validation.FieldEmail, Required: true, Value: "john@example.com"},
	}
}

func TestSubmitCRMEmbedHappyPath(t *testing.T) {
	e := newTestEnv(t, forms.Defaults{
		Locale:         "en",
		EmailRecipient: "sales@example.com",
		CRMEmbedHash:   "hash-1",
		ProductName:    "Main product",
		ProductID:      "p-1",
	}, forms.Overrides{FormID: "leadForm", NeedSendEmail: true})

	res, err := e.service.Submit(context.Background(), "leadForm", Request{
		SessionID: "s1",
		Fields:    validFields(),
		Marks:     map[string]string{"utm_source": "google"},
		GoogleID:  "GA1.2.3",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Outcome != OutcomeSuccess {
		t.Fatalf("expected success, got %s", res.Outcome)
	}
	if res.Step != StepTerminal {
		t.Errorf("expected step %d, got %d", StepTerminal, res.Step)
	}
	if !res.ResetForm {
		t.Error("expected the form to reset after success")
	}
	if res.Redirect == nil || res.Redirect.Embed == nil {
		t.Fatalf("expected an embed redirect, got %+v", res.Redirect)
	}
	if res.Redirect.Embed.Hash != "hash-1" {
		t.Errorf("unexpected embed hash %q", res.Redirect.Embed.Hash)
	}
	if got := res.Redirect.EmbedParams.Get("first_name"); got != "John Smith" {
		t.Errorf("expected name in embed params, got %q", got)
	}
	if got := res.Redirect.EmbedParams.Get("phone"); got != "+12125550100" {
		t.Errorf("expected normalized phone in embed params, got %q", got)
	}
	if got := res.Redirect.EmbedParams.Get("ga"); got != "GA1.2.3" {
		t.Errorf("expected google id in embed params, got %q", got)
	}

	if e.crm.count() != 1 {
		t.Fatalf("expected one CRM dispatch, got %d", e.crm.count())
	}
	if e.crm.leads[0].Phone != "+12125550100" {
		t.Errorf("expected normalized phone in lead, got %q", e.crm.leads[0].Phone)
	}
	if e.email.count() != 1 {
		t.Fatalf("expected one mail, got %d", e.email.count())
	}
	if len(e.domain.checked) != 1 || e.domain.checked[0] != "john@example.com" {
		t.Errorf("expected one domain check, got %v", e.domain.checked)
	}
}

func TestSubmitOnlySendEmailNeverInvokesCRM(t *testing.T) {
	e := newTestEnv(t, forms.Defaults{
		Locale:         "en",
		EmailRecipient: "sales@example.com",
	}, forms.Overrides{FormID: "leadForm", OnlySendEmail: true})

	res, err := e.service.Submit(context.Background(), "leadForm", Request{
		SessionID: "s1",
		Fields:    validFields(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Outcome != OutcomeSuccess {
		t.Fatalf("expected success, got %s", res.Outcome)
	}
	if e.crm.count() != 0 {
		t.Fatalf("expected no CRM dispatch, got %d", e.crm.count())
	}
	if e.email.count() != 1 {
		t.Fatalf("expected one mail, got %d", e.email.count())
	}
	if res.Notification == nil || !res.Notification.AutoClose {
		t.Errorf("expected an auto-closing notification, got %+v", res.Notification)
	}
}

func TestSubmitOnlySendEmailFailure(t *testing.T) {
	e := newTestEnv(t, forms.Defaults{
		Locale:         "en",
		EmailRecipient: "sales@example.com",
	}, forms.Overrides{FormID: "leadForm", OnlySendEmail: true})
	e.email.err = errors.New("sendgrid down")

	res, err := e.service.Submit(context.Background(), "leadForm", Request{
		SessionID: "s1",
		Fields:    validFields(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeEmailFailed {
		t.Fatalf("expected email_failed, got %s", res.Outcome)
	}
	if !res.ShowForm {
		t.Error("expected the form to be shown again")
	}
}

func TestSubmitRejectedDomainDispatchesNothing(t *testing.T) {
	e := newTestEnv(t, forms.Defaults{
		Locale:         "en",
		EmailRecipient: "sales@example.com",
		CRMEmbedHash:   "hash-1",
	}, forms.Overrides{FormID: "leadForm", NeedSendEmail: true})
	e.domain.err = domaincheck.ErrNoMXRecords

	res, err := e.service.Submit(context.Background(), "leadForm", Request{
		SessionID: "s1",
		Fields:    validFields(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if e.crm.count() != 0 || e.email.count() != 0 {
		t.Fatalf("expected no dispatch, got crm=%d email=%d", e.crm.count(), e.email.count())
	}
	if res.Step != StepInput {
		t.Errorf("expected step %d, got %d", StepInput, res.Step)
	}
	if !res.ShowForm {
		t.Error("expected the form to be shown again")
	}
	if res.Notification == nil || res.Notification.Icon != "error" {
		t.Errorf("expected an error notification, got %+v", res.Notification)
	}
}

func TestSubmitValidationFailure(t *testing.T) {
	e := newTestEnv(t, forms.Defaults{Locale: "en", CRMEmbedHash: "hash-1"})

	res, err := e.service.Submit(context.Background(), "leadForm", Request{
		SessionID: "s1",
		Fields: []validation.FieldValue{
			{ID: "name", Kind: validation.FieldName, Required: true, Value: ""},
			{ID: "email", Kind: validation.FieldEmail, Required: true, Value: "bad"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.FieldErrors) != 2 {
		t.Fatalf("expected two field errors, got %+v", res.FieldErrors)
	}
	if res.Step != StepInput {
		t.Errorf("expected step %d, got %d", StepInput, res.Step)
	}
	if e.crm.count() != 0 || e.email.count() != 0 {
		t.Error("expected no dispatch on validation failure")
	}
	if len(e.domain.checked) != 0 {
		t.Error("expected no domain check on validation failure")
	}
}

func TestSubmitInvalidPhoneReportsFieldError(t *testing.T) {
	e := newTestEnv(t, forms.Defaults{Locale: "en", CRMEmbedHash: "hash-1"})

	fields := validFields()
	fields[1].Value = "0671234567"
	res, err := e.service.Submit(context.Background(), "leadForm", Request{SessionID: "s1", Fields: fields})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.FieldErrors) != 1 {
		t.Fatalf("expected one field error, got %+v", res.FieldErrors)
	}
	if res.FieldErrors[0].FieldID != "phone" {
		t.Errorf("expected the phone field, got %q", res.FieldErrors[0].FieldID)
	}
	if res.FieldErrors[0].MessageKey != i18n.KeyPhoneInvalid {
		t.Errorf("unexpected message key %q", res.FieldErrors[0].MessageKey)
	}
}

func TestSubmitCRMFailureKeepsTransitionStep(t *testing.T) {
	e := newTestEnv(t, forms.Defaults{Locale: "en", CRMEmbedHash: "hash-1"})
	e.crm.err = errors.New("connector down")

	res, err := e.service.Submit(context.Background(), "leadForm", Request{
		SessionID: "s1",
		Fields:    validFields(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Outcome != OutcomeCrmFailed {
		t.Fatalf("expected crm_failed, got %s", res.Outcome)
	}
	if res.Step != StepTransition {
		t.Errorf("expected step %d, got %d", StepTransition, res.Step)
	}
	if !res.ShowForm {
		t.Error("expected the form to be shown for retry")
	}
	if res.Redirect != nil {
		t.Error("expected no redirect on CRM failure")
	}
}

func TestSubmitIgnoresSecondAttemptInFlight(t *testing.T) {
	e := newTestEnv(t, forms.Defaults{Locale: "en", CRMEmbedHash: "hash-1"})
	e.crm.block = make(chan struct{})

	done := make(chan Result, 1)
	go func() {
		res, _ := e.service.Submit(context.Background(), "leadForm", Request{
			SessionID: "s1",
			Fields:    validFields(),
		})
		done <- res
	}()

	// Wait until the first attempt is inside the CRM dispatch.
	deadline := time.After(time.Second)
	for e.service.Step("leadForm", "s1") != StepTransition {
		select {
		case <-deadline:
			t.Fatal("first attempt never reached the transition step")
		case <-time.After(time.Millisecond):
		}
	}

	res, err := e.service.Submit(context.Background(), "leadForm", Request{
		SessionID: "s1",
		Fields:    validFields(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Ignored {
		t.Fatal("expected the second attempt to be ignored")
	}

	close(e.crm.block)
	first := <-done
	if first.Outcome != OutcomeSuccess {
		t.Fatalf("expected the first attempt to succeed, got %s", first.Outcome)
	}
	if e.crm.count() != 1 {
		t.Fatalf("expected exactly one CRM dispatch, got %d", e.crm.count())
	}
}

func TestSubmitBotRedirect(t *testing.T) {
	e := newTestEnv(t, forms.Defaults{
		Locale:        "uk",
		BotBackendURL: "https://bot.example.com",
		BotName:       "lead_bot",
	})

	old := SessionIDFunc
	SessionIDFunc = func() string { return "fixed-uid" }
	defer func() { SessionIDFunc = old }()

	res, err := e.service.Submit(context.Background(), "leadForm", Request{
		SessionID: "s1",
		Fields:    validFields(),
		Marks:     map[string]string{"fromID": "partner42", "utm_source": "google"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Outcome != OutcomeSuccess {
		t.Fatalf("expected success, got %s", res.Outcome)
	}
	if e.bot.uid != "fixed-uid" {
		t.Errorf("expected the generated session id, got %q", e.bot.uid)
	}
	if e.bot.vars["phone"] != "+12125550100" {
		t.Errorf("expected lead variables on the bot session, got %v", e.bot.vars)
	}
	if e.bot.vars["utm_source"] != "google" {
		t.Errorf("expected marks forwarded to the bot, got %v", e.bot.vars)
	}
	wantLink := "https://t.me/lead_bot?start=UID-fixed-uid__FROM-partner42"
	if res.Redirect == nil || res.Redirect.DeepLink != wantLink {
		t.Fatalf("expected deep link %q, got %+v", wantLink, res.Redirect)
	}
	if res.Notification == nil || res.Notification.AutoClose {
		t.Errorf("expected a manual-dismiss invite, got %+v", res.Notification)
	}
	if res.Notification.ConfirmLink != wantLink {
		t.Errorf("expected the invite to carry the deep link, got %q", res.Notification.ConfirmLink)
	}
}

func TestSubmitBotBackendFailure(t *testing.T) {
	e := newTestEnv(t, forms.Defaults{
		Locale:        "en",
		BotBackendURL: "https://bot.example.com",
		BotName:       "lead_bot",
	})
	e.bot.err = errors.New("backend down")

	res, err := e.service.Submit(context.Background(), "leadForm", Request{
		SessionID: "s1",
		Fields:    validFields(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeRedirectFailed {
		t.Fatalf("expected redirect_failed, got %s", res.Outcome)
	}
	if res.Redirect != nil {
		t.Error("expected no redirect on bot failure")
	}
}

func TestSubmitUnknownFormFails(t *testing.T) {
	e := newTestEnv(t, forms.Defaults{Locale: "en"})
	_, err := e.service.Submit(context.Background(), "nope", Request{Fields: validFields()})
	if !errors.Is(err, forms.ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
}

func TestSubmitNoTargetCompletesWithNotification(t *testing.T) {
	e := newTestEnv(t, forms.Defaults{Locale: "en"})

	res, err := e.service.Submit(context.Background(), "leadForm", Request{
		SessionID: "s1",
		Fields:    validFields(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeSuccess {
		t.Fatalf("expected success, got %s", res.Outcome)
	}
	if res.Redirect != nil {
		t.Error("expected no redirect without a target")
	}
	if res.Notification == nil || !res.Notification.AutoClose {
		t.Errorf("expected an auto-closing thank-you, got %+v", res.Notification)
	}
	if e.crm.count() != 1 {
		t.Fatalf("expected the CRM dispatch to still run, got %d", e.crm.count())
	}
}
