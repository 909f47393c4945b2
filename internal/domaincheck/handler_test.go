package domaincheck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubChecker struct {
	err error
}

func (s stubChecker) Check(_ context.Context, _ string) error {
	return s.err
}

func TestCheckEmailOK(t *testing.T) {
	h := NewHandler(stubChecker{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/check-email", strings.NewReader(`{"email":"user@example.com"}`))
	rec := httptest.NewRecorder()

	h.CheckEmail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %q", resp["status"])
	}
}

func TestCheckEmailFail(t *testing.T) {
	h := NewHandler(stubChecker{err: ErrNoMXRecords}, nil)
	req := httptest.NewRequest(http.MethodPost, "/check-email", strings.NewReader(`{"email":"user@nope.invalid"}`))
	rec := httptest.NewRecorder()

	h.CheckEmail(rec, req)

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "fail" {
		t.Errorf("expected status fail, got %q", resp["status"])
	}
}

func TestCheckEmailBadBody(t *testing.T) {
	h := NewHandler(stubChecker{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/check-email", strings.NewReader("not json"))
	rec := httptest.NewRecorder()

	h.CheckEmail(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestMXCheckerRejectsMalformedEmail(t *testing.T) {
	c := NewMXChecker(0, nil)
	if err := c.Check(context.Background(), "not-an-email"); err != ErrMalformedEmail {
		t.Fatalf("expected ErrMalformedEmail, got %v", err)
	}
}
