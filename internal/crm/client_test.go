package crm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dsergienko/leadgate/internal/leads"
)

func TestSubmitLeadSuccess(t *testing.T) {
	var received struct {
		Lead leads.LeadRecord `json:"Lead"`
	}
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("unmarshal request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New(Config{ConnectorURL: srv.URL, Token: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lead := leads.NewLeadRecord("John", "+12125550100", "john@example.com", "", "Main product", "p-1")
	if err := c.SubmitLead(context.Background(), lead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if received.Lead.Name != "John" {
		t.Errorf("expected lead in envelope, got %+v", received.Lead)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("expected bearer token, got %q", gotAuth)
	}
}

func TestSubmitLeadNon200IsFailure(t *testing.T) {
	// 201 and friends are failures too; the connector contract is
	// strictly 200.
	for _, status := range []int{http.StatusCreated, http.StatusBadRequest, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		c, err := New(Config{ConnectorURL: srv.URL})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		err = c.SubmitLead(context.Background(), leads.LeadRecord{Name: "John"})
		if !errors.Is(err, ErrUpstreamStatus) {
			t.Errorf("status %d: expected ErrUpstreamStatus, got %v", status, err)
		}
		srv.Close()
	}
}

func TestNewRequiresConnectorURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected an error for missing connector URL")
	}
}
