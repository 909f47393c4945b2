package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dsergienko/leadgate/internal/leads"
	"github.com/dsergienko/leadgate/pkg/logging"
)

// ErrUpstreamStatus is returned when the connector answers anything but 200.
var ErrUpstreamStatus = errors.New("crm: connector returned non-200 status")

// Config controls how the connector client behaves.
type Config struct {
	ConnectorURL string
	Token        string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Logger       *logging.Logger
}

// Client forwards leads to the upstream CRM connector. Success is strictly
// HTTP 200; everything else is a sink failure for the caller to surface.
type Client struct {
	connectorURL string
	token        string
	httpClient   *http.Client
	logger       *logging.Logger
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.ConnectorURL) == "" {
		return nil, errors.New("crm: connector URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		connectorURL: strings.TrimSpace(cfg.ConnectorURL),
		token:        cfg.Token,
		httpClient:   httpClient,
		logger:       logger,
	}, nil
}

// SubmitLead wraps the lead in the connector's envelope and POSTs it.
func (c *Client) SubmitLead(ctx context.Context, lead leads.LeadRecord) error {
	body, err := json.Marshal(struct {
		Lead leads.LeadRecord `json:"Lead"`
	}{Lead: lead})
	if err != nil {
		return fmt.Errorf("crm: marshal lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.connectorURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("crm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("crm submit failed", "error", err, "product", lead.ProductName)
		return fmt.Errorf("crm: submit: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("crm connector rejected lead",
			"status", resp.StatusCode, "product", lead.ProductName, "body", string(respBody))
		return fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	c.logger.Info("lead forwarded to crm", "product", lead.ProductName)
	return nil
}
