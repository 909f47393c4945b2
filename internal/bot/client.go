package bot

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dsergienko/leadgate/pkg/logging"
)

const setVariablesPath = "/api/v2/telegram/user/uid/variables/set"

// ErrBackendRejected is returned when the bot backend answers without
// success.
var ErrBackendRejected = errors.New("bot: backend rejected the session")

// Config controls the bot backend client.
type Config struct {
	BackendURL string
	BotName    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Client stores lead variables against an opaque session id on the bot
// backend and builds the deep link that picks them up.
type Client struct {
	backendURL string
	botName    string
	httpClient *http.Client
	logger     *logging.Logger
}

// New creates a configured client. Both the backend URL and the bot username
// are required; a missing username is a configuration fault, caught before
// any submission is accepted.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BackendURL) == "" {
		return nil, errors.New("bot: backend URL is required")
	}
	if strings.TrimSpace(cfg.BotName) == "" {
		return nil, errors.New("bot: bot username is required")
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
		backendURL: strings.TrimRight(cfg.BackendURL, "/"),
		botName:    cfg.BotName,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// NewSessionID generates the opaque identifier linking the web submission to
// the bot conversation.
func NewSessionID() string {
	buf := make([]byte, 15)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the platform's entropy source is
		// broken; nothing sensible to do but panic.
		panic(fmt.Sprintf("bot: session id entropy: %v", err))
	}
	return hex.EncodeToString(buf)
}

// SetUserVariables stores the lead fields and captured marks for the session.
func (c *Client) SetUserVariables(ctx context.Context, uid string, variables map[string]string) error {
	body, err := json.Marshal(struct {
		UID       string            `json:"uid"`
		Variables map[string]string `json:"variables"`
	}{UID: uid, Variables: variables})
	if err != nil {
		return fmt.Errorf("bot: marshal variables: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.backendURL+setVariablesPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("bot: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("bot backend request failed", "error", err, "uid", uid)
		return fmt.Errorf("bot: set variables: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("bot: decode response: %w", err)
	}
	if !payload.Success {
		return ErrBackendRejected
	}

	c.logger.Info("bot session registered", "uid", uid)
	return nil
}

// DeepLink builds the t.me link that opens the bot with the session id, and
// the partner mark when one was captured.
func (c *Client) DeepLink(uid, fromID string) string {
	link := fmt.Sprintf("https://t.me/%s?start=UID-%s", c.botName, uid)
	if fromID != "" {
		link += "__FROM-" + fromID
	}
	return link
}
