package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dsergienko/leadgate/pkg/logging"
)

const defaultLookupURL = "https://ip.nf/me.json"

// Config controls the IP-geolocation resolver.
type Config struct {
	LookupURL  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Resolver resolves the visitor's country from the IP-geolocation service,
// caching the first result process-wide. Later resolutions reuse the cache;
// it is never merged or overwritten. Lookup failures degrade to the caller's
// default country and are never surfaced as errors.
type Resolver struct {
	lookupURL  string
	httpClient *http.Client
	logger     *logging.Logger

	once   sync.Once
	cached string
}

// NewResolver creates a resolver with sane defaults.
func NewResolver(cfg Config) *Resolver {
	lookupURL := strings.TrimSpace(cfg.LookupURL)
	if lookupURL == "" {
		lookupURL = defaultLookupURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 3 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{
		lookupURL:  lookupURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// ResolveCountry returns the visitor's lowercase ISO country code, or
// defaultCountry when the lookup fails. The first resolution wins and is
// reused for the rest of the process lifetime, so the phone widget and the
// country select always seed from the same code.
func (r *Resolver) ResolveCountry(ctx context.Context, defaultCountry string) string {
	r.once.Do(func() {
		code, err := r.lookup(ctx)
		if err != nil {
			r.logger.Warn("geo lookup failed, using default country",
				"error", err, "default", defaultCountry)
			r.cached = strings.ToLower(defaultCountry)
			return
		}
		r.cached = code
	})
	if r.cached == "" {
		return strings.ToLower(defaultCountry)
	}
	return r.cached
}

func (r *Resolver) lookup(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.lookupURL, nil)
	if err != nil {
		return "", fmt.Errorf("geo: build request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("geo: lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geo: lookup returned status %d", resp.StatusCode)
	}

	var payload struct {
		IP struct {
			CountryCode string `json:"country_code"`
		} `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("geo: decode response: %w", err)
	}
	code := strings.ToLower(strings.TrimSpace(payload.IP.CountryCode))
	if code == "" {
		return "", fmt.Errorf("geo: response has no country code")
	}
	return code, nil
}
