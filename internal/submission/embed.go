package submission

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"
)

const defaultEmbedScriptURL = "https://app.leeloo.ai/init.js"

// ErrEmbedMountTimeout is returned when the embed never reported mounting
// within the bounded wait. The legacy page polled forever; the timeout is
// the fix, not a preserved behavior.
var ErrEmbedMountTimeout = errors.New("submission: embed did not mount in time")

// embedFieldMap is the fixed, exhaustive mapping from lead/mark keys to the
// query parameter names the CRM embed expects. Unknown keys are dropped.
var embedFieldMap = map[string]string{
	"utm_source":   "utm_source",
	"utm_medium":   "utm_medium",
	"utm_term":     "utm_term",
	"utm_campaign": "utm_campaign",
	"umt_content":  "umt_content",
	"phone":        "phone",
	"email":        "email",
	"name":         "first_name",
	"google_id":    "ga",
}

// EmbedParams maps known, non-empty values onto the embed's query names.
func EmbedParams(values map[string]string) url.Values {
	params := url.Values{}
	for key, value := range values {
		if value == "" {
			continue
		}
		if mapped, ok := embedFieldMap[key]; ok {
			params.Set(mapped, value)
		}
	}
	return params
}

// EmbedInit is what the client needs to mount the third-party embed.
type EmbedInit struct {
	Hash       string `json:"hash"`
	ScriptURL  string `json:"script_url"`
	LoadScript bool   `json:"load_script"`
}

// EmbedGate guards the third-party embed integration for one form: the init
// script is handed out exactly once per process lifetime, and the mount wait
// is a fixed-interval poll bounded by a timeout.
type EmbedGate struct {
	hash      string
	scriptURL string
	interval  time.Duration
	timeout   time.Duration

	initOnce   sync.Once
	signalOnce sync.Once
	mounted    chan struct{}
}

// NewEmbedGate creates a gate for the given embed hash.
func NewEmbedGate(hash string, interval, timeout time.Duration) *EmbedGate {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &EmbedGate{
		hash:      hash,
		scriptURL: defaultEmbedScriptURL,
		interval:  interval,
		timeout:   timeout,
		mounted:   make(chan struct{}),
	}
}

// Initialize returns the embed bootstrap. LoadScript is true on the first
// call only; repeated initialization never loads the script twice.
func (g *EmbedGate) Initialize() EmbedInit {
	first := false
	g.initOnce.Do(func() { first = true })
	return EmbedInit{
		Hash:       g.hash,
		ScriptURL:  g.scriptURL,
		LoadScript: first,
	}
}

// SignalMounted records that the client observed the embed in the DOM.
// Idempotent.
func (g *EmbedGate) SignalMounted() {
	g.signalOnce.Do(func() { close(g.mounted) })
}

// AwaitMount polls for the mount signal at the fixed interval until the
// timeout elapses.
func (g *EmbedGate) AwaitMount(ctx context.Context) error {
	deadline := time.NewTimer(g.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-g.mounted:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return ErrEmbedMountTimeout
		case <-ticker.C:
			select {
			case <-g.mounted:
				return nil
			default:
			}
		}
	}
}
