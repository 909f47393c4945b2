package forms

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Registry holds the resolved form configs. Registration happens once at
// startup; lookups on the submission path are read-only.
type Registry struct {
	mu    sync.RWMutex
	forms map[string]*FormConfig
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{forms: make(map[string]*FormConfig)}
}

// Register resolves and stores one form. Any resolution failure or duplicate
// id is fatal to initialization.
func (r *Registry) Register(o Overrides, d Defaults) (*FormConfig, error) {
	cfg, err := Resolve(o, d)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.forms[cfg.FormID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateForm, cfg.FormID)
	}
	r.forms[cfg.FormID] = cfg
	return cfg, nil
}

// Get returns the config for a registered form.
func (r *Registry) Get(formID string) (*FormConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.forms[formID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFormNotFound, formID)
	}
	return cfg, nil
}

// RegisterFromJSON registers the forms described by a JSON array of
// overrides (the FORMS_JSON environment value). An empty input registers the
// single default lead form.
func (r *Registry) RegisterFromJSON(raw string, d Defaults) ([]*FormConfig, error) {
	overrides := []Overrides{{FormID: "leadForm"}}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
			return nil, fmt.Errorf("forms: parse forms JSON: %w", err)
		}
	}

	configs := make([]*FormConfig, 0, len(overrides))
	for _, o := range overrides {
		cfg, err := r.Register(o, d)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}
