// Package llm provides centralized LLM configuration and client abstractions.
// Curation and annotation only see the two-operation TextService; tiers and
// providers stay behind it.
package llm

import (
	"fmt"
	"time"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: classification, extraction
	TierLite ModelTier = "lite"
	// TierStandard backs the fast generate path: selection and ordering
	TierStandard ModelTier = "standard"
	// TierAdvanced backs the reason path: rewriting and evidence matching
	TierAdvanced ModelTier = "advanced"
)

// ParseTier maps a config key to a ModelTier.
func ParseTier(s string) (ModelTier, error) {
	switch ModelTier(s) {
	case TierLite, TierStandard, TierAdvanced:
		return ModelTier(s), nil
	default:
		return "", fmt.Errorf("unknown model tier %q", s)
	}
}

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
	Retry       RetryPolicy
}

// RetryPolicy bounds how often a failed call is repeated before the error is
// surfaced to the caller.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy retries three times with exponential backoff from 500ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
	}
}

// delay returns the wait before the given retry (1-based).
func (p RetryPolicy) delay(retry int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < retry; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return d
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: 0.1,
		Retry:       DefaultRetryPolicy(),
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModels returns a copy of c with the given tier -> model overrides
// applied. Keys are tier names as they appear in the config file.
func (c *Config) WithModels(overrides map[string]string) (*Config, error) {
	out := *c
	out.Models = make(map[ModelTier]string, len(c.Models)+len(overrides))
	for k, v := range c.Models {
		out.Models[k] = v
	}
	for key, model := range overrides {
		tier, err := ParseTier(key)
		if err != nil {
			return nil, err
		}
		if model != "" {
			out.Models[tier] = model
		}
	}
	return &out, nil
}
