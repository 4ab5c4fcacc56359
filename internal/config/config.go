// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// APIKeyEnv is consulted when neither the flag nor the config file sets a key.
const APIKeyEnv = "GEMINI_API_KEY"

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Inputs
	Permissions string `json:"permissions,omitempty"`                           // Path to the permission registry (YAML or JSON)
	Document    string `json:"document,omitempty"`                              // Path to the document to curate
	Job         string `json:"job,omitempty"`                                   // Path to job description text file
	JobURL      string `json:"job_url,omitempty" validate:"omitempty,http_url"` // URL to fetch job posting from

	// Caching
	CacheDir    string `json:"cache_dir,omitempty"`                                         // Directory for file-backed curation cache
	DatabaseURL string `json:"database_url,omitempty" validate:"omitempty,url"`             // PostgreSQL connection URL for the shared cache
	CacheMaxAge string `json:"cache_max_age,omitempty" validate:"omitempty,duration_string"` // Go duration; older cache entries are ignored

	// Behavior
	APIKey      string `json:"api_key,omitempty"`                              // Gemini API key
	UseBrowser  bool   `json:"use_browser,omitempty"`                          // Use headless browser for SPA job postings
	Verbose     bool   `json:"verbose,omitempty"`                              // Print detailed debug information
	MaxAttempts int    `json:"max_attempts,omitempty" validate:"gte=0,lte=10"` // Whole-document curation attempts

	// Models overrides the model used per tier (lite, standard, advanced).
	Models map[string]string `json:"models,omitempty" validate:"dive,keys,oneof=lite standard advanced,endkeys,required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("duration_string", func(fl validator.FieldLevel) bool {
		_, err := time.ParseDuration(fl.Field().String())
		return err == nil
	})
	return v
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate mutually exclusive fields
	if c.Job != "" && c.JobURL != "" {
		return fmt.Errorf("config error: 'job' and 'job_url' are mutually exclusive")
	}
	if c.CacheDir != "" && c.DatabaseURL != "" {
		return fmt.Errorf("config error: 'cache_dir' and 'database_url' are mutually exclusive")
	}

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("config error: '%s' failed '%s' validation", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	// Validate file paths exist (if specified)
	for name, path := range map[string]string{
		"permissions": c.Permissions,
		"document":    c.Document,
		"job":         c.Job,
	} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("config error: %s file not found: %s", name, path)
		}
	}

	return nil
}

// MaxAge parses CacheMaxAge. An empty value means entries never expire.
func (c *Config) MaxAge() (time.Duration, error) {
	if c.CacheMaxAge == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CacheMaxAge)
	if err != nil {
		return 0, fmt.Errorf("config error: invalid cache_max_age %q: %w", c.CacheMaxAge, err)
	}
	return d, nil
}

// ResolveAPIKey returns the first non-empty key from flag, the config file and
// the environment.
func (c *Config) ResolveAPIKey(flag string) string {
	if flag != "" {
		return flag
	}
	if c.APIKey != "" {
		return c.APIKey
	}
	return os.Getenv(APIKeyEnv)
}

// MergeWithDefaults returns a new Config with empty string fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&result.Permissions, defaults.Permissions},
		{&result.Document, defaults.Document},
		{&result.Job, defaults.Job},
		{&result.JobURL, defaults.JobURL},
		{&result.CacheDir, defaults.CacheDir},
		{&result.DatabaseURL, defaults.DatabaseURL},
		{&result.CacheMaxAge, defaults.CacheMaxAge},
		{&result.APIKey, defaults.APIKey},
	} {
		if *f.dst == "" {
			*f.dst = f.src
		}
	}

	// Int fields: use default if zero
	if result.MaxAttempts == 0 {
		if defaults.MaxAttempts > 0 {
			result.MaxAttempts = defaults.MaxAttempts
		} else {
			result.MaxAttempts = 1
		}
	}

	// Model overrides: file entries win per tier
	if len(defaults.Models) > 0 {
		merged := make(map[string]string, len(defaults.Models)+len(result.Models))
		for tier, model := range defaults.Models {
			merged[tier] = model
		}
		for tier, model := range result.Models {
			merged[tier] = model
		}
		result.Models = merged
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
