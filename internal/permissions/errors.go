package permissions

import "fmt"

// ConfigError represents an invalid or unreadable permission configuration.
type ConfigError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	prefix := "permission config error"
	if e.Path != "" {
		prefix = fmt.Sprintf("permission config error in %s", e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}
