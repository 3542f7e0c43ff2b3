package rules

import "fmt"

// ConfigError the rule source is missing, unreadable or malformed.
// It is only ever produced while building a table.
type ConfigError struct {
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rule source %s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
