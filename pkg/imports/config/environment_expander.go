package config

import (
	"os"
)

// EnvironmentExpander expands environment variable placeholders within an
// input byte slice.
type EnvironmentExpander interface {
	// Expand replaces ${VAR} or $VAR placeholders in input with the value of
	// the corresponding environment variable.
	Expand(input []byte) ([]byte, error)
}

// OsEnvironmentExpander implements EnvironmentExpander using os.ExpandEnv.
type OsEnvironmentExpander struct{}

// NewOsEnvironmentExpander creates a new instance of OsEnvironmentExpander.
func NewOsEnvironmentExpander() *OsEnvironmentExpander {
	return &OsEnvironmentExpander{}
}

// Expand uses os.ExpandEnv to expand environment variables. Unset variables
// are replaced by an empty string; the returned error is always nil.
func (e *OsEnvironmentExpander) Expand(input []byte) ([]byte, error) {
	return []byte(os.ExpandEnv(string(input))), nil
}
