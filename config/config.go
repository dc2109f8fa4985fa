// Package config loads the tool configuration: the Snipe-IT endpoint
// and token plus the issuer display strings baked into the generated
// agreements.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Common errors
var (
	ErrConfigurationError   = errors.New("configuration error")
	ErrMissingRequiredField = errors.New("missing required field")
)

// ConfigError represents a configuration error with context.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message, Err: ErrMissingRequiredField}
}

// Config is the full tool configuration.
type Config struct {
	// APIEndpoint is the Snipe-IT API base URL, e.g.
	// https://inventory.example.org/api/v1
	APIEndpoint string `yaml:"api-endpoint"`

	// APIToken is the bearer token for the API.
	APIToken string `yaml:"api-token"`

	// Issuer display strings placed in the agreement header.
	Issuer            string `yaml:"issuer"`
	IssuerBC          string `yaml:"issuer-bc"`
	IssuerInstitution string `yaml:"issuer-institution"`
	IssuerDepartment  string `yaml:"issuer-department"`

	// NoEmail is substituted when a user has no email on file.
	NoEmail string `yaml:"no-email"`

	// AUPURL links the acceptable-use-policy acknowledgment.
	AUPURL string `yaml:"aup-url"`

	// Telephone prefills the contact telephone field.
	Telephone string `yaml:"telephone"`

	// AddressOptions are the campus address choices; the first entry
	// is the default.
	AddressOptions []string `yaml:"address-options"`

	// OutputDir is where generated agreements are written. Defaults to
	// the working directory.
	OutputDir string `yaml:"output-dir"`
}

// Validate checks the required fields and applies defaults to the
// optional ones.
func (c *Config) Validate() error {
	if c.APIEndpoint == "" {
		return NewConfigError("api-endpoint", "required field is missing")
	}
	if c.APIToken == "" {
		return NewConfigError("api-token", "required field is missing")
	}
	if c.NoEmail == "" {
		c.NoEmail = "No email on file"
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	return nil
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConfigurationError, path, err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML configuration bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigurationError, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
