package config

import (
	"github.com/go-playground/validator/v10"

	"github.com/imh0ng/open-machina/internal/types"
)

// Config is the explicit configuration struct handed to the arbitration
// service at construction. The core never reads process environment
// directly; the loader resolves env fallbacks into this struct up front so
// tests stay deterministic.
type Config struct {
	Judge   JudgeConfig   `mapstructure:"judge" yaml:"judge"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// JudgeConfig configures judge selection, policy, and authentication.
// Model is deliberately not required: an empty model means the judge
// subsystem is unconfigured, which callers treat as "no judge" rather than
// an error.
type JudgeConfig struct {
	Provider     string `mapstructure:"provider" yaml:"provider"`
	Model        string `mapstructure:"model" yaml:"model"`
	AuthProvider string `mapstructure:"auth_provider" yaml:"auth_provider"`
	APIURL       string `mapstructure:"api_url" yaml:"api_url" validate:"omitempty,url"`

	// Allow/Deny/Fallback hold "provider/model" pairs.
	Allow    []string `mapstructure:"allow" yaml:"allow"`
	Deny     []string `mapstructure:"deny" yaml:"deny"`
	Fallback []string `mapstructure:"fallback" yaml:"fallback"`

	// APIKey is the direct credential override, last in the cascade.
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	// AuthStorePath overrides the persisted auth-store location.
	AuthStorePath string `mapstructure:"auth_store_path" yaml:"auth_store_path"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Judge: JudgeConfig{
			Provider:     "openai",
			AuthProvider: "openai",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks structural constraints on the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return types.WrapError(types.CONFIG_VALIDATION_FAILED, "invalid configuration", err)
	}
	return nil
}
