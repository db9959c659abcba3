package config

import (
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/tigerroll/reimport/pkg/imports/support/util/exception"
	"github.com/tigerroll/reimport/pkg/imports/support/util/logger"
)

const moduleName = "config"

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	EmbeddedConfig EmbeddedConfig
	EnvFilePath    string `name:"envFilePath" optional:"true"`
	Expander       EnvironmentExpander
}

// loadConfig loads configuration from the embedded YAML and environment
// variables. It is intended to be called once during application startup.
func loadConfig(envFilePath string, embedded EmbeddedConfig, expander EnvironmentExpander) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			logger.Debugf(".env file not found or could not be loaded: %v", err)
		}
	}

	cfg := NewConfig()

	if len(embedded) > 0 {
		expanded, err := expander.Expand(embedded)
		if err != nil {
			return nil, exception.New(moduleName, "failed to expand environment variables in config", nil, err)
		}
		if err := yaml.Unmarshal(expanded, cfg); err != nil {
			return nil, exception.New(moduleName, "failed to unmarshal embedded config", nil, err)
		}
	}

	if cfg.Reimport.AdapterConfigs == nil {
		cfg.Reimport.AdapterConfigs = map[string]interface{}{}
	}
	// An unset ${LOG_LEVEL} placeholder expands to an empty string; fall back
	// to the default rather than treating it as an unknown level.
	if cfg.Reimport.System.Logging.Level == "" {
		cfg.Reimport.System.Logging.Level = "INFO"
	}
	return cfg, nil
}

// NewConfigProvider is an Fx provider that loads and provides *Config. It
// also applies the configured log level globally.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	cfg, err := loadConfig(params.EnvFilePath, params.EmbeddedConfig, params.Expander)
	if err != nil {
		return nil, err
	}

	logger.SetLogLevel(cfg.Reimport.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.Reimport.System.Logging.Level)
	return cfg, nil
}

// LoadConfig loads configuration outside of an Fx application, for tests and
// standalone tools.
func LoadConfig(envFilePath string, embedded EmbeddedConfig) (*Config, error) {
	return loadConfig(envFilePath, embedded, NewOsEnvironmentExpander())
}
