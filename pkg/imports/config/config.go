// Package config provides core configuration structures and utilities for
// the import framework. Configuration is loaded from an embedded YAML
// document with environment variable expansion, then overridden by a .env
// file when present.
package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	dbconfig "github.com/tigerroll/reimport/pkg/imports/adapter/database/config"
)

// EmbeddedConfig contains the raw bytes of the configuration file, typically
// provided via go:embed by the application.
type EmbeddedConfig []byte

// BatchConfig holds defaults for batch processing behavior.
type BatchConfig struct {
	// ContinueOnError is the default for whether an item failure aborts the
	// remaining items of a batch.
	ContinueOnError bool `yaml:"continue_on_error"`
	// FailedItemsOnly is the default item selection for reprocessing.
	FailedItemsOnly bool `yaml:"failed_items_only"`
}

// LoggingConfig holds process logging settings.
type LoggingConfig struct {
	// Level is the minimum level emitted: DEBUG, INFO, WARN, ERROR or FATAL.
	Level string `yaml:"level"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Timezone is the IANA timezone name used for timestamp presentation.
	Timezone string `yaml:"timezone"`
	Logging  LoggingConfig `yaml:"logging"`
}

// InfrastructureConfig selects the infrastructure backends.
type InfrastructureConfig struct {
	// RepositoryDBRef names the entry under `database` used for the import
	// repository's own tables.
	RepositoryDBRef string `yaml:"repository_db_ref"`
}

// ReimportConfig is the root of the framework's configuration section.
type ReimportConfig struct {
	Batch          BatchConfig          `yaml:"batch"`
	System         SystemConfig         `yaml:"system"`
	Infrastructure InfrastructureConfig `yaml:"infrastructure"`
	// AdapterConfigs holds named database connection configurations.
	AdapterConfigs map[string]interface{} `yaml:"database"`
}

// Config is the top-level application configuration.
type Config struct {
	Reimport ReimportConfig `yaml:"reimport"`
}

// NewConfig creates a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Reimport: ReimportConfig{
			Batch: BatchConfig{
				ContinueOnError: true,
				FailedItemsOnly: true,
			},
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: "INFO"},
			},
			Infrastructure: InfrastructureConfig{
				RepositoryDBRef: "imports",
			},
			AdapterConfigs: map[string]interface{}{},
		},
	}
}

// DatabaseConfigFor decodes the named entry of AdapterConfigs into a
// DatabaseConfig.
func (c *Config) DatabaseConfigFor(name string) (dbconfig.DatabaseConfig, error) {
	var dbCfg dbconfig.DatabaseConfig
	raw, ok := c.Reimport.AdapterConfigs[name]
	if !ok {
		return dbCfg, fmt.Errorf("database configuration '%s' not found in reimport.database configs", name)
	}
	if err := mapstructure.Decode(raw, &dbCfg); err != nil {
		return dbCfg, fmt.Errorf("failed to decode database config for '%s': %w", name, err)
	}
	return dbCfg, nil
}
