package config

import (
	"go.uber.org/fx"

	"github.com/tigerroll/reimport/pkg/imports/adapter/database"
	gormadapter "github.com/tigerroll/reimport/pkg/imports/adapter/database/gorm"
)

// NewLoggingConfigProvider extracts and provides *LoggingConfig from *Config,
// so components can depend on the logging configuration alone.
func NewLoggingConfigProvider(cfg *Config) *LoggingConfig {
	return &cfg.Reimport.System.Logging
}

// NewRepositoryDBConnection opens the database connection named by
// reimport.infrastructure.repository_db_ref.
func NewRepositoryDBConnection(cfg *Config) (database.DBConnection, error) {
	name := cfg.Reimport.Infrastructure.RepositoryDBRef
	dbCfg, err := cfg.DatabaseConfigFor(name)
	if err != nil {
		return nil, err
	}
	provider := gormadapter.NewProvider(cfg.Reimport.System.Logging.Level)
	return provider.Open(dbCfg, name)
}

// Module provides configuration-related components to Fx.
var Module = fx.Options(
	fx.Provide(func() EnvironmentExpander {
		return NewOsEnvironmentExpander()
	}),
	fx.Provide(NewConfigProvider),
	fx.Provide(NewLoggingConfigProvider),
)

// DatabaseModule additionally provides the repository database connection.
// Applications using the in-memory repository omit it.
var DatabaseModule = fx.Options(
	fx.Provide(NewRepositoryDBConnection),
)
