package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
reimport:
  batch:
    continue_on_error: false
  system:
    logging:
      level: ${TEST_REIMPORT_LOG_LEVEL}
  infrastructure:
    repository_db_ref: primary
  database:
    primary:
      type: postgres
      host: db.internal
      port: 5432
      database: reimport
      user: importer
      password: ${TEST_REIMPORT_DB_PASSWORD}
      sslmode: require
      pool:
        maxOpenConns: 20
        maxIdleConns: 4
        connMaxLifetime: 600
`

func TestLoadConfig(t *testing.T) {
	t.Setenv("TEST_REIMPORT_LOG_LEVEL", "DEBUG")
	t.Setenv("TEST_REIMPORT_DB_PASSWORD", "s3cret")

	cfg, err := LoadConfig("", EmbeddedConfig(testYAML))
	require.NoError(t, err)

	assert.False(t, cfg.Reimport.Batch.ContinueOnError)
	assert.Equal(t, "DEBUG", cfg.Reimport.System.Logging.Level)
	assert.Equal(t, "primary", cfg.Reimport.Infrastructure.RepositoryDBRef)

	dbCfg, err := cfg.DatabaseConfigFor("primary")
	require.NoError(t, err)
	assert.Equal(t, "postgres", dbCfg.Type)
	assert.Equal(t, "db.internal", dbCfg.Host)
	assert.Equal(t, 5432, dbCfg.Port)
	assert.Equal(t, "s3cret", dbCfg.Password)
	assert.Equal(t, "require", dbCfg.SSLMode)
	assert.Equal(t, 20, dbCfg.Pool.MaxOpenConns)
	assert.Equal(t, 600, dbCfg.Pool.ConnMaxLifetime)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.True(t, cfg.Reimport.Batch.ContinueOnError)
	assert.True(t, cfg.Reimport.Batch.FailedItemsOnly)
	assert.Equal(t, "INFO", cfg.Reimport.System.Logging.Level)
	assert.Equal(t, "UTC", cfg.Reimport.System.Timezone)
	assert.NotNil(t, cfg.Reimport.AdapterConfigs)
}

func TestLoadConfig_EmptyLogLevelFallsBack(t *testing.T) {
	// An unset placeholder expands to an empty string; the loader must not let
	// it shadow the default level.
	cfg, err := LoadConfig("", EmbeddedConfig("reimport:\n  system:\n    logging:\n      level: ${TEST_REIMPORT_UNSET_LEVEL}\n"))
	require.NoError(t, err)
	assert.Equal(t, "INFO", cfg.Reimport.System.Logging.Level)
}

func TestDatabaseConfigFor_Unknown(t *testing.T) {
	cfg := NewConfig()

	_, err := cfg.DatabaseConfigFor("nope")
	assert.Error(t, err)
}
