// Package postgres registers the GORM dialector for PostgreSQL databases.
// Import it for its side effects:
//
//	import _ "github.com/tigerroll/reimport/pkg/imports/adapter/database/gorm/postgres"
package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/reimport/pkg/imports/adapter/database/config"
	gormadapter "github.com/tigerroll/reimport/pkg/imports/adapter/database/gorm"
)

// init registers the PostgreSQL dialector factory with the gorm adapter.
func init() {
	gormadapter.RegisterDialector("postgres", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		return postgres.Open(DSN(cfg)), nil
	})
}

// DSN builds the PostgreSQL connection string from the configuration.
func DSN(cfg dbconfig.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, sslMode)
}
