// Package sqlite registers the GORM dialector for SQLite databases.
// Import it for its side effects:
//
//	import _ "github.com/tigerroll/reimport/pkg/imports/adapter/database/gorm/sqlite"
package sqlite

import (
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/reimport/pkg/imports/adapter/database/config"
	gormadapter "github.com/tigerroll/reimport/pkg/imports/adapter/database/gorm"
)

// init registers the SQLite dialector factory with the gorm adapter.
func init() {
	gormadapter.RegisterDialector("sqlite", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		if cfg.Path == "" {
			return nil, errors.New("sqlite database path cannot be empty")
		}
		return sqlite.Open(cfg.Path), nil
	})
}
