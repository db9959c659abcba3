// Package mysql registers the GORM dialector for MySQL databases.
// Import it for its side effects:
//
//	import _ "github.com/tigerroll/reimport/pkg/imports/adapter/database/gorm/mysql"
package mysql

import (
	"fmt"

	gosqlmysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/reimport/pkg/imports/adapter/database/config"
	gormadapter "github.com/tigerroll/reimport/pkg/imports/adapter/database/gorm"
)

// init registers the MySQL dialector factory with the gorm adapter.
func init() {
	gormadapter.RegisterDialector("mysql", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		return mysql.Open(DSN(cfg)), nil
	})
}

// DSN builds the MySQL connection string from the configuration using the
// driver's own DSN formatter, so special characters in credentials are
// escaped correctly.
func DSN(cfg dbconfig.DatabaseConfig) string {
	c := gosqlmysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	c.DBName = cfg.Database
	c.ParseTime = true
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}
