// Package database provides abstractions for database connections and
// providers in the Reimport framework. It allows unified access to different
// database systems (PostgreSQL, MySQL, SQLite) through a consistent interface.
package database

import (
	"context"
	"database/sql"

	config "github.com/tigerroll/reimport/pkg/imports/adapter/database/config"
	coretx "github.com/tigerroll/reimport/pkg/imports/core/tx"
)

// DBConnection represents an abstraction of a database connection.
// It embeds TxExecutor so data operations can be issued in auto-commit mode
// through the same interface the transaction exposes.
type DBConnection interface {
	coretx.TxExecutor // Embeds ExecuteUpdate, ExecuteUpsert, ExecuteRaw, QueryRaw

	// Type returns the type of the database (e.g., "mysql", "postgres", "sqlite").
	Type() string
	// Name returns the connection name.
	Name() string
	// Close closes the database connection.
	Close() error
	// Ping verifies the connection is still alive.
	Ping(ctx context.Context) error
	// Config returns the database configuration associated with this connection.
	Config() config.DatabaseConfig

	// GetSQLDB returns the underlying *sql.DB connection.
	// This exposes low-level dependencies but is necessary for schema setup
	// and raw SQL access.
	GetSQLDB() (*sql.DB, error)

	// ExecuteQuery executes a read operation (SELECT) outside of a managed
	// transaction.
	// target: A pointer to the struct or slice to store the results.
	// query: Query conditions (key-value map, combined with AND).
	ExecuteQuery(ctx context.Context, target interface{}, query map[string]interface{}) error

	// ExecuteQueryOrdered executes a read operation with optional sorting and
	// limiting.
	// orderBy: Sort order, e.g. "item_index ASC". Empty means unspecified.
	// limit: Maximum number of records; 0 means no limit.
	ExecuteQueryOrdered(ctx context.Context, target interface{}, query map[string]interface{}, orderBy string, limit int) error

	// Count counts the number of records matching the query.
	Count(ctx context.Context, model interface{}, query map[string]interface{}) (int64, error)
}

// Provider creates DBConnections for one database type. Driver packages
// register their provider implementations at init time.
type Provider interface {
	// Supports reports whether the provider handles the given database type.
	Supports(dbType string) bool
	// Open establishes a connection using the given configuration.
	Open(cfg config.DatabaseConfig, name string) (DBConnection, error)
}
