// Package tx provides an abstraction for transaction management in the
// Reimport framework. It gives the batch manager unified control over the
// per-item transaction boundaries across different database backends, and
// carries the active transaction through context.Context so repositories and
// processors join the same transaction without threading it explicitly.
package tx

import (
	"context"
	"database/sql"
)

// TxExecutor is an interface that defines common data operations executable
// within a transaction. It is intended to be embedded in both DBConnection
// and Tx, allowing data operations to be performed in the same way regardless
// of the presence of a transaction: with a transaction active, operations
// join it; otherwise they run in auto-commit mode.
type TxExecutor interface {
	// ExecuteUpdate performs database write operations (INSERT, UPDATE, DELETE)
	// on the specified model.
	//
	// model: A Go struct or slice containing the data to be saved or updated.
	// operation: The type of operation to perform ("CREATE", "UPDATE", "DELETE").
	// tableName: The name of the target database table.
	// query: A key-value map for specifying conditions in UPDATE or DELETE
	//        operations. Keys are column names; multiple entries are combined with AND.
	// Returns: The number of affected rows and any error that occurred.
	ExecuteUpdate(ctx context.Context, model interface{}, operation string, tableName string, query map[string]interface{}) (rowsAffected int64, err error)

	// ExecuteUpsert performs an UPSERT (INSERT ... ON CONFLICT DO UPDATE) on
	// the database.
	//
	// model: A Go struct or slice containing the data to be inserted or updated.
	// tableName: The name of the target database table.
	// conflictColumns: Column names used to detect conflicts.
	// updateColumns: Column names to update on conflict. Nil or empty means DO NOTHING.
	// Returns: The number of affected rows and any error that occurred.
	ExecuteUpsert(ctx context.Context, model interface{}, tableName string, conflictColumns []string, updateColumns []string) (rowsAffected int64, err error)

	// ExecuteRaw executes a raw SQL statement with the given arguments.
	// Returns: The number of affected rows and any error that occurred.
	ExecuteRaw(ctx context.Context, query string, args ...interface{}) (rowsAffected int64, err error)

	// QueryRaw executes a raw SQL query and scans the result into dest, which
	// must be a pointer to a struct, slice, or scalar.
	QueryRaw(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// Tx represents an ongoing database transaction.
type Tx interface {
	TxExecutor // Embeds data operations executable within a transaction

	// Savepoint creates a new savepoint within the current transaction.
	Savepoint(name string) error

	// RollbackToSavepoint rolls back the transaction to the named savepoint,
	// undoing changes made after it while preserving earlier ones.
	RollbackToSavepoint(name string) error
}

// TransactionManager manages the lifecycle of database transactions
// (begin, commit, rollback).
type TransactionManager interface {
	// Begin starts a new database transaction.
	// opts: Optional transaction options (isolation level, read-only flag).
	Begin(ctx context.Context, opts ...*sql.TxOptions) (Tx, error)
	// Commit commits the specified transaction, persisting all changes made within it.
	Commit(tx Tx) error
	// Rollback rolls back the specified transaction, undoing all changes made within it.
	Rollback(tx Tx) error
}

type txContextKey struct{}

// WithTx returns a context carrying the given transaction. Repositories and
// execution contexts join the carried transaction for all data operations
// until the context is discarded.
func WithTx(ctx context.Context, t Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, t)
}

// FromContext extracts the transaction carried by the context, if any.
func FromContext(ctx context.Context) (Tx, bool) {
	t, ok := ctx.Value(txContextKey{}).(Tx)
	return t, ok
}
