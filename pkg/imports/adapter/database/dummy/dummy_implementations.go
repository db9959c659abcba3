// Package dummy provides no-op implementations of the database abstractions.
// It pairs with the in-memory repository, whose writes are not transactional,
// so the batch manager's transaction choreography runs against harmless stubs.
package dummy

import (
	"context"
	"database/sql"

	dbconfig "github.com/tigerroll/reimport/pkg/imports/adapter/database/config"
	"github.com/tigerroll/reimport/pkg/imports/adapter/database"
	"github.com/tigerroll/reimport/pkg/imports/core/tx"
)

// dummyTx is a no-op implementation of the tx.Tx interface.
type dummyTx struct{}

func (d *dummyTx) ExecuteUpdate(ctx context.Context, model interface{}, operation string, tableName string, query map[string]interface{}) (int64, error) {
	return 0, nil
}
func (d *dummyTx) ExecuteUpsert(ctx context.Context, model interface{}, tableName string, conflictColumns []string, updateColumns []string) (int64, error) {
	return 0, nil
}
func (d *dummyTx) ExecuteRaw(ctx context.Context, query string, args ...interface{}) (int64, error) {
	return 0, nil
}
func (d *dummyTx) QueryRaw(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}
func (d *dummyTx) Savepoint(name string) error           { return nil }
func (d *dummyTx) RollbackToSavepoint(name string) error { return nil }

// DummyTxManager is a no-op implementation of tx.TransactionManager.
type DummyTxManager struct{}

// NewDummyTxManager creates a new DummyTxManager.
func NewDummyTxManager() tx.TransactionManager {
	return &DummyTxManager{}
}

func (d *DummyTxManager) Begin(ctx context.Context, opts ...*sql.TxOptions) (tx.Tx, error) {
	return &dummyTx{}, nil
}
func (d *DummyTxManager) Commit(t tx.Tx) error   { return nil }
func (d *DummyTxManager) Rollback(t tx.Tx) error { return nil }

// DummyDBConnection is a no-op implementation of database.DBConnection.
type DummyDBConnection struct{}

// NewDummyDBConnection creates a new DummyDBConnection.
func NewDummyDBConnection() database.DBConnection {
	return &DummyDBConnection{}
}

func (d *DummyDBConnection) ExecuteUpdate(ctx context.Context, model interface{}, operation string, tableName string, query map[string]interface{}) (int64, error) {
	return 0, nil
}
func (d *DummyDBConnection) ExecuteUpsert(ctx context.Context, model interface{}, tableName string, conflictColumns []string, updateColumns []string) (int64, error) {
	return 0, nil
}
func (d *DummyDBConnection) ExecuteRaw(ctx context.Context, query string, args ...interface{}) (int64, error) {
	return 0, nil
}
func (d *DummyDBConnection) QueryRaw(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}
func (d *DummyDBConnection) ExecuteQuery(ctx context.Context, target interface{}, query map[string]interface{}) error {
	return nil
}
func (d *DummyDBConnection) ExecuteQueryOrdered(ctx context.Context, target interface{}, query map[string]interface{}, orderBy string, limit int) error {
	return nil
}
func (d *DummyDBConnection) Count(ctx context.Context, model interface{}, query map[string]interface{}) (int64, error) {
	return 0, nil
}
func (d *DummyDBConnection) Type() string                    { return "dummy" }
func (d *DummyDBConnection) Name() string                    { return "dummy" }
func (d *DummyDBConnection) Close() error                    { return nil }
func (d *DummyDBConnection) Ping(ctx context.Context) error  { return nil }
func (d *DummyDBConnection) Config() dbconfig.DatabaseConfig { return dbconfig.DatabaseConfig{} }
func (d *DummyDBConnection) GetSQLDB() (*sql.DB, error)      { return nil, nil }

var (
	_ tx.TransactionManager = (*DummyTxManager)(nil)
	_ database.DBConnection = (*DummyDBConnection)(nil)
)
