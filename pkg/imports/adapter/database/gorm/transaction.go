package gorm

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"github.com/tigerroll/reimport/pkg/imports/adapter/database"
	tx "github.com/tigerroll/reimport/pkg/imports/core/tx"
)

// GormTxAdapter implements tx.Tx and is produced by GormTransactionManager.
type GormTxAdapter struct {
	db *gorm.DB
}

// ExecuteUpdate implements tx.TxExecutor on the transaction's *gorm.DB.
func (t *GormTxAdapter) ExecuteUpdate(ctx context.Context, model interface{}, operation string, tableName string, query map[string]interface{}) (int64, error) {
	return executeUpdate(t.db.WithContext(ctx), model, operation, tableName, query)
}

// ExecuteUpsert implements tx.TxExecutor on the transaction's *gorm.DB.
func (t *GormTxAdapter) ExecuteUpsert(ctx context.Context, model interface{}, tableName string, conflictColumns []string, updateColumns []string) (int64, error) {
	return executeUpsert(t.db.WithContext(ctx), model, tableName, conflictColumns, updateColumns)
}

// ExecuteRaw implements tx.TxExecutor on the transaction's *gorm.DB.
func (t *GormTxAdapter) ExecuteRaw(ctx context.Context, query string, args ...interface{}) (int64, error) {
	result := t.db.WithContext(ctx).Exec(query, args...)
	return result.RowsAffected, result.Error
}

// QueryRaw implements tx.TxExecutor on the transaction's *gorm.DB.
func (t *GormTxAdapter) QueryRaw(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return t.db.WithContext(ctx).Raw(query, args...).Scan(dest).Error
}

// Savepoint implements tx.Tx.
func (t *GormTxAdapter) Savepoint(name string) error {
	return t.db.SavePoint(name).Error
}

// RollbackToSavepoint implements tx.Tx.
func (t *GormTxAdapter) RollbackToSavepoint(name string) error {
	return t.db.RollbackTo(name).Error
}

// GormTransactionManager implements tx.TransactionManager over one connection.
type GormTransactionManager struct {
	conn database.DBConnection
}

// NewGormTransactionManager creates a TransactionManager bound to the given
// connection, which must be backed by the gorm adapter.
func NewGormTransactionManager(conn database.DBConnection) tx.TransactionManager {
	return &GormTransactionManager{conn: conn}
}

func (m *GormTransactionManager) Begin(ctx context.Context, opts ...*sql.TxOptions) (tx.Tx, error) {
	adapter, ok := m.conn.(*GormDBAdapter)
	if !ok {
		return nil, fmt.Errorf("internal error: DBConnection implementation is not *GormDBAdapter")
	}
	gormDB := adapter.GetGormDB().WithContext(ctx)

	var txOpts *sql.TxOptions
	if len(opts) > 0 && opts[0] != nil {
		txOpts = opts[0]
	}

	gormTx := gormDB.Begin(txOpts)
	if gormTx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", gormTx.Error)
	}
	return &GormTxAdapter{db: gormTx}, nil
}

func (m *GormTransactionManager) Commit(t tx.Tx) error {
	adapter, ok := t.(*GormTxAdapter)
	if !ok {
		return fmt.Errorf("invalid transaction type: expected *GormTxAdapter")
	}
	return adapter.db.Commit().Error
}

func (m *GormTransactionManager) Rollback(t tx.Tx) error {
	adapter, ok := t.(*GormTxAdapter)
	if !ok {
		return fmt.Errorf("invalid transaction type: expected *GormTxAdapter")
	}
	return adapter.db.Rollback().Error
}
