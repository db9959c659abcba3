// Package execution provides the execution context handed to item processors.
// It carries the batch and current item, routes data operations into the
// transaction active on the context, and exposes durable, batch-scoped
// logging alongside an in-memory scratchpad shared across hooks of one run.
package execution

import (
	"context"
	"reflect"
	"sync"

	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
	"github.com/tigerroll/reimport/pkg/imports/core/domain/repository"
	coretx "github.com/tigerroll/reimport/pkg/imports/core/tx"
	"github.com/tigerroll/reimport/pkg/imports/support/util/logger"
)

// Log levels for durable import log entries.
const (
	LogLevelDebug   = "DEBUG"
	LogLevelInfo    = "INFO"
	LogLevelWarning = "WARNING"
	LogLevelError   = "ERROR"
)

// Context is the processor's window into one batch run. One Context lives
// for the duration of a run; the manager rebinds the current item as the
// loop advances.
//
// Data operations (Exec, Query, Upsert) and durable logs join the
// transaction carried by the ambient context.Context when one is active,
// and fall back to auto-commit mode otherwise. During ProcessItem the item
// transaction is always active, so business writes and log entries share
// the item's fate.
type Context struct {
	batch *model.ImportBatch
	item  *model.BatchItem

	logs     repository.LogRepository
	fallback coretx.TxExecutor

	mu       sync.RWMutex
	metadata map[string]interface{}
}

// NewContext creates an execution context for one run of a batch. fallback
// is the executor used for data operations when no transaction is active on
// the ambient context.
func NewContext(batch *model.ImportBatch, logs repository.LogRepository, fallback coretx.TxExecutor) *Context {
	return &Context{
		batch:    batch,
		logs:     logs,
		fallback: fallback,
		metadata: make(map[string]interface{}),
	}
}

// Batch returns the batch being processed.
func (c *Context) Batch() *model.ImportBatch {
	return c.batch
}

// Item returns the item currently being processed, or nil during
// batch-scoped hooks.
func (c *Context) Item() *model.BatchItem {
	return c.item
}

// BindItem sets the current item. Called by the batch manager as the item
// loop advances; processors should not call it.
func (c *Context) BindItem(item *model.BatchItem) {
	c.item = item
}

// IsReprocess reports whether the batch being processed was derived from
// another batch via reprocessing.
func (c *Context) IsReprocess() bool {
	return c.batch.IsReprocess()
}

// OriginalBatchID returns the parent batch's ID for a reprocessing run, or
// an empty string for an original run.
func (c *Context) OriginalBatchID() string {
	return c.batch.ParentBatchID
}

// Put stores a value in the run-scoped scratchpad. The scratchpad is shared
// across all hooks of one run and is never persisted.
func (c *Context) Put(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metadata[key] = value
}

// Get retrieves a value from the run-scoped scratchpad.
func (c *Context) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.metadata[key]
	return v, ok
}

// Metadata returns a snapshot copy of the scratchpad.
func (c *Context) Metadata() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := make(map[string]interface{}, len(c.metadata))
	for k, v := range c.metadata {
		snapshot[k] = v
	}
	return snapshot
}

// executor returns the transaction active on ctx, or the fallback executor.
func (c *Context) executor(ctx context.Context) coretx.TxExecutor {
	if t, ok := coretx.FromContext(ctx); ok {
		return t
	}
	return c.fallback
}

// Exec executes a raw SQL statement through the active transaction.
func (c *Context) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	return c.executor(ctx).ExecuteRaw(ctx, query, args...)
}

// Query executes a raw SQL query through the active transaction and scans
// the result into dest.
func (c *Context) Query(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return c.executor(ctx).QueryRaw(ctx, dest, query, args...)
}

// QueryOne executes a raw SQL query expected to yield at most one row and
// reports whether a row was found. dest must be a pointer to a slice; on a
// hit the slice holds exactly the first row.
func (c *Context) QueryOne(ctx context.Context, dest interface{}, query string, args ...interface{}) (bool, error) {
	if err := c.executor(ctx).QueryRaw(ctx, dest, query, args...); err != nil {
		return false, err
	}
	v := reflect.ValueOf(dest)
	if v.Kind() == reflect.Ptr && v.Elem().Kind() == reflect.Slice {
		return v.Elem().Len() > 0, nil
	}
	return true, nil
}

// Upsert performs an UPSERT on tableName through the active transaction.
func (c *Context) Upsert(ctx context.Context, m interface{}, tableName string, conflictColumns, updateColumns []string) (int64, error) {
	return c.executor(ctx).ExecuteUpsert(ctx, m, tableName, conflictColumns, updateColumns)
}

// Debug writes a DEBUG log entry attached to the batch and current item.
func (c *Context) Debug(ctx context.Context, message string, details model.Payload) {
	c.log(ctx, LogLevelDebug, message, details)
}

// Info writes an INFO log entry attached to the batch and current item.
func (c *Context) Info(ctx context.Context, message string, details model.Payload) {
	c.log(ctx, LogLevelInfo, message, details)
}

// Warning writes a WARNING log entry attached to the batch and current item.
func (c *Context) Warning(ctx context.Context, message string, details model.Payload) {
	c.log(ctx, LogLevelWarning, message, details)
}

// Error writes an ERROR log entry attached to the batch and current item.
func (c *Context) Error(ctx context.Context, message string, details model.Payload) {
	c.log(ctx, LogLevelError, message, details)
}

// log persists a durable entry and mirrors it to the process log. Entries
// written while a transaction is active are rolled back with it.
func (c *Context) log(ctx context.Context, level, message string, details model.Payload) {
	itemID := ""
	if c.item != nil {
		itemID = c.item.ID
	}
	entry := model.NewImportLog(c.batch.ID, itemID, level, message, details)
	if err := c.logs.AppendLog(ctx, entry); err != nil {
		logger.Warnf("Failed to append import log for batch %s: %v", c.batch.ID, err)
	}

	switch level {
	case LogLevelDebug:
		logger.Debugf("[batch %s] %s", c.batch.ID, message)
	case LogLevelWarning:
		logger.Warnf("[batch %s] %s", c.batch.ID, message)
	case LogLevelError:
		logger.Errorf("[batch %s] %s", c.batch.ID, message)
	default:
		logger.Infof("[batch %s] %s", c.batch.ID, message)
	}
}
