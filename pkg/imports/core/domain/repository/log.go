package repository

import (
	"context"

	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
)

// LogRepository defines operations for the append-only import log.
type LogRepository interface {
	// AppendLog persists a new ImportLog entry. Entries written inside a
	// transaction share its fate: they are durable only if the transaction
	// commits.
	AppendLog(ctx context.Context, entry *model.ImportLog) error

	// FindLogsByBatchID finds all log entries of a batch in insertion order.
	FindLogsByBatchID(ctx context.Context, batchID string) ([]*model.ImportLog, error)
}
