package repository

import (
	"context"
	"errors"

	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
)

// ErrBatchNotFound is returned when an import batch is not found.
var ErrBatchNotFound = errors.New("import batch not found")

// BatchRepository defines operations for persisting and retrieving import batches.
type BatchRepository interface {
	// SaveBatch persists a new ImportBatch.
	SaveBatch(ctx context.Context, batch *model.ImportBatch) error

	// UpdateBatchStatus updates the status and run bookkeeping fields
	// (error message, retry count, timestamps) of an existing ImportBatch.
	UpdateBatchStatus(ctx context.Context, batch *model.ImportBatch) error

	// FindBatchByID finds an ImportBatch by its ID.
	// Returns ErrBatchNotFound when no batch with that ID exists.
	FindBatchByID(ctx context.Context, batchID string) (*model.ImportBatch, error)

	// FindBatchesByParentID finds all batches derived from the given batch
	// via reprocessing, ordered by creation time.
	FindBatchesByParentID(ctx context.Context, parentBatchID string) ([]*model.ImportBatch, error)

	// GetBatchSummary computes the aggregate summary for a batch from its
	// committed state. Returns ErrBatchNotFound when the batch does not exist.
	GetBatchSummary(ctx context.Context, batchID string) (*model.BatchSummary, error)
}
