package repository

import (
	"context"
	"errors"

	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
)

// ErrItemNotFound is returned when a batch item is not found.
var ErrItemNotFound = errors.New("batch item not found")

// ItemRepository defines operations for persisting and retrieving batch items.
type ItemRepository interface {
	// SaveItem persists a new BatchItem.
	SaveItem(ctx context.Context, item *model.BatchItem) error

	// UpdateItemStatus updates only the status of an existing BatchItem.
	UpdateItemStatus(ctx context.Context, item *model.BatchItem) error

	// UpdateItemOutcome records a successful outcome: status, processed data,
	// target table/ID and the processing timestamp.
	UpdateItemOutcome(ctx context.Context, item *model.BatchItem) error

	// UpdateItemFailure records a failed or skipped outcome: status, error
	// message and the processing timestamp.
	UpdateItemFailure(ctx context.Context, item *model.BatchItem) error

	// FindItemByID finds a BatchItem by its ID.
	// Returns ErrItemNotFound when no item with that ID exists.
	FindItemByID(ctx context.Context, itemID string) (*model.BatchItem, error)

	// FindItemsByBatchID finds all items of a batch, ordered by item index.
	FindItemsByBatchID(ctx context.Context, batchID string) ([]*model.BatchItem, error)

	// FindItemsByBatchIDAndStatus finds the items of a batch in the given
	// status, ordered by item index.
	FindItemsByBatchIDAndStatus(ctx context.Context, batchID string, status model.ItemStatus) ([]*model.BatchItem, error)
}
