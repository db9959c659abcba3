// Package ports defines outbound interfaces through which the batch manager
// notifies external concerns (logging, metrics, alerting) about execution
// progress. Listeners are observational: their return values are ignored and
// they must not mutate execution state.
package ports

import (
	"context"

	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
)

// BatchExecutionListener is notified around one batch run.
type BatchExecutionListener interface {
	// BeforeBatch is called after the batch has been durably marked
	// PROCESSING, before any item is processed.
	BeforeBatch(ctx context.Context, batch *model.ImportBatch)

	// AfterBatch is called after the batch has been durably marked with its
	// terminal status.
	AfterBatch(ctx context.Context, batch *model.ImportBatch, summary *model.BatchSummary)
}

// ItemLifecycleListener is notified after each item reaches a terminal state.
type ItemLifecycleListener interface {
	// OnItemCompleted is called after an item's COMPLETED status has been committed.
	OnItemCompleted(ctx context.Context, batch *model.ImportBatch, item *model.BatchItem)

	// OnItemFailed is called after an item's FAILED status has been committed.
	OnItemFailed(ctx context.Context, batch *model.ImportBatch, item *model.BatchItem, itemErr error)

	// OnItemSkipped is called after an item's SKIPPED status has been committed.
	OnItemSkipped(ctx context.Context, batch *model.ImportBatch, item *model.BatchItem)
}
