// Package processor defines the extension surface of the Reimport framework.
// An ItemProcessor implements the domain-specific transformation and loading
// of one item kind; the batch manager drives its hooks in a fixed order and
// owns every status transition and transaction boundary around them.
package processor

import (
	"context"

	"github.com/tigerroll/reimport/pkg/imports/core/execution"
	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
)

// ItemProcessor is implemented by users of the framework, one per item kind.
//
// ProcessItem is the only required hook; the remaining hooks have neutral
// defaults available by embedding BaseProcessor. All hooks run inside
// transactions controlled by the batch manager: writes issued through the
// execution context share the fate of the surrounding item or batch
// transaction.
type ItemProcessor interface {
	// ProcessItem performs the business transformation and load for one item.
	// It runs inside the item's transaction together with the item's
	// COMPLETED status write; returning an error rolls back both. The
	// returned ItemResult may be nil when there is no outcome metadata to
	// record.
	ProcessItem(ctx context.Context, ec *execution.Context, item *model.BatchItem) (*model.ItemResult, error)

	// ValidateBatch inspects the whole batch before any item is processed.
	// Returning an error fails the batch without touching any item.
	ValidateBatch(ctx context.Context, ec *execution.Context) error

	// ValidateItem decides whether an item is eligible for processing.
	// Returning false marks the item SKIPPED without entering PROCESSING.
	ValidateItem(ctx context.Context, ec *execution.Context, item *model.BatchItem) bool

	// ShouldSkip decides whether an eligible item should be skipped anyway,
	// for example because it was already imported by an earlier run.
	ShouldSkip(ctx context.Context, ec *execution.Context, item *model.BatchItem) bool

	// OnBatchStart runs once before the item loop, after ValidateBatch.
	// Returning an error fails the batch without touching any item.
	OnBatchStart(ctx context.Context, ec *execution.Context) error

	// OnBatchComplete runs once after the item loop, inside the transaction
	// that persists the batch's terminal status. success reflects whether the
	// batch is about to be marked COMPLETED.
	OnBatchComplete(ctx context.Context, ec *execution.Context, success bool) error

	// OnItemError is notified after an item has been durably marked FAILED.
	// Returning false signals that the batch should stop; the run aborts
	// only when the continue-on-error setting is also off.
	OnItemError(ctx context.Context, ec *execution.Context, item *model.BatchItem, itemErr error) bool
}

// BaseProcessor provides neutral defaults for every hook except ProcessItem.
// Embed it in a processor implementation and override only what the item
// kind needs.
type BaseProcessor struct{}

func (BaseProcessor) ValidateBatch(ctx context.Context, ec *execution.Context) error {
	return nil
}

func (BaseProcessor) ValidateItem(ctx context.Context, ec *execution.Context, item *model.BatchItem) bool {
	return true
}

func (BaseProcessor) ShouldSkip(ctx context.Context, ec *execution.Context, item *model.BatchItem) bool {
	return false
}

func (BaseProcessor) OnBatchStart(ctx context.Context, ec *execution.Context) error {
	return nil
}

func (BaseProcessor) OnBatchComplete(ctx context.Context, ec *execution.Context, success bool) error {
	return nil
}

func (BaseProcessor) OnItemError(ctx context.Context, ec *execution.Context, item *model.BatchItem, itemErr error) bool {
	return true
}
