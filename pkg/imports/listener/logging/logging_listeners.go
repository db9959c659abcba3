// Package logging provides listeners that report execution progress through
// the framework logger.
package logging

import (
	"context"

	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
	"github.com/tigerroll/reimport/pkg/imports/core/ports"
	"github.com/tigerroll/reimport/pkg/imports/support/util/logger"
)

// LoggingBatchListener logs the start and end of every batch run.
type LoggingBatchListener struct{}

// NewLoggingBatchListener creates a new LoggingBatchListener.
func NewLoggingBatchListener() *LoggingBatchListener {
	return &LoggingBatchListener{}
}

// BeforeBatch implements ports.BatchExecutionListener.
func (l *LoggingBatchListener) BeforeBatch(ctx context.Context, batch *model.ImportBatch) {
	if batch.IsReprocess() {
		logger.Infof("Starting batch '%s' (kind: %s, reprocess of '%s').", batch.ID, batch.Kind, batch.ParentBatchID)
		return
	}
	logger.Infof("Starting batch '%s' (kind: %s).", batch.ID, batch.Kind)
}

// AfterBatch implements ports.BatchExecutionListener.
func (l *LoggingBatchListener) AfterBatch(ctx context.Context, batch *model.ImportBatch, summary *model.BatchSummary) {
	logger.Infof("Finished batch '%s': status=%s total=%d completed=%d failed=%d skipped=%d",
		batch.ID, summary.Status, summary.TotalItems, summary.CompletedItems, summary.FailedItems, summary.SkippedItems)
	if d, ok := summary.DurationSeconds(); ok {
		logger.Debugf("Batch '%s' took %.3fs (%.1f%% success).", batch.ID, d, summary.SuccessRate())
	}
}

// LoggingItemListener logs every item outcome.
type LoggingItemListener struct{}

// NewLoggingItemListener creates a new LoggingItemListener.
func NewLoggingItemListener() *LoggingItemListener {
	return &LoggingItemListener{}
}

// OnItemCompleted implements ports.ItemLifecycleListener.
func (l *LoggingItemListener) OnItemCompleted(ctx context.Context, batch *model.ImportBatch, item *model.BatchItem) {
	logger.Debugf("Item %d of batch '%s' completed (target: %s/%s).", item.ItemIndex, batch.ID, item.TargetTable, item.TargetID)
}

// OnItemFailed implements ports.ItemLifecycleListener.
func (l *LoggingItemListener) OnItemFailed(ctx context.Context, batch *model.ImportBatch, item *model.BatchItem, itemErr error) {
	logger.Warnf("Item %d of batch '%s' failed: %v", item.ItemIndex, batch.ID, itemErr)
}

// OnItemSkipped implements ports.ItemLifecycleListener.
func (l *LoggingItemListener) OnItemSkipped(ctx context.Context, batch *model.ImportBatch, item *model.BatchItem) {
	logger.Debugf("Item %d of batch '%s' skipped.", item.ItemIndex, batch.ID)
}

var (
	_ ports.BatchExecutionListener = (*LoggingBatchListener)(nil)
	_ ports.ItemLifecycleListener  = (*LoggingItemListener)(nil)
)
