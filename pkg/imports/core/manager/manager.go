// Package manager implements the batch manager, the single orchestrator of
// import execution. It owns every batch and item status transition and every
// transaction boundary; processors never manage either themselves.
package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
	"github.com/tigerroll/reimport/pkg/imports/core/domain/repository"
	"github.com/tigerroll/reimport/pkg/imports/core/execution"
	"github.com/tigerroll/reimport/pkg/imports/core/metrics"
	"github.com/tigerroll/reimport/pkg/imports/core/ports"
	"github.com/tigerroll/reimport/pkg/imports/core/processor"
	coretx "github.com/tigerroll/reimport/pkg/imports/core/tx"
	"github.com/tigerroll/reimport/pkg/imports/support/util/exception"
	"github.com/tigerroll/reimport/pkg/imports/support/util/logger"
)

const moduleName = "batch_manager"

// BatchManager drives the full lifecycle of import batches: creation,
// processing, reprocessing and summary retrieval.
type BatchManager struct {
	repo           repository.ImportRepository
	txManager      coretx.TransactionManager
	registry       *processor.Registry
	fallback       coretx.TxExecutor
	batchListeners []ports.BatchExecutionListener
	itemListeners  []ports.ItemLifecycleListener
	recorder       metrics.MetricRecorder
	tracer         metrics.Tracer
}

// NewBatchManager assembles a BatchManager. recorder and tracer may be the
// no-op implementations; listener slices may be empty.
func NewBatchManager(
	repo repository.ImportRepository,
	txManager coretx.TransactionManager,
	registry *processor.Registry,
	fallback coretx.TxExecutor,
	batchListeners []ports.BatchExecutionListener,
	itemListeners []ports.ItemLifecycleListener,
	recorder metrics.MetricRecorder,
	tracer metrics.Tracer,
) *BatchManager {
	if recorder == nil {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	if tracer == nil {
		tracer = metrics.NewNoOpTracer()
	}
	return &BatchManager{
		repo:           repo,
		txManager:      txManager,
		registry:       registry,
		fallback:       fallback,
		batchListeners: batchListeners,
		itemListeners:  itemListeners,
		recorder:       recorder,
		tracer:         tracer,
	}
}

// CreateBatch records a new PENDING batch and its items atomically: either
// the batch and all of its items exist afterwards, or nothing does.
// Items receive indexes 0..len(items)-1 in the given order. The batch is not
// processed; call ProcessBatch to run it.
func (m *BatchManager) CreateBatch(ctx context.Context, kind string, items []model.Payload, sourceInfo, metadata model.Payload) (string, error) {
	if !m.registry.Has(kind) {
		return "", exception.NewProcessorNotFound(moduleName, kind, m.registry.Kinds())
	}
	if len(items) == 0 {
		return "", exception.NewValidation(moduleName, "cannot create a batch with no items", nil)
	}

	batch := model.NewImportBatch(kind, sourceInfo, metadata)

	t, err := m.txManager.Begin(ctx)
	if err != nil {
		return "", exception.NewProcessing(moduleName, "failed to begin transaction for batch creation", err)
	}
	txCtx := coretx.WithTx(ctx, t)

	if err := m.repo.SaveBatch(txCtx, batch); err != nil {
		return "", m.rollbackWith(t, exception.NewProcessing(moduleName, fmt.Sprintf("failed to persist batch '%s'", batch.ID), err))
	}
	for i, payload := range items {
		item := model.NewBatchItem(batch.ID, i, payload)
		if err := m.repo.SaveItem(txCtx, item); err != nil {
			return "", m.rollbackWith(t, exception.NewProcessing(moduleName, fmt.Sprintf("failed to persist item %d of batch '%s'", i, batch.ID), err))
		}
	}
	if err := m.txManager.Commit(t); err != nil {
		return "", exception.NewProcessing(moduleName, fmt.Sprintf("failed to commit creation of batch '%s'", batch.ID), err)
	}

	logger.Infof("Created batch '%s' (kind: %s, items: %d).", batch.ID, kind, len(items))
	return batch.ID, nil
}

// ProcessBatch runs one batch to a terminal state.
//
// Already-terminal batches are not re-run: the call is a no-op that returns
// the batch's current summary. Items already in a terminal state are skipped,
// making re-entry after a crash safe.
//
// continueOnError controls whether an item failure aborts the remaining
// items. Regardless of the setting, every item outcome already committed
// stays committed. The terminal status is COMPLETED unless the run produced
// at least one failure and no successes.
func (m *BatchManager) ProcessBatch(ctx context.Context, batchID string, continueOnError bool) (*model.BatchSummary, error) {
	batch, err := m.repo.FindBatchByID(ctx, batchID)
	if err != nil {
		if err == repository.ErrBatchNotFound {
			return nil, exception.NewNotFound(moduleName, batchID)
		}
		return nil, exception.NewProcessing(moduleName, fmt.Sprintf("failed to load batch '%s'", batchID), err)
	}

	if batch.IsComplete() {
		logger.Infof("Batch '%s' is already %s; skipping processing.", batch.ID, batch.Status)
		return m.repo.GetBatchSummary(ctx, batchID)
	}

	proc, ok := m.registry.Get(batch.Kind)
	if !ok {
		return nil, exception.NewProcessorNotFound(moduleName, batch.Kind, m.registry.Kinds())
	}

	ctx, endSpan := m.tracer.StartBatchSpan(ctx, batch)
	runErr := m.runBatch(ctx, batch, proc, continueOnError)
	endSpan(runErr)

	summary, sumErr := m.repo.GetBatchSummary(ctx, batchID)
	if sumErr != nil {
		if runErr != nil {
			return nil, multierror.Append(runErr, sumErr)
		}
		return nil, exception.NewProcessing(moduleName, fmt.Sprintf("failed to load summary of batch '%s'", batchID), sumErr)
	}

	m.recorder.RecordBatchEnd(ctx, batch, summary)
	for _, l := range m.batchListeners {
		l.AfterBatch(ctx, batch, summary)
	}
	return summary, runErr
}

// runBatch executes the processing flow against a non-terminal batch. The
// batch is guaranteed to be in a terminal state afterwards, even when an
// orchestration error is returned.
func (m *BatchManager) runBatch(ctx context.Context, batch *model.ImportBatch, proc processor.ItemProcessor, continueOnError bool) error {
	ec := execution.NewContext(batch, m.repo, m.fallback)

	// Durably enter PROCESSING before any hook runs.
	batch.MarkAsProcessing()
	if err := m.updateBatchInTx(ctx, batch); err != nil {
		return m.failBatch(ctx, batch, exception.NewProcessing(moduleName, fmt.Sprintf("failed to mark batch '%s' as PROCESSING", batch.ID), err))
	}

	m.recorder.RecordBatchStart(ctx, batch)
	for _, l := range m.batchListeners {
		l.BeforeBatch(ctx, batch)
	}
	ec.Info(ctx, fmt.Sprintf("Batch processing started (kind: %s).", batch.Kind), nil)

	// Batch-scoped hooks run in one transaction committed before the item
	// loop, so their side effects are durable independent of any item's fate.
	if err := m.runBatchStartHooks(ctx, ec, proc); err != nil {
		return m.failBatch(ctx, batch, err)
	}

	items, err := m.repo.FindItemsByBatchID(ctx, batch.ID)
	if err != nil {
		return m.failBatch(ctx, batch, exception.NewProcessing(moduleName, fmt.Sprintf("failed to load items of batch '%s'", batch.ID), err))
	}

	// Counts are run-local: items finished by an earlier interrupted run do
	// not influence this run's terminal status.
	var successCount, failedCount int
	var abortErr error

	for _, item := range items {
		if item.IsComplete() {
			logger.Debugf("Item %d of batch '%s' is already %s; skipping.", item.ItemIndex, batch.ID, item.Status)
			continue
		}
		ec.BindItem(item)

		itemErr, fatalErr := m.processOne(ctx, ec, proc, batch, item)
		if fatalErr != nil {
			abortErr = fatalErr
			break
		}

		switch {
		case itemErr != nil:
			failedCount++
			// Aborting requires both: the hook signals stop and
			// continueOnError is off. Either one alone lets the run proceed.
			proceed := m.notifyItemError(ctx, ec, proc, batch, item, itemErr)
			if !proceed && !continueOnError {
				abortErr = exception.NewProcessing(moduleName, fmt.Sprintf("aborting batch '%s' after failure of item %d", batch.ID, item.ItemIndex), itemErr)
			}
		case item.Status == model.ItemStatusCompleted:
			successCount++
		}
		if abortErr != nil {
			break
		}
	}
	ec.BindItem(nil)

	if abortErr != nil {
		return m.failBatch(ctx, batch, abortErr)
	}

	// Terminal status rule: FAILED only when this run produced failures and
	// no successes. An all-skipped run completes.
	success := !(successCount == 0 && failedCount > 0)
	return m.finishBatch(ctx, ec, proc, batch, success)
}

// runBatchStartHooks runs ValidateBatch and OnBatchStart inside one transaction.
func (m *BatchManager) runBatchStartHooks(ctx context.Context, ec *execution.Context, proc processor.ItemProcessor) error {
	t, err := m.txManager.Begin(ctx)
	if err != nil {
		return exception.NewProcessing(moduleName, "failed to begin transaction for batch hooks", err)
	}
	txCtx := coretx.WithTx(ctx, t)

	if err := proc.ValidateBatch(txCtx, ec); err != nil {
		return m.rollbackWith(t, exception.NewValidation(moduleName, "batch validation failed", err))
	}
	if err := proc.OnBatchStart(txCtx, ec); err != nil {
		return m.rollbackWith(t, exception.NewProcessing(moduleName, "batch start hook failed", err))
	}
	if err := m.txManager.Commit(t); err != nil {
		return exception.NewProcessing(moduleName, "failed to commit batch hooks", err)
	}
	return nil
}

// processOne takes one PENDING item to a terminal state.
//
// The returned itemErr is the processor's failure for the item, already
// durably recorded; the batch may continue past it. fatalErr is an
// orchestration failure (transaction or persistence breakage) that must
// abort the batch.
func (m *BatchManager) processOne(ctx context.Context, ec *execution.Context, proc processor.ItemProcessor, batch *model.ImportBatch, item *model.BatchItem) (itemErr, fatalErr error) {
	// Ineligible and deliberately skipped items go straight to SKIPPED in a
	// single auto-commit write; they never enter PROCESSING.
	if !proc.ValidateItem(ctx, ec, item) {
		// Validation rejections leave a durable trace in the batch's log.
		ec.Warning(ctx, fmt.Sprintf("Item %d rejected by validation; skipping.", item.ItemIndex), nil)
		return nil, m.skipItem(ctx, batch, item, "failed validation")
	}
	if proc.ShouldSkip(ctx, ec, item) {
		return nil, m.skipItem(ctx, batch, item, "skip requested by processor")
	}

	ctx, endSpan := m.tracer.StartItemSpan(ctx, item)
	start := time.Now()

	t, err := m.txManager.Begin(ctx)
	if err != nil {
		endSpan(err)
		return nil, exception.NewProcessing(moduleName, fmt.Sprintf("failed to begin transaction for item %d", item.ItemIndex), err)
	}
	txCtx := coretx.WithTx(ctx, t)

	// The PROCESSING mark, the processor's business writes and the COMPLETED
	// outcome share one transaction: an item is either fully imported or not
	// imported at all.
	item.MarkAsProcessing()
	if err := m.repo.UpdateItemStatus(txCtx, item); err != nil {
		m.rollback(t)
		endSpan(err)
		return nil, exception.NewProcessing(moduleName, fmt.Sprintf("failed to mark item %d as PROCESSING", item.ItemIndex), err)
	}

	result, procErr := proc.ProcessItem(txCtx, ec, item)
	if procErr == nil {
		item.MarkAsCompleted(result)
		if err := m.repo.UpdateItemOutcome(txCtx, item); err != nil {
			m.rollback(t)
			endSpan(err)
			return nil, exception.NewProcessing(moduleName, fmt.Sprintf("failed to persist outcome of item %d", item.ItemIndex), err)
		}
		if err := m.txManager.Commit(t); err != nil {
			endSpan(err)
			return nil, exception.NewProcessing(moduleName, fmt.Sprintf("failed to commit item %d", item.ItemIndex), err)
		}
		endSpan(nil)
		m.recorder.RecordItemSuccess(ctx, batch.Kind, time.Since(start))
		for _, l := range m.itemListeners {
			l.OnItemCompleted(ctx, batch, item)
		}
		return nil, nil
	}

	// Failure path: the item's business writes are rolled back, then the
	// FAILED status is committed in an independent transaction so it
	// survives the rollback.
	m.rollback(t)
	endSpan(procErr)

	// The in-memory item still carries PROCESSING even though the write was
	// rolled back; the FAILED transition below starts from it.
	item.MarkAsFailed(procErr)
	if fatalErr := m.persistItemFailure(ctx, batch, item, procErr); fatalErr != nil {
		return nil, fatalErr
	}

	m.recorder.RecordItemFailure(ctx, batch.Kind, classify(procErr))
	for _, l := range m.itemListeners {
		l.OnItemFailed(ctx, batch, item, procErr)
	}
	return procErr, nil
}

// persistItemFailure commits the FAILED status and a failure log entry in a
// transaction independent of the rolled-back item transaction.
func (m *BatchManager) persistItemFailure(ctx context.Context, batch *model.ImportBatch, item *model.BatchItem, procErr error) error {
	t, err := m.txManager.Begin(ctx)
	if err != nil {
		return exception.NewProcessing(moduleName, fmt.Sprintf("failed to begin failure transaction for item %d", item.ItemIndex), err)
	}
	txCtx := coretx.WithTx(ctx, t)

	if err := m.repo.UpdateItemFailure(txCtx, item); err != nil {
		return m.rollbackWith(t, exception.NewProcessing(moduleName, fmt.Sprintf("failed to mark item %d as FAILED", item.ItemIndex), err))
	}
	entry := model.NewImportLog(batch.ID, item.ID, execution.LogLevelError,
		fmt.Sprintf("Item %d failed: %s", item.ItemIndex, exception.ExtractMessage(procErr)), nil)
	if err := m.repo.AppendLog(txCtx, entry); err != nil {
		// The failure log is best effort; the durable FAILED status matters more.
		logger.Warnf("Failed to append failure log for item %d of batch '%s': %v", item.ItemIndex, batch.ID, err)
	}
	if err := m.txManager.Commit(t); err != nil {
		return exception.NewProcessing(moduleName, fmt.Sprintf("failed to commit FAILED status of item %d", item.ItemIndex), err)
	}
	return nil
}

// skipItem marks an item SKIPPED in a single auto-commit write.
func (m *BatchManager) skipItem(ctx context.Context, batch *model.ImportBatch, item *model.BatchItem, reason string) error {
	item.MarkAsSkipped()
	if err := m.repo.UpdateItemFailure(ctx, item); err != nil {
		return exception.NewProcessing(moduleName, fmt.Sprintf("failed to mark item %d as SKIPPED", item.ItemIndex), err)
	}
	logger.Debugf("Item %d of batch '%s' skipped: %s.", item.ItemIndex, batch.ID, reason)
	m.recorder.RecordItemSkip(ctx, batch.Kind)
	for _, l := range m.itemListeners {
		l.OnItemSkipped(ctx, batch, item)
	}
	return nil
}

// notifyItemError runs the OnItemError hook in its own transaction. The
// hook's verdict is one half of the abort decision in runBatch.
func (m *BatchManager) notifyItemError(ctx context.Context, ec *execution.Context, proc processor.ItemProcessor, batch *model.ImportBatch, item *model.BatchItem, itemErr error) bool {
	t, err := m.txManager.Begin(ctx)
	if err != nil {
		logger.Warnf("Failed to begin transaction for OnItemError of item %d: %v", item.ItemIndex, err)
		return proc.OnItemError(ctx, ec, item, itemErr)
	}
	txCtx := coretx.WithTx(ctx, t)
	proceed := proc.OnItemError(txCtx, ec, item, itemErr)
	if err := m.txManager.Commit(t); err != nil {
		logger.Warnf("Failed to commit OnItemError transaction for item %d: %v", item.ItemIndex, err)
	}
	return proceed
}

// finishBatch persists the terminal status together with the OnBatchComplete
// hook in one transaction. A count-based FAILED outcome records no batch
// error message; only orchestration failures do.
func (m *BatchManager) finishBatch(ctx context.Context, ec *execution.Context, proc processor.ItemProcessor, batch *model.ImportBatch, success bool) error {
	t, err := m.txManager.Begin(ctx)
	if err != nil {
		return m.failBatch(ctx, batch, exception.NewProcessing(moduleName, "failed to begin transaction for batch completion", err))
	}
	txCtx := coretx.WithTx(ctx, t)

	if err := proc.OnBatchComplete(txCtx, ec, success); err != nil {
		m.rollback(t)
		return m.failBatch(ctx, batch, exception.NewProcessing(moduleName, "batch completion hook failed", err))
	}

	if success {
		batch.MarkAsCompleted()
	} else {
		batch.MarkAsFailed(nil)
	}
	if err := m.repo.UpdateBatchStatus(txCtx, batch); err != nil {
		m.rollback(t)
		return m.failBatch(ctx, batch, exception.NewProcessing(moduleName, fmt.Sprintf("failed to persist terminal status of batch '%s'", batch.ID), err))
	}
	if err := m.txManager.Commit(t); err != nil {
		return m.failBatch(ctx, batch, exception.NewProcessing(moduleName, fmt.Sprintf("failed to commit terminal status of batch '%s'", batch.ID), err))
	}

	logger.Infof("Batch '%s' finished with status %s.", batch.ID, batch.Status)
	return nil
}

// failBatch forces the batch into FAILED after an orchestration error. It is
// best effort: the original error is returned even when the status write
// itself fails, with the secondary failure appended.
func (m *BatchManager) failBatch(ctx context.Context, batch *model.ImportBatch, cause error) error {
	if batch.IsComplete() {
		return cause
	}
	batch.MarkAsFailed(cause)
	if err := m.updateBatchInTx(ctx, batch); err != nil {
		logger.Errorf("Failed to persist FAILED status of batch '%s': %v", batch.ID, err)
		return multierror.Append(cause, err)
	}
	logger.Errorf("Batch '%s' failed: %v", batch.ID, cause)
	return cause
}

// updateBatchInTx persists the batch's current state in its own transaction.
func (m *BatchManager) updateBatchInTx(ctx context.Context, batch *model.ImportBatch) error {
	t, err := m.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	txCtx := coretx.WithTx(ctx, t)
	if err := m.repo.UpdateBatchStatus(txCtx, batch); err != nil {
		return m.rollbackWith(t, err)
	}
	return m.txManager.Commit(t)
}

// Reprocess creates a new batch derived from an existing one and runs it
// immediately. failedItemsOnly restricts the copied items to the parent's
// FAILED items; otherwise every item is copied. Copied items carry the
// parent's original source data and are re-indexed densely from zero.
//
// When no items match the selection, no new batch is created and the
// parent's ID is returned.
//
// The new batch's ID is returned even when processing it fails, so callers
// can always locate the run.
func (m *BatchManager) Reprocess(ctx context.Context, batchID string, failedItemsOnly, continueOnError bool) (string, error) {
	parent, err := m.repo.FindBatchByID(ctx, batchID)
	if err != nil {
		if err == repository.ErrBatchNotFound {
			return "", exception.NewNotFound(moduleName, batchID)
		}
		return "", exception.NewProcessing(moduleName, fmt.Sprintf("failed to load batch '%s'", batchID), err)
	}

	var items []*model.BatchItem
	if failedItemsOnly {
		items, err = m.repo.FindItemsByBatchIDAndStatus(ctx, parent.ID, model.ItemStatusFailed)
	} else {
		items, err = m.repo.FindItemsByBatchID(ctx, parent.ID)
	}
	if err != nil {
		return "", exception.NewProcessing(moduleName, fmt.Sprintf("failed to load items of batch '%s'", parent.ID), err)
	}
	if len(items) == 0 {
		logger.Infof("Batch '%s' has no items to reprocess; nothing to do.", parent.ID)
		return parent.ID, nil
	}

	child := model.NewReprocessBatch(parent)

	t, err := m.txManager.Begin(ctx)
	if err != nil {
		return "", exception.NewProcessing(moduleName, "failed to begin transaction for reprocessing", err)
	}
	txCtx := coretx.WithTx(ctx, t)

	if err := m.repo.SaveBatch(txCtx, child); err != nil {
		return "", m.rollbackWith(t, exception.NewProcessing(moduleName, fmt.Sprintf("failed to persist reprocess batch for '%s'", parent.ID), err))
	}
	for i, src := range items {
		item := model.NewBatchItem(child.ID, i, src.SourceData.Copy())
		if err := m.repo.SaveItem(txCtx, item); err != nil {
			return "", m.rollbackWith(t, exception.NewProcessing(moduleName, fmt.Sprintf("failed to persist reprocess item %d", i), err))
		}
	}
	if err := m.txManager.Commit(t); err != nil {
		return "", exception.NewProcessing(moduleName, "failed to commit reprocess batch creation", err)
	}

	logger.Infof("Created reprocess batch '%s' from '%s' (items: %d, failedItemsOnly: %t).", child.ID, parent.ID, len(items), failedItemsOnly)
	m.recorder.RecordReprocess(ctx, child.Kind, len(items))

	if _, err := m.ProcessBatch(ctx, child.ID, continueOnError); err != nil {
		return child.ID, err
	}
	return child.ID, nil
}

// GetSummary returns the derived summary of a batch computed from its
// committed state.
func (m *BatchManager) GetSummary(ctx context.Context, batchID string) (*model.BatchSummary, error) {
	summary, err := m.repo.GetBatchSummary(ctx, batchID)
	if err != nil {
		if err == repository.ErrBatchNotFound {
			return nil, exception.NewNotFound(moduleName, batchID)
		}
		return nil, exception.NewProcessing(moduleName, fmt.Sprintf("failed to load summary of batch '%s'", batchID), err)
	}
	return summary, nil
}

// rollback rolls a transaction back, logging secondary failures.
func (m *BatchManager) rollback(t coretx.Tx) {
	if err := m.txManager.Rollback(t); err != nil {
		logger.Warnf("Transaction rollback failed: %v", err)
	}
}

// rollbackWith rolls back and returns cause, appending any rollback failure.
func (m *BatchManager) rollbackWith(t coretx.Tx, cause error) error {
	if err := m.txManager.Rollback(t); err != nil {
		return multierror.Append(cause, err)
	}
	return cause
}

// classify reduces an item error to a coarse label for metrics.
func classify(err error) string {
	switch {
	case exception.IsValidation(err):
		return "validation"
	case exception.IsNotFound(err):
		return "not_found"
	default:
		return "processing"
	}
}
