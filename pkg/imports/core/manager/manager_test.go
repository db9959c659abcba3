package manager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dummy "github.com/tigerroll/reimport/pkg/imports/adapter/database/dummy"
	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
	"github.com/tigerroll/reimport/pkg/imports/core/execution"
	"github.com/tigerroll/reimport/pkg/imports/core/processor"
	coretx "github.com/tigerroll/reimport/pkg/imports/core/tx"
	"github.com/tigerroll/reimport/pkg/imports/infrastructure/repository/inmemory"
	"github.com/tigerroll/reimport/pkg/imports/support/util/exception"
)

// scriptedProcessor lets each test script the hook behavior per item index.
type scriptedProcessor struct {
	processor.BaseProcessor

	processFn       func(item *model.BatchItem) (*model.ItemResult, error)
	validateBatchFn func() error
	validateItemFn  func(item *model.BatchItem) bool
	shouldSkipFn    func(item *model.BatchItem) bool
	onBatchStartFn  func() error
	onItemErrorFn   func(item *model.BatchItem, itemErr error) bool

	mu             sync.Mutex
	processedIdx   []int
	completeCalled bool
	completeFlag   bool
}

func (p *scriptedProcessor) ProcessItem(ctx context.Context, ec *execution.Context, item *model.BatchItem) (*model.ItemResult, error) {
	p.mu.Lock()
	p.processedIdx = append(p.processedIdx, item.ItemIndex)
	p.mu.Unlock()
	if p.processFn != nil {
		return p.processFn(item)
	}
	return &model.ItemResult{TargetTable: "records", TargetID: fmt.Sprintf("%d", item.ItemIndex)}, nil
}

func (p *scriptedProcessor) ValidateBatch(ctx context.Context, ec *execution.Context) error {
	if p.validateBatchFn != nil {
		return p.validateBatchFn()
	}
	return nil
}

func (p *scriptedProcessor) ValidateItem(ctx context.Context, ec *execution.Context, item *model.BatchItem) bool {
	if p.validateItemFn != nil {
		return p.validateItemFn(item)
	}
	return true
}

func (p *scriptedProcessor) ShouldSkip(ctx context.Context, ec *execution.Context, item *model.BatchItem) bool {
	if p.shouldSkipFn != nil {
		return p.shouldSkipFn(item)
	}
	return false
}

func (p *scriptedProcessor) OnBatchStart(ctx context.Context, ec *execution.Context) error {
	if p.onBatchStartFn != nil {
		return p.onBatchStartFn()
	}
	return nil
}

func (p *scriptedProcessor) OnBatchComplete(ctx context.Context, ec *execution.Context, success bool) error {
	p.mu.Lock()
	p.completeCalled = true
	p.completeFlag = success
	p.mu.Unlock()
	return nil
}

func (p *scriptedProcessor) OnItemError(ctx context.Context, ec *execution.Context, item *model.BatchItem, itemErr error) bool {
	if p.onItemErrorFn != nil {
		return p.onItemErrorFn(item, itemErr)
	}
	return true
}

type fixture struct {
	repo    *inmemory.InMemoryImportRepository
	manager *BatchManager
	proc    *scriptedProcessor
}

func newFixture(t *testing.T, kind string) *fixture {
	t.Helper()
	repo := inmemory.NewInMemoryImportRepository()
	registry := processor.NewRegistry()
	proc := &scriptedProcessor{}
	registry.Register(kind, func() processor.ItemProcessor { return proc })

	m := NewBatchManager(repo, dummy.NewDummyTxManager(), registry, dummy.NewDummyDBConnection(), nil, nil, nil, nil)
	return &fixture{repo: repo, manager: m, proc: proc}
}

func payloads(n int) []model.Payload {
	out := make([]model.Payload, n)
	for i := range out {
		out[i] = model.Payload{"index": i}
	}
	return out
}

func TestCreateBatch(t *testing.T) {
	f := newFixture(t, "orders")
	ctx := context.Background()

	id, err := f.manager.CreateBatch(ctx, "orders", payloads(3), model.Payload{"file": "a.csv"}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	batch, err := f.repo.FindBatchByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusPending, batch.Status)
	assert.Equal(t, "orders", batch.Kind)

	items, err := f.repo.FindItemsByBatchID(ctx, id)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, item := range items {
		assert.Equal(t, i, item.ItemIndex)
		assert.Equal(t, model.ItemStatusPending, item.Status)
		assert.Equal(t, model.Payload{"index": i}, item.SourceData)
	}
}

func TestCreateBatch_UnknownKind(t *testing.T) {
	f := newFixture(t, "orders")

	_, err := f.manager.CreateBatch(context.Background(), "unknown", payloads(1), nil, nil)
	require.Error(t, err)
	assert.True(t, exception.IsProcessorNotFound(err))
}

func TestCreateBatch_EmptyItems(t *testing.T) {
	f := newFixture(t, "orders")

	_, err := f.manager.CreateBatch(context.Background(), "orders", nil, nil, nil)
	require.Error(t, err)
	assert.True(t, exception.IsValidation(err))
}

// TestProcessBatch_MixedOutcomes runs the canonical four-item batch: one
// success, one failure, one skip, one success.
func TestProcessBatch_MixedOutcomes(t *testing.T) {
	f := newFixture(t, "orders")
	ctx := context.Background()

	f.proc.processFn = func(item *model.BatchItem) (*model.ItemResult, error) {
		if item.ItemIndex == 1 {
			return nil, errors.New("bad record")
		}
		return &model.ItemResult{TargetTable: "orders", TargetID: fmt.Sprintf("%d", item.ItemIndex)}, nil
	}
	f.proc.shouldSkipFn = func(item *model.BatchItem) bool {
		return item.ItemIndex == 2
	}

	id, err := f.manager.CreateBatch(ctx, "orders", payloads(4), nil, nil)
	require.NoError(t, err)

	summary, err := f.manager.ProcessBatch(ctx, id, true)
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, model.BatchStatusCompleted, summary.Status)
	assert.Equal(t, 4, summary.TotalItems)
	assert.Equal(t, 2, summary.CompletedItems)
	assert.Equal(t, 1, summary.FailedItems)
	assert.Equal(t, 1, summary.SkippedItems)
	assert.Zero(t, summary.PendingItems)

	items, err := f.repo.FindItemsByBatchID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusCompleted, items[0].Status)
	assert.Equal(t, model.ItemStatusFailed, items[1].Status)
	assert.Equal(t, "bad record", items[1].ErrorMessage)
	assert.Equal(t, model.ItemStatusSkipped, items[2].Status)
	assert.Equal(t, model.ItemStatusCompleted, items[3].Status)

	// The skipped item never reached the processor.
	assert.Equal(t, []int{0, 1, 3}, f.proc.processedIdx)

	// OnBatchComplete observed a successful run; the count-based outcome
	// leaves no batch-level error message.
	assert.True(t, f.proc.completeCalled)
	assert.True(t, f.proc.completeFlag)
	batch, _ := f.repo.FindBatchByID(ctx, id)
	assert.Empty(t, batch.ErrorMessage)
	require.NotNil(t, batch.StartedAt)
	require.NotNil(t, batch.CompletedAt)
}

func TestProcessBatch_AllFailed_IsFailed(t *testing.T) {
	f := newFixture(t, "orders")
	ctx := context.Background()

	f.proc.processFn = func(item *model.BatchItem) (*model.ItemResult, error) {
		return nil, errors.New("boom")
	}

	id, err := f.manager.CreateBatch(ctx, "orders", payloads(3), nil, nil)
	require.NoError(t, err)

	summary, err := f.manager.ProcessBatch(ctx, id, true)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusFailed, summary.Status)
	assert.Equal(t, 3, summary.FailedItems)
	assert.False(t, f.proc.completeFlag)

	// Item failures alone do not set a batch error message.
	batch, _ := f.repo.FindBatchByID(ctx, id)
	assert.Empty(t, batch.ErrorMessage)
}

func TestProcessBatch_ValidationSkipLogsWarning(t *testing.T) {
	f := newFixture(t, "orders")
	ctx := context.Background()

	f.proc.validateItemFn = func(item *model.BatchItem) bool { return item.ItemIndex != 1 }

	id, err := f.manager.CreateBatch(ctx, "orders", payloads(3), nil, nil)
	require.NoError(t, err)
	_, err = f.manager.ProcessBatch(ctx, id, true)
	require.NoError(t, err)

	items, _ := f.repo.FindItemsByBatchID(ctx, id)
	skipped := items[1]
	assert.Equal(t, model.ItemStatusSkipped, skipped.Status)

	// The rejection leaves a durable WARNING entry bound to the item.
	logs, err := f.repo.FindLogsByBatchID(ctx, id)
	require.NoError(t, err)
	var warned bool
	for _, entry := range logs {
		if entry.Level == execution.LogLevelWarning && entry.ItemID == skipped.ID {
			warned = true
			assert.Contains(t, entry.Message, "validation")
		}
	}
	assert.True(t, warned, "expected a WARNING log entry for the rejected item")
}

func TestProcessBatch_AllSkipped_IsCompleted(t *testing.T) {
	f := newFixture(t, "orders")
	ctx := context.Background()

	f.proc.validateItemFn = func(item *model.BatchItem) bool { return false }

	id, err := f.manager.CreateBatch(ctx, "orders", payloads(2), nil, nil)
	require.NoError(t, err)

	summary, err := f.manager.ProcessBatch(ctx, id, true)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, summary.Status)
	assert.Equal(t, 2, summary.SkippedItems)
	assert.Zero(t, summary.CompletedItems)
	assert.Empty(t, f.proc.processedIdx)
}

// Aborting a run takes both the hook signaling stop and continueOnError
// being off; either condition alone lets the remaining items run.
func TestProcessBatch_AbortNeedsHookStopAndContinueOnErrorOff(t *testing.T) {
	f := newFixture(t, "orders")
	ctx := context.Background()

	f.proc.processFn = func(item *model.BatchItem) (*model.ItemResult, error) {
		if item.ItemIndex == 1 {
			return nil, errors.New("boom")
		}
		return nil, nil
	}
	f.proc.onItemErrorFn = func(item *model.BatchItem, itemErr error) bool { return false }

	id, err := f.manager.CreateBatch(ctx, "orders", payloads(4), nil, nil)
	require.NoError(t, err)

	summary, err := f.manager.ProcessBatch(ctx, id, false)
	require.Error(t, err)
	assert.True(t, exception.IsProcessing(err))
	require.NotNil(t, summary)
	assert.Equal(t, model.BatchStatusFailed, summary.Status)

	// Committed outcomes stay committed; the remaining items are untouched.
	items, _ := f.repo.FindItemsByBatchID(ctx, id)
	assert.Equal(t, model.ItemStatusCompleted, items[0].Status)
	assert.Equal(t, model.ItemStatusFailed, items[1].Status)
	assert.Equal(t, model.ItemStatusPending, items[2].Status)
	assert.Equal(t, model.ItemStatusPending, items[3].Status)

	// Aborting is an orchestration failure and is recorded on the batch.
	batch, _ := f.repo.FindBatchByID(ctx, id)
	assert.NotEmpty(t, batch.ErrorMessage)
}

func TestProcessBatch_ContinueOnErrorOffAloneDoesNotAbort(t *testing.T) {
	f := newFixture(t, "orders")
	ctx := context.Background()

	f.proc.processFn = func(item *model.BatchItem) (*model.ItemResult, error) {
		if item.ItemIndex == 1 {
			return nil, errors.New("boom")
		}
		return nil, nil
	}

	// The default hook votes to continue, so continueOnError=false alone
	// must not stop the run.
	id, err := f.manager.CreateBatch(ctx, "orders", payloads(4), nil, nil)
	require.NoError(t, err)

	summary, err := f.manager.ProcessBatch(ctx, id, false)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, summary.Status)
	assert.Equal(t, 3, summary.CompletedItems)
	assert.Equal(t, 1, summary.FailedItems)
	assert.Equal(t, []int{0, 1, 2, 3}, f.proc.processedIdx)

	batch, _ := f.repo.FindBatchByID(ctx, id)
	assert.Empty(t, batch.ErrorMessage)
}

func TestProcessBatch_HookStopAloneDoesNotAbort(t *testing.T) {
	f := newFixture(t, "orders")
	ctx := context.Background()

	f.proc.processFn = func(item *model.BatchItem) (*model.ItemResult, error) {
		return nil, errors.New("boom")
	}
	f.proc.onItemErrorFn = func(item *model.BatchItem, itemErr error) bool { return false }

	id, err := f.manager.CreateBatch(ctx, "orders", payloads(3), nil, nil)
	require.NoError(t, err)

	// With continueOnError=true the hook's stop signal is not enough.
	summary, err := f.manager.ProcessBatch(ctx, id, true)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusFailed, summary.Status)
	assert.Equal(t, 3, summary.FailedItems)
	assert.Equal(t, []int{0, 1, 2}, f.proc.processedIdx)

	// All items failed without an abort: a count-based FAILED outcome
	// carries no batch error message.
	batch, _ := f.repo.FindBatchByID(ctx, id)
	assert.Empty(t, batch.ErrorMessage)
}

func TestProcessBatch_TerminalBatchIsNoOp(t *testing.T) {
	f := newFixture(t, "orders")
	ctx := context.Background()

	id, err := f.manager.CreateBatch(ctx, "orders", payloads(2), nil, nil)
	require.NoError(t, err)
	_, err = f.manager.ProcessBatch(ctx, id, true)
	require.NoError(t, err)

	processed := len(f.proc.processedIdx)
	summary, err := f.manager.ProcessBatch(ctx, id, true)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, summary.Status)
	// No item was processed again.
	assert.Equal(t, processed, len(f.proc.processedIdx))
}

// TestProcessBatch_ResumeSkipsTerminalItems verifies safe re-entry: items
// already in a terminal state are not revisited and the terminal status is
// decided by this run's counts only.
func TestProcessBatch_ResumeSkipsTerminalItems(t *testing.T) {
	f := newFixture(t, "orders")
	ctx := context.Background()

	id, err := f.manager.CreateBatch(ctx, "orders", payloads(4), nil, nil)
	require.NoError(t, err)

	// Simulate an interrupted earlier run: items 0 and 1 already terminal,
	// batch still PENDING.
	items, _ := f.repo.FindItemsByBatchID(ctx, id)
	items[0].MarkAsProcessing()
	items[0].MarkAsCompleted(nil)
	require.NoError(t, f.repo.UpdateItemOutcome(ctx, items[0]))
	items[1].MarkAsProcessing()
	items[1].MarkAsFailed(errors.New("old failure"))
	require.NoError(t, f.repo.UpdateItemFailure(ctx, items[1]))

	summary, err := f.manager.ProcessBatch(ctx, id, true)
	require.NoError(t, err)

	// Only items 2 and 3 ran in this pass.
	assert.Equal(t, []int{2, 3}, f.proc.processedIdx)
	assert.Equal(t, model.BatchStatusCompleted, summary.Status)
	assert.Equal(t, 3, summary.CompletedItems)
	assert.Equal(t, 1, summary.FailedItems)
}

func TestProcessBatch_NotFound(t *testing.T) {
	f := newFixture(t, "orders")

	_, err := f.manager.ProcessBatch(context.Background(), "no-such-batch", true)
	require.Error(t, err)
	assert.True(t, exception.IsNotFound(err))
}

func TestProcessBatch_ValidateBatchFailure(t *testing.T) {
	f := newFixture(t, "orders")
	ctx := context.Background()

	f.proc.validateBatchFn = func() error { return errors.New("header mismatch") }

	id, err := f.manager.CreateBatch(ctx, "orders", payloads(2), nil, nil)
	require.NoError(t, err)

	summary, err := f.manager.ProcessBatch(ctx, id, true)
	require.Error(t, err)
	assert.True(t, exception.IsValidation(err))
	assert.Equal(t, model.BatchStatusFailed, summary.Status)

	// No item was touched.
	items, _ := f.repo.FindItemsByBatchID(ctx, id)
	for _, item := range items {
		assert.Equal(t, model.ItemStatusPending, item.Status)
	}
	batch, _ := f.repo.FindBatchByID(ctx, id)
	assert.Contains(t, batch.ErrorMessage, "header mismatch")
}

func TestReprocess_FailedItemsOnly(t *testing.T) {
	f := newFixture(t, "orders")
	ctx := context.Background()

	f.proc.processFn = func(item *model.BatchItem) (*model.ItemResult, error) {
		if item.ItemIndex%2 == 1 {
			return nil, errors.New("boom")
		}
		return nil, nil
	}

	id, err := f.manager.CreateBatch(ctx, "orders", payloads(4), nil, nil)
	require.NoError(t, err)
	_, err = f.manager.ProcessBatch(ctx, id, true)
	require.NoError(t, err)

	// Second pass succeeds for everything.
	f.proc.processFn = nil

	newID, err := f.manager.Reprocess(ctx, id, true, true)
	require.NoError(t, err)
	require.NotEqual(t, id, newID)

	child, err := f.repo.FindBatchByID(ctx, newID)
	require.NoError(t, err)
	assert.Equal(t, id, child.ParentBatchID)
	assert.Equal(t, "orders", child.Kind)
	// retryCount is reserved for future retry policies; lineage is carried
	// by the parent reference alone.
	assert.Zero(t, child.RetryCount)
	assert.Equal(t, model.BatchStatusCompleted, child.Status)

	// Only the two failed items were copied, re-indexed densely from zero,
	// carrying the original source payloads.
	items, err := f.repo.FindItemsByBatchID(ctx, newID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 0, items[0].ItemIndex)
	assert.Equal(t, model.Payload{"index": 1}, items[0].SourceData)
	assert.Equal(t, 1, items[1].ItemIndex)
	assert.Equal(t, model.Payload{"index": 3}, items[1].SourceData)

	// The parent batch is untouched.
	parent, _ := f.repo.FindBatchByID(ctx, id)
	assert.Equal(t, model.BatchStatusCompleted, parent.Status)

	children, err := f.repo.FindBatchesByParentID(ctx, id)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, newID, children[0].ID)
}

func TestReprocess_NothingToDo_ReturnsOriginalID(t *testing.T) {
	f := newFixture(t, "orders")
	ctx := context.Background()

	id, err := f.manager.CreateBatch(ctx, "orders", payloads(2), nil, nil)
	require.NoError(t, err)
	_, err = f.manager.ProcessBatch(ctx, id, true)
	require.NoError(t, err)

	newID, err := f.manager.Reprocess(ctx, id, true, true)
	require.NoError(t, err)
	assert.Equal(t, id, newID)
}

func TestReprocess_AllItems(t *testing.T) {
	f := newFixture(t, "orders")
	ctx := context.Background()

	id, err := f.manager.CreateBatch(ctx, "orders", payloads(3), nil, nil)
	require.NoError(t, err)
	_, err = f.manager.ProcessBatch(ctx, id, true)
	require.NoError(t, err)

	newID, err := f.manager.Reprocess(ctx, id, false, true)
	require.NoError(t, err)
	require.NotEqual(t, id, newID)

	items, err := f.repo.FindItemsByBatchID(ctx, newID)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestReprocess_NotFound(t *testing.T) {
	f := newFixture(t, "orders")

	_, err := f.manager.Reprocess(context.Background(), "no-such-batch", true, true)
	require.Error(t, err)
	assert.True(t, exception.IsNotFound(err))
}

func TestGetSummary_NotFound(t *testing.T) {
	f := newFixture(t, "orders")

	_, err := f.manager.GetSummary(context.Background(), "no-such-batch")
	require.Error(t, err)
	assert.True(t, exception.IsNotFound(err))
}

// --- transaction choreography ---

// recordingTxManager wraps the dummy manager and records the lifecycle calls.
type recordingTxManager struct {
	inner coretx.TransactionManager
	mu    sync.Mutex
	calls []string
}

func (r *recordingTxManager) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recordingTxManager) Begin(ctx context.Context, opts ...*sql.TxOptions) (coretx.Tx, error) {
	r.record("begin")
	return r.inner.Begin(ctx, opts...)
}

func (r *recordingTxManager) Commit(t coretx.Tx) error {
	r.record("commit")
	return r.inner.Commit(t)
}

func (r *recordingTxManager) Rollback(t coretx.Tx) error {
	r.record("rollback")
	return r.inner.Rollback(t)
}

// TestProcessBatch_FailureUsesIndependentTransaction verifies that a failing
// item first rolls back its work transaction and then commits the FAILED
// status in a new one.
func TestProcessBatch_FailureUsesIndependentTransaction(t *testing.T) {
	repo := inmemory.NewInMemoryImportRepository()
	registry := processor.NewRegistry()
	proc := &scriptedProcessor{
		processFn: func(item *model.BatchItem) (*model.ItemResult, error) {
			return nil, errors.New("boom")
		},
	}
	registry.Register("orders", func() processor.ItemProcessor { return proc })

	txm := &recordingTxManager{inner: dummy.NewDummyTxManager()}
	m := NewBatchManager(repo, txm, registry, dummy.NewDummyDBConnection(), nil, nil, nil, nil)
	ctx := context.Background()

	id, err := m.CreateBatch(ctx, "orders", payloads(1), nil, nil)
	require.NoError(t, err)

	txm.mu.Lock()
	txm.calls = nil
	txm.mu.Unlock()

	_, err = m.ProcessBatch(ctx, id, true)
	require.NoError(t, err)

	// Expected choreography: PROCESSING mark (begin/commit), batch hooks
	// (begin/commit), item work (begin/rollback), failure record
	// (begin/commit), OnItemError (begin/commit), completion (begin/commit).
	assert.Equal(t, []string{
		"begin", "commit",
		"begin", "commit",
		"begin", "rollback",
		"begin", "commit",
		"begin", "commit",
		"begin", "commit",
	}, txm.calls)
}
