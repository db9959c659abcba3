package execution_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"

	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
	"github.com/tigerroll/reimport/pkg/imports/core/execution"
	coretx "github.com/tigerroll/reimport/pkg/imports/core/tx"
	"github.com/tigerroll/reimport/pkg/imports/infrastructure/repository/inmemory"
	mocktx "github.com/tigerroll/reimport/pkg/imports/test"
)

func newTestContext(t *testing.T) (*execution.Context, *inmemory.InMemoryImportRepository, *model.ImportBatch) {
	t.Helper()
	repo := inmemory.NewInMemoryImportRepository()
	batch := model.NewImportBatch("customer_import", nil, nil)
	fallback := new(mocktx.MockTx)
	return execution.NewContext(batch, repo, fallback), repo, batch
}

func TestContext_Scratchpad(t *testing.T) {
	ec, _, _ := newTestContext(t)

	_, ok := ec.Get("cursor")
	assert.False(t, ok)

	ec.Put("cursor", 42)
	v, ok := ec.Get("cursor")
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestContext_DurableLogCarriesCurrentItem(t *testing.T) {
	ec, repo, batch := newTestContext(t)
	ctx := context.Background()

	ec.Info(ctx, "batch started", nil)

	item := model.NewBatchItem(batch.ID, 0, nil)
	ec.BindItem(item)
	ec.Error(ctx, "item exploded", model.Payload{"reason": "test"})
	ec.BindItem(nil)

	logs, err := repo.FindLogsByBatchID(ctx, batch.ID)
	assert.NoError(t, err)
	assert.Len(t, logs, 2)

	assert.Equal(t, execution.LogLevelInfo, logs[0].Level)
	assert.Empty(t, logs[0].ItemID)

	assert.Equal(t, execution.LogLevelError, logs[1].Level)
	assert.Equal(t, item.ID, logs[1].ItemID)
	assert.Equal(t, "item exploded", logs[1].Message)
}

func TestContext_ExecJoinsAmbientTransaction(t *testing.T) {
	repo := inmemory.NewInMemoryImportRepository()
	batch := model.NewImportBatch("customer_import", nil, nil)

	fallback := new(mocktx.MockTx)
	fallback.On("ExecuteRaw", testify_mock.Anything, "DELETE FROM staging", testify_mock.Anything).Return(int64(3), nil)
	ec := execution.NewContext(batch, repo, fallback)

	// Without a transaction on the context, the fallback executor is used.
	n, err := ec.Exec(context.Background(), "DELETE FROM staging")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	fallback.AssertExpectations(t)

	// With a transaction active, the operation joins it instead.
	active := new(mocktx.MockTx)
	active.On("ExecuteRaw", testify_mock.Anything, "DELETE FROM staging", testify_mock.Anything).Return(int64(1), nil)
	txCtx := coretx.WithTx(context.Background(), active)

	n, err = ec.Exec(txCtx, "DELETE FROM staging")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)
	active.AssertExpectations(t)
	fallback.AssertNumberOfCalls(t, "ExecuteRaw", 1)
}

func TestContext_ReprocessAccessors(t *testing.T) {
	repo := inmemory.NewInMemoryImportRepository()
	parent := model.NewImportBatch("customer_import", nil, nil)
	child := model.NewReprocessBatch(parent)

	ec := execution.NewContext(child, repo, new(mocktx.MockTx))
	assert.True(t, ec.IsReprocess())
	assert.Equal(t, parent.ID, ec.OriginalBatchID())

	ecParent := execution.NewContext(parent, repo, new(mocktx.MockTx))
	assert.False(t, ecParent.IsReprocess())
	assert.Empty(t, ecParent.OriginalBatchID())
}
