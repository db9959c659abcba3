package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/reimport/pkg/imports/core/execution"
	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
)

type noopProcessor struct {
	BaseProcessor
}

func (noopProcessor) ProcessItem(ctx context.Context, ec *execution.Context, item *model.BatchItem) (*model.ItemResult, error) {
	return nil, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Has("customer_import"))

	// Each Get invokes the factory for a fresh instance.
	var made int
	r.Register("customer_import", func() ItemProcessor {
		made++
		return &noopProcessor{}
	})
	assert.True(t, r.Has("customer_import"))

	p, ok := r.Get("customer_import")
	require.True(t, ok)
	assert.NotNil(t, p)

	_, ok = r.Get("customer_import")
	require.True(t, ok)
	assert.Equal(t, 2, made)

	_, ok = r.Get("unknown")
	assert.False(t, ok)
}

func TestRegistry_Kinds_Sorted(t *testing.T) {
	r := NewRegistry()
	r.Register("orders", func() ItemProcessor { return &noopProcessor{} })
	r.Register("customers", func() ItemProcessor { return &noopProcessor{} })
	r.Register("inventory", func() ItemProcessor { return &noopProcessor{} })

	assert.Equal(t, []string{"customers", "inventory", "orders"}, r.Kinds())
}

func TestBaseProcessor_Defaults(t *testing.T) {
	var base BaseProcessor
	ctx := context.Background()
	item := model.NewBatchItem("batch-1", 0, nil)

	assert.NoError(t, base.ValidateBatch(ctx, nil))
	assert.True(t, base.ValidateItem(ctx, nil, item))
	assert.False(t, base.ShouldSkip(ctx, nil, item))
	assert.NoError(t, base.OnBatchStart(ctx, nil))
	assert.NoError(t, base.OnBatchComplete(ctx, nil, true))
	assert.True(t, base.OnItemError(ctx, nil, item, assert.AnError))
}
