package inmemory

import (
	"context"
	"fmt"
	"sort"

	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
	"github.com/tigerroll/reimport/pkg/imports/core/domain/repository"
)

// SaveItem persists a new BatchItem.
// It returns an error if an item with the same ID already exists.
func (r *InMemoryImportRepository) SaveItem(ctx context.Context, item *model.BatchItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("BatchItem with ID %s already exists", item.ID)
	}
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

// updateItem replaces the stored item.
func (r *InMemoryImportRepository) updateItem(item *model.BatchItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; !exists {
		return fmt.Errorf("BatchItem with ID %s not found for update", item.ID)
	}
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

// UpdateItemStatus updates the status of an existing BatchItem.
func (r *InMemoryImportRepository) UpdateItemStatus(ctx context.Context, item *model.BatchItem) error {
	return r.updateItem(item)
}

// UpdateItemOutcome records a successful outcome of an existing BatchItem.
func (r *InMemoryImportRepository) UpdateItemOutcome(ctx context.Context, item *model.BatchItem) error {
	return r.updateItem(item)
}

// UpdateItemFailure records a failed or skipped outcome of an existing BatchItem.
func (r *InMemoryImportRepository) UpdateItemFailure(ctx context.Context, item *model.BatchItem) error {
	return r.updateItem(item)
}

// FindItemByID finds a BatchItem by its ID.
func (r *InMemoryImportRepository) FindItemByID(ctx context.Context, itemID string) (*model.BatchItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemID]
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	copied := *item
	return &copied, nil
}

// FindItemsByBatchID finds all items of a batch, ordered by item index.
func (r *InMemoryImportRepository) FindItemsByBatchID(ctx context.Context, batchID string) ([]*model.BatchItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.BatchItem
	for _, item := range r.items {
		if item.BatchID == batchID {
			copied := *item
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ItemIndex < result[j].ItemIndex
	})
	return result, nil
}

// FindItemsByBatchIDAndStatus finds the items of a batch in the given status,
// ordered by item index.
func (r *InMemoryImportRepository) FindItemsByBatchIDAndStatus(ctx context.Context, batchID string, status model.ItemStatus) ([]*model.BatchItem, error) {
	items, err := r.FindItemsByBatchID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	result := items[:0]
	for _, item := range items {
		if item.Status == status {
			result = append(result, item)
		}
	}
	return result, nil
}
