package inmemory

import (
	"context"
	"fmt"
	"sort"

	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
	"github.com/tigerroll/reimport/pkg/imports/core/domain/repository"
)

// SaveBatch persists a new ImportBatch.
// It returns an error if a batch with the same ID already exists.
func (r *InMemoryImportRepository) SaveBatch(ctx context.Context, batch *model.ImportBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.batches[batch.ID]; exists {
		return fmt.Errorf("ImportBatch with ID %s already exists", batch.ID)
	}
	copied := *batch
	r.batches[batch.ID] = &copied
	return nil
}

// UpdateBatchStatus updates an existing ImportBatch.
// It returns an error if the batch with the given ID is not found.
func (r *InMemoryImportRepository) UpdateBatchStatus(ctx context.Context, batch *model.ImportBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.batches[batch.ID]; !exists {
		return fmt.Errorf("ImportBatch with ID %s not found for update", batch.ID)
	}
	copied := *batch
	r.batches[batch.ID] = &copied
	return nil
}

// FindBatchByID finds an ImportBatch by its ID.
func (r *InMemoryImportRepository) FindBatchByID(ctx context.Context, batchID string) (*model.ImportBatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	batch, ok := r.batches[batchID]
	if !ok {
		return nil, repository.ErrBatchNotFound
	}
	copied := *batch
	return &copied, nil
}

// FindBatchesByParentID finds all batches derived from the given batch,
// ordered by creation time.
func (r *InMemoryImportRepository) FindBatchesByParentID(ctx context.Context, parentBatchID string) ([]*model.ImportBatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.ImportBatch
	for _, batch := range r.batches {
		if batch.ParentBatchID == parentBatchID {
			copied := *batch
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// GetBatchSummary computes the aggregate summary of a batch from the stored state.
func (r *InMemoryImportRepository) GetBatchSummary(ctx context.Context, batchID string) (*model.BatchSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	batch, ok := r.batches[batchID]
	if !ok {
		return nil, repository.ErrBatchNotFound
	}

	summary := &model.BatchSummary{
		ID:          batch.ID,
		Kind:        batch.Kind,
		Status:      batch.Status,
		CreatedAt:   batch.CreatedAt,
		StartedAt:   batch.StartedAt,
		CompletedAt: batch.CompletedAt,
		RetryCount:  batch.RetryCount,
	}
	for _, item := range r.items {
		if item.BatchID != batchID {
			continue
		}
		summary.TotalItems++
		switch item.Status {
		case model.ItemStatusCompleted:
			summary.CompletedItems++
		case model.ItemStatusFailed:
			summary.FailedItems++
		case model.ItemStatusSkipped:
			summary.SkippedItems++
		default:
			summary.PendingItems++
		}
	}
	return summary, nil
}
