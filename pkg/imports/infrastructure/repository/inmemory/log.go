package inmemory

import (
	"context"

	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
)

// AppendLog persists a new ImportLog entry in insertion order.
func (r *InMemoryImportRepository) AppendLog(ctx context.Context, entry *model.ImportLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *entry
	r.logs = append(r.logs, &copied)
	return nil
}

// FindLogsByBatchID finds all log entries of a batch in insertion order.
func (r *InMemoryImportRepository) FindLogsByBatchID(ctx context.Context, batchID string) ([]*model.ImportLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.ImportLog
	for _, entry := range r.logs {
		if entry.BatchID == batchID {
			copied := *entry
			result = append(result, &copied)
		}
	}
	return result, nil
}
