// Package sql implements the ImportRepository interface on top of the
// database adapter layer. Write operations join the transaction carried by
// the context when one is active; reads go straight to the connection.
package sql

import (
	"context"
	"fmt"

	"github.com/tigerroll/reimport/pkg/imports/adapter/database"
	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
	repository "github.com/tigerroll/reimport/pkg/imports/core/domain/repository"
	tx "github.com/tigerroll/reimport/pkg/imports/core/tx"
	"github.com/tigerroll/reimport/pkg/imports/support/util/exception"
)

// SQLImportRepository implements the repository.ImportRepository interface.
type SQLImportRepository struct {
	conn database.DBConnection
}

// NewSQLImportRepository creates a new instance of SQLImportRepository bound
// to the given connection.
func NewSQLImportRepository(conn database.DBConnection) repository.ImportRepository {
	return &SQLImportRepository{conn: conn}
}

// getTxExecutor returns the transaction active on the context, or the direct
// connection when no transaction is active.
func (r *SQLImportRepository) getTxExecutor(ctx context.Context) tx.TxExecutor {
	if t, ok := tx.FromContext(ctx); ok {
		return t
	}
	return r.conn
}

// Close releases the underlying database connection.
func (r *SQLImportRepository) Close() error {
	return r.conn.Close()
}

// --- BatchRepository implementation ---

func (r *SQLImportRepository) SaveBatch(ctx context.Context, batch *model.ImportBatch) error {
	const op = "SQLImportRepository.SaveBatch"
	entity := fromDomainBatch(batch)

	if _, err := r.getTxExecutor(ctx).ExecuteUpdate(ctx, entity, "CREATE", entity.TableName(), nil); err != nil {
		return exception.NewProcessing(op, fmt.Sprintf("failed to save ImportBatch (ID: %s)", batch.ID), err)
	}
	return nil
}

func (r *SQLImportRepository) UpdateBatchStatus(ctx context.Context, batch *model.ImportBatch) error {
	const op = "SQLImportRepository.UpdateBatchStatus"
	entity := fromDomainBatch(batch)

	rowsAffected, err := r.getTxExecutor(ctx).ExecuteUpdate(
		ctx,
		entity,
		"UPDATE",
		entity.TableName(),
		map[string]interface{}{"id": batch.ID},
	)
	if err != nil {
		return exception.NewProcessing(op, fmt.Sprintf("failed to update ImportBatch (ID: %s)", batch.ID), err)
	}
	if rowsAffected == 0 {
		return repository.ErrBatchNotFound
	}
	return nil
}

func (r *SQLImportRepository) FindBatchByID(ctx context.Context, batchID string) (*model.ImportBatch, error) {
	const op = "SQLImportRepository.FindBatchByID"
	var entities []BatchEntity

	if err := r.conn.ExecuteQuery(ctx, &entities, map[string]interface{}{"id": batchID}); err != nil {
		return nil, exception.NewProcessing(op, fmt.Sprintf("failed to find ImportBatch (ID: %s)", batchID), err)
	}
	if len(entities) == 0 {
		return nil, repository.ErrBatchNotFound
	}
	return toDomainBatch(&entities[0]), nil
}

func (r *SQLImportRepository) FindBatchesByParentID(ctx context.Context, parentBatchID string) ([]*model.ImportBatch, error) {
	const op = "SQLImportRepository.FindBatchesByParentID"
	var entities []BatchEntity

	err := r.conn.ExecuteQueryOrdered(ctx, &entities, map[string]interface{}{"parent_batch_id": parentBatchID}, "created_at ASC", 0)
	if err != nil {
		return nil, exception.NewProcessing(op, fmt.Sprintf("failed to find child batches of '%s'", parentBatchID), err)
	}

	batches := make([]*model.ImportBatch, 0, len(entities))
	for i := range entities {
		batches = append(batches, toDomainBatch(&entities[i]))
	}
	return batches, nil
}

// statusCount receives one row of the per-status aggregate query.
type statusCount struct {
	Status string
	Count  int
}

func (r *SQLImportRepository) GetBatchSummary(ctx context.Context, batchID string) (*model.BatchSummary, error) {
	const op = "SQLImportRepository.GetBatchSummary"

	batch, err := r.FindBatchByID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	var counts []statusCount
	err = r.conn.QueryRaw(ctx, &counts,
		"SELECT status, COUNT(*) AS count FROM import_batch_items WHERE batch_id = ? GROUP BY status", batchID)
	if err != nil {
		return nil, exception.NewProcessing(op, fmt.Sprintf("failed to aggregate items of batch '%s'", batchID), err)
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
	for _, c := range counts {
		summary.TotalItems += c.Count
		switch model.ItemStatus(c.Status) {
		case model.ItemStatusCompleted:
			summary.CompletedItems += c.Count
		case model.ItemStatusFailed:
			summary.FailedItems += c.Count
		case model.ItemStatusSkipped:
			summary.SkippedItems += c.Count
		default:
			summary.PendingItems += c.Count
		}
	}
	return summary, nil
}

// --- ItemRepository implementation ---

func (r *SQLImportRepository) SaveItem(ctx context.Context, item *model.BatchItem) error {
	const op = "SQLImportRepository.SaveItem"
	entity := fromDomainItem(item)

	if _, err := r.getTxExecutor(ctx).ExecuteUpdate(ctx, entity, "CREATE", entity.TableName(), nil); err != nil {
		return exception.NewProcessing(op, fmt.Sprintf("failed to save BatchItem (ID: %s)", item.ID), err)
	}
	return nil
}

// updateItem persists the current entity state of an item.
func (r *SQLImportRepository) updateItem(ctx context.Context, op string, item *model.BatchItem) error {
	entity := fromDomainItem(item)

	rowsAffected, err := r.getTxExecutor(ctx).ExecuteUpdate(
		ctx,
		entity,
		"UPDATE",
		entity.TableName(),
		map[string]interface{}{"id": item.ID},
	)
	if err != nil {
		return exception.NewProcessing(op, fmt.Sprintf("failed to update BatchItem (ID: %s)", item.ID), err)
	}
	if rowsAffected == 0 {
		return repository.ErrItemNotFound
	}
	return nil
}

func (r *SQLImportRepository) UpdateItemStatus(ctx context.Context, item *model.BatchItem) error {
	return r.updateItem(ctx, "SQLImportRepository.UpdateItemStatus", item)
}

func (r *SQLImportRepository) UpdateItemOutcome(ctx context.Context, item *model.BatchItem) error {
	return r.updateItem(ctx, "SQLImportRepository.UpdateItemOutcome", item)
}

func (r *SQLImportRepository) UpdateItemFailure(ctx context.Context, item *model.BatchItem) error {
	return r.updateItem(ctx, "SQLImportRepository.UpdateItemFailure", item)
}

func (r *SQLImportRepository) FindItemByID(ctx context.Context, itemID string) (*model.BatchItem, error) {
	const op = "SQLImportRepository.FindItemByID"
	var entities []ItemEntity

	if err := r.conn.ExecuteQuery(ctx, &entities, map[string]interface{}{"id": itemID}); err != nil {
		return nil, exception.NewProcessing(op, fmt.Sprintf("failed to find BatchItem (ID: %s)", itemID), err)
	}
	if len(entities) == 0 {
		return nil, repository.ErrItemNotFound
	}
	return toDomainItem(&entities[0]), nil
}

func (r *SQLImportRepository) FindItemsByBatchID(ctx context.Context, batchID string) ([]*model.BatchItem, error) {
	return r.findItems(ctx, map[string]interface{}{"batch_id": batchID})
}

func (r *SQLImportRepository) FindItemsByBatchIDAndStatus(ctx context.Context, batchID string, status model.ItemStatus) ([]*model.BatchItem, error) {
	return r.findItems(ctx, map[string]interface{}{"batch_id": batchID, "status": status.String()})
}

func (r *SQLImportRepository) findItems(ctx context.Context, query map[string]interface{}) ([]*model.BatchItem, error) {
	const op = "SQLImportRepository.findItems"
	var entities []ItemEntity

	if err := r.conn.ExecuteQueryOrdered(ctx, &entities, query, "item_index ASC", 0); err != nil {
		return nil, exception.NewProcessing(op, "failed to find batch items", err)
	}

	items := make([]*model.BatchItem, 0, len(entities))
	for i := range entities {
		items = append(items, toDomainItem(&entities[i]))
	}
	return items, nil
}

// --- LogRepository implementation ---

func (r *SQLImportRepository) AppendLog(ctx context.Context, entry *model.ImportLog) error {
	const op = "SQLImportRepository.AppendLog"
	entity := fromDomainLog(entry)

	if _, err := r.getTxExecutor(ctx).ExecuteUpdate(ctx, entity, "CREATE", entity.TableName(), nil); err != nil {
		return exception.NewProcessing(op, fmt.Sprintf("failed to append ImportLog for batch '%s'", entry.BatchID), err)
	}
	return nil
}

func (r *SQLImportRepository) FindLogsByBatchID(ctx context.Context, batchID string) ([]*model.ImportLog, error) {
	const op = "SQLImportRepository.FindLogsByBatchID"
	var entities []LogEntity

	err := r.conn.ExecuteQueryOrdered(ctx, &entities, map[string]interface{}{"batch_id": batchID}, "created_at ASC", 0)
	if err != nil {
		return nil, exception.NewProcessing(op, fmt.Sprintf("failed to find logs of batch '%s'", batchID), err)
	}

	logs := make([]*model.ImportLog, 0, len(entities))
	for i := range entities {
		logs = append(logs, toDomainLog(&entities[i]))
	}
	return logs, nil
}
