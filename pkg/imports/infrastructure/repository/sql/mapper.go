package sql

import (
	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
)

// --- Mapper functions ---

func fromDomainBatch(b *model.ImportBatch) *BatchEntity {
	if b == nil {
		return nil
	}
	return &BatchEntity{
		ID:            b.ID,
		Kind:          b.Kind,
		Status:        b.Status,
		SourceInfo:    b.SourceInfo,
		Metadata:      b.Metadata,
		ErrorMessage:  b.ErrorMessage,
		RetryCount:    b.RetryCount,
		ParentBatchID: b.ParentBatchID,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
		StartedAt:     b.StartedAt,
		CompletedAt:   b.CompletedAt,
	}
}

func toDomainBatch(entity *BatchEntity) *model.ImportBatch {
	if entity == nil {
		return nil
	}
	return &model.ImportBatch{
		ID:            entity.ID,
		Kind:          entity.Kind,
		Status:        entity.Status,
		SourceInfo:    entity.SourceInfo,
		Metadata:      entity.Metadata,
		ErrorMessage:  entity.ErrorMessage,
		RetryCount:    entity.RetryCount,
		ParentBatchID: entity.ParentBatchID,
		CreatedAt:     entity.CreatedAt,
		UpdatedAt:     entity.UpdatedAt,
		StartedAt:     entity.StartedAt,
		CompletedAt:   entity.CompletedAt,
	}
}

func fromDomainItem(i *model.BatchItem) *ItemEntity {
	if i == nil {
		return nil
	}
	return &ItemEntity{
		ID:            i.ID,
		BatchID:       i.BatchID,
		ItemIndex:     i.ItemIndex,
		Status:        i.Status,
		SourceData:    i.SourceData,
		ProcessedData: i.ProcessedData,
		TargetTable:   i.TargetTable,
		TargetID:      i.TargetID,
		ErrorMessage:  i.ErrorMessage,
		ProcessedAt:   i.ProcessedAt,
		CreatedAt:     i.CreatedAt,
	}
}

func toDomainItem(entity *ItemEntity) *model.BatchItem {
	if entity == nil {
		return nil
	}
	return &model.BatchItem{
		ID:            entity.ID,
		BatchID:       entity.BatchID,
		ItemIndex:     entity.ItemIndex,
		Status:        entity.Status,
		SourceData:    entity.SourceData,
		ProcessedData: entity.ProcessedData,
		TargetTable:   entity.TargetTable,
		TargetID:      entity.TargetID,
		ErrorMessage:  entity.ErrorMessage,
		ProcessedAt:   entity.ProcessedAt,
		CreatedAt:     entity.CreatedAt,
	}
}

func fromDomainLog(l *model.ImportLog) *LogEntity {
	if l == nil {
		return nil
	}
	return &LogEntity{
		ID:        l.ID,
		BatchID:   l.BatchID,
		ItemID:    l.ItemID,
		Level:     l.Level,
		Message:   l.Message,
		Details:   l.Details,
		CreatedAt: l.CreatedAt,
	}
}

func toDomainLog(entity *LogEntity) *model.ImportLog {
	if entity == nil {
		return nil
	}
	return &model.ImportLog{
		ID:        entity.ID,
		BatchID:   entity.BatchID,
		ItemID:    entity.ItemID,
		Level:     entity.Level,
		Message:   entity.Message,
		Details:   entity.Details,
		CreatedAt: entity.CreatedAt,
	}
}
