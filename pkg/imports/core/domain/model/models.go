// Package model defines the domain model of the Reimport framework: import
// batches, their items, durable log entries, and the derived batch summary.
// Status transitions for batches and items are owned exclusively by the
// batch manager; processors only read state and return outcome values.
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tigerroll/reimport/pkg/imports/support/util/exception"
	"github.com/tigerroll/reimport/pkg/imports/support/util/logger"

	"github.com/google/uuid"
)

// BatchStatus represents the state of an import batch.
type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "PENDING"
	BatchStatusProcessing BatchStatus = "PROCESSING"
	BatchStatusCompleted  BatchStatus = "COMPLETED"
	BatchStatusFailed     BatchStatus = "FAILED"
)

// String returns the string representation of the BatchStatus.
func (s BatchStatus) String() string {
	return string(s)
}

// IsFinished checks if the BatchStatus represents a terminal state.
func (s BatchStatus) IsFinished() bool {
	return s == BatchStatusCompleted || s == BatchStatusFailed
}

// ItemStatus represents the state of a single batch item.
type ItemStatus string

const (
	ItemStatusPending    ItemStatus = "PENDING"
	ItemStatusProcessing ItemStatus = "PROCESSING"
	ItemStatusCompleted  ItemStatus = "COMPLETED"
	ItemStatusFailed     ItemStatus = "FAILED"
	ItemStatusSkipped    ItemStatus = "SKIPPED"
)

// String returns the string representation of the ItemStatus.
func (s ItemStatus) String() string {
	return string(s)
}

// IsFinished checks if the ItemStatus represents a terminal state.
// Items in a terminal state are never revisited by the same batch run.
func (s ItemStatus) IsFinished() bool {
	return s == ItemStatusCompleted || s == ItemStatusFailed || s == ItemStatusSkipped
}

// Payload is an opaque key-value document carried by batches and items.
// The framework never interprets its contents.
type Payload map[string]interface{}

// Value implements driver.Valuer, converting the Payload to a JSON string.
func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner, converting a JSON document to a Payload.
func (p *Payload) Scan(value interface{}) error {
	if value == nil {
		*p = make(Payload)
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported type for Payload: %T", value)
	}
	if len(b) == 0 {
		*p = make(Payload)
		return nil
	}
	return json.Unmarshal(b, p)
}

// Copy returns a shallow copy of the Payload.
func (p Payload) Copy() Payload {
	if p == nil {
		return nil
	}
	c := make(Payload, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// NewID generates a new unique identifier.
func NewID() string {
	return uuid.New().String()
}

// ImportBatch is the primary unit of work in the framework. Each batch
// contains an ordered sequence of items processed under a single kind, and
// can later be reprocessed into a child batch that preserves the original
// source payloads.
type ImportBatch struct {
	ID           string
	Kind         string
	Status       BatchStatus
	SourceInfo   Payload
	Metadata     Payload
	ErrorMessage string
	RetryCount   int
	// ParentBatchID points at the batch this one was derived from via
	// reprocessing. Set once at creation, never mutated; lineage forms a
	// forest, never a cycle.
	ParentBatchID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
}

// NewImportBatch creates a new PENDING ImportBatch.
func NewImportBatch(kind string, sourceInfo, metadata Payload) *ImportBatch {
	now := time.Now()
	return &ImportBatch{
		ID:         NewID(),
		Kind:       kind,
		Status:     BatchStatusPending,
		SourceInfo: sourceInfo,
		Metadata:   metadata,
		RetryCount: 0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewReprocessBatch creates a new PENDING batch derived from parent. The
// kind, source info and metadata are carried over and the lineage
// back-reference is recorded.
func NewReprocessBatch(parent *ImportBatch) *ImportBatch {
	b := NewImportBatch(parent.Kind, parent.SourceInfo.Copy(), parent.Metadata.Copy())
	b.ParentBatchID = parent.ID
	return b
}

// IsComplete checks if the batch has finished processing.
func (b *ImportBatch) IsComplete() bool {
	return b.Status.IsFinished()
}

// IsSuccessful checks if the batch completed successfully.
func (b *ImportBatch) IsSuccessful() bool {
	return b.Status == BatchStatusCompleted
}

// IsReprocess checks if this batch was derived from another via reprocessing.
func (b *ImportBatch) IsReprocess() bool {
	return b.ParentBatchID != ""
}

// isValidBatchTransition checks if the state transition for ImportBatch is valid.
// Batch status is monotonic: no transition leaves a terminal state.
func isValidBatchTransition(current, next BatchStatus) bool {
	switch current {
	case BatchStatusPending:
		return next == BatchStatusProcessing || next == BatchStatusFailed
	case BatchStatusProcessing:
		return next == BatchStatusCompleted || next == BatchStatusFailed
	default:
		return false
	}
}

// TransitionTo safely transitions the state of the batch. Fields other than
// Status and UpdatedAt must be set separately by the caller.
func (b *ImportBatch) TransitionTo(next BatchStatus) error {
	if !isValidBatchTransition(b.Status, next) {
		return fmt.Errorf("ImportBatch (ID: %s): invalid state transition: %s -> %s", b.ID, b.Status, next)
	}
	b.Status = next
	b.UpdatedAt = time.Now()
	return nil
}

// MarkAsProcessing updates the batch status to PROCESSING and stamps StartedAt.
func (b *ImportBatch) MarkAsProcessing() {
	if err := b.TransitionTo(BatchStatusProcessing); err != nil {
		logger.Warnf("Could not update ImportBatch (ID: %s) status to PROCESSING: %v", b.ID, err)
		b.Status = BatchStatusProcessing
	}
	now := time.Now()
	b.StartedAt = &now
	b.UpdatedAt = now
}

// MarkAsCompleted updates the batch status to COMPLETED and stamps CompletedAt.
func (b *ImportBatch) MarkAsCompleted() {
	if err := b.TransitionTo(BatchStatusCompleted); err != nil {
		logger.Warnf("Could not update ImportBatch (ID: %s) status to COMPLETED: %v", b.ID, err)
		b.Status = BatchStatusCompleted
	}
	now := time.Now()
	b.CompletedAt = &now
	b.UpdatedAt = now
}

// MarkAsFailed updates the batch status to FAILED and stamps CompletedAt.
// err carries the orchestration-level failure, if any; FAILED outcomes that
// result purely from item-level failures record no batch error message.
func (b *ImportBatch) MarkAsFailed(err error) {
	if terr := b.TransitionTo(BatchStatusFailed); terr != nil {
		logger.Warnf("Could not update ImportBatch (ID: %s) status to FAILED: %v", b.ID, terr)
		b.Status = BatchStatusFailed
	}
	now := time.Now()
	b.CompletedAt = &now
	b.UpdatedAt = now
	if err != nil {
		b.ErrorMessage = exception.ExtractMessage(err)
	}
}

// BatchItem is one record within an import batch. SourceData holds the
// original, unmodified input payload and is immutable after creation, so a
// later reprocessing pass never needs to return to the original data source.
type BatchItem struct {
	ID        string
	BatchID   string
	ItemIndex int
	Status    ItemStatus
	// SourceData is the original input payload. Never mutated.
	SourceData    Payload
	ProcessedData Payload
	TargetTable   string
	TargetID      string
	ErrorMessage  string
	ProcessedAt   *time.Time
	CreatedAt     time.Time
}

// NewBatchItem creates a new PENDING item for the given batch and index.
func NewBatchItem(batchID string, index int, sourceData Payload) *BatchItem {
	return &BatchItem{
		ID:         NewID(),
		BatchID:    batchID,
		ItemIndex:  index,
		Status:     ItemStatusPending,
		SourceData: sourceData,
		CreatedAt:  time.Now(),
	}
}

// IsComplete checks if the item has finished processing.
func (i *BatchItem) IsComplete() bool {
	return i.Status.IsFinished()
}

// IsSuccessful checks if the item completed successfully.
func (i *BatchItem) IsSuccessful() bool {
	return i.Status == ItemStatusCompleted
}

// isValidItemTransition checks if the state transition for BatchItem is valid.
func isValidItemTransition(current, next ItemStatus) bool {
	switch current {
	case ItemStatusPending:
		return next == ItemStatusProcessing || next == ItemStatusSkipped
	case ItemStatusProcessing:
		return next == ItemStatusCompleted || next == ItemStatusFailed
	default:
		return false
	}
}

// TransitionTo safely transitions the state of the item.
func (i *BatchItem) TransitionTo(next ItemStatus) error {
	if !isValidItemTransition(i.Status, next) {
		return fmt.Errorf("BatchItem (ID: %s, index: %d): invalid state transition: %s -> %s", i.ID, i.ItemIndex, i.Status, next)
	}
	i.Status = next
	return nil
}

// MarkAsProcessing updates the item status to PROCESSING.
func (i *BatchItem) MarkAsProcessing() {
	if err := i.TransitionTo(ItemStatusProcessing); err != nil {
		logger.Warnf("Could not update BatchItem (ID: %s) status to PROCESSING: %v", i.ID, err)
		i.Status = ItemStatusProcessing
	}
}

// MarkAsCompleted updates the item status to COMPLETED and records the
// processing outcome.
func (i *BatchItem) MarkAsCompleted(result *ItemResult) {
	if err := i.TransitionTo(ItemStatusCompleted); err != nil {
		logger.Warnf("Could not update BatchItem (ID: %s) status to COMPLETED: %v", i.ID, err)
		i.Status = ItemStatusCompleted
	}
	if result != nil {
		i.ProcessedData = result.ProcessedData
		i.TargetTable = result.TargetTable
		i.TargetID = result.TargetID
	}
	now := time.Now()
	i.ProcessedAt = &now
}

// MarkAsFailed updates the item status to FAILED and records the failure.
func (i *BatchItem) MarkAsFailed(err error) {
	if terr := i.TransitionTo(ItemStatusFailed); terr != nil {
		logger.Warnf("Could not update BatchItem (ID: %s) status to FAILED: %v", i.ID, terr)
		i.Status = ItemStatusFailed
	}
	if err != nil {
		i.ErrorMessage = exception.ExtractMessage(err)
	}
	now := time.Now()
	i.ProcessedAt = &now
}

// MarkAsSkipped updates the item status to SKIPPED. Skipped items count
// toward neither successes nor failures.
func (i *BatchItem) MarkAsSkipped() {
	if err := i.TransitionTo(ItemStatusSkipped); err != nil {
		logger.Warnf("Could not update BatchItem (ID: %s) status to SKIPPED: %v", i.ID, err)
		i.Status = ItemStatusSkipped
	}
	now := time.Now()
	i.ProcessedAt = &now
}

// ItemResult is the outcome metadata a processor returns for a successfully
// processed item.
type ItemResult struct {
	// ProcessedData is the transformed representation of the item, if any.
	ProcessedData Payload
	// TargetTable names the table the item was written to, if any.
	TargetTable string
	// TargetID is the identifier of the created or updated record, if any.
	TargetID string
}

// ImportLog is a durable log entry attached to a batch and, optionally, to
// one of its items. Entries are append-only and ordered by insertion.
type ImportLog struct {
	ID        string
	BatchID   string
	ItemID    string
	Level     string
	Message   string
	Details   Payload
	CreatedAt time.Time
}

// NewImportLog creates a new log entry. itemID may be empty for batch-scoped
// entries.
func NewImportLog(batchID, itemID, level, message string, details Payload) *ImportLog {
	return &ImportLog{
		ID:        NewID(),
		BatchID:   batchID,
		ItemID:    itemID,
		Level:     level,
		Message:   message,
		Details:   details,
		CreatedAt: time.Now(),
	}
}

// BatchSummary is the derived, read-only aggregate for one batch. It is
// always recomputed from committed state, never assembled from in-memory
// counters.
type BatchSummary struct {
	ID             string
	Kind           string
	Status         BatchStatus
	CreatedAt      time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
	RetryCount     int
	TotalItems     int
	CompletedItems int
	FailedItems    int
	SkippedItems   int
	// PendingItems counts items not yet in a terminal state.
	PendingItems int
}

// DurationSeconds returns the wall-clock duration of the run. The second
// return value is false until both StartedAt and CompletedAt are set.
func (s *BatchSummary) DurationSeconds() (float64, bool) {
	if s.StartedAt == nil || s.CompletedAt == nil {
		return 0, false
	}
	return s.CompletedAt.Sub(*s.StartedAt).Seconds(), true
}

// SuccessRate returns the percentage of items that completed successfully.
// A batch with no items has a success rate of 0.
func (s *BatchSummary) SuccessRate() float64 {
	if s.TotalItems == 0 {
		return 0
	}
	return float64(s.CompletedItems) / float64(s.TotalItems) * 100
}

// ItemsPerSecond returns the processing throughput. The second return value
// is false when the duration is unknown or not positive.
func (s *BatchSummary) ItemsPerSecond() (float64, bool) {
	d, ok := s.DurationSeconds()
	if !ok || d <= 0 {
		return 0, false
	}
	return float64(s.TotalItems) / d, true
}
