package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportBatch_Lifecycle(t *testing.T) {
	b := NewImportBatch("customer_import", Payload{"file": "a.csv"}, nil)
	assert.Equal(t, BatchStatusPending, b.Status)
	assert.NotEmpty(t, b.ID)
	assert.False(t, b.IsComplete())
	assert.False(t, b.IsReprocess())

	b.MarkAsProcessing()
	assert.Equal(t, BatchStatusProcessing, b.Status)
	require.NotNil(t, b.StartedAt)

	b.MarkAsCompleted()
	assert.Equal(t, BatchStatusCompleted, b.Status)
	require.NotNil(t, b.CompletedAt)
	assert.True(t, b.IsComplete())
	assert.True(t, b.IsSuccessful())
}

func TestImportBatch_TransitionTo_RejectsInvalid(t *testing.T) {
	b := NewImportBatch("customer_import", nil, nil)

	// PENDING -> COMPLETED is not allowed.
	err := b.TransitionTo(BatchStatusCompleted)
	assert.Error(t, err)
	assert.Equal(t, BatchStatusPending, b.Status)

	// Terminal states are never left.
	require.NoError(t, b.TransitionTo(BatchStatusProcessing))
	require.NoError(t, b.TransitionTo(BatchStatusFailed))
	assert.Error(t, b.TransitionTo(BatchStatusProcessing))
	assert.Error(t, b.TransitionTo(BatchStatusCompleted))
}

func TestImportBatch_MarkAsFailed_RecordsMessage(t *testing.T) {
	b := NewImportBatch("customer_import", nil, nil)
	b.MarkAsProcessing()
	b.MarkAsFailed(errors.New("processor hook rejected the batch"))

	assert.Equal(t, BatchStatusFailed, b.Status)
	assert.Equal(t, "processor hook rejected the batch", b.ErrorMessage)
	require.NotNil(t, b.CompletedAt)
}

func TestImportBatch_MarkAsFailed_NilErrorLeavesMessageEmpty(t *testing.T) {
	b := NewImportBatch("customer_import", nil, nil)
	b.MarkAsProcessing()
	b.MarkAsFailed(nil)

	assert.Equal(t, BatchStatusFailed, b.Status)
	assert.Empty(t, b.ErrorMessage)
}

func TestNewReprocessBatch(t *testing.T) {
	parent := NewImportBatch("customer_import", Payload{"file": "a.csv"}, Payload{"who": "ops"})
	child := NewReprocessBatch(parent)

	assert.NotEqual(t, parent.ID, child.ID)
	assert.Equal(t, parent.ID, child.ParentBatchID)
	assert.Equal(t, parent.Kind, child.Kind)
	assert.Equal(t, parent.SourceInfo, child.SourceInfo)
	assert.Equal(t, BatchStatusPending, child.Status)
	assert.True(t, child.IsReprocess())

	// Copied payloads are independent of the parent's.
	child.SourceInfo["file"] = "b.csv"
	assert.Equal(t, "a.csv", parent.SourceInfo["file"])
}

func TestBatchItem_Lifecycle(t *testing.T) {
	item := NewBatchItem("batch-1", 0, Payload{"email": "a@example.com"})
	assert.Equal(t, ItemStatusPending, item.Status)

	item.MarkAsProcessing()
	assert.Equal(t, ItemStatusProcessing, item.Status)

	item.MarkAsCompleted(&ItemResult{
		ProcessedData: Payload{"email": "a@example.com"},
		TargetTable:   "customers",
		TargetID:      "42",
	})
	assert.Equal(t, ItemStatusCompleted, item.Status)
	assert.Equal(t, "customers", item.TargetTable)
	assert.Equal(t, "42", item.TargetID)
	require.NotNil(t, item.ProcessedAt)
	assert.True(t, item.IsSuccessful())
}

func TestBatchItem_Transitions(t *testing.T) {
	item := NewBatchItem("batch-1", 0, nil)

	// PENDING -> SKIPPED is allowed without entering PROCESSING.
	require.NoError(t, item.TransitionTo(ItemStatusSkipped))
	assert.True(t, item.Status.IsFinished())

	// Terminal states reject further transitions.
	assert.Error(t, item.TransitionTo(ItemStatusProcessing))

	item = NewBatchItem("batch-1", 1, nil)
	// PENDING -> COMPLETED and PENDING -> FAILED are not allowed.
	assert.Error(t, item.TransitionTo(ItemStatusCompleted))
	assert.Error(t, item.TransitionTo(ItemStatusFailed))
}

func TestBatchItem_MarkAsFailed(t *testing.T) {
	item := NewBatchItem("batch-1", 0, nil)
	item.MarkAsProcessing()
	item.MarkAsFailed(errors.New("invalid email format"))

	assert.Equal(t, ItemStatusFailed, item.Status)
	assert.Equal(t, "invalid email format", item.ErrorMessage)
	require.NotNil(t, item.ProcessedAt)
}

func TestPayload_ValueAndScan(t *testing.T) {
	p := Payload{"name": "Alice", "age": float64(30)}

	v, err := p.Value()
	require.NoError(t, err)

	var got Payload
	require.NoError(t, got.Scan(v))
	assert.Equal(t, p, got)

	// nil payload round-trips to an empty document.
	var empty Payload
	v, err = empty.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)

	var scanned Payload
	require.NoError(t, scanned.Scan(nil))
	assert.NotNil(t, scanned)
	assert.Empty(t, scanned)
}

func TestBatchSummary_Derived(t *testing.T) {
	started := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	completed := started.Add(4 * time.Second)

	s := &BatchSummary{
		TotalItems:     8,
		CompletedItems: 6,
		FailedItems:    1,
		SkippedItems:   1,
		StartedAt:      &started,
		CompletedAt:    &completed,
	}

	d, ok := s.DurationSeconds()
	require.True(t, ok)
	assert.InDelta(t, 4.0, d, 0.001)

	assert.InDelta(t, 75.0, s.SuccessRate(), 0.001)

	ips, ok := s.ItemsPerSecond()
	require.True(t, ok)
	assert.InDelta(t, 2.0, ips, 0.001)
}

func TestBatchSummary_EmptyAndUnfinished(t *testing.T) {
	s := &BatchSummary{}
	assert.Zero(t, s.SuccessRate())

	_, ok := s.DurationSeconds()
	assert.False(t, ok)

	_, ok = s.ItemsPerSecond()
	assert.False(t, ok)
}
