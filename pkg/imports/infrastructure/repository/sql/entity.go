package sql

import (
	"time"

	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
)

// BatchEntity is a schema model used for persistence.
type BatchEntity struct {
	ID            string
	Kind          string
	Status        model.BatchStatus
	SourceInfo    model.Payload
	Metadata      model.Payload
	ErrorMessage  string
	RetryCount    int
	ParentBatchID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
}

func (BatchEntity) TableName() string {
	return "import_batches"
}

// ItemEntity is a schema model used for persistence.
type ItemEntity struct {
	ID            string
	BatchID       string
	ItemIndex     int
	Status        model.ItemStatus
	SourceData    model.Payload
	ProcessedData model.Payload
	TargetTable   string
	TargetID      string
	ErrorMessage  string
	ProcessedAt   *time.Time
	CreatedAt     time.Time
}

func (ItemEntity) TableName() string {
	return "import_batch_items"
}

// LogEntity is a schema model used for persistence.
type LogEntity struct {
	ID        string
	BatchID   string
	ItemID    string
	Level     string
	Message   string
	Details   model.Payload
	CreatedAt time.Time
}

func (LogEntity) TableName() string {
	return "import_logs"
}
