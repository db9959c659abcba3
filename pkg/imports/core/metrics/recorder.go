package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
)

// MetricRecorder is an abstract interface for recording metrics related to
// import execution. It provides a standardized way to record batch- and
// item-level events, facilitating integration with different metrics
// backends (e.g. Prometheus, OpenTelemetry Metrics).
type MetricRecorder interface {
	// RecordBatchStart records the start of a batch run.
	RecordBatchStart(ctx context.Context, batch *model.ImportBatch)

	// RecordBatchEnd records the end of a batch run with its summary.
	RecordBatchEnd(ctx context.Context, batch *model.ImportBatch, summary *model.BatchSummary)

	// RecordItemSuccess records the successful processing of an item.
	RecordItemSuccess(ctx context.Context, kind string, duration time.Duration)

	// RecordItemFailure records the durable failure of an item.
	// reason carries a coarse error classification, not the full message.
	RecordItemFailure(ctx context.Context, kind string, reason string)

	// RecordItemSkip records the skipping of an item.
	RecordItemSkip(ctx context.Context, kind string)

	// RecordReprocess records the creation of a reprocessing batch.
	RecordReprocess(ctx context.Context, kind string, itemCount int)
}
