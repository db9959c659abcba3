package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
)

// NoOpMetricRecorder is an implementation of MetricRecorder that does nothing.
// It is used when metrics are disabled or during testing.
type NoOpMetricRecorder struct{}

// NewNoOpMetricRecorder creates a new instance of NoOpMetricRecorder.
func NewNoOpMetricRecorder() MetricRecorder {
	return &NoOpMetricRecorder{}
}

// RecordBatchStart does nothing.
func (r *NoOpMetricRecorder) RecordBatchStart(ctx context.Context, batch *model.ImportBatch) {}

// RecordBatchEnd does nothing.
func (r *NoOpMetricRecorder) RecordBatchEnd(ctx context.Context, batch *model.ImportBatch, summary *model.BatchSummary) {
}

// RecordItemSuccess does nothing.
func (r *NoOpMetricRecorder) RecordItemSuccess(ctx context.Context, kind string, duration time.Duration) {
}

// RecordItemFailure does nothing.
func (r *NoOpMetricRecorder) RecordItemFailure(ctx context.Context, kind string, reason string) {}

// RecordItemSkip does nothing.
func (r *NoOpMetricRecorder) RecordItemSkip(ctx context.Context, kind string) {}

// RecordReprocess does nothing.
func (r *NoOpMetricRecorder) RecordReprocess(ctx context.Context, kind string, itemCount int) {}

var _ MetricRecorder = (*NoOpMetricRecorder)(nil)

// --- NoOpTracer ---

// NoOpTracer is an implementation of Tracer that does nothing.
type NoOpTracer struct{}

// NewNoOpTracer creates a new instance of NoOpTracer.
func NewNoOpTracer() Tracer {
	return &NoOpTracer{}
}

// StartBatchSpan returns the context unchanged.
func (t *NoOpTracer) StartBatchSpan(ctx context.Context, batch *model.ImportBatch) (context.Context, func(error)) {
	return ctx, func(error) {}
}

// StartItemSpan returns the context unchanged.
func (t *NoOpTracer) StartItemSpan(ctx context.Context, item *model.BatchItem) (context.Context, func(error)) {
	return ctx, func(error) {}
}

// RecordEvent does nothing.
func (t *NoOpTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
}

var _ Tracer = (*NoOpTracer)(nil)
