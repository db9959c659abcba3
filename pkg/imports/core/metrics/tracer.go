package metrics

import (
	"context"

	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
)

// Tracer is an abstract interface for distributed tracing. It provides
// functionality to integrate with tracing systems like OpenTelemetry,
// enabling visualization of batch and item execution flows.
type Tracer interface {
	// StartBatchSpan starts a Span covering one batch run.
	//
	// Returns a context with the new Span set, and a function to end the
	// Span with the run's outcome. Call the returned function exactly once.
	StartBatchSpan(ctx context.Context, batch *model.ImportBatch) (context.Context, func(err error))

	// StartItemSpan starts a Span covering one item, nested under the batch span.
	StartItemSpan(ctx context.Context, item *model.BatchItem) (context.Context, func(err error))

	// RecordEvent records an event in the current Span.
	RecordEvent(ctx context.Context, name string, attributes map[string]interface{})
}
