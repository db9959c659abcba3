package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
	metrics "github.com/tigerroll/reimport/pkg/imports/core/metrics"
)

const tracerName = "github.com/tigerroll/reimport"

// OpenTelemetryTracer is an implementation of metrics.Tracer using
// OpenTelemetry. It draws its tracer from the global TracerProvider, so the
// hosting application decides where spans are exported.
type OpenTelemetryTracer struct {
	tracer trace.Tracer
}

// NewOpenTelemetryTracer creates a new instance of OpenTelemetryTracer.
func NewOpenTelemetryTracer() *OpenTelemetryTracer {
	return &OpenTelemetryTracer{tracer: otel.Tracer(tracerName)}
}

// StartBatchSpan implements metrics.Tracer.
func (t *OpenTelemetryTracer) StartBatchSpan(ctx context.Context, batch *model.ImportBatch) (context.Context, func(error)) {
	ctx, span := t.tracer.Start(ctx, "import.batch",
		trace.WithAttributes(
			attribute.String("import.batch.id", batch.ID),
			attribute.String("import.batch.kind", batch.Kind),
			attribute.Bool("import.batch.reprocess", batch.IsReprocess()),
		))
	return ctx, func(err error) {
		endSpan(span, err)
	}
}

// StartItemSpan implements metrics.Tracer.
func (t *OpenTelemetryTracer) StartItemSpan(ctx context.Context, item *model.BatchItem) (context.Context, func(error)) {
	ctx, span := t.tracer.Start(ctx, "import.item",
		trace.WithAttributes(
			attribute.String("import.item.id", item.ID),
			attribute.Int("import.item.index", item.ItemIndex),
		))
	return ctx, func(err error) {
		endSpan(span, err)
	}
}

// RecordEvent implements metrics.Tracer.
func (t *OpenTelemetryTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		attrs = append(attrs, attribute.String(k, fmt.Sprintf("%v", v)))
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

var _ metrics.Tracer = (*OpenTelemetryTracer)(nil)
