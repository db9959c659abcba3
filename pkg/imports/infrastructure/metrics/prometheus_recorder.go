// Package metrics provides concrete metrics and tracing backends for the
// abstractions in core/metrics.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
	metrics "github.com/tigerroll/reimport/pkg/imports/core/metrics"
)

// PrometheusRecorder is a Prometheus implementation of the
// metrics.MetricRecorder interface.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	// Batch metrics
	batchDurationSeconds *prometheus.HistogramVec
	batchStatusCounter   *prometheus.CounterVec
	batchItemsTotal      *prometheus.HistogramVec

	// Item metrics
	itemDurationSeconds *prometheus.HistogramVec
	itemFailureCounter  *prometheus.CounterVec
	itemSkipCounter     *prometheus.CounterVec

	// Reprocessing metrics
	reprocessCounter *prometheus.CounterVec
}

// NewPrometheusRecorder creates a new instance of PrometheusRecorder with its
// own registry, including the Go runtime and process collectors.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		batchDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "import_batch_duration_seconds",
			Help:    "Duration of import batch runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind", "status"}),
		batchStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "import_batch_status_total",
			Help: "Total number of import batch runs by terminal status.",
		}, []string{"kind", "status"}),
		batchItemsTotal: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "import_batch_items",
			Help:    "Number of items per batch run.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"kind"}),
		itemDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "import_item_duration_seconds",
			Help:    "Duration of individual item processing.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		itemFailureCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "import_item_failure_total",
			Help: "Total items that failed processing, by reason.",
		}, []string{"kind", "reason"}),
		itemSkipCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "import_item_skip_total",
			Help: "Total items skipped.",
		}, []string{"kind"}),
		reprocessCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "import_reprocess_total",
			Help: "Total reprocessing batches created.",
		}, []string{"kind"}),
	}

	registry.MustRegister(r.batchDurationSeconds)
	registry.MustRegister(r.batchStatusCounter)
	registry.MustRegister(r.batchItemsTotal)
	registry.MustRegister(r.itemDurationSeconds)
	registry.MustRegister(r.itemFailureCounter)
	registry.MustRegister(r.itemSkipCounter)
	registry.MustRegister(r.reprocessCounter)
	return r
}

// Registry returns the recorder's Prometheus registry, to be exposed by the
// application through an HTTP handler or a push gateway.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordBatchStart implements metrics.MetricRecorder.
func (r *PrometheusRecorder) RecordBatchStart(ctx context.Context, batch *model.ImportBatch) {
	// The interesting numbers arrive with the summary at the end of the run.
}

// RecordBatchEnd implements metrics.MetricRecorder.
func (r *PrometheusRecorder) RecordBatchEnd(ctx context.Context, batch *model.ImportBatch, summary *model.BatchSummary) {
	status := batch.Status.String()
	r.batchStatusCounter.WithLabelValues(batch.Kind, status).Inc()
	r.batchItemsTotal.WithLabelValues(batch.Kind).Observe(float64(summary.TotalItems))
	if d, ok := summary.DurationSeconds(); ok {
		r.batchDurationSeconds.WithLabelValues(batch.Kind, status).Observe(d)
	}
}

// RecordItemSuccess implements metrics.MetricRecorder.
func (r *PrometheusRecorder) RecordItemSuccess(ctx context.Context, kind string, duration time.Duration) {
	r.itemDurationSeconds.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordItemFailure implements metrics.MetricRecorder.
func (r *PrometheusRecorder) RecordItemFailure(ctx context.Context, kind string, reason string) {
	r.itemFailureCounter.WithLabelValues(kind, reason).Inc()
}

// RecordItemSkip implements metrics.MetricRecorder.
func (r *PrometheusRecorder) RecordItemSkip(ctx context.Context, kind string) {
	r.itemSkipCounter.WithLabelValues(kind).Inc()
}

// RecordReprocess implements metrics.MetricRecorder.
func (r *PrometheusRecorder) RecordReprocess(ctx context.Context, kind string, itemCount int) {
	r.reprocessCounter.WithLabelValues(kind).Inc()
}

var _ metrics.MetricRecorder = (*PrometheusRecorder)(nil)
