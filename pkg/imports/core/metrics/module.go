package metrics

import (
	"go.uber.org/fx"
)

// Module is an Fx module that provides the no-op metrics components.
// Applications wanting real metrics include the infrastructure metrics
// module instead of this one.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewNoOpMetricRecorder,
		fx.As(new(MetricRecorder)),
	)),
	fx.Provide(fx.Annotate(
		NewNoOpTracer,
		fx.As(new(Tracer)),
	)),
)
