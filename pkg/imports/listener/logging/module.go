package logging

import (
	"go.uber.org/fx"

	"github.com/tigerroll/reimport/pkg/imports/core/ports"
)

// Module contributes the logging listeners to the manager's listener groups.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewLoggingBatchListener,
		fx.As(new(ports.BatchExecutionListener)),
		fx.ResultTags(`group:"batch_listeners"`),
	)),
	fx.Provide(fx.Annotate(
		NewLoggingItemListener,
		fx.As(new(ports.ItemLifecycleListener)),
		fx.ResultTags(`group:"item_listeners"`),
	)),
)
