package manager

import (
	"go.uber.org/fx"

	"github.com/tigerroll/reimport/pkg/imports/core/domain/repository"
	"github.com/tigerroll/reimport/pkg/imports/core/metrics"
	"github.com/tigerroll/reimport/pkg/imports/core/ports"
	"github.com/tigerroll/reimport/pkg/imports/core/processor"
	coretx "github.com/tigerroll/reimport/pkg/imports/core/tx"
)

// Params collects the manager's dependencies from Fx. Listener groups are
// optional: an application without listeners gets empty slices.
type Params struct {
	fx.In

	Repo           repository.ImportRepository
	TxManager      coretx.TransactionManager
	Registry       *processor.Registry
	Fallback       coretx.TxExecutor
	BatchListeners []ports.BatchExecutionListener `group:"batch_listeners"`
	ItemListeners  []ports.ItemLifecycleListener  `group:"item_listeners"`
	Recorder       metrics.MetricRecorder         `optional:"true"`
	Tracer         metrics.Tracer                 `optional:"true"`
}

func provideBatchManager(p Params) *BatchManager {
	return NewBatchManager(p.Repo, p.TxManager, p.Registry, p.Fallback, p.BatchListeners, p.ItemListeners, p.Recorder, p.Tracer)
}

// Module is an Fx module that provides the BatchManager and the processor registry.
var Module = fx.Options(
	fx.Provide(processor.NewRegistry),
	fx.Provide(provideBatchManager),
)
