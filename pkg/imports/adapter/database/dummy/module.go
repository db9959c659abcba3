package dummy

import (
	"go.uber.org/fx"

	"github.com/tigerroll/reimport/pkg/imports/adapter/database"
	"github.com/tigerroll/reimport/pkg/imports/core/tx"
)

// Module provides the dummy transaction manager and connection. It is pulled
// in automatically by the in-memory repository module.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewDummyTxManager,
			fx.As(new(tx.TransactionManager)),
		),
	),
	fx.Provide(
		fx.Annotate(
			NewDummyDBConnection,
			fx.As(new(database.DBConnection)),
			fx.As(new(tx.TxExecutor)),
		),
	),
)
