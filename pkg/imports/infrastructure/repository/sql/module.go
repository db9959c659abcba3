package sql

import (
	"context"

	"go.uber.org/fx"

	"github.com/tigerroll/reimport/pkg/imports/adapter/database"
	gormadapter "github.com/tigerroll/reimport/pkg/imports/adapter/database/gorm"
	tx "github.com/tigerroll/reimport/pkg/imports/core/tx"
)

// Module is an Fx module that provides SQLImportRepository as a
// repository.ImportRepository, backed by the gorm transaction manager. The
// application must provide a database.DBConnection (see the config package)
// and import a driver package for its database type.
var Module = fx.Options(
	fx.Provide(NewSQLImportRepository),
	fx.Provide(gormadapter.NewGormTransactionManager),
	// The raw connection also serves as the fallback executor for data
	// operations issued outside any transaction.
	fx.Provide(
		func(conn database.DBConnection) tx.TxExecutor { return conn },
	),
	fx.Invoke(func(lc fx.Lifecycle, conn database.DBConnection) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return ApplySchema(ctx, conn)
			},
			OnStop: func(ctx context.Context) error {
				return conn.Close()
			},
		})
	}),
)
