// Package inmemory provides an in-memory implementation of the ImportRepository
// interface. This module integrates it into the application's dependency
// graph using Fx.
package inmemory

import (
	"go.uber.org/fx"

	dummy "github.com/tigerroll/reimport/pkg/imports/adapter/database/dummy"
	repository "github.com/tigerroll/reimport/pkg/imports/core/domain/repository"
)

// Module is an Fx module that provides InMemoryImportRepository as a
// repository.ImportRepository interface.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewInMemoryImportRepository,
			fx.As(new(repository.ImportRepository)),
		),
	),
	dummy.Module, // Automatically configure dummy adapters when the in-memory repository is used.
)
