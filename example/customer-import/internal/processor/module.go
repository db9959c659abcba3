package processor

import (
	"go.uber.org/fx"

	coreprocessor "github.com/tigerroll/reimport/pkg/imports/core/processor"
)

// Module registers the customer processor with the registry at startup.
var Module = fx.Options(
	fx.Invoke(func(registry *coreprocessor.Registry) {
		registry.Register(Kind, func() coreprocessor.ItemProcessor {
			return NewCustomerProcessor()
		})
	}),
)
