// Package inmemory provides an in-memory implementation of the
// ImportRepository interface. It stores all import data in maps, suitable
// for testing and scenarios where persistence is not required.
//
// The in-memory repository does not participate in transactions: writes take
// effect immediately and are not undone by a rollback. Use the SQL
// repository when transactional isolation matters.
package inmemory

import (
	"sync"

	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
)

// InMemoryImportRepository is an in-memory implementation of the
// ImportRepository interface.
type InMemoryImportRepository struct {
	batches map[string]*model.ImportBatch
	items   map[string]*model.BatchItem
	logs    []*model.ImportLog
	mu      sync.RWMutex // Mutex to protect concurrent access to maps.
}

// NewInMemoryImportRepository creates and initializes a new instance of
// InMemoryImportRepository.
func NewInMemoryImportRepository() *InMemoryImportRepository {
	return &InMemoryImportRepository{
		batches: make(map[string]*model.ImportBatch),
		items:   make(map[string]*model.BatchItem),
	}
}

// Close releases resources used by the repository. As an in-memory
// repository it holds no external resources, so this method always returns nil.
func (r *InMemoryImportRepository) Close() error {
	return nil
}
