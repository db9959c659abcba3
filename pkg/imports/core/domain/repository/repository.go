package repository

// ImportRepository is the interface for persisting and managing import
// execution state. It embeds multiple smaller repository interfaces to
// separate concerns.
type ImportRepository interface {
	BatchRepository // Embeds batch operations (definition in batch.go)
	ItemRepository  // Embeds item operations (definition in item.go)
	LogRepository   // Embeds log operations (definition in log.go)

	// Close releases resources (such as database connections) used by the repository.
	Close() error
}
