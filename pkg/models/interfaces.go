package models

// Storage defines the interface for extraction history persistence
type Storage interface {
	// SaveRecord saves one extraction outcome
	SaveRecord(record *ExtractionRecord) error

	// RecentRecords returns the most recent extraction outcomes
	RecentRecords(limit int) ([]*ExtractionRecord, error)

	// ListRecords lists extraction outcomes with pagination
	ListRecords(limit, offset int) ([]*ExtractionRecord, error)

	// GetStats returns aggregate extraction statistics
	GetStats() (*Stats, error)

	// Close closes the storage connection
	Close() error
}
