package repository

import (
	"digitcam/internal/model"
)

// ResultRepository defines the interface for classification history operations.
type ResultRepository interface {
	// Create operations
	Insert(entry *model.LogEntry) (int64, error)
	InsertBatch(entries []model.LogEntry) error

	// Read operations
	GetAll(filter *model.ResultFilter) ([]model.LogEntry, error)
	GetTotalCount(filter *model.ResultFilter) (int, error)

	// Delete operations
	DeleteAll() error
}
