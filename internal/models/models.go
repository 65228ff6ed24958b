// package models defines the data model for the task to calendar sync service
package models

import (
	"time"
)

// Model defines the base interface for persistent models.
type Model interface {
	GetID() string      // GetID returns the unique identifier for this model
	Created() time.Time // Created returns when this model was created
	Updated() time.Time // Updated returns when this model was last updated
	Validate() error    // Validate checks if the model's data is valid and returns an error if not
}

// Ledger records which tasks have already been mirrored as calendar events.
//
// Implementations must enforce uniqueness of both the task ID and the event ID.
type Ledger interface {
	FindByTaskID(taskID string) (*SyncRecord, error) // FindByTaskID returns nil, nil when no record exists
	Insert(record *SyncRecord) error                 // Insert assigns ID, sequence and timestamps
	DeleteByTaskID(taskID string) (bool, error)      // DeleteByTaskID reports whether a record was removed
	List() ([]*SyncRecord, error)                    // List returns all records ordered by sequence
}
