package engine

import "time"

// EventType names a store mutation
type EventType string

const (
	EventDatabaseCreated EventType = "database_created"
	EventDatabaseDropped EventType = "database_dropped"
	EventTableCreated    EventType = "table_created"
	EventTableDropped    EventType = "table_dropped"
	EventRecordInserted  EventType = "record_inserted"
	EventRecordUpdated   EventType = "record_updated"
	EventRecordDeleted   EventType = "record_deleted"
	EventIndexCreated    EventType = "index_created"
	EventIndexDropped    EventType = "index_dropped"
	EventSnapshotSaved   EventType = "snapshot_saved"
	EventSnapshotLoaded  EventType = "snapshot_loaded"
)

// Event describes one mutating operation, successful or not
type Event struct {
	Type      EventType   // Type of event
	OpID      string      // Operation ID for tracing
	Timestamp time.Time   // When the operation finished
	Database  string      // Target database (empty for snapshot events)
	Table     string      // Target table (empty for database-level events)
	Data      interface{} // Operation-specific data (record id, column, path)
	Err       error       // Non-nil when the operation failed
}

// Observer interface for event subscribers.
// Observers are called after the engine lock is released.
type Observer interface {
	OnEvent(event Event)
}
