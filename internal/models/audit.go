package models

import "time"

// EntityTypeResource is the entity type recorded for resource mutations
const EntityTypeResource = "resource"

// LogEntry is one row of the append-only booking_log table. Nullable columns
// are pointers; ActorUserID stays nil until users exist.
type LogEntry struct {
	ID          int       `json:"id" db:"id"`
	ActorUserID *int      `json:"actor_user_id" db:"actor_user_id"`
	Message     string    `json:"message" db:"message"`
	EntityType  *string   `json:"entity_type" db:"entity_type"`
	EntityID    *int      `json:"entity_id" db:"entity_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// NewResourceLogEntry builds an entry about a resource. A nil id is used when
// the mutation was rejected before a row existed.
func NewResourceLogEntry(message string, resourceID *int) LogEntry {
	entityType := EntityTypeResource
	return LogEntry{
		Message:    message,
		EntityType: &entityType,
		EntityID:   resourceID,
	}
}
