package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/onerilhan/resource-booking-api/internal/models"
)

// AuditRepository writes the append-only booking_log table
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates the repository over a shared pool
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create appends one entry; ID and CreatedAt are filled from the inserted row
func (r *AuditRepository) Create(ctx context.Context, entry *models.LogEntry) error {
	query := `
		INSERT INTO booking_log (actor_user_id, message, entity_type, entity_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		nullableInt(entry.ActorUserID),
		entry.Message,
		nullableString(entry.EntityType),
		nullableInt(entry.EntityID),
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert booking log: %w", err)
	}

	return nil
}

// ListByEntity returns the entries about one entity, newest first
func (r *AuditRepository) ListByEntity(ctx context.Context, entityType string, entityID int) ([]*models.LogEntry, error) {
	query := `
		SELECT id, actor_user_id, message, entity_type, entity_id, created_at
		FROM booking_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("list booking log: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.LogEntry, 0)
	for rows.Next() {
		var (
			entry   models.LogEntry
			actor   sql.NullInt64
			typ     sql.NullString
			subject sql.NullInt64
		)
		if err := rows.Scan(&entry.ID, &actor, &entry.Message, &typ, &subject, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking log: %w", err)
		}
		if actor.Valid {
			v := int(actor.Int64)
			entry.ActorUserID = &v
		}
		if typ.Valid {
			v := typ.String
			entry.EntityType = &v
		}
		if subject.Valid {
			v := int(subject.Int64)
			entry.EntityID = &v
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking log: %w", err)
	}

	return entries, nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
