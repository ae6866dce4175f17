// internal/interfaces/repository.go
package interfaces

import (
	"context"

	"github.com/onerilhan/resource-booking-api/internal/models"
)

// ResourceRepositoryInterface is the resource store. Failures are
// *apperrors.Error values: NotFound for missing rows, Conflict for a
// duplicate name, Internal for everything else.
type ResourceRepositoryInterface interface {
	// Create inserts a resource and returns it with id and created_at set
	Create(ctx context.Context, in *models.ResourceInput) (*models.Resource, error)

	// GetAll returns every resource, newest first
	GetAll(ctx context.Context) ([]*models.Resource, error)

	// GetByID returns one resource
	GetByID(ctx context.Context, id int) (*models.Resource, error)

	// Update overwrites every mutable field of a resource
	Update(ctx context.Context, id int, in *models.ResourceInput) (*models.Resource, error)

	// Delete removes a resource
	Delete(ctx context.Context, id int) error
}

// AuditRepositoryInterface is the append-only booking_log store
type AuditRepositoryInterface interface {
	// Create appends one entry
	Create(ctx context.Context, entry *models.LogEntry) error

	// ListByEntity returns the entries about one entity, newest first
	ListByEntity(ctx context.Context, entityType string, entityID int) ([]*models.LogEntry, error)
}
