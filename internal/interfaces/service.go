// internal/interfaces/service.go
package interfaces

import (
	"context"

	"github.com/onerilhan/resource-booking-api/internal/models"
)

// ResourceServiceInterface runs the validate, persist, log pipeline.
// Create and Update take the raw decoded request body.
type ResourceServiceInterface interface {
	Create(ctx context.Context, body map[string]interface{}) (*models.Resource, error)
	List(ctx context.Context) ([]*models.Resource, error)
	Get(ctx context.Context, id int) (*models.Resource, error)
	Update(ctx context.Context, id int, body map[string]interface{}) (*models.Resource, error)
	Delete(ctx context.Context, id int) error
}

// AuditLogger accepts audit entries without blocking or failing the caller
type AuditLogger interface {
	Submit(entry models.LogEntry)
}
