package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/onerilhan/resource-booking-api/internal/apperrors"
	"github.com/onerilhan/resource-booking-api/internal/models"
)

// uniqueViolation is the SQLSTATE postgres raises for a unique constraint
const uniqueViolation = pq.ErrorCode("23505")

const resourceColumns = `id, name, description, available, price, price_unit, created_at`

// ResourceRepository stores resources in postgres
type ResourceRepository struct {
	db *sql.DB
}

// NewResourceRepository creates the repository over a shared pool
func NewResourceRepository(db *sql.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanResource(row rowScanner) (*models.Resource, error) {
	var res models.Resource
	err := row.Scan(
		&res.ID,
		&res.Name,
		&res.Description,
		&res.Available,
		&res.Price,
		&res.PriceUnit,
		&res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// classify maps a driver error onto the taxonomy by SQLSTATE, never by text
func classify(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(apperrors.MessageResourceGone)
	}

	if IsUniqueViolation(err) {
		return apperrors.Conflict(apperrors.MessageDuplicateName, fmt.Errorf("%s: %w", op, err))
	}

	return apperrors.Internal(apperrors.MessageDatabase, fmt.Errorf("%s: %w", op, err))
}

// IsUniqueViolation reports whether err comes from a unique constraint
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Create inserts a resource
func (r *ResourceRepository) Create(ctx context.Context, in *models.ResourceInput) (*models.Resource, error) {
	query := `
		INSERT INTO resources (name, description, available, price, price_unit)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + resourceColumns

	res, err := scanResource(r.db.QueryRowContext(ctx, query,
		in.Name, in.Description, in.Available, in.Price, in.PriceUnit,
	))
	if err != nil {
		return nil, classify("insert resource", err)
	}
	return res, nil
}

// GetAll returns every resource ordered by created_at, newest first
func (r *ResourceRepository) GetAll(ctx context.Context) ([]*models.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify("list resources", err)
	}
	defer rows.Close()

	resources := make([]*models.Resource, 0)
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, classify("scan resource", err)
		}
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate resources", err)
	}

	return resources, nil
}

// GetByID returns one resource
func (r *ResourceRepository) GetByID(ctx context.Context, id int) (*models.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE id = $1`

	res, err := scanResource(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, classify("get resource", err)
	}
	return res, nil
}

// Update overwrites name, description, availability and price terms.
// id and created_at never change.
func (r *ResourceRepository) Update(ctx context.Context, id int, in *models.ResourceInput) (*models.Resource, error) {
	query := `
		UPDATE resources
		SET name = $1,
		    description = $2,
		    available = $3,
		    price = $4,
		    price_unit = $5
		WHERE id = $6
		RETURNING ` + resourceColumns

	res, err := scanResource(r.db.QueryRowContext(ctx, query,
		in.Name, in.Description, in.Available, in.Price, in.PriceUnit, id,
	))
	if err != nil {
		return nil, classify("update resource", err)
	}
	return res, nil
}

// Delete removes a resource
func (r *ResourceRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return classify("delete resource", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return classify("delete resource", err)
	}
	if affected == 0 {
		return apperrors.NotFound(apperrors.MessageResourceGone)
	}
	return nil
}
