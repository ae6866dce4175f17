package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/onerilhan/resource-booking-api/internal/apperrors"
	"github.com/onerilhan/resource-booking-api/internal/interfaces"
	"github.com/onerilhan/resource-booking-api/internal/metrics"
	"github.com/onerilhan/resource-booking-api/internal/models"
	"github.com/onerilhan/resource-booking-api/internal/rules"
)

// Mutation names used in metrics
const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// ResourceService validates, persists and logs resource mutations
type ResourceService struct {
	rules *rules.RuleSet
	repo  interfaces.ResourceRepositoryInterface
	audit interfaces.AuditLogger
}

var _ interfaces.ResourceServiceInterface = (*ResourceService)(nil)

// NewResourceService wires the service
func NewResourceService(ruleSet *rules.RuleSet, repo interfaces.ResourceRepositoryInterface, audit interfaces.AuditLogger) *ResourceService {
	return &ResourceService{rules: ruleSet, repo: repo, audit: audit}
}

// Create validates the body and inserts a resource. A duplicate name is
// logged as a blocked attempt and returned as a Conflict.
func (s *ResourceService) Create(ctx context.Context, body map[string]interface{}) (*models.Resource, error) {
	in, fieldErrs := s.rules.Validate(body)
	if len(fieldErrs) > 0 {
		metrics.RecordMutation(opCreate, apperrors.KindValidation.String())
		return nil, apperrors.Validation(fieldErrs)
	}

	res, err := s.repo.Create(ctx, in)
	if err != nil {
		kind := apperrors.KindOf(err)
		metrics.RecordMutation(opCreate, kind.String())
		if kind == apperrors.KindConflict {
			zerolog.Ctx(ctx).Info().Str("name", in.Name).Msg("duplicate resource name rejected")
			s.audit.Submit(models.NewResourceLogEntry(fmt.Sprintf("Duplicate resource blocked (%s)", in.Name), nil))
		}
		return nil, err
	}

	metrics.RecordMutation(opCreate, "ok")
	s.audit.Submit(models.NewResourceLogEntry(fmt.Sprintf("Resource created (ID %d)", res.ID), &res.ID))
	return res, nil
}

// List returns every resource, newest first
func (s *ResourceService) List(ctx context.Context) ([]*models.Resource, error) {
	return s.repo.GetAll(ctx)
}

// Get returns one resource
func (s *ResourceService) Get(ctx context.Context, id int) (*models.Resource, error) {
	return s.repo.GetByID(ctx, id)
}

// Update validates the body and overwrites the resource
func (s *ResourceService) Update(ctx context.Context, id int, body map[string]interface{}) (*models.Resource, error) {
	in, fieldErrs := s.rules.Validate(body)
	if len(fieldErrs) > 0 {
		metrics.RecordMutation(opUpdate, apperrors.KindValidation.String())
		return nil, apperrors.Validation(fieldErrs)
	}

	res, err := s.repo.Update(ctx, id, in)
	if err != nil {
		metrics.RecordMutation(opUpdate, apperrors.KindOf(err).String())
		return nil, err
	}

	metrics.RecordMutation(opUpdate, "ok")
	s.audit.Submit(models.NewResourceLogEntry(fmt.Sprintf("Resource updated (ID %d)", res.ID), &res.ID))
	return res, nil
}

// Delete removes the resource
func (s *ResourceService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		metrics.RecordMutation(opDelete, apperrors.KindOf(err).String())
		return err
	}

	metrics.RecordMutation(opDelete, "ok")
	s.audit.Submit(models.NewResourceLogEntry(fmt.Sprintf("Resource deleted (ID %d)", id), &id))
	return nil
}
