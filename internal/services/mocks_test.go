package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/onerilhan/resource-booking-api/internal/interfaces"
	"github.com/onerilhan/resource-booking-api/internal/models"
)

// MockResourceRepository - mock resource store
type MockResourceRepository struct {
	mock.Mock
}

var _ interfaces.ResourceRepositoryInterface = (*MockResourceRepository)(nil)

func (m *MockResourceRepository) Create(ctx context.Context, in *models.ResourceInput) (*models.Resource, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Resource), args.Error(1)
}

func (m *MockResourceRepository) GetAll(ctx context.Context) ([]*models.Resource, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Resource), args.Error(1)
}

func (m *MockResourceRepository) GetByID(ctx context.Context, id int) (*models.Resource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Resource), args.Error(1)
}

func (m *MockResourceRepository) Update(ctx context.Context, id int, in *models.ResourceInput) (*models.Resource, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Resource), args.Error(1)
}

func (m *MockResourceRepository) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAuditRepository - mock booking_log store
type MockAuditRepository struct {
	mock.Mock
}

var _ interfaces.AuditRepositoryInterface = (*MockAuditRepository)(nil)

func (m *MockAuditRepository) Create(ctx context.Context, entry *models.LogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) ListByEntity(ctx context.Context, entityType string, entityID int) ([]*models.LogEntry, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LogEntry), args.Error(1)
}

// recordingAuditLogger keeps submitted entries in memory
type recordingAuditLogger struct {
	mu      sync.Mutex
	entries []models.LogEntry
}

func (r *recordingAuditLogger) Submit(entry models.LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordingAuditLogger) Entries() []models.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.LogEntry(nil), r.entries...)
}
