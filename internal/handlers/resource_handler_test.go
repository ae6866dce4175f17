package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/onerilhan/resource-booking-api/internal/apperrors"
	"github.com/onerilhan/resource-booking-api/internal/models"
)

// MockResourceService - mock service layer
type MockResourceService struct {
	mock.Mock
}

func (m *MockResourceService) Create(ctx context.Context, body map[string]interface{}) (*models.Resource, error) {
	args := m.Called(ctx, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Resource), args.Error(1)
}

func (m *MockResourceService) List(ctx context.Context) ([]*models.Resource, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Resource), args.Error(1)
}

func (m *MockResourceService) Get(ctx context.Context, id int) (*models.Resource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Resource), args.Error(1)
}

func (m *MockResourceService) Update(ctx context.Context, id int, body map[string]interface{}) (*models.Resource, error) {
	args := m.Called(ctx, id, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Resource), args.Error(1)
}

func (m *MockResourceService) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func newTestRouter(svc *MockResourceService) *mux.Router {
	router := mux.NewRouter()
	NewResourceHandler(svc).RegisterRoutes(router.PathPrefix("/api/resources").Subrouter())
	return router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func meetingRoom() *models.Resource {
	return &models.Resource{
		ID:          1,
		Name:        "Meeting Room A",
		Description: "Large room w/ AV",
		Available:   true,
		Price:       25,
		PriceUnit:   "hour",
		CreatedAt:   time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestResourceHandler_Create(t *testing.T) {
	svc := new(MockResourceService)
	router := newTestRouter(svc)

	svc.On("Create", mock.Anything, map[string]interface{}{"resourceName": "Meeting Room A"}).
		Return(meetingRoom(), nil)

	rec := serve(router, http.MethodPost, "/api/resources", `{"resourceName":"Meeting Room A"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, true, body["ok"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["id"])
	assert.Equal(t, "hour", data["price_unit"])
	svc.AssertExpectations(t)
}

func TestResourceHandler_CreateValidationErrors(t *testing.T) {
	svc := new(MockResourceService)
	router := newTestRouter(svc)

	fields := []apperrors.FieldError{
		{Field: "resourceName", Msg: "resourceName is required"},
		{Field: "resourcePrice", Msg: "resourcePrice is required"},
	}
	svc.On("Create", mock.Anything, map[string]interface{}{}).Return(nil, apperrors.Validation(fields))

	rec := serve(router, http.MethodPost, "/api/resources", `[1,2,3]`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["ok"])
	assert.NotContains(t, body, "error")
	errs := body["errors"].([]interface{})
	require.Len(t, errs, 2)
	assert.Equal(t, "resourceName", errs[0].(map[string]interface{})["field"])
}

func TestResourceHandler_CreateEmptyBodyIsEmptyObject(t *testing.T) {
	svc := new(MockResourceService)
	router := newTestRouter(svc)

	svc.On("Create", mock.Anything, map[string]interface{}{}).
		Return(nil, apperrors.Validation([]apperrors.FieldError{{Field: "resourceName", Msg: "resourceName is required"}}))

	rec := serve(router, http.MethodPost, "/api/resources", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertExpectations(t)
}

func TestResourceHandler_CreateInvalidJSON(t *testing.T) {
	svc := new(MockResourceService)
	router := newTestRouter(svc)

	rec := serve(router, http.MethodPost, "/api/resources", `{"resourceName":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.MessageInvalidJSON, decode(t, rec)["error"])
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestResourceHandler_CreateDuplicate(t *testing.T) {
	svc := new(MockResourceService)
	router := newTestRouter(svc)

	svc.On("Create", mock.Anything, mock.Anything).
		Return(nil, apperrors.Conflict(apperrors.MessageDuplicateName, errors.New("pq: duplicate key")))

	rec := serve(router, http.MethodPost, "/api/resources", `{"resourceName":"Meeting Room A"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, apperrors.MessageDuplicateName, body["error"])
	assert.NotContains(t, rec.Body.String(), "pq:")
}

func TestResourceHandler_List(t *testing.T) {
	svc := new(MockResourceService)
	router := newTestRouter(svc)

	svc.On("List", mock.Anything).Return([]*models.Resource{}, nil)

	rec := serve(router, http.MethodGet, "/api/resources", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"data":[]}`, rec.Body.String())
}

func TestResourceHandler_InternalErrorIsHidden(t *testing.T) {
	svc := new(MockResourceService)
	router := newTestRouter(svc)

	svc.On("List", mock.Anything).
		Return(nil, apperrors.Internal(apperrors.MessageDatabase, errors.New("dial tcp 10.0.0.5:5432: connection refused")))

	rec := serve(router, http.MethodGet, "/api/resources", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Database error"}`, rec.Body.String())
}

func TestResourceHandler_Get(t *testing.T) {
	svc := new(MockResourceService)
	router := newTestRouter(svc)

	svc.On("Get", mock.Anything, 1).Return(meetingRoom(), nil)
	svc.On("Get", mock.Anything, 99).Return(nil, apperrors.NotFound(apperrors.MessageResourceGone))

	rec := serve(router, http.MethodGet, "/api/resources/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Meeting Room A", decode(t, rec)["data"].(map[string]interface{})["name"])

	rec = serve(router, http.MethodGet, "/api/resources/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperrors.MessageResourceGone, decode(t, rec)["error"])
}

func TestResourceHandler_InvalidID(t *testing.T) {
	svc := new(MockResourceService)
	router := newTestRouter(svc)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := serve(router, method, "/api/resources/abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, method)
		assert.Equal(t, apperrors.MessageInvalidID, decode(t, rec)["error"], method)
	}
	svc.AssertExpectations(t)
}

func TestResourceHandler_IDOutsideSerialRange(t *testing.T) {
	svc := new(MockResourceService)
	router := newTestRouter(svc)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := serve(router, method, "/api/resources/3000000000", "")
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
		assert.Equal(t, apperrors.MessageResourceGone, decode(t, rec)["error"], method)
	}

	rec := serve(router, http.MethodGet, "/api/resources/99999999999999999999999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// service never sees an id the store would reject
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestResourceHandler_LargestSerialIDReachesService(t *testing.T) {
	svc := new(MockResourceService)
	router := newTestRouter(svc)

	svc.On("Get", mock.Anything, 2147483647).Return(nil, apperrors.NotFound(apperrors.MessageResourceGone))

	rec := serve(router, http.MethodGet, "/api/resources/2147483647", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertExpectations(t)
}

func TestResourceHandler_Update(t *testing.T) {
	svc := new(MockResourceService)
	router := newTestRouter(svc)

	updated := meetingRoom()
	updated.Price = 30
	svc.On("Update", mock.Anything, 1, map[string]interface{}{"resourcePrice": float64(30)}).Return(updated, nil)

	rec := serve(router, http.MethodPut, "/api/resources/1", `{"resourcePrice":30}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(30), decode(t, rec)["data"].(map[string]interface{})["price"])
	svc.AssertExpectations(t)
}

func TestResourceHandler_Delete(t *testing.T) {
	svc := new(MockResourceService)
	router := newTestRouter(svc)

	svc.On("Delete", mock.Anything, 1).Return(nil).Once()
	svc.On("Delete", mock.Anything, 1).Return(apperrors.NotFound(apperrors.MessageResourceGone)).Once()

	rec := serve(router, http.MethodDelete, "/api/resources/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = serve(router, http.MethodDelete, "/api/resources/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResourceHandler_BodyTooLarge(t *testing.T) {
	svc := new(MockResourceService)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/resources", strings.NewReader(`{"resourceName":"`+strings.Repeat("a", 64)+`"}`))
	rec := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(rec, req.Body, 16)

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
