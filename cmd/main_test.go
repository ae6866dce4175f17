package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onerilhan/resource-booking-api/internal/config"
	"github.com/onerilhan/resource-booking-api/internal/handlers"
	"github.com/onerilhan/resource-booking-api/internal/models"
	"github.com/onerilhan/resource-booking-api/internal/repository"
	"github.com/onerilhan/resource-booking-api/internal/rules"
	"github.com/onerilhan/resource-booking-api/internal/services"
)

type memoryAuditLog struct {
	mu      sync.Mutex
	entries []models.LogEntry
}

func (m *memoryAuditLog) Submit(entry models.LogEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
}

func (m *memoryAuditLog) messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Message)
	}
	return out
}

type testApp struct {
	handler http.Handler
	mock    sqlmock.Sqlmock
	audit   *memoryAuditLog
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	database, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	publicDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(publicDir, "index.html"), []byte("<h1>Resource Booking</h1>"), 0o644))

	cfg := &config.Config{
		AppEnv:          "test",
		PriceUnitPolicy: config.PriceUnitPolicyExtended,
		PublicDir:       publicDir,
		RateLimitRPM:    600,
	}

	audit := &memoryAuditLog{}
	service := services.NewResourceService(
		rules.NewResourceRules(cfg.PriceUnitPolicy),
		repository.NewResourceRepository(database),
		audit,
	)
	router := newRouter(cfg, handlers.NewResourceHandler(service), handlers.NewHealthHandler(database))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return &testApp{handler: newHandler(ctx, cfg, router), mock: mock, audit: audit}
}

func (a *testApp) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

const meetingRoomJSON = `{
	"resourceName": "Meeting Room A",
	"resourceDescription": "Large room w/ AV",
	"resourceAvailable": true,
	"resourcePrice": 25,
	"resourcePriceUnit": "hour"
}`

var resourceCols = []string{"id", "name", "description", "available", "price", "price_unit", "created_at"}

func TestCreateDuplicateDeleteLifecycle(t *testing.T) {
	app := newTestApp(t)
	created := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	app.mock.ExpectQuery("INSERT INTO resources").
		WithArgs("Meeting Room A", "Large room w/ AV", true, float64(25), "hour").
		WillReturnRows(sqlmock.NewRows(resourceCols).
			AddRow(1, "Meeting Room A", "Large room w/ AV", true, 25.0, "hour", created))
	app.mock.ExpectQuery("INSERT INTO resources").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "resources_name_key"})
	app.mock.ExpectExec("DELETE FROM resources").
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	app.mock.ExpectQuery("SELECT (.+) FROM resources WHERE id").
		WithArgs(1).
		WillReturnError(sql.ErrNoRows)

	rec := app.do(http.MethodPost, "/api/resources", meetingRoomJSON)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["id"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = app.do(http.MethodPost, "/api/resources", meetingRoomJSON)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Duplicate resource name", decodeBody(t, rec)["error"])

	rec = app.do(http.MethodDelete, "/api/resources/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.do(http.MethodGet, "/api/resources/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.NoError(t, app.mock.ExpectationsWereMet())
	assert.Equal(t, []string{
		"Resource created (ID 1)",
		"Duplicate resource blocked (Meeting Room A)",
		"Resource deleted (ID 1)",
	}, app.audit.messages())
}

func TestValidationFailureNeverReachesStore(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/api/resources", `{"resourceName":"Room","resourcePrice":-1}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decodeBody(t, rec)["errors"].([]interface{})
	assert.Len(t, errs, 5)
	assert.NoError(t, app.mock.ExpectationsWereMet())
	assert.Empty(t, app.audit.messages())
}

func TestUnknownAPIRouteIsJSON404(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/api/unknown?x=1", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Not found","path":"/api/unknown?x=1"}`, rec.Body.String())
}

func TestWrongMethodOnAPIRouteIsJSON404(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPatch, "/api/resources/1", `{}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "/api/resources/1", decodeBody(t, rec)["path"])
}

func TestPages(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Resource Booking")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = app.do(http.MethodGet, "/missing-page", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "404 - Page not found", rec.Body.String())
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	app.mock.ExpectPing()

	rec := app.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, app.mock.ExpectationsWereMet())
}

func TestUnsupportedContentType(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/resources", strings.NewReader("resourceName=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	app.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
