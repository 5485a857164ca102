package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/proposal-desk/internal/config"
	"github.com/diewo77/proposal-desk/internal/gateway/gatewaytest"
	"github.com/diewo77/proposal-desk/internal/logging"
	"github.com/diewo77/proposal-desk/internal/models"
)

func newTestApp(t *testing.T) (*App, *gatewaytest.Backend) {
	t.Helper()
	b := gatewaytest.New().Start()
	t.Cleanup(b.Close)
	b.Seed()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.DraftRecord{}))

	cfg := &config.Config{
		Backend:    config.BackendConfig{URL: b.URL()},
		Contractor: config.ContractorConfig{Name: "Sam Builder", PaymentTerms: "Net 30"},
	}
	now := func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) }
	return newApp(cfg, db, zap.NewNop(), now), b
}

func TestRequestIDHeader(t *testing.T) {
	app, _ := newTestApp(t)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(logging.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(logging.RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	app.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(logging.RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/proposals", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `proposal_desk_http_requests_total{method="GET",path="GET /proposals",status="200"} 1`), body)
	assert.Contains(t, body, `proposal_desk_backend_requests_total{method="GET",resource="proposals",status="200"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	app, _ := newTestApp(t)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
