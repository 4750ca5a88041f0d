package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondscope/internal/config"
	"bondscope/internal/services"
	"bondscope/internal/shared/testutil"
)

type stubSource struct {
	ds  *services.Dataset
	err error
}

func (s stubSource) Dataset() (*services.Dataset, error) { return s.ds, s.err }

func newHealthRouter(t *testing.T, source services.DatasetSource) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	files := testutil.WriteBondDataset(t)
	data := config.DataConfig{PurchasesPath: files.PurchasesPath, RedemptionsPath: files.RedemptionsPath}

	h := NewHealthHandler(services.NewHealthService("0.3.0", "", "abc123", data, source, logger), logger)
	r := chi.NewRouter()
	r.Mount("/health", h.Routes())
	r.Get("/api/v1/version", h.Version)
	return r
}

func TestHealthHandler(t *testing.T) {
	loaded := stubSource{ds: &services.Dataset{ID: "ds-1", LoadedAt: time.Now()}}
	missing := stubSource{err: services.ErrNoDataset}

	tests := []struct {
		name           string
		source         services.DatasetSource
		target         string
		expectedStatus int
		expectedBody   string
	}{
		{"health", missing, "/health", http.StatusOK, "ok"},
		{"live", missing, "/health/live", http.StatusOK, "alive"},
		{"ready", loaded, "/health/ready", http.StatusOK, "ready"},
		{"not ready", missing, "/health/ready", http.StatusServiceUnavailable, "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := serve(t, newHealthRouter(t, tt.source), http.MethodGet, tt.target)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedBody, body["status"])
			assert.Equal(t, "0.3.0", body["version"])
		})
	}
}

func TestHealthHandler_Version(t *testing.T) {
	rec, body := serve(t, newHealthRouter(t, nil), http.MethodGet, "/api/v1/version")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0.3.0", body["version"])
	assert.Equal(t, "abc123", body["git_commit"])
	assert.NotContains(t, body, "build_time")
}
