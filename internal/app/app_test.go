package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondscope/internal/config"
	"bondscope/internal/shared/testutil"
)

func newTestApp(t *testing.T, mutate ...func(*config.Config)) *Application {
	t.Helper()
	files := testutil.WriteBondDataset(t)

	cfg := config.Default()
	cfg.Data.PurchasesPath = files.PurchasesPath
	cfg.Data.RedemptionsPath = files.RedemptionsPath
	cfg.Security.RateLimit.Enabled = false
	for _, m := range mutate {
		m(cfg)
	}

	logger, _ := testutil.NewTestLogger(t)
	app, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.OTelProviders.Shutdown(context.Background()) })
	return app
}

func get(t *testing.T, h http.Handler, method, target string) (*http.Response, []byte) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	res := rec.Result()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, body
}

func TestApplication_Routes(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.Load(context.Background()))

	tests := []struct {
		name   string
		method string
		target string
		status int
	}{
		{"overview", http.MethodGet, "/api/v1/overview", http.StatusOK},
		{"donors", http.MethodGet, "/api/v1/donors?limit=2", http.StatusOK},
		{"donor", http.MethodGet, "/api/v1/donors/ACME%20STEEL", http.StatusOK},
		{"unknown donor", http.MethodGet, "/api/v1/donors/ACME%20STEL", http.StatusNotFound},
		{"league", http.MethodGet, "/api/v1/league", http.StatusOK},
		{"version", http.MethodGet, "/api/v1/version", http.StatusOK},
		{"health", http.MethodGet, "/health", http.StatusOK},
		{"ready", http.MethodGet, "/health/ready", http.StatusOK},
		{"word cloud without renderer", http.MethodGet, "/api/v1/wordcloud", http.StatusServiceUnavailable},
		{"unknown route", http.MethodGet, "/api/v1/nope", http.StatusNotFound},
		{"wrong method", http.MethodPut, "/api/v1/reload", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, body := get(t, app.Router, tt.method, tt.target)
			assert.Equal(t, tt.status, res.StatusCode, string(body))
			assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
			assert.Equal(t, "nosniff", res.Header.Get("X-Content-Type-Options"))
		})
	}
}

func TestApplication_NotReadyBeforeLoad(t *testing.T) {
	app := newTestApp(t)

	res, _ := get(t, app.Router, http.MethodGet, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)

	res, body := get(t, app.Router, http.MethodGet, "/api/v1/overview")
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &problem))
	assert.Equal(t, "SERVICE_UNAVAILABLE", problem["error_code"])
}

func TestApplication_ReloadPurgesCache(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.Load(context.Background()))
	require.NotNil(t, app.Cache)

	res, _ := get(t, app.Router, http.MethodGet, "/api/v1/league")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Positive(t, app.Cache.Stats().Entries)

	res, body := get(t, app.Router, http.MethodPost, "/api/v1/reload")
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))
	assert.Zero(t, app.Cache.Stats().Entries)
}

func TestApplication_CacheDisabled(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.Cache.Enabled = false })
	require.NoError(t, app.Load(context.Background()))

	assert.Nil(t, app.Cache)
	res, _ := get(t, app.Router, http.MethodGet, "/api/v1/league")
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestApplication_Metrics(t *testing.T) {
	t.Run("prometheus", func(t *testing.T) {
		app := newTestApp(t)
		require.NoError(t, app.Load(context.Background()))
		get(t, app.Router, http.MethodGet, "/api/v1/overview")

		res, body := get(t, app.Router, http.MethodGet, "/metrics")
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, string(body), "bondscope_records_loaded")
		assert.Contains(t, string(body), "http_requests_total")
	})

	t.Run("otel disabled", func(t *testing.T) {
		app := newTestApp(t, func(c *config.Config) { c.OTel.Enabled = false })

		res, _ := get(t, app.Router, http.MethodGet, "/metrics")
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})
}

func TestApplication_LoadFailureKeepsServing(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.Data.PurchasesPath = "/nonexistent/purchases.csv" })

	assert.Error(t, app.Load(context.Background()))
	res, _ := get(t, app.Router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestApplication_Server(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.Server.Port = 18089 })

	assert.Equal(t, ":18089", app.Server.Addr)
	assert.Equal(t, app.Config.Server.MaxHeaderBytes, app.Server.MaxHeaderBytes)
	assert.NoError(t, app.Stop(context.Background()))
}
