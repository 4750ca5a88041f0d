package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apierrors "bondscope/internal/errors"
	"bondscope/internal/shared/testutil"
)

func TestMetricsHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	t.Run("delegates to exporter", func(t *testing.T) {
		exporter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("bondscope_records_loaded 7\n"))
		})
		rec := httptest.NewRecorder()
		NewMetricsHandler(exporter, errorHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "bondscope_records_loaded")
	})

	t.Run("disabled", func(t *testing.T) {
		rec, body := serve(t, NewMetricsHandler(nil, errorHandler), http.MethodGet, "/metrics")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "NOT_FOUND", body["error_code"])
	})
}
