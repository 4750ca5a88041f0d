package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondscope/internal/shared/testutil"
)

func newRequest(path string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	ctx := context.WithValue(r.Context(), middleware.RequestIDKey, "req-1")
	return r.WithContext(ctx)
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantLevel  slog.Level
	}{
		{
			name:       "deadline exceeded",
			err:        fmt.Errorf("load: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantLevel:  slog.LevelError,
		},
		{
			name:       "api error",
			err:        DonorNotFoundError("X", nil),
			wantStatus: http.StatusNotFound,
			wantType:   TypeDonorNotFound,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "wrapped app parsing error",
			err:        fmt.Errorf("load purchases: %w", NewParsingError("unsupported table format", nil)),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDataParsing,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "app storage error",
			err:        NewStorageError("open /srv/data/p.xlsx", nil),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantLevel:  slog.LevelError,
		},
		{
			name:       "wrapped empty error",
			err:        fmt.Errorf("donor stats: %w", NewEmptyError("No records to compute donor statistics", nil)),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeEmptyDataset,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "not found error",
			err:        NewNotFoundError("metrics exporter", nil),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "untyped text is not classified",
			err:        fmt.Errorf("donor not found: empty range"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantLevel:  slog.LevelError,
		},
		{
			name:       "unknown",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantLevel:  slog.LevelError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			w := httptest.NewRecorder()
			handler.HandleError(w, newRequest("/api/v1/donors/X"), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, "req-1", body["trace_id"])
			assert.Equal(t, "/api/v1/donors/X", body["instance"])
			testutil.AssertLogContains(t, logs, tt.wantLevel, "request failed")
			testutil.AssertLogAttr(t, logs, "component", "error_handler")
		})
	}
}

func TestErrorHandler_HandleError_Nil(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	w := httptest.NewRecorder()

	NewErrorHandler(logger, false).HandleError(w, newRequest("/"), nil)

	assert.Zero(t, w.Body.Len())
	assert.Zero(t, logs.Count())
}

func TestErrorHandler_AppErrorHidesInternalDetail(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	p := h.ErrorToProblem(NewStorageError("open /srv/data/p.xlsx", nil).WithContext("path", "/srv/data/p.xlsx"), newRequest("/"))
	assert.NotContains(t, p.Detail, "/srv/data")
	assert.NotContains(t, p.Extensions, "context")

	p = h.ErrorToProblem(NewAppValidationError("bad column").WithContext("column", "Amount"), newRequest("/"))
	assert.Equal(t, "bad column", p.Detail)
	assert.Equal(t, "VALIDATION", p.Extensions["error_type"])
	assert.Equal(t, "VALIDATION_FAILED", p.Extensions["error_code"])
	assert.Equal(t, map[string]interface{}{"column": "Amount"}, p.Extensions["context"])
}

func TestErrorHandler_StackOnlyWhenEnabled(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	w := httptest.NewRecorder()
	NewErrorHandler(logger, true).HandleError(w, newRequest("/"), fmt.Errorf("boom"))
	assert.Contains(t, decodeProblem(t, w), "stack")

	w = httptest.NewRecorder()
	NewErrorHandler(logger, false).HandleError(w, newRequest("/"), fmt.Errorf("boom"))
	assert.NotContains(t, decodeProblem(t, w), "stack")
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	w := httptest.NewRecorder()

	NewErrorHandler(logger, true).HandlePanic(w, newRequest("/api/v1/league"), "nil map")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, "nil map", body["panic"])
	testutil.AssertLogContains(t, logs, slog.LevelError, "panic recovered")
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	h.NotFound(w, newRequest("/nope"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, w)["type"])

	w = httptest.NewRecorder()
	r := newRequest("/api/v1/league")
	r.Method = http.MethodPut
	h.MethodNotAllowed(w, r)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method PUT is not allowed for this endpoint", decodeProblem(t, w)["detail"])
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	p := NewProblemDetails(http.StatusUnprocessableEntity, TypeEmptyDataset, "Empty Dataset", "", "/x").
		WithExtension("error_code", "EMPTY_DATASET").
		WithExtension("status", "ignored")

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, float64(422), body["status"])
	assert.Equal(t, "EMPTY_DATASET", body["error_code"])
	assert.NotContains(t, body, "detail")
}
