package errors

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ErrorMiddleware writes one access log line per request and turns panics
// into 500 problems.
type ErrorMiddleware struct {
	handler *ErrorHandler
	logger  *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(handler *ErrorHandler, logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		handler: handler,
		logger:  logger.With(slog.String("component", "error_middleware")),
	}
}

// Handler returns the middleware handler function
func (m *ErrorMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		panicked := false

		defer func() {
			if rec := recover(); rec != nil {
				panicked = true
				m.handler.HandlePanic(ww, r, rec)
			}
			m.access(r, ww, time.Since(start), panicked)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (m *ErrorMiddleware) access(r *http.Request, ww middleware.WrapResponseWriter, elapsed time.Duration, panicked bool) {
	status := ww.Status()
	if status == 0 {
		// nothing written; net/http sends 200
		status = http.StatusOK
	}

	level := slog.LevelInfo
	switch {
	case status >= http.StatusInternalServerError:
		level = slog.LevelError
	case status >= http.StatusBadRequest:
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Duration("duration", elapsed),
		slog.Int("bytes", ww.BytesWritten()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			attrs = append(attrs, slog.String("route", pattern))
		}
	}
	if r.URL.RawQuery != "" {
		attrs = append(attrs, slog.String("query", r.URL.RawQuery))
	}
	if panicked {
		attrs = append(attrs, slog.Bool("panic", true))
	}
	m.logger.LogAttrs(r.Context(), level, "http request", attrs...)
}
