// Package app wires the bondscope server together.
//
// New builds, in order: OpenTelemetry providers and the analysis metrics,
// the optional result cache, the analysis and health services, the chi
// router with its middleware chain and the http.Server. Start performs the
// initial dataset load and begins serving; a failed load leaves the server
// running but not ready, and POST /api/v1/reload retries it. Run blocks until
// SIGINT or SIGTERM and then shuts down gracefully.
//
// Middleware order is RequestID, error middleware (access log and panic
// recovery), OTel HTTP metrics, security headers, CORS and the rate limiter.
// API routes additionally get JSON content negotiation and a request timeout.
package app
