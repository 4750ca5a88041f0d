// Package infrastructure wires process-level concerns: the slog logger with
// trace ID injection, OpenTelemetry providers with an optional Prometheus
// registry, and the AnalysisMetrics instruments shared by the service,
// cache and HTTP layers.
package infrastructure
