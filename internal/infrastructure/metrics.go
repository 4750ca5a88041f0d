package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AnalysisMetrics are the instruments recorded by the analysis service,
// the result cache and the HTTP layer.
type AnalysisMetrics struct {
	OperationsTotal   metric.Int64Counter
	OperationDuration metric.Float64Histogram
	CacheHits         metric.Int64Counter
	CacheMisses       metric.Int64Counter
	RecordsLoaded     metric.Int64Gauge

	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter
}

// NewAnalysisMetrics creates the instruments on meter.
func NewAnalysisMetrics(meter metric.Meter) (*AnalysisMetrics, error) {
	var (
		m   AnalysisMetrics
		err error
	)

	if m.OperationsTotal, err = meter.Int64Counter(
		"bondscope_analysis_operations_total",
		metric.WithDescription("Analysis operations served, by operation and outcome"),
	); err != nil {
		return nil, err
	}
	if m.OperationDuration, err = meter.Float64Histogram(
		"bondscope_analysis_duration_seconds",
		metric.WithDescription("Analysis operation duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.CacheHits, err = meter.Int64Counter(
		"bondscope_cache_hits_total",
		metric.WithDescription("Analysis results served from the cache"),
	); err != nil {
		return nil, err
	}
	if m.CacheMisses, err = meter.Int64Counter(
		"bondscope_cache_misses_total",
		metric.WithDescription("Analysis results computed on a cache miss"),
	); err != nil {
		return nil, err
	}
	if m.RecordsLoaded, err = meter.Int64Gauge(
		"bondscope_records_loaded",
		metric.WithDescription("Normalized records held in memory, by table"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordOperation counts one analysis call and its latency.
func (m *AnalysisMetrics) RecordOperation(ctx context.Context, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	m.OperationsTotal.Add(ctx, 1, attrs)
	m.OperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCacheLookup counts a cache hit or miss for fn.
func (m *AnalysisMetrics) RecordCacheLookup(ctx context.Context, fn string, hit bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("fn", fn))
	if hit {
		m.CacheHits.Add(ctx, 1, attrs)
		return
	}
	m.CacheMisses.Add(ctx, 1, attrs)
}

// RecordLoad sets the in-memory record count for table.
func (m *AnalysisMetrics) RecordLoad(ctx context.Context, table string, records int) {
	if m == nil {
		return
	}
	m.RecordsLoaded.Record(ctx, int64(records), metric.WithAttributes(attribute.String("table", table)))
}
