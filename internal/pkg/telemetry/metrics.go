package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Data freshness
	MetricCacheFreshness = "elevation.cache_age_seconds"
	MetricPeakDatasetAge = "peaks.dataset_age_seconds"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricClearSightlines = "business.clear_sightlines_found"
	MetricBatchRuns       = "business.batch_runs_completed"
)
