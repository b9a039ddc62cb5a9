package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Entitlement cache metric names
const (
	MetricNameCacheHits      = "flight_cache_hits_total"
	MetricNameCacheMisses    = "flight_cache_misses_total"
	MetricNameCacheEvictions = "flight_cache_evictions_total"
	MetricNameCacheSize      = "flight_cache_size"
	MetricNameWriteBackFails = "flight_cache_writeback_failures_total"
)

// Retry and breaker metric names
const (
	MetricNameRetryAttempts     = "storage_attempts_total"
	MetricNameRetryRetries      = "storage_retries_total"
	MetricNameRetrySuccessRetry = "storage_successful_retries_total"
	MetricNameRetryFailures     = "storage_failed_operations_total"
	MetricNameBreakerState      = "storage_circuit_breaker_state"
)

// Connection pool metric names
const (
	MetricNamePoolOpen     = "db_pool_open_connections"
	MetricNamePoolInUse    = "db_pool_in_use_connections"
	MetricNamePoolWaits    = "db_pool_waits_total"
	MetricNamePoolDiscards = "db_pool_discarded_connections_total"
)

// Flight metric names
const (
	MetricNameCountdownsActive = "flight_countdowns_active"
	MetricNameExpirations      = "flight_expirations_total"
	MetricNamePurchases        = "flight_purchases_total"
	MetricNameMoneySpent       = "flight_money_spent_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Entitlement cache help text
const (
	HelpTextCacheHits      = "Entitlement cache lookups that returned a value"
	HelpTextCacheMisses    = "Entitlement cache lookups that found nothing or an expired entry"
	HelpTextCacheEvictions = "Entries evicted because the cache was full"
	HelpTextCacheSize      = "Current number of cached entitlements"
	HelpTextWriteBackFails = "Asynchronous backend writes that failed and evicted their cache entry"
)

// Retry and breaker help text
const (
	HelpTextRetryAttempts     = "Storage operation attempts, including retries"
	HelpTextRetryRetries      = "Storage operation attempts that were retries"
	HelpTextRetrySuccessRetry = "Storage operations that succeeded after at least one retry"
	HelpTextRetryFailures     = "Storage operations that failed after exhausting retries or on a fatal error"
	HelpTextBreakerState      = "Circuit breaker state (0 closed, 1 half-open, 2 open)"
)

// Connection pool help text
const (
	HelpTextPoolOpen     = "Open pooled database connections"
	HelpTextPoolInUse    = "Pooled database connections currently borrowed"
	HelpTextPoolWaits    = "Times a caller had to wait for a free connection"
	HelpTextPoolDiscards = "Connections discarded after a failed liveness check"
)

// Flight help text
const (
	HelpTextCountdownsActive = "Players with an active flight countdown"
	HelpTextExpirations      = "Flight entitlements revoked on expiry"
	HelpTextPurchases        = "Flight purchases by kind"
	HelpTextMoneySpent       = "Total currency spent on flight purchases"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelOperation = "operation"
	LabelKind      = "kind"
	LabelBackend   = "backend"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds. These buckets range from 1ms to 10s.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
