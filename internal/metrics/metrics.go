package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Entitlement Cache Metrics
var (
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCacheHits,
			Help: HelpTextCacheHits,
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCacheMisses,
			Help: HelpTextCacheMisses,
		},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCacheEvictions,
			Help: HelpTextCacheEvictions,
		},
	)

	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameCacheSize,
			Help: HelpTextCacheSize,
		},
	)

	WriteBackFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameWriteBackFails,
			Help: HelpTextWriteBackFails,
		},
	)
)

// Retry Metrics
var (
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRetryAttempts,
			Help: HelpTextRetryAttempts,
		},
		[]string{LabelOperation},
	)

	RetryRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRetryRetries,
			Help: HelpTextRetryRetries,
		},
		[]string{LabelOperation},
	)

	RetrySuccessfulRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRetrySuccessRetry,
			Help: HelpTextRetrySuccessRetry,
		},
		[]string{LabelOperation},
	)

	RetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRetryFailures,
			Help: HelpTextRetryFailures,
		},
		[]string{LabelOperation},
	)

	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameBreakerState,
			Help: HelpTextBreakerState,
		},
	)
)

// Connection Pool Metrics
var (
	PoolOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNamePoolOpen,
			Help: HelpTextPoolOpen,
		},
	)

	PoolInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNamePoolInUse,
			Help: HelpTextPoolInUse,
		},
	)

	PoolWaits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePoolWaits,
			Help: HelpTextPoolWaits,
		},
	)

	PoolDiscards = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePoolDiscards,
			Help: HelpTextPoolDiscards,
		},
	)
)

// Flight Metrics
var (
	CountdownsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameCountdownsActive,
			Help: HelpTextCountdownsActive,
		},
	)

	Expirations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameExpirations,
			Help: HelpTextExpirations,
		},
	)

	Purchases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePurchases,
			Help: HelpTextPurchases,
		},
		[]string{LabelKind},
	)

	MoneySpent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameMoneySpent,
			Help: HelpTextMoneySpent,
		},
	)
)
