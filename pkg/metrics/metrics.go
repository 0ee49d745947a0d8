// Package metrics exposes Prometheus metrics for the ingestion and
// indexing engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nexus"

// Manager owns every metric of the engine.
type Manager struct {
	// Harvest metrics
	pagesFetched    prometheus.Counter
	pageRetries     prometheus.Counter
	pagesFailed     prometheus.Counter
	harvestDuration *prometheus.HistogramVec
	recordsTotal    *prometheus.GaugeVec

	// Index metrics
	indexBuildDuration *prometheus.HistogramVec
	indexSize          *prometheus.GaugeVec
	lookupFallbacks    prometheus.Counter

	// Cache metrics
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	// Readiness
	ready prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func newManager(reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)
	return &Manager{
		pagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "pages_fetched_total",
			Help: "Pages fetched successfully from the source.",
		}),
		pageRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "page_retries_total",
			Help: "Page fetch attempts that failed and were retried.",
		}),
		pagesFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "pages_failed_total",
			Help: "Pages dropped after exhausting retries.",
		}),
		harvestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "harvest_duration_seconds",
			Help:    "Wall time of one collection harvest.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}, []string{"collection"}),
		recordsTotal: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "records_total",
			Help: "Records in the current in-memory snapshot.",
		}, []string{"collection"}),
		indexBuildDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "index_build_duration_seconds",
			Help:    "Wall time of one derived index build.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"index"}),
		indexSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "index_size",
			Help: "Entries in each derived index.",
		}, []string{"index"}),
		lookupFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rank_lookup_fallbacks_total",
			Help: "Rank lookups answered with a nearest-rank fallback.",
		}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_hits_total",
			Help: "Snapshot loads served from the disk cache.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_misses_total",
			Help: "Snapshot loads that fell through to a full harvest.",
		}),
		ready: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "ready",
			Help: "1 once the first harvest-and-build cycle has completed.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by endpoint and status.",
		}, []string{"endpoint", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency by endpoint.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

var defaultManager = newManager(prometheus.DefaultRegisterer)

// Harvest helpers.
func RecordPageFetched() { defaultManager.pagesFetched.Inc() }
func RecordPageRetry()   { defaultManager.pageRetries.Inc() }
func RecordPageFailed()  { defaultManager.pagesFailed.Inc() }

func ObserveHarvestDuration(collection string, d time.Duration) {
	defaultManager.harvestDuration.WithLabelValues(collection).Observe(d.Seconds())
}

func UpdateRecords(collection string, n int) {
	defaultManager.recordsTotal.WithLabelValues(collection).Set(float64(n))
}

// Index helpers.
func ObserveIndexBuild(index string, d time.Duration) {
	defaultManager.indexBuildDuration.WithLabelValues(index).Observe(d.Seconds())
}

func UpdateIndexSize(index string, n int) {
	defaultManager.indexSize.WithLabelValues(index).Set(float64(n))
}

func RecordLookupFallback() { defaultManager.lookupFallbacks.Inc() }

// Cache helpers.
func RecordCacheHit()  { defaultManager.cacheHits.Inc() }
func RecordCacheMiss() { defaultManager.cacheMisses.Inc() }

// UpdateReady flips the readiness gauge.
func UpdateReady(ready bool) {
	if ready {
		defaultManager.ready.Set(1)
		return
	}
	defaultManager.ready.Set(0)
}

// HTTP helpers.
func RecordHTTPRequest(endpoint string, status int) {
	defaultManager.httpRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

func ObserveHTTPDuration(endpoint string, d time.Duration) {
	defaultManager.httpRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}
