package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/ormawa-api/internal/models"
	"github.com/noah-isme/ormawa-api/pkg/jobs"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec

	statusTransitions *prometheus.CounterVec
	revalidations     *prometheus.CounterVec
	orphansPruned     prometheus.Counter
	uploads           *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	dbQueryCount         uint64
	dbQueryDurationTotal uint64
	transitionCount      uint64
	revalidationCount    uint64
	orphanCount          uint64

	queuesMu sync.RWMutex
	queues   map[string]func() jobs.Stats
}

// NewMetricsService registers core and domain Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{Name: "cache_hits_total", Help: "Total cache hits"})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{Name: "cache_misses_total", Help: "Total cache misses"})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	statusTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "work_item_status_transitions_total",
		Help: "Work item status changes by kind and target status",
	}, []string{"kind", "status"})

	revalidations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "page_revalidations_total",
		Help: "Public page revalidation signals by path",
	}, []string{"path"})

	orphansPruned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "media_orphans_pruned_total",
		Help: "Pending media rows removed by the reconciler",
	})

	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "media_uploads_total",
		Help: "Media uploads by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		dbQueryDuration, statusTransitions, revalidations, orphansPruned, uploads, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		cacheLatency:      cacheLatency,
		cacheWrite:        cacheWrite,
		cacheHitRatio:     cacheHitRatio,
		cacheHits:         cacheHits,
		cacheMisses:       cacheMisses,
		dbQueryDuration:   dbQueryDuration,
		statusTransitions: statusTransitions,
		revalidations:     revalidations,
		orphansPruned:     orphansPruned,
		uploads:           uploads,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordStatusTransition counts a work item moving to status.
func (m *MetricsService) RecordStatusTransition(kind models.WorkKind, status models.WorkStatus) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(string(kind), string(status)).Inc()
	atomic.AddUint64(&m.transitionCount, 1)
}

// RecordRevalidation counts a page revalidation signal.
func (m *MetricsService) RecordRevalidation(path string) {
	if m == nil {
		return
	}
	m.revalidations.WithLabelValues(path).Inc()
	atomic.AddUint64(&m.revalidationCount, 1)
}

// RecordOrphanPruned counts a stale pending upload removed by the reconciler.
func (m *MetricsService) RecordOrphanPruned() {
	if m == nil {
		return
	}
	m.orphansPruned.Inc()
	atomic.AddUint64(&m.orphanCount, 1)
}

// RecordUpload counts an upload attempt by outcome (ready, failed, orphaned).
func (m *MetricsService) RecordUpload(outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
}

// Snapshot returns aggregated metrics for the admin dashboard.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	dbCount := atomic.LoadUint64(&m.dbQueryCount)
	dbDuration := atomic.LoadUint64(&m.dbQueryDurationTotal)

	var cacheRatio float64
	if totalLookups := hits + misses; totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgDBMs float64
	if dbCount > 0 {
		avgDBMs = float64(dbDuration) / float64(dbCount) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		DBQueryCount:             dbCount,
		AverageDBQueryDurationMs: avgDBMs,
		StatusTransitions:        atomic.LoadUint64(&m.transitionCount),
		Revalidations:            atomic.LoadUint64(&m.revalidationCount),
		OrphansPruned:            atomic.LoadUint64(&m.orphanCount),
		Queues:                   m.queueSnapshot(),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

// TrackQueue exports the counters of a named job queue. Tracking the same
// name again replaces its source.
func (m *MetricsService) TrackQueue(name string, stats func() jobs.Stats) {
	if m == nil || stats == nil {
		return
	}
	m.queuesMu.Lock()
	defer m.queuesMu.Unlock()
	if m.queues == nil {
		m.queues = make(map[string]func() jobs.Stats)
	}
	_, known := m.queues[name]
	m.queues[name] = stats
	if known {
		return
	}

	labels := prometheus.Labels{"queue": name}
	counter := func(metric, help string, pick func(jobs.Stats) int64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{Name: metric, Help: help, ConstLabels: labels}, func() float64 {
			return float64(pick(m.queueStats(name)))
		})
	}
	m.registry.MustRegister(
		counter("job_queue_succeeded_total", "Jobs completed by queue", func(s jobs.Stats) int64 { return s.Succeeded }),
		counter("job_queue_retried_total", "Job retries by queue", func(s jobs.Stats) int64 { return s.Retried }),
		counter("job_queue_dropped_total", "Jobs dropped after the last retry by queue", func(s jobs.Stats) int64 { return s.Dropped }),
	)
}

func (m *MetricsService) queueStats(name string) jobs.Stats {
	m.queuesMu.RLock()
	stats := m.queues[name]
	m.queuesMu.RUnlock()
	if stats == nil {
		return jobs.Stats{}
	}
	return stats()
}

func (m *MetricsService) queueSnapshot() map[string]models.QueueStats {
	m.queuesMu.RLock()
	names := make([]string, 0, len(m.queues))
	for name := range m.queues {
		names = append(names, name)
	}
	m.queuesMu.RUnlock()
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]models.QueueStats, len(names))
	for _, name := range names {
		s := m.queueStats(name)
		out[name] = models.QueueStats{Succeeded: s.Succeeded, Retried: s.Retried, Dropped: s.Dropped}
	}
	return out
}
