// Package metrics holds the Prometheus collectors shared by the response
// cache, the list executor and the HTTP layer. A nil *Metrics is valid and
// records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "catalog"

// Metrics holds Prometheus metrics for the catalog service.
type Metrics struct {
	// Response cache
	cacheLookups *prometheus.CounterVec
	cacheStores  prometheus.Counter
	cacheErrors  *prometheus.CounterVec

	// List execution
	queryTotal    *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	enrichMisses  *prometheus.CounterVec

	// HTTP
	requestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "response_cache",
			Name:      "lookups_total",
			Help:      "Response cache lookups by result (hit, miss).",
		}, []string{"result"}),
		cacheStores: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "response_cache",
			Name:      "stores_total",
			Help:      "Response bodies written to the cache.",
		}),
		cacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "response_cache",
			Name:      "errors_total",
			Help:      "Backend failures by operation (load, store).",
		}, []string{"op"}),
		queryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "list",
			Name:      "queries_total",
			Help:      "List queries by entity and outcome (ok, error, timeout).",
		}, []string{"entity", "outcome"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "list",
			Name:      "query_duration_seconds",
			Help:      "Time spent fetching one page and its total.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"entity"}),
		enrichMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "list",
			Name:      "enrich_misses_total",
			Help:      "Related records that could not be resolved, by table.",
		}, []string{"table"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.cacheLookups, m.cacheStores, m.cacheErrors,
			m.queryTotal, m.queryDuration, m.enrichMisses,
			m.requestDuration,
		)
	}
	return m
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.cacheLookups.WithLabelValues("hit").Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) CacheStored() {
	if m != nil {
		m.cacheStores.Inc()
	}
}

// CacheError counts a backend failure for op.
func (m *Metrics) CacheError(op string) {
	if m != nil {
		m.cacheErrors.WithLabelValues(op).Inc()
	}
}

// Query records one list execution.
func (m *Metrics) Query(entity, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.queryTotal.WithLabelValues(entity, outcome).Inc()
	m.queryDuration.WithLabelValues(entity).Observe(d.Seconds())
}

func (m *Metrics) EnrichMiss(table string) {
	if m != nil {
		m.enrichMisses.WithLabelValues(table).Inc()
	}
}

// Request records one HTTP request.
func (m *Metrics) Request(method, route, status string, d time.Duration) {
	if m != nil {
		m.requestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
	}
}
