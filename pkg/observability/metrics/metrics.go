// Package metrics implements the observability hooks with Prometheus
// collectors.
//
//	m := metrics.New(prometheus.NewRegistry())
//	m.Install()
//	http.Handle("/metrics", m.Handler())
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	errs "github.com/matzehuels/graphbridge/pkg/errors"
	"github.com/matzehuels/graphbridge/pkg/observability"
)

const namespace = "graphbridge"

// Metrics holds the collectors. Its methods satisfy every hook interface
// in the observability package.
type Metrics struct {
	gatherer prometheus.Gatherer

	nodeOps       *prometheus.CounterVec
	nodeDuration  *prometheus.HistogramVec
	nodesListed   prometheus.Histogram
	lookupFailed  *prometheus.CounterVec
	storeOps      *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
	storeBytes    *prometheus.CounterVec
	cacheEvents   *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	httpInFlight  prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,

		nodeOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_operations_total",
			Help:      "Node add and remove requests by operation and result code",
		}, []string{"operation", "result"}),
		nodeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "node_operation_duration_seconds",
			Help:      "Node add and remove latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}, []string{"operation"}),
		nodesListed: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "nodes_listed",
			Help:      "Number of nodes returned per listing",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),
		lookupFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_failures_total",
			Help:      "Unresolved node or definition lookups by error code",
		}, []string{"code"}),
		storeOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Module store reads and writes by backend, operation and result code",
		}, []string{"backend", "operation", "result"}),
		storeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Module store latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"backend", "operation"}),
		storeBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_bytes_total",
			Help:      "Bytes moved through module stores",
		}, []string{"backend", "operation"}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Render cache events by key type and event",
		}, []string{"key_type", "event"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP responses by method and status",
		}, []string{"method", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served",
		}),
	}
}

// Install registers m as the process-wide graph, store, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetGraphHooks(m)
	observability.SetStoreHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// result labels an outcome by error code, "ok" on success.
func result(err error) string {
	if err == nil {
		return "ok"
	}
	return string(errs.GetCode(err))
}

func (m *Metrics) OnNodesListed(_ string, count int, _ time.Duration) {
	m.nodesListed.Observe(float64(count))
}

func (m *Metrics) OnNodeAdded(_, _ string, d time.Duration, err error) {
	m.nodeOps.WithLabelValues("add", result(err)).Inc()
	m.nodeDuration.WithLabelValues("add").Observe(d.Seconds())
}

func (m *Metrics) OnNodeRemoved(_, _ string, d time.Duration, err error) {
	m.nodeOps.WithLabelValues("remove", result(err)).Inc()
	m.nodeDuration.WithLabelValues("remove").Observe(d.Seconds())
}

func (m *Metrics) OnLookupFailed(_ string, err error) {
	m.lookupFailed.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) OnLoad(_ context.Context, backend, _ string, size int, d time.Duration, err error) {
	m.observeStore(backend, "load", size, d, err)
}

func (m *Metrics) OnSave(_ context.Context, backend, _ string, size int, d time.Duration, err error) {
	m.observeStore(backend, "save", size, d, err)
}

func (m *Metrics) observeStore(backend, op string, size int, d time.Duration, err error) {
	m.storeOps.WithLabelValues(backend, op, result(err)).Inc()
	m.storeDuration.WithLabelValues(backend, op).Observe(d.Seconds())
	if err == nil {
		m.storeBytes.WithLabelValues(backend, op).Add(float64(size))
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.httpInFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, _ string, status int, d time.Duration) {
	m.httpInFlight.Dec()
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method).Observe(d.Seconds())
}

var (
	_ observability.GraphHooks = (*Metrics)(nil)
	_ observability.StoreHooks = (*Metrics)(nil)
	_ observability.CacheHooks = (*Metrics)(nil)
	_ observability.HTTPHooks  = (*Metrics)(nil)
)
