package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the graph pipeline.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Aggregation metrics
	Aggregations        prometheus.Counter
	AggregationFailures prometheus.Counter
	AggregationDuration prometheus.Histogram
	PayloadNodes        prometheus.Gauge
	PayloadEdges        prometheus.Gauge
	DroppedEdges        prometheus.Counter

	// Cache metrics
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	CacheInvalidations prometheus.Counter
}

// NewCollector creates a metrics collector with its own registry under the
// given namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Aggregations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "aggregations_total",
				Help:      "Total number of graph payload aggregations",
			},
		),
		AggregationFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "aggregation_failures_total",
				Help:      "Total number of failed graph payload aggregations",
			},
		),
		AggregationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "aggregation_duration_seconds",
				Help:      "Graph payload aggregation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		PayloadNodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "payload_nodes",
				Help:      "Node count of the most recently assembled payload",
			},
		),
		PayloadEdges: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "payload_edges",
				Help:      "Edge count of the most recently assembled payload",
			},
		),
		DroppedEdges: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dropped_edges_total",
				Help:      "Total number of edges dropped during aggregation",
			},
		),
		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of payload cache hits",
			},
		),
		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of payload cache misses",
			},
		),
		CacheInvalidations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_invalidations_total",
				Help:      "Total number of payload cache invalidations",
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Aggregations,
		c.AggregationFailures,
		c.AggregationDuration,
		c.PayloadNodes,
		c.PayloadEdges,
		c.DroppedEdges,
		c.CacheHits,
		c.CacheMisses,
		c.CacheInvalidations,
	)

	return c
}

// CacheHit records a payload cache hit. Satisfies the cache's Recorder port.
func (c *Collector) CacheHit() {
	c.CacheHits.Inc()
}

// CacheMiss records a payload cache miss.
func (c *Collector) CacheMiss() {
	c.CacheMisses.Inc()
}

// ObserveAggregation records one aggregation pass.
func (c *Collector) ObserveAggregation(d time.Duration, nodes, edges, dropped int, failed bool) {
	c.Aggregations.Inc()
	if failed {
		c.AggregationFailures.Inc()
		return
	}
	c.AggregationDuration.Observe(d.Seconds())
	c.PayloadNodes.Set(float64(nodes))
	c.PayloadEdges.Set(float64(edges))
	c.DroppedEdges.Add(float64(dropped))
}

// Handler exposes the collector's registry for the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
