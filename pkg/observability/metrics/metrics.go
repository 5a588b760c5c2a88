// Package metrics exposes console metrics in the Prometheus text format.
//
// A Collector owns its registry so that several can coexist in one process
// (tests build one per case). All methods are safe on a nil *Collector.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eyecare_console"

type Collector struct {
	registry *prometheus.Registry

	apiRequests    *prometheus.CounterVec
	apiLatency     *prometheus.HistogramVec
	breakerState   *prometheus.GaugeVec
	storeOps       *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	activityEvents *prometheus.CounterVec
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "clinic_api",
			Name:      "requests_total",
			Help:      "Outbound clinic API requests by endpoint and outcome.",
		}, []string{"method", "endpoint", "outcome"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "clinic_api",
			Name:      "request_duration_seconds",
			Help:      "Outbound clinic API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "clinic_api",
			Name:      "breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open).",
		}, []string{"breaker"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "local_store",
			Name:      "operations_total",
			Help:      "Local patient store operations by kind and result.",
		}, []string{"op", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Console HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Console HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		activityEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "activity",
			Name:      "events_total",
			Help:      "Activity events recorded by kind and result.",
		}, []string{"kind", "result"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.apiRequests,
		c.apiLatency,
		c.breakerState,
		c.storeOps,
		c.httpRequests,
		c.httpLatency,
		c.activityEvents,
	)
	return c
}

// Registry is exposed for tests and for callers that add their own collectors.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveAPIRequest(method, endpoint, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.apiRequests.WithLabelValues(method, endpoint, outcome).Inc()
	c.apiLatency.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

func (c *Collector) SetBreakerState(name string, state int) {
	if c == nil {
		return
	}
	c.breakerState.WithLabelValues(name).Set(float64(state))
}

func (c *Collector) ObserveStoreOp(op string, err error) {
	if c == nil {
		return
	}
	c.storeOps.WithLabelValues(op, result(err)).Inc()
}

func (c *Collector) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (c *Collector) ObserveActivity(kind string, err error) {
	if c == nil {
		return
	}
	c.activityEvents.WithLabelValues(kind, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
