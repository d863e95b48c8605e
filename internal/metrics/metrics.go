// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KaramelBytes/spendboard/internal/memo"
)

const namespace = "spendboard"

// Collectors groups the application metrics behind a private registry. A nil
// *Collectors is valid and records nothing.
type Collectors struct {
	Registry *prometheus.Registry

	lookups        *prometheus.CounterVec
	renders        *prometheus.CounterVec
	renderDuration prometheus.Histogram
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// New registers the collectors together with the Go runtime collectors.
func New() *Collectors {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Collectors{
		Registry: reg,
		lookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Table and model cache lookups by outcome.",
		}, []string{"cache", "outcome"}),
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Dashboard renders by result.",
		}, []string{"result"}),
		renderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time to build the dashboard page.",
			Buckets:   prometheus.DefBuckets,
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		requestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

var _ memo.Recorder = (*Collectors)(nil)

// ObserveLookup implements memo.Recorder.
func (c *Collectors) ObserveLookup(cache string, outcome memo.Outcome) {
	if c == nil {
		return
	}
	c.lookups.WithLabelValues(cache, string(outcome)).Inc()
}

// ObserveRender records one dashboard render.
func (c *Collectors) ObserveRender(d time.Duration, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "fatal"
	}
	c.renders.WithLabelValues(result).Inc()
	c.renderDuration.Observe(d.Seconds())
}

// ObserveRequest records one served HTTP request.
func (c *Collectors) ObserveRequest(method, route string, code int, d time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	c.requestLatency.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in the prometheus text format.
func (c *Collectors) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})
}
