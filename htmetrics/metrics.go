// Package htmetrics collects per-host, per-method, per-status counters
// and latency histograms for outgoing requests, in the style of
// nabbar-golib/prometheus/metrics' named-metric registration but backed
// directly by client_golang's CounterVec/HistogramVec rather than a
// custom metric-type wrapper.
package htmetrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nabbar/htcore/htreq"
)

// Collector tracks request counts, in-flight gauges, and latency
// histograms, all registered on its own prometheus.Registry so a process
// embedding this module never collides with its own default registry.
type Collector struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	inFlight *prometheus.GaugeVec
	duration *prometheus.HistogramVec
}

// New builds a Collector and registers its metrics on a fresh Registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "htclient_requests_total",
			Help: "Total requests sent, by host, method, and status class.",
		}, []string{"host", "method", "status_class"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "htclient_requests_in_flight",
			Help: "Requests currently in flight, by host.",
		}, []string{"host"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "htclient_request_duration_seconds",
			Help:    "Request latency in seconds, by host and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"host", "method"}),
	}
	c.registry.MustRegister(c.requests, c.inFlight, c.duration)
	return c
}

// Registry exposes the underlying registry, e.g. for promhttp.HandlerFor.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Begin marks a request as in flight and returns the func a caller must
// defer to mark it complete and record its outcome.
func (c *Collector) Begin(req htreq.Request) func(resp htreq.Response) {
	host := req.Host()
	c.inFlight.WithLabelValues(host).Inc()
	return func(resp htreq.Response) {
		c.inFlight.WithLabelValues(host).Dec()
		c.requests.WithLabelValues(host, string(req.Method()), statusClass(resp)).Inc()
		c.duration.WithLabelValues(host, string(req.Method())).Observe(resp.Elapsed.Seconds())
	}
}

func statusClass(resp htreq.Response) string {
	if resp.Err != nil {
		return "error"
	}
	if resp.Status == 0 {
		return "unknown"
	}
	return strconv.Itoa(resp.Status/100) + "xx"
}
