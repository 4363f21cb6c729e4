// Package observability exposes Prometheus metrics for the Hops dispatcher.
//
// Metrics implements both solve.Recorder and router.Recorder, so one value
// can be handed to the engine and the dispatcher:
//
//	m := observability.NewMetrics(prometheus.NewRegistry())
//	engine := solve.New(func(o *solve.Options) { o.Recorder = m })
//	d := router.New(reg, engine, func(o *router.Options) { o.Recorder = m })
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hops"

// Metrics holds the dispatcher's collectors.
type Metrics struct {
	gatherer prometheus.Gatherer

	// solveDuration measures handler solves.
	// Labels: uri (declared component uri), outcome (success or error code)
	solveDuration *prometheus.HistogramVec
	// solvesTotal counts solves.
	// Labels: uri, outcome
	solvesTotal *prometheus.CounterVec
	// requestsTotal counts dispatched requests.
	// Labels: route (router.Route name), status (HTTP status code)
	requestsTotal *prometheus.CounterVec
	// requestDuration measures dispatch latency including the solve.
	// Labels: route
	requestDuration *prometheus.HistogramVec
	// components is the number of registered components.
	components prometheus.Gauge
}

// NewMetrics registers the collectors on reg. A nil reg uses a fresh
// prometheus.Registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		solveDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solve",
			Name:      "duration_seconds",
			Help:      "Solve latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"uri", "outcome"}),
		solvesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solve",
			Name:      "total",
			Help:      "Total solves by component and outcome",
		}, []string{"uri", "outcome"}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "requests_total",
			Help:      "Total dispatched requests by route and status",
		}, []string{"route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "request_duration_seconds",
			Help:      "Dispatch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		components: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "components",
			Help:      "Number of registered components",
		}),
	}
}

// ObserveSolve records one finished solve.
func (m *Metrics) ObserveSolve(uri, outcome string, d time.Duration) {
	m.solvesTotal.WithLabelValues(uri, outcome).Inc()
	m.solveDuration.WithLabelValues(uri, outcome).Observe(d.Seconds())
}

// ObserveRequest records one dispatched request.
func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// SetComponents records the registry size.
func (m *Metrics) SetComponents(n int) {
	m.components.Set(float64(n))
}

// Handler serves the collected metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
