// Package metrics exposes Prometheus collectors for query resolution and HTTP traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aliskhannn/lwopan/internal/domain/entities"
	"github.com/aliskhannn/lwopan/internal/service"
)

const namespace = "lwopan"

// Metrics holds the collectors registered for one process.
type Metrics struct {
	resolutions        *prometheus.CounterVec
	resolutionDuration *prometheus.HistogramVec
	httpRequests       *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Resolved queries by intent and outcome",
		}, []string{"intent", "outcome"}),
		resolutionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolution_duration_seconds",
			Help:      "Time spent resolving a query",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"intent"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}
}

// ObserveResolution implements service.Recorder.
func (m *Metrics) ObserveResolution(intent entities.Intent, outcome service.Outcome, elapsed time.Duration) {
	m.resolutions.WithLabelValues(string(intent), string(outcome)).Inc()
	m.resolutionDuration.WithLabelValues(string(intent)).Observe(elapsed.Seconds())
}

// ObserveRequest counts one served HTTP request.
func (m *Metrics) ObserveRequest(route string, code int) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
