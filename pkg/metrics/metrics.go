// Package metrics exposes Prometheus collectors for endpoint validation, the
// set of active endpoints and the HTTP API.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agentstation/mavroute/pkg/constants"
	"github.com/agentstation/mavroute/pkg/errors"
)

// Metrics holds the registered collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// Rejections counts endpoint inputs that failed validation, by reason.
	Rejections *prometheus.CounterVec

	// Active gauges the endpoints currently held by a registry, by kind.
	Active *prometheus.GaugeVec

	// Requests counts API requests by method, route pattern and status code.
	Requests *prometheus.CounterVec
}

// New registers the collectors with reg. A nil reg creates unregistered
// collectors, which is handy in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "endpoint_rejections_total",
			Help:      "Total number of endpoint definitions rejected during validation",
		}, []string{"reason"}),
		Active: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "endpoints_active",
			Help:      "Number of endpoints currently registered",
		}, []string{"kind"}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of API requests handled",
		}, []string{"method", "route", "code"}),
	}
}

// ObserveRejection increments the rejection counter under errors.Reason(err).
// Nil errors are ignored.
func (m *Metrics) ObserveRejection(err error) {
	if m == nil || err == nil {
		return
	}
	m.Rejections.WithLabelValues(errors.Reason(err)).Inc()
}

// SetActive records n active endpoints of kind.
func (m *Metrics) SetActive(kind string, n int) {
	if m == nil {
		return
	}
	m.Active.WithLabelValues(kind).Set(float64(n))
}

// ObserveRequest counts one API request. route should be the matched pattern,
// never the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, code int) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}
