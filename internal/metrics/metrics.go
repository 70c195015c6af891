// Package metrics defines the Prometheus instruments exported at /metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Classification outcomes
const (
	OutcomeClassified = "classified"
	OutcomeFallback   = "fallback"
)

// Metrics holds all Prometheus instruments for the service.
type Metrics struct {
	HTTPRequestsTotal       *prometheus.CounterVec
	ClassificationsTotal    *prometheus.CounterVec
	ComplaintsFiledTotal    *prometheus.CounterVec
	ValidationFailuresTotal *prometheus.CounterVec
	IntakeSessionsStarted   *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the instruments and registers them on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grievance_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status"}),
		ClassificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grievance_classifications_total",
			Help: "Priority classifications by outcome.",
		}, []string{"department", "outcome"}),
		ComplaintsFiledTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grievance_complaints_filed_total",
			Help: "Complaints filed through the intake wizard.",
		}, []string{"department", "priority"}),
		ValidationFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grievance_validation_failures_total",
			Help: "Rejected wizard answers.",
		}, []string{"department", "question"}),
		IntakeSessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grievance_intake_sessions_started_total",
			Help: "Intake sessions started or restarted.",
		}, []string{"department", "language"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.ClassificationsTotal,
		m.ComplaintsFiledTotal,
		m.ValidationFailuresTotal,
		m.IntakeSessionsStarted,
	)
	return m
}

// NewNop returns instruments registered on a private registry, for tests
// and tools that do not export metrics.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveRequest counts one served HTTP request.
func (m *Metrics) ObserveRequest(method, pathPattern string, status int) {
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, strconv.Itoa(status)).Inc()
}
