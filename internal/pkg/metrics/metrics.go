// Package metrics registers the Prometheus collectors of the API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, route and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eloan_http_requests_total",
			Help: "Total HTTP requests handled by the E-Loan API",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and route
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eloan_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// LoanTransitionsTotal counts workflow transitions by action and outcome
	LoanTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eloan_loan_transitions_total",
			Help: "Loan status transitions by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	// SimulationsTotal counts simulation requests by whether a product matched
	SimulationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eloan_simulations_total",
			Help: "Loan simulations by detection result",
		},
		[]string{"found"},
	)
)

// Transition outcomes
const (
	OutcomeSuccess   = "success"
	OutcomeForbidden = "forbidden"
	OutcomeConflict  = "conflict"
	OutcomeError     = "error"
)

// ObserveTransition records one transition attempt
func ObserveTransition(action, outcome string) {
	LoanTransitionsTotal.WithLabelValues(action, outcome).Inc()
}

// ObserveSimulation records one simulation request
func ObserveSimulation(found bool) {
	label := "false"
	if found {
		label = "true"
	}
	SimulationsTotal.WithLabelValues(label).Inc()
}
