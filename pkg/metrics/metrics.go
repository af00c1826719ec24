package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Calculations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "calculator_calculations_total",
			Help: "Total number of calculator forms turned into results",
		},
	)

	LeadSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calculator_lead_submissions_total",
			Help: "Lead submissions by outcome",
		},
		[]string{"outcome"},
	)

	LeadSubmissionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "calculator_lead_submission_duration_seconds",
			Help:    "Duration of the CRM and datastore round trip",
			Buckets: prometheus.DefBuckets,
		},
	)

	ExternalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calculator_external_requests_total",
			Help: "Requests to third-party APIs by target and status class",
		},
		[]string{"target", "status"},
	)
)
