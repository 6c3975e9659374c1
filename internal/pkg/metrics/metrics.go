package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Matching runs
	MatchingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buddy_matching_runs_total",
			Help: "Total number of matching runs by outcome",
		},
		[]string{"outcome"}, // "success", "invalid", "unavailable", "error"
	)

	MatchingRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "buddy_matching_run_duration_seconds",
			Help:    "Duration of matching runs in seconds, including lock wait",
			Buckets: prometheus.DefBuckets,
		},
	)

	MatchesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "buddy_matches_created_total",
			Help: "Total number of ACTIVE matches created by matching runs",
		},
	)

	MenteesUnmatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "buddy_mentees_unmatched_total",
			Help: "Total number of eligible mentees left unmatched at the end of a run",
		},
	)

	CommitSkips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buddy_commit_skips_total",
			Help: "Proposals dropped during the commit phase",
		},
		[]string{"reason"}, // "capacity", "store_capacity", "mentee_matched", "user_missing"
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests passed through a circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "timeout", "rejected"
	)
)

// RecordRun records the outcome of one matching run
func RecordRun(outcome string, duration time.Duration, created, unmatched int) {
	MatchingRuns.WithLabelValues(outcome).Inc()
	MatchingRunDuration.Observe(duration.Seconds())
	if created > 0 {
		MatchesCreated.Add(float64(created))
	}
	if unmatched > 0 {
		MenteesUnmatched.Add(float64(unmatched))
	}
}

// RecordCommitSkip counts a proposal dropped at commit time
func RecordCommitSkip(reason string) {
	CommitSkips.WithLabelValues(reason).Inc()
}

// RecordAPIRequest records an API request with its status and latency
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
