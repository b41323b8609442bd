// Package metrics defines and registers all custom Prometheus metrics for the
// Med-Link session client. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on package load and
// are served by the shell's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "medlink"

// ── Backend API metrics ───────────────────────────────────────────────────────

// APIRequestsTotal counts backend calls by outcome.
// Labels:
//   - operation: the client operation (e.g. "auth.login_doctor", "doctors.list")
//   - outcome: "ok" or the error kind ("connectivity", "timeout", "validation", "auth", "unexpected")
var APIRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of backend API calls, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// APIRequestDuration measures a backend call end-to-end, retries included.
// Label:
//   - operation: the client operation
var APIRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of backend API calls including retries.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// APIBreakerState tracks the backend circuit breaker: 0 closed, 1 half-open, 2 open.
var APIBreakerState = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "api_breaker_state",
		Help:      "Current state of the backend circuit breaker (0 closed, 1 half-open, 2 open).",
	},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts session state changes.
// Label:
//   - to: "checking", "authenticated", "unauthenticated"
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions, by target state.",
	},
	[]string{"to"},
)

// SubmissionsRejectedTotal counts submissions refused because the same flow
// was already in flight.
// Label:
//   - flow: e.g. "login", "register_doctor", "book"
var SubmissionsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_rejected_total",
		Help:      "Total number of duplicate submissions rejected while a flow was in flight.",
	},
	[]string{"flow"},
)

// ── Navigation metrics ────────────────────────────────────────────────────────

// GateRedirectsTotal counts navigation gate redirects.
// Labels:
//   - from: the requested route
//   - to: the redirect target
var GateRedirectsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_redirects_total",
		Help:      "Total number of navigation gate redirects, by requested and target route.",
	},
	[]string{"from", "to"},
)
