// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tator_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tator_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tator_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tator_api_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	// ParamParseFailures counts requests rejected by the parameter parser
	// before any handler ran.
	ParamParseFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tator_param_parse_failures_total",
			Help: "Total number of request parameter parse failures",
		},
		[]string{"location", "reason"}, // location: path, query, body; reason: missing, invalid
	)

	// Store Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tator_store_operation_duration_seconds",
			Help:    "Duration of annotation store operations in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"op"},
	)

	// Annotation Metrics
	AnnotationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tator_annotations_created_total",
			Help: "Total number of annotations created",
		},
		[]string{"kind"}, // localization, state
	)

	AnnotationsDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tator_annotations_deleted_total",
			Help: "Total number of annotations deleted",
		},
		[]string{"kind"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tator_events_published_total",
			Help: "Total number of annotation change events published",
		},
		[]string{"action"},
	)

	EventsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tator_events_failed_total",
			Help: "Total number of annotation change events that could not be published",
		},
		[]string{"reason"}, // breaker_open, publish
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tator_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tator_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tator_websocket_connections",
			Help: "Number of connected change stream clients",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tator_websocket_messages_sent_total",
			Help: "Total number of change messages sent to websocket clients",
		},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tator_websocket_messages_dropped_total",
			Help: "Total number of change messages dropped for slow clients",
		},
	)

	// Auth Metrics
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tator_login_attempts_total",
			Help: "Total number of password login attempts",
		},
		[]string{"result"}, // success, failure, throttled
	)

	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tator_authz_decisions_total",
			Help: "Project permission checks by outcome",
		},
		[]string{"result", "cached"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tator_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tator_app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordParamFailure counts a rejected request parameter.
func RecordParamFailure(location, reason string) {
	ParamParseFailures.WithLabelValues(location, reason).Inc()
}

// RecordStoreOperation observes the duration of a store operation.
func RecordStoreOperation(op string, duration time.Duration) {
	StoreOperationDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// ErrBreakerOpen is matched by RecordEventPublish to label rejected
// publishes separately from broker failures.
var ErrBreakerOpen = errors.New("circuit breaker open")

// RecordEventPublish records the outcome of publishing one change event.
func RecordEventPublish(action string, err error) {
	switch {
	case err == nil:
		EventsPublished.WithLabelValues(action).Inc()
	case errors.Is(err, ErrBreakerOpen):
		EventsFailed.WithLabelValues("breaker_open").Inc()
	default:
		EventsFailed.WithLabelValues("publish").Inc()
	}
}

// RecordBreakerTransition records a circuit breaker state change. state is
// the numeric value of the new state.
func RecordBreakerTransition(name, from, to string, state float64) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(state)
}
