// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-interactions.
//
// go-interactions is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package metrics provides Prometheus instrumentation for the
// interactions gateway: per-interaction counters, challenge lifecycle
// counters, signature verification outcomes, and HTTP request metrics.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all gateway metrics
	Namespace = "interactions"

	// Label names
	LabelType       = "type"
	LabelCommand    = "command"
	LabelStatus     = "status"
	LabelOperation  = "operation"
	LabelMethod     = "method"
	LabelStatusCode = "status_code"

	// Status values
	StatusSuccess           = "success"
	StatusError             = "error"
	StatusRejected          = "rejected"
	StatusUnknownCommand    = "unknown_command"
	StatusNotFound          = "not_found"
	StatusInvalidTransition = "invalid_transition"
	StatusSelfAccept        = "self_accept"
	StatusOverwrite         = "overwrite"

	// Interaction type values
	InteractionPing      = "ping"
	InteractionCommand   = "command"
	InteractionComponent = "component"
	InteractionUnknown   = "unknown"

	// Challenge operation names
	ChallengeOpIssue  = "issue"
	ChallengeOpAccept = "accept"
)

var (
	// InteractionsTotal tracks dispatched interactions by type, command
	// name, and outcome. Use RecordInteraction to increment it.
	InteractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "dispatched_total",
			Help:      "Total number of dispatched interactions by type, command, and status",
		},
		[]string{LabelType, LabelCommand, LabelStatus},
	)

	// SignatureVerificationsTotal tracks signature gate outcomes.
	SignatureVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "signature_verifications_total",
			Help:      "Total number of request signature verifications by status",
		},
		[]string{LabelStatus},
	)

	// ChallengeOperationsTotal tracks challenge store operations by
	// operation and outcome.
	ChallengeOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "challenge_operations_total",
			Help:      "Total number of challenge operations by operation and status",
		},
		[]string{LabelOperation, LabelStatus},
	)

	// ChallengesActive tracks the number of entries in the challenge
	// store. Updated by the store's owner after sweeps.
	ChallengesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "challenges_active",
			Help:      "Number of challenges currently held in the store",
		},
	)

	// HTTPRequestsTotal tracks the total number of HTTP requests by method and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method and status code",
		},
		[]string{LabelMethod, LabelStatusCode},
	)

	// HTTPRequestDuration tracks the duration of HTTP requests in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod},
	)

	// ServerUptime tracks the server uptime in seconds since startup.
	ServerUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "server_uptime_seconds",
			Help:      "Server uptime in seconds since startup",
		},
	)

	// enabled tracks whether metrics collection is enabled
	enabled atomic.Bool
)

func init() {
	// Metrics are enabled by default
	enabled.Store(true)
}

// RecordInteraction records a dispatched interaction. The command label
// is empty for non-command interactions.
func RecordInteraction(interactionType, command, status string) {
	if !enabled.Load() {
		return
	}
	InteractionsTotal.WithLabelValues(interactionType, command, status).Inc()
}

// RecordSignatureVerification records a signature gate outcome
// (StatusSuccess or StatusRejected).
func RecordSignatureVerification(status string) {
	if !enabled.Load() {
		return
	}
	SignatureVerificationsTotal.WithLabelValues(status).Inc()
}

// RecordChallengeOperation records a challenge store operation with its
// outcome (use the ChallengeOp* and Status* constants).
func RecordChallengeOperation(operation, status string) {
	if !enabled.Load() {
		return
	}
	ChallengeOperationsTotal.WithLabelValues(operation, status).Inc()
}

// SetChallengesActive sets the active challenge gauge.
func SetChallengesActive(count float64) {
	if !enabled.Load() {
		return
	}
	ChallengesActive.Set(count)
}

// RecordHTTPRequest records an HTTP request with its duration and status.
func RecordHTTPRequest(method, statusCode string, duration float64) {
	if !enabled.Load() {
		return
	}
	HTTPRequestsTotal.WithLabelValues(method, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method).Observe(duration)
}

// Enable enables metrics collection.
func Enable() {
	enabled.Store(true)
}

// Disable disables metrics collection.
// Useful for testing or when metrics are not desired.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}
