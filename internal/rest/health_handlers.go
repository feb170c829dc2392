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

package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/jeremyhahn/go-interactions/pkg/health"
)

// HealthChecker is the interface the probe handlers consume.
type HealthChecker interface {
	Live(ctx context.Context) health.CheckResult
	Ready(ctx context.Context) []health.CheckResult
	Startup(ctx context.Context) health.CheckResult
	Uptime() time.Duration
}

// HealthResponse is the response for the aggregate health endpoint.
type HealthResponse struct {
	Status string               `json:"status"`
	Uptime string               `json:"uptime,omitempty"`
	Checks []health.CheckResult `json:"checks,omitempty"`
}

// ProbeResponse is the response for the individual probe endpoints.
type ProbeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthHandler handles GET /health, an aggregate of all readiness
// checks plus process uptime.
func (h *HandlerContext) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.health == nil {
		writeJSON(w, HealthResponse{Status: string(health.StatusHealthy)}, http.StatusOK)
		return
	}

	checks := h.health.Ready(r.Context())
	status := health.StatusHealthy
	code := http.StatusOK
	if !health.AllHealthy(checks) {
		status = health.StatusUnhealthy
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, HealthResponse{
		Status: string(status),
		Uptime: h.health.Uptime().String(),
		Checks: checks,
	}, code)
}

// LivenessHandler handles GET /health/live.
func (h *HandlerContext) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	if h.health == nil {
		writeJSON(w, ProbeResponse{Status: string(health.StatusHealthy)}, http.StatusOK)
		return
	}

	writeProbe(w, h.health.Live(r.Context()))
}

// ReadinessHandler handles GET /health/ready.
func (h *HandlerContext) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	if h.health == nil {
		writeJSON(w, ProbeResponse{Status: string(health.StatusHealthy)}, http.StatusOK)
		return
	}

	checks := h.health.Ready(r.Context())
	status := health.StatusHealthy
	code := http.StatusOK
	if !health.AllHealthy(checks) {
		status = health.StatusUnhealthy
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, HealthResponse{
		Status: string(status),
		Checks: checks,
	}, code)
}

// StartupHandler handles GET /health/startup.
func (h *HandlerContext) StartupHandler(w http.ResponseWriter, r *http.Request) {
	if h.health == nil {
		writeJSON(w, ProbeResponse{Status: string(health.StatusHealthy)}, http.StatusOK)
		return
	}

	writeProbe(w, h.health.Startup(r.Context()))
}

// writeProbe renders a single probe result.
func writeProbe(w http.ResponseWriter, result health.CheckResult) {
	code := http.StatusOK
	if result.Status != health.StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, ProbeResponse{
		Status:  string(result.Status),
		Message: result.Message,
	}, code)
}
