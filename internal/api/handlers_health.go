// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package api

import (
	"context"
	"net/http"
	"time"
)

const readyTimeout = 2 * time.Second

// HealthResponse reports process health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Uptime  string            `json:"uptime"`
	Checks  map[string]string `json:"checks,omitempty"`
}

func (h *Handler) health(status string) HealthResponse {
	return HealthResponse{
		Status:  status,
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	}
}

// healthLive answers as long as the process serves requests.
//
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health/live [get]
func (h *Handler) healthLive(_ http.ResponseWriter, _ *call) (any, error) {
	return h.health("ok"), nil
}

// healthReady checks the store and the event publisher's breaker.
//
// @Summary Readiness check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health/ready [get]
func (h *Handler) healthReady(w http.ResponseWriter, c *call) (any, error) {
	ctx, cancel := context.WithTimeout(c.r.Context(), readyTimeout)
	defer cancel()

	resp := h.health("ok")
	resp.Checks = map[string]string{"store": "ok"}
	if err := h.store.Ping(ctx); err != nil {
		resp.Status = "unavailable"
		resp.Checks["store"] = err.Error()
	}
	if h.events != nil {
		state := h.events.BreakerState()
		resp.Checks["events"] = state
		if state == "open" {
			resp.Status = "unavailable"
		}
	}
	if resp.Status != "ok" {
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return rawResponse{}, nil
	}
	return resp, nil
}

// getSchema serves the Swagger document.
func (h *Handler) getSchema(w http.ResponseWriter, _ *call) (any, error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.doc.JSON())
	return rawResponse{}, nil
}
