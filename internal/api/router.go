// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tator-io/tator/internal/middleware"
)

// Login attempts per IP, on top of the per-username limiter in package auth.
const (
	loginRateRequests = 20
	loginRateWindow   = time.Minute
)

// Router returns the HTTP handler for the whole server.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(h.cors())
	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
	))

	r.Route(BasePath, func(r chi.Router) {
		r.Use(middleware.Metrics)
		r.Use(compressUnlessUpgrade(chimiddleware.Compress(5, "application/json", "text/csv")))

		h.mount(r, true)
		r.Group(func(r chi.Router) {
			r.Use(h.rateLimit())
			r.Use(h.auth.Middleware(writeError))
			h.mount(r, false)
		})
	})
	return r
}

// mount registers the public or the authenticated methods of every
// endpoint.
func (h *Handler) mount(r chi.Router, public bool) {
	login := httprate.Limit(loginRateRequests, loginRateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(h.rateLimited))
	for _, e := range h.endpoints {
		for name, m := range e.methods {
			if m.public != public {
				continue
			}
			if m.credentials {
				r.With(login).Method(name, e.pattern, h.serve(e, name))
				continue
			}
			r.Method(name, e.pattern, h.serve(e, name))
		}
	}
}

func (h *Handler) cors() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: h.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
		ExposedHeaders: []string{middleware.HeaderRequestID},
		MaxAge:         86400,
	})
}

func (h *Handler) rateLimit() func(http.Handler) http.Handler {
	if h.cfg.RateLimitDisabled || h.cfg.RateLimitReqs <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(h.cfg.RateLimitReqs, h.cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(h.rateLimited))
}

func (h *Handler) rateLimited(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, r, http.StatusTooManyRequests, ErrCodeTooManyRequests, "rate limit exceeded")
}

// compressUnlessUpgrade leaves websocket handshakes alone.
func compressUnlessUpgrade(compress func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		compressed := compress(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, r)
				return
			}
			compressed.ServeHTTP(w, r)
		})
	}
}
