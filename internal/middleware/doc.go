// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

// Package middleware holds the HTTP middleware shared by every route:
// request IDs, access logging and Prometheus instrumentation.
//
// All middleware have the func(http.Handler) http.Handler shape used by
// chi. Middleware that wraps the ResponseWriter uses chi's
// WrapResponseWriter so websocket upgrades still reach http.Hijacker.
//
// Order matters:
//
//	r.Use(middleware.RequestID)
//	r.Use(middleware.AccessLog)
//	r.Use(middleware.Metrics)
//
// RequestID must run first so the access log and every handler log line
// carry the request_id field.
package middleware
