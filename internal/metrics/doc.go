// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

/*
Package metrics registers the server's Prometheus metrics.

Collectors are package variables registered with the default registry by
promauto, so importing the package is enough to expose them on /metrics.

Families:

  - tator_api_*: request counts, latency, in-flight requests, rate limit rejections
  - tator_param_parse_failures_total: requests rejected by the parameter parser, by location and reason
  - tator_store_operation_duration_seconds: annotation store latency by operation
  - tator_annotations_*: localizations and states created and deleted
  - tator_events_*: change events published and failed
  - tator_circuit_breaker_*: event publisher breaker state
  - tator_websocket_*: change stream clients and messages
  - tator_login_attempts_total: password logins by result

Usage:

	start := time.Now()
	// ... serve request
	metrics.RecordAPIRequest(r.Method, route, strconv.Itoa(status), time.Since(start))
*/
package metrics
