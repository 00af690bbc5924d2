// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

// Package api serves the Tator REST API under /api/v1.
//
// Every endpoint is declared once in a route table (routes.go). An entry
// names the path, the parameter schema of each method, the project
// permission the method needs and the handler. The table drives three
// things:
//
//   - chi route registration, with parameters parsed and validated by
//     package params before any handler runs
//   - project permission checks through package authz
//   - the Swagger document served at /api/v1/schema and /swagger/
//
// Handlers return a value and an error. Values are written as JSON; errors
// are mapped to a status code and the envelope
//
//	{"success": false, "error": {"code": "...", "message": "...", "details": {...}, "request_id": "..."}}
//
// Annotation list endpoints share the attribute filter parameters of
// package attribute and support operation=count and
// operation=attribute_count::<name>.
package api
