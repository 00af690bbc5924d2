// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

// Package openapi renders the API route table as a Swagger 2.0 document.
//
// Each operation's parameter fields become path, query and body
// parameters. Body fields are gathered into one object schema named
// "body", or an array schema when the operation takes a bare JSON array.
// The same field declarations drive request parsing, so the document
// cannot drift from what the server accepts.
//
// Register publishes the document to swag so the swagger UI at /swagger/
// can load it.
package openapi
