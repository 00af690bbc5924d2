// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

// Package supervisor runs the server's long-lived goroutines under a suture
// tree so a crashed service is restarted with backoff and every service
// stops when the process shuts down.
package supervisor
