// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

/*
Package events carries annotation change notifications.

Every mutation made through the annotation service produces a Change naming
the project, the kind of record, the action and the affected IDs. A Bus
publishes changes to a Watermill topic, either on an in-process gochannel
or on NATS (optionally an embedded server). A Forwarder subscribes to the
topic and hands each change to the websocket hub, which pushes it to the
clients watching that project.

Publishing is best effort. A failed publish is logged and counted but never
fails the request that made the change. After BreakerMaxFailures
consecutive failures the circuit breaker opens and publishes are rejected
until BreakerTimeout has passed.
*/
package events
