// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

/*
Package main is the entry point for the Tator API server.

The server exposes the annotation REST API under /api/v1, its Swagger
document under /swagger/, Prometheus metrics under /metrics and a websocket
change stream per project.

# Application Architecture

Long running components run under a Suture v4 supervisor tree:

	RootSupervisor ("tator")
	├── RealtimeSupervisor ("realtime")
	│   ├── WebSocket Hub
	│   └── Change Forwarder (event bus to hub)
	└── APISupervisor ("api")
	    └── HTTP Server

Initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 2. Logging: zerolog, with slog and watermill adapters
 3. Store: DuckDB, or the in-memory store for development
 4. Events: watermill over a Go channel or NATS, optionally an embedded nats-server
 5. Authentication: JWT login tokens and API tokens kept in Badger
 6. Authorization: Casbin RBAC with one domain per project
 7. HTTP: chi router wrapping the typed parameter layer

# Configuration

Environment variables override config.yaml, which overrides defaults:

	DATABASE_DRIVER=duckdb DATABASE_PATH=/data/tator.duckdb
	JWT_SECRET=$(openssl rand -base64 32)
	ADMIN_USERNAME=admin ADMIN_PASSWORD=secure-password
	EVENTS_BACKEND=nats EVENTS_EMBEDDED_SERVER=true

# Signal Handling

SIGINT and SIGTERM stop the supervisor tree. The HTTP server drains in-flight
requests before the store and event bus are closed.
*/
package main
