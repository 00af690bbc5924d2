// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

/*
Package websocket streams annotation changes to browser clients.

A client connects to /api/v1/projects/{project}/changes and receives one
message per change made in that project:

	{"type": "change", "data": {"project": 3, "entity": "localization",
	  "action": "created", "ids": [101, 102], ...}}

Clients may send {"type": "ping"} and get {"type": "pong"} back. The server
also sends websocket ping frames every 54 seconds and drops connections
that stop answering.

The Hub runs as a supervised service. Each client has a bounded send queue;
a client that falls behind is disconnected rather than slowing delivery to
everyone else.
*/
package websocket
