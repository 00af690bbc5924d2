// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package api

import (
	"net/http"
)

// changes upgrades to a websocket that streams the project's change
// events. Permission has been checked before the upgrade.
func (h *Handler) changes(w http.ResponseWriter, c *call) (any, error) {
	if h.hub == nil {
		writeStatus(w, c.r, http.StatusServiceUnavailable, ErrCodeUnavailable, "change events are disabled")
		return rawResponse{}, nil
	}
	h.hub.ServeProject(w, c.r, c.values.Int("project"))
	return rawResponse{}, nil
}
