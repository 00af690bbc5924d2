// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package api

import (
	"errors"
	"net/http"

	"github.com/tator-io/tator/internal/authz"
	"github.com/tator-io/tator/internal/models"
)

// getUser returns a user to the user itself, to superusers and to anyone
// with at least View on a project the user belongs to.
func (h *Handler) getUser(_ http.ResponseWriter, c *call) (any, error) {
	ctx := c.r.Context()
	id := c.values.Int("id")
	u, err := h.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	denied := h.authz.RequireSelf(c.user, id)
	if denied == nil {
		return u, nil
	}
	projects, err := h.store.ListProjects(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		err := h.authz.Require(ctx, c.user, p.ID, models.PermissionView)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, authz.ErrForbidden) {
			return nil, err
		}
	}
	return nil, denied
}

func (h *Handler) updateUser(_ http.ResponseWriter, c *call) (any, error) {
	id := c.values.Int("id")
	if err := h.authz.RequireSelf(c.user, id); err != nil {
		return nil, err
	}
	var req updateUserRequest
	if err := c.values.Decode(&req); err != nil {
		return nil, err
	}
	return h.auth.UpdateProfile(c.r.Context(), id, req.profile())
}
