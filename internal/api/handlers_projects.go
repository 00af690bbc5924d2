// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tator-io/tator/internal/logging"
	"github.com/tator-io/tator/internal/models"
)

// listProjects returns the caller's projects with the caller's permission
// in each.
func (h *Handler) listProjects(_ http.ResponseWriter, c *call) (any, error) {
	ctx := c.r.Context()
	projects, err := h.store.ListProjects(ctx, c.user.ID)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].Permission, err = h.authz.Level(ctx, c.user, projects[i].ID); err != nil {
			return nil, err
		}
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

func (h *Handler) createProject(_ http.ResponseWriter, c *call) (any, error) {
	p := &models.Project{
		Name:    c.values.String("name"),
		Summary: c.values.String("summary"),
	}
	if err := h.svc.CreateProject(c.r.Context(), c.user.ID, p); err != nil {
		return nil, err
	}
	logging.Ctx(c.r.Context()).Info().Int64("project", p.ID).Str("name", p.Name).Msg("Project created")
	return p, nil
}

func (h *Handler) getProject(_ http.ResponseWriter, c *call) (any, error) {
	ctx := c.r.Context()
	p, err := h.store.GetProject(ctx, c.values.Int("project"))
	if err != nil {
		return nil, err
	}
	if p.Permission, err = h.authz.Level(ctx, c.user, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (h *Handler) updateProject(_ http.ResponseWriter, c *call) (any, error) {
	ctx := c.r.Context()
	p, err := h.store.GetProject(ctx, c.values.Int("project"))
	if err != nil {
		return nil, err
	}
	if name := optString(c.values, "name"); name != nil {
		if p.Name = strings.TrimSpace(*name); p.Name == "" {
			return nil, badRequest("project name must not be empty")
		}
	}
	if summary := optString(c.values, "summary"); summary != nil {
		p.Summary = *summary
	}
	if err := h.store.UpdateProject(ctx, p); err != nil {
		return nil, err
	}
	return Message{Message: fmt.Sprintf("Project %d updated successfully!", p.ID), ID: p.ID}, nil
}

func (h *Handler) deleteProject(_ http.ResponseWriter, c *call) (any, error) {
	id := c.values.Int("project")
	if err := h.svc.DeleteProject(c.r.Context(), c.user.ID, id); err != nil {
		return nil, err
	}
	h.authz.Forget(id)
	logging.Ctx(c.r.Context()).Info().Int64("project", id).Msg("Project deleted")
	return Message{Message: fmt.Sprintf("Project %d deleted successfully!", id)}, nil
}

func (h *Handler) listMemberships(_ http.ResponseWriter, c *call) (any, error) {
	ms, err := h.store.ListMemberships(c.r.Context(), c.values.Int("project"))
	if err != nil {
		return nil, err
	}
	if ms == nil {
		ms = []models.Membership{}
	}
	return ms, nil
}

// createMembership adds a member or replaces the permission of an existing
// one.
func (h *Handler) createMembership(_ http.ResponseWriter, c *call) (any, error) {
	ctx := c.r.Context()
	perm, err := models.ParsePermission(c.values.String("permission"))
	if err != nil {
		return nil, badRequest("%v", err)
	}
	m := models.Membership{
		Project:    c.values.Int("project"),
		User:       c.values.Int("user"),
		Permission: perm,
	}
	if err := h.authz.Grant(ctx, m); err != nil {
		return nil, err
	}
	return h.store.GetMembership(ctx, m.Project, m.User)
}

func (h *Handler) listVersions(_ http.ResponseWriter, c *call) (any, error) {
	vs, err := h.store.ListVersions(c.r.Context(), c.values.Int("project"))
	if err != nil {
		return nil, err
	}
	if vs == nil {
		vs = []models.Version{}
	}
	return vs, nil
}

func (h *Handler) createVersion(_ http.ResponseWriter, c *call) (any, error) {
	v := &models.Version{
		Project:     c.values.Int("project"),
		Name:        c.values.String("name"),
		Description: c.values.String("description"),
		ShowEmpty:   c.values.Bool("show_empty"),
	}
	if err := h.svc.CreateVersion(c.r.Context(), c.user.ID, v); err != nil {
		return nil, err
	}
	return v, nil
}
