// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package api

import (
	"fmt"
	"net/http"

	"github.com/tator-io/tator/internal/models"
)

func mediaAttributes(m *models.Media) map[string]any { return m.Attributes }

func (h *Handler) listMedia(_ http.ResponseWriter, c *call) (any, error) {
	opts, err := mediaOptions(c.values)
	if err != nil {
		return nil, err
	}
	media, err := h.svc.ListMedia(c.r.Context(), opts)
	if err != nil {
		return nil, err
	}
	return applyOperation(c.values, media, mediaAttributes)
}

func (h *Handler) createMedia(_ http.ResponseWriter, c *call) (any, error) {
	var req createMediaRequest
	if err := c.values.Decode(&req); err != nil {
		return nil, err
	}
	m, err := h.svc.CreateMedia(c.r.Context(), c.values.Int("project"), c.user.ID, req.media())
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (h *Handler) loadMedia(c *call) (*models.Media, error) {
	m, err := h.svc.GetMedia(c.r.Context(), 0, c.values.Int("id"))
	if err != nil {
		return nil, err
	}
	if err := c.authorize(m.Project); err != nil {
		return nil, err
	}
	return m, nil
}

func (h *Handler) getMedia(_ http.ResponseWriter, c *call) (any, error) {
	return h.loadMedia(c)
}

func (h *Handler) updateMedia(_ http.ResponseWriter, c *call) (any, error) {
	m, err := h.loadMedia(c)
	if err != nil {
		return nil, err
	}
	var req updateMediaRequest
	if err := c.values.Decode(&req); err != nil {
		return nil, err
	}
	if err := h.svc.PatchMedia(c.r.Context(), c.user.ID, m, req.patch()); err != nil {
		return nil, err
	}
	return Message{Message: fmt.Sprintf("Media %d successfully updated!", m.ID), ID: m.ID}, nil
}

func (h *Handler) deleteMedia(_ http.ResponseWriter, c *call) (any, error) {
	m, err := h.loadMedia(c)
	if err != nil {
		return nil, err
	}
	if err := h.svc.DeleteMedia(c.r.Context(), c.user.ID, m); err != nil {
		return nil, err
	}
	return Message{Message: fmt.Sprintf("Media %d successfully deleted!", m.ID)}, nil
}

// sectionAnalysis counts the selected media per section.
func (h *Handler) sectionAnalysis(_ http.ResponseWriter, c *call) (any, error) {
	opts, err := mediaOptions(c.values)
	if err != nil {
		return nil, err
	}
	return h.svc.SectionCounts(c.r.Context(), opts)
}
