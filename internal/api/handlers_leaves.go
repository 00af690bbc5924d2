// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package api

import (
	"fmt"
	"net/http"

	"github.com/tator-io/tator/internal/annotation"
	"github.com/tator-io/tator/internal/metrics"
	"github.com/tator-io/tator/internal/models"
	"github.com/tator-io/tator/internal/params"
)

func leafAttributes(l *models.Leaf) map[string]any { return l.Attributes }

func (h *Handler) listLeaves(_ http.ResponseWriter, c *call) (any, error) {
	opts, err := leafOptions(c.values)
	if err != nil {
		return nil, err
	}
	leaves, err := h.svc.ListLeaves(c.r.Context(), opts)
	if err != nil {
		return nil, err
	}
	return applyOperation(c.values, leaves, leafAttributes)
}

func parseLeaf(path string, item map[string]any) (annotation.NewLeaf, error) {
	v, err := params.Parse(leafItemSchema, &params.Request{Method: http.MethodPost, Path: path, Body: item})
	if err != nil {
		if fe, ok := params.AsFieldError(err); ok {
			metrics.RecordParamFailure(string(fe.In), string(fe.Reason))
		}
		return annotation.NewLeaf{}, err
	}
	return annotation.NewLeaf{
		Type:       v.Int("type"),
		Name:       v.String("name"),
		Parent:     v.IntPtr("parent"),
		Attributes: v.Object("attributes"),
	}, nil
}

func (h *Handler) createLeaves(_ http.ResponseWriter, c *call) (any, error) {
	items, err := bodyItems(c, leafItemSchema)
	if err != nil {
		return nil, err
	}
	bulk := c.values.Has("many")
	in := make([]annotation.NewLeaf, len(items))
	for i, item := range items {
		path := c.r.URL.Path
		if bulk {
			path = fmt.Sprintf("%s many[%d]", path, i)
		}
		if in[i], err = parseLeaf(path, item); err != nil {
			return nil, err
		}
	}
	ids, err := h.svc.CreateLeaves(c.r.Context(), c.values.Int("project"), c.user.ID, in)
	if err != nil {
		return nil, err
	}
	if !bulk {
		return Message{Message: "Successfully created leaf!", ID: ids[0]}, nil
	}
	return Message{Message: fmt.Sprintf("Successfully created %d leaves!", len(ids)), ID: ids}, nil
}

func (h *Handler) patchLeaves(_ http.ResponseWriter, c *call) (any, error) {
	opts, err := leafOptions(c.values)
	if err != nil {
		return nil, err
	}
	n, err := h.svc.PatchLeaves(c.r.Context(), c.user.ID, opts, c.values.Object("attributes"))
	if err != nil {
		return nil, err
	}
	return Message{Message: fmt.Sprintf("Successfully updated %d leaves!", n), Count: &n}, nil
}

func (h *Handler) deleteLeaves(_ http.ResponseWriter, c *call) (any, error) {
	opts, err := leafOptions(c.values)
	if err != nil {
		return nil, err
	}
	n, err := h.svc.DeleteLeaves(c.r.Context(), c.user.ID, opts)
	if err != nil {
		return nil, err
	}
	return Message{Message: fmt.Sprintf("Successfully deleted %d leaves!", n), Count: &n}, nil
}

func (h *Handler) leafSuggestions(_ http.ResponseWriter, c *call) (any, error) {
	var req leafSuggestionRequest
	if err := c.values.Decode(&req); err != nil {
		return nil, err
	}
	return h.svc.LeafSuggestions(c.r.Context(), c.values.Int("project"), req.Ancestor, req.Query, req.minLevel())
}

func (h *Handler) loadLeaf(c *call) (*models.Leaf, error) {
	l, err := h.svc.GetLeaf(c.r.Context(), 0, c.values.Int("id"))
	if err != nil {
		return nil, err
	}
	if err := c.authorize(l.Project); err != nil {
		return nil, err
	}
	return l, nil
}

func (h *Handler) getLeaf(_ http.ResponseWriter, c *call) (any, error) {
	return h.loadLeaf(c)
}

func (h *Handler) patchLeaf(_ http.ResponseWriter, c *call) (any, error) {
	l, err := h.loadLeaf(c)
	if err != nil {
		return nil, err
	}
	var req updateLeafRequest
	if err := c.values.Decode(&req); err != nil {
		return nil, err
	}
	if err := h.svc.PatchLeaf(c.r.Context(), c.user.ID, l, req.patch()); err != nil {
		return nil, err
	}
	return Message{Message: fmt.Sprintf("Leaf %d successfully updated!", l.ID), ID: l.ID}, nil
}

func (h *Handler) deleteLeaf(_ http.ResponseWriter, c *call) (any, error) {
	l, err := h.loadLeaf(c)
	if err != nil {
		return nil, err
	}
	n, err := h.svc.DeleteLeaf(c.r.Context(), c.user.ID, l)
	if err != nil {
		return nil, err
	}
	return Message{Message: fmt.Sprintf("Leaf %d successfully deleted!", l.ID), Count: &n}, nil
}
