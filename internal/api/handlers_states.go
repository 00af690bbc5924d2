// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package api

import (
	"fmt"
	"net/http"

	"github.com/tator-io/tator/internal/logging"
	"github.com/tator-io/tator/internal/models"
	"github.com/tator-io/tator/internal/store"
)

func stateAttributes(s *models.State) map[string]any { return s.Attributes }

// listStates returns the selected states as JSON, or as CSV frame ranges
// with format=csv.
func (h *Handler) listStates(w http.ResponseWriter, c *call) (any, error) {
	ctx := c.r.Context()
	opts, err := annotationOptions(c.values)
	if err != nil {
		return nil, err
	}
	csv := c.values.String("format") == "csv"

	var t *models.EntityType
	if csv {
		switch {
		case !c.values.Has("type"):
			return nil, badRequest("format=csv requires type")
		case c.values.Has("operation"):
			return nil, badRequest("format=csv cannot be combined with operation")
		}
		if t, err = h.store.GetEntityType(ctx, c.values.Int("type")); err != nil {
			return nil, err
		}
		if t.Project != opts.Query.Project || t.Kind != models.KindState {
			return nil, fmt.Errorf("state type %d: %w", t.ID, store.ErrNotFound)
		}
	}

	states, err := h.svc.ListStates(ctx, opts)
	if err != nil {
		return nil, err
	}
	if !csv {
		return applyOperation(c.values, states, stateAttributes)
	}

	export, err := h.svc.PrepareStatesCSV(ctx, t, states)
	if err != nil {
		return nil, err
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", t.Name+".csv"))
	w.WriteHeader(http.StatusOK)
	if err := export.Write(w); err != nil {
		// Only the client connection can fail here; the status line is gone.
		logging.Ctx(ctx).Warn().Err(err).Int64("type", t.ID).Msg("Failed to write state CSV")
	}
	return rawResponse{}, nil
}

func (h *Handler) createState(_ http.ResponseWriter, c *call) (any, error) {
	var req createStateRequest
	if err := c.values.Decode(&req); err != nil {
		return nil, err
	}
	st, err := h.svc.CreateState(c.r.Context(), c.values.Int("project"), c.user.ID, req.state())
	if err != nil {
		return nil, err
	}
	return Message{Message: "Successfully created state!", ID: st.ID}, nil
}

func (h *Handler) patchStates(_ http.ResponseWriter, c *call) (any, error) {
	opts, err := annotationOptions(c.values)
	if err != nil {
		return nil, err
	}
	n, err := h.svc.PatchStates(c.r.Context(), c.user.ID, opts, c.values.Object("attributes"))
	if err != nil {
		return nil, err
	}
	return Message{Message: fmt.Sprintf("Successfully updated %d states!", n), Count: &n}, nil
}

func (h *Handler) deleteStates(_ http.ResponseWriter, c *call) (any, error) {
	opts, err := annotationOptions(c.values)
	if err != nil {
		return nil, err
	}
	n, err := h.svc.DeleteStates(c.r.Context(), c.user.ID, opts)
	if err != nil {
		return nil, err
	}
	return Message{Message: fmt.Sprintf("Successfully deleted %d states!", n), Count: &n}, nil
}

func (h *Handler) loadState(c *call) (*models.State, error) {
	st, err := h.svc.GetState(c.r.Context(), 0, c.values.Int("id"))
	if err != nil {
		return nil, err
	}
	if err := c.authorize(st.Project); err != nil {
		return nil, err
	}
	return st, nil
}

func (h *Handler) getState(_ http.ResponseWriter, c *call) (any, error) {
	return h.loadState(c)
}

func (h *Handler) patchState(_ http.ResponseWriter, c *call) (any, error) {
	st, err := h.loadState(c)
	if err != nil {
		return nil, err
	}
	var req updateStateRequest
	if err := c.values.Decode(&req); err != nil {
		return nil, err
	}
	if err := h.svc.PatchState(c.r.Context(), c.user.ID, st, req.patch()); err != nil {
		return nil, err
	}
	return Message{Message: fmt.Sprintf("State %d successfully updated!", st.ID), ID: st.ID}, nil
}

func (h *Handler) deleteState(_ http.ResponseWriter, c *call) (any, error) {
	st, err := h.loadState(c)
	if err != nil {
		return nil, err
	}
	if err := h.svc.DeleteState(c.r.Context(), c.user.ID, st); err != nil {
		return nil, err
	}
	return Message{Message: fmt.Sprintf("State %d successfully deleted!", st.ID)}, nil
}
