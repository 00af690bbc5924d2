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

func localizationAttributes(l *models.Localization) map[string]any { return l.Attributes }

func (h *Handler) listLocalizations(_ http.ResponseWriter, c *call) (any, error) {
	opts, err := annotationOptions(c.values)
	if err != nil {
		return nil, err
	}
	locs, err := h.svc.ListLocalizations(c.r.Context(), opts)
	if err != nil {
		return nil, err
	}
	return applyOperation(c.values, locs, localizationAttributes)
}

// bodyItems returns the bodies of the records to create: every entry of
// many, or the fields of schema found in the body itself.
func bodyItems(c *call, schema params.Schema) ([]map[string]any, error) {
	if !c.values.Has("many") {
		item := make(map[string]any)
		for _, f := range schema.All {
			if c.values.Has(f.Name) {
				item[f.Name] = c.values[f.Name]
			}
		}
		return []map[string]any{item}, nil
	}
	many := c.values.Array("many")
	items := make([]map[string]any, len(many))
	for i, raw := range many {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, badRequest("many[%d] must be an object", i)
		}
		items[i] = m
	}
	return items, nil
}

// parseLocalization checks one item against the per-item fields.
func parseLocalization(path string, item map[string]any) (annotation.NewLocalization, error) {
	v, err := params.Parse(localizationItemSchema, &params.Request{Method: http.MethodPost, Path: path, Body: item})
	if err != nil {
		if fe, ok := params.AsFieldError(err); ok {
			metrics.RecordParamFailure(string(fe.In), string(fe.Reason))
		}
		return annotation.NewLocalization{}, err
	}
	return annotation.NewLocalization{
		Media:      v.Int("media_id"),
		Type:       v.Int("type"),
		Version:    v.IntPtr("version"),
		Frame:      v.Int("frame"),
		Modified:   v.Bool("modified"),
		Shape:      shapeFrom(v),
		Attributes: v.Object("attributes"),
	}, nil
}

func (h *Handler) createLocalizations(_ http.ResponseWriter, c *call) (any, error) {
	items, err := bodyItems(c, localizationItemSchema)
	if err != nil {
		return nil, err
	}
	bulk := c.values.Has("many")
	in := make([]annotation.NewLocalization, len(items))
	for i, item := range items {
		path := c.r.URL.Path
		if bulk {
			path = fmt.Sprintf("%s many[%d]", path, i)
		}
		if in[i], err = parseLocalization(path, item); err != nil {
			return nil, err
		}
	}
	ids, err := h.svc.CreateLocalizations(c.r.Context(), c.values.Int("project"), c.user.ID, in)
	if err != nil {
		return nil, err
	}
	if !bulk {
		return Message{Message: "Successfully created localization!", ID: ids[0]}, nil
	}
	return Message{Message: fmt.Sprintf("Successfully created %d localizations!", len(ids)), ID: ids}, nil
}

func (h *Handler) patchLocalizations(_ http.ResponseWriter, c *call) (any, error) {
	opts, err := annotationOptions(c.values)
	if err != nil {
		return nil, err
	}
	n, err := h.svc.PatchLocalizations(c.r.Context(), c.user.ID, opts, c.values.Object("attributes"))
	if err != nil {
		return nil, err
	}
	return Message{Message: fmt.Sprintf("Successfully updated %d localizations!", n), Count: &n}, nil
}

func (h *Handler) deleteLocalizations(_ http.ResponseWriter, c *call) (any, error) {
	opts, err := annotationOptions(c.values)
	if err != nil {
		return nil, err
	}
	n, err := h.svc.DeleteLocalizations(c.r.Context(), c.user.ID, opts)
	if err != nil {
		return nil, err
	}
	return Message{Message: fmt.Sprintf("Successfully deleted %d localizations!", n), Count: &n}, nil
}

func (h *Handler) loadLocalization(c *call) (*models.Localization, error) {
	l, err := h.svc.GetLocalization(c.r.Context(), 0, c.values.Int("id"))
	if err != nil {
		return nil, err
	}
	if err := c.authorize(l.Project); err != nil {
		return nil, err
	}
	return l, nil
}

func (h *Handler) getLocalization(_ http.ResponseWriter, c *call) (any, error) {
	return h.loadLocalization(c)
}

func (h *Handler) patchLocalization(_ http.ResponseWriter, c *call) (any, error) {
	l, err := h.loadLocalization(c)
	if err != nil {
		return nil, err
	}
	v := c.values
	err = h.svc.PatchLocalization(c.r.Context(), c.user.ID, l, annotation.LocalizationPatch{
		Version:    v.IntPtr("version"),
		Frame:      v.IntPtr("frame"),
		Modified:   optBool(v, "modified"),
		Shape:      shapeFrom(v),
		Attributes: v.Object("attributes"),
	})
	if err != nil {
		return nil, err
	}
	return Message{Message: fmt.Sprintf("Localization %d successfully updated!", l.ID), ID: l.ID}, nil
}

func (h *Handler) deleteLocalization(_ http.ResponseWriter, c *call) (any, error) {
	l, err := h.loadLocalization(c)
	if err != nil {
		return nil, err
	}
	if err := h.svc.DeleteLocalization(c.r.Context(), c.user.ID, l); err != nil {
		return nil, err
	}
	return Message{Message: fmt.Sprintf("Localization %d successfully deleted!", l.ID)}, nil
}
