// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tator-io/tator/internal/annotation"
	"github.com/tator-io/tator/internal/models"
)

func (h *Handler) listEntityTypes(c *call, kind models.EntityKind) (any, error) {
	types, err := h.svc.ListEntityTypes(c.r.Context(), c.values.Int("project"), kind)
	if err != nil {
		return nil, err
	}
	if types == nil {
		types = []models.EntityType{}
	}
	return types, nil
}

func (h *Handler) createEntityType(c *call, kind models.EntityKind) (any, error) {
	v := c.values
	in := annotation.NewEntityType{
		Kind:          kind,
		Name:          v.String("name"),
		Description:   v.String("description"),
		Dtype:         v.String("dtype"),
		Association:   models.Association(v.String("association")),
		Interpolation: models.Interpolation(v.String("interpolation")),
		MediaTypes:    v.Ints("media_types"),
		LineWidth:     int(v.Int("line_width")),
		Visible:       optBool(v, "visible"),
	}
	if colors := v.Object("colors"); colors != nil {
		in.Colors = make(map[string]string, len(colors))
		for k, col := range colors {
			s, ok := col.(string)
			if !ok {
				return nil, badRequest("color for %q must be a string", k)
			}
			in.Colors[k] = s
		}
	}
	t, err := h.svc.CreateEntityType(c.r.Context(), v.Int("project"), c.user.ID, in)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (h *Handler) listAttributeTypes(_ http.ResponseWriter, c *call) (any, error) {
	attrs, err := h.store.ListAttributeTypes(c.r.Context(), c.values.Int("project"), c.values.IntPtr("applies_to"))
	if err != nil {
		return nil, err
	}
	if attrs == nil {
		attrs = []models.AttributeType{}
	}
	return attrs, nil
}

func (h *Handler) createAttributeType(_ http.ResponseWriter, c *call) (any, error) {
	v := c.values
	a := &models.AttributeType{
		Name:        v.String("name"),
		Description: v.String("description"),
		Dtype:       models.Dtype(v.String("dtype")),
		AppliesTo:   v.Int("applies_to"),
		Order:       int(v.Int("order")),
		Default:     v["default"],
		LowerBound:  v["lower_bound"],
		UpperBound:  v["upper_bound"],
		Choices:     v.Strings("choices"),
		Labels:      v.Strings("labels"),
		UseCurrent:  v.Bool("use_current"),
	}
	// A geopos default arrives as "lon,lat" text.
	if s, ok := a.Default.(string); ok && a.Dtype == models.DtypeGeopos {
		if lon, lat, found := strings.Cut(s, ","); found {
			a.Default = []any{strings.TrimSpace(lon), strings.TrimSpace(lat)}
		}
	}
	if ac := v.Object("autocomplete"); ac != nil {
		url, _ := ac["serviceUrl"].(string)
		if url == "" {
			return nil, badRequest("autocomplete needs a serviceUrl")
		}
		a.Autocomplete = &models.Autocomplete{ServiceURL: url}
	}
	if err := h.svc.CreateAttributeType(c.r.Context(), v.Int("project"), c.user.ID, a); err != nil {
		return nil, err
	}
	return a, nil
}

// loadAttributeType fetches the attribute type addressed by the path and
// checks the caller's permission in its project.
func (h *Handler) loadAttributeType(c *call) (*models.AttributeType, error) {
	a, err := h.store.GetAttributeType(c.r.Context(), c.values.Int("pk"))
	if err != nil {
		return nil, err
	}
	if err := c.authorize(a.Project); err != nil {
		return nil, err
	}
	return a, nil
}

func (h *Handler) getAttributeType(_ http.ResponseWriter, c *call) (any, error) {
	return h.loadAttributeType(c)
}

func (h *Handler) updateAttributeType(_ http.ResponseWriter, c *call) (any, error) {
	a, err := h.loadAttributeType(c)
	if err != nil {
		return nil, err
	}
	name, desc := optString(c.values, "name"), optString(c.values, "description")
	if name == nil && desc == nil {
		return nil, badRequest("nothing to update, set name or description")
	}
	if err := h.svc.UpdateAttributeType(c.r.Context(), c.user.ID, a, name, desc); err != nil {
		return nil, err
	}
	return Message{Message: fmt.Sprintf("Attribute type %d updated successfully!", a.ID), ID: a.ID}, nil
}

func (h *Handler) deleteAttributeType(_ http.ResponseWriter, c *call) (any, error) {
	a, err := h.loadAttributeType(c)
	if err != nil {
		return nil, err
	}
	if err := h.svc.DeleteAttributeType(c.r.Context(), c.user.ID, a); err != nil {
		return nil, err
	}
	return Message{Message: fmt.Sprintf("Attribute type %d deleted successfully!", a.ID)}, nil
}
