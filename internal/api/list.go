// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package api

import (
	"github.com/tator-io/tator/internal/annotation"
	"github.com/tator-io/tator/internal/attribute"
	"github.com/tator-io/tator/internal/params"
	"github.com/tator-io/tator/internal/store"
)

// CountResponse is returned by list endpoints for operation=count.
type CountResponse struct {
	Count int `json:"count"`
}

func annotationOptions(v params.Values) (annotation.ListOptions, error) {
	filter, err := attribute.ParseQuery(v)
	if err != nil {
		return annotation.ListOptions{}, err
	}
	start, stop, err := decodePage(v)
	if err != nil {
		return annotation.ListOptions{}, err
	}
	return annotation.ListOptions{
		Query: store.AnnotationQuery{
			Project:  v.Int("project"),
			Media:    v.Ints("media_id"),
			Type:     v.Int("type"),
			Versions: v.Ints("version"),
			// modified=true keeps edited annotations, which is also the
			// behavior when the parameter is absent.
			ExcludeModified: v.Has("modified") && !v.Bool("modified"),
		},
		Filter: filter,
		Start:  start,
		Stop:   stop,
	}, nil
}

func mediaOptions(v params.Values) (annotation.MediaListOptions, error) {
	filter, err := attribute.ParseQuery(v)
	if err != nil {
		return annotation.MediaListOptions{}, err
	}
	start, stop, err := decodePage(v)
	if err != nil {
		return annotation.MediaListOptions{}, err
	}
	return annotation.MediaListOptions{
		Query: store.MediaQuery{
			Project: v.Int("project"),
			IDs:     v.Ints("media_id"),
			Type:    v.Int("type"),
			Section: v.String("section"),
			Name:    v.String("name"),
		},
		Filter: filter,
		Start:  start,
		Stop:   stop,
	}, nil
}

func leafOptions(v params.Values) (annotation.LeafListOptions, error) {
	filter, err := attribute.ParseQuery(v)
	if err != nil {
		return annotation.LeafListOptions{}, err
	}
	start, stop, err := decodePage(v)
	if err != nil {
		return annotation.LeafListOptions{}, err
	}
	return annotation.LeafListOptions{
		Query: store.LeafQuery{
			Project:  v.Int("project"),
			Type:     v.Int("type"),
			Name:     v.String("name"),
			Ancestor: v.String("ancestor"),
		},
		Filter: filter,
		Start:  start,
		Stop:   stop,
	}, nil
}

// applyOperation turns a selected list into the response the operation
// parameter asks for: the list itself, its length, or a per-value count of
// one attribute.
func applyOperation[T any](v params.Values, items []T, attrs func(*T) map[string]any) (any, error) {
	op := v.String("operation")
	if op == "" {
		if items == nil {
			items = []T{}
		}
		return items, nil
	}
	if op == "count" {
		return CountResponse{Count: len(items)}, nil
	}
	name, ok := attribute.ParseCountOperation(op)
	if !ok {
		return nil, badRequest("unknown operation %q", op)
	}
	all := make([]map[string]any, len(items))
	for i := range items {
		all[i] = attrs(&items[i])
	}
	return attribute.Count(all, name), nil
}

func optString(v params.Values, name string) *string {
	if !v.Has(name) {
		return nil
	}
	s := v.String(name)
	return &s
}

func optBool(v params.Values, name string) *bool {
	if !v.Has(name) {
		return nil
	}
	b := v.Bool(name)
	return &b
}

// shapeFrom collects the coordinates present in v.
func shapeFrom(v params.Values) annotation.Shape {
	var s annotation.Shape
	for _, name := range annotation.ShapeFieldNames() {
		if v.Has(name) {
			s.Set(name, v.Float(name))
		}
	}
	return s
}
