// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package attribute

import (
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/tator-io/tator/internal/models"
)

// now is replaced in tests.
var now = time.Now

// Schema is the set of attribute types declared on one entity type.
type Schema struct {
	types  []models.AttributeType
	byName map[string]*models.AttributeType
}

// NewSchema indexes types by name, ordered by Order then name.
func NewSchema(types []models.AttributeType) *Schema {
	s := &Schema{
		types:  slices.Clone(types),
		byName: make(map[string]*models.AttributeType, len(types)),
	}
	sort.SliceStable(s.types, func(i, j int) bool {
		if s.types[i].Order != s.types[j].Order {
			return s.types[i].Order < s.types[j].Order
		}
		return s.types[i].Name < s.types[j].Name
	})
	for i := range s.types {
		s.byName[s.types[i].Name] = &s.types[i]
	}
	return s
}

// Types returns the attribute types in display order.
func (s *Schema) Types() []models.AttributeType {
	return slices.Clone(s.types)
}

func (s *Schema) Lookup(name string) (*models.AttributeType, bool) {
	t, ok := s.byName[name]
	return t, ok
}

// Validate converts attrs for a new entity. Unknown names are rejected and
// null values count as absent. With requireAll set, every attribute type
// that has neither a default nor use_current must be given; defaults are
// filled either way.
func (s *Schema) Validate(attrs map[string]any, requireAll bool) (map[string]any, error) {
	out := make(map[string]any, len(s.types))
	for name, v := range attrs {
		if v == nil {
			continue
		}
		t, ok := s.byName[name]
		if !ok {
			return nil, fail(name, "not declared on this type")
		}
		conv, err := Convert(t, v)
		if err != nil {
			return nil, err
		}
		out[name] = conv
	}
	for i := range s.types {
		t := &s.types[i]
		if _, ok := out[t.Name]; ok {
			continue
		}
		switch {
		case t.Default != nil:
			out[t.Name] = cloneDefault(t.Default)
		case t.UseCurrent:
			out[t.Name] = now().UTC().Format(time.RFC3339Nano)
		case requireAll:
			return nil, fail(t.Name, "missing required attribute")
		}
	}
	return out, nil
}

// Patch applies changes on top of existing and returns the merged map.
// Only changed keys are converted; a null value removes the attribute.
func (s *Schema) Patch(existing, changes map[string]any) (map[string]any, error) {
	out := maps.Clone(existing)
	if out == nil {
		out = make(map[string]any, len(changes))
	}
	for name, v := range changes {
		t, ok := s.byName[name]
		if !ok {
			return nil, fail(name, "not declared on this type")
		}
		if v == nil {
			delete(out, name)
			continue
		}
		conv, err := Convert(t, v)
		if err != nil {
			return nil, err
		}
		out[name] = conv
	}
	return out, nil
}

func cloneDefault(v any) any {
	if p, ok := v.([]any); ok {
		return slices.Clone(p)
	}
	return v
}
