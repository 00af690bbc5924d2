// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package annotation

import (
	"context"
	"fmt"
	"slices"

	"github.com/tator-io/tator/internal/attribute"
	"github.com/tator-io/tator/internal/events"
	"github.com/tator-io/tator/internal/metrics"
	"github.com/tator-io/tator/internal/models"
	"github.com/tator-io/tator/internal/store"
)

// Shape holds the relative coordinates of a localization. Which fields
// apply depends on the dtype of the localization type.
type Shape struct {
	X      *float64
	Y      *float64
	Width  *float64
	Height *float64
	X0     *float64
	Y0     *float64
	X1     *float64
	Y1     *float64
}

// shapeFields lists the coordinates each dtype requires.
var shapeFields = map[string][]string{
	models.ShapeBox:  {"x", "y", "width", "height"},
	models.ShapeLine: {"x0", "y0", "x1", "y1"},
	models.ShapeDot:  {"x", "y"},
}

// ShapeFieldNames returns every coordinate name, in a stable order.
func ShapeFieldNames() []string {
	return []string{"x", "y", "width", "height", "x0", "y0", "x1", "y1"}
}

func (s *Shape) field(name string) **float64 {
	switch name {
	case "x":
		return &s.X
	case "y":
		return &s.Y
	case "width":
		return &s.Width
	case "height":
		return &s.Height
	case "x0":
		return &s.X0
	case "y0":
		return &s.Y0
	case "x1":
		return &s.X1
	case "y1":
		return &s.Y1
	}
	return nil
}

// Set assigns a coordinate by name and reports whether the name is known.
func (s *Shape) Set(name string, v float64) bool {
	p := s.field(name)
	if p == nil {
		return false
	}
	*p = &v
	return true
}

// forDtype checks the coordinates against a shape and returns only the
// ones that shape uses.
func (s Shape) forDtype(dtype string, requireAll bool) (Shape, error) {
	names, ok := shapeFields[dtype]
	if !ok {
		return Shape{}, invalid("unknown localization shape %q", dtype)
	}
	var out Shape
	for _, name := range names {
		v := *s.field(name)
		if v == nil {
			if requireAll {
				return Shape{}, invalid("%s localizations require %q", dtype, name)
			}
			continue
		}
		if *v < 0 || *v > 1 {
			return Shape{}, invalid("%q must be between 0 and 1, got %v", name, *v)
		}
		val := *v
		*out.field(name) = &val
	}
	return out, nil
}

func (s Shape) apply(l *models.Localization) {
	set := func(dst **float64, v *float64) {
		if v != nil {
			*dst = v
		}
	}
	set(&l.X, s.X)
	set(&l.Y, s.Y)
	set(&l.Width, s.Width)
	set(&l.Height, s.Height)
	set(&l.X0, s.X0)
	set(&l.Y0, s.Y0)
	set(&l.X1, s.X1)
	set(&l.Y1, s.Y1)
}

// NewLocalization is one localization to create.
type NewLocalization struct {
	Media      int64
	Type       int64
	Version    *int64
	Frame      int64
	Modified   bool
	Shape      Shape
	Attributes map[string]any
}

// createCache memoizes lookups shared by the items of a bulk create.
type createCache struct {
	media   map[int64]*models.Media
	types   map[int64]*models.EntityType
	schemas map[int64]*attribute.Schema
	version map[int64]int64
}

// CreateLocalizations validates and stores every item or none of them and
// returns the new IDs in input order.
func (s *Service) CreateLocalizations(ctx context.Context, project, user int64, items []NewLocalization) ([]int64, error) {
	switch {
	case len(items) == 0:
		return nil, invalid("no localizations given")
	case len(items) > s.maxBulk:
		return nil, invalid("%d localizations exceeds the limit of %d per request", len(items), s.maxBulk)
	}

	c := &createCache{
		media:   map[int64]*models.Media{},
		types:   map[int64]*models.EntityType{},
		schemas: map[int64]*attribute.Schema{},
		version: map[int64]int64{},
	}
	locs := make([]*models.Localization, len(items))
	for i := range items {
		l, err := s.buildLocalization(ctx, project, user, &items[i], c)
		if err != nil {
			if len(items) > 1 {
				return nil, fmt.Errorf("many[%d]: %w", i, err)
			}
			return nil, err
		}
		locs[i] = l
	}

	if err := s.store.CreateLocalizations(ctx, locs); err != nil {
		return nil, err
	}
	ids := make([]int64, len(locs))
	for i, l := range locs {
		ids[i] = l.ID
	}
	metrics.AnnotationsCreated.WithLabelValues(events.EntityLocalization).Add(float64(len(ids)))
	s.notify(ctx, events.NewChange(project, events.EntityLocalization, events.ActionCreated, user, ids...))
	return ids, nil
}

func (s *Service) buildLocalization(ctx context.Context, project, user int64, in *NewLocalization, c *createCache) (*models.Localization, error) {
	m, ok := c.media[in.Media]
	if !ok {
		var err error
		if m, err = s.media(ctx, project, in.Media); err != nil {
			return nil, err
		}
		c.media[in.Media] = m
	}
	t, ok := c.types[in.Type]
	if !ok {
		var err error
		if t, err = s.entityType(ctx, project, in.Type, models.KindLocalization); err != nil {
			return nil, err
		}
		c.types[in.Type] = t
	}
	if len(t.MediaTypes) > 0 && !slices.Contains(t.MediaTypes, m.Type) {
		return nil, invalid("localization type %d does not apply to media type %d", t.ID, m.Type)
	}
	if err := checkFrame(in.Frame, m); err != nil {
		return nil, err
	}
	shape, err := in.Shape.forDtype(t.Dtype, true)
	if err != nil {
		return nil, err
	}

	schema, ok := c.schemas[t.ID]
	if !ok {
		if schema, err = s.schema(ctx, project, t.ID); err != nil {
			return nil, err
		}
		c.schemas[t.ID] = schema
	}
	attrs, err := schema.Validate(in.Attributes, true)
	if err != nil {
		return nil, err
	}

	var key int64
	if in.Version != nil {
		key = *in.Version
	}
	version, ok := c.version[key]
	if !ok {
		if version, err = s.version(ctx, project, user, in.Version); err != nil {
			return nil, err
		}
		c.version[key] = version
	}

	l := &models.Localization{
		Project:    project,
		Type:       t.ID,
		Media:      m.ID,
		Version:    version,
		Frame:      in.Frame,
		Modified:   in.Modified,
		Attributes: attrs,
		CreatedBy:  user,
		ModifiedBy: user,
	}
	shape.apply(l)
	return l, nil
}

func checkFrame(frame int64, m *models.Media) error {
	if frame < 0 {
		return invalid("frame must not be negative, got %d", frame)
	}
	if m.NumFrames > 0 && frame >= m.NumFrames {
		return invalid("frame %d is beyond the last frame of media %d (%d frames)", frame, m.ID, m.NumFrames)
	}
	return nil
}

// GetLocalization returns a localization of project.
func (s *Service) GetLocalization(ctx context.Context, project, id int64) (*models.Localization, error) {
	l, err := s.store.GetLocalization(ctx, id)
	if err != nil {
		return nil, err
	}
	if project != 0 && l.Project != project {
		return nil, fmt.Errorf("localization %d in project %d: %w", id, project, store.ErrNotFound)
	}
	return l, nil
}

// ListLocalizations returns the localizations selected by opts.
func (s *Service) ListLocalizations(ctx context.Context, opts ListOptions) ([]models.Localization, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	locs, err := s.store.ListLocalizations(ctx, opts.Query)
	if err != nil {
		return nil, err
	}
	locs = filter(locs, opts.Filter, func(l *models.Localization) map[string]any { return l.Attributes })
	return page(locs, opts.Start, opts.Stop), nil
}

// LocalizationPatch holds the fields a PATCH may change. Nil fields are
// left alone.
type LocalizationPatch struct {
	Version    *int64
	Frame      *int64
	Modified   *bool
	Shape      Shape
	Attributes map[string]any
}

// PatchLocalization updates one localization.
func (s *Service) PatchLocalization(ctx context.Context, user int64, l *models.Localization, p LocalizationPatch) error {
	t, err := s.store.GetEntityType(ctx, l.Type)
	if err != nil {
		return err
	}
	shape, err := p.Shape.forDtype(t.Dtype, false)
	if err != nil {
		return err
	}
	shape.apply(l)
	if p.Frame != nil {
		m, err := s.store.GetMedia(ctx, l.Media)
		if err != nil {
			return err
		}
		if err := checkFrame(*p.Frame, m); err != nil {
			return err
		}
		l.Frame = *p.Frame
	}
	if p.Version != nil {
		if l.Version, err = s.version(ctx, l.Project, user, p.Version); err != nil {
			return err
		}
	}
	if p.Modified != nil {
		l.Modified = *p.Modified
	}
	if len(p.Attributes) > 0 {
		schema, err := s.schema(ctx, l.Project, l.Type)
		if err != nil {
			return err
		}
		if l.Attributes, err = schema.Patch(l.Attributes, p.Attributes); err != nil {
			return err
		}
	}
	l.ModifiedBy = user
	if err := s.store.UpdateLocalization(ctx, l); err != nil {
		return err
	}
	s.notify(ctx, events.NewChange(l.Project, events.EntityLocalization, events.ActionUpdated, user, l.ID))
	return nil
}

// PatchLocalizations applies attribute changes to every localization
// selected by opts and returns how many were updated.
func (s *Service) PatchLocalizations(ctx context.Context, user int64, opts ListOptions, attrs map[string]any) (int, error) {
	if len(attrs) == 0 {
		return 0, invalid("no attributes given")
	}
	locs, err := s.ListLocalizations(ctx, opts)
	if err != nil {
		return 0, err
	}
	schemas := map[int64]*attribute.Schema{}
	ids := make([]int64, 0, len(locs))
	for i := range locs {
		l := &locs[i]
		schema, ok := schemas[l.Type]
		if !ok {
			if schema, err = s.schema(ctx, l.Project, l.Type); err != nil {
				return len(ids), err
			}
			schemas[l.Type] = schema
		}
		if l.Attributes, err = schema.Patch(l.Attributes, attrs); err != nil {
			return len(ids), fmt.Errorf("localization %d: %w", l.ID, err)
		}
		l.ModifiedBy = user
		if err := s.store.UpdateLocalization(ctx, l); err != nil {
			return len(ids), err
		}
		ids = append(ids, l.ID)
	}
	s.notify(ctx, events.NewChange(opts.Query.Project, events.EntityLocalization, events.ActionUpdated, user, ids...))
	return len(ids), nil
}

// DeleteLocalization removes one localization.
func (s *Service) DeleteLocalization(ctx context.Context, user int64, l *models.Localization) error {
	if _, err := s.store.DeleteLocalizations(ctx, []int64{l.ID}); err != nil {
		return err
	}
	metrics.AnnotationsDeleted.WithLabelValues(events.EntityLocalization).Inc()
	s.notify(ctx, events.NewChange(l.Project, events.EntityLocalization, events.ActionDeleted, user, l.ID))
	return nil
}

// DeleteLocalizations removes every localization selected by opts.
func (s *Service) DeleteLocalizations(ctx context.Context, user int64, opts ListOptions) (int, error) {
	locs, err := s.ListLocalizations(ctx, opts)
	if err != nil {
		return 0, err
	}
	ids := make([]int64, len(locs))
	for i := range locs {
		ids[i] = locs[i].ID
	}
	n, err := s.store.DeleteLocalizations(ctx, ids)
	if err != nil {
		return 0, err
	}
	metrics.AnnotationsDeleted.WithLabelValues(events.EntityLocalization).Add(float64(n))
	s.notify(ctx, events.NewChange(opts.Query.Project, events.EntityLocalization, events.ActionDeleted, user, ids...))
	return n, nil
}
