// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package annotation

import (
	"context"
	"fmt"
	"strings"

	"github.com/tator-io/tator/internal/attribute"
	"github.com/tator-io/tator/internal/events"
	"github.com/tator-io/tator/internal/models"
	"github.com/tator-io/tator/internal/store"
	"github.com/tator-io/tator/internal/validation"
)

// NewMedia is a media record to create. Files are not handled here; the
// record carries metadata only.
type NewMedia struct {
	Type       int64          `json:"type" validate:"required,gt=0"`
	Name       string         `json:"name" validate:"required,max=1024"`
	MD5        string         `json:"md5" validate:"omitempty,len=32,hexadecimal"`
	Section    string         `json:"section" validate:"max=256"`
	NumFrames  int64          `json:"num_frames" validate:"gte=0"`
	FPS        float64        `json:"fps" validate:"gte=0"`
	Width      int64          `json:"width" validate:"gte=0"`
	Height     int64          `json:"height" validate:"gte=0"`
	Attributes map[string]any `json:"attributes"`
}

// CreateMedia validates and stores a media record.
func (s *Service) CreateMedia(ctx context.Context, project, user int64, in NewMedia) (*models.Media, error) {
	in.Name = strings.TrimSpace(in.Name)
	if verr := validation.ValidateStruct(&in); verr != nil {
		return nil, verr
	}
	t, err := s.entityType(ctx, project, in.Type, models.KindMedia)
	if err != nil {
		return nil, err
	}
	if t.Dtype == models.MediaImage && in.NumFrames > 1 {
		return nil, invalid("image media have at most one frame, got %d", in.NumFrames)
	}
	schema, err := s.schema(ctx, project, t.ID)
	if err != nil {
		return nil, err
	}
	attrs, err := schema.Validate(in.Attributes, false)
	if err != nil {
		return nil, err
	}

	m := &models.Media{
		Project:    project,
		Type:       t.ID,
		Name:       in.Name,
		MD5:        strings.ToLower(in.MD5),
		Section:    in.Section,
		NumFrames:  in.NumFrames,
		FPS:        in.FPS,
		Width:      in.Width,
		Height:     in.Height,
		Attributes: attrs,
		CreatedBy:  user,
	}
	if err := s.store.CreateMedia(ctx, m); err != nil {
		return nil, err
	}
	s.notify(ctx, events.NewChange(project, events.EntityMedia, events.ActionCreated, user, m.ID))
	return m, nil
}

// GetMedia returns a media of project.
func (s *Service) GetMedia(ctx context.Context, project, id int64) (*models.Media, error) {
	m, err := s.store.GetMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	if project != 0 && m.Project != project {
		return nil, fmt.Errorf("media %d in project %d: %w", id, project, store.ErrNotFound)
	}
	return m, nil
}

// MediaListOptions selects media.
type MediaListOptions struct {
	Query  store.MediaQuery
	Filter *attribute.Query
	Start  int
	Stop   *int
}

// ListMedia returns the media selected by opts.
func (s *Service) ListMedia(ctx context.Context, opts MediaListOptions) ([]models.Media, error) {
	if err := validatePage(opts.Start, opts.Stop); err != nil {
		return nil, err
	}
	media, err := s.store.ListMedia(ctx, opts.Query)
	if err != nil {
		return nil, err
	}
	media = filter(media, opts.Filter, func(m *models.Media) map[string]any { return m.Attributes })
	return page(media, opts.Start, opts.Stop), nil
}

// SectionCounts returns the number of media per section among the media
// selected by opts. Media without a section count under "".
func (s *Service) SectionCounts(ctx context.Context, opts MediaListOptions) (map[string]int64, error) {
	opts.Start, opts.Stop = 0, nil
	media, err := s.ListMedia(ctx, opts)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64)
	for i := range media {
		out[media[i].Section]++
	}
	return out, nil
}

// MediaPatch holds the media fields a PATCH may change.
type MediaPatch struct {
	Name       *string
	Section    *string
	NumFrames  *int64
	FPS        *float64
	Width      *int64
	Height     *int64
	Attributes map[string]any
}

// PatchMedia updates one media record.
func (s *Service) PatchMedia(ctx context.Context, user int64, m *models.Media, p MediaPatch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return invalid("name must not be empty")
		}
		m.Name = name
	}
	if p.Section != nil {
		m.Section = *p.Section
	}
	for _, v := range []*int64{p.NumFrames, p.Width, p.Height} {
		if v != nil && *v < 0 {
			return invalid("dimensions must not be negative")
		}
	}
	if p.NumFrames != nil {
		m.NumFrames = *p.NumFrames
	}
	if p.Width != nil {
		m.Width = *p.Width
	}
	if p.Height != nil {
		m.Height = *p.Height
	}
	if p.FPS != nil {
		if *p.FPS < 0 {
			return invalid("fps must not be negative")
		}
		m.FPS = *p.FPS
	}
	if len(p.Attributes) > 0 {
		schema, err := s.schema(ctx, m.Project, m.Type)
		if err != nil {
			return err
		}
		if m.Attributes, err = schema.Patch(m.Attributes, p.Attributes); err != nil {
			return err
		}
	}
	if err := s.store.UpdateMedia(ctx, m); err != nil {
		return err
	}
	s.notify(ctx, events.NewChange(m.Project, events.EntityMedia, events.ActionUpdated, user, m.ID))
	return nil
}

// DeleteMedia removes a media record with its annotations.
func (s *Service) DeleteMedia(ctx context.Context, user int64, m *models.Media) error {
	if err := s.store.DeleteMedia(ctx, m.ID); err != nil {
		return err
	}
	s.notify(ctx, events.NewChange(m.Project, events.EntityMedia, events.ActionDeleted, user, m.ID))
	return nil
}
