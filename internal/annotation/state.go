// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package annotation

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/tator-io/tator/internal/attribute"
	"github.com/tator-io/tator/internal/events"
	"github.com/tator-io/tator/internal/metrics"
	"github.com/tator-io/tator/internal/models"
	"github.com/tator-io/tator/internal/store"
)

// NewState is a state to create.
type NewState struct {
	Media         []int64
	Localizations []int64
	Type          int64
	Frame         *int64
	Version       *int64
	Modified      bool
	Attributes    map[string]any
}

// CreateState validates a state against its type's association and stores
// it.
func (s *Service) CreateState(ctx context.Context, project, user int64, in NewState) (*models.State, error) {
	if len(in.Media) == 0 {
		return nil, invalid("media_ids must name at least one media")
	}
	t, err := s.entityType(ctx, project, in.Type, models.KindState)
	if err != nil {
		return nil, err
	}

	media := make([]*models.Media, 0, len(in.Media))
	for _, id := range in.Media {
		m, err := s.media(ctx, project, id)
		if err != nil {
			return nil, err
		}
		if len(t.MediaTypes) > 0 && !slices.Contains(t.MediaTypes, m.Type) {
			return nil, invalid("state type %d does not apply to media type %d", t.ID, m.Type)
		}
		media = append(media, m)
	}

	st := &models.State{
		Project:    project,
		Type:       t.ID,
		Media:      slices.Clone(in.Media),
		Modified:   in.Modified,
		CreatedBy:  user,
		ModifiedBy: user,
	}

	switch t.Association {
	case models.AssociateMedia:
	case models.AssociateFrame:
		if in.Frame == nil {
			return nil, invalid("frame is required for Frame associated states")
		}
		if len(media) > 1 {
			return nil, invalid("Frame associated states take exactly one media, got %d", len(media))
		}
		if err := checkFrame(*in.Frame, media[0]); err != nil {
			return nil, err
		}
		f := *in.Frame
		st.Frame = &f
	case models.AssociateLocalization:
		if len(in.Localizations) == 0 {
			return nil, invalid("localization_ids is required for Localization associated states")
		}
		for _, id := range in.Localizations {
			l, err := s.store.GetLocalization(ctx, id)
			if err != nil {
				return nil, err
			}
			if l.Project != project {
				return nil, invalid("localization %d belongs to another project", id)
			}
			if !slices.Contains(in.Media, l.Media) {
				return nil, invalid("localization %d is not on any of the given media", id)
			}
		}
		st.Localizations = slices.Clone(in.Localizations)
	default:
		return nil, fmt.Errorf("state type %d has unknown association %q", t.ID, t.Association)
	}

	schema, err := s.schema(ctx, project, t.ID)
	if err != nil {
		return nil, err
	}
	if st.Attributes, err = schema.Validate(in.Attributes, true); err != nil {
		return nil, err
	}
	if st.Version, err = s.version(ctx, project, user, in.Version); err != nil {
		return nil, err
	}

	if err := s.store.CreateState(ctx, st); err != nil {
		return nil, err
	}
	metrics.AnnotationsCreated.WithLabelValues(events.EntityState).Inc()
	s.notify(ctx, events.NewChange(project, events.EntityState, events.ActionCreated, user, st.ID))
	return st, nil
}

// GetState returns a state of project.
func (s *Service) GetState(ctx context.Context, project, id int64) (*models.State, error) {
	st, err := s.store.GetState(ctx, id)
	if err != nil {
		return nil, err
	}
	if project != 0 && st.Project != project {
		return nil, fmt.Errorf("state %d in project %d: %w", id, project, store.ErrNotFound)
	}
	return st, nil
}

// ListStates returns the states selected by opts. When opts names a type
// with Frame association the result is ordered by frame.
func (s *Service) ListStates(ctx context.Context, opts ListOptions) ([]models.State, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	states, err := s.store.ListStates(ctx, opts.Query)
	if err != nil {
		return nil, err
	}
	states = filter(states, opts.Filter, func(st *models.State) map[string]any { return st.Attributes })

	if opts.Query.Type != 0 {
		t, err := s.store.GetEntityType(ctx, opts.Query.Type)
		if err != nil {
			return nil, err
		}
		if t.Association == models.AssociateFrame {
			sortByFrame(states)
		}
	}
	return page(states, opts.Start, opts.Stop), nil
}

// sortByFrame orders states by frame, then by ID. States without a frame
// go last.
func sortByFrame(states []models.State) {
	sort.SliceStable(states, func(i, j int) bool {
		a, b := states[i].Frame, states[j].Frame
		switch {
		case a == nil || b == nil:
			return a != nil && b == nil
		case *a != *b:
			return *a < *b
		}
		return states[i].ID < states[j].ID
	})
}

// StatePatch holds the fields a PATCH may change.
type StatePatch struct {
	Version    *int64
	Modified   *bool
	Attributes map[string]any
}

// PatchState updates one state.
func (s *Service) PatchState(ctx context.Context, user int64, st *models.State, p StatePatch) error {
	var err error
	if p.Version != nil {
		if st.Version, err = s.version(ctx, st.Project, user, p.Version); err != nil {
			return err
		}
	}
	if p.Modified != nil {
		st.Modified = *p.Modified
	}
	if len(p.Attributes) > 0 {
		schema, err := s.schema(ctx, st.Project, st.Type)
		if err != nil {
			return err
		}
		if st.Attributes, err = schema.Patch(st.Attributes, p.Attributes); err != nil {
			return err
		}
	}
	st.ModifiedBy = user
	if err := s.store.UpdateState(ctx, st); err != nil {
		return err
	}
	s.notify(ctx, events.NewChange(st.Project, events.EntityState, events.ActionUpdated, user, st.ID))
	return nil
}

// PatchStates applies attribute changes to every state selected by opts.
func (s *Service) PatchStates(ctx context.Context, user int64, opts ListOptions, attrs map[string]any) (int, error) {
	if len(attrs) == 0 {
		return 0, invalid("no attributes given")
	}
	states, err := s.ListStates(ctx, opts)
	if err != nil {
		return 0, err
	}
	schemas := map[int64]*attribute.Schema{}
	ids := make([]int64, 0, len(states))
	for i := range states {
		st := &states[i]
		schema, ok := schemas[st.Type]
		if !ok {
			if schema, err = s.schema(ctx, st.Project, st.Type); err != nil {
				return len(ids), err
			}
			schemas[st.Type] = schema
		}
		if st.Attributes, err = schema.Patch(st.Attributes, attrs); err != nil {
			return len(ids), fmt.Errorf("state %d: %w", st.ID, err)
		}
		st.ModifiedBy = user
		if err := s.store.UpdateState(ctx, st); err != nil {
			return len(ids), err
		}
		ids = append(ids, st.ID)
	}
	s.notify(ctx, events.NewChange(opts.Query.Project, events.EntityState, events.ActionUpdated, user, ids...))
	return len(ids), nil
}

// DeleteState removes a state and its associations.
func (s *Service) DeleteState(ctx context.Context, user int64, st *models.State) error {
	n, err := s.store.DeleteStates(ctx, []int64{st.ID})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("state %d: %w", st.ID, store.ErrNotFound)
	}
	metrics.AnnotationsDeleted.WithLabelValues(events.EntityState).Inc()
	s.notify(ctx, events.NewChange(st.Project, events.EntityState, events.ActionDeleted, user, st.ID))
	return nil
}

// DeleteStates removes every state selected by opts.
func (s *Service) DeleteStates(ctx context.Context, user int64, opts ListOptions) (int, error) {
	states, err := s.ListStates(ctx, opts)
	if err != nil {
		return 0, err
	}
	ids := make([]int64, len(states))
	for i := range states {
		ids[i] = states[i].ID
	}
	n, err := s.store.DeleteStates(ctx, ids)
	if err != nil {
		return 0, err
	}
	metrics.AnnotationsDeleted.WithLabelValues(events.EntityState).Add(float64(n))
	s.notify(ctx, events.NewChange(opts.Query.Project, events.EntityState, events.ActionDeleted, user, ids...))
	return n, nil
}
