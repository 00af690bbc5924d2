// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package annotation

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/tator-io/tator/internal/attribute"
	"github.com/tator-io/tator/internal/events"
	"github.com/tator-io/tator/internal/models"
	"github.com/tator-io/tator/internal/store"
	"github.com/tator-io/tator/internal/validation"
)

// CreateProject stores a project and makes its creator a Full Control
// member.
func (s *Service) CreateProject(ctx context.Context, user int64, p *models.Project) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return invalid("project name must not be empty")
	}
	p.CreatedBy = user
	if err := s.store.CreateProject(ctx, p); err != nil {
		return err
	}
	if err := s.store.SetMembership(ctx, models.Membership{
		Project: p.ID, User: user, Permission: models.PermissionFullControl,
	}); err != nil {
		return fmt.Errorf("failed to add project creator: %w", err)
	}
	if _, err := s.store.BaselineVersion(ctx, p.ID, user); err != nil {
		return err
	}
	p.Permission = models.PermissionFullControl
	s.notify(ctx, events.NewChange(p.ID, events.EntityProject, events.ActionCreated, user, p.ID))
	return nil
}

// DeleteProject removes a project and everything in it.
func (s *Service) DeleteProject(ctx context.Context, user, id int64) error {
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return err
	}
	if s.schemas != nil {
		s.schemas.Purge()
	}
	s.notify(ctx, events.NewChange(id, events.EntityProject, events.ActionDeleted, user, id))
	return nil
}

// CreateVersion adds a version numbered after the project's highest one.
func (s *Service) CreateVersion(ctx context.Context, user int64, v *models.Version) error {
	v.Name = strings.TrimSpace(v.Name)
	if v.Name == "" {
		return invalid("version name must not be empty")
	}
	if _, err := s.store.BaselineVersion(ctx, v.Project, user); err != nil {
		return err
	}
	existing, err := s.store.ListVersions(ctx, v.Project)
	if err != nil {
		return err
	}
	var highest int64
	for _, e := range existing {
		highest = max(highest, e.Number)
	}
	v.Number = highest + 1
	v.CreatedBy = user
	if err := s.store.CreateVersion(ctx, v); err != nil {
		return err
	}
	s.notify(ctx, events.NewChange(v.Project, events.EntityVersion, events.ActionCreated, user, v.ID))
	return nil
}

// NewEntityType describes a media, localization, state or leaf type. Media
// and localization types need a dtype of their kind; the others take none.
type NewEntityType struct {
	Kind          models.EntityKind    `json:"kind" validate:"required,oneof=media localization state leaf"`
	Name          string               `json:"name" validate:"required,max=256"`
	Description   string               `json:"description"`
	Dtype         string               `json:"dtype" validate:"omitempty,oneof=image video multi box line dot"`
	Association   models.Association   `json:"association" validate:"required_if=Kind state,omitempty,oneof=Media Frame Localization"`
	Interpolation models.Interpolation `json:"interpolation" validate:"omitempty,oneof=none latest"`
	MediaTypes    []int64              `json:"media_types" validate:"dive,gt=0"`
	Colors        map[string]string    `json:"colors" validate:"dive,hexcolor_or_empty"`
	LineWidth     int                  `json:"line_width" validate:"gte=0,lte=100"`
	Visible       *bool                `json:"visible"`
}

var kindDtypes = map[models.EntityKind][]string{
	models.KindMedia:        {models.MediaImage, models.MediaVideo, models.MediaMulti},
	models.KindLocalization: {models.ShapeBox, models.ShapeLine, models.ShapeDot},
}

// CreateEntityType validates and stores an entity type.
func (s *Service) CreateEntityType(ctx context.Context, project, user int64, in NewEntityType) (*models.EntityType, error) {
	in.Name = strings.TrimSpace(in.Name)
	if verr := validation.ValidateStruct(&in); verr != nil {
		return nil, verr
	}
	allowed, typed := kindDtypes[in.Kind]
	switch {
	case typed && in.Dtype == "":
		return nil, invalid("dtype is required for %s types", in.Kind)
	case typed && !slices.Contains(allowed, in.Dtype):
		return nil, invalid("dtype %q is not valid for %s types", in.Dtype, in.Kind)
	case !typed && in.Dtype != "":
		return nil, invalid("%s types take no dtype", in.Kind)
	}
	if in.Kind == models.KindState && in.Interpolation == "" {
		in.Interpolation = models.InterpolateNone
	}
	for _, id := range in.MediaTypes {
		if _, err := s.entityType(ctx, project, id, models.KindMedia); err != nil {
			return nil, err
		}
	}

	t := &models.EntityType{
		Project:     project,
		Kind:        in.Kind,
		Name:        in.Name,
		Description: in.Description,
		MediaTypes:  in.MediaTypes,
		Colors:      in.Colors,
		LineWidth:   in.LineWidth,
		Visible:     in.Visible == nil || *in.Visible,
	}
	if in.Kind == models.KindState {
		t.Association = in.Association
		t.Interpolation = in.Interpolation
	} else {
		t.Dtype = in.Dtype
	}
	if err := s.store.CreateEntityType(ctx, t); err != nil {
		return nil, err
	}
	s.notify(ctx, events.NewChange(project, events.EntityEntityType, events.ActionCreated, user, t.ID))
	return t, nil
}

// ListEntityTypes returns the types of one kind with their attribute types.
func (s *Service) ListEntityTypes(ctx context.Context, project int64, kind models.EntityKind) ([]models.EntityType, error) {
	types, err := s.store.ListEntityTypes(ctx, project, kind)
	if err != nil {
		return nil, err
	}
	attrs, err := s.store.ListAttributeTypes(ctx, project, nil)
	if err != nil {
		return nil, err
	}
	byType := make(map[int64][]models.AttributeType)
	for _, a := range attrs {
		byType[a.AppliesTo] = append(byType[a.AppliesTo], a)
	}
	for i := range types {
		types[i].AttributeTypes = attribute.NewSchema(byType[types[i].ID]).Types()
	}
	return types, nil
}

// CreateAttributeType validates an attribute type and adds it to the
// entity type it applies to. Existing entities are not backfilled; the
// default applies to entities created afterwards.
func (s *Service) CreateAttributeType(ctx context.Context, project, user int64, a *models.AttributeType) error {
	t, err := s.store.GetEntityType(ctx, a.AppliesTo)
	if err != nil {
		return err
	}
	if t.Project != project {
		return fmt.Errorf("entity type %d in project %d: %w", a.AppliesTo, project, store.ErrNotFound)
	}
	if err := attribute.ValidateType(a); err != nil {
		return err
	}
	a.Project = project
	if err := s.store.CreateAttributeType(ctx, a); err != nil {
		return err
	}
	s.forgetSchema(a.AppliesTo)
	s.notify(ctx, events.NewChange(project, events.EntityAttributeType, events.ActionCreated, user, a.ID))
	return nil
}

// UpdateAttributeType changes the name or description of an attribute
// type. A rename moves the stored values of every entity of the type to the
// new key.
func (s *Service) UpdateAttributeType(ctx context.Context, user int64, a *models.AttributeType, name, description *string) error {
	oldName := a.Name
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return invalid("attribute name must not be empty")
		}
		a.Name = n
	}
	if description != nil {
		a.Description = *description
	}
	if err := s.store.UpdateAttributeType(ctx, a); err != nil {
		return err
	}
	s.forgetSchema(a.AppliesTo)
	if a.Name != oldName {
		if err := s.migrateAttribute(ctx, a.AppliesTo, func(attrs map[string]any) bool {
			v, ok := attrs[oldName]
			if !ok {
				return false
			}
			delete(attrs, oldName)
			attrs[a.Name] = v
			return true
		}); err != nil {
			return fmt.Errorf("failed to rename attribute %q: %w", oldName, err)
		}
	}
	s.notify(ctx, events.NewChange(a.Project, events.EntityAttributeType, events.ActionUpdated, user, a.ID))
	return nil
}

// DeleteAttributeType removes an attribute type and its stored values.
func (s *Service) DeleteAttributeType(ctx context.Context, user int64, a *models.AttributeType) error {
	if err := s.store.DeleteAttributeType(ctx, a.ID); err != nil {
		return err
	}
	s.forgetSchema(a.AppliesTo)
	if err := s.migrateAttribute(ctx, a.AppliesTo, func(attrs map[string]any) bool {
		if _, ok := attrs[a.Name]; !ok {
			return false
		}
		delete(attrs, a.Name)
		return true
	}); err != nil {
		return fmt.Errorf("failed to remove attribute %q: %w", a.Name, err)
	}
	s.notify(ctx, events.NewChange(a.Project, events.EntityAttributeType, events.ActionDeleted, user, a.ID))
	return nil
}

// migrateAttribute rewrites the attributes of every entity of type typ.
// edit reports whether it changed the map.
func (s *Service) migrateAttribute(ctx context.Context, typ int64, edit func(map[string]any) bool) error {
	t, err := s.store.GetEntityType(ctx, typ)
	if err != nil {
		return err
	}
	q := store.AnnotationQuery{Project: t.Project, Type: t.ID}
	switch t.Kind {
	case models.KindLocalization:
		locs, err := s.store.ListLocalizations(ctx, q)
		if err != nil {
			return err
		}
		for i := range locs {
			if edit(locs[i].Attributes) {
				if err := s.store.UpdateLocalization(ctx, &locs[i]); err != nil {
					return err
				}
			}
		}
	case models.KindState:
		states, err := s.store.ListStates(ctx, q)
		if err != nil {
			return err
		}
		for i := range states {
			if edit(states[i].Attributes) {
				if err := s.store.UpdateState(ctx, &states[i]); err != nil {
					return err
				}
			}
		}
	case models.KindLeaf:
		leaves, err := s.store.ListLeaves(ctx, store.LeafQuery{Project: t.Project, Type: t.ID})
		if err != nil {
			return err
		}
		for i := range leaves {
			if edit(leaves[i].Attributes) {
				if err := s.store.UpdateLeaf(ctx, &leaves[i]); err != nil {
					return err
				}
			}
		}
	case models.KindMedia:
		media, err := s.store.ListMedia(ctx, store.MediaQuery{Project: t.Project, Type: t.ID})
		if err != nil {
			return err
		}
		for i := range media {
			if edit(media[i].Attributes) {
				if err := s.store.UpdateMedia(ctx, &media[i]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
