// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package store

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/tator-io/tator/internal/models"
)

var (
	// ErrNotFound is returned when a record with the requested key does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a unique key is already taken.
	ErrConflict = errors.New("already exists")
)

// AnnotationQuery selects localizations or states. Zero fields do not
// filter. Results are ordered by ID.
type AnnotationQuery struct {
	Project  int64
	IDs      []int64
	Media    []int64
	Type     int64
	Versions []int64

	// ExcludeModified drops annotations edited in the web UI.
	ExcludeModified bool
}

// MatchLocalization reports whether l satisfies the structural filters.
func (q AnnotationQuery) MatchLocalization(l *models.Localization) bool {
	return q.match(l.ID, l.Project, l.Type, l.Version, l.Modified, []int64{l.Media})
}

// MatchState reports whether s satisfies the structural filters. A state
// matches a media filter when any of its media is listed.
func (q AnnotationQuery) MatchState(s *models.State) bool {
	return q.match(s.ID, s.Project, s.Type, s.Version, s.Modified, s.Media)
}

func (q AnnotationQuery) match(id, project, typ, version int64, modified bool, media []int64) bool {
	if q.Project != 0 && project != q.Project {
		return false
	}
	if len(q.IDs) > 0 && !slices.Contains(q.IDs, id) {
		return false
	}
	if q.Type != 0 && typ != q.Type {
		return false
	}
	if len(q.Versions) > 0 && !slices.Contains(q.Versions, version) {
		return false
	}
	if q.ExcludeModified && modified {
		return false
	}
	if len(q.Media) > 0 && !slices.ContainsFunc(media, func(m int64) bool { return slices.Contains(q.Media, m) }) {
		return false
	}
	return true
}

// MediaQuery selects media of a project.
type MediaQuery struct {
	Project int64
	IDs     []int64
	Type    int64
	Section string
	Name    string
}

func (q MediaQuery) Match(m *models.Media) bool {
	switch {
	case q.Project != 0 && m.Project != q.Project:
		return false
	case len(q.IDs) > 0 && !slices.Contains(q.IDs, m.ID):
		return false
	case q.Type != 0 && m.Type != q.Type:
		return false
	case q.Section != "" && m.Section != q.Section:
		return false
	case q.Name != "" && m.Name != q.Name:
		return false
	}
	return true
}

// LeafQuery selects leaves of a project. Ancestor keeps the leaf at that
// path and everything below it.
type LeafQuery struct {
	Project  int64
	IDs      []int64
	Type     int64
	Name     string
	Ancestor string
}

func (q LeafQuery) Match(l *models.Leaf) bool {
	switch {
	case q.Project != 0 && l.Project != q.Project:
		return false
	case len(q.IDs) > 0 && !slices.Contains(q.IDs, l.ID):
		return false
	case q.Type != 0 && l.Type != q.Type:
		return false
	case q.Name != "" && l.Name != q.Name:
		return false
	case q.Ancestor != "" && !UnderPath(l.Path, q.Ancestor):
		return false
	}
	return true
}

// UnderPath reports whether path is ancestor or one of its descendants.
func UnderPath(path, ancestor string) bool {
	return path == ancestor || strings.HasPrefix(path, ancestor+".")
}

// AccountStore persists users, projects and memberships.
type AccountStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// UpdateUser writes the name and email of u.
	UpdateUser(ctx context.Context, u *models.User) error

	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	// ListProjects returns the projects user is a member of.
	ListProjects(ctx context.Context, user int64) ([]models.Project, error)
	UpdateProject(ctx context.Context, p *models.Project) error
	// DeleteProject removes the project and everything it owns.
	DeleteProject(ctx context.Context, id int64) error

	// SetMembership creates or replaces the membership of m.User in m.Project.
	SetMembership(ctx context.Context, m models.Membership) error
	GetMembership(ctx context.Context, project, user int64) (*models.Membership, error)
	ListMemberships(ctx context.Context, project int64) ([]models.Membership, error)
}

// TypeStore persists versions, entity types and attribute types.
type TypeStore interface {
	CreateVersion(ctx context.Context, v *models.Version) error
	GetVersion(ctx context.Context, id int64) (*models.Version, error)
	ListVersions(ctx context.Context, project int64) ([]models.Version, error)
	// BaselineVersion returns version number 0 of the project, creating it
	// on first use.
	BaselineVersion(ctx context.Context, project, createdBy int64) (*models.Version, error)

	CreateEntityType(ctx context.Context, t *models.EntityType) error
	GetEntityType(ctx context.Context, id int64) (*models.EntityType, error)
	ListEntityTypes(ctx context.Context, project int64, kind models.EntityKind) ([]models.EntityType, error)

	CreateAttributeType(ctx context.Context, a *models.AttributeType) error
	GetAttributeType(ctx context.Context, id int64) (*models.AttributeType, error)
	// ListAttributeTypes returns the attribute types of a project, optionally
	// only those applying to one entity type.
	ListAttributeTypes(ctx context.Context, project int64, appliesTo *int64) ([]models.AttributeType, error)
	UpdateAttributeType(ctx context.Context, a *models.AttributeType) error
	DeleteAttributeType(ctx context.Context, id int64) error
}

// AnnotationStore persists media, localizations and states.
type AnnotationStore interface {
	CreateMedia(ctx context.Context, m *models.Media) error
	GetMedia(ctx context.Context, id int64) (*models.Media, error)
	ListMedia(ctx context.Context, q MediaQuery) ([]models.Media, error)
	UpdateMedia(ctx context.Context, m *models.Media) error
	// DeleteMedia removes the media, its localizations and the states left
	// without media.
	DeleteMedia(ctx context.Context, id int64) error

	// CreateLocalizations inserts all localizations or none of them.
	CreateLocalizations(ctx context.Context, locs []*models.Localization) error
	GetLocalization(ctx context.Context, id int64) (*models.Localization, error)
	ListLocalizations(ctx context.Context, q AnnotationQuery) ([]models.Localization, error)
	UpdateLocalization(ctx context.Context, l *models.Localization) error
	// DeleteLocalizations removes the localizations and detaches them from
	// states. It returns the number removed.
	DeleteLocalizations(ctx context.Context, ids []int64) (int, error)

	CreateState(ctx context.Context, s *models.State) error
	GetState(ctx context.Context, id int64) (*models.State, error)
	ListStates(ctx context.Context, q AnnotationQuery) ([]models.State, error)
	UpdateState(ctx context.Context, s *models.State) error
	DeleteStates(ctx context.Context, ids []int64) (int, error)
}

// LeafStore persists leaves.
type LeafStore interface {
	// CreateLeaves inserts all leaves or none of them. Paths are unique
	// per project; a taken path is ErrConflict.
	CreateLeaves(ctx context.Context, leaves []*models.Leaf) error
	GetLeaf(ctx context.Context, id int64) (*models.Leaf, error)
	// ListLeaves returns the selected leaves ordered by path.
	ListLeaves(ctx context.Context, q LeafQuery) ([]models.Leaf, error)
	// UpdateLeaf writes the name, path and attributes of l.
	// A path taken by another leaf is ErrConflict.
	UpdateLeaf(ctx context.Context, l *models.Leaf) error
	DeleteLeaves(ctx context.Context, ids []int64) (int, error)
}

// Store is the full persistence layer.
type Store interface {
	AccountStore
	TypeStore
	AnnotationStore
	LeafStore

	Ping(ctx context.Context) error
	Close() error
}
