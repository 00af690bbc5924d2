// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/tator-io/tator/internal/models"
)

// Memory is an in-process Store for tests and development. Records are
// copied on the way in and out.
type Memory struct {
	mu  sync.RWMutex
	seq int64

	users         map[int64]*models.User
	projects      map[int64]*models.Project
	memberships   map[[2]int64]models.Membership
	versions      map[int64]*models.Version
	entityTypes   map[int64]*models.EntityType
	attrTypes     map[int64]*models.AttributeType
	media         map[int64]*models.Media
	localizations map[int64]*models.Localization
	states        map[int64]*models.State
	leaves        map[int64]*models.Leaf
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		users:         make(map[int64]*models.User),
		projects:      make(map[int64]*models.Project),
		memberships:   make(map[[2]int64]models.Membership),
		versions:      make(map[int64]*models.Version),
		entityTypes:   make(map[int64]*models.EntityType),
		attrTypes:     make(map[int64]*models.AttributeType),
		media:         make(map[int64]*models.Media),
		localizations: make(map[int64]*models.Localization),
		states:        make(map[int64]*models.State),
		leaves:        make(map[int64]*models.Leaf),
	}
}

func (m *Memory) next() int64 {
	m.seq++
	return m.seq
}

func (m *Memory) Ping(context.Context) error { return nil }
func (m *Memory) Close() error              { return nil }

func notFound(what string, id int64) error {
	return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
}

// sortedValues returns copies of the map values that pass keep, by ID.
func sortedValues[T any](src map[int64]*T, keep func(*T) bool, clone func(*T) *T) []T {
	ids := make([]int64, 0, len(src))
	for id, v := range src {
		if keep(v) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, *clone(src[id]))
	}
	return out
}

func cloneAttrs(a map[string]any) map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		if s, ok := v.([]any); ok {
			v = slices.Clone(s)
		}
		out[k] = v
	}
	return out
}

func cloneUser(u *models.User) *models.User { c := *u; return &c }
func cloneProject(p *models.Project) *models.Project {
	c := *p
	c.Permission = models.PermissionNone
	return &c
}
func cloneVersion(v *models.Version) *models.Version { c := *v; return &c }

func cloneEntityType(t *models.EntityType) *models.EntityType {
	c := *t
	c.MediaTypes = slices.Clone(t.MediaTypes)
	c.Colors = maps.Clone(t.Colors)
	c.AttributeTypes = nil
	return &c
}

func cloneAttrType(a *models.AttributeType) *models.AttributeType {
	c := *a
	c.Choices = slices.Clone(a.Choices)
	c.Labels = slices.Clone(a.Labels)
	if a.Autocomplete != nil {
		ac := *a.Autocomplete
		c.Autocomplete = &ac
	}
	if p, ok := a.Default.([]any); ok {
		c.Default = slices.Clone(p)
	}
	return &c
}

func cloneMedia(md *models.Media) *models.Media {
	c := *md
	c.Attributes = cloneAttrs(md.Attributes)
	return &c
}

func cloneLocalization(l *models.Localization) *models.Localization {
	c := *l
	c.Attributes = cloneAttrs(l.Attributes)
	for _, p := range []**float64{&c.X, &c.Y, &c.Width, &c.Height, &c.X0, &c.Y0, &c.X1, &c.Y1} {
		if *p != nil {
			v := **p
			*p = &v
		}
	}
	return &c
}

func cloneState(s *models.State) *models.State {
	c := *s
	c.Media = slices.Clone(s.Media)
	c.Localizations = slices.Clone(s.Localizations)
	c.Attributes = cloneAttrs(s.Attributes)
	if s.Frame != nil {
		f := *s.Frame
		c.Frame = &f
	}
	return &c
}

func cloneLeaf(l *models.Leaf) *models.Leaf {
	c := *l
	c.Attributes = cloneAttrs(l.Attributes)
	if l.Parent != nil {
		p := *l.Parent
		c.Parent = &p
	}
	return &c
}

func stamp(created *time.Time) time.Time {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	return now
}

// Users.

func (m *Memory) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return fmt.Errorf("user %q: %w", u.Username, ErrConflict)
		}
	}
	u.ID = m.next()
	stamp(&u.CreatedAt)
	m.users[u.ID] = cloneUser(u)
	return nil
}

func (m *Memory) GetUser(_ context.Context, id int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return cloneUser(u), nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
}

func (m *Memory) UpdateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[u.ID]
	if !ok {
		return notFound("user", u.ID)
	}
	existing.FirstName = u.FirstName
	existing.LastName = u.LastName
	existing.Email = u.Email
	return nil
}

// Projects and memberships.

func (m *Memory) CreateProject(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.next()
	stamp(&p.CreatedAt)
	m.projects[p.ID] = cloneProject(p)
	return nil
}

func (m *Memory) GetProject(_ context.Context, id int64) (*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, notFound("project", id)
	}
	return cloneProject(p), nil
}

func (m *Memory) ListProjects(_ context.Context, user int64) ([]models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.projects, func(p *models.Project) bool {
		_, ok := m.memberships[[2]int64{p.ID, user}]
		return ok
	}, cloneProject), nil
}

func (m *Memory) UpdateProject(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.projects[p.ID]
	if !ok {
		return notFound("project", p.ID)
	}
	existing.Name = p.Name
	existing.Summary = p.Summary
	return nil
}

func (m *Memory) DeleteProject(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return notFound("project", id)
	}
	delete(m.projects, id)
	maps.DeleteFunc(m.memberships, func(k [2]int64, _ models.Membership) bool { return k[0] == id })
	maps.DeleteFunc(m.versions, func(_ int64, v *models.Version) bool { return v.Project == id })
	maps.DeleteFunc(m.entityTypes, func(_ int64, v *models.EntityType) bool { return v.Project == id })
	maps.DeleteFunc(m.attrTypes, func(_ int64, v *models.AttributeType) bool { return v.Project == id })
	maps.DeleteFunc(m.media, func(_ int64, v *models.Media) bool { return v.Project == id })
	maps.DeleteFunc(m.localizations, func(_ int64, v *models.Localization) bool { return v.Project == id })
	maps.DeleteFunc(m.states, func(_ int64, v *models.State) bool { return v.Project == id })
	maps.DeleteFunc(m.leaves, func(_ int64, v *models.Leaf) bool { return v.Project == id })
	return nil
}

func (m *Memory) SetMembership(_ context.Context, ms models.Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[ms.Project]; !ok {
		return notFound("project", ms.Project)
	}
	u, ok := m.users[ms.User]
	if !ok {
		return notFound("user", ms.User)
	}
	ms.Username = u.Username
	m.memberships[[2]int64{ms.Project, ms.User}] = ms
	return nil
}

func (m *Memory) GetMembership(_ context.Context, project, user int64) (*models.Membership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ms, ok := m.memberships[[2]int64{project, user}]
	if !ok {
		return nil, fmt.Errorf("membership of user %d in project %d: %w", user, project, ErrNotFound)
	}
	return &ms, nil
}

func (m *Memory) ListMemberships(_ context.Context, project int64) ([]models.Membership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Membership
	for k, ms := range m.memberships {
		if k[0] == project {
			out = append(out, ms)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User < out[j].User })
	return out, nil
}

// Versions and types.

func (m *Memory) CreateVersion(_ context.Context, v *models.Version) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createVersionLocked(v)
}

func (m *Memory) createVersionLocked(v *models.Version) error {
	if _, ok := m.projects[v.Project]; !ok {
		return notFound("project", v.Project)
	}
	for _, existing := range m.versions {
		if existing.Project == v.Project && existing.Number == v.Number {
			return fmt.Errorf("version number %d: %w", v.Number, ErrConflict)
		}
	}
	v.ID = m.next()
	stamp(&v.CreatedAt)
	m.versions[v.ID] = cloneVersion(v)
	return nil
}

func (m *Memory) GetVersion(_ context.Context, id int64) (*models.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.versions[id]
	if !ok {
		return nil, notFound("version", id)
	}
	return cloneVersion(v), nil
}

func (m *Memory) ListVersions(_ context.Context, project int64) ([]models.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := sortedValues(m.versions, func(v *models.Version) bool { return v.Project == project }, cloneVersion)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *Memory) BaselineVersion(_ context.Context, project, createdBy int64) (*models.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.versions {
		if v.Project == project && v.Number == 0 {
			return cloneVersion(v), nil
		}
	}
	v := &models.Version{Project: project, Name: models.BaselineVersionName, Number: 0, ShowEmpty: true, CreatedBy: createdBy}
	if err := m.createVersionLocked(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (m *Memory) CreateEntityType(_ context.Context, t *models.EntityType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[t.Project]; !ok {
		return notFound("project", t.Project)
	}
	t.ID = m.next()
	m.entityTypes[t.ID] = cloneEntityType(t)
	return nil
}

func (m *Memory) GetEntityType(_ context.Context, id int64) (*models.EntityType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.entityTypes[id]
	if !ok {
		return nil, notFound("entity type", id)
	}
	return cloneEntityType(t), nil
}

func (m *Memory) ListEntityTypes(_ context.Context, project int64, kind models.EntityKind) ([]models.EntityType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.entityTypes, func(t *models.EntityType) bool {
		return t.Project == project && (kind == "" || t.Kind == kind)
	}, cloneEntityType), nil
}

func (m *Memory) CreateAttributeType(_ context.Context, a *models.AttributeType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.entityTypes[a.AppliesTo]
	if !ok {
		return notFound("entity type", a.AppliesTo)
	}
	a.Project = t.Project
	if m.attrNameTaken(a) {
		return fmt.Errorf("attribute %q: %w", a.Name, ErrConflict)
	}
	a.ID = m.next()
	m.attrTypes[a.ID] = cloneAttrType(a)
	return nil
}

func (m *Memory) attrNameTaken(a *models.AttributeType) bool {
	for _, existing := range m.attrTypes {
		if existing.ID != a.ID && existing.AppliesTo == a.AppliesTo && existing.Name == a.Name {
			return true
		}
	}
	return false
}

func (m *Memory) GetAttributeType(_ context.Context, id int64) (*models.AttributeType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attrTypes[id]
	if !ok {
		return nil, notFound("attribute type", id)
	}
	return cloneAttrType(a), nil
}

func (m *Memory) ListAttributeTypes(_ context.Context, project int64, appliesTo *int64) ([]models.AttributeType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.attrTypes, func(a *models.AttributeType) bool {
		return a.Project == project && (appliesTo == nil || a.AppliesTo == *appliesTo)
	}, cloneAttrType), nil
}

func (m *Memory) UpdateAttributeType(_ context.Context, a *models.AttributeType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.attrTypes[a.ID]
	if !ok {
		return notFound("attribute type", a.ID)
	}
	candidate := *existing
	candidate.Name = a.Name
	if m.attrNameTaken(&candidate) {
		return fmt.Errorf("attribute %q: %w", a.Name, ErrConflict)
	}
	existing.Name = a.Name
	existing.Description = a.Description
	return nil
}

func (m *Memory) DeleteAttributeType(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attrTypes[id]; !ok {
		return notFound("attribute type", id)
	}
	delete(m.attrTypes, id)
	return nil
}

// Media.

func (m *Memory) CreateMedia(_ context.Context, md *models.Media) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[md.Project]; !ok {
		return notFound("project", md.Project)
	}
	md.ID = m.next()
	md.ModifiedAt = stamp(&md.CreatedAt)
	m.media[md.ID] = cloneMedia(md)
	return nil
}

func (m *Memory) GetMedia(_ context.Context, id int64) (*models.Media, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	md, ok := m.media[id]
	if !ok {
		return nil, notFound("media", id)
	}
	return cloneMedia(md), nil
}

func (m *Memory) ListMedia(_ context.Context, q MediaQuery) ([]models.Media, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.media, q.Match, cloneMedia), nil
}

func (m *Memory) UpdateMedia(_ context.Context, md *models.Media) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.media[md.ID]
	if !ok {
		return notFound("media", md.ID)
	}
	c := cloneMedia(md)
	c.Project, c.Type, c.CreatedBy, c.CreatedAt = existing.Project, existing.Type, existing.CreatedBy, existing.CreatedAt
	c.ModifiedAt = time.Now().UTC()
	md.ModifiedAt = c.ModifiedAt
	m.media[md.ID] = c
	return nil
}

func (m *Memory) DeleteMedia(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.media[id]; !ok {
		return notFound("media", id)
	}
	delete(m.media, id)
	var locs []int64
	for lid, l := range m.localizations {
		if l.Media == id {
			locs = append(locs, lid)
		}
	}
	m.deleteLocalizationsLocked(locs)
	for sid, s := range m.states {
		s.Media = slices.DeleteFunc(s.Media, func(v int64) bool { return v == id })
		if len(s.Media) == 0 {
			delete(m.states, sid)
		}
	}
	return nil
}

// Localizations.

func (m *Memory) CreateLocalizations(_ context.Context, locs []*models.Localization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range locs {
		if _, ok := m.media[l.Media]; !ok {
			return notFound("media", l.Media)
		}
	}
	for _, l := range locs {
		l.ID = m.next()
		l.ModifiedAt = stamp(&l.CreatedAt)
		m.localizations[l.ID] = cloneLocalization(l)
	}
	return nil
}

func (m *Memory) GetLocalization(_ context.Context, id int64) (*models.Localization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.localizations[id]
	if !ok {
		return nil, notFound("localization", id)
	}
	return cloneLocalization(l), nil
}

func (m *Memory) ListLocalizations(_ context.Context, q AnnotationQuery) ([]models.Localization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.localizations, q.MatchLocalization, cloneLocalization), nil
}

func (m *Memory) UpdateLocalization(_ context.Context, l *models.Localization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.localizations[l.ID]
	if !ok {
		return notFound("localization", l.ID)
	}
	c := cloneLocalization(l)
	c.Project, c.Type, c.Media, c.CreatedBy, c.CreatedAt = existing.Project, existing.Type, existing.Media, existing.CreatedBy, existing.CreatedAt
	c.ModifiedAt = time.Now().UTC()
	l.ModifiedAt = c.ModifiedAt
	m.localizations[l.ID] = c
	return nil
}

func (m *Memory) DeleteLocalizations(_ context.Context, ids []int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteLocalizationsLocked(ids), nil
}

func (m *Memory) deleteLocalizationsLocked(ids []int64) int {
	n := 0
	for _, id := range ids {
		if _, ok := m.localizations[id]; ok {
			delete(m.localizations, id)
			n++
		}
	}
	for _, s := range m.states {
		s.Localizations = slices.DeleteFunc(s.Localizations, func(v int64) bool { return slices.Contains(ids, v) })
	}
	return n
}

// States.

func (m *Memory) CreateState(_ context.Context, s *models.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range s.Media {
		if _, ok := m.media[id]; !ok {
			return notFound("media", id)
		}
	}
	for _, id := range s.Localizations {
		if _, ok := m.localizations[id]; !ok {
			return notFound("localization", id)
		}
	}
	s.ID = m.next()
	s.ModifiedAt = stamp(&s.CreatedAt)
	m.states[s.ID] = cloneState(s)
	return nil
}

func (m *Memory) GetState(_ context.Context, id int64) (*models.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[id]
	if !ok {
		return nil, notFound("state", id)
	}
	return cloneState(s), nil
}

func (m *Memory) ListStates(_ context.Context, q AnnotationQuery) ([]models.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.states, q.MatchState, cloneState), nil
}

func (m *Memory) UpdateState(_ context.Context, s *models.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.states[s.ID]
	if !ok {
		return notFound("state", s.ID)
	}
	c := cloneState(s)
	c.Project, c.Type, c.CreatedBy, c.CreatedAt = existing.Project, existing.Type, existing.CreatedBy, existing.CreatedAt
	c.Media, c.Localizations = slices.Clone(existing.Media), slices.Clone(existing.Localizations)
	c.Frame = cloneState(existing).Frame
	c.ModifiedAt = time.Now().UTC()
	s.ModifiedAt = c.ModifiedAt
	m.states[s.ID] = c
	return nil
}

func (m *Memory) DeleteStates(_ context.Context, ids []int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := m.states[id]; ok {
			delete(m.states, id)
			n++
		}
	}
	return n, nil
}

// Leaves.

func (m *Memory) pathTaken(project, except int64, path string) bool {
	for _, l := range m.leaves {
		if l.Project == project && l.ID != except && l.Path == path {
			return true
		}
	}
	return false
}

func (m *Memory) CreateLeaves(_ context.Context, leaves []*models.Leaf) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool, len(leaves))
	for _, l := range leaves {
		if _, ok := m.projects[l.Project]; !ok {
			return notFound("project", l.Project)
		}
		if l.Parent != nil {
			if _, ok := m.leaves[*l.Parent]; !ok {
				return notFound("leaf", *l.Parent)
			}
		}
		key := fmt.Sprintf("%d/%s", l.Project, l.Path)
		if seen[key] || m.pathTaken(l.Project, 0, l.Path) {
			return fmt.Errorf("leaf %q: %w", l.Path, ErrConflict)
		}
		seen[key] = true
	}
	for _, l := range leaves {
		l.ID = m.next()
		l.ModifiedAt = stamp(&l.CreatedAt)
		m.leaves[l.ID] = cloneLeaf(l)
	}
	return nil
}

func (m *Memory) GetLeaf(_ context.Context, id int64) (*models.Leaf, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.leaves[id]
	if !ok {
		return nil, notFound("leaf", id)
	}
	return cloneLeaf(l), nil
}

func (m *Memory) ListLeaves(_ context.Context, q LeafQuery) ([]models.Leaf, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := sortedValues(m.leaves, q.Match, cloneLeaf)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (m *Memory) UpdateLeaf(_ context.Context, l *models.Leaf) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.leaves[l.ID]
	if !ok {
		return notFound("leaf", l.ID)
	}
	if m.pathTaken(existing.Project, l.ID, l.Path) {
		return fmt.Errorf("leaf %q: %w", l.Path, ErrConflict)
	}
	c := cloneLeaf(existing)
	c.Name, c.Path, c.Attributes, c.ModifiedBy = l.Name, l.Path, cloneAttrs(l.Attributes), l.ModifiedBy
	c.ModifiedAt = time.Now().UTC()
	l.ModifiedAt = c.ModifiedAt
	m.leaves[l.ID] = c
	return nil
}

func (m *Memory) DeleteLeaves(_ context.Context, ids []int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := m.leaves[id]; ok {
			delete(m.leaves, id)
			n++
		}
	}
	return n, nil
}
