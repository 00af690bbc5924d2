// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package annotation

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tator-io/tator/internal/attribute"
	"github.com/tator-io/tator/internal/events"
	"github.com/tator-io/tator/internal/metrics"
	"github.com/tator-io/tator/internal/models"
	"github.com/tator-io/tator/internal/store"
)

// NewLeaf is a leaf to create. Without a parent the leaf is a root.
type NewLeaf struct {
	Type       int64
	Name       string
	Parent     *int64
	Attributes map[string]any
}

var unsafeLabel = regexp.MustCompile(`[^A-Za-z0-9_]`)

// PathLabel turns a leaf name into one path label.
func PathLabel(name string) string {
	return unsafeLabel.ReplaceAllString(strings.TrimSpace(name), "_")
}

func childPath(parent, name string) string {
	if parent == "" {
		return PathLabel(name)
	}
	return parent + "." + PathLabel(name)
}

// CreateLeaves validates every leaf before storing any of them and returns
// the new IDs in input order. Parents must already exist.
func (s *Service) CreateLeaves(ctx context.Context, project, user int64, in []NewLeaf) ([]int64, error) {
	if len(in) == 0 {
		return nil, invalid("no leaves given")
	}
	if len(in) > s.maxBulk {
		return nil, invalid("at most %d leaves can be created at once, got %d", s.maxBulk, len(in))
	}

	types := map[int64]*attribute.Schema{}
	parents := map[int64]*models.Leaf{}
	leaves := make([]*models.Leaf, len(in))
	for i, nl := range in {
		name := strings.TrimSpace(nl.Name)
		if name == "" {
			return nil, invalid("leaf %d: name must not be empty", i)
		}
		schema, ok := types[nl.Type]
		if !ok {
			if _, err := s.entityType(ctx, project, nl.Type, models.KindLeaf); err != nil {
				return nil, err
			}
			var err error
			if schema, err = s.schema(ctx, project, nl.Type); err != nil {
				return nil, err
			}
			types[nl.Type] = schema
		}
		attrs, err := schema.Validate(nl.Attributes, true)
		if err != nil {
			return nil, fmt.Errorf("leaf %d: %w", i, err)
		}

		l := &models.Leaf{
			Project:    project,
			Type:       nl.Type,
			Name:       name,
			Attributes: attrs,
			CreatedBy:  user,
			ModifiedBy: user,
		}
		var parentPath string
		if nl.Parent != nil {
			p, ok := parents[*nl.Parent]
			if !ok {
				if p, err = s.store.GetLeaf(ctx, *nl.Parent); err != nil {
					return nil, err
				}
				if p.Project != project {
					return nil, invalid("leaf %d belongs to another project", p.ID)
				}
				parents[p.ID] = p
			}
			parentID := p.ID
			l.Parent = &parentID
			parentPath = p.Path
		}
		l.Path = childPath(parentPath, name)
		leaves[i] = l
	}

	if err := s.store.CreateLeaves(ctx, leaves); err != nil {
		return nil, err
	}
	ids := make([]int64, len(leaves))
	for i, l := range leaves {
		ids[i] = l.ID
	}
	metrics.AnnotationsCreated.WithLabelValues(events.EntityLeaf).Add(float64(len(ids)))
	s.notify(ctx, events.NewChange(project, events.EntityLeaf, events.ActionCreated, user, ids...))
	return ids, nil
}

// GetLeaf returns a leaf of project. A zero project skips the check.
func (s *Service) GetLeaf(ctx context.Context, project, id int64) (*models.Leaf, error) {
	l, err := s.store.GetLeaf(ctx, id)
	if err != nil {
		return nil, err
	}
	if project != 0 && l.Project != project {
		return nil, fmt.Errorf("leaf %d in project %d: %w", id, project, store.ErrNotFound)
	}
	return l, nil
}

// LeafListOptions selects leaves.
type LeafListOptions struct {
	Query  store.LeafQuery
	Filter *attribute.Query
	Start  int
	Stop   *int
}

// ListLeaves returns the leaves selected by opts, ordered by path.
func (s *Service) ListLeaves(ctx context.Context, opts LeafListOptions) ([]models.Leaf, error) {
	if err := validatePage(opts.Start, opts.Stop); err != nil {
		return nil, err
	}
	leaves, err := s.store.ListLeaves(ctx, opts.Query)
	if err != nil {
		return nil, err
	}
	leaves = filter(leaves, opts.Filter, func(l *models.Leaf) map[string]any { return l.Attributes })
	return page(leaves, opts.Start, opts.Stop), nil
}

// LeafPatch holds the leaf fields a PATCH may change.
type LeafPatch struct {
	Name       *string
	Attributes map[string]any
}

// PatchLeaf updates one leaf. A rename moves the leaf's descendants to the
// new path.
func (s *Service) PatchLeaf(ctx context.Context, user int64, l *models.Leaf, p LeafPatch) error {
	oldPath := l.Path
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return invalid("name must not be empty")
		}
		l.Name = name
		parent, _ := cutLast(l.Path)
		l.Path = childPath(parent, name)
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

	var descendants []models.Leaf
	if l.Path != oldPath {
		all, err := s.store.ListLeaves(ctx, store.LeafQuery{Project: l.Project, Ancestor: oldPath})
		if err != nil {
			return err
		}
		for _, d := range all {
			if d.ID != l.ID {
				descendants = append(descendants, d)
			}
		}
	}

	l.ModifiedBy = user
	if err := s.store.UpdateLeaf(ctx, l); err != nil {
		return err
	}
	ids := []int64{l.ID}
	for i := range descendants {
		d := &descendants[i]
		d.Path = l.Path + strings.TrimPrefix(d.Path, oldPath)
		d.ModifiedBy = user
		if err := s.store.UpdateLeaf(ctx, d); err != nil {
			return fmt.Errorf("failed to move leaf %d: %w", d.ID, err)
		}
		ids = append(ids, d.ID)
	}
	s.notify(ctx, events.NewChange(l.Project, events.EntityLeaf, events.ActionUpdated, user, ids...))
	return nil
}

// cutLast splits a path into its parent path and last label.
func cutLast(path string) (parent, label string) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

// PatchLeaves applies attribute changes to every leaf selected by opts.
func (s *Service) PatchLeaves(ctx context.Context, user int64, opts LeafListOptions, attrs map[string]any) (int, error) {
	if len(attrs) == 0 {
		return 0, invalid("no attributes given")
	}
	leaves, err := s.ListLeaves(ctx, opts)
	if err != nil {
		return 0, err
	}
	schemas := map[int64]*attribute.Schema{}
	ids := make([]int64, 0, len(leaves))
	for i := range leaves {
		l := &leaves[i]
		schema, ok := schemas[l.Type]
		if !ok {
			if schema, err = s.schema(ctx, l.Project, l.Type); err != nil {
				return len(ids), err
			}
			schemas[l.Type] = schema
		}
		if l.Attributes, err = schema.Patch(l.Attributes, attrs); err != nil {
			return len(ids), fmt.Errorf("leaf %d: %w", l.ID, err)
		}
		l.ModifiedBy = user
		if err := s.store.UpdateLeaf(ctx, l); err != nil {
			return len(ids), err
		}
		ids = append(ids, l.ID)
	}
	s.notify(ctx, events.NewChange(opts.Query.Project, events.EntityLeaf, events.ActionUpdated, user, ids...))
	return len(ids), nil
}

// DeleteLeaf removes a leaf and everything below it.
func (s *Service) DeleteLeaf(ctx context.Context, user int64, l *models.Leaf) (int, error) {
	return s.deleteSubtrees(ctx, user, l.Project, []models.Leaf{*l})
}

// DeleteLeaves removes every leaf selected by opts together with its
// descendants.
func (s *Service) DeleteLeaves(ctx context.Context, user int64, opts LeafListOptions) (int, error) {
	leaves, err := s.ListLeaves(ctx, opts)
	if err != nil {
		return 0, err
	}
	return s.deleteSubtrees(ctx, user, opts.Query.Project, leaves)
}

func (s *Service) deleteSubtrees(ctx context.Context, user, project int64, roots []models.Leaf) (int, error) {
	if len(roots) == 0 {
		return 0, nil
	}
	seen := make(map[int64]bool)
	var ids []int64
	for _, r := range roots {
		if seen[r.ID] {
			continue
		}
		sub, err := s.store.ListLeaves(ctx, store.LeafQuery{Project: r.Project, Ancestor: r.Path})
		if err != nil {
			return 0, err
		}
		for _, l := range sub {
			if !seen[l.ID] {
				seen[l.ID] = true
				ids = append(ids, l.ID)
			}
		}
	}
	n, err := s.store.DeleteLeaves(ctx, ids)
	if err != nil {
		return 0, err
	}
	metrics.AnnotationsDeleted.WithLabelValues(events.EntityLeaf).Add(float64(n))
	s.notify(ctx, events.NewChange(project, events.EntityLeaf, events.ActionDeleted, user, ids...))
	return n, nil
}

// LeafSuggestion is one autocomplete entry, in the shape jQuery
// autocomplete widgets expect.
type LeafSuggestion struct {
	Value string             `json:"value"`
	Group string             `json:"group,omitempty"`
	Data  LeafSuggestionData `json:"data"`
}

type LeafSuggestionData struct {
	ID    int64  `json:"id"`
	Type  int64  `json:"type"`
	Path  string `json:"path"`
	Level int    `json:"level"`
}

// LeafSuggestions returns the leaves below ancestor whose name contains
// query, ignoring case. minLevel is the smallest depth below ancestor to
// consider and is at least 1, so the ancestor never suggests itself.
// Results are ordered by level, then name.
func (s *Service) LeafSuggestions(ctx context.Context, project int64, ancestor, query string, minLevel int) ([]LeafSuggestion, error) {
	ancestor = strings.Trim(ancestor, ".")
	if ancestor == "" {
		return nil, invalid("ancestor must not be empty")
	}
	minLevel = max(minLevel, 1)
	base := (&models.Leaf{Path: ancestor}).Depth()

	leaves, err := s.store.ListLeaves(ctx, store.LeafQuery{Project: project, Ancestor: ancestor})
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	out := []LeafSuggestion{}
	for i := range leaves {
		l := &leaves[i]
		level := l.Depth() - base
		if level < minLevel || !strings.Contains(strings.ToLower(l.Name), needle) {
			continue
		}
		parent, _ := cutLast(l.Path)
		_, group := cutLast(parent)
		out = append(out, LeafSuggestion{
			Value: l.Name,
			Group: group,
			Data:  LeafSuggestionData{ID: l.ID, Type: l.Type, Path: l.Path, Level: level},
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Data.Level != out[j].Data.Level {
			return out[i].Data.Level < out[j].Data.Level
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}
