// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package annotation

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tator-io/tator/internal/events"
	"github.com/tator-io/tator/internal/models"
	"github.com/tator-io/tator/internal/store"
)

// taxonomy adds a leaf type with a Rank attribute and the tree
//
//	ITIS
//	ITIS.Animalia
//	ITIS.Animalia.Chordata
//	ITIS.Animalia.Sea_stars
//
// returning the type and the leaf IDs in that order.
func (h *harness) taxonomy(t *testing.T) (*models.EntityType, []int64) {
	t.Helper()
	ctx := context.Background()
	lt, err := h.svc.CreateEntityType(ctx, h.f.Project.ID, h.f.User.ID, NewEntityType{Kind: models.KindLeaf, Name: "Taxa"})
	if err != nil {
		t.Fatal(err)
	}
	rank := &models.AttributeType{AppliesTo: lt.ID, Name: "Rank", Dtype: models.DtypeString, Default: "unranked"}
	if err := h.svc.CreateAttributeType(ctx, h.f.Project.ID, h.f.User.ID, rank); err != nil {
		t.Fatal(err)
	}

	var ids []int64
	create := func(name string, parent *int64, attrs map[string]any) int64 {
		t.Helper()
		got, err := h.svc.CreateLeaves(ctx, h.f.Project.ID, h.f.User.ID, []NewLeaf{{Type: lt.ID, Name: name, Parent: parent, Attributes: attrs}})
		if err != nil {
			t.Fatalf("CreateLeaves(%s) error = %v", name, err)
		}
		ids = append(ids, got[0])
		return got[0]
	}
	root := create("ITIS", nil, nil)
	animalia := create("Animalia", &root, map[string]any{"Rank": "kingdom"})
	create("Chordata", &animalia, map[string]any{"Rank": "phylum"})
	create("Sea stars", &animalia, nil)
	return lt, ids
}

func leafPaths(t *testing.T, h *harness, q store.LeafQuery) []string {
	t.Helper()
	leaves, err := h.svc.ListLeaves(context.Background(), LeafListOptions{Query: q})
	if err != nil {
		t.Fatal(err)
	}
	var out []string
	for _, l := range leaves {
		out = append(out, l.Path)
	}
	return out
}

func TestCreateLeaves(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{MaxBulkCreate: 2})
	ctx := context.Background()
	lt, ids := h.taxonomy(t)

	want := []string{"ITIS", "ITIS.Animalia", "ITIS.Animalia.Chordata", "ITIS.Animalia.Sea_stars"}
	if diff := cmp.Diff(want, leafPaths(t, h, store.LeafQuery{Project: h.f.Project.ID})); diff != "" {
		t.Errorf("paths (-want +got):\n%s", diff)
	}
	stars, err := h.svc.GetLeaf(ctx, h.f.Project.ID, ids[3])
	if err != nil {
		t.Fatal(err)
	}
	if stars.Name != "Sea stars" || stars.Attributes["Rank"] != "unranked" || *stars.Parent != ids[1] {
		t.Errorf("leaf = %+v", stars)
	}
	if c := h.rec.last(); c.Entity != events.EntityLeaf || c.Action != events.ActionCreated {
		t.Errorf("last change = %+v", c)
	}

	other := &models.Project{Name: "Other"}
	if err := h.svc.CreateProject(ctx, h.f.User.ID, other); err != nil {
		t.Fatal(err)
	}
	foreignType, err := h.svc.CreateEntityType(ctx, other.ID, h.f.User.ID, NewEntityType{Kind: models.KindLeaf, Name: "Taxa"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		in      []NewLeaf
		wantErr error
	}{
		{"empty", nil, ErrInvalid},
		{"too many", []NewLeaf{{Type: lt.ID, Name: "a"}, {Type: lt.ID, Name: "b"}, {Type: lt.ID, Name: "c"}}, ErrInvalid},
		{"blank name", []NewLeaf{{Type: lt.ID, Name: "  "}}, ErrInvalid},
		{"not a leaf type", []NewLeaf{{Type: h.f.BoxType.ID, Name: "Box"}}, ErrInvalid},
		{"type of another project", []NewLeaf{{Type: foreignType.ID, Name: "x"}}, store.ErrNotFound},
		{"missing parent", []NewLeaf{{Type: lt.ID, Name: "x", Parent: i64(99999)}}, store.ErrNotFound},
		{"taken path", []NewLeaf{{Type: lt.ID, Name: "Chordata", Parent: &ids[1]}}, store.ErrConflict},
		{"same path twice", []NewLeaf{{Type: lt.ID, Name: "Plantae", Parent: &ids[0]}, {Type: lt.ID, Name: "Plantae", Parent: &ids[0]}}, store.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.CreateLeaves(ctx, h.f.Project.ID, h.f.User.ID, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateLeaves() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if got := leafPaths(t, h, store.LeafQuery{Project: h.f.Project.ID, Name: "Plantae"}); len(got) != 0 {
		t.Errorf("rejected batch stored %v", got)
	}

	foreignRoot, err := h.svc.CreateLeaves(ctx, other.ID, h.f.User.ID, []NewLeaf{{Type: foreignType.ID, Name: "Root"}})
	if err != nil {
		t.Fatal(err)
	}
	_, err = h.svc.CreateLeaves(ctx, h.f.Project.ID, h.f.User.ID, []NewLeaf{{Type: lt.ID, Name: "x", Parent: &foreignRoot[0]}})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("parent of another project: error = %v, want ErrInvalid", err)
	}
	if _, err := h.svc.GetLeaf(ctx, h.f.Project.ID, foreignRoot[0]); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetLeaf(other project) error = %v, want ErrNotFound", err)
	}
}

func TestPatchLeaf_RenameMovesDescendants(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()
	_, ids := h.taxonomy(t)

	animalia, err := h.svc.GetLeaf(ctx, h.f.Project.ID, ids[1])
	if err != nil {
		t.Fatal(err)
	}
	name := "Animals"
	if err := h.svc.PatchLeaf(ctx, h.f.User.ID, animalia, LeafPatch{Name: &name, Attributes: map[string]any{"Rank": "regnum"}}); err != nil {
		t.Fatal(err)
	}
	want := []string{"ITIS", "ITIS.Animals", "ITIS.Animals.Chordata", "ITIS.Animals.Sea_stars"}
	if diff := cmp.Diff(want, leafPaths(t, h, store.LeafQuery{Project: h.f.Project.ID})); diff != "" {
		t.Errorf("paths after rename (-want +got):\n%s", diff)
	}
	got, err := h.svc.GetLeaf(ctx, h.f.Project.ID, ids[1])
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Animals" || got.Attributes["Rank"] != "regnum" {
		t.Errorf("renamed leaf = %+v", got)
	}
	if c := h.rec.last(); len(c.IDs) != 3 {
		t.Errorf("update change ids = %v, want the leaf and both children", c.IDs)
	}

	chordata, err := h.svc.GetLeaf(ctx, h.f.Project.ID, ids[2])
	if err != nil {
		t.Fatal(err)
	}
	clash := "Sea stars"
	if err := h.svc.PatchLeaf(ctx, h.f.User.ID, chordata, LeafPatch{Name: &clash}); !errors.Is(err, store.ErrConflict) {
		t.Errorf("rename onto sibling: error = %v, want ErrConflict", err)
	}
	chordata, err = h.svc.GetLeaf(ctx, h.f.Project.ID, ids[2])
	if err != nil {
		t.Fatal(err)
	}
	if err := h.svc.PatchLeaf(ctx, h.f.User.ID, chordata, LeafPatch{Attributes: map[string]any{"Colour": "red"}}); err == nil {
		t.Error("undeclared attribute accepted")
	}
}

func TestPatchLeaves(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()
	_, ids := h.taxonomy(t)

	opts := LeafListOptions{Query: store.LeafQuery{Project: h.f.Project.ID, Ancestor: "ITIS.Animalia"}}
	n, err := h.svc.PatchLeaves(ctx, h.f.User.ID, opts, map[string]any{"Rank": "animal"})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("PatchLeaves() = %d, want 3", n)
	}
	root, err := h.svc.GetLeaf(ctx, h.f.Project.ID, ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if root.Attributes["Rank"] != "unranked" {
		t.Errorf("root rank = %v, want unchanged", root.Attributes["Rank"])
	}
	if _, err := h.svc.PatchLeaves(ctx, h.f.User.ID, opts, nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("no attributes: error = %v, want ErrInvalid", err)
	}
}

func TestDeleteLeaves_RemovesDescendants(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()
	_, ids := h.taxonomy(t)

	n, err := h.svc.DeleteLeaves(ctx, h.f.User.ID, LeafListOptions{Query: store.LeafQuery{Project: h.f.Project.ID, Name: "Animalia"}})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("DeleteLeaves() = %d, want 3", n)
	}
	if diff := cmp.Diff([]string{"ITIS"}, leafPaths(t, h, store.LeafQuery{Project: h.f.Project.ID})); diff != "" {
		t.Errorf("remaining (-want +got):\n%s", diff)
	}

	root, err := h.svc.GetLeaf(ctx, h.f.Project.ID, ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if n, err := h.svc.DeleteLeaf(ctx, h.f.User.ID, root); err != nil || n != 1 {
		t.Errorf("DeleteLeaf() = %d, %v; want 1", n, err)
	}
}

func TestLeafSuggestions(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()
	lt, ids := h.taxonomy(t)

	tests := []struct {
		name     string
		ancestor string
		query    string
		minLevel int
		want     []LeafSuggestion
	}{
		{
			name: "any depth", ancestor: "ITIS", query: "A",
			want: []LeafSuggestion{
				{Value: "Animalia", Group: "ITIS", Data: LeafSuggestionData{ID: ids[1], Type: lt.ID, Path: "ITIS.Animalia", Level: 1}},
				{Value: "Chordata", Group: "Animalia", Data: LeafSuggestionData{ID: ids[2], Type: lt.ID, Path: "ITIS.Animalia.Chordata", Level: 2}},
				{Value: "Sea stars", Group: "Animalia", Data: LeafSuggestionData{ID: ids[3], Type: lt.ID, Path: "ITIS.Animalia.Sea_stars", Level: 2}},
			},
		},
		{
			name: "min level", ancestor: "ITIS", query: "a", minLevel: 2,
			want: []LeafSuggestion{
				{Value: "Chordata", Group: "Animalia", Data: LeafSuggestionData{ID: ids[2], Type: lt.ID, Path: "ITIS.Animalia.Chordata", Level: 2}},
				{Value: "Sea stars", Group: "Animalia", Data: LeafSuggestionData{ID: ids[3], Type: lt.ID, Path: "ITIS.Animalia.Sea_stars", Level: 2}},
			},
		},
		{
			name: "ancestor excludes itself", ancestor: "ITIS.Animalia", query: "animalia",
			want: []LeafSuggestion{},
		},
		{
			name: "unknown ancestor", ancestor: "NCBI", query: "a",
			want: []LeafSuggestion{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.svc.LeafSuggestions(ctx, h.f.Project.ID, tt.ancestor, tt.query, tt.minLevel)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("LeafSuggestions() (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := h.svc.LeafSuggestions(ctx, h.f.Project.ID, "", "a", 1); !errors.Is(err, ErrInvalid) {
		t.Errorf("empty ancestor: error = %v, want ErrInvalid", err)
	}
}

func TestDeleteAttributeType_ClearsLeafValues(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()
	lt, ids := h.taxonomy(t)

	attrs, err := h.store.ListAttributeTypes(ctx, h.f.Project.ID, &lt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.svc.DeleteAttributeType(ctx, h.f.User.ID, &attrs[0]); err != nil {
		t.Fatal(err)
	}
	l, err := h.svc.GetLeaf(ctx, h.f.Project.ID, ids[2])
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := l.Attributes["Rank"]; ok {
		t.Errorf("attributes = %v, want Rank removed", l.Attributes)
	}
}
