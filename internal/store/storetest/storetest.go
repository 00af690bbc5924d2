// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

// Package storetest holds the behaviour tests every store.Store
// implementation must pass.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tator-io/tator/internal/models"
	"github.com/tator-io/tator/internal/store"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) store.Store

// Run exercises s against the store contract.
func Run(t *testing.T, newStore Factory) {
	t.Helper()
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"UsersAndProjects", testUsersAndProjects},
		{"BaselineVersion", testBaselineVersion},
		{"AttributeTypes", testAttributeTypes},
		{"Localizations", testLocalizations},
		{"States", testStates},
		{"DeleteMediaCascades", testDeleteMediaCascades},
		{"DeleteProjectCascades", testDeleteProjectCascades},
		{"Leaves", testLeaves},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

// Fixture is a project with one member, a video, a box type and a frame
// state type.
type Fixture struct {
	User      *models.User
	Project   *models.Project
	MediaType *models.EntityType
	BoxType   *models.EntityType
	StateType *models.EntityType
	Video     *models.Media
}

// Seed creates a Fixture in s.
func Seed(t *testing.T, s store.Store) *Fixture {
	t.Helper()
	ctx := context.Background()
	f := &Fixture{
		User:      &models.User{Username: "annotator", Email: "a@example.com"},
		Project:   &models.Project{Name: "Fish", Summary: "survey"},
		MediaType: &models.EntityType{Kind: models.KindMedia, Name: "Video", Dtype: models.MediaVideo, Visible: true},
		BoxType:   &models.EntityType{Kind: models.KindLocalization, Name: "Boxes", Dtype: models.ShapeBox, Visible: true, Colors: map[string]string{"Tuna": "#ff0000"}},
		StateType: &models.EntityType{Kind: models.KindState, Name: "Events", Association: models.AssociateFrame, Interpolation: models.InterpolateLatest},
	}
	must(t, s.CreateUser(ctx, f.User))
	f.Project.CreatedBy = f.User.ID
	must(t, s.CreateProject(ctx, f.Project))
	must(t, s.SetMembership(ctx, models.Membership{Project: f.Project.ID, User: f.User.ID, Permission: models.PermissionFullControl}))
	for _, et := range []*models.EntityType{f.MediaType, f.BoxType, f.StateType} {
		et.Project = f.Project.ID
		must(t, s.CreateEntityType(ctx, et))
	}
	f.Video = &models.Media{
		Project: f.Project.ID, Type: f.MediaType.ID, Name: "dive.mp4",
		NumFrames: 300, FPS: 30, Width: 1920, Height: 1080,
		Attributes: map[string]any{}, CreatedBy: f.User.ID,
	}
	must(t, s.CreateMedia(ctx, f.Video))
	return f
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func ptr(v float64) *float64 { return &v }

func testUsersAndProjects(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	if err := s.CreateUser(ctx, &models.User{Username: "annotator"}); !errors.Is(err, store.ErrConflict) {
		t.Errorf("duplicate username: error = %v, want ErrConflict", err)
	}
	u, err := s.GetUserByUsername(ctx, "annotator")
	must(t, err)
	if u.ID != f.User.ID || u.Email != "a@example.com" {
		t.Errorf("GetUserByUsername() = %+v", u)
	}
	if _, err := s.GetUser(ctx, 99999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetUser(missing) error = %v", err)
	}
	u.FirstName, u.LastName, u.Email = "Ann", "Otator", "ann@example.com"
	must(t, s.UpdateUser(ctx, u))
	u, err = s.GetUser(ctx, f.User.ID)
	must(t, err)
	if u.FirstName != "Ann" || u.LastName != "Otator" || u.Email != "ann@example.com" || u.Username != "annotator" {
		t.Errorf("GetUser() after update = %+v", u)
	}
	if err := s.UpdateUser(ctx, &models.User{ID: 99999}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateUser(missing) error = %v", err)
	}

	projects, err := s.ListProjects(ctx, f.User.ID)
	must(t, err)
	if len(projects) != 1 || projects[0].Name != "Fish" {
		t.Errorf("ListProjects() = %+v", projects)
	}
	other := &models.User{Username: "other"}
	must(t, s.CreateUser(ctx, other))
	projects, err = s.ListProjects(ctx, other.ID)
	must(t, err)
	if len(projects) != 0 {
		t.Errorf("ListProjects(non-member) = %+v", projects)
	}

	f.Project.Name = "Fish 2"
	must(t, s.UpdateProject(ctx, f.Project))
	p, err := s.GetProject(ctx, f.Project.ID)
	must(t, err)
	if p.Name != "Fish 2" {
		t.Errorf("UpdateProject() name = %q", p.Name)
	}

	m, err := s.GetMembership(ctx, f.Project.ID, f.User.ID)
	must(t, err)
	if m.Permission != models.PermissionFullControl || m.Username != "annotator" {
		t.Errorf("GetMembership() = %+v", m)
	}
	must(t, s.SetMembership(ctx, models.Membership{Project: f.Project.ID, User: f.User.ID, Permission: models.PermissionView}))
	list, err := s.ListMemberships(ctx, f.Project.ID)
	must(t, err)
	if len(list) != 1 || list[0].Permission != models.PermissionView {
		t.Errorf("ListMemberships() after replace = %+v", list)
	}
}

func testBaselineVersion(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	v1, err := s.BaselineVersion(ctx, f.Project.ID, f.User.ID)
	must(t, err)
	v2, err := s.BaselineVersion(ctx, f.Project.ID, f.User.ID)
	must(t, err)
	if v1.ID != v2.ID || v1.Number != 0 || v1.Name != models.BaselineVersionName {
		t.Errorf("BaselineVersion() = %+v then %+v", v1, v2)
	}
	if err := s.CreateVersion(ctx, &models.Version{Project: f.Project.ID, Name: "dup", Number: 0}); !errors.Is(err, store.ErrConflict) {
		t.Errorf("duplicate number: error = %v", err)
	}
	must(t, s.CreateVersion(ctx, &models.Version{Project: f.Project.ID, Name: "Review", Number: 1}))
	versions, err := s.ListVersions(ctx, f.Project.ID)
	must(t, err)
	if len(versions) != 2 || versions[1].Name != "Review" {
		t.Errorf("ListVersions() = %+v", versions)
	}
}

func testAttributeTypes(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	species := &models.AttributeType{
		AppliesTo: f.BoxType.ID, Name: "Species", Dtype: models.DtypeEnum,
		Choices: []string{"Tuna", "Cod"}, Labels: []string{"Tuna fish", "Cod fish"}, Default: "Tuna",
	}
	length := &models.AttributeType{
		AppliesTo: f.BoxType.ID, Name: "Length", Dtype: models.DtypeFloat, Order: 1,
		LowerBound: 0.0, UpperBound: 5.5,
	}
	where := &models.AttributeType{AppliesTo: f.StateType.ID, Name: "Where", Dtype: models.DtypeGeopos, Default: []any{-70.5, 41.25}}
	for _, a := range []*models.AttributeType{species, length, where} {
		must(t, s.CreateAttributeType(ctx, a))
		if a.Project != f.Project.ID {
			t.Errorf("CreateAttributeType() project = %d", a.Project)
		}
	}
	if err := s.CreateAttributeType(ctx, &models.AttributeType{AppliesTo: f.BoxType.ID, Name: "Species", Dtype: models.DtypeString}); !errors.Is(err, store.ErrConflict) {
		t.Errorf("duplicate name: error = %v", err)
	}
	if err := s.CreateAttributeType(ctx, &models.AttributeType{AppliesTo: 99999, Name: "x", Dtype: models.DtypeString}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown entity type: error = %v", err)
	}

	got, err := s.GetAttributeType(ctx, species.ID)
	must(t, err)
	if diff := cmp.Diff(species, got); diff != "" {
		t.Errorf("GetAttributeType() mismatch (-want +got):\n%s", diff)
	}
	got, err = s.GetAttributeType(ctx, where.ID)
	must(t, err)
	if diff := cmp.Diff(where, got); diff != "" {
		t.Errorf("geopos default mismatch (-want +got):\n%s", diff)
	}

	all, err := s.ListAttributeTypes(ctx, f.Project.ID, nil)
	must(t, err)
	if len(all) != 3 {
		t.Errorf("ListAttributeTypes(all) returned %d", len(all))
	}
	boxOnly, err := s.ListAttributeTypes(ctx, f.Project.ID, &f.BoxType.ID)
	must(t, err)
	if len(boxOnly) != 2 || boxOnly[0].Name != "Species" || boxOnly[1].UpperBound != 5.5 {
		t.Errorf("ListAttributeTypes(box) = %+v", boxOnly)
	}

	length.Name = "Fork Length"
	length.Description = "cm"
	must(t, s.UpdateAttributeType(ctx, length))
	got, err = s.GetAttributeType(ctx, length.ID)
	must(t, err)
	if got.Name != "Fork Length" || got.Description != "cm" {
		t.Errorf("UpdateAttributeType() = %+v", got)
	}

	must(t, s.DeleteAttributeType(ctx, length.ID))
	if _, err := s.GetAttributeType(ctx, length.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("after delete: error = %v", err)
	}
	if err := s.DeleteAttributeType(ctx, length.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: error = %v", err)
	}
}

func testLocalizations(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)
	v, err := s.BaselineVersion(ctx, f.Project.ID, f.User.ID)
	must(t, err)

	mk := func(frame int64, modified bool, species string) *models.Localization {
		return &models.Localization{
			Project: f.Project.ID, Type: f.BoxType.ID, Media: f.Video.ID, Version: v.ID,
			Frame: frame, X: ptr(0.1), Y: ptr(0.2), Width: ptr(0.3), Height: ptr(0.4),
			Modified: modified, Attributes: map[string]any{"Species": species, "Count": int64(frame)},
			CreatedBy: f.User.ID, ModifiedBy: f.User.ID,
		}
	}
	locs := []*models.Localization{mk(1, false, "Tuna"), mk(2, true, "Cod"), mk(3, false, "Tuna")}
	must(t, s.CreateLocalizations(ctx, locs))
	if locs[0].ID == 0 || locs[0].ID == locs[1].ID {
		t.Fatalf("ids not assigned: %d %d", locs[0].ID, locs[1].ID)
	}

	got, err := s.GetLocalization(ctx, locs[1].ID)
	must(t, err)
	if got.Frame != 2 || *got.Width != 0.3 || got.X0 != nil || got.Attributes["Species"] != "Cod" || got.Attributes["Count"] != int64(2) {
		t.Errorf("GetLocalization() = %+v", got)
	}

	list, err := s.ListLocalizations(ctx, store.AnnotationQuery{Project: f.Project.ID, ExcludeModified: true})
	must(t, err)
	if len(list) != 2 || list[0].ID != locs[0].ID || list[1].ID != locs[2].ID {
		t.Errorf("ListLocalizations(ExcludeModified) = %d items", len(list))
	}
	list, err = s.ListLocalizations(ctx, store.AnnotationQuery{Media: []int64{f.Video.ID}, Type: f.BoxType.ID, Versions: []int64{v.ID}})
	must(t, err)
	if len(list) != 3 {
		t.Errorf("ListLocalizations(media,type,version) = %d items", len(list))
	}
	list, err = s.ListLocalizations(ctx, store.AnnotationQuery{Project: f.Project.ID, IDs: []int64{locs[2].ID}})
	must(t, err)
	if len(list) != 1 {
		t.Errorf("ListLocalizations(ids) = %d items", len(list))
	}
	list, err = s.ListLocalizations(ctx, store.AnnotationQuery{Project: f.Project.ID, Versions: []int64{v.ID + 1000}})
	must(t, err)
	if len(list) != 0 {
		t.Errorf("ListLocalizations(other version) = %d items", len(list))
	}

	got.Attributes["Species"] = "Tuna"
	got.X = ptr(0.5)
	got.Modified = true
	must(t, s.UpdateLocalization(ctx, got))
	again, err := s.GetLocalization(ctx, got.ID)
	must(t, err)
	if again.Attributes["Species"] != "Tuna" || *again.X != 0.5 || !again.Modified {
		t.Errorf("UpdateLocalization() = %+v", again)
	}

	n, err := s.DeleteLocalizations(ctx, []int64{locs[0].ID, locs[1].ID, 99999})
	must(t, err)
	if n != 2 {
		t.Errorf("DeleteLocalizations() = %d, want 2", n)
	}
	if _, err := s.GetLocalization(ctx, locs[0].ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("deleted localization: error = %v", err)
	}
	if err := s.CreateLocalizations(ctx, []*models.Localization{{Project: f.Project.ID, Type: f.BoxType.ID, Media: 99999, Version: v.ID}}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown media: error = %v", err)
	}
}

func testStates(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)
	v, err := s.BaselineVersion(ctx, f.Project.ID, f.User.ID)
	must(t, err)

	loc := &models.Localization{Project: f.Project.ID, Type: f.BoxType.ID, Media: f.Video.ID, Version: v.ID, X: ptr(0.1), Y: ptr(0.1), Width: ptr(0.1), Height: ptr(0.1), Attributes: map[string]any{}}
	must(t, s.CreateLocalizations(ctx, []*models.Localization{loc}))

	frame := int64(42)
	st := &models.State{
		Project: f.Project.ID, Type: f.StateType.ID, Version: v.ID,
		Media: []int64{f.Video.ID}, Frame: &frame, Localizations: []int64{loc.ID},
		Attributes: map[string]any{"Where": []any{-70.5, 41.25}},
	}
	must(t, s.CreateState(ctx, st))

	got, err := s.GetState(ctx, st.ID)
	must(t, err)
	if got.Frame == nil || *got.Frame != 42 {
		t.Errorf("GetState() frame = %v", got.Frame)
	}
	if diff := cmp.Diff(st.Attributes, got.Attributes); diff != "" {
		t.Errorf("GetState() attributes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{loc.ID}, got.Localizations); diff != "" {
		t.Errorf("GetState() localizations (-want +got):\n%s", diff)
	}

	list, err := s.ListStates(ctx, store.AnnotationQuery{Media: []int64{f.Video.ID}})
	must(t, err)
	if len(list) != 1 {
		t.Errorf("ListStates(media) = %d items", len(list))
	}

	got.Attributes = map[string]any{"Where": []any{10.0, 20.0}}
	got.Modified = true
	must(t, s.UpdateState(ctx, got))
	again, err := s.GetState(ctx, st.ID)
	must(t, err)
	if !again.Modified || again.Frame == nil || *again.Frame != 42 {
		t.Errorf("UpdateState() = %+v", again)
	}

	// Deleting the localization detaches it from the state.
	_, err = s.DeleteLocalizations(ctx, []int64{loc.ID})
	must(t, err)
	again, err = s.GetState(ctx, st.ID)
	must(t, err)
	if len(again.Localizations) != 0 {
		t.Errorf("state still references deleted localization: %v", again.Localizations)
	}

	n, err := s.DeleteStates(ctx, []int64{st.ID})
	must(t, err)
	if n != 1 {
		t.Errorf("DeleteStates() = %d", n)
	}
	if _, err := s.GetState(ctx, st.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("deleted state: error = %v", err)
	}
}

func testDeleteMediaCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)
	v, err := s.BaselineVersion(ctx, f.Project.ID, f.User.ID)
	must(t, err)

	second := &models.Media{Project: f.Project.ID, Type: f.MediaType.ID, Name: "second.mp4", NumFrames: 10, FPS: 10, Attributes: map[string]any{}}
	must(t, s.CreateMedia(ctx, second))

	loc := &models.Localization{Project: f.Project.ID, Type: f.BoxType.ID, Media: f.Video.ID, Version: v.ID, X: ptr(0), Y: ptr(0), Width: ptr(1), Height: ptr(1), Attributes: map[string]any{}}
	must(t, s.CreateLocalizations(ctx, []*models.Localization{loc}))
	only := &models.State{Project: f.Project.ID, Type: f.StateType.ID, Version: v.ID, Media: []int64{f.Video.ID}, Attributes: map[string]any{}}
	shared := &models.State{Project: f.Project.ID, Type: f.StateType.ID, Version: v.ID, Media: []int64{f.Video.ID, second.ID}, Attributes: map[string]any{}}
	must(t, s.CreateState(ctx, only))
	must(t, s.CreateState(ctx, shared))

	must(t, s.DeleteMedia(ctx, f.Video.ID))

	if _, err := s.GetLocalization(ctx, loc.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("localization survived media delete: %v", err)
	}
	if _, err := s.GetState(ctx, only.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("single-media state survived media delete: %v", err)
	}
	got, err := s.GetState(ctx, shared.ID)
	must(t, err)
	if diff := cmp.Diff([]int64{second.ID}, got.Media); diff != "" {
		t.Errorf("shared state media (-want +got):\n%s", diff)
	}

	media, err := s.ListMedia(ctx, store.MediaQuery{Project: f.Project.ID})
	must(t, err)
	if len(media) != 1 || media[0].Name != "second.mp4" {
		t.Errorf("ListMedia() = %+v", media)
	}
}

func testDeleteProjectCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	must(t, s.DeleteProject(ctx, f.Project.ID))
	if _, err := s.GetProject(ctx, f.Project.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetProject() after delete: %v", err)
	}
	if _, err := s.GetMedia(ctx, f.Video.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetMedia() after project delete: %v", err)
	}
	if _, err := s.GetEntityType(ctx, f.BoxType.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetEntityType() after project delete: %v", err)
	}
	if _, err := s.GetMembership(ctx, f.Project.ID, f.User.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetMembership() after project delete: %v", err)
	}
	if err := s.DeleteProject(ctx, f.Project.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second DeleteProject(): %v", err)
	}
}

func testLeaves(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	lt := &models.EntityType{Project: f.Project.ID, Kind: models.KindLeaf, Name: "Taxa"}
	must(t, s.CreateEntityType(ctx, lt))
	root := &models.Leaf{Project: f.Project.ID, Type: lt.ID, Name: "ITIS", Path: "ITIS", Attributes: map[string]any{}}
	must(t, s.CreateLeaves(ctx, []*models.Leaf{root}))
	fish := &models.Leaf{Project: f.Project.ID, Type: lt.ID, Name: "Fish", Parent: &root.ID, Path: "ITIS.Fish",
		Attributes: map[string]any{"Rank": "class"}}
	fishy := &models.Leaf{Project: f.Project.ID, Type: lt.ID, Name: "Fish_like", Parent: &root.ID, Path: "ITIS.Fish_like",
		Attributes: map[string]any{}}
	tuna := &models.Leaf{Project: f.Project.ID, Type: lt.ID, Name: "Tuna", Path: "ITIS.Fish.Tuna", Attributes: map[string]any{}}
	must(t, s.CreateLeaves(ctx, []*models.Leaf{fish, fishy}))
	tuna.Parent = &fish.ID
	must(t, s.CreateLeaves(ctx, []*models.Leaf{tuna}))

	dup := &models.Leaf{Project: f.Project.ID, Type: lt.ID, Name: "Cod", Path: "ITIS.Cod"}
	again := &models.Leaf{Project: f.Project.ID, Type: lt.ID, Name: "Tuna", Path: "ITIS.Fish.Tuna"}
	if err := s.CreateLeaves(ctx, []*models.Leaf{dup, again}); !errors.Is(err, store.ErrConflict) {
		t.Errorf("duplicate path: error = %v, want ErrConflict", err)
	}
	if got, err := s.ListLeaves(ctx, store.LeafQuery{Project: f.Project.ID, Name: "Cod"}); err != nil || len(got) != 0 {
		t.Errorf("failed batch left %+v (err %v)", got, err)
	}
	missing := int64(99999)
	if err := s.CreateLeaves(ctx, []*models.Leaf{{Project: f.Project.ID, Type: lt.ID, Name: "x", Path: "x", Parent: &missing}}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing parent: error = %v, want ErrNotFound", err)
	}

	got, err := s.GetLeaf(ctx, fish.ID)
	must(t, err)
	if got.Parent == nil || *got.Parent != root.ID || got.Attributes["Rank"] != "class" {
		t.Errorf("GetLeaf() = %+v", got)
	}

	paths := func(q store.LeafQuery) []string {
		t.Helper()
		leaves, err := s.ListLeaves(ctx, q)
		must(t, err)
		var out []string
		for _, l := range leaves {
			out = append(out, l.Path)
		}
		return out
	}
	if diff := cmp.Diff([]string{"ITIS.Fish", "ITIS.Fish.Tuna"}, paths(store.LeafQuery{Project: f.Project.ID, Ancestor: "ITIS.Fish"})); diff != "" {
		t.Errorf("ListLeaves(ancestor) (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ITIS", "ITIS.Fish", "ITIS.Fish.Tuna", "ITIS.Fish_like"}, paths(store.LeafQuery{Project: f.Project.ID})); diff != "" {
		t.Errorf("ListLeaves() (-want +got):\n%s", diff)
	}

	tuna.Name, tuna.Path = "Albacore", "ITIS.Fish.Albacore"
	tuna.Attributes = map[string]any{"Common": "yes"}
	must(t, s.UpdateLeaf(ctx, tuna))
	got, err = s.GetLeaf(ctx, tuna.ID)
	must(t, err)
	if got.Name != "Albacore" || got.Path != "ITIS.Fish.Albacore" || got.Attributes["Common"] != "yes" {
		t.Errorf("GetLeaf() after update = %+v", got)
	}
	tuna.Path = "ITIS.Fish"
	if err := s.UpdateLeaf(ctx, tuna); !errors.Is(err, store.ErrConflict) {
		t.Errorf("UpdateLeaf(taken path) error = %v, want ErrConflict", err)
	}

	n, err := s.DeleteLeaves(ctx, []int64{fish.ID, tuna.ID, missing})
	must(t, err)
	if n != 2 {
		t.Errorf("DeleteLeaves() = %d, want 2", n)
	}
	if _, err := s.GetLeaf(ctx, fish.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetLeaf() after delete: %v", err)
	}

	must(t, s.DeleteProject(ctx, f.Project.ID))
	if _, err := s.GetLeaf(ctx, root.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetLeaf() after project delete: %v", err)
	}
}
