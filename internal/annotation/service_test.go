// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package annotation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tator-io/tator/internal/attribute"
	"github.com/tator-io/tator/internal/events"
	"github.com/tator-io/tator/internal/models"
	"github.com/tator-io/tator/internal/params"
	"github.com/tator-io/tator/internal/store"
	"github.com/tator-io/tator/internal/store/storetest"
	"github.com/tator-io/tator/internal/validation"
)

type recorder struct {
	mu      sync.Mutex
	changes []events.Change
}

func (r *recorder) Notify(_ context.Context, c events.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
	return nil
}

func (r *recorder) last() events.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.changes) == 0 {
		return events.Change{}
	}
	return r.changes[len(r.changes)-1]
}

type harness struct {
	svc   *Service
	store store.Store
	f     *storetest.Fixture
	rec   *recorder
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	s := store.NewMemory()
	rec := &recorder{}
	h := &harness{svc: NewService(s, rec, opts), store: s, f: storetest.Seed(t, s), rec: rec}

	ctx := context.Background()
	for _, a := range []*models.AttributeType{
		{AppliesTo: h.f.BoxType.ID, Name: "Species", Dtype: models.DtypeEnum, Choices: []string{"Tuna", "Cod"}},
		{AppliesTo: h.f.BoxType.ID, Name: "Count", Dtype: models.DtypeInt, Default: int64(1), Order: 1},
		{AppliesTo: h.f.StateType.ID, Name: "Behavior", Dtype: models.DtypeString, Default: "swimming"},
	} {
		if err := h.svc.CreateAttributeType(ctx, h.f.Project.ID, h.f.User.ID, a); err != nil {
			t.Fatal(err)
		}
	}
	return h
}

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }
func intp(v int) *int         { return &v }

func (h *harness) box(frame int64, species string) NewLocalization {
	return NewLocalization{
		Media: h.f.Video.ID, Type: h.f.BoxType.ID, Frame: frame,
		Shape:      Shape{X: f64(0.1), Y: f64(0.2), Width: f64(0.3), Height: f64(0.4)},
		Attributes: map[string]any{"Species": species},
	}
}

func TestCreateLocalizations_Single(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()

	ids, err := h.svc.CreateLocalizations(ctx, h.f.Project.ID, h.f.User.ID, []NewLocalization{h.box(10, "Tuna")})
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 {
		t.Fatalf("got %d ids, want 1", len(ids))
	}

	l, err := h.store.GetLocalization(ctx, ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]any{"Species": "Tuna", "Count": int64(1)}, l.Attributes); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}
	baseline, err := h.store.BaselineVersion(ctx, h.f.Project.ID, h.f.User.ID)
	if err != nil {
		t.Fatal(err)
	}
	if l.Version != baseline.ID {
		t.Errorf("version = %d, want baseline %d", l.Version, baseline.ID)
	}
	if l.X0 != nil || l.Width == nil || *l.Width != 0.3 {
		t.Errorf("shape not stored as a box: %+v", l)
	}

	c := h.rec.last()
	if c.Entity != events.EntityLocalization || c.Action != events.ActionCreated || !cmp.Equal(c.IDs, ids) {
		t.Errorf("change = %+v", c)
	}
}

func TestCreateLocalizations_Rules(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*NewLocalization)
		want   error
	}{
		{"missing height", func(l *NewLocalization) { l.Shape.Height = nil }, ErrInvalid},
		{"coordinate out of range", func(l *NewLocalization) { l.Shape.X = f64(1.5) }, ErrInvalid},
		{"frame past end", func(l *NewLocalization) { l.Frame = 300 }, ErrInvalid},
		{"negative frame", func(l *NewLocalization) { l.Frame = -1 }, ErrInvalid},
		{"state type", func(l *NewLocalization) { l.Type = h.f.StateType.ID }, ErrInvalid},
		{"missing media", func(l *NewLocalization) { l.Media = 99999 }, store.ErrNotFound},
		{"missing required attribute", func(l *NewLocalization) { l.Attributes = nil }, attribute.ErrInvalid},
		{"undeclared attribute", func(l *NewLocalization) { l.Attributes["Color"] = "red" }, attribute.ErrInvalid},
		{"bad enum value", func(l *NewLocalization) { l.Attributes["Species"] = "Shark" }, attribute.ErrInvalid},
		{"unknown version", func(l *NewLocalization) { l.Version = i64(99999) }, store.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := h.box(5, "Cod")
			tt.mutate(&in)
			_, err := h.svc.CreateLocalizations(ctx, h.f.Project.ID, h.f.User.ID, []NewLocalization{in})
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreateLocalizations_BulkAllOrNothing(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()

	bad := h.box(20, "Tuna")
	bad.Shape.Width = nil
	_, err := h.svc.CreateLocalizations(ctx, h.f.Project.ID, h.f.User.ID, []NewLocalization{h.box(10, "Tuna"), bad})
	if !errors.Is(err, ErrInvalid) || !strings.Contains(err.Error(), "many[1]") {
		t.Fatalf("error = %v, want ErrInvalid naming many[1]", err)
	}

	locs, err := h.store.ListLocalizations(ctx, store.AnnotationQuery{Project: h.f.Project.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(locs) != 0 {
		t.Errorf("stored %d localizations after a failed bulk create", len(locs))
	}
}

func TestCreateLocalizations_BulkLimit(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{MaxBulkCreate: 2})

	items := []NewLocalization{h.box(1, "Tuna"), h.box(2, "Tuna"), h.box(3, "Tuna")}
	if _, err := h.svc.CreateLocalizations(context.Background(), h.f.Project.ID, h.f.User.ID, items); !errors.Is(err, ErrInvalid) {
		t.Errorf("error = %v, want ErrInvalid", err)
	}
	if _, err := h.svc.CreateLocalizations(context.Background(), h.f.Project.ID, h.f.User.ID, nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("empty create: error = %v, want ErrInvalid", err)
	}
}

func TestListLocalizations_FilterAndPage(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()

	var items []NewLocalization
	for i := int64(0); i < 6; i++ {
		species := "Tuna"
		if i%2 == 1 {
			species = "Cod"
		}
		items = append(items, h.box(i, species))
	}
	ids, err := h.svc.CreateLocalizations(ctx, h.f.Project.ID, h.f.User.ID, items)
	if err != nil {
		t.Fatal(err)
	}

	q, err := attribute.ParseQuery(params.Values{string(attribute.OpEq): []any{"Species::Tuna"}})
	if err != nil {
		t.Fatal(err)
	}
	got, err := h.svc.ListLocalizations(ctx, ListOptions{
		Query:  store.AnnotationQuery{Project: h.f.Project.ID},
		Filter: q,
		Start:  1,
		Stop:   intp(3),
	})
	if err != nil {
		t.Fatal(err)
	}
	gotIDs := make([]int64, len(got))
	for i := range got {
		gotIDs[i] = got[i].ID
	}
	if diff := cmp.Diff([]int64{ids[2], ids[4]}, gotIDs); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}

	if _, err := h.svc.ListLocalizations(ctx, ListOptions{Start: 5, Stop: intp(2)}); !errors.Is(err, ErrInvalid) {
		t.Errorf("stop < start: error = %v, want ErrInvalid", err)
	}

	empty, err := h.svc.ListLocalizations(ctx, ListOptions{
		Query: store.AnnotationQuery{Project: h.f.Project.ID},
		Stop:  intp(0),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("stop=0 returned %d localizations, want none", len(empty))
	}
}

func TestPage(t *testing.T) {
	t.Parallel()

	items := []int{0, 1, 2, 3, 4}
	tests := []struct {
		name  string
		start int
		stop  *int
		want  []int
	}{
		{"no bounds", 0, nil, []int{0, 1, 2, 3, 4}},
		{"start only", 3, nil, []int{3, 4}},
		{"stop zero", 0, intp(0), []int{}},
		{"start equals stop", 2, intp(2), []int{}},
		{"stop past end", 1, intp(50), []int{1, 2, 3, 4}},
		{"start past end", 9, nil, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := page(append([]int(nil), items...), tt.start, tt.stop)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("page() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPatchLocalization(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()

	ids, err := h.svc.CreateLocalizations(ctx, h.f.Project.ID, h.f.User.ID, []NewLocalization{h.box(10, "Tuna")})
	if err != nil {
		t.Fatal(err)
	}
	l, err := h.svc.GetLocalization(ctx, h.f.Project.ID, ids[0])
	if err != nil {
		t.Fatal(err)
	}

	err = h.svc.PatchLocalization(ctx, h.f.User.ID, l, LocalizationPatch{
		Shape:      Shape{X: f64(0.5)},
		Modified:   boolPtr(true),
		Attributes: map[string]any{"Count": "4"},
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := h.store.GetLocalization(ctx, ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if *got.X != 0.5 || *got.Y != 0.2 || !got.Modified || got.Attributes["Count"] != int64(4) {
		t.Errorf("patched localization = %+v", got)
	}

	if err := h.svc.PatchLocalization(ctx, h.f.User.ID, got, LocalizationPatch{
		Attributes: map[string]any{"Species": "Shark"},
	}); !errors.Is(err, attribute.ErrInvalid) {
		t.Errorf("bad enum: error = %v, want attribute.ErrInvalid", err)
	}
	if err := h.svc.PatchLocalization(ctx, h.f.User.ID, got, LocalizationPatch{Frame: i64(1000)}); !errors.Is(err, ErrInvalid) {
		t.Errorf("frame past end: error = %v, want ErrInvalid", err)
	}
}

func boolPtr(b bool) *bool { return &b }

func TestBulkPatchAndDelete(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()

	if _, err := h.svc.CreateLocalizations(ctx, h.f.Project.ID, h.f.User.ID, []NewLocalization{
		h.box(1, "Tuna"), h.box(2, "Cod"), h.box(3, "Tuna"),
	}); err != nil {
		t.Fatal(err)
	}
	q, err := attribute.ParseQuery(params.Values{string(attribute.OpEq): []any{"Species::Tuna"}})
	if err != nil {
		t.Fatal(err)
	}
	opts := ListOptions{Query: store.AnnotationQuery{Project: h.f.Project.ID}, Filter: q}

	n, err := h.svc.PatchLocalizations(ctx, h.f.User.ID, opts, map[string]any{"Count": int64(9)})
	if err != nil || n != 2 {
		t.Fatalf("PatchLocalizations = %d, %v; want 2, nil", n, err)
	}
	n, err = h.svc.DeleteLocalizations(ctx, h.f.User.ID, opts)
	if err != nil || n != 2 {
		t.Fatalf("DeleteLocalizations = %d, %v; want 2, nil", n, err)
	}

	left, err := h.store.ListLocalizations(ctx, store.AnnotationQuery{Project: h.f.Project.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 1 || left[0].Attributes["Species"] != "Cod" || left[0].Attributes["Count"] != int64(1) {
		t.Errorf("remaining = %+v", left)
	}
	if c := h.rec.last(); c.Action != events.ActionDeleted || len(c.IDs) != 2 {
		t.Errorf("last change = %+v", c)
	}
}

func TestCreateState_Associations(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()

	second := &models.Media{Project: h.f.Project.ID, Type: h.f.MediaType.ID, Name: "second.mp4", NumFrames: 10, FPS: 10}
	if err := h.store.CreateMedia(ctx, second); err != nil {
		t.Fatal(err)
	}
	mediaType := &models.EntityType{Project: h.f.Project.ID, Kind: models.KindState, Name: "Tracks", Association: models.AssociateMedia}
	locType := &models.EntityType{Project: h.f.Project.ID, Kind: models.KindState, Name: "Groups", Association: models.AssociateLocalization}
	for _, et := range []*models.EntityType{mediaType, locType} {
		if err := h.store.CreateEntityType(ctx, et); err != nil {
			t.Fatal(err)
		}
	}
	ids, err := h.svc.CreateLocalizations(ctx, h.f.Project.ID, h.f.User.ID, []NewLocalization{h.box(1, "Tuna")})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		in   NewState
		want error
	}{
		{"media association", NewState{Type: mediaType.ID, Media: []int64{h.f.Video.ID, second.ID}}, nil},
		{"frame association", NewState{Type: h.f.StateType.ID, Media: []int64{h.f.Video.ID}, Frame: i64(12)}, nil},
		{"localization association", NewState{Type: locType.ID, Media: []int64{h.f.Video.ID}, Localizations: ids}, nil},
		{"no media", NewState{Type: mediaType.ID}, ErrInvalid},
		{"frame missing", NewState{Type: h.f.StateType.ID, Media: []int64{h.f.Video.ID}}, ErrInvalid},
		{"frame with two media", NewState{Type: h.f.StateType.ID, Media: []int64{h.f.Video.ID, second.ID}, Frame: i64(1)}, ErrInvalid},
		{"frame past end", NewState{Type: h.f.StateType.ID, Media: []int64{second.ID}, Frame: i64(10)}, ErrInvalid},
		{"localizations missing", NewState{Type: locType.ID, Media: []int64{h.f.Video.ID}}, ErrInvalid},
		{"localization on other media", NewState{Type: locType.ID, Media: []int64{second.ID}, Localizations: ids}, ErrInvalid},
		{"localization type", NewState{Type: h.f.BoxType.ID, Media: []int64{h.f.Video.ID}}, ErrInvalid},
		{"unknown media", NewState{Type: mediaType.ID, Media: []int64{99999}}, store.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := h.svc.CreateState(ctx, h.f.Project.ID, h.f.User.ID, tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if err == nil && st.ID == 0 {
				t.Error("state stored without an id")
			}
		})
	}
}

func (h *harness) frameState(t *testing.T, frame int64) *models.State {
	t.Helper()
	st, err := h.svc.CreateState(context.Background(), h.f.Project.ID, h.f.User.ID, NewState{
		Type: h.f.StateType.ID, Media: []int64{h.f.Video.ID}, Frame: i64(frame),
	})
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func TestGet_OtherProjectIsNotFound(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()

	other := &models.Project{Name: "Other"}
	if err := h.svc.CreateProject(ctx, h.f.User.ID, other); err != nil {
		t.Fatal(err)
	}
	st := h.frameState(t, 0)
	ids, err := h.svc.CreateLocalizations(ctx, h.f.Project.ID, h.f.User.ID, []NewLocalization{h.box(1, "Cod")})
	if err != nil {
		t.Fatal(err)
	}

	lookups := map[string]func(project int64) error{
		"state": func(p int64) error {
			_, err := h.svc.GetState(ctx, p, st.ID)
			return err
		},
		"localization": func(p int64) error {
			_, err := h.svc.GetLocalization(ctx, p, ids[0])
			return err
		},
		"media": func(p int64) error {
			_, err := h.svc.GetMedia(ctx, p, h.f.Video.ID)
			return err
		},
	}
	for name, get := range lookups {
		if err := get(h.f.Project.ID); err != nil {
			t.Errorf("%s in own project: %v", name, err)
		}
		if err := get(other.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("%s in other project: error = %v, want store.ErrNotFound", name, err)
		}
	}
}

func TestListStates_FrameOrder(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})

	for _, f := range []int64{150, 0, 60} {
		h.frameState(t, f)
	}
	states, err := h.svc.ListStates(context.Background(), ListOptions{
		Query: store.AnnotationQuery{Project: h.f.Project.ID, Type: h.f.StateType.ID},
	})
	if err != nil {
		t.Fatal(err)
	}
	var frames []int64
	for _, st := range states {
		frames = append(frames, *st.Frame)
	}
	if diff := cmp.Diff([]int64{0, 60, 150}, frames); diff != "" {
		t.Errorf("frame order mismatch (-want +got):\n%s", diff)
	}
	if states[0].Attributes["Behavior"] != "swimming" {
		t.Errorf("default not filled: %v", states[0].Attributes)
	}
}

func TestFrameRanges(t *testing.T) {
	t.Parallel()

	video := &models.Media{ID: 1, NumFrames: 300, FPS: 30}
	other := &models.Media{ID: 2, NumFrames: 100, FPS: 0}
	states := []models.State{
		{ID: 10, Media: []int64{1}, Frame: i64(0)},
		{ID: 11, Media: []int64{2}, Frame: i64(5)},
		{ID: 12, Media: []int64{1}, Frame: i64(60)},
		{ID: 13, Media: []int64{1}, Frame: i64(150)},
	}
	got := FrameRanges(states, map[int64]*models.Media{1: video, 2: other})

	type row struct {
		ID         int64
		End        int64
		Start, Fin float64
	}
	var rows []row
	for _, r := range got {
		rows = append(rows, row{r.State.ID, r.EndFrame, r.StartSeconds, r.EndSeconds})
	}
	want := []row{
		{10, 60, 0, 2},
		{11, 100, 0, 0},
		{12, 150, 2, 5},
		{13, 300, 5, 10},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("ranges mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteStatesCSV(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()

	h.frameState(t, 0)
	h.frameState(t, 150)
	states, err := h.svc.ListStates(ctx, ListOptions{Query: store.AnnotationQuery{Project: h.f.Project.ID, Type: h.f.StateType.ID}})
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	if err := h.svc.WriteStatesCSV(ctx, &sb, h.f.StateType, states); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), sb.String())
	}
	if want := "id,type,version,media,frame,endFrame,startSeconds,endSeconds,modified,created_at,Behavior"; lines[0] != want {
		t.Errorf("header = %q, want %q", lines[0], want)
	}
	if !strings.Contains(lines[1], ",dive.mp4,0,150,0,5,false,") || !strings.HasSuffix(lines[1], ",swimming") {
		t.Errorf("first row = %q", lines[1])
	}
	if !strings.Contains(lines[2], ",dive.mp4,150,300,5,10,") {
		t.Errorf("second row = %q", lines[2])
	}
}

// mediaFailingStore fails every media lookup.
type mediaFailingStore struct {
	store.Store
}

var errMediaLookup = errors.New("media lookup failed")

func (mediaFailingStore) GetMedia(context.Context, int64) (*models.Media, error) {
	return nil, errMediaLookup
}

func TestPrepareStatesCSV_StoreErrorBeforeOutput(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()

	h.frameState(t, 0)
	states, err := h.svc.ListStates(ctx, ListOptions{Query: store.AnnotationQuery{Project: h.f.Project.ID, Type: h.f.StateType.ID}})
	if err != nil {
		t.Fatal(err)
	}

	failing := NewService(mediaFailingStore{Store: h.store}, nil, Options{})
	export, err := failing.PrepareStatesCSV(ctx, h.f.StateType, states)
	if !errors.Is(err, errMediaLookup) || export != nil {
		t.Fatalf("PrepareStatesCSV() = %v, %v; want nil, errMediaLookup", export, err)
	}

	var sb strings.Builder
	if err := failing.WriteStatesCSV(ctx, &sb, h.f.StateType, states); !errors.Is(err, errMediaLookup) {
		t.Errorf("WriteStatesCSV() error = %v, want errMediaLookup", err)
	}
	if sb.Len() != 0 {
		t.Errorf("wrote %q before failing", sb.String())
	}
}

func TestAttributeType_RenameAndDeleteMigrate(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()

	ids, err := h.svc.CreateLocalizations(ctx, h.f.Project.ID, h.f.User.ID, []NewLocalization{h.box(1, "Cod")})
	if err != nil {
		t.Fatal(err)
	}
	types, err := h.store.ListAttributeTypes(ctx, h.f.Project.ID, &h.f.BoxType.ID)
	if err != nil {
		t.Fatal(err)
	}
	var species models.AttributeType
	for _, a := range types {
		if a.Name == "Species" {
			species = a
		}
	}

	newName := "Taxon"
	if err := h.svc.UpdateAttributeType(ctx, h.f.User.ID, &species, &newName, nil); err != nil {
		t.Fatal(err)
	}
	l, err := h.store.GetLocalization(ctx, ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]any{"Taxon": "Cod", "Count": int64(1)}, l.Attributes); diff != "" {
		t.Errorf("after rename (-want +got):\n%s", diff)
	}

	if err := h.svc.DeleteAttributeType(ctx, h.f.User.ID, &species); err != nil {
		t.Fatal(err)
	}
	l, err = h.store.GetLocalization(ctx, ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := l.Attributes["Taxon"]; ok {
		t.Errorf("attribute kept after delete: %v", l.Attributes)
	}
}

func TestSchemaCache_NewAttributeTypeApplies(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()

	if _, err := h.svc.CreateLocalizations(ctx, h.f.Project.ID, h.f.User.ID, []NewLocalization{h.box(1, "Cod")}); err != nil {
		t.Fatal(err)
	}
	if _, _, size := h.svc.schemas.Stats(); size != 1 {
		t.Fatalf("cached schemas = %d, want 1", size)
	}

	flag := &models.AttributeType{AppliesTo: h.f.BoxType.ID, Name: "Reviewed", Dtype: models.DtypeBool, Default: false, Order: 2}
	if err := h.svc.CreateAttributeType(ctx, h.f.Project.ID, h.f.User.ID, flag); err != nil {
		t.Fatal(err)
	}
	ids, err := h.svc.CreateLocalizations(ctx, h.f.Project.ID, h.f.User.ID, []NewLocalization{h.box(2, "Tuna")})
	if err != nil {
		t.Fatal(err)
	}
	l, err := h.store.GetLocalization(ctx, ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]any{"Species": "Tuna", "Count": int64(1), "Reviewed": false}, l.Attributes); diff != "" {
		t.Errorf("attributes after new type (-want +got):\n%s", diff)
	}
}

func TestSchemaCache_Disabled(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{SchemaCacheSize: -1})
	ctx := context.Background()

	if h.svc.schemas != nil {
		t.Fatal("schema cache created with a negative size")
	}
	if _, err := h.svc.CreateLocalizations(ctx, h.f.Project.ID, h.f.User.ID, []NewLocalization{h.box(1, "Cod")}); err != nil {
		t.Fatal(err)
	}
}

func TestCreateProject(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()

	p := &models.Project{Name: "  Reef  "}
	if err := h.svc.CreateProject(ctx, h.f.User.ID, p); err != nil {
		t.Fatal(err)
	}
	if p.Name != "Reef" || p.Permission != models.PermissionFullControl {
		t.Errorf("project = %+v", p)
	}
	m, err := h.store.GetMembership(ctx, p.ID, h.f.User.ID)
	if err != nil || m.Permission != models.PermissionFullControl {
		t.Errorf("membership = %+v, %v", m, err)
	}

	v := &models.Version{Project: p.ID, Name: "Reviewed"}
	if err := h.svc.CreateVersion(ctx, h.f.User.ID, v); err != nil {
		t.Fatal(err)
	}
	if v.Number != 1 {
		t.Errorf("version number = %d, want 1", v.Number)
	}
	if err := h.svc.CreateProject(ctx, h.f.User.ID, &models.Project{Name: " "}); !errors.Is(err, ErrInvalid) {
		t.Errorf("blank name: error = %v, want ErrInvalid", err)
	}
}

func TestCreateEntityType(t *testing.T) {
	t.Parallel()
	h := newHarness(t, Options{})
	ctx := context.Background()

	tests := []struct {
		name    string
		in      NewEntityType
		wantErr bool
	}{
		{"dot type", NewEntityType{Kind: models.KindLocalization, Name: "Dots", Dtype: models.ShapeDot, MediaTypes: []int64{h.f.MediaType.ID}}, false},
		{"state type", NewEntityType{Kind: models.KindState, Name: "Tracks", Association: models.AssociateMedia}, false},
		{"unknown shape", NewEntityType{Kind: models.KindLocalization, Name: "Ellipses", Dtype: "ellipse"}, true},
		{"media dtype on localization", NewEntityType{Kind: models.KindLocalization, Name: "Bad", Dtype: models.MediaVideo}, true},
		{"state without association", NewEntityType{Kind: models.KindState, Name: "Bad"}, true},
		{"bad color", NewEntityType{Kind: models.KindLocalization, Name: "Bad", Dtype: models.ShapeBox, Colors: map[string]string{"Tuna": "red"}}, true},
		{"missing name", NewEntityType{Kind: models.KindMedia, Dtype: models.MediaImage}, true},
		{"leaf type", NewEntityType{Kind: models.KindLeaf, Name: "Taxa"}, false},
		{"leaf type with dtype", NewEntityType{Kind: models.KindLeaf, Name: "Taxa", Dtype: models.ShapeBox}, true},
		{"media type without dtype", NewEntityType{Kind: models.KindMedia, Name: "Files"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			et, err := h.svc.CreateEntityType(ctx, h.f.Project.ID, h.f.User.ID, tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var verr *validation.RequestValidationError
				if !errors.As(err, &verr) && !errors.Is(err, ErrInvalid) {
					t.Errorf("error %T is neither a validation error nor ErrInvalid", err)
				}
				return
			}
			if et.Kind == models.KindState && et.Interpolation != models.InterpolateNone {
				t.Errorf("interpolation = %q, want none", et.Interpolation)
			}
		})
	}

	types, err := h.svc.ListEntityTypes(ctx, h.f.Project.ID, models.KindLocalization)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, a := range types[0].AttributeTypes {
		names = append(names, a.Name)
	}
	if diff := cmp.Diff([]string{"Species", "Count"}, names); diff != "" {
		t.Errorf("attribute types of %s (-want +got):\n%s", types[0].Name, diff)
	}
}
