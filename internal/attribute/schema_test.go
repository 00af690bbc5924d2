// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package attribute

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tator-io/tator/internal/models"
)

func fishSchema() *Schema {
	return NewSchema([]models.AttributeType{
		{Name: "Species", Dtype: models.DtypeEnum, Choices: []string{"Tuna", "Cod"}, Order: 1},
		{Name: "Length", Dtype: models.DtypeFloat, Order: 2},
		{Name: "Reviewed", Dtype: models.DtypeBool, Default: false, Order: 3},
		{Name: "Seen", Dtype: models.DtypeDatetime, UseCurrent: true, Order: 4},
		{Name: "Notes", Dtype: models.DtypeString, Order: 0},
	})
}

func TestSchema_Order(t *testing.T) {
	t.Parallel()

	var names []string
	for _, at := range fishSchema().Types() {
		names = append(names, at.Name)
	}
	want := []string{"Notes", "Species", "Length", "Reviewed", "Seen"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("Types() order (-want +got):\n%s", diff)
	}
}

// The clock is swapped, so this test does not run in parallel.
func TestSchema_Validate(t *testing.T) {
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	s := fishSchema()

	got, err := s.Validate(map[string]any{
		"Species": "Tuna",
		"Length":  "1.5",
		"Notes":   "n",
	}, true)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	want := map[string]any{
		"Species":  "Tuna",
		"Length":   1.5,
		"Notes":    "n",
		"Reviewed": false,
		"Seen":     "2024-05-06T07:08:09Z",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Validate() mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.Validate(map[string]any{"Species": "Tuna", "Notes": "n"}, true); !errors.Is(err, ErrInvalid) {
		t.Errorf("missing Length: error = %v", err)
	}
	if _, err := s.Validate(map[string]any{"Species": "Tuna"}, false); err != nil {
		t.Errorf("requireAll=false: error = %v", err)
	}
	if _, err := s.Validate(map[string]any{"Color": "red"}, false); !errors.Is(err, ErrInvalid) {
		t.Errorf("unknown attribute: error = %v", err)
	}
	if _, err := s.Validate(map[string]any{"Species": "Shark"}, false); !errors.Is(err, ErrInvalid) {
		t.Errorf("bad enum: error = %v", err)
	}
}

func TestSchema_Patch(t *testing.T) {
	t.Parallel()

	s := fishSchema()
	existing := map[string]any{"Species": "Tuna", "Length": 1.0, "Notes": "old"}

	got, err := s.Patch(existing, map[string]any{"Length": int64(2), "Notes": nil})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"Species": "Tuna", "Length": 2.0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Patch() mismatch (-want +got):\n%s", diff)
	}
	if existing["Notes"] != "old" {
		t.Error("Patch() modified its input")
	}

	if _, err := s.Patch(existing, map[string]any{"Species": 3}); !errors.Is(err, ErrInvalid) {
		t.Errorf("bad value: error = %v", err)
	}
}
