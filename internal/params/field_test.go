// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package params

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewSchema_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		all     []Field
		methods map[string][]Field
		wantErr string
	}{
		{
			name:    "empty name",
			all:     []Field{{In: InQuery, Type: TypeString}},
			wantErr: "empty name",
		},
		{
			name:    "unknown location",
			all:     []Field{{Name: "a", In: "header", Type: TypeString}},
			wantErr: "unknown location",
		},
		{
			name:    "unknown type",
			all:     []Field{{Name: "a", In: InQuery, Type: "date"}},
			wantErr: "unknown type",
		},
		{
			name:    "optional path field",
			all:     []Field{{Name: "id", In: InPath, Type: TypeInteger}},
			wantErr: "must be required",
		},
		{
			name:    "default of wrong type",
			all:     []Field{{Name: "a", In: InQuery, Type: TypeInteger, Default: "x"}},
			wantErr: "default does not match",
		},
		{
			name:    "items on scalar",
			all:     []Field{{Name: "a", In: InQuery, Type: TypeString, Items: TypeInteger}},
			wantErr: "items",
		},
		{
			name:    "enum on array",
			all:     []Field{{Name: "a", In: InQuery, Type: TypeArray, Enum: []any{"x"}}},
			wantErr: "enum requires a scalar",
		},
		{
			name:    "enum of wrong type",
			all:     []Field{{Name: "a", In: InQuery, Type: TypeInteger, Enum: []any{"x"}}},
			wantErr: "enum value",
		},
		{
			name: "duplicate across all and method",
			all:  []Field{{Name: "a", In: InQuery, Type: TypeString}},
			methods: map[string][]Field{
				http.MethodGet: {{Name: "a", In: InQuery, Type: TypeString}},
			},
			wantErr: "declared twice",
		},
		{
			name:    "unsupported default value",
			all:     []Field{{Name: "a", In: InQuery, Type: TypeObject, Default: map[int]string{1: "x"}}},
			wantErr: "map key type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewSchema(tt.all, tt.methods)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewSchema() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewSchema_SameNameDifferentLocation(t *testing.T) {
	t.Parallel()

	_, err := NewSchema(nil, map[string][]Field{
		http.MethodPatch: {
			{Name: "id", In: InPath, Required: true, Type: TypeInteger},
			{Name: "id", In: InBody, Type: TypeInteger},
		},
	})
	if err != nil {
		t.Errorf("NewSchema() error = %v", err)
	}
}

func TestNewSchema_NormalizesDefaults(t *testing.T) {
	t.Parallel()

	s := MustSchema([]Field{
		{Name: "limit", In: InQuery, Type: TypeInteger, Default: 100},
		{Name: "scale", In: InQuery, Type: TypeNumber, Default: float32(2)},
		{Name: "ids", In: InBody, Type: TypeArray, Default: []int{1, 2}},
		{Name: "shape", In: InQuery, Type: TypeString, Enum: []any{"box", "dot"}},
		{Name: "level", In: InQuery, Type: TypeNumber, Enum: []any{1, 2}},
	}, map[string][]Field{"get": nil})

	want := []any{int64(100), float64(2), []any{int64(1), int64(2)}}
	got := []any{s.All[0].Default, s.All[1].Default, s.All[2].Default}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{float64(1), float64(2)}, s.All[4].Enum); diff != "" {
		t.Errorf("enum mismatch (-want +got):\n%s", diff)
	}
	if _, ok := s.Methods[http.MethodGet]; !ok {
		t.Error("method keys should be upper case")
	}
}

func TestMustSchema_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("MustSchema() should panic on an invalid schema")
		}
	}()
	MustSchema([]Field{{Name: "x", In: InPath, Type: TypeInteger}}, nil)
}

func TestSchema_FieldsOrder(t *testing.T) {
	t.Parallel()

	s := MustSchema(
		[]Field{{Name: "a", In: InQuery, Type: TypeString}, {Name: "b", In: InQuery, Type: TypeString}},
		map[string][]Field{
			http.MethodPost: {{Name: "c", In: InBody, Type: TypeString}},
			http.MethodGet:  {{Name: "d", In: InQuery, Type: TypeString}},
		},
	)

	var names []string
	for _, f := range s.Fields("post") {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, names); diff != "" {
		t.Errorf("Fields() order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{http.MethodGet, http.MethodPost}, s.MethodNames()); diff != "" {
		t.Errorf("MethodNames() mismatch (-want +got):\n%s", diff)
	}
}
