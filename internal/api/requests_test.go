// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package api

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tator-io/tator/internal/annotation"
	"github.com/tator-io/tator/internal/auth"
	"github.com/tator-io/tator/internal/params"
	"github.com/tator-io/tator/internal/validation"
)

func TestDecodePage(t *testing.T) {
	t.Parallel()

	intp := func(v int) *int { return &v }
	tests := []struct {
		name      string
		values    params.Values
		wantStart int
		wantStop  *int
		wantErr   bool
	}{
		{name: "absent", values: params.Values{"start": nil, "stop": nil}},
		{name: "start only", values: params.Values{"start": int64(4), "stop": nil}, wantStart: 4},
		{name: "explicit zero stop", values: params.Values{"start": nil, "stop": int64(0)}, wantStop: intp(0)},
		{name: "window", values: params.Values{"start": int64(2), "stop": int64(5)}, wantStart: 2, wantStop: intp(5)},
		{name: "stop before start", values: params.Values{"start": int64(5), "stop": int64(2)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			start, stop, err := decodePage(tt.values)
			if tt.wantErr {
				var verr *validation.RequestValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("decodePage() error = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodePage() error = %v", err)
			}
			if start != tt.wantStart || !cmp.Equal(stop, tt.wantStop) {
				t.Errorf("decodePage() = %d, %v; want %d, %v", start, stop, tt.wantStart, tt.wantStop)
			}
		})
	}
}

func TestCreateStateRequest(t *testing.T) {
	t.Parallel()

	frame := int64(3)
	v := params.Values{
		"project":          int64(1),
		"media_ids":        []any{int64(7), int64(8)},
		"localization_ids": nil,
		"type":             int64(2),
		"frame":            frame,
		"version":          nil,
		"modified":         false,
		"attributes":       map[string]any{"Behavior": "feeding"},
	}
	var req createStateRequest
	if err := v.Decode(&req); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := annotation.NewState{
		Media:      []int64{7, 8},
		Type:       2,
		Frame:      &frame,
		Attributes: map[string]any{"Behavior": "feeding"},
	}
	if diff := cmp.Diff(want, req.state()); diff != "" {
		t.Errorf("state() mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateStateRequest_RequiresAChange(t *testing.T) {
	t.Parallel()

	var req updateStateRequest
	err := params.Values{"version": nil, "modified": nil, "attributes": nil}.Decode(&req)
	var verr *validation.RequestValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Decode() error = %v, want validation error", err)
	}

	req = updateStateRequest{}
	if err := (params.Values{"modified": true}).Decode(&req); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if req.Modified == nil || !*req.Modified {
		t.Errorf("Modified = %v, want true", req.Modified)
	}
}

func TestLeafSuggestionRequest_MinLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		values  params.Values
		want    int
		wantErr bool
	}{
		{name: "default", values: params.Values{"ancestor": "ITIS", "query": "tu", "minLevel": nil}, want: 1},
		{name: "explicit", values: params.Values{"ancestor": "ITIS", "query": "tu", "minLevel": int64(3)}, want: 3},
		{name: "no query", values: params.Values{"ancestor": "ITIS", "query": ""}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var req leafSuggestionRequest
			err := tt.values.Decode(&req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && req.minLevel() != tt.want {
				t.Errorf("minLevel() = %d, want %d", req.minLevel(), tt.want)
			}
		})
	}
}

func TestUpdateUserRequest(t *testing.T) {
	t.Parallel()

	name := "Ada"
	tests := []struct {
		name    string
		values  params.Values
		wantErr bool
	}{
		{name: "empty", values: params.Values{"first_name": nil, "last_name": nil, "email": nil}, wantErr: true},
		{name: "first name", values: params.Values{"first_name": name}},
		{name: "email", values: params.Values{"email": "ada@example.com"}},
		{name: "bad email", values: params.Values{"email": "ada"}, wantErr: true},
		{name: "long last name", values: params.Values{"last_name": strings.Repeat("x", 151)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var req updateUserRequest
			err := tt.values.Decode(&req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	var req updateUserRequest
	if err := (params.Values{"first_name": name}).Decode(&req); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(auth.Profile{FirstName: &name}, req.profile()); diff != "" {
		t.Errorf("profile() mismatch (-want +got):\n%s", diff)
	}
}
