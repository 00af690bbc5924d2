// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil || v1 != v2 {
		t.Fatal("GetValidator() should return one shared instance")
	}
}

type boxInput struct {
	X      *float64 `param:"x" validate:"required,normalized"`
	Width  *float64 `param:"width" validate:"omitempty,normalized"`
	Color  string   `json:"color" validate:"hexcolor_or_empty"`
	Name   string   `json:"name" validate:"required,min=1,max=10"`
	Shape  string   `json:"shape" validate:"omitempty,oneof=box line dot"`
	Frames []int64  `json:"frames" validate:"max=2"`
}

func ptr(f float64) *float64 { return &f }

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		input   boxInput
		wantErr bool
		field   string
		message string
	}{
		{
			name:  "valid",
			input: boxInput{X: ptr(0.5), Width: ptr(1), Color: "#00ff00", Name: "car"},
		},
		{
			name:    "missing x",
			input:   boxInput{Name: "car"},
			wantErr: true,
			field:   "x",
			message: "x is required",
		},
		{
			name:    "x above range",
			input:   boxInput{X: ptr(1.5), Name: "car"},
			wantErr: true,
			field:   "x",
			message: "x must be between 0 and 1",
		},
		{
			name:    "bad color",
			input:   boxInput{X: ptr(0), Name: "car", Color: "red"},
			wantErr: true,
			field:   "color",
			message: "color must be a color like #00ff00",
		},
		{
			name:    "name too long",
			input:   boxInput{X: ptr(0), Name: "abcdefghijk"},
			wantErr: true,
			field:   "name",
			message: "name must be at most 10 characters",
		},
		{
			name:    "shape not allowed",
			input:   boxInput{X: ptr(0), Name: "car", Shape: "poly"},
			wantErr: true,
			field:   "shape",
			message: "shape must be one of: box line dot",
		},
		{
			name:    "too many frames",
			input:   boxInput{X: ptr(0), Name: "car", Frames: []int64{1, 2, 3}},
			wantErr: true,
			field:   "frames",
			message: "frames must be at most 2 items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&tt.input)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			got := err.Violations()
			if len(got) != 1 {
				t.Fatalf("got %d violations, want 1: %v", len(got), err)
			}
			if got[0].Field() != tt.field {
				t.Errorf("Field() = %q, want %q", got[0].Field(), tt.field)
			}
			if got[0].Error() != tt.message {
				t.Errorf("message = %q, want %q", got[0].Error(), tt.message)
			}
		})
	}
}

func TestRequestValidationError_Details(t *testing.T) {
	err := ValidateStruct(&boxInput{})
	if err == nil {
		t.Fatal("expected error")
	}
	details := err.Details()
	fields, ok := details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("details = %v, want fields list", details)
	}
	if len(fields) != 2 {
		t.Errorf("got %d fields, want 2 (x and name)", len(fields))
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("Error() should join messages, got %q", err.Error())
	}
}
