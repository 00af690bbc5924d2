// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package models

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestParsePermission(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Permission
		wantErr bool
	}{
		{"View Only", PermissionView, false},
		{"can_edit", PermissionEdit, false},
		{" Can Transfer ", PermissionTransfer, false},
		{"CAN EXECUTE", PermissionExecute, false},
		{"full_control", PermissionFullControl, false},
		{"admin", PermissionNone, true},
		{"", PermissionNone, true},
	}
	for _, tt := range tests {
		got, err := ParsePermission(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePermission(%q) = %v, %v; want %v, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestPermission_Ordering(t *testing.T) {
	t.Parallel()

	if !PermissionFullControl.Includes(PermissionEdit) {
		t.Error("Full Control should include Can Edit")
	}
	if PermissionView.Includes(PermissionEdit) {
		t.Error("View Only should not include Can Edit")
	}
	if PermissionFullControl.Role() != "full_control" {
		t.Errorf("Role() = %q", PermissionFullControl.Role())
	}
}

func TestMembership_JSON(t *testing.T) {
	t.Parallel()

	in := Membership{Project: 1, User: 2, Username: "ann", Permission: PermissionTransfer}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"project":1,"user":2,"username":"ann","permission":"Can Transfer"}`; string(raw) != want {
		t.Errorf("Marshal() = %s, want %s", raw, want)
	}

	var out Membership
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("Unmarshal() = %+v, want %+v", out, in)
	}
}
