// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWhereBuilder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		build     func(wb *WhereBuilder)
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "empty",
			build:     func(*WhereBuilder) {},
			wantWhere: "1=1",
		},
		{
			name:      "zero values are skipped",
			build:     func(wb *WhereBuilder) { wb.AddEq("project", 0).AddText("section", "").AddIn("id", nil) },
			wantWhere: "1=1",
		},
		{
			name: "combined",
			build: func(wb *WhereBuilder) {
				wb.AddEq("project", 3).AddIn("type", []int64{7, 8}).AddClause("modified = ?", false)
			},
			wantWhere: "project = ? AND type IN (?, ?) AND modified = ?",
			wantArgs:  []any{int64(3), int64(7), int64(8), false},
		},
		{
			name: "subquery",
			build: func(wb *WhereBuilder) {
				wb.AddInSubquery("id", "state_id", "state_media", "media_id", []int64{1, 2})
			},
			wantWhere: "id IN (SELECT state_id FROM state_media WHERE media_id IN (?, ?))",
			wantArgs:  []any{int64(1), int64(2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			wb := NewWhereBuilder()
			tt.build(wb)
			where, args := wb.Build()
			if where != tt.wantWhere {
				t.Errorf("Build() where = %q, want %q", where, tt.wantWhere)
			}
			if diff := cmp.Diff(tt.wantArgs, args); diff != "" {
				t.Errorf("Build() args (-want +got):\n%s", diff)
			}
			if wb.IsEmpty() != (tt.wantWhere == "1=1") {
				t.Errorf("IsEmpty() = %v", wb.IsEmpty())
			}
		})
	}
}
