// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

// Package query builds parameterized SQL WHERE clauses for the database
// package.
package query

import (
	"fmt"
	"strings"
)

// WhereBuilder collects conditions joined with AND. Column names are
// trusted; values always travel as placeholders.
//
//	wb := query.NewWhereBuilder()
//	wb.AddEq("project", 3).AddIn("type", []int64{7, 8})
//	where, args := wb.Build()
//	// project = ? AND type IN (?, ?)
type WhereBuilder struct {
	clauses []string
	args    []any
}

func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{}
}

// AddClause adds a raw condition with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...any) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddEq adds "column = ?" unless v is zero.
func (wb *WhereBuilder) AddEq(column string, v int64) *WhereBuilder {
	if v == 0 {
		return wb
	}
	return wb.AddClause(column+" = ?", v)
}

// AddText adds "column = ?" unless v is empty.
func (wb *WhereBuilder) AddText(column, v string) *WhereBuilder {
	if v == "" {
		return wb
	}
	return wb.AddClause(column+" = ?", v)
}

// AddIn adds "column IN (?, ...)" unless ids is empty.
func (wb *WhereBuilder) AddIn(column string, ids []int64) *WhereBuilder {
	if len(ids) == 0 {
		return wb
	}
	placeholders, args := InList(ids)
	return wb.AddClause(fmt.Sprintf("%s IN (%s)", column, placeholders), args...)
}

// AddInSubquery adds "column IN (SELECT ...)" where the subquery selects
// from table with filter IN ids. Empty ids add nothing.
func (wb *WhereBuilder) AddInSubquery(column, selectCol, table, filterCol string, ids []int64) *WhereBuilder {
	if len(ids) == 0 {
		return wb
	}
	placeholders, args := InList(ids)
	return wb.AddClause(fmt.Sprintf("%s IN (SELECT %s FROM %s WHERE %s IN (%s))",
		column, selectCol, table, filterCol, placeholders), args...)
}

// Build returns the clause without the WHERE keyword, or "1=1" when empty.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.clauses) == 0 {
		return "1=1", nil
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}

// InList returns "?, ?, ?" and the matching arguments.
func InList(ids []int64) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ", "), args
}
