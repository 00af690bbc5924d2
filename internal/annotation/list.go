// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package annotation

import (
	"github.com/tator-io/tator/internal/attribute"
	"github.com/tator-io/tator/internal/store"
)

// ListOptions selects annotations. Query holds the structural filters the
// store applies; Filter is matched against attribute values afterwards.
// Start and Stop slice the filtered result; a nil Stop means no upper
// limit.
type ListOptions struct {
	Query  store.AnnotationQuery
	Filter *attribute.Query
	Start  int
	Stop   *int
}

func validatePage(start int, stop *int) error {
	if start < 0 || (stop != nil && *stop < 0) {
		return invalid("start and stop must not be negative")
	}
	if stop != nil && *stop < start {
		return invalid("stop (%d) must not be less than start (%d)", *stop, start)
	}
	return nil
}

func (o ListOptions) validate() error { return validatePage(o.Start, o.Stop) }

// page applies start and stop to a filtered slice.
func page[T any](items []T, start int, stop *int) []T {
	end := len(items)
	if stop != nil {
		end = min(*stop, end)
	}
	if start >= end {
		return items[:0]
	}
	return items[start:end]
}

// filter keeps the items whose attributes match q.
func filter[T any](items []T, q *attribute.Query, attrs func(*T) map[string]any) []T {
	if q.Empty() {
		return items
	}
	out := items[:0]
	for i := range items {
		if q.Match(attrs(&items[i])) {
			out = append(out, items[i])
		}
	}
	return out
}
