// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package params

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/tator-io/tator/internal/validation"
)

// Values maps field names to parsed values. The accessors return the zero
// value when a field is nil or holds a different type.
type Values map[string]any

// Has reports whether name resolved to a non-nil value.
func (v Values) Has(name string) bool {
	return v[name] != nil
}

func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

func (v Values) Int(name string) int64 {
	i, _ := v[name].(int64)
	return i
}

// IntPtr returns nil for absent integers, for optional filters.
func (v Values) IntPtr(name string) *int64 {
	i, ok := v[name].(int64)
	if !ok {
		return nil
	}
	return &i
}

func (v Values) Float(name string) float64 {
	switch n := v[name].(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

func (v Values) Array(name string) []any {
	a, _ := v[name].([]any)
	return a
}

func (v Values) Object(name string) map[string]any {
	m, _ := v[name].(map[string]any)
	return m
}

// Ints returns the integer items of an array field. Non-integer items are skipped.
func (v Values) Ints(name string) []int64 {
	items := v.Array(name)
	out := make([]int64, 0, len(items))
	for _, it := range items {
		if i, ok := it.(int64); ok {
			out = append(out, i)
		}
	}
	return out
}

// Strings returns the string items of an array field.
func (v Values) Strings(name string) []string {
	items := v.Array(name)
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Decode copies v into the struct pointed to by dst using `param` tags and
// then runs struct validation, for constraints that span several fields.
func (v Values) Decode(dst interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "param",
		Result:  dst,
	})
	if err != nil {
		return fmt.Errorf("params: decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(v)); err != nil {
		return fmt.Errorf("params: decode: %w", err)
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		return verr
	}
	return nil
}
