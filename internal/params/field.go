// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package params

import (
	"fmt"
	"net/http"
	"strings"
)

// Location is where a field is read from in the request.
type Location string

const (
	InPath  Location = "path"
	InQuery Location = "query"
	InBody  Location = "body"
)

// Valid reports whether l is a known location.
func (l Location) Valid() bool {
	switch l {
	case InPath, InQuery, InBody:
		return true
	}
	return false
}

// Type is the declared value type of a field.
type Type string

const (
	TypeBoolean Type = "boolean"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeString  Type = "string"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	switch t {
	case TypeBoolean, TypeInteger, TypeNumber, TypeString, TypeArray, TypeObject:
		return true
	}
	return false
}

// scalar reports whether values of t can be compared with ==.
func (t Type) scalar() bool {
	return t != TypeArray && t != TypeObject
}

// BodyName is the field name under which a JSON array body is exposed.
const BodyName = "body"

// Field describes one request parameter.
//
// Default is only consulted when the field is optional and absent. Items
// constrains array elements and is ignored for other types. Enum, Minimum
// and Maximum are checked after the value has been coerced to Type.
type Field struct {
	Name        string
	In          Location
	Required    bool
	Type        Type
	Default     any
	Description string
	Enum        []any
	Items       Type
	Minimum     *float64
	Maximum     *float64
}

// Bound returns a pointer to v, for use in Field.Minimum and Field.Maximum.
func Bound(v float64) *float64 { return &v }

// Schema groups the fields of an endpoint. All applies to every method and is
// always validated first; Methods holds fields for a single HTTP method.
type Schema struct {
	All     []Field
	Methods map[string][]Field
}

// Fields returns the fields that apply to method in validation order.
func (s Schema) Fields(method string) []Field {
	specific := s.Methods[strings.ToUpper(method)]
	out := make([]Field, 0, len(s.All)+len(specific))
	out = append(out, s.All...)
	out = append(out, specific...)
	return out
}

// MethodNames returns the methods with method-specific fields, in a fixed order.
func (s Schema) MethodNames() []string {
	var out []string
	for _, m := range knownMethods {
		if _, ok := s.Methods[m]; ok {
			out = append(out, m)
		}
	}
	return out
}

var knownMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// NewSchema builds a Schema, normalizing field defaults and enums to the
// representation Parse produces and checking the declaration for mistakes.
func NewSchema(all []Field, methods map[string][]Field) (Schema, error) {
	s := Schema{Methods: make(map[string][]Field, len(methods))}

	var err error
	if s.All, err = normalizeFields(all); err != nil {
		return Schema{}, err
	}
	for m, fields := range methods {
		norm, err := normalizeFields(fields)
		if err != nil {
			return Schema{}, fmt.Errorf("%s: %w", m, err)
		}
		s.Methods[strings.ToUpper(m)] = norm
	}

	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}

// MustSchema is NewSchema for package-level route tables. It panics on error.
func MustSchema(all []Field, methods map[string][]Field) Schema {
	s, err := NewSchema(all, methods)
	if err != nil {
		panic(fmt.Sprintf("params: invalid schema: %v", err))
	}
	return s
}

func normalizeFields(fields []Field) ([]Field, error) {
	out := make([]Field, len(fields))
	for i, f := range fields {
		if f.Default != nil {
			d, err := normalizeGo(f.Default)
			if err != nil {
				return nil, fmt.Errorf("field %q default: %w", f.Name, err)
			}
			if typed, err := checkValue(f, d); err == nil {
				d = typed
			}
			f.Default = d
		}
		if len(f.Enum) > 0 {
			enum := make([]any, len(f.Enum))
			for j, e := range f.Enum {
				v, err := normalizeGo(e)
				if err != nil {
					return nil, fmt.Errorf("field %q enum: %w", f.Name, err)
				}
				if typed, err := checkValue(Field{Type: f.Type}, v); err == nil {
					v = typed
				}
				enum[j] = v
			}
			f.Enum = enum
		}
		out[i] = f
	}
	return out, nil
}

// Validate checks the schema declaration itself.
func (s Schema) Validate() error {
	if err := validateGroup(s.All, nil); err != nil {
		return err
	}
	for m, fields := range s.Methods {
		if err := validateGroup(fields, s.All); err != nil {
			return fmt.Errorf("%s: %w", m, err)
		}
	}
	return nil
}

func validateGroup(fields, inherited []Field) error {
	type key struct {
		name string
		in   Location
	}
	seen := make(map[key]bool, len(fields)+len(inherited))
	for _, f := range inherited {
		seen[key{f.Name, f.In}] = true
	}

	for _, f := range fields {
		if f.Name == "" {
			return fmt.Errorf("field with empty name")
		}
		if !f.In.Valid() {
			return fmt.Errorf("field %q: unknown location %q", f.Name, f.In)
		}
		if !f.Type.Valid() {
			return fmt.Errorf("field %q: unknown type %q", f.Name, f.Type)
		}
		if f.Items != "" && (f.Type != TypeArray || !f.Items.Valid()) {
			return fmt.Errorf("field %q: items %q not allowed", f.Name, f.Items)
		}
		if f.In == InPath && !f.Required {
			return fmt.Errorf("path field %q must be required", f.Name)
		}
		if len(f.Enum) > 0 && !f.Type.scalar() {
			return fmt.Errorf("field %q: enum requires a scalar type", f.Name)
		}
		k := key{f.Name, f.In}
		if seen[k] {
			return fmt.Errorf("field %q declared twice in %s", f.Name, f.In)
		}
		seen[k] = true

		if f.Default != nil {
			if _, err := checkValue(f, f.Default); err != nil {
				return fmt.Errorf("field %q: default does not match type %s: %w", f.Name, f.Type, err)
			}
		}
		for _, e := range f.Enum {
			if _, err := checkValue(Field{Type: f.Type}, e); err != nil {
				return fmt.Errorf("field %q: enum value %v is not %s", f.Name, e, f.Type)
			}
		}
	}
	return nil
}
