// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package params

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Values produced by Parse use a small set of Go types:
//
//	boolean -> bool
//	integer -> int64
//	number  -> float64
//	string  -> string
//	array   -> []any
//	object  -> map[string]any
//
// Nested JSON numbers inside arrays and objects are int64 when they are
// integral literals and float64 otherwise.

// mismatch describes why a value was rejected.
type mismatch struct {
	expected Type
	got      string
	detail   string
}

func (m *mismatch) Error() string {
	if m.detail != "" {
		return m.detail
	}
	return fmt.Sprintf("expected %s, got %s", m.expected, m.got)
}

// kindOf names the JSON kind of a canonical value.
func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case int64:
		return "integer"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

// checkValue verifies a canonical value against the field type and returns it
// in the representation for that type. Only number accepts a conversion: any
// numeric value or numeric string becomes float64.
func checkValue(f Field, v any) (any, error) {
	switch f.Type {
	case TypeBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case TypeInteger:
		if i, ok := v.(int64); ok {
			return i, nil
		}
	case TypeNumber:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		case string:
			return parseNumber(n)
		}
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case TypeArray:
		if a, ok := v.([]any); ok {
			return checkItems(f, a)
		}
	case TypeObject:
		if m, ok := v.(map[string]any); ok {
			return m, nil
		}
	}
	return nil, &mismatch{expected: f.Type, got: kindOf(v)}
}

func checkItems(f Field, items []any) ([]any, error) {
	if f.Items == "" {
		return items, nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		v, err := checkValue(Field{Type: f.Items}, item)
		if err != nil {
			return nil, &mismatch{
				expected: f.Type,
				detail:   fmt.Sprintf("item %d: %v", i, err),
			}
		}
		out[i] = v
	}
	return out, nil
}

func parseNumber(s string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, &mismatch{expected: TypeNumber, detail: fmt.Sprintf("%q is not a finite number", s)}
	}
	return n, nil
}

// coerceText converts path or query text into a value of the field type.
// raw holds every occurrence of the parameter; scalars take the last one.
func coerceText(f Field, raw []string) (any, error) {
	switch f.Type {
	case TypeArray:
		parts := raw
		if len(raw) == 1 {
			parts = strings.Split(raw[0], ",")
		}
		items := f.Items
		if items == "" {
			items = TypeString
		}
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			v, err := coerceScalar(items, p)
			if err != nil {
				return nil, &mismatch{expected: TypeArray, detail: fmt.Sprintf("item %q: %v", p, err)}
			}
			out = append(out, v)
		}
		return out, nil
	case TypeObject:
		v, err := decodeJSON([]byte(raw[len(raw)-1]))
		if err != nil {
			return nil, &mismatch{expected: TypeObject, detail: "not a JSON object"}
		}
		return checkValue(f, v)
	default:
		return coerceScalar(f.Type, raw[len(raw)-1])
	}
}

func coerceScalar(t Type, s string) (any, error) {
	switch t {
	case TypeBoolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, &mismatch{expected: t, detail: fmt.Sprintf("%q is not a boolean", s)}
		}
		return b, nil
	case TypeInteger:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, &mismatch{expected: t, detail: fmt.Sprintf("%q is not an integer", s)}
		}
		return i, nil
	case TypeNumber:
		return parseNumber(s)
	case TypeString:
		return s, nil
	}
	return nil, &mismatch{expected: t, detail: fmt.Sprintf("%s cannot be read from text", t)}
}

// errTrailingData rejects input holding more than one JSON value.
var errTrailingData = errors.New("unexpected data after the JSON value")

// decodeJSON decodes exactly one JSON value from b, keeping integer literals
// distinguishable from floats.
func decodeJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return normalizeJSON(v), nil
}

// normalizeJSON replaces json.Number values produced by UseNumber.
func normalizeJSON(v any) any {
	switch t := v.(type) {
	case json.Number:
		s := string(t)
		if !strings.ContainsAny(s, ".eE") {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return i
			}
		}
		f, _ := strconv.ParseFloat(s, 64)
		return f
	case []any:
		for i := range t {
			t[i] = normalizeJSON(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalizeJSON(t[k])
		}
		return t
	}
	return v
}

// normalizeGo converts Go values used in declarations (defaults, enums) and
// in Values.Set into canonical form.
func normalizeGo(v any) (any, error) {
	switch t := v.(type) {
	case nil, bool, int64, float64, string:
		return t, nil
	case json.Number:
		return normalizeJSON(t), nil
	case []any:
		out := make([]any, len(t))
		for i := range t {
			n, err := normalizeGo(t[i])
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			n, err := normalizeGo(e)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("%d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			n, err := normalizeGo(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map key type %s is not string", rv.Type().Key())
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			n, err := normalizeGo(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = n
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}

// cloneValue copies arrays and objects so defaults are never shared.
func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	}
	return v
}

// checkConstraints applies Enum, Minimum and Maximum to a typed value.
func checkConstraints(f Field, v any) error {
	if len(f.Enum) > 0 {
		found := false
		for _, e := range f.Enum {
			if e == v {
				found = true
				break
			}
		}
		if !found {
			return &mismatch{expected: f.Type, detail: fmt.Sprintf("%v is not one of %v", v, f.Enum)}
		}
	}

	var n float64
	switch t := v.(type) {
	case int64:
		n = float64(t)
	case float64:
		n = t
	default:
		return nil
	}
	if f.Minimum != nil && n < *f.Minimum {
		return &mismatch{expected: f.Type, detail: fmt.Sprintf("%v is below minimum %v", v, *f.Minimum)}
	}
	if f.Maximum != nil && n > *f.Maximum {
		return &mismatch{expected: f.Type, detail: fmt.Sprintf("%v is above maximum %v", v, *f.Maximum)}
	}
	return nil
}
