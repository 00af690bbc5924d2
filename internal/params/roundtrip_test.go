// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package params

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"testing/quick"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

// roundTrip encodes v into the location of f, parses it back and returns
// the parsed value.
func roundTrip(t *testing.T, f Field, text string, body any) any {
	t.Helper()

	f.Required = true
	schema := MustSchema([]Field{f}, nil)
	req := &Request{Method: http.MethodPost, Path: "/rt", Query: url.Values{}, PathParams: map[string]string{}}

	switch f.In {
	case InPath:
		req.PathParams[f.Name] = text
	case InQuery:
		req.Query.Set(f.Name, text)
	case InBody:
		raw, err := json.Marshal(map[string]any{f.Name: body})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		decoded, err := decodeJSON(raw)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		req.Body = decoded
	}

	values, err := Parse(schema, req)
	if err != nil {
		t.Fatalf("Parse(%s %s) error = %v", f.In, f.Type, err)
	}
	return values[f.Name]
}

func TestRoundTrip_Integer(t *testing.T) {
	t.Parallel()
	for _, in := range []Location{InPath, InQuery, InBody} {
		prop := func(n int64) bool {
			got := roundTrip(t, Field{Name: "n", In: in, Type: TypeInteger}, strconv.FormatInt(n, 10), n)
			return got == n
		}
		if err := quick.Check(prop, nil); err != nil {
			t.Errorf("%s: %v", in, err)
		}
	}
}

func TestRoundTrip_Number(t *testing.T) {
	t.Parallel()
	for _, in := range []Location{InPath, InQuery, InBody} {
		prop := func(x float64) bool {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return true
			}
			got := roundTrip(t, Field{Name: "x", In: in, Type: TypeNumber}, strconv.FormatFloat(x, 'g', -1, 64), x)
			return got == x
		}
		if err := quick.Check(prop, nil); err != nil {
			t.Errorf("%s: %v", in, err)
		}
	}
}

func TestRoundTrip_Boolean(t *testing.T) {
	t.Parallel()
	for _, in := range []Location{InPath, InQuery, InBody} {
		for _, b := range []bool{true, false} {
			got := roundTrip(t, Field{Name: "b", In: in, Type: TypeBoolean}, strconv.FormatBool(b), b)
			if got != b {
				t.Errorf("%s: got %v, want %v", in, got, b)
			}
		}
	}
}

func TestRoundTrip_String(t *testing.T) {
	t.Parallel()
	for _, in := range []Location{InQuery, InBody} {
		prop := func(s string) bool {
			if s == "" {
				return true
			}
			return roundTrip(t, Field{Name: "s", In: in, Type: TypeString}, s, s) == s
		}
		if err := quick.Check(prop, nil); err != nil {
			t.Errorf("%s: %v", in, err)
		}
	}
}

func TestRoundTrip_Array(t *testing.T) {
	t.Parallel()
	prop := func(ns []int64) bool {
		if len(ns) == 0 {
			return true
		}
		want := make([]any, len(ns))
		text := make([]string, len(ns))
		for i, n := range ns {
			want[i] = n
			text[i] = strconv.FormatInt(n, 10)
		}
		for _, in := range []Location{InQuery, InBody} {
			got := roundTrip(t, Field{Name: "a", In: in, Type: TypeArray, Items: TypeInteger}, strings.Join(text, ","), ns)
			if !cmp.Equal(want, got) {
				return false
			}
		}
		return true
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Error(err)
	}
}

func TestRoundTrip_Object(t *testing.T) {
	t.Parallel()
	obj := map[string]any{
		"name":   "car",
		"count":  int64(3),
		"score":  0.75,
		"flags":  []any{true, false},
		"nested": map[string]any{"k": "v"},
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		t.Fatal(err)
	}
	for _, in := range []Location{InQuery, InBody} {
		got := roundTrip(t, Field{Name: "o", In: in, Type: TypeObject}, string(raw), obj)
		if diff := cmp.Diff(obj, got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", in, diff)
		}
	}
}
