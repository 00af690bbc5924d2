// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package params

import (
	"net/http"
	"net/url"
	"strconv"
	"testing"
)

var fuzzSchema = MustSchema([]Field{
	{Name: "i", In: InQuery, Type: TypeInteger},
	{Name: "n", In: InQuery, Type: TypeNumber},
	{Name: "b", In: InQuery, Type: TypeBoolean},
	{Name: "a", In: InQuery, Type: TypeArray, Items: TypeInteger},
	{Name: "o", In: InQuery, Type: TypeObject},
}, nil)

// FuzzParseQuery feeds arbitrary text to every query type. Parse must never
// panic and must either fail with a *FieldError or return typed values.
func FuzzParseQuery(f *testing.F) {
	f.Add("123")
	f.Add("-9223372036854775808")
	f.Add("9999999999999999999999")
	f.Add("1e10")
	f.Add("NaN")
	f.Add("true")
	f.Add("1,2,,3")
	f.Add(`{"a":[1,{"b":null}]}`)
	f.Add("")
	f.Add("\x00")
	f.Add("1; DROP TABLE main_state;--")

	f.Fuzz(func(t *testing.T, value string) {
		for _, name := range []string{"i", "n", "b", "a", "o"} {
			req := &Request{Method: http.MethodGet, Path: "/fuzz", Query: url.Values{name: {value}}}
			values, err := Parse(fuzzSchema, req)
			if err != nil {
				if _, ok := AsFieldError(err); !ok {
					t.Fatalf("Parse(%s=%q) returned %T, want *FieldError", name, value, err)
				}
				continue
			}
			v := values[name]
			if v == nil {
				continue
			}
			switch name {
			case "i":
				if _, ok := v.(int64); !ok {
					t.Fatalf("i = %T", v)
				}
				if n, err := strconv.ParseInt(value, 10, 64); err == nil && v != n {
					t.Fatalf("i = %v, want %d", v, n)
				}
			case "n":
				if _, ok := v.(float64); !ok {
					t.Fatalf("n = %T", v)
				}
			case "b":
				if _, ok := v.(bool); !ok {
					t.Fatalf("b = %T", v)
				}
			case "a":
				for _, item := range v.([]any) {
					if _, ok := item.(int64); !ok {
						t.Fatalf("a item = %T", item)
					}
				}
			case "o":
				if _, ok := v.(map[string]any); !ok {
					t.Fatalf("o = %T", v)
				}
			}
		}
	})
}

// FuzzFromHTTPBody checks that arbitrary bodies never panic the decoder.
func FuzzFromHTTPBody(f *testing.F) {
	f.Add(`{"media_ids":[1,2],"type":3}`)
	f.Add(`[{"x":0.1}]`)
	f.Add(`{"x":1e400}`)
	f.Add(`{`)
	f.Add(`null`)

	f.Fuzz(func(t *testing.T, body string) {
		v, err := decodeJSON([]byte(body))
		if err != nil {
			return
		}
		req := &Request{Method: http.MethodPost, Path: "/fuzz", Body: v}
		_, _ = Parse(stateSchema, req)
	})
}
