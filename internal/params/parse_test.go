// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package params

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var stateSchema = MustSchema(
	[]Field{
		{Name: "project", In: InPath, Required: true, Type: TypeInteger},
	},
	map[string][]Field{
		http.MethodGet: {
			{Name: "media_id", In: InQuery, Type: TypeArray, Items: TypeInteger},
			{Name: "type", In: InQuery, Type: TypeInteger},
			{Name: "modified", In: InQuery, Type: TypeBoolean, Default: false},
			{Name: "operation", In: InQuery, Type: TypeString, Enum: []any{"count"}},
		},
		http.MethodPost: {
			{Name: "media_ids", In: InBody, Required: true, Type: TypeArray, Items: TypeInteger},
			{Name: "type", In: InBody, Required: true, Type: TypeInteger},
			{Name: "frame", In: InBody, Type: TypeInteger, Minimum: Bound(0)},
			{Name: "attributes", In: InBody, Type: TypeObject, Default: map[string]any{}},
			{Name: "confidence", In: InBody, Type: TypeNumber, Default: 1},
		},
	},
)

func newRequest(t *testing.T, method, target, body string, path map[string]string) *Request {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req, err := FromHTTP(r, path)
	if err != nil {
		t.Fatalf("FromHTTP() error = %v", err)
	}
	return req
}

func TestParse_Get(t *testing.T) {
	t.Parallel()

	req := newRequest(t, http.MethodGet, "/rest/States/1?media_id=3,4&type=7", "", map[string]string{"project": "1"})
	got, err := Parse(stateSchema, req)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := Values{
		"project":   int64(1),
		"media_id":  []any{int64(3), int64(4)},
		"type":      int64(7),
		"modified":  false,
		"operation": nil,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_RepeatedQueryKeys(t *testing.T) {
	t.Parallel()

	req := newRequest(t, http.MethodGet, "/rest/States/1?media_id=3&media_id=9", "", map[string]string{"project": "1"})
	got, err := Parse(stateSchema, req)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if diff := cmp.Diff([]int64{3, 9}, got.Ints("media_id")); diff != "" {
		t.Errorf("media_id mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_PostDefaults(t *testing.T) {
	t.Parallel()

	req := newRequest(t, http.MethodPost, "/rest/States/1", `{"media_ids":[5],"type":2}`, map[string]string{"project": "1"})
	got, err := Parse(stateSchema, req)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := Values{
		"project":    int64(1),
		"media_ids":  []any{int64(5)},
		"type":       int64(2),
		"frame":      nil,
		"attributes": map[string]any{},
		"confidence": float64(1),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}

	// Defaults must not be shared between parses.
	got.Object("attributes")["x"] = int64(1)
	again, err := Parse(stateSchema, req)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(again.Object("attributes")) != 0 {
		t.Error("default object was mutated through a previous result")
	}
}

func TestParse_NumberAcceptsNumericString(t *testing.T) {
	t.Parallel()

	req := newRequest(t, http.MethodPost, "/rest/States/1", `{"media_ids":[5],"type":2,"confidence":"0.25"}`, map[string]string{"project": "1"})
	got, err := Parse(stateSchema, req)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Float("confidence") != 0.25 {
		t.Errorf("confidence = %v, want 0.25", got["confidence"])
	}
}

func TestParse_MissingRequired(t *testing.T) {
	t.Parallel()

	schema := MustSchema(nil, map[string][]Field{
		http.MethodPost: {
			{Name: "project", In: InPath, Required: true, Type: TypeInteger},
			{Name: "query", In: InQuery, Required: true, Type: TypeString},
			{Name: "name", In: InBody, Required: true, Type: TypeString},
		},
	})

	tests := []struct {
		name    string
		target  string
		body    string
		path    map[string]string
		field   string
		in      Location
		message string
	}{
		{
			name:    "path",
			target:  "/rest/Leaves/Suggestion",
			body:    `{"name":"a"}`,
			path:    map[string]string{},
			field:   "project",
			in:      InPath,
			message: `Missing required field "project" in request path for /rest/Leaves/Suggestion!`,
		},
		{
			name:    "query",
			target:  "/rest/Leaves/Suggestion",
			body:    `{"name":"a"}`,
			path:    map[string]string{"project": "1"},
			field:   "query",
			in:      InQuery,
			message: `Missing required field "query" in request query for /rest/Leaves/Suggestion!`,
		},
		{
			name:    "body",
			target:  "/rest/Leaves/Suggestion?query=x",
			body:    `{"other":1}`,
			path:    map[string]string{"project": "1"},
			field:   "name",
			in:      InBody,
			message: `Missing required field "name" in request body for /rest/Leaves/Suggestion!`,
		},
		{
			name:    "body null counts as missing",
			target:  "/rest/Leaves/Suggestion?query=x",
			body:    `{"name":null}`,
			path:    map[string]string{"project": "1"},
			field:   "name",
			in:      InBody,
			message: `Missing required field "name" in request body for /rest/Leaves/Suggestion!`,
		},
		{
			name:    "empty body",
			target:  "/rest/Leaves/Suggestion?query=x",
			path:    map[string]string{"project": "1"},
			field:   "name",
			in:      InBody,
			message: `Missing required field "name" in request body for /rest/Leaves/Suggestion!`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := newRequest(t, http.MethodPost, tt.target, tt.body, tt.path)
			values, err := Parse(schema, req)
			if values != nil {
				t.Errorf("Parse() returned partial values %v", values)
			}
			fe, ok := AsFieldError(err)
			if !ok {
				t.Fatalf("Parse() error = %v, want *FieldError", err)
			}
			if fe.Field != tt.field || fe.In != tt.in || fe.Reason != ReasonMissing {
				t.Errorf("FieldError = %+v, want field %q in %s missing", fe, tt.field, tt.in)
			}
			if fe.Path != "/rest/Leaves/Suggestion" {
				t.Errorf("Path = %q", fe.Path)
			}
			if fe.Error() != tt.message {
				t.Errorf("Error() = %q, want %q", fe.Error(), tt.message)
			}
		})
	}
}

func TestParse_RequiredIgnoresDefault(t *testing.T) {
	t.Parallel()

	schema := MustSchema([]Field{
		{Name: "version", In: InQuery, Required: true, Type: TypeInteger, Default: 0},
	}, nil)
	req := newRequest(t, http.MethodGet, "/x", "", nil)
	if _, err := Parse(schema, req); err == nil {
		t.Fatal("Parse() should fail for an absent required field even with a default")
	}
}

func TestParse_InvalidTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field Field
		query string
		body  string
	}{
		{"query int text", Field{Name: "v", In: InQuery, Type: TypeInteger}, "v=abc", ""},
		{"query int float text", Field{Name: "v", In: InQuery, Type: TypeInteger}, "v=1.5", ""},
		{"query bool text", Field{Name: "v", In: InQuery, Type: TypeBoolean}, "v=maybe", ""},
		{"query number text", Field{Name: "v", In: InQuery, Type: TypeNumber}, "v=NaN", ""},
		{"query array item", Field{Name: "v", In: InQuery, Type: TypeArray, Items: TypeInteger}, "v=1,x", ""},
		{"query object text", Field{Name: "v", In: InQuery, Type: TypeObject}, "v=%5B1%5D", ""},
		{"body bool as string", Field{Name: "v", In: InBody, Type: TypeBoolean}, "", `{"v":"true"}`},
		{"body int as float", Field{Name: "v", In: InBody, Type: TypeInteger}, "", `{"v":1.0}`},
		{"body int as string", Field{Name: "v", In: InBody, Type: TypeInteger}, "", `{"v":"1"}`},
		{"body number as bool", Field{Name: "v", In: InBody, Type: TypeNumber}, "", `{"v":true}`},
		{"body string as number", Field{Name: "v", In: InBody, Type: TypeString}, "", `{"v":3}`},
		{"body array as object", Field{Name: "v", In: InBody, Type: TypeArray}, "", `{"v":{}}`},
		{"body object as array", Field{Name: "v", In: InBody, Type: TypeObject}, "", `{"v":[]}`},
		{"body array item", Field{Name: "v", In: InBody, Type: TypeArray, Items: TypeString}, "", `{"v":["a",2]}`},
		{"enum", Field{Name: "v", In: InQuery, Type: TypeString, Enum: []any{"a", "b"}}, "v=c", ""},
		{"minimum", Field{Name: "v", In: InQuery, Type: TypeInteger, Minimum: Bound(0)}, "v=-1", ""},
		{"maximum", Field{Name: "v", In: InBody, Type: TypeNumber, Maximum: Bound(1)}, "", `{"v":1.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			schema := MustSchema([]Field{tt.field}, nil)
			method := http.MethodGet
			if tt.body != "" {
				method = http.MethodPost
			}
			req := newRequest(t, method, "/x?"+tt.query, tt.body, nil)
			_, err := Parse(schema, req)
			fe, ok := AsFieldError(err)
			if !ok {
				t.Fatalf("Parse() error = %v, want *FieldError", err)
			}
			if fe.Reason != ReasonInvalid {
				t.Errorf("Reason = %s, want invalid", fe.Reason)
			}
			want := `Invalid value for field "v" in request ` + string(tt.field.In) + ` for /x!`
			if fe.Error() != want {
				t.Errorf("Error() = %q, want %q", fe.Error(), want)
			}
			if fe.Detail == "" {
				t.Error("Detail should explain the failure")
			}
		})
	}
}

func TestParse_FailFastOrder(t *testing.T) {
	t.Parallel()

	// Both fields are wrong; the "all" field is reported.
	schema := MustSchema(
		[]Field{{Name: "first", In: InQuery, Required: true, Type: TypeInteger}},
		map[string][]Field{http.MethodGet: {{Name: "second", In: InQuery, Required: true, Type: TypeInteger}}},
	)
	req := newRequest(t, http.MethodGet, "/x?second=bad", "", nil)
	_, err := Parse(schema, req)
	fe, ok := AsFieldError(err)
	if !ok || fe.Field != "first" {
		t.Fatalf("Parse() error = %v, want failure on first", err)
	}
}

func TestParse_MethodSpecificFieldsOnly(t *testing.T) {
	t.Parallel()

	req := newRequest(t, http.MethodDelete, "/rest/States/1", "", map[string]string{"project": "1"})
	got, err := Parse(stateSchema, req)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if diff := cmp.Diff(Values{"project": int64(1)}, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_ArrayBody(t *testing.T) {
	t.Parallel()

	schema := MustSchema(nil, map[string][]Field{
		http.MethodPost: {{Name: BodyName, In: InBody, Required: true, Type: TypeArray, Items: TypeObject}},
	})
	req := newRequest(t, http.MethodPost, "/x", `[{"x":0.5},{"x":1}]`, nil)
	got, err := Parse(schema, req)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []any{map[string]any{"x": 0.5}, map[string]any{"x": int64(1)}}
	if diff := cmp.Diff(want, got.Array(BodyName)); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_EmptyQueryValue(t *testing.T) {
	t.Parallel()

	schema := MustSchema([]Field{
		{Name: "n", In: InQuery, Type: TypeInteger, Default: 5},
		{Name: "s", In: InQuery, Type: TypeString, Default: "d"},
	}, nil)
	req := newRequest(t, http.MethodGet, "/x?n=&s=", "", nil)
	got, err := Parse(schema, req)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Int("n") != 5 {
		t.Errorf("n = %v, want default 5", got["n"])
	}
	if !got.Has("s") || got.String("s") != "" {
		t.Errorf("s = %v, want empty string", got["s"])
	}
}

func TestFromHTTP_MalformedBody(t *testing.T) {
	t.Parallel()

	for _, body := range []string{
		`{"a":`,
		`"text"`,
		`12`,
		`{"name":"a"} {"name":"b"}`,
		`{"name":"a"} garbage`,
		`[1,2] ]`,
	} {
		r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
		if _, err := FromHTTP(r, nil); !errors.Is(err, ErrMalformedBody) {
			t.Errorf("FromHTTP(%q) error = %v, want ErrMalformedBody", body, err)
		}
	}
}

func TestFromHTTP_TrailingWhitespace(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("{\"name\":\"a\"}\n\t "))
	req, err := FromHTTP(r, nil)
	if err != nil {
		t.Fatalf("FromHTTP() error = %v", err)
	}
	if diff := cmp.Diff(map[string]any{"name": "a"}, req.Body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_QueryObjectTrailingData(t *testing.T) {
	t.Parallel()

	s := MustSchema([]Field{{Name: "filter", In: InQuery, Type: TypeObject}}, nil)
	req := &Request{Method: http.MethodGet, Path: "/x", Query: url.Values{"filter": {`{"a":1}{"b":2}`}}}
	_, err := Parse(s, req)
	fe, ok := AsFieldError(err)
	if !ok || fe.Field != "filter" {
		t.Fatalf("Parse() error = %v, want a field error on filter", err)
	}
}

func TestFromHTTP_Fields(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPatch, "/rest/State/3?a=1&a=2", strings.NewReader(` `))
	req, err := FromHTTP(r, map[string]string{"id": "3"})
	if err != nil {
		t.Fatalf("FromHTTP() error = %v", err)
	}
	if req.Method != http.MethodPatch || req.Path != "/rest/State/3" || req.Body != nil {
		t.Errorf("unexpected request %+v", req)
	}
	if diff := cmp.Diff(url.Values{"a": {"1", "2"}}, req.Query); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
}
