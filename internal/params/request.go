// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package params

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Request is an already materialized request. Body is the decoded JSON
// payload: nil, map[string]any or []any, with numbers as int64 or float64.
type Request struct {
	Method     string
	Path       string
	PathParams map[string]string
	Query      url.Values
	Body       any
}

// FromHTTP reads r into a Request. The body is consumed; callers that need a
// size limit should wrap r.Body with http.MaxBytesReader first.
func FromHTTP(r *http.Request, pathParams map[string]string) (*Request, error) {
	req := &Request{
		Method:     r.Method,
		Path:       r.URL.Path,
		PathParams: pathParams,
		Query:      r.URL.Query(),
	}

	if r.Body == nil || r.Body == http.NoBody {
		return req, nil
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return req, nil
	}

	body, err := decodeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	switch body.(type) {
	case map[string]any, []any, nil:
		req.Body = body
	default:
		return nil, fmt.Errorf("%w: top level must be an object or array", ErrMalformedBody)
	}
	return req, nil
}

// lookup returns the raw value of f and whether it was supplied.
func (r *Request) lookup(f Field) (raw any, text []string, ok bool) {
	switch f.In {
	case InPath:
		v, found := r.PathParams[f.Name]
		if !found || v == "" {
			return nil, nil, false
		}
		return nil, []string{v}, true
	case InQuery:
		vals := r.Query[f.Name]
		if len(vals) == 0 {
			return nil, nil, false
		}
		// An empty value only counts as supplied for strings.
		if f.Type != TypeString && len(vals) == 1 && vals[0] == "" {
			return nil, nil, false
		}
		return nil, vals, true
	case InBody:
		switch b := r.Body.(type) {
		case map[string]any:
			v, found := b[f.Name]
			if !found || v == nil {
				return nil, nil, false
			}
			return v, nil, true
		case []any:
			if f.Name == BodyName {
				return b, nil, true
			}
		}
	}
	return nil, nil, false
}
