// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

// Package params turns declared request parameters into typed values.
//
// Each endpoint declares a Schema: fields that apply to every method plus
// fields for individual methods. A Field names where the value lives (path,
// query or body), whether it is required, its type, and an optional default.
//
//	var stateList = params.MustSchema(
//	    []params.Field{
//	        {Name: "project", In: params.InPath, Required: true, Type: params.TypeInteger},
//	    },
//	    map[string][]params.Field{
//	        http.MethodGet: {
//	            {Name: "media_id", In: params.InQuery, Type: params.TypeArray, Items: params.TypeInteger},
//	            {Name: "modified", In: params.InQuery, Type: params.TypeBoolean, Default: false},
//	        },
//	    },
//	)
//
//	req, err := params.FromHTTP(r, map[string]string{"project": chi.URLParam(r, "project")})
//	values, err := params.Parse(stateList, req)
//
// Parse is fail-fast: the first missing required field or invalid value
// returns a *FieldError naming the field, its location and the request path.
//
// # Coercion
//
// Path and query parameters are text and are converted to the declared type.
// Arrays come from repeated keys or a single comma separated value; objects
// from a JSON text value. Body parameters are already typed and are checked
// strictly, except that a number field accepts a numeric string.
package params
