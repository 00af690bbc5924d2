// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package params

// Parse extracts every field of s that applies to req.Method. Fields are
// visited in declaration order, "all" fields first. The first field that is
// missing or fails its type check aborts the parse and no values are
// returned. Absent optional fields resolve to their default, or nil.
func Parse(s Schema, req *Request) (Values, error) {
	fields := s.Fields(req.Method)
	values := make(Values, len(fields))

	for _, f := range fields {
		v, err := parseField(f, req)
		if err != nil {
			return nil, err
		}
		values[f.Name] = v
	}
	return values, nil
}

func parseField(f Field, req *Request) (any, error) {
	raw, text, ok := req.lookup(f)
	if !ok {
		if f.Required {
			return nil, missing(f, req.Path)
		}
		return cloneValue(f.Default), nil
	}

	var (
		v   any
		err error
	)
	if text != nil {
		v, err = coerceText(f, text)
	} else {
		v, err = checkValue(f, raw)
	}
	if err != nil {
		return nil, invalid(f, req.Path, err)
	}
	if err := checkConstraints(f, v); err != nil {
		return nil, invalid(f, req.Path, err)
	}
	return v, nil
}
