// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package params

import (
	"errors"
	"fmt"
)

// ErrMalformedBody is returned by FromHTTP when the body is not valid JSON.
var ErrMalformedBody = errors.New("request body is not valid JSON")

// Reason classifies a FieldError.
type Reason string

const (
	ReasonMissing Reason = "missing"
	ReasonInvalid Reason = "invalid"
)

// FieldError reports the first field that failed to parse.
type FieldError struct {
	Field    string
	In       Location
	Path     string
	Reason   Reason
	Expected Type
	Detail   string
}

func (e *FieldError) Error() string {
	if e.Reason == ReasonMissing {
		return fmt.Sprintf("Missing required field %q in request %s for %s!", e.Field, e.In, e.Path)
	}
	return fmt.Sprintf("Invalid value for field %q in request %s for %s!", e.Field, e.In, e.Path)
}

// Details returns the structured form used in API error responses.
func (e *FieldError) Details() map[string]interface{} {
	d := map[string]interface{}{
		"field":    e.Field,
		"in":       string(e.In),
		"reason":   string(e.Reason),
		"expected": string(e.Expected),
	}
	if e.Detail != "" {
		d["detail"] = e.Detail
	}
	return d
}

// AsFieldError unwraps err to a *FieldError.
func AsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

func missing(f Field, path string) *FieldError {
	return &FieldError{Field: f.Name, In: f.In, Path: path, Reason: ReasonMissing, Expected: f.Type}
}

func invalid(f Field, path string, cause error) *FieldError {
	fe := &FieldError{Field: f.Name, In: f.In, Path: path, Reason: ReasonInvalid, Expected: f.Type}
	if cause != nil {
		fe.Detail = cause.Error()
	}
	return fe
}
