// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

// Package validation wraps go-playground/validator with a shared instance,
// Tator specific rules and readable messages.
//
// Struct validation runs after request parameters have been parsed by the
// params package. It covers rules that span fields, such as a box needing
// both width and height:
//
//	type boxInput struct {
//	    X      *float64 `param:"x" validate:"required,normalized"`
//	    Width  *float64 `param:"width" validate:"required_with=X,omitempty,normalized"`
//	}
//
// Custom tags:
//   - normalized: a number in [0, 1]
//   - hexcolor_or_empty: "" or a #rrggbb color
package validation
