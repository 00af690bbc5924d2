// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

/*
Package attribute implements user defined attributes on media,
localizations and states.

Every entity type declares a list of attribute types. Each attribute type
has a dtype:

	bool      true/false, or the strings "true" and "false"
	int       integral numbers or integer text, inclusive bounds
	float     numbers or numeric text, inclusive bounds
	enum      one of the declared choices
	str       free text
	datetime  RFC 3339, stored normalized to UTC
	geopos    [longitude, latitude]

Convert checks a single value and ValidateType checks a definition. A
Schema groups the attribute types of one entity type and validates whole
attribute maps on create and patch.

List endpoints filter entities with Query, parsed from the attribute_*
query parameters and the search expression:

	q, err := attribute.ParseQuery(values)
	if q.Match(loc.Attributes) { ... }

The search expression is compiled with github.com/expr-lang/expr; names
that are not valid identifiers are reachable as $env["My Attribute"].
*/
package attribute
