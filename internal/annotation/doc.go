// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

/*
Package annotation implements the rules that sit between the REST handlers
and the store: media, localizations, states, entity types and attribute
types.

Handlers parse request parameters with package params and hand plain Go
values to a Service. The Service checks that referenced media, types and
versions exist in the project, converts attribute values with package
attribute, enforces the association rules of state types and publishes an
events.Change for every mutation.

Bulk creation is all or nothing. An item error is reported with its index,
for example "many[3]: frame 900 is beyond the last frame".

Errors wrapping ErrInvalid or attribute.ErrInvalid are client errors.
store.ErrNotFound means a referenced object does not exist.
*/
package annotation
