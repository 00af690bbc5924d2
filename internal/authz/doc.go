// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

// Package authz decides whether a user may act on a project.
//
// Each project membership maps to a casbin role in the project's domain.
// Roles are ordered by permission level (View Only, Can Edit, Can Transfer,
// Can Execute, Full Control) and a role satisfies any check at or below its
// own level. Superusers bypass all checks.
//
// Decisions can be cached for a short TTL. Grant invalidates the cached
// decisions of the affected user and Forget those of everyone.
package authz
