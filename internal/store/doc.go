// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

// Package store defines the persistence interfaces of the annotation
// server and an in-memory implementation. The DuckDB implementation lives
// in package database.
//
// Stores own the structural queries: project, media, type, version and
// modified filters. Attribute filtering, search, pagination and ordering
// other than by ID are done by the annotation service.
package store
