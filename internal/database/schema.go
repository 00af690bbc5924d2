// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

/*
schema.go - Annotation store schema

Every table draws ids from the single sequence tator_id_seq, so media,
localization and state types never collide and an attribute type's
applies_to column is unambiguous.

Uniqueness (usernames, attribute names per type, version numbers and leaf
paths per project) is enforced by the store under writeMu rather than by UNIQUE
indexes, which DuckDB rejects on delete-then-insert within a transaction.

JSON valued columns (attributes, colors, choices, defaults and bounds) are
VARCHAR holding JSON text.
*/

package database

import (
	"context"
	"fmt"
	"time"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, q := range tableQueries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	for _, q := range indexQueries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

var tableQueries = []string{
	`CREATE SEQUENCE IF NOT EXISTS tator_id_seq START 1`,

	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY,
		username VARCHAR NOT NULL,
		first_name VARCHAR NOT NULL DEFAULT '',
		last_name VARCHAR NOT NULL DEFAULT '',
		email VARCHAR NOT NULL DEFAULT '',
		password_hash VARCHAR NOT NULL DEFAULT '',
		is_superuser BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id BIGINT PRIMARY KEY,
		name VARCHAR NOT NULL,
		summary VARCHAR NOT NULL DEFAULT '',
		created_by BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS memberships (
		project BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		permission INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS versions (
		id BIGINT PRIMARY KEY,
		project BIGINT NOT NULL,
		name VARCHAR NOT NULL,
		description VARCHAR NOT NULL DEFAULT '',
		number BIGINT NOT NULL,
		show_empty BOOLEAN NOT NULL DEFAULT true,
		created_by BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS entity_types (
		id BIGINT PRIMARY KEY,
		project BIGINT NOT NULL,
		kind VARCHAR NOT NULL,
		name VARCHAR NOT NULL,
		description VARCHAR NOT NULL DEFAULT '',
		dtype VARCHAR NOT NULL DEFAULT '',
		association VARCHAR NOT NULL DEFAULT '',
		interpolation VARCHAR NOT NULL DEFAULT '',
		media_types VARCHAR NOT NULL DEFAULT '[]',
		colors VARCHAR NOT NULL DEFAULT '{}',
		line_width INTEGER NOT NULL DEFAULT 0,
		visible BOOLEAN NOT NULL DEFAULT true
	)`,

	`CREATE TABLE IF NOT EXISTS attribute_types (
		id BIGINT PRIMARY KEY,
		project BIGINT NOT NULL,
		applies_to BIGINT NOT NULL,
		name VARCHAR NOT NULL,
		description VARCHAR NOT NULL DEFAULT '',
		dtype VARCHAR NOT NULL,
		ord INTEGER NOT NULL DEFAULT 0,
		default_value VARCHAR,
		lower_bound VARCHAR,
		upper_bound VARCHAR,
		choices VARCHAR,
		labels VARCHAR,
		autocomplete VARCHAR,
		use_current BOOLEAN NOT NULL DEFAULT false
	)`,

	`CREATE TABLE IF NOT EXISTS media (
		id BIGINT PRIMARY KEY,
		project BIGINT NOT NULL,
		type BIGINT NOT NULL,
		name VARCHAR NOT NULL,
		md5 VARCHAR NOT NULL DEFAULT '',
		section VARCHAR NOT NULL DEFAULT '',
		num_frames BIGINT NOT NULL DEFAULT 0,
		fps DOUBLE NOT NULL DEFAULT 0,
		width BIGINT NOT NULL DEFAULT 0,
		height BIGINT NOT NULL DEFAULT 0,
		attributes VARCHAR NOT NULL DEFAULT '{}',
		created_by BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		modified_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS localizations (
		id BIGINT PRIMARY KEY,
		project BIGINT NOT NULL,
		type BIGINT NOT NULL,
		media BIGINT NOT NULL,
		version BIGINT NOT NULL,
		frame BIGINT NOT NULL DEFAULT 0,
		x DOUBLE,
		y DOUBLE,
		width DOUBLE,
		height DOUBLE,
		x0 DOUBLE,
		y0 DOUBLE,
		x1 DOUBLE,
		y1 DOUBLE,
		modified BOOLEAN NOT NULL DEFAULT false,
		attributes VARCHAR NOT NULL DEFAULT '{}',
		created_by BIGINT NOT NULL DEFAULT 0,
		modified_by BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		modified_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS states (
		id BIGINT PRIMARY KEY,
		project BIGINT NOT NULL,
		type BIGINT NOT NULL,
		version BIGINT NOT NULL,
		frame BIGINT,
		modified BOOLEAN NOT NULL DEFAULT false,
		attributes VARCHAR NOT NULL DEFAULT '{}',
		created_by BIGINT NOT NULL DEFAULT 0,
		modified_by BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		modified_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS state_media (
		state_id BIGINT NOT NULL,
		media_id BIGINT NOT NULL,
		position INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS state_localizations (
		state_id BIGINT NOT NULL,
		localization_id BIGINT NOT NULL,
		position INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS leaves (
		id BIGINT PRIMARY KEY,
		project BIGINT NOT NULL,
		type BIGINT NOT NULL,
		name VARCHAR NOT NULL,
		parent BIGINT,
		path VARCHAR NOT NULL,
		attributes VARCHAR NOT NULL DEFAULT '{}',
		created_by BIGINT NOT NULL DEFAULT 0,
		modified_by BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		modified_at TIMESTAMP NOT NULL
	)`,
}

var indexQueries = []string{
	`CREATE INDEX IF NOT EXISTS idx_memberships_project ON memberships(project)`,
	`CREATE INDEX IF NOT EXISTS idx_memberships_user ON memberships(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_entity_types_project ON entity_types(project, kind)`,
	`CREATE INDEX IF NOT EXISTS idx_attribute_types_applies_to ON attribute_types(applies_to)`,
	`CREATE INDEX IF NOT EXISTS idx_media_project ON media(project)`,
	`CREATE INDEX IF NOT EXISTS idx_localizations_media ON localizations(media)`,
	`CREATE INDEX IF NOT EXISTS idx_localizations_project_type ON localizations(project, type)`,
	`CREATE INDEX IF NOT EXISTS idx_states_project_type ON states(project, type)`,
	`CREATE INDEX IF NOT EXISTS idx_state_media_media ON state_media(media_id)`,
	`CREATE INDEX IF NOT EXISTS idx_state_media_state ON state_media(state_id)`,
	`CREATE INDEX IF NOT EXISTS idx_state_localizations_state ON state_localizations(state_id)`,
	`CREATE INDEX IF NOT EXISTS idx_leaves_project_path ON leaves(project, path)`,
}
