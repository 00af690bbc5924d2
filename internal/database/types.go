// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tator-io/tator/internal/models"
	"github.com/tator-io/tator/internal/store"
)

// Versions.

const versionColumns = `id, project, name, description, number, show_empty, created_by, created_at`

func scanVersion(row interface{ Scan(...any) error }) (*models.Version, error) {
	var v models.Version
	err := row.Scan(&v.ID, &v.Project, &v.Name, &v.Description, &v.Number, &v.ShowEmpty, &v.CreatedBy, &v.CreatedAt)
	return &v, err
}

func (db *DB) CreateVersion(ctx context.Context, v *models.Version) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()
	return db.createVersionLocked(ctx, v)
}

func (db *DB) createVersionLocked(ctx context.Context, v *models.Version) error {
	if err := mustExist(ctx, db.conn, "projects", "project", v.Project); err != nil {
		return err
	}
	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM versions WHERE project = ? AND number = ?`,
		v.Project, v.Number).Scan(&n); err != nil {
		return fmt.Errorf("failed to check version number: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("version number %d: %w", v.Number, store.ErrConflict)
	}
	id, err := nextID(ctx, db.conn)
	if err != nil {
		return err
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	_, err = db.conn.ExecContext(ctx, `INSERT INTO versions (`+versionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, v.Project, v.Name, v.Description, v.Number, v.ShowEmpty, v.CreatedBy, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert version: %w", err)
	}
	v.ID = id
	return nil
}

func (db *DB) GetVersion(ctx context.Context, id int64) (*models.Version, error) {
	v, err := scanVersion(db.conn.QueryRowContext(ctx, `SELECT `+versionColumns+` FROM versions WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "version", id)
	}
	return v, nil
}

func (db *DB) ListVersions(ctx context.Context, project int64) ([]models.Version, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+versionColumns+` FROM versions WHERE project = ? ORDER BY number, id`, project)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer closeRows(rows)

	var out []models.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (db *DB) BaselineVersion(ctx context.Context, project, createdBy int64) (*models.Version, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	v, err := scanVersion(db.conn.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM versions WHERE project = ? AND number = 0`, project))
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to load baseline version: %w", err)
	}
	v = &models.Version{Project: project, Name: models.BaselineVersionName, Number: 0, ShowEmpty: true, CreatedBy: createdBy}
	if err := db.createVersionLocked(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Entity types.

const entityTypeColumns = `id, project, kind, name, description, dtype, association, interpolation, media_types, colors, line_width, visible`

func scanEntityType(row interface{ Scan(...any) error }) (*models.EntityType, error) {
	var t models.EntityType
	var kind, assoc, interp string
	var mediaTypes, colors sql.NullString
	if err := row.Scan(&t.ID, &t.Project, &kind, &t.Name, &t.Description, &t.Dtype, &assoc, &interp,
		&mediaTypes, &colors, &t.LineWidth, &t.Visible); err != nil {
		return nil, err
	}
	t.Kind = models.EntityKind(kind)
	t.Association = models.Association(assoc)
	t.Interpolation = models.Interpolation(interp)
	if err := decodeInto(mediaTypes, &t.MediaTypes); err != nil {
		return nil, err
	}
	if err := decodeInto(colors, &t.Colors); err != nil {
		return nil, err
	}
	if len(t.MediaTypes) == 0 {
		t.MediaTypes = nil
	}
	if len(t.Colors) == 0 {
		t.Colors = nil
	}
	return &t, nil
}

func (db *DB) CreateEntityType(ctx context.Context, t *models.EntityType) error {
	if err := mustExist(ctx, db.conn, "projects", "project", t.Project); err != nil {
		return err
	}
	mediaTypes, err := encodeJSON(nonNil(t.MediaTypes))
	if err != nil {
		return err
	}
	colors, err := encodeJSON(nonNilMap(t.Colors))
	if err != nil {
		return err
	}
	id, err := nextID(ctx, db.conn)
	if err != nil {
		return err
	}
	_, err = db.conn.ExecContext(ctx, `INSERT INTO entity_types (`+entityTypeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, t.Project, string(t.Kind), t.Name, t.Description, t.Dtype, string(t.Association), string(t.Interpolation),
		mediaTypes, colors, t.LineWidth, t.Visible)
	if err != nil {
		return fmt.Errorf("failed to insert entity type: %w", err)
	}
	t.ID = id
	return nil
}

func nonNil(s []int64) []int64 {
	if s == nil {
		return []int64{}
	}
	return s
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func (db *DB) GetEntityType(ctx context.Context, id int64) (*models.EntityType, error) {
	t, err := scanEntityType(db.conn.QueryRowContext(ctx, `SELECT `+entityTypeColumns+` FROM entity_types WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "entity type", id)
	}
	return t, nil
}

func (db *DB) ListEntityTypes(ctx context.Context, project int64, kind models.EntityKind) ([]models.EntityType, error) {
	q := `SELECT ` + entityTypeColumns + ` FROM entity_types WHERE project = ?`
	args := []any{project}
	if kind != "" {
		q += ` AND kind = ?`
		args = append(args, string(kind))
	}
	rows, err := db.conn.QueryContext(ctx, q+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entity types: %w", err)
	}
	defer closeRows(rows)

	var out []models.EntityType
	for rows.Next() {
		t, err := scanEntityType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity type: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// Attribute types.

const attributeTypeColumns = `id, project, applies_to, name, description, dtype, ord, default_value,
	lower_bound, upper_bound, choices, labels, autocomplete, use_current`

func scanAttributeType(row interface{ Scan(...any) error }) (*models.AttributeType, error) {
	var a models.AttributeType
	var dtype string
	var def, lo, hi, choices, labels, autocomplete sql.NullString
	if err := row.Scan(&a.ID, &a.Project, &a.AppliesTo, &a.Name, &a.Description, &dtype, &a.Order,
		&def, &lo, &hi, &choices, &labels, &autocomplete, &a.UseCurrent); err != nil {
		return nil, err
	}
	a.Dtype = models.Dtype(dtype)
	var err error
	if a.Default, err = restoreTyped(a.Dtype, def); err != nil {
		return nil, err
	}
	if a.LowerBound, err = restoreTyped(a.Dtype, lo); err != nil {
		return nil, err
	}
	if a.UpperBound, err = restoreTyped(a.Dtype, hi); err != nil {
		return nil, err
	}
	if err := decodeInto(choices, &a.Choices); err != nil {
		return nil, err
	}
	if err := decodeInto(labels, &a.Labels); err != nil {
		return nil, err
	}
	if autocomplete.Valid {
		a.Autocomplete = &models.Autocomplete{}
		if err := decodeInto(autocomplete, a.Autocomplete); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

func (db *DB) attrNameTaken(ctx context.Context, appliesTo, exceptID int64, name string) (bool, error) {
	var n int64
	err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM attribute_types WHERE applies_to = ? AND name = ? AND id <> ?`,
		appliesTo, name, exceptID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check attribute name: %w", err)
	}
	return n > 0, nil
}

func (db *DB) CreateAttributeType(ctx context.Context, a *models.AttributeType) error {
	defer observe("create_attribute_type", time.Now())
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	var project int64
	if err := db.conn.QueryRowContext(ctx, `SELECT project FROM entity_types WHERE id = ?`, a.AppliesTo).Scan(&project); err != nil {
		return notFound(err, "entity type", a.AppliesTo)
	}
	taken, err := db.attrNameTaken(ctx, a.AppliesTo, 0, a.Name)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("attribute %q: %w", a.Name, store.ErrConflict)
	}

	cols := make([]sql.NullString, 0, 6)
	for _, v := range []any{a.Default, a.LowerBound, a.UpperBound} {
		c, err := encodeNullable(v)
		if err != nil {
			return err
		}
		cols = append(cols, c)
	}
	var choices, labels, autocomplete any
	if a.Choices != nil {
		choices = a.Choices
	}
	if a.Labels != nil {
		labels = a.Labels
	}
	if a.Autocomplete != nil {
		autocomplete = a.Autocomplete
	}
	for _, v := range []any{choices, labels, autocomplete} {
		c, err := encodeNullable(v)
		if err != nil {
			return err
		}
		cols = append(cols, c)
	}

	id, err := nextID(ctx, db.conn)
	if err != nil {
		return err
	}
	_, err = db.conn.ExecContext(ctx, `INSERT INTO attribute_types (`+attributeTypeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, project, a.AppliesTo, a.Name, a.Description, string(a.Dtype), a.Order,
		cols[0], cols[1], cols[2], cols[3], cols[4], cols[5], a.UseCurrent)
	if err != nil {
		return fmt.Errorf("failed to insert attribute type: %w", err)
	}
	a.ID = id
	a.Project = project
	return nil
}

func (db *DB) GetAttributeType(ctx context.Context, id int64) (*models.AttributeType, error) {
	a, err := scanAttributeType(db.conn.QueryRowContext(ctx, `SELECT `+attributeTypeColumns+` FROM attribute_types WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "attribute type", id)
	}
	return a, nil
}

func (db *DB) ListAttributeTypes(ctx context.Context, project int64, appliesTo *int64) ([]models.AttributeType, error) {
	q := `SELECT ` + attributeTypeColumns + ` FROM attribute_types WHERE project = ?`
	args := []any{project}
	if appliesTo != nil {
		q += ` AND applies_to = ?`
		args = append(args, *appliesTo)
	}
	rows, err := db.conn.QueryContext(ctx, q+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attribute types: %w", err)
	}
	defer closeRows(rows)

	var out []models.AttributeType
	for rows.Next() {
		a, err := scanAttributeType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attribute type: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (db *DB) UpdateAttributeType(ctx context.Context, a *models.AttributeType) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	existing, err := db.GetAttributeType(ctx, a.ID)
	if err != nil {
		return err
	}
	taken, err := db.attrNameTaken(ctx, existing.AppliesTo, a.ID, a.Name)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("attribute %q: %w", a.Name, store.ErrConflict)
	}
	res, err := db.conn.ExecContext(ctx, `UPDATE attribute_types SET name = ?, description = ? WHERE id = ?`,
		a.Name, a.Description, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update attribute type: %w", err)
	}
	return requireRow(res, "attribute type", a.ID)
}

func (db *DB) DeleteAttributeType(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM attribute_types WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attribute type: %w", err)
	}
	return requireRow(res, "attribute type", id)
}
