// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tator-io/tator/internal/database/query"
	"github.com/tator-io/tator/internal/models"
	"github.com/tator-io/tator/internal/store"
)

// Media.

const mediaColumns = `id, project, type, name, md5, section, num_frames, fps, width, height, attributes, created_by, created_at, modified_at`

func scanMedia(row interface{ Scan(...any) error }) (*models.Media, error) {
	var m models.Media
	var attrs string
	if err := row.Scan(&m.ID, &m.Project, &m.Type, &m.Name, &m.MD5, &m.Section, &m.NumFrames, &m.FPS,
		&m.Width, &m.Height, &attrs, &m.CreatedBy, &m.CreatedAt, &m.ModifiedAt); err != nil {
		return nil, err
	}
	var err error
	m.Attributes, err = decodeAttributes(attrs)
	return &m, err
}

func attrsJSON(a map[string]any) (string, error) {
	if a == nil {
		return "{}", nil
	}
	return encodeJSON(a)
}

func (db *DB) CreateMedia(ctx context.Context, m *models.Media) error {
	defer observe("create_media", time.Now())
	if err := mustExist(ctx, db.conn, "projects", "project", m.Project); err != nil {
		return err
	}
	attrs, err := attrsJSON(m.Attributes)
	if err != nil {
		return err
	}
	id, err := nextID(ctx, db.conn)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.ModifiedAt = now
	_, err = db.conn.ExecContext(ctx, `INSERT INTO media (`+mediaColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, m.Project, m.Type, m.Name, m.MD5, m.Section, m.NumFrames, m.FPS, m.Width, m.Height, attrs,
		m.CreatedBy, m.CreatedAt, m.ModifiedAt)
	if err != nil {
		return fmt.Errorf("failed to insert media: %w", err)
	}
	m.ID = id
	return nil
}

func (db *DB) GetMedia(ctx context.Context, id int64) (*models.Media, error) {
	m, err := scanMedia(db.conn.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "media", id)
	}
	return m, nil
}

func (db *DB) ListMedia(ctx context.Context, q store.MediaQuery) ([]models.Media, error) {
	defer observe("list_media", time.Now())
	wb := query.NewWhereBuilder().
		AddEq("project", q.Project).
		AddIn("id", q.IDs).
		AddEq("type", q.Type).
		AddText("section", q.Section).
		AddText("name", q.Name)
	where, args := wb.Build()

	rows, err := db.conn.QueryContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	defer closeRows(rows)

	var out []models.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (db *DB) UpdateMedia(ctx context.Context, m *models.Media) error {
	attrs, err := attrsJSON(m.Attributes)
	if err != nil {
		return err
	}
	m.ModifiedAt = time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, `UPDATE media SET name = ?, md5 = ?, section = ?, num_frames = ?, fps = ?,
		width = ?, height = ?, attributes = ?, modified_at = ? WHERE id = ?`,
		m.Name, m.MD5, m.Section, m.NumFrames, m.FPS, m.Width, m.Height, attrs, m.ModifiedAt, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update media: %w", err)
	}
	return requireRow(res, "media", m.ID)
}

func (db *DB) DeleteMedia(ctx context.Context, id int64) error {
	defer observe("delete_media", time.Now())
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, "media", "media", id); err != nil {
			return err
		}
		stmts := []string{
			`DELETE FROM state_localizations WHERE localization_id IN (SELECT id FROM localizations WHERE media = ?)`,
			`DELETE FROM localizations WHERE media = ?`,
			`DELETE FROM state_media WHERE media_id = ?`,
		}
		for _, s := range stmts {
			if _, err := tx.ExecContext(ctx, s, id); err != nil {
				return fmt.Errorf("failed to delete media dependents: %w", err)
			}
		}
		// States left without media go too.
		orphans := `SELECT id FROM states WHERE id NOT IN (SELECT state_id FROM state_media)`
		if _, err := tx.ExecContext(ctx, `DELETE FROM state_localizations WHERE state_id IN (`+orphans+`)`); err != nil {
			return fmt.Errorf("failed to delete orphaned state links: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM states WHERE id IN (`+orphans+`)`); err != nil {
			return fmt.Errorf("failed to delete orphaned states: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete media: %w", err)
		}
		return nil
	})
}

// Localizations.

const localizationColumns = `id, project, type, media, version, frame, x, y, width, height, x0, y0, x1, y1,
	modified, attributes, created_by, modified_by, created_at, modified_at`

func scanLocalization(row interface{ Scan(...any) error }) (*models.Localization, error) {
	var l models.Localization
	var coords [8]sql.NullFloat64
	var attrs string
	if err := row.Scan(&l.ID, &l.Project, &l.Type, &l.Media, &l.Version, &l.Frame,
		&coords[0], &coords[1], &coords[2], &coords[3], &coords[4], &coords[5], &coords[6], &coords[7],
		&l.Modified, &attrs, &l.CreatedBy, &l.ModifiedBy, &l.CreatedAt, &l.ModifiedAt); err != nil {
		return nil, err
	}
	for i, dst := range coordFields(&l) {
		if coords[i].Valid {
			v := coords[i].Float64
			*dst = &v
		}
	}
	var err error
	l.Attributes, err = decodeAttributes(attrs)
	return &l, err
}

func coordFields(l *models.Localization) []**float64 {
	return []**float64{&l.X, &l.Y, &l.Width, &l.Height, &l.X0, &l.Y0, &l.X1, &l.Y1}
}

func coordArgs(l *models.Localization) []any {
	out := make([]any, 0, 8)
	for _, p := range coordFields(l) {
		if *p == nil {
			out = append(out, nil)
		} else {
			out = append(out, **p)
		}
	}
	return out
}

func (db *DB) CreateLocalizations(ctx context.Context, locs []*models.Localization) error {
	defer observe("create_localizations", time.Now())
	return db.withTx(ctx, func(tx *sql.Tx) error {
		checked := make(map[int64]bool)
		for _, l := range locs {
			if checked[l.Media] {
				continue
			}
			if err := mustExist(ctx, tx, "media", "media", l.Media); err != nil {
				return err
			}
			checked[l.Media] = true
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO localizations (`+localizationColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare localization insert: %w", err)
		}
		defer closeQuietly(stmt)

		now := time.Now().UTC()
		for _, l := range locs {
			attrs, err := attrsJSON(l.Attributes)
			if err != nil {
				return err
			}
			id, err := nextID(ctx, tx)
			if err != nil {
				return err
			}
			if l.CreatedAt.IsZero() {
				l.CreatedAt = now
			}
			l.ModifiedAt = now
			args := append([]any{id, l.Project, l.Type, l.Media, l.Version, l.Frame}, coordArgs(l)...)
			args = append(args, l.Modified, attrs, l.CreatedBy, l.ModifiedBy, l.CreatedAt, l.ModifiedAt)
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("failed to insert localization: %w", err)
			}
			l.ID = id
		}
		return nil
	})
}

func (db *DB) GetLocalization(ctx context.Context, id int64) (*models.Localization, error) {
	l, err := scanLocalization(db.conn.QueryRowContext(ctx, `SELECT `+localizationColumns+` FROM localizations WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "localization", id)
	}
	return l, nil
}

func annotationWhere(q store.AnnotationQuery, mediaClause func(wb *query.WhereBuilder)) (string, []any) {
	wb := query.NewWhereBuilder().
		AddEq("project", q.Project).
		AddIn("id", q.IDs).
		AddEq("type", q.Type).
		AddIn("version", q.Versions)
	if q.ExcludeModified {
		wb.AddClause("modified = ?", false)
	}
	mediaClause(wb)
	return wb.Build()
}

func (db *DB) ListLocalizations(ctx context.Context, q store.AnnotationQuery) ([]models.Localization, error) {
	defer observe("list_localizations", time.Now())
	where, args := annotationWhere(q, func(wb *query.WhereBuilder) { wb.AddIn("media", q.Media) })
	rows, err := db.conn.QueryContext(ctx, `SELECT `+localizationColumns+` FROM localizations WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list localizations: %w", err)
	}
	defer closeRows(rows)

	var out []models.Localization
	for rows.Next() {
		l, err := scanLocalization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan localization: %w", err)
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (db *DB) UpdateLocalization(ctx context.Context, l *models.Localization) error {
	attrs, err := attrsJSON(l.Attributes)
	if err != nil {
		return err
	}
	l.ModifiedAt = time.Now().UTC()
	args := append([]any{l.Version, l.Frame}, coordArgs(l)...)
	args = append(args, l.Modified, attrs, l.ModifiedBy, l.ModifiedAt, l.ID)
	res, err := db.conn.ExecContext(ctx, `UPDATE localizations SET version = ?, frame = ?,
		x = ?, y = ?, width = ?, height = ?, x0 = ?, y0 = ?, x1 = ?, y1 = ?,
		modified = ?, attributes = ?, modified_by = ?, modified_at = ? WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update localization: %w", err)
	}
	return requireRow(res, "localization", l.ID)
}

func (db *DB) DeleteLocalizations(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	defer observe("delete_localizations", time.Now())
	placeholders, args := query.InList(ids)
	var n int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM state_localizations WHERE localization_id IN (`+placeholders+`)`, args...); err != nil {
			return fmt.Errorf("failed to detach localizations: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM localizations WHERE id IN (`+placeholders+`)`, args...)
		if err != nil {
			return fmt.Errorf("failed to delete localizations: %w", err)
		}
		n, err = res.RowsAffected()
		return err
	})
	return int(n), err
}

// States.

const stateColumns = `id, project, type, version, frame, modified, attributes, created_by, modified_by, created_at, modified_at`

func scanState(row interface{ Scan(...any) error }) (*models.State, error) {
	var s models.State
	var frame sql.NullInt64
	var attrs string
	if err := row.Scan(&s.ID, &s.Project, &s.Type, &s.Version, &frame, &s.Modified, &attrs,
		&s.CreatedBy, &s.ModifiedBy, &s.CreatedAt, &s.ModifiedAt); err != nil {
		return nil, err
	}
	if frame.Valid {
		f := frame.Int64
		s.Frame = &f
	}
	var err error
	s.Attributes, err = decodeAttributes(attrs)
	return &s, err
}

func (db *DB) CreateState(ctx context.Context, s *models.State) error {
	defer observe("create_state", time.Now())
	attrs, err := attrsJSON(s.Attributes)
	if err != nil {
		return err
	}
	return db.withTx(ctx, func(tx *sql.Tx) error {
		for _, id := range s.Media {
			if err := mustExist(ctx, tx, "media", "media", id); err != nil {
				return err
			}
		}
		for _, id := range s.Localizations {
			if err := mustExist(ctx, tx, "localizations", "localization", id); err != nil {
				return err
			}
		}
		id, err := nextID(ctx, tx)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		s.ModifiedAt = now
		var frame any
		if s.Frame != nil {
			frame = *s.Frame
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO states (`+stateColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, s.Project, s.Type, s.Version, frame, s.Modified, attrs, s.CreatedBy, s.ModifiedBy, s.CreatedAt, s.ModifiedAt); err != nil {
			return fmt.Errorf("failed to insert state: %w", err)
		}
		for i, m := range s.Media {
			if _, err := tx.ExecContext(ctx, `INSERT INTO state_media (state_id, media_id, position) VALUES (?, ?, ?)`, id, m, i); err != nil {
				return fmt.Errorf("failed to link state media: %w", err)
			}
		}
		for i, l := range s.Localizations {
			if _, err := tx.ExecContext(ctx, `INSERT INTO state_localizations (state_id, localization_id, position) VALUES (?, ?, ?)`, id, l, i); err != nil {
				return fmt.Errorf("failed to link state localization: %w", err)
			}
		}
		s.ID = id
		return nil
	})
}

// loadStateLinks fills Media and Localizations for states.
func (db *DB) loadStateLinks(ctx context.Context, states []*models.State) error {
	if len(states) == 0 {
		return nil
	}
	byID := make(map[int64]*models.State, len(states))
	ids := make([]int64, 0, len(states))
	for _, s := range states {
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}
	placeholders, args := query.InList(ids)

	links := []struct {
		table, column string
		add           func(s *models.State, id int64)
	}{
		{"state_media", "media_id", func(s *models.State, id int64) { s.Media = append(s.Media, id) }},
		{"state_localizations", "localization_id", func(s *models.State, id int64) { s.Localizations = append(s.Localizations, id) }},
	}
	for _, link := range links {
		rows, err := db.conn.QueryContext(ctx, fmt.Sprintf(`SELECT state_id, %s FROM %s WHERE state_id IN (%s) ORDER BY state_id, position`,
			link.column, link.table, placeholders), args...)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", link.table, err)
		}
		for rows.Next() {
			var stateID, target int64
			if err := rows.Scan(&stateID, &target); err != nil {
				closeRows(rows)
				return fmt.Errorf("failed to scan %s: %w", link.table, err)
			}
			link.add(byID[stateID], target)
		}
		err = rows.Err()
		closeRows(rows)
		if err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) GetState(ctx context.Context, id int64) (*models.State, error) {
	s, err := scanState(db.conn.QueryRowContext(ctx, `SELECT `+stateColumns+` FROM states WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "state", id)
	}
	if err := db.loadStateLinks(ctx, []*models.State{s}); err != nil {
		return nil, err
	}
	return s, nil
}

func (db *DB) ListStates(ctx context.Context, q store.AnnotationQuery) ([]models.State, error) {
	defer observe("list_states", time.Now())
	where, args := annotationWhere(q, func(wb *query.WhereBuilder) {
		wb.AddInSubquery("id", "state_id", "state_media", "media_id", q.Media)
	})
	rows, err := db.conn.QueryContext(ctx, `SELECT `+stateColumns+` FROM states WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}
	var ptrs []*models.State
	for rows.Next() {
		s, err := scanState(rows)
		if err != nil {
			closeRows(rows)
			return nil, fmt.Errorf("failed to scan state: %w", err)
		}
		ptrs = append(ptrs, s)
	}
	err = rows.Err()
	closeRows(rows)
	if err != nil {
		return nil, err
	}

	if err := db.loadStateLinks(ctx, ptrs); err != nil {
		return nil, err
	}
	out := make([]models.State, len(ptrs))
	for i, s := range ptrs {
		out[i] = *s
	}
	return out, nil
}

func (db *DB) UpdateState(ctx context.Context, s *models.State) error {
	attrs, err := attrsJSON(s.Attributes)
	if err != nil {
		return err
	}
	s.ModifiedAt = time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, `UPDATE states SET version = ?, modified = ?, attributes = ?, modified_by = ?, modified_at = ? WHERE id = ?`,
		s.Version, s.Modified, attrs, s.ModifiedBy, s.ModifiedAt, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update state: %w", err)
	}
	return requireRow(res, "state", s.ID)
}

func (db *DB) DeleteStates(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	defer observe("delete_states", time.Now())
	placeholders, args := query.InList(ids)
	var n int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"state_media", "state_localizations"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE state_id IN (`+placeholders+`)`, args...); err != nil {
				return fmt.Errorf("failed to delete from %s: %w", table, err)
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM states WHERE id IN (`+placeholders+`)`, args...)
		if err != nil {
			return fmt.Errorf("failed to delete states: %w", err)
		}
		n, err = res.RowsAffected()
		return err
	})
	return int(n), err
}
