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

const leafColumns = `id, project, type, name, parent, path, attributes, created_by, modified_by, created_at, modified_at`

func scanLeaf(row interface{ Scan(...any) error }) (*models.Leaf, error) {
	var l models.Leaf
	var parent sql.NullInt64
	var attrs string
	if err := row.Scan(&l.ID, &l.Project, &l.Type, &l.Name, &parent, &l.Path, &attrs,
		&l.CreatedBy, &l.ModifiedBy, &l.CreatedAt, &l.ModifiedAt); err != nil {
		return nil, err
	}
	if parent.Valid {
		p := parent.Int64
		l.Parent = &p
	}
	var err error
	l.Attributes, err = decodeAttributes(attrs)
	return &l, err
}

// pathTaken reports whether another leaf of project already has path.
func pathTaken(ctx context.Context, q querier, project, except int64, path string) (bool, error) {
	var n int64
	err := q.QueryRowContext(ctx, `SELECT count(*) FROM leaves WHERE project = ? AND path = ? AND id <> ?`,
		project, path, except).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check leaf path: %w", err)
	}
	return n > 0, nil
}

func (db *DB) CreateLeaves(ctx context.Context, leaves []*models.Leaf) error {
	defer observe("create_leaves", time.Now())
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO leaves (`+leafColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare leaf insert: %w", err)
		}
		defer closeQuietly(stmt)

		now := time.Now().UTC()
		for _, l := range leaves {
			if err := mustExist(ctx, tx, "projects", "project", l.Project); err != nil {
				return err
			}
			var parent any
			if l.Parent != nil {
				if err := mustExist(ctx, tx, "leaves", "leaf", *l.Parent); err != nil {
					return err
				}
				parent = *l.Parent
			}
			// Earlier leaves of this call are already inserted, so the
			// check also catches duplicates within the batch.
			taken, err := pathTaken(ctx, tx, l.Project, 0, l.Path)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("leaf %q: %w", l.Path, store.ErrConflict)
			}
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
			if _, err := stmt.ExecContext(ctx, id, l.Project, l.Type, l.Name, parent, l.Path, attrs,
				l.CreatedBy, l.ModifiedBy, l.CreatedAt, l.ModifiedAt); err != nil {
				return fmt.Errorf("failed to insert leaf: %w", err)
			}
			l.ID = id
		}
		return nil
	})
}

func (db *DB) GetLeaf(ctx context.Context, id int64) (*models.Leaf, error) {
	l, err := scanLeaf(db.conn.QueryRowContext(ctx, `SELECT `+leafColumns+` FROM leaves WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "leaf", id)
	}
	return l, nil
}

func (db *DB) ListLeaves(ctx context.Context, q store.LeafQuery) ([]models.Leaf, error) {
	defer observe("list_leaves", time.Now())
	wb := query.NewWhereBuilder().
		AddEq("project", q.Project).
		AddIn("id", q.IDs).
		AddEq("type", q.Type).
		AddText("name", q.Name)
	if q.Ancestor != "" {
		// starts_with rather than LIKE: "_" is a wildcard there and a
		// legal path character here.
		wb.AddClause("(path = ? OR starts_with(path, ?))", q.Ancestor, q.Ancestor+".")
	}
	where, args := wb.Build()

	rows, err := db.conn.QueryContext(ctx, `SELECT `+leafColumns+` FROM leaves WHERE `+where+` ORDER BY path, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaves: %w", err)
	}
	defer closeRows(rows)

	var out []models.Leaf
	for rows.Next() {
		l, err := scanLeaf(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaf: %w", err)
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (db *DB) UpdateLeaf(ctx context.Context, l *models.Leaf) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	existing, err := db.GetLeaf(ctx, l.ID)
	if err != nil {
		return err
	}
	taken, err := pathTaken(ctx, db.conn, existing.Project, l.ID, l.Path)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("leaf %q: %w", l.Path, store.ErrConflict)
	}
	attrs, err := attrsJSON(l.Attributes)
	if err != nil {
		return err
	}
	l.ModifiedAt = time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, `UPDATE leaves SET name = ?, path = ?, attributes = ?, modified_by = ?, modified_at = ? WHERE id = ?`,
		l.Name, l.Path, attrs, l.ModifiedBy, l.ModifiedAt, l.ID)
	if err != nil {
		return fmt.Errorf("failed to update leaf: %w", err)
	}
	return requireRow(res, "leaf", l.ID)
}

func (db *DB) DeleteLeaves(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	defer observe("delete_leaves", time.Now())
	placeholders, args := query.InList(ids)
	res, err := db.conn.ExecContext(ctx, `DELETE FROM leaves WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete leaves: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
