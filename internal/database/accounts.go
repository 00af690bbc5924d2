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

	"github.com/tator-io/tator/internal/models"
	"github.com/tator-io/tator/internal/store"
)

const userColumns = `id, username, first_name, last_name, email, password_hash, is_superuser, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.IsSuperuser, &u.CreatedAt)
	return &u, err
}

func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	defer observe("create_user", time.Now())
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	var n int64
	if err := db.conn.QueryRowContext(ctx, "SELECT count(*) FROM users WHERE username = ?", u.Username).Scan(&n); err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("user %q: %w", u.Username, store.ErrConflict)
	}
	id, err := nextID(ctx, db.conn)
	if err != nil {
		return err
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err = db.conn.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, u.Username, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.IsSuperuser, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	u.ID = id
	return nil
}

func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return u, nil
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if err != nil {
		return nil, notFound(err, "user", fmt.Sprintf("%q", username))
	}
	return u, nil
}

func (db *DB) UpdateUser(ctx context.Context, u *models.User) error {
	res, err := db.conn.ExecContext(ctx, `UPDATE users SET first_name = ?, last_name = ?, email = ? WHERE id = ?`,
		u.FirstName, u.LastName, u.Email, u.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireRow(res, "user", u.ID)
}

const projectColumns = `id, name, summary, created_by, created_at`

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.Name, &p.Summary, &p.CreatedBy, &p.CreatedAt)
	return &p, err
}

func (db *DB) CreateProject(ctx context.Context, p *models.Project) error {
	defer observe("create_project", time.Now())
	id, err := nextID(ctx, db.conn)
	if err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err = db.conn.ExecContext(ctx, `INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?)`,
		id, p.Name, p.Summary, p.CreatedBy, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	p.ID = id
	return nil
}

func (db *DB) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	p, err := scanProject(db.conn.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "project", id)
	}
	return p, nil
}

func (db *DB) ListProjects(ctx context.Context, user int64) ([]models.Project, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects
		WHERE id IN (SELECT project FROM memberships WHERE user_id = ?) ORDER BY id`, user)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer closeRows(rows)

	var out []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (db *DB) UpdateProject(ctx context.Context, p *models.Project) error {
	res, err := db.conn.ExecContext(ctx, `UPDATE projects SET name = ?, summary = ? WHERE id = ?`, p.Name, p.Summary, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return requireRow(res, "project", p.ID)
}

// projectTables are cleared when a project is deleted, children first.
var projectTables = []string{
	"leaves", "localizations", "states", "media", "attribute_types", "entity_types", "versions", "memberships",
}

func (db *DB) DeleteProject(ctx context.Context, id int64) error {
	defer observe("delete_project", time.Now())
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, "projects", "project", id); err != nil {
			return err
		}
		for _, q := range []string{
			`DELETE FROM state_media WHERE state_id IN (SELECT id FROM states WHERE project = ?)`,
			`DELETE FROM state_localizations WHERE state_id IN (SELECT id FROM states WHERE project = ?)`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return fmt.Errorf("failed to delete state associations: %w", err)
			}
		}
		for _, table := range projectTables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE project = ?", id); err != nil {
				return fmt.Errorf("failed to delete from %s: %w", table, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return nil
	})
}

func (db *DB) SetMembership(ctx context.Context, m models.Membership) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, "projects", "project", m.Project); err != nil {
			return err
		}
		if err := mustExist(ctx, tx, "users", "user", m.User); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM memberships WHERE project = ? AND user_id = ?`, m.Project, m.User); err != nil {
			return fmt.Errorf("failed to replace membership: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO memberships (project, user_id, permission) VALUES (?, ?, ?)`,
			m.Project, m.User, int(m.Permission)); err != nil {
			return fmt.Errorf("failed to insert membership: %w", err)
		}
		return nil
	})
}

const membershipSelect = `SELECT m.project, m.user_id, u.username, m.permission
	FROM memberships m JOIN users u ON u.id = m.user_id`

func scanMembership(row interface{ Scan(...any) error }) (*models.Membership, error) {
	var m models.Membership
	var perm int
	if err := row.Scan(&m.Project, &m.User, &m.Username, &perm); err != nil {
		return nil, err
	}
	m.Permission = models.Permission(perm)
	return &m, nil
}

func (db *DB) GetMembership(ctx context.Context, project, user int64) (*models.Membership, error) {
	m, err := scanMembership(db.conn.QueryRowContext(ctx, membershipSelect+` WHERE m.project = ? AND m.user_id = ?`, project, user))
	if err != nil {
		return nil, notFound(err, "membership", fmt.Sprintf("of user %d in project %d", user, project))
	}
	return m, nil
}

func (db *DB) ListMemberships(ctx context.Context, project int64) ([]models.Membership, error) {
	rows, err := db.conn.QueryContext(ctx, membershipSelect+` WHERE m.project = ? ORDER BY m.user_id`, project)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer closeRows(rows)

	var out []models.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}
