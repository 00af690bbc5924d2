// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

// Package models defines the records exchanged between the store, the
// annotation service and the HTTP API.
package models

import "time"

type Project struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Summary   string    `json:"summary"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`

	// Permission is the requesting user's level, filled in by the API.
	Permission Permission `json:"permission,omitempty"`
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
}

// Membership grants a user a permission level on a project.
type Membership struct {
	Project    int64      `json:"project"`
	User       int64      `json:"user"`
	Username   string     `json:"username"`
	Permission Permission `json:"permission"`
}

// Version is an annotation layer within a project. Number 0 is the
// baseline version every project gets on demand.
type Version struct {
	ID          int64     `json:"id"`
	Project     int64     `json:"project"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Number      int64     `json:"number"`
	ShowEmpty   bool      `json:"show_empty"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// BaselineVersionName is the name given to version number 0.
const BaselineVersionName = "Baseline"
