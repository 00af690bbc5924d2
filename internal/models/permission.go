// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package models

import (
	"fmt"
	"strings"
)

// Permission is a project access level. Levels are ordered: each one
// includes everything below it.
type Permission int

const (
	PermissionNone Permission = iota
	PermissionView
	PermissionEdit
	PermissionTransfer
	PermissionExecute
	PermissionFullControl
)

var permissionNames = []string{
	PermissionNone:        "",
	PermissionView:        "View Only",
	PermissionEdit:        "Can Edit",
	PermissionTransfer:    "Can Transfer",
	PermissionExecute:     "Can Execute",
	PermissionFullControl: "Full Control",
}

// Permissions lists the grantable levels from lowest to highest.
var Permissions = []Permission{
	PermissionView,
	PermissionEdit,
	PermissionTransfer,
	PermissionExecute,
	PermissionFullControl,
}

func (p Permission) String() string {
	if p < 0 || int(p) >= len(permissionNames) {
		return fmt.Sprintf("Permission(%d)", int(p))
	}
	return permissionNames[p]
}

// Role is the casbin role name for the level.
func (p Permission) Role() string {
	return strings.ToLower(strings.ReplaceAll(p.String(), " ", "_"))
}

// Includes reports whether p grants at least required.
func (p Permission) Includes(required Permission) bool {
	return p >= required
}

// ParsePermission accepts display names ("Can Edit") and role names ("can_edit").
func ParsePermission(s string) (Permission, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", " "))
	for _, p := range Permissions {
		if strings.ToLower(p.String()) == norm {
			return p, nil
		}
	}
	return PermissionNone, fmt.Errorf("unknown permission %q", s)
}

func (p Permission) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Permission) UnmarshalText(b []byte) error {
	parsed, err := ParsePermission(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
