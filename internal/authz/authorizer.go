// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package authz

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/tator-io/tator/internal/config"
	"github.com/tator-io/tator/internal/logging"
	"github.com/tator-io/tator/internal/metrics"
	"github.com/tator-io/tator/internal/models"
)

//go:embed model.conf
var embeddedModel string

// ErrForbidden is returned when a user lacks the permission an operation
// requires.
var ErrForbidden = errors.New("forbidden")

// Memberships is the part of the store the authorizer reads and writes.
type Memberships interface {
	SetMembership(ctx context.Context, m models.Membership) error
	ListMemberships(ctx context.Context, project int64) ([]models.Membership, error)
}

// Authorizer answers project permission checks. Memberships are loaded
// into the enforcer the first time a project is checked and kept in sync
// through Grant and Forget.
type Authorizer struct {
	ms       Memberships
	enforcer *casbin.SyncedEnforcer
	cache    *decisionCache

	mu     sync.Mutex
	loaded map[int64]bool
}

// New builds an authorizer with the level hierarchy policies installed.
func New(ms Memberships, cfg config.CasbinConfig) (*Authorizer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load authorization model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	if err := installHierarchy(e); err != nil {
		return nil, err
	}

	a := &Authorizer{
		ms:       ms,
		enforcer: e,
		loaded:   make(map[int64]bool),
	}
	if cfg.CacheEnabled {
		a.cache = newDecisionCache(cfg.CacheTTL)
	}
	return a, nil
}

// installHierarchy grants every level role its own action and the actions
// of all levels below it.
func installHierarchy(e *casbin.SyncedEnforcer) error {
	var rules [][]string
	for i, level := range models.Permissions {
		for _, lower := range models.Permissions[:i+1] {
			rules = append(rules, []string{roleName(level), lower.Role()})
		}
	}
	if _, err := e.AddPolicies(rules); err != nil {
		return fmt.Errorf("failed to install permission hierarchy: %w", err)
	}
	return nil
}

func subject(user int64) string           { return "user:" + strconv.FormatInt(user, 10) }
func domain(project int64) string         { return "project:" + strconv.FormatInt(project, 10) }
func roleName(p models.Permission) string { return "role:" + p.Role() }

// Require returns an error wrapping ErrForbidden unless u holds at least
// need on project. Superusers pass every check.
func (a *Authorizer) Require(ctx context.Context, u *models.User, project int64, need models.Permission) error {
	if u == nil {
		return fmt.Errorf("anonymous request: %w", ErrForbidden)
	}
	if u.IsSuperuser || need == models.PermissionNone {
		return nil
	}

	sub, dom, act := subject(u.ID), domain(project), need.Role()
	if a.cache != nil {
		if allowed, ok := a.cache.get(sub, dom, act); ok {
			metrics.AuthzDecisions.WithLabelValues(outcome(allowed), "true").Inc()
			return denial(allowed, u, project, need)
		}
	}

	if err := a.ensureLoaded(ctx, project); err != nil {
		return err
	}
	allowed, err := a.enforcer.Enforce(sub, dom, act)
	if err != nil {
		return fmt.Errorf("failed to evaluate permission: %w", err)
	}
	if a.cache != nil {
		a.cache.set(sub, dom, act, allowed)
	}
	metrics.AuthzDecisions.WithLabelValues(outcome(allowed), "false").Inc()
	if !allowed {
		logging.Ctx(ctx).Debug().
			Int64("project", project).
			Str("need", need.String()).
			Msg("Permission denied")
	}
	return denial(allowed, u, project, need)
}

// RequireSelf returns an error wrapping ErrForbidden unless u is the user
// identified by target or a superuser.
func (a *Authorizer) RequireSelf(u *models.User, target int64) error {
	switch {
	case u == nil:
		return fmt.Errorf("anonymous request: %w", ErrForbidden)
	case u.IsSuperuser || u.ID == target:
		return nil
	}
	return fmt.Errorf("user %q cannot act on user %d: %w", u.Username, target, ErrForbidden)
}

func denial(allowed bool, u *models.User, project int64, need models.Permission) error {
	if allowed {
		return nil
	}
	return fmt.Errorf("user %q needs %q on project %d: %w", u.Username, need, project, ErrForbidden)
}

func outcome(allowed bool) string {
	if allowed {
		return "allow"
	}
	return "deny"
}

// Level reports the highest permission u holds on project.
func (a *Authorizer) Level(ctx context.Context, u *models.User, project int64) (models.Permission, error) {
	if u.IsSuperuser {
		return models.PermissionFullControl, nil
	}
	if err := a.ensureLoaded(ctx, project); err != nil {
		return models.PermissionNone, err
	}
	roles := a.enforcer.GetRolesForUserInDomain(subject(u.ID), domain(project))
	level := models.PermissionNone
	for _, r := range roles {
		for _, p := range models.Permissions {
			if r == roleName(p) && p > level {
				level = p
			}
		}
	}
	return level, nil
}

// Grant persists m and replaces the user's role in the project.
func (a *Authorizer) Grant(ctx context.Context, m models.Membership) error {
	if err := a.ms.SetMembership(ctx, m); err != nil {
		return err
	}
	if err := a.ensureLoaded(ctx, m.Project); err != nil {
		return err
	}
	sub, dom := subject(m.User), domain(m.Project)
	if _, err := a.enforcer.RemoveFilteredGroupingPolicy(0, sub, "", dom); err != nil {
		return fmt.Errorf("failed to clear role: %w", err)
	}
	if m.Permission != models.PermissionNone {
		if _, err := a.enforcer.AddGroupingPolicy(sub, roleName(m.Permission), dom); err != nil {
			return fmt.Errorf("failed to assign role: %w", err)
		}
	}
	if a.cache != nil {
		a.cache.invalidateUser(sub)
	}
	logging.Ctx(ctx).Info().
		Int64("project", m.Project).
		Int64("user", m.User).
		Str("permission", m.Permission.String()).
		Msg("Membership granted")
	return nil
}

// Forget drops every role held in project. The next check reloads the
// memberships from the store.
func (a *Authorizer) Forget(project int64) {
	a.mu.Lock()
	delete(a.loaded, project)
	a.mu.Unlock()

	if _, err := a.enforcer.RemoveFilteredGroupingPolicy(2, domain(project)); err != nil {
		logging.Warn().Err(err).Int64("project", project).Msg("Failed to drop project roles")
	}
	if a.cache != nil {
		a.cache.clear()
	}
}

// Close stops the decision cache.
func (a *Authorizer) Close() {
	if a.cache != nil {
		a.cache.stop()
	}
}

func (a *Authorizer) ensureLoaded(ctx context.Context, project int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loaded[project] {
		return nil
	}

	members, err := a.ms.ListMemberships(ctx, project)
	if err != nil {
		return fmt.Errorf("failed to load memberships of project %d: %w", project, err)
	}
	var rules [][]string
	for _, m := range members {
		if m.Permission == models.PermissionNone {
			continue
		}
		rules = append(rules, []string{subject(m.User), roleName(m.Permission), domain(project)})
	}
	if len(rules) > 0 {
		if _, err := a.enforcer.AddGroupingPolicies(rules); err != nil {
			return fmt.Errorf("failed to load roles of project %d: %w", project, err)
		}
	}
	a.loaded[project] = true
	return nil
}
