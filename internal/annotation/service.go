// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package annotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tator-io/tator/internal/attribute"
	"github.com/tator-io/tator/internal/cache"
	"github.com/tator-io/tator/internal/events"
	"github.com/tator-io/tator/internal/logging"
	"github.com/tator-io/tator/internal/models"
	"github.com/tator-io/tator/internal/store"
)

// ErrInvalid marks requests that break an annotation rule. Attribute
// conversion failures wrap attribute.ErrInvalid instead.
var ErrInvalid = errors.New("invalid annotation request")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Defaults for zero Options fields.
const (
	DefaultMaxBulk        = 500
	DefaultSchemaCacheTTL = 5 * time.Minute
	defaultSchemaCacheLen = 256
)

type Options struct {
	// MaxBulkCreate limits the localizations accepted in one create call.
	MaxBulkCreate int

	// SchemaCacheSize bounds the number of entity type schemas kept in
	// memory. Negative disables the cache.
	SchemaCacheSize int
	SchemaCacheTTL  time.Duration
}

// Service applies project rules on top of a store and announces every
// change.
type Service struct {
	store    store.Store
	notifier events.Notifier
	maxBulk  int
	schemas  *cache.LRU[int64, *attribute.Schema]
}

func NewService(s store.Store, n events.Notifier, opts Options) *Service {
	if n == nil {
		n = events.Discard
	}
	if opts.MaxBulkCreate <= 0 {
		opts.MaxBulkCreate = DefaultMaxBulk
	}
	svc := &Service{store: s, notifier: n, maxBulk: opts.MaxBulkCreate}
	if opts.SchemaCacheSize >= 0 {
		if opts.SchemaCacheSize == 0 {
			opts.SchemaCacheSize = defaultSchemaCacheLen
		}
		if opts.SchemaCacheTTL <= 0 {
			opts.SchemaCacheTTL = DefaultSchemaCacheTTL
		}
		svc.schemas = cache.NewLRU[int64, *attribute.Schema](opts.SchemaCacheSize, opts.SchemaCacheTTL)
	}
	return svc
}

// Store returns the underlying store for read paths that need no rules.
func (s *Service) Store() store.Store { return s.store }

// notify publishes a change. The records are already committed, so a
// publish failure is logged and not returned.
func (s *Service) notify(ctx context.Context, c events.Change) {
	if len(c.IDs) == 0 {
		return
	}
	if err := s.notifier.Notify(ctx, c); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("entity", c.Entity).
			Str("action", c.Action).
			Int64("project", c.Project).
			Msg("Failed to publish annotation change")
	}
}

// entityType loads a type and checks it belongs to project and kind.
func (s *Service) entityType(ctx context.Context, project, id int64, kind models.EntityKind) (*models.EntityType, error) {
	t, err := s.store.GetEntityType(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Project != project {
		return nil, fmt.Errorf("%s type %d in project %d: %w", kind, id, project, store.ErrNotFound)
	}
	if t.Kind != kind {
		return nil, invalid("type %d is a %s type, not a %s type", id, t.Kind, kind)
	}
	return t, nil
}

func (s *Service) media(ctx context.Context, project, id int64) (*models.Media, error) {
	m, err := s.store.GetMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Project != project {
		return nil, invalid("media %d belongs to another project", id)
	}
	return m, nil
}

// schema returns the attribute schema of an entity type. Callers have
// already checked that typ belongs to project.
func (s *Service) schema(ctx context.Context, project, typ int64) (*attribute.Schema, error) {
	if s.schemas != nil {
		if sc, ok := s.schemas.Get(typ); ok {
			return sc, nil
		}
	}
	types, err := s.store.ListAttributeTypes(ctx, project, &typ)
	if err != nil {
		return nil, err
	}
	sc := attribute.NewSchema(types)
	if s.schemas != nil {
		s.schemas.Add(typ, sc)
	}
	return sc, nil
}

// forgetSchema drops the cached schema of an entity type.
func (s *Service) forgetSchema(typ int64) {
	if s.schemas != nil {
		s.schemas.Remove(typ)
	}
}

// version resolves the requested version, or the project baseline when id
// is nil.
func (s *Service) version(ctx context.Context, project, user int64, id *int64) (int64, error) {
	if id == nil {
		v, err := s.store.BaselineVersion(ctx, project, user)
		if err != nil {
			return 0, err
		}
		return v.ID, nil
	}
	v, err := s.store.GetVersion(ctx, *id)
	if err != nil {
		return 0, err
	}
	if v.Project != project {
		return 0, fmt.Errorf("version %d in project %d: %w", *id, project, store.ErrNotFound)
	}
	return v.ID, nil
}
