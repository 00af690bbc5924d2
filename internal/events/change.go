// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the current Change schema version.
const SchemaVersion = 1

// Entity names carried in Change.Entity.
const (
	EntityMedia         = "media"
	EntityLocalization  = "localization"
	EntityState         = "state"
	EntityEntityType    = "entity_type"
	EntityAttributeType = "attribute_type"
	EntityVersion       = "version"
	EntityProject       = "project"
	EntityLeaf          = "leaf"
)

// Actions carried in Change.Action.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Change announces that records of one project were created, updated or
// deleted.
type Change struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       string    `json:"event_id"`
	Project       int64     `json:"project"`
	Entity        string    `json:"entity"`
	Action        string    `json:"action"`
	IDs           []int64   `json:"ids"`
	User          int64     `json:"user"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewChange stamps a Change with an event ID and the current time.
func NewChange(project int64, entity, action string, user int64, ids ...int64) Change {
	return Change{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		Project:       project,
		Entity:        entity,
		Action:        action,
		IDs:           ids,
		User:          user,
		Timestamp:     time.Now().UTC(),
	}
}

func (c *Change) Validate() error {
	switch {
	case c.EventID == "":
		return &ValidationError{Field: "event_id", Message: "required"}
	case c.Project == 0:
		return &ValidationError{Field: "project", Message: "required"}
	case c.Entity == "":
		return &ValidationError{Field: "entity", Message: "required"}
	}
	switch c.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return &ValidationError{Field: "action", Message: fmt.Sprintf("unknown action %q", c.Action)}
	}
	return nil
}

// ValidationError reports a malformed Change.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("change %s: %s", e.Field, e.Message)
}

// Notifier publishes changes. Implementations must be safe for concurrent
// use.
type Notifier interface {
	Notify(ctx context.Context, c Change) error
}

// Discard is a Notifier that drops every change.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(context.Context, Change) error { return nil }
