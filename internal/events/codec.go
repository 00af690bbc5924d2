// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package events

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Marshal validates c and encodes it as a message payload.
func Marshal(c Change) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate change: %w", err)
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal change: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a message payload. Payloads written by a newer schema
// version are rejected.
func Unmarshal(data []byte) (Change, error) {
	var c Change
	if err := json.Unmarshal(data, &c); err != nil {
		return Change{}, fmt.Errorf("unmarshal change: %w", err)
	}
	if c.SchemaVersion > SchemaVersion {
		return Change{}, &ValidationError{
			Field:   "schema_version",
			Message: fmt.Sprintf("version %d is newer than supported version %d", c.SchemaVersion, SchemaVersion),
		}
	}
	if err := c.Validate(); err != nil {
		return Change{}, err
	}
	return c, nil
}
