// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

/*
Package cache provides a bounded in-memory LRU cache with TTL expiration.

The annotation service keeps the attribute schema of each entity type here so
that validating a localization or state does not reload every attribute type
from the store. Entries expire after the configured TTL and are dropped
explicitly whenever an attribute type changes.

# Usage

	c := cache.NewLRU[int64, *attribute.Schema](256, 5*time.Minute)
	c.Add(typeID, schema)
	if s, ok := c.Get(typeID); ok {
		...
	}
	c.Remove(typeID)

All methods are safe for concurrent use.
*/
package cache
