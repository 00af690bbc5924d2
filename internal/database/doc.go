// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

/*
Package database implements store.Store on DuckDB.

Projects, users, versions, entity types, attribute types, media and
annotations live in one DuckDB file (or in memory for tests). Attribute
values are stored as JSON text; reads restore integral numbers as int64 and
the rest as float64 so filters and conversions see the same types the API
wrote.

Usage:

	db, err := database.New(&cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()

	locs, err := db.ListLocalizations(ctx, store.AnnotationQuery{Project: 1, Media: []int64{7}})
*/
package database
