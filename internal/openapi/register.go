// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package openapi

import (
	"fmt"
	"sync"

	"github.com/go-openapi/spec"
	"github.com/goccy/go-json"
	"github.com/swaggo/swag"
)

// Document is a rendered Swagger document. It satisfies swag.Swagger.
type Document struct {
	raw []byte
}

// Render marshals doc once.
func Render(doc *spec.Swagger) (*Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal document: %w", err)
	}
	return &Document{raw: raw}, nil
}

// ReadDoc returns the JSON document.
func (d *Document) ReadDoc() string { return string(d.raw) }

// JSON returns the JSON document.
func (d *Document) JSON() []byte { return d.raw }

var registerOnce sync.Once

// Register publishes d under swag's default instance name. swag panics on a
// second registration, so only the first document of the process is kept.
func Register(d *Document) {
	registerOnce.Do(func() {
		swag.Register(swag.Name, d)
	})
}
