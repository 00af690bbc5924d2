// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-openapi/spec"

	"github.com/tator-io/tator/internal/annotation"
	"github.com/tator-io/tator/internal/auth"
	"github.com/tator-io/tator/internal/authz"
	"github.com/tator-io/tator/internal/config"
	"github.com/tator-io/tator/internal/openapi"
	"github.com/tator-io/tator/internal/store"
	"github.com/tator-io/tator/internal/websocket"
)

// BasePath prefixes every API route.
const BasePath = "/api/v1"

// BreakerReporter reports the state of the event publisher's circuit
// breaker.
type BreakerReporter interface {
	BreakerState() string
}

// Options wires a Handler. Hub and Events may be nil when change events are
// disabled.
type Options struct {
	Service *annotation.Service
	Auth    *auth.Authenticator
	Authz   *authz.Authorizer
	Hub     *websocket.Hub
	Events  BreakerReporter

	API          config.APIConfig
	MaxBodyBytes int64
	Version      string
}

// Handler serves the REST API.
type Handler struct {
	svc    *annotation.Service
	store  store.Store
	auth   *auth.Authenticator
	authz  *authz.Authorizer
	hub    *websocket.Hub
	events BreakerReporter

	cfg     config.APIConfig
	maxBody int64
	version string
	started time.Time

	endpoints []*endpoint
	doc       *openapi.Document
}

// New builds the route table and the Swagger document.
func New(opts Options) (*Handler, error) {
	if opts.Service == nil || opts.Auth == nil || opts.Authz == nil {
		return nil, errors.New("api: service, authenticator and authorizer are required")
	}
	h := &Handler{
		svc:     opts.Service,
		store:   opts.Service.Store(),
		auth:    opts.Auth,
		authz:   opts.Authz,
		hub:     opts.Hub,
		events:  opts.Events,
		cfg:     opts.API,
		maxBody: opts.MaxBodyBytes,
		version: opts.Version,
		started: time.Now(),
	}
	if h.version == "" {
		h.version = "dev"
	}

	var err error
	if h.endpoints, err = compileRoutes(h); err != nil {
		return nil, err
	}
	doc, err := buildDocument(h.endpoints, h.version)
	if err != nil {
		return nil, err
	}
	if h.doc, err = openapi.Render(doc); err != nil {
		return nil, err
	}
	openapi.Register(h.doc)
	return h, nil
}

func compileRoutes(h *Handler) ([]*endpoint, error) {
	eps := h.routes()
	for _, e := range eps {
		if err := e.compile(); err != nil {
			return nil, err
		}
	}
	return eps, nil
}

func buildDocument(eps []*endpoint, version string) (*spec.Swagger, error) {
	var ops []openapi.Operation
	for _, e := range eps {
		ops = append(ops, e.operations()...)
	}
	doc, err := openapi.Build(openapi.Info{
		Title:       "Tator REST API",
		Version:     version,
		Description: "Interface for the Tator media annotation platform.",
		BasePath:    BasePath,
	}, ops)
	if err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}
	return doc, nil
}

// Document returns the Swagger document without wiring a server, for
// tooling.
func Document(version string) (*spec.Swagger, error) {
	eps, err := compileRoutes(&Handler{})
	if err != nil {
		return nil, err
	}
	return buildDocument(eps, version)
}
