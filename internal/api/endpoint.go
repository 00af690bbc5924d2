// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tator-io/tator/internal/auth"
	"github.com/tator-io/tator/internal/metrics"
	"github.com/tator-io/tator/internal/models"
	"github.com/tator-io/tator/internal/openapi"
	"github.com/tator-io/tator/internal/params"
)

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// call is the state a handler sees: parsed parameters, the caller and the
// permission its method requires.
type call struct {
	h      *Handler
	r      *http.Request
	values params.Values
	user   *models.User
	need   models.Permission
}

// authorize checks the caller against the method's permission on project.
func (c *call) authorize(project int64) error {
	return c.h.authz.Require(c.r.Context(), c.user, project, c.need)
}

// handlerFunc returns the response body. A nil body with a nil error
// writes 204.
type handlerFunc func(w http.ResponseWriter, c *call) (any, error)

// rawResponse marks a handler that has written the response itself.
type rawResponse struct{}

// method is one HTTP method of an endpoint.
type method struct {
	id      string
	summary string
	fields  []params.Field
	need    models.Permission
	// projectPath authorizes against the {project} path parameter before
	// the handler runs. Endpoints addressed by entity ID authorize in the
	// handler once the entity is loaded.
	projectPath bool
	public      bool
	// credentials marks methods that check a password and get a stricter
	// per-IP rate limit.
	credentials bool
	status      int
	produces    []string
	// listOrScalar names body fields that accept a single value in place
	// of a list.
	listOrScalar []string
	handle       handlerFunc
}

// endpoint is one path with its methods.
type endpoint struct {
	pattern string
	tag     string
	common  []params.Field
	methods map[string]method

	schema params.Schema
}

// compile validates the parameter schema of every method.
func (e *endpoint) compile() error {
	per := make(map[string][]params.Field, len(e.methods))
	for name, m := range e.methods {
		per[name] = m.fields
	}
	s, err := params.NewSchema(e.common, per)
	if err != nil {
		return fmt.Errorf("api: %s: %w", e.pattern, err)
	}
	e.schema = s
	return nil
}

// operations describes the endpoint for the Swagger document, methods in
// a fixed order.
func (e *endpoint) operations() []openapi.Operation {
	var out []openapi.Operation
	for _, name := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		m, ok := e.methods[name]
		if !ok {
			continue
		}
		out = append(out, openapi.Operation{
			ID:       m.id,
			Method:   name,
			Path:     e.pattern,
			Summary:  m.summary,
			Tag:      e.tag,
			Fields:   e.schema.Fields(name),
			Status:   m.status,
			Public:   m.public,
			Produces: m.produces,
		})
	}
	return out
}

// serve adapts one method to an http.HandlerFunc.
func (h *Handler) serve(e *endpoint, name string) http.HandlerFunc {
	m := e.methods[name]
	return func(w http.ResponseWriter, r *http.Request) {
		if h.maxBody > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
		}

		pathParams := make(map[string]string)
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			for i, k := range rctx.URLParams.Keys {
				pathParams[k] = rctx.URLParams.Values[i]
			}
		}
		req, err := params.FromHTTP(r, pathParams)
		if err != nil {
			metrics.RecordParamFailure(string(params.InBody), "malformed")
			writeError(w, r, err)
			return
		}
		wrapScalars(req, m.listOrScalar)

		values, err := params.Parse(e.schema, req)
		if err != nil {
			if fe, ok := params.AsFieldError(err); ok {
				metrics.RecordParamFailure(string(fe.In), string(fe.Reason))
			}
			writeError(w, r, err)
			return
		}

		c := &call{h: h, r: r, values: values, need: m.need}
		if !m.public {
			u, ok := auth.UserFromContext(r.Context())
			if !ok {
				writeError(w, r, auth.ErrUnauthenticated)
				return
			}
			c.user = u
		}
		if m.projectPath {
			if err := c.authorize(values.Int("project")); err != nil {
				writeError(w, r, err)
				return
			}
		}

		body, err := m.handle(w, c)
		switch {
		case err != nil:
			writeError(w, r, err)
		case body == nil:
			w.WriteHeader(http.StatusNoContent)
		case body == rawResponse{}:
		default:
			status := m.status
			if status == 0 {
				status = http.StatusOK
			}
			writeJSON(w, status, body)
		}
	}
}

// wrapScalars turns a single body value into a one item list for the named
// fields.
func wrapScalars(req *params.Request, names []string) {
	body, ok := req.Body.(map[string]any)
	if !ok {
		return
	}
	for _, name := range names {
		v, ok := body[name]
		if !ok || v == nil {
			continue
		}
		if _, isList := v.([]any); !isList {
			body[name] = []any{v}
		}
	}
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed,
		fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path))
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, r, http.StatusNotFound, ErrCodeNotFound, fmt.Sprintf("no route for %s", r.URL.Path))
}
