// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package openapi

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/go-openapi/spec"

	"github.com/tator-io/tator/internal/params"
)

// SecurityName is the security definition every non-public operation
// requires.
const SecurityName = "TokenAuth"

// Info describes the document.
type Info struct {
	Title       string
	Version     string
	Description string
	BasePath    string
}

// Operation is one method on one path.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
	Tag     string
	Fields  []params.Field
	// Status is the success status code; zero means 200.
	Status int
	Public bool
	// Produces overrides the default application/json.
	Produces []string
}

// Build renders ops as a Swagger 2.0 document.
func Build(info Info, ops []Operation) (*spec.Swagger, error) {
	doc := &spec.Swagger{
		SwaggerProps: spec.SwaggerProps{
			Swagger:  "2.0",
			BasePath: info.BasePath,
			Consumes: []string{"application/json"},
			Produces: []string{"application/json"},
			Info: &spec.Info{InfoProps: spec.InfoProps{
				Title:       info.Title,
				Version:     info.Version,
				Description: info.Description,
			}},
			Paths: &spec.Paths{Paths: map[string]spec.PathItem{}},
			SecurityDefinitions: spec.SecurityDefinitions{
				SecurityName: spec.APIKeyAuth("Authorization", "header"),
			},
		},
	}
	doc.SecurityDefinitions[SecurityName].Description = `"Token <key>" or "Bearer <jwt>"`

	seen := make(map[string]bool, len(ops))
	for _, o := range ops {
		if seen[o.ID] {
			return nil, fmt.Errorf("openapi: duplicate operation id %q", o.ID)
		}
		seen[o.ID] = true

		op, err := operation(o)
		if err != nil {
			return nil, fmt.Errorf("openapi: %s %s: %w", o.Method, o.Path, err)
		}
		item := doc.Paths.Paths[o.Path]
		if err := setMethod(&item, o.Method, op); err != nil {
			return nil, fmt.Errorf("openapi: %s: %w", o.Path, err)
		}
		doc.Paths.Paths[o.Path] = item
	}
	return doc, nil
}

func setMethod(item *spec.PathItem, method string, op *spec.Operation) error {
	slot := map[string]**spec.Operation{
		http.MethodGet:    &item.Get,
		http.MethodPost:   &item.Post,
		http.MethodPut:    &item.Put,
		http.MethodPatch:  &item.Patch,
		http.MethodDelete: &item.Delete,
	}[strings.ToUpper(method)]
	if slot == nil {
		return fmt.Errorf("unsupported method %q", method)
	}
	if *slot != nil {
		return fmt.Errorf("method %s declared twice", method)
	}
	*slot = op
	return nil
}

func operation(o Operation) (*spec.Operation, error) {
	op := spec.NewOperation(o.ID).
		WithSummary(o.Summary).
		WithTags(o.Tag)
	if len(o.Produces) > 0 {
		op.WithProduces(o.Produces...)
	}
	if !o.Public {
		op.SecuredWith(SecurityName)
	}

	var body []params.Field
	for _, f := range o.Fields {
		switch f.In {
		case params.InPath, params.InQuery:
			op.AddParam(parameter(f))
		case params.InBody:
			body = append(body, f)
		default:
			return nil, fmt.Errorf("field %q has unknown location %q", f.Name, f.In)
		}
	}
	if len(body) > 0 {
		op.AddParam(bodyParameter(body))
	}

	status := o.Status
	if status == 0 {
		status = http.StatusOK
	}
	op.RespondsWith(status, spec.NewResponse().WithDescription(http.StatusText(status)))
	op.RespondsWith(http.StatusBadRequest, spec.NewResponse().WithDescription("Invalid request parameters."))
	if !o.Public {
		op.RespondsWith(http.StatusUnauthorized, spec.NewResponse().WithDescription("Missing or invalid credentials."))
		op.RespondsWith(http.StatusForbidden, spec.NewResponse().WithDescription("Insufficient project permission."))
	}
	if slices.ContainsFunc(o.Fields, func(f params.Field) bool { return f.In == params.InPath }) {
		op.RespondsWith(http.StatusNotFound, spec.NewResponse().WithDescription("Not found."))
	}
	return op, nil
}

// parameter renders a path or query field. Swagger 2.0 has no object
// parameters outside the body, so objects travel as JSON text.
func parameter(f params.Field) *spec.Parameter {
	var p *spec.Parameter
	if f.In == params.InPath {
		p = spec.PathParam(f.Name)
	} else {
		p = spec.QueryParam(f.Name)
	}
	p.WithDescription(f.Description)
	if f.Required {
		p.AsRequired()
	}

	switch f.Type {
	case params.TypeArray:
		itemType, itemFormat := typeFormat(itemsOf(f))
		p.CollectionOf(spec.NewItems().Typed(itemType, itemFormat), "csv")
	case params.TypeObject:
		p.Typed("string", "json")
	default:
		p.Typed(typeFormat(f.Type))
	}
	if f.Default != nil && !f.Required {
		p.WithDefault(f.Default)
	}
	if len(f.Enum) > 0 {
		p.WithEnum(f.Enum...)
	}
	if f.Minimum != nil {
		p.WithMinimum(*f.Minimum, false)
	}
	if f.Maximum != nil {
		p.WithMaximum(*f.Maximum, false)
	}
	return p
}

// bodyParameter collects body fields into one schema. A field named
// params.BodyName stands for a bare JSON array body.
func bodyParameter(fields []params.Field) *spec.Parameter {
	for _, f := range fields {
		if f.Name == params.BodyName {
			p := spec.BodyParam(params.BodyName, fieldSchema(f))
			if f.Required {
				p.AsRequired()
			}
			return p
		}
	}

	s := new(spec.Schema).Typed("object", "")
	var required []string
	for _, f := range fields {
		s.SetProperty(f.Name, *fieldSchema(f))
		if f.Required {
			required = append(required, f.Name)
		}
	}
	if len(required) > 0 {
		s.WithRequired(required...)
	}
	p := spec.BodyParam("body", s)
	if len(required) > 0 {
		p.AsRequired()
	}
	return p
}

func fieldSchema(f params.Field) *spec.Schema {
	var s *spec.Schema
	switch f.Type {
	case params.TypeArray:
		itemType, itemFormat := typeFormat(itemsOf(f))
		s = spec.ArrayProperty(new(spec.Schema).Typed(itemType, itemFormat))
	case params.TypeObject:
		s = spec.MapProperty(nil)
	default:
		s = new(spec.Schema).Typed(typeFormat(f.Type))
	}
	s.WithDescription(f.Description)
	if f.Default != nil && !f.Required {
		s.WithDefault(f.Default)
	}
	if len(f.Enum) > 0 {
		s.WithEnum(f.Enum...)
	}
	if f.Minimum != nil {
		s.WithMinimum(*f.Minimum, false)
	}
	if f.Maximum != nil {
		s.WithMaximum(*f.Maximum, false)
	}
	return s
}

func itemsOf(f params.Field) params.Type {
	if f.Items == "" {
		return params.TypeString
	}
	return f.Items
}

func typeFormat(t params.Type) (typ, format string) {
	switch t {
	case params.TypeInteger:
		return "integer", "int64"
	case params.TypeNumber:
		return "number", "double"
	case params.TypeBoolean:
		return "boolean", ""
	case params.TypeArray:
		return "array", ""
	case params.TypeObject:
		return "object", ""
	}
	return "string", ""
}
