// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package api

import (
	"github.com/tator-io/tator/internal/annotation"
	"github.com/tator-io/tator/internal/attribute"
	"github.com/tator-io/tator/internal/params"
)

func pathInt(name, desc string) params.Field {
	return params.Field{Name: name, In: params.InPath, Required: true, Type: params.TypeInteger, Description: desc, Minimum: params.Bound(1)}
}

var (
	projectPath = pathInt("project", "A unique integer identifying a project.")
	idPath      = pathInt("id", "A unique integer identifying the object.")
)

// Pagination applies after filtering. stop is exclusive.
var pageFields = []params.Field{
	{Name: "start", In: params.InQuery, Type: params.TypeInteger, Minimum: params.Bound(0),
		Description: "Pagination start index. Index of the first item in a larger list to return."},
	{Name: "stop", In: params.InQuery, Type: params.TypeInteger, Minimum: params.Bound(0),
		Description: "Pagination stop index. Non-inclusive index of the last item in a larger list to return."},
}

var operationField = params.Field{
	Name: "operation", In: params.InQuery, Type: params.TypeString,
	Description: "Set to \"count\" to return the number of elements, or \"attribute_count::<name>\" " +
		"to return the number of elements per value of an attribute.",
}

// annotationFilterFields select localizations and states.
func annotationFilterFields() []params.Field {
	fields := []params.Field{
		{Name: "media_id", In: params.InQuery, Type: params.TypeArray, Items: params.TypeInteger,
			Description: "List of integers identifying media."},
		{Name: "type", In: params.InQuery, Type: params.TypeInteger, Minimum: params.Bound(1),
			Description: "Unique integer identifying an annotation type."},
		{Name: "version", In: params.InQuery, Type: params.TypeArray, Items: params.TypeInteger,
			Description: "List of integers representing versions to fetch."},
		{Name: "modified", In: params.InQuery, Type: params.TypeBoolean,
			Description: "Set to true for original + modified annotations, false for original only."},
	}
	fields = append(fields, pageFields...)
	fields = append(fields, operationField)
	return append(fields, attribute.FilterFields()...)
}

// shapeBodyFields are the coordinates of a localization body.
func shapeBodyFields() []params.Field {
	names := annotation.ShapeFieldNames()
	out := make([]params.Field, 0, len(names))
	for _, name := range names {
		out = append(out, params.Field{
			Name: name, In: params.InBody, Type: params.TypeNumber,
			Minimum: params.Bound(0), Maximum: params.Bound(1),
			Description: "Normalized coordinate " + name + ".",
		})
	}
	return out
}

var attributesBody = params.Field{
	Name: "attributes", In: params.InBody, Type: params.TypeObject,
	Description: "Object containing attribute values.",
}

// mediaFilterFields select media.
func mediaFilterFields() []params.Field {
	fields := []params.Field{
		{Name: "media_id", In: params.InQuery, Type: params.TypeArray, Items: params.TypeInteger,
			Description: "List of integers identifying media."},
		{Name: "type", In: params.InQuery, Type: params.TypeInteger, Minimum: params.Bound(1)},
		{Name: "name", In: params.InQuery, Type: params.TypeString, Description: "Exact name of the media."},
		{Name: "section", In: params.InQuery, Type: params.TypeString, Description: "Media section name."},
	}
	fields = append(fields, pageFields...)
	fields = append(fields, operationField)
	return append(fields, attribute.FilterFields()...)
}

func mediaBody(create bool) []params.Field {
	fields := []params.Field{
		{Name: "name", In: params.InBody, Required: create, Type: params.TypeString, Description: "Name of the media file."},
		{Name: "section", In: params.InBody, Type: params.TypeString, Description: "Media section name."},
		{Name: "num_frames", In: params.InBody, Type: params.TypeInteger, Minimum: params.Bound(0)},
		{Name: "fps", In: params.InBody, Type: params.TypeNumber, Minimum: params.Bound(0)},
		{Name: "width", In: params.InBody, Type: params.TypeInteger, Minimum: params.Bound(0)},
		{Name: "height", In: params.InBody, Type: params.TypeInteger, Minimum: params.Bound(0)},
		attributesBody,
	}
	if create {
		fields = append([]params.Field{
			{Name: "type", In: params.InBody, Required: true, Type: params.TypeInteger, Minimum: params.Bound(1),
				Description: "Unique integer identifying a media type."},
			{Name: "md5", In: params.InBody, Type: params.TypeString, Description: "MD5 sum of the media file."},
		}, fields...)
	}
	return fields
}

// localizationItemFields describe one localization to create. They are
// checked per item, against the body itself or each entry of many.
func localizationItemFields() []params.Field {
	fields := []params.Field{
		{Name: "media_id", In: params.InBody, Required: true, Type: params.TypeInteger, Minimum: params.Bound(1),
			Description: "Unique integer identifying a media."},
		{Name: "type", In: params.InBody, Required: true, Type: params.TypeInteger, Minimum: params.Bound(1),
			Description: "Unique integer identifying a localization type."},
		{Name: "frame", In: params.InBody, Type: params.TypeInteger, Default: int64(0), Minimum: params.Bound(0),
			Description: "Frame number of this localization if it is in a video."},
		{Name: "version", In: params.InBody, Type: params.TypeInteger, Minimum: params.Bound(1),
			Description: "Unique integer identifying the version. Defaults to the baseline version."},
		{Name: "modified", In: params.InBody, Type: params.TypeBoolean, Default: false,
			Description: "Whether this localization was created in the web UI."},
	}
	fields = append(fields, shapeBodyFields()...)
	return append(fields, attributesBody)
}

var localizationItemSchema = params.MustSchema(localizationItemFields(), nil)

// localizationCreateBody documents the create body. Nothing is required at
// this level because a bulk body only carries many.
func localizationCreateBody() []params.Field {
	items := localizationItemFields()
	out := make([]params.Field, 0, len(items)+1)
	for _, f := range items {
		f.Required = false
		f.Default = nil
		out = append(out, f)
	}
	return append(out, params.Field{
		Name: "many", In: params.InBody, Type: params.TypeArray, Items: params.TypeObject,
		Description: "List of localizations to create. Each item takes the same fields as a single localization.",
	})
}

func localizationPatchBody() []params.Field {
	fields := []params.Field{
		{Name: "version", In: params.InBody, Type: params.TypeInteger, Minimum: params.Bound(1)},
		{Name: "frame", In: params.InBody, Type: params.TypeInteger, Minimum: params.Bound(0)},
		{Name: "modified", In: params.InBody, Type: params.TypeBoolean},
	}
	fields = append(fields, shapeBodyFields()...)
	return append(fields, attributesBody)
}

func stateCreateBody() []params.Field {
	return []params.Field{
		{Name: "media_ids", In: params.InBody, Required: true, Type: params.TypeArray, Items: params.TypeInteger,
			Description: "List of media IDs that this state applies to."},
		{Name: "localization_ids", In: params.InBody, Type: params.TypeArray, Items: params.TypeInteger,
			Description: "List of localization IDs that this state applies to."},
		{Name: "type", In: params.InBody, Required: true, Type: params.TypeInteger, Minimum: params.Bound(1),
			Description: "Unique integer identifying a state type."},
		{Name: "frame", In: params.InBody, Type: params.TypeInteger, Minimum: params.Bound(0),
			Description: "Frame number this state applies to."},
		{Name: "version", In: params.InBody, Type: params.TypeInteger, Minimum: params.Bound(1),
			Description: "Unique integer identifying the version. Defaults to the baseline version."},
		{Name: "modified", In: params.InBody, Type: params.TypeBoolean, Default: false},
		attributesBody,
	}
}

// leafFilterFields select leaves.
func leafFilterFields() []params.Field {
	fields := []params.Field{
		{Name: "ancestor", In: params.InQuery, Type: params.TypeString,
			Description: "Get descendants of a leaf element (inclusive), by path (i.e. ITIS.Animalia)."},
		{Name: "type", In: params.InQuery, Type: params.TypeInteger, Minimum: params.Bound(1),
			Description: "Unique integer identifying a leaf type."},
		{Name: "name", In: params.InQuery, Type: params.TypeString, Description: "Name of the leaf element."},
	}
	fields = append(fields, pageFields...)
	fields = append(fields, operationField)
	return append(fields, attribute.FilterFields()...)
}

// leafItemFields describe one leaf to create.
func leafItemFields() []params.Field {
	return []params.Field{
		{Name: "name", In: params.InBody, Required: true, Type: params.TypeString, Description: "Name of the leaf."},
		{Name: "type", In: params.InBody, Required: true, Type: params.TypeInteger, Minimum: params.Bound(1),
			Description: "Unique integer identifying a leaf type."},
		{Name: "parent", In: params.InBody, Type: params.TypeInteger, Minimum: params.Bound(1),
			Description: "ID of the parent leaf. Omit for a root."},
		attributesBody,
	}
}

var leafItemSchema = params.MustSchema(leafItemFields(), nil)

func leafCreateBody() []params.Field {
	items := leafItemFields()
	out := make([]params.Field, 0, len(items)+1)
	for _, f := range items {
		f.Required = false
		out = append(out, f)
	}
	return append(out, params.Field{
		Name: "many", In: params.InBody, Type: params.TypeArray, Items: params.TypeObject,
		Description: "List of leaves to create. Each item takes the same fields as a single leaf.",
	})
}
