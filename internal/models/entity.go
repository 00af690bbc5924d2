// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package models

// EntityKind distinguishes media, localization, state and leaf types. All
// kinds share one ID space so an attribute type can point at any of them.
type EntityKind string

const (
	KindMedia        EntityKind = "media"
	KindLocalization EntityKind = "localization"
	KindState        EntityKind = "state"
	KindLeaf         EntityKind = "leaf"
)

// Media dtypes.
const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaMulti = "multi"
)

// Localization shapes, stored in EntityType.Dtype.
const (
	ShapeBox  = "box"
	ShapeLine = "line"
	ShapeDot  = "dot"
)

// Association says what a state is attached to.
type Association string

const (
	AssociateMedia        Association = "Media"
	AssociateFrame        Association = "Frame"
	AssociateLocalization Association = "Localization"
)

// Interpolation controls how frame states are rendered between keyframes.
type Interpolation string

const (
	InterpolateNone   Interpolation = "none"
	InterpolateLatest Interpolation = "latest"
)

// EntityType describes a class of media, localization, state or leaf. Dtype is
// the media kind for media types and the shape for localization types.
type EntityType struct {
	ID            int64             `json:"id"`
	Project       int64             `json:"project"`
	Kind          EntityKind        `json:"kind"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Dtype         string            `json:"dtype,omitempty"`
	Association   Association       `json:"association,omitempty"`
	Interpolation Interpolation     `json:"interpolation,omitempty"`
	MediaTypes    []int64           `json:"media_types,omitempty"`
	Colors        map[string]string `json:"colors,omitempty"`
	LineWidth     int               `json:"line_width,omitempty"`
	Visible       bool              `json:"visible"`

	// AttributeTypes is filled when the type is returned by the API.
	AttributeTypes []AttributeType `json:"attribute_types,omitempty"`
}

// Dtype values of an attribute type.
type Dtype string

const (
	DtypeBool     Dtype = "bool"
	DtypeInt      Dtype = "int"
	DtypeFloat    Dtype = "float"
	DtypeEnum     Dtype = "enum"
	DtypeString   Dtype = "str"
	DtypeDatetime Dtype = "datetime"
	DtypeGeopos   Dtype = "geopos"
)

// Dtypes lists every attribute dtype.
var Dtypes = []Dtype{DtypeBool, DtypeInt, DtypeFloat, DtypeEnum, DtypeString, DtypeDatetime, DtypeGeopos}

// Autocomplete points a string attribute at a suggestion service.
type Autocomplete struct {
	ServiceURL string `json:"serviceUrl"`
}

// AttributeType declares one user defined attribute of an entity type.
// Default, LowerBound and UpperBound hold converted values.
type AttributeType struct {
	ID           int64         `json:"id"`
	Project      int64         `json:"project"`
	AppliesTo    int64         `json:"applies_to"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Dtype        Dtype         `json:"dtype"`
	Order        int           `json:"order"`
	Default      any           `json:"default,omitempty"`
	LowerBound   any           `json:"lower_bound,omitempty"`
	UpperBound   any           `json:"upper_bound,omitempty"`
	Choices      []string      `json:"choices,omitempty"`
	Labels       []string      `json:"labels,omitempty"`
	Autocomplete *Autocomplete `json:"autocomplete,omitempty"`
	UseCurrent   bool          `json:"use_current,omitempty"`
}
