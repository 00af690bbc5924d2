// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package api

import (
	"github.com/tator-io/tator/internal/annotation"
	"github.com/tator-io/tator/internal/auth"
	"github.com/tator-io/tator/internal/params"
)

// Request structs are filled from parsed parameters with params.Values.Decode.
// Field types and bounds are already enforced by each endpoint's schema; the
// validate tags here carry the constraints that span fields.

// pageRequest is the start/stop window shared by list endpoints. An absent
// stop means no upper limit; stop=0 selects nothing.
type pageRequest struct {
	Start int64  `param:"start" validate:"gte=0"`
	Stop  *int64 `param:"stop" validate:"omitempty,gte=0,gtefield=Start"`
}

func (p pageRequest) window() (int, *int) {
	if p.Stop == nil {
		return int(p.Start), nil
	}
	stop := int(*p.Stop)
	return int(p.Start), &stop
}

func decodePage(v params.Values) (int, *int, error) {
	var p pageRequest
	if err := v.Decode(&p); err != nil {
		return 0, nil, err
	}
	start, stop := p.window()
	return start, stop, nil
}

type createMediaRequest struct {
	Type       int64          `param:"type" validate:"required,gt=0"`
	Name       string         `param:"name" validate:"required"`
	MD5        string         `param:"md5" validate:"omitempty,len=32,hexadecimal"`
	Section    string         `param:"section"`
	NumFrames  int64          `param:"num_frames"`
	FPS        float64        `param:"fps" validate:"required_with=NumFrames"`
	Width      int64          `param:"width" validate:"required_with=Height"`
	Height     int64          `param:"height" validate:"required_with=Width"`
	Attributes map[string]any `param:"attributes"`
}

func (r createMediaRequest) media() annotation.NewMedia {
	return annotation.NewMedia{
		Type:       r.Type,
		Name:       r.Name,
		MD5:        r.MD5,
		Section:    r.Section,
		NumFrames:  r.NumFrames,
		FPS:        r.FPS,
		Width:      r.Width,
		Height:     r.Height,
		Attributes: r.Attributes,
	}
}

type updateMediaRequest struct {
	Name       *string        `param:"name"`
	Section    *string        `param:"section"`
	NumFrames  *int64         `param:"num_frames"`
	FPS        *float64       `param:"fps"`
	Width      *int64         `param:"width" validate:"required_with=Height"`
	Height     *int64         `param:"height" validate:"required_with=Width"`
	Attributes map[string]any `param:"attributes"`
}

func (r updateMediaRequest) patch() annotation.MediaPatch {
	return annotation.MediaPatch{
		Name:       r.Name,
		Section:    r.Section,
		NumFrames:  r.NumFrames,
		FPS:        r.FPS,
		Width:      r.Width,
		Height:     r.Height,
		Attributes: r.Attributes,
	}
}

type createStateRequest struct {
	MediaIDs        []int64        `param:"media_ids" validate:"required,min=1,unique,dive,gt=0"`
	LocalizationIDs []int64        `param:"localization_ids" validate:"omitempty,unique,dive,gt=0"`
	Type            int64          `param:"type" validate:"required,gt=0"`
	Frame           *int64         `param:"frame" validate:"omitempty,gte=0"`
	Version         *int64         `param:"version"`
	Modified        bool           `param:"modified"`
	Attributes      map[string]any `param:"attributes"`
}

func (r createStateRequest) state() annotation.NewState {
	return annotation.NewState{
		Media:         r.MediaIDs,
		Localizations: r.LocalizationIDs,
		Type:          r.Type,
		Frame:         r.Frame,
		Version:       r.Version,
		Modified:      r.Modified,
		Attributes:    r.Attributes,
	}
}

type updateStateRequest struct {
	Version    *int64         `param:"version" validate:"required_without_all=Modified Attributes"`
	Modified   *bool          `param:"modified"`
	Attributes map[string]any `param:"attributes"`
}

func (r updateStateRequest) patch() annotation.StatePatch {
	return annotation.StatePatch{
		Version:    r.Version,
		Modified:   r.Modified,
		Attributes: r.Attributes,
	}
}

type updateLeafRequest struct {
	Name       *string        `param:"name" validate:"required_without=Attributes,omitempty,min=1,max=256"`
	Attributes map[string]any `param:"attributes"`
}

func (r updateLeafRequest) patch() annotation.LeafPatch {
	return annotation.LeafPatch{Name: r.Name, Attributes: r.Attributes}
}

// leafSuggestionRequest is the autocomplete lookup. Ancestor is a dotted
// path such as "ITIS.Animalia".
type leafSuggestionRequest struct {
	Ancestor string `param:"ancestor" validate:"required,max=1024"`
	Query    string `param:"query" validate:"required"`
	MinLevel *int64 `param:"minLevel" validate:"omitempty,gte=1"`
}

func (r leafSuggestionRequest) minLevel() int {
	if r.MinLevel == nil {
		return 1
	}
	return int(*r.MinLevel)
}

type updateUserRequest struct {
	FirstName *string `param:"first_name" validate:"required_without_all=LastName Email,omitempty,max=150"`
	LastName  *string `param:"last_name" validate:"omitempty,max=150"`
	Email     *string `param:"email" validate:"omitempty,email,max=254"`
}

func (r updateUserRequest) profile() auth.Profile {
	return auth.Profile{FirstName: r.FirstName, LastName: r.LastName, Email: r.Email}
}
