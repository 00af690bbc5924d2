// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package models

import (
	"strings"
	"time"
)

// Media is the metadata of an uploaded image or video.
type Media struct {
	ID         int64          `json:"id"`
	Project    int64          `json:"project"`
	Type       int64          `json:"type"`
	Name       string         `json:"name"`
	MD5        string         `json:"md5,omitempty"`
	Section    string         `json:"section,omitempty"`
	NumFrames  int64          `json:"num_frames"`
	FPS        float64        `json:"fps"`
	Width      int64          `json:"width"`
	Height     int64          `json:"height"`
	Attributes map[string]any `json:"attributes"`
	CreatedBy  int64          `json:"created_by"`
	CreatedAt  time.Time      `json:"created_at"`
	ModifiedAt time.Time      `json:"modified_at"`
}

// Localization is a box, line or dot drawn on one frame of a media.
// Coordinates are relative to the image size and lie in [0, 1]; which of
// them are set depends on the shape of the localization type.
type Localization struct {
	ID         int64          `json:"id"`
	Project    int64          `json:"project"`
	Type       int64          `json:"type"`
	Media      int64          `json:"media"`
	Version    int64          `json:"version"`
	Frame      int64          `json:"frame"`
	X          *float64       `json:"x,omitempty"`
	Y          *float64       `json:"y,omitempty"`
	Width      *float64       `json:"width,omitempty"`
	Height     *float64       `json:"height,omitempty"`
	X0         *float64       `json:"x0,omitempty"`
	Y0         *float64       `json:"y0,omitempty"`
	X1         *float64       `json:"x1,omitempty"`
	Y1         *float64       `json:"y1,omitempty"`
	Modified   bool           `json:"modified"`
	Attributes map[string]any `json:"attributes"`
	CreatedBy  int64          `json:"created_by"`
	ModifiedBy int64          `json:"modified_by"`
	CreatedAt  time.Time      `json:"created_at"`
	ModifiedAt time.Time      `json:"modified_at"`
}

// State is an annotation attached to media, to a single frame or to a set
// of localizations.
type State struct {
	ID            int64          `json:"id"`
	Project       int64          `json:"project"`
	Type          int64          `json:"type"`
	Version       int64          `json:"version"`
	Media         []int64        `json:"media"`
	Frame         *int64         `json:"frame,omitempty"`
	Localizations []int64        `json:"localizations,omitempty"`
	Modified      bool           `json:"modified"`
	Attributes    map[string]any `json:"attributes"`
	CreatedBy     int64          `json:"created_by"`
	ModifiedBy    int64          `json:"modified_by"`
	CreatedAt     time.Time      `json:"created_at"`
	ModifiedAt    time.Time      `json:"modified_at"`
}

// FrameRange is the CSV projection of a frame state, ending where the next
// state on the same media begins.
type FrameRange struct {
	State        *State
	Media        int64
	EndFrame     int64
	StartSeconds float64
	EndSeconds   float64
}

// Leaf is a node of a project's label hierarchy, such as a taxonomy. Path
// joins the names from the root down with dots and is unique per project.
type Leaf struct {
	ID         int64          `json:"id"`
	Project    int64          `json:"project"`
	Type       int64          `json:"type"`
	Name       string         `json:"name"`
	Parent     *int64         `json:"parent,omitempty"`
	Path       string         `json:"path"`
	Attributes map[string]any `json:"attributes"`
	CreatedBy  int64          `json:"created_by"`
	ModifiedBy int64          `json:"modified_by"`
	CreatedAt  time.Time      `json:"created_at"`
	ModifiedAt time.Time      `json:"modified_at"`
}

// Depth is the number of labels in the path.
func (l *Leaf) Depth() int {
	if l.Path == "" {
		return 0
	}
	return strings.Count(l.Path, ".") + 1
}
