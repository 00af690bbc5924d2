// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package annotation

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tator-io/tator/internal/models"
)

// FrameRanges turns frame states, ordered by frame, into ranges. A state
// lasts until the next state on the same media, or to the media's last
// frame. Seconds are frame / fps, or zero when fps is unknown.
func FrameRanges(states []models.State, media map[int64]*models.Media) []models.FrameRange {
	out := make([]models.FrameRange, 0, len(states))
	for i := range states {
		st := &states[i]
		if st.Frame == nil || len(st.Media) == 0 {
			continue
		}
		m := media[st.Media[0]]
		if m == nil {
			continue
		}
		end := m.NumFrames
		for j := i + 1; j < len(states); j++ {
			next := &states[j]
			if next.Frame != nil && len(next.Media) > 0 && next.Media[0] == m.ID {
				end = *next.Frame
				break
			}
		}
		out = append(out, models.FrameRange{
			State:        st,
			Media:        m.ID,
			EndFrame:     end,
			StartSeconds: seconds(*st.Frame, m.FPS),
			EndSeconds:   seconds(end, m.FPS),
		})
	}
	return out
}

func seconds(frame int64, fps float64) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(frame) / fps
}

// StatesCSV is a states export with everything it needs already loaded,
// so writing it cannot fail on the store.
type StatesCSV struct {
	states    []models.State
	media     map[int64]*models.Media
	attrTypes []models.AttributeType
	ranged    bool
}

// PrepareStatesCSV loads the attribute schema of t and the media the
// states refer to.
func (s *Service) PrepareStatesCSV(ctx context.Context, t *models.EntityType, states []models.State) (*StatesCSV, error) {
	schema, err := s.schema(ctx, t.Project, t.ID)
	if err != nil {
		return nil, err
	}
	media := map[int64]*models.Media{}
	for i := range states {
		for _, id := range states[i].Media {
			if _, ok := media[id]; ok {
				continue
			}
			m, err := s.store.GetMedia(ctx, id)
			if err != nil {
				return nil, err
			}
			media[id] = m
		}
	}
	return &StatesCSV{
		states:    states,
		media:     media,
		attrTypes: schema.Types(),
		ranged:    t.Association == models.AssociateFrame && t.Interpolation == models.InterpolateLatest,
	}, nil
}

// WriteStatesCSV writes states of one type as CSV. See StatesCSV.Write.
func (s *Service) WriteStatesCSV(ctx context.Context, w io.Writer, t *models.EntityType, states []models.State) error {
	export, err := s.PrepareStatesCSV(ctx, t, states)
	if err != nil {
		return err
	}
	return export.Write(w)
}

// Write emits one column per attribute in schema order. Frame states of a
// "latest" interpolation type get endFrame, startSeconds and endSeconds
// columns and the media name.
func (e *StatesCSV) Write(w io.Writer) error {
	states, media, ranged, attrTypes := e.states, e.media, e.ranged, e.attrTypes

	header := []string{"id", "type", "version", "media", "frame"}
	if ranged {
		header = append(header, "endFrame", "startSeconds", "endSeconds")
	}
	header = append(header, "modified", "created_at")
	for _, a := range attrTypes {
		header = append(header, a.Name)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	var ranges map[int64]models.FrameRange
	if ranged {
		ranges = make(map[int64]models.FrameRange, len(states))
		for _, r := range FrameRanges(states, media) {
			ranges[r.State.ID] = r
		}
	}

	for i := range states {
		st := &states[i]
		row := []string{
			strconv.FormatInt(st.ID, 10),
			strconv.FormatInt(st.Type, 10),
			strconv.FormatInt(st.Version, 10),
			mediaColumn(st, media, ranged),
			frameColumn(st.Frame),
		}
		if ranged {
			r, ok := ranges[st.ID]
			if ok {
				row = append(row,
					strconv.FormatInt(r.EndFrame, 10),
					strconv.FormatFloat(r.StartSeconds, 'f', -1, 64),
					strconv.FormatFloat(r.EndSeconds, 'f', -1, 64))
			} else {
				row = append(row, "", "", "")
			}
		}
		row = append(row, strconv.FormatBool(st.Modified), st.CreatedAt.UTC().Format(time.RFC3339))
		for _, a := range attrTypes {
			row = append(row, cell(st.Attributes[a.Name]))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func mediaColumn(st *models.State, media map[int64]*models.Media, byName bool) string {
	parts := make([]string, len(st.Media))
	for i, id := range st.Media {
		if m := media[id]; byName && m != nil {
			parts[i] = m.Name
		} else {
			parts[i] = strconv.FormatInt(id, 10)
		}
	}
	return strings.Join(parts, ";")
}

func frameColumn(f *int64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatInt(*f, 10)
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
