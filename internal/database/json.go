// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package database

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tator-io/tator/internal/models"
)

// encodeJSON renders v as JSON text for a VARCHAR column.
func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode json column: %w", err)
	}
	return string(b), nil
}

// encodeNullable stores nil as SQL NULL.
func encodeNullable(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	s, err := encodeJSON(v)
	return sql.NullString{String: s, Valid: true}, err
}

// decodeJSON parses JSON text. Integral number literals become int64 and
// all other numbers float64, so values read back keep the types attribute
// conversion produces.
func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode json column: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("failed to decode json column: trailing data")
	}
	return normalizeNumbers(v), nil
}

func normalizeNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if !strings.ContainsAny(x.String(), ".eE") {
			if i, err := x.Int64(); err == nil {
				return i
			}
		}
		f, _ := x.Float64()
		return f
	case []any:
		for i := range x {
			x[i] = normalizeNumbers(x[i])
		}
	case map[string]any:
		for k := range x {
			x[k] = normalizeNumbers(x[k])
		}
	}
	return v
}

func decodeAttributes(s string) (map[string]any, error) {
	v, err := decodeJSON(s)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		if v == nil {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("attributes column holds %T, want object", v)
	}
	return m, nil
}

// decodeInto unmarshals a non-null column into dst.
func decodeInto(col sql.NullString, dst any) error {
	if !col.Valid {
		return nil
	}
	if err := json.NewDecoder(bytes.NewReader([]byte(col.String))).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode json column: %w", err)
	}
	return nil
}

// restoreTyped reads a default or bound column and restores the Go type
// the dtype converts to. JSON does not tell 2.0 from 2.
func restoreTyped(dtype models.Dtype, col sql.NullString) (any, error) {
	if !col.Valid {
		return nil, nil
	}
	v, err := decodeJSON(col.String)
	if err != nil {
		return nil, err
	}
	switch dtype {
	case models.DtypeFloat:
		if i, ok := v.(int64); ok {
			return float64(i), nil
		}
	case models.DtypeGeopos:
		if pair, ok := v.([]any); ok {
			for i, p := range pair {
				if n, ok := p.(int64); ok {
					pair[i] = float64(n)
				}
			}
		}
	}
	return v, nil
}
