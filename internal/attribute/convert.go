// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package attribute

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/tator-io/tator/internal/models"
)

// ErrInvalid is wrapped by every error returned for a bad attribute value
// or attribute type definition.
var ErrInvalid = errors.New("invalid attribute")

// Error names the attribute that failed conversion.
type Error struct {
	Attribute string
	Reason    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("attribute %q: %s", e.Attribute, e.Reason)
}

func (e *Error) Unwrap() error { return ErrInvalid }

func fail(name, format string, args ...any) error {
	return &Error{Attribute: name, Reason: fmt.Sprintf(format, args...)}
}

// Convert checks v against the attribute type and returns it in the stored
// representation: bool, int64, float64, string (enum, str and datetime in
// RFC 3339 UTC) or []any{lon, lat} for geopos.
func Convert(t *models.AttributeType, v any) (any, error) {
	switch t.Dtype {
	case models.DtypeBool:
		return toBool(t.Name, v)
	case models.DtypeInt:
		i, err := toInt(t.Name, v)
		if err != nil {
			return nil, err
		}
		if err := checkBounds(t, float64(i)); err != nil {
			return nil, err
		}
		return i, nil
	case models.DtypeFloat:
		f, err := toFloat(t.Name, v)
		if err != nil {
			return nil, err
		}
		if err := checkBounds(t, f); err != nil {
			return nil, err
		}
		return f, nil
	case models.DtypeEnum:
		s, ok := v.(string)
		if !ok {
			return nil, fail(t.Name, "expected one of %s, got %T", strings.Join(t.Choices, ", "), v)
		}
		if !slices.Contains(t.Choices, s) {
			return nil, fail(t.Name, "%q is not one of %s", s, strings.Join(t.Choices, ", "))
		}
		return s, nil
	case models.DtypeString:
		return toString(t.Name, v)
	case models.DtypeDatetime:
		ts, err := toTime(t.Name, v)
		if err != nil {
			return nil, err
		}
		return ts.Format(time.RFC3339Nano), nil
	case models.DtypeGeopos:
		return toGeopos(t.Name, v)
	}
	return nil, fail(t.Name, "unknown dtype %q", t.Dtype)
}

func toBool(name string, v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, fail(name, "expected a boolean, got %v", v)
}

func toInt(name string, v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return int64(n), nil
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i, nil
		}
	}
	return 0, fail(name, "expected an integer, got %v", v)
}

func toFloat(name string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		if !math.IsNaN(n) && !math.IsInf(n, 0) {
			return n, nil
		}
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, nil
		}
	}
	return 0, fail(name, "expected a number, got %v", v)
}

func toString(name string, v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case bool:
		return strconv.FormatBool(s), nil
	case int64:
		return strconv.FormatInt(s, 10), nil
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64), nil
	}
	return "", fail(name, "expected a string, got %T", v)
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func toTime(name string, v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fail(name, "expected an RFC 3339 datetime, got %T", v)
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fail(name, "expected an RFC 3339 datetime, got %q", s)
}

func toGeopos(name string, v any) ([]any, error) {
	var pair []float64
	switch p := v.(type) {
	case []any:
		for _, item := range p {
			f, err := toFloat(name, item)
			if err != nil {
				return nil, fail(name, "geopos coordinates must be numbers")
			}
			pair = append(pair, f)
		}
	case []float64:
		pair = p
	default:
		return nil, fail(name, "expected [longitude, latitude], got %T", v)
	}
	if len(pair) != 2 {
		return nil, fail(name, "expected [longitude, latitude], got %d values", len(pair))
	}
	lon, lat := pair[0], pair[1]
	if lon < -180 || lon > 180 {
		return nil, fail(name, "longitude %v out of range [-180, 180]", lon)
	}
	if lat < -90 || lat > 90 {
		return nil, fail(name, "latitude %v out of range [-90, 90]", lat)
	}
	return []any{lon, lat}, nil
}

// checkBounds applies the inclusive lower and upper bounds of numeric types.
func checkBounds(t *models.AttributeType, f float64) error {
	if lo, ok := number(t.LowerBound); ok && f < lo {
		return fail(t.Name, "value %v is below the lower bound %v", f, lo)
	}
	if hi, ok := number(t.UpperBound); ok && f > hi {
		return fail(t.Name, "value %v is above the upper bound %v", f, hi)
	}
	return nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// ValidateType checks a new or updated attribute type definition and
// replaces Default, LowerBound and UpperBound with their converted form.
func ValidateType(t *models.AttributeType) error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return fail(t.Name, "name must not be empty")
	}
	if !slices.Contains(models.Dtypes, t.Dtype) {
		return fail(t.Name, "unknown dtype %q", t.Dtype)
	}

	numeric := t.Dtype == models.DtypeInt || t.Dtype == models.DtypeFloat
	if !numeric && (t.LowerBound != nil || t.UpperBound != nil) {
		return fail(t.Name, "bounds are only allowed for int and float attributes")
	}
	if t.Dtype == models.DtypeEnum {
		if len(t.Choices) == 0 {
			return fail(t.Name, "enum attributes need at least one choice")
		}
		if len(t.Labels) > 0 && len(t.Labels) != len(t.Choices) {
			return fail(t.Name, "got %d labels for %d choices", len(t.Labels), len(t.Choices))
		}
	} else if len(t.Choices) > 0 || len(t.Labels) > 0 {
		return fail(t.Name, "choices and labels are only allowed for enum attributes")
	}
	if t.Autocomplete != nil && t.Dtype != models.DtypeString {
		return fail(t.Name, "autocomplete is only allowed for str attributes")
	}
	if t.UseCurrent && t.Dtype != models.DtypeDatetime {
		return fail(t.Name, "use_current is only allowed for datetime attributes")
	}

	// Bounds are converted without the bounds themselves in force.
	unbounded := *t
	unbounded.LowerBound, unbounded.UpperBound = nil, nil
	for _, b := range []*any{&t.LowerBound, &t.UpperBound} {
		if *b == nil {
			continue
		}
		conv, err := Convert(&unbounded, *b)
		if err != nil {
			return err
		}
		*b = conv
	}
	lo, hasLo := number(t.LowerBound)
	hi, hasHi := number(t.UpperBound)
	if hasLo && hasHi && lo > hi {
		return fail(t.Name, "lower bound %v is greater than upper bound %v", lo, hi)
	}

	if t.Default != nil {
		conv, err := Convert(t, t.Default)
		if err != nil {
			return fmt.Errorf("default: %w", err)
		}
		t.Default = conv
	}
	t.Name = name
	return nil
}
