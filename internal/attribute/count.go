// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package attribute

import (
	"fmt"
	"strconv"
	"strings"
)

// CountOperation is the prefix of the operation parameter that requests a
// per-value count, as in "attribute_count::Species".
const CountOperation = "attribute_count"

// ParseCountOperation returns the attribute name of an attribute_count
// operation.
func ParseCountOperation(op string) (string, bool) {
	name, ok := strings.CutPrefix(op, CountOperation+"::")
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// Count tallies the values of one attribute. Entities without the
// attribute are not counted.
func Count(attrs []map[string]any, name string) map[string]int64 {
	out := make(map[string]int64)
	for _, a := range attrs {
		v, ok := a[name]
		if !ok || v == nil {
			continue
		}
		out[countKey(v)]++
	}
	return out
}

func countKey(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}
