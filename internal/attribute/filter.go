// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package attribute

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/tator-io/tator/internal/params"
)

// Op is an attribute filter operator. Each one is its own query parameter.
type Op string

const (
	OpEq       Op = "attribute"
	OpLt       Op = "attribute_lt"
	OpLte      Op = "attribute_lte"
	OpGt       Op = "attribute_gt"
	OpGte      Op = "attribute_gte"
	OpContains Op = "attribute_contains"
	OpDistance Op = "attribute_distance"
	OpNull     Op = "attribute_null"
)

// Ops lists the filter operators in the order their parameters are declared.
var Ops = []Op{OpEq, OpLt, OpLte, OpGt, OpGte, OpContains, OpDistance, OpNull}

// SearchParam holds an expression evaluated against the attribute map.
const SearchParam = "search"

var opDescriptions = map[Op]string{
	OpEq:       "Attribute equality filter. Format is attribute_name::value.",
	OpLt:       "Attribute less than filter. Format is attribute_name::value.",
	OpLte:      "Attribute less than or equal filter. Format is attribute_name::value.",
	OpGt:       "Attribute greater than filter. Format is attribute_name::value.",
	OpGte:      "Attribute greater than or equal filter. Format is attribute_name::value.",
	OpContains: "Attribute contains filter, case insensitive. Format is attribute_name::value.",
	OpDistance: "Range filter for geoposition attributes. Format is attribute_name::distance_km::lat::lon.",
	OpNull:     "Attribute null filter. Returns elements for which the attribute is not set (true) or set (false). Format is attribute_name::true|false.",
}

// FilterFields returns the query parameters accepted by annotation list
// endpoints for attribute filtering. Repeat a parameter to AND several
// filters of the same kind.
func FilterFields() []params.Field {
	fields := make([]params.Field, 0, len(Ops)+1)
	for _, op := range Ops {
		fields = append(fields, params.Field{
			Name:        string(op),
			In:          params.InQuery,
			Type:        params.TypeArray,
			Items:       params.TypeString,
			Description: opDescriptions[op],
		})
	}
	return append(fields, params.Field{
		Name:        SearchParam,
		In:          params.InQuery,
		Type:        params.TypeString,
		Description: "Boolean expression over attribute values, for example `Species == \"Tuna\" && Length > 2`.",
	})
}

// Filter is one parsed attribute condition.
type Filter struct {
	Op    Op
	Name  string
	Value string

	num   float64
	isNum bool
	when  time.Time
	null  bool

	distKm, lat, lon float64
}

// Query is the conjunction of every filter and the search expression of
// one request.
type Query struct {
	Filters []Filter
	Search  string

	program *exprvm.Program
}

// Empty reports whether the query matches everything.
func (q *Query) Empty() bool {
	return q == nil || (len(q.Filters) == 0 && q.program == nil)
}

// ParseQuery reads the attribute filter parameters from parsed values.
func ParseQuery(v params.Values) (*Query, error) {
	q := &Query{}
	for _, op := range Ops {
		for _, raw := range v.Strings(string(op)) {
			f, err := parseFilter(op, raw)
			if err != nil {
				return nil, err
			}
			q.Filters = append(q.Filters, f)
		}
	}
	if src := strings.TrimSpace(v.String(SearchParam)); src != "" {
		program, err := exprlang.Compile(src,
			exprlang.Env(map[string]any{}),
			exprlang.AllowUndefinedVariables(),
			exprlang.AsBool(),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: search: %v", ErrInvalid, err)
		}
		q.Search = src
		q.program = program
	}
	return q, nil
}

func parseFilter(op Op, raw string) (Filter, error) {
	parts := strings.Split(raw, "::")
	if len(parts) < 2 || parts[0] == "" {
		return Filter{}, fmt.Errorf("%w: %s value %q must have the form name::value", ErrInvalid, op, raw)
	}
	f := Filter{Op: op, Name: parts[0], Value: strings.Join(parts[1:], "::")}

	switch op {
	case OpLt, OpLte, OpGt, OpGte:
		if n, err := strconv.ParseFloat(f.Value, 64); err == nil {
			f.num, f.isNum = n, true
		} else if ts, err := toTime(f.Name, f.Value); err == nil {
			f.when = ts
		} else {
			return Filter{}, fmt.Errorf("%w: %s value %q is not a number or datetime", ErrInvalid, op, f.Value)
		}
	case OpDistance:
		if len(parts) != 4 {
			return Filter{}, fmt.Errorf("%w: %s value %q must have the form name::distance_km::lat::lon", ErrInvalid, op, raw)
		}
		var nums [3]float64
		for i, p := range parts[1:] {
			n, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return Filter{}, fmt.Errorf("%w: %s value %q is not a number", ErrInvalid, op, p)
			}
			nums[i] = n
		}
		f.distKm, f.lat, f.lon = nums[0], nums[1], nums[2]
	case OpNull:
		b, err := strconv.ParseBool(f.Value)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: %s value %q must be true or false", ErrInvalid, op, f.Value)
		}
		f.null = b
	}
	return f, nil
}

// Match reports whether attrs satisfies every filter and the search
// expression.
func (q *Query) Match(attrs map[string]any) bool {
	if q == nil {
		return true
	}
	for i := range q.Filters {
		if !q.Filters[i].match(attrs) {
			return false
		}
	}
	if q.program == nil {
		return true
	}
	env := make(map[string]any, len(attrs))
	for k, v := range attrs {
		env[k] = v
	}
	out, err := exprlang.Run(q.program, env)
	if err != nil {
		// Entities missing an attribute used in a comparison do not match.
		return false
	}
	ok, _ := out.(bool)
	return ok
}

func (f *Filter) match(attrs map[string]any) bool {
	v, present := attrs[f.Name]
	present = present && v != nil
	if f.Op == OpNull {
		return f.null != present
	}
	if !present {
		return false
	}

	switch f.Op {
	case OpEq:
		return equal(v, f.Value)
	case OpContains:
		s, ok := v.(string)
		return ok && strings.Contains(strings.ToLower(s), strings.ToLower(f.Value))
	case OpLt, OpLte, OpGt, OpGte:
		c, ok := f.compare(v)
		if !ok {
			return false
		}
		switch f.Op {
		case OpLt:
			return c < 0
		case OpLte:
			return c <= 0
		case OpGt:
			return c > 0
		default:
			return c >= 0
		}
	case OpDistance:
		pos, err := toGeopos(f.Name, v)
		if err != nil {
			return false
		}
		return haversineKm(f.lat, f.lon, pos[1].(float64), pos[0].(float64)) <= f.distKm
	}
	return false
}

// compare orders the stored value against the filter operand.
func (f *Filter) compare(v any) (int, bool) {
	if f.isNum {
		n, ok := number(v)
		if !ok {
			return 0, false
		}
		switch {
		case n < f.num:
			return -1, true
		case n > f.num:
			return 1, true
		}
		return 0, true
	}
	ts, err := toTime(f.Name, v)
	if err != nil {
		return 0, false
	}
	return ts.Compare(f.when), true
}

func equal(v any, operand string) bool {
	switch x := v.(type) {
	case string:
		return x == operand
	case bool:
		b, err := strconv.ParseBool(operand)
		return err == nil && b == x
	case int64, int, float64:
		n, _ := number(x)
		o, err := strconv.ParseFloat(operand, 64)
		return err == nil && o == n
	}
	return fmt.Sprint(v) == operand
}

const earthRadiusKm = 6371.0

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
