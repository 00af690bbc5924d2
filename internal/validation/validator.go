// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Code is the API error code for struct validation failures.
const Code = "VALIDATION_ERROR"

// FieldViolation is a single failed rule.
type FieldViolation struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

func (e *FieldViolation) Field() string      { return e.field }
func (e *FieldViolation) Tag() string        { return e.tag }
func (e *FieldViolation) Param() string      { return e.param }
func (e *FieldViolation) Value() interface{} { return e.value }
func (e *FieldViolation) Error() string      { return e.message }

// RequestValidationError collects every violation found in one struct.
type RequestValidationError struct {
	violations []FieldViolation
}

// Violations returns the failed rules in struct field order.
func (ve *RequestValidationError) Violations() []FieldViolation {
	return ve.violations
}

func (ve *RequestValidationError) Error() string {
	if len(ve.violations) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.violations))
	for i := range ve.violations {
		messages[i] = ve.violations[i].message
	}
	return strings.Join(messages, "; ")
}

// Details returns violations in the form used by API error responses.
func (ve *RequestValidationError) Details() map[string]interface{} {
	if len(ve.violations) == 1 {
		v := ve.violations[0]
		return map[string]interface{}{"field": v.field, "tag": v.tag}
	}
	fields := make([]map[string]interface{}, len(ve.violations))
	for i, v := range ve.violations {
		fields[i] = map[string]interface{}{
			"field":   v.field,
			"tag":     v.tag,
			"message": v.message,
		}
	}
	return map[string]interface{}{"fields": fields}
}

// GetValidator returns the shared validator. Field names in messages come
// from the `json` or `param` tag so they match what clients send.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(fieldName)
		mustRegister("normalized", validateNormalized)
		mustRegister("hexcolor_or_empty", validateHexColor)
	})
	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

func fieldName(sf reflect.StructField) string {
	for _, tag := range []string{"json", "param"} {
		name := strings.SplitN(sf.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return sf.Name
}

// validateNormalized accepts numbers in [0, 1], the range of image relative
// coordinates.
func validateNormalized(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		v := f.Float()
		return v >= 0 && v <= 1
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := f.Int()
		return v == 0 || v == 1
	}
	return false
}

func validateHexColor(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}

// ValidateStruct validates s and returns nil when every rule passes.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{violations: []FieldViolation{
			{field: "unknown", tag: "unknown", message: err.Error()},
		}}
	}

	out := make([]FieldViolation, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldViolation{
			field:   fe.Field(),
			tag:     fe.Tag(),
			param:   fe.Param(),
			value:   fe.Value(),
			message: translate(fe),
		}
	}
	return &RequestValidationError{violations: out}
}

var plainMessages = map[string]string{
	"required":          "%s is required",
	"normalized":        "%s must be between 0 and 1",
	"hexcolor_or_empty": "%s must be a color like #00ff00",
	"datetime":          "%s must be a valid date/time in RFC3339 format",
	"latitude":          "%s must be a valid latitude (-90 to 90)",
	"longitude":         "%s must be a valid longitude (-180 to 180)",
	"email":             "%s must be a valid email address",
}

var paramMessages = map[string]string{
	"oneof":           "%s must be one of: %s",
	"gte":             "%s must be greater than or equal to %s",
	"lte":             "%s must be less than or equal to %s",
	"gt":              "%s must be greater than %s",
	"lt":              "%s must be less than %s",
	"required_if":     "%s is required when %s",
	"required_unless": "%s is required unless %s",
	"required_with":   "%s is required with %s",
	"excluded_with":   "%s cannot be combined with %s",
	"gtefield":        "%s must be greater than or equal to %s",
}

func translate(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()

	if tmpl, ok := plainMessages[tag]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := paramMessages[tag]; ok {
		return fmt.Sprintf(tmpl, field, param)
	}

	unit := ""
	switch fe.Kind() {
	case reflect.String:
		unit = " characters"
	case reflect.Slice, reflect.Map:
		unit = " items"
	}
	switch tag {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	case "len":
		return fmt.Sprintf("%s must have exactly %s%s", field, param, unit)
	}
	return fmt.Sprintf("%s failed %s validation", field, tag)
}
