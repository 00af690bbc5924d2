// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tator-io/tator/internal/annotation"
	"github.com/tator-io/tator/internal/attribute"
	"github.com/tator-io/tator/internal/auth"
	"github.com/tator-io/tator/internal/authz"
	"github.com/tator-io/tator/internal/logging"
	"github.com/tator-io/tator/internal/params"
	"github.com/tator-io/tator/internal/store"
	"github.com/tator-io/tator/internal/validation"
)

// Error codes carried in APIError.Code.
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeInvalidParameter = "INVALID_PARAMETER"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeUnavailable      = "SERVICE_UNAVAILABLE"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Message is the body of create, update and delete responses.
type Message struct {
	Message string `json:"message"`
	ID      any    `json:"id,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

// detailer is implemented by errors that carry structured details.
type detailer interface {
	Details() map[string]interface{}
}

// classify maps an error to a status code and an error code.
func classify(err error) (int, string) {
	var verr *validation.RequestValidationError
	switch {
	case errors.Is(err, params.ErrMalformedBody):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.As(err, new(*params.FieldError)):
		return http.StatusBadRequest, ErrCodeInvalidParameter
	case errors.As(err, &verr):
		return http.StatusBadRequest, validation.Code
	case errors.Is(err, annotation.ErrInvalid), errors.Is(err, attribute.ErrInvalid):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrCodeUnauthorized
	case errors.Is(err, authz.ErrForbidden):
		return http.StatusForbidden, ErrCodeForbidden
	case errors.Is(err, store.ErrNotFound), errors.Is(err, auth.ErrTokenNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, auth.ErrThrottled):
		return http.StatusTooManyRequests, ErrCodeTooManyRequests
	case errors.As(err, new(*http.MaxBytesError)):
		return http.StatusRequestEntityTooLarge, ErrCodeBadRequest
	}
	return http.StatusInternalServerError, ErrCodeInternalError
}

// writeError renders err. Server errors are logged and their text is not
// sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	apiErr := &APIError{
		Code:      code,
		Message:   err.Error(),
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
	var d detailer
	if errors.As(err, &d) {
		apiErr.Details = d.Details()
	}

	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		apiErr.Message = "internal server error"
		apiErr.Details = nil
	}
	writeJSON(w, status, ErrorResponse{Error: apiErr})
}

func writeStatus(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: &APIError{
		Code:      code,
		Message:   message,
		RequestID: logging.RequestIDFromContext(r.Context()),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("Failed to write JSON response")
	}
}
