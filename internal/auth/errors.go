// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package auth

import "errors"

var (
	// ErrUnauthenticated means the request carried no usable credentials.
	ErrUnauthenticated = errors.New("authentication credentials were not provided or are invalid")

	// ErrInvalidCredentials means a username and password did not match.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrThrottled means too many login attempts were made for a username.
	ErrThrottled = errors.New("too many login attempts, try again later")

	ErrTokenNotFound = errors.New("api token not found")
)
