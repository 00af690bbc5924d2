// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

/*
Package auth authenticates API requests.

Two credentials are accepted in the Authorization header:

	Authorization: Bearer <jwt>   login token from POST /api/v1/auth/token
	Authorization: Token <key>    long-lived API token

Login tokens are HS256 JWTs whose subject is the user ID. API tokens are
random keys; badger stores their SHA-256 digest, so a leaked database does
not leak usable keys. Passwords are hashed with bcrypt and password logins
are throttled per username with a token bucket.

Permission checks on projects live in package authz.
*/
package auth
