// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package auth

import (
	"context"
	"net/http"

	"github.com/tator-io/tator/internal/logging"
	"github.com/tator-io/tator/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// ContextWithUser stores the authenticated user.
func ContextWithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// UserFromContext returns the user stored by Middleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userContextKey).(*models.User)
	return u, ok && u != nil
}

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Middleware rejects requests without valid credentials. Websocket clients
// cannot set headers, so an access_token query parameter is accepted as a
// bearer token when the header is absent.
func (a *Authenticator) Middleware(onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				if t := r.URL.Query().Get("access_token"); t != "" {
					header = "Bearer " + t
				}
			}
			u, err := a.Authenticate(r.Context(), header)
			if err != nil {
				onError(w, r, err)
				return
			}
			ctx := ContextWithUser(r.Context(), u)
			ctx = logging.ContextWithUser(ctx, u.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
