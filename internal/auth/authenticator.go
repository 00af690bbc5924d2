// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tator-io/tator/internal/logging"
	"github.com/tator-io/tator/internal/metrics"
	"github.com/tator-io/tator/internal/models"
	"github.com/tator-io/tator/internal/store"
)

// Users is the part of the store the authenticator reads and writes.
type Users interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
}

// Authenticator resolves credentials to users.
type Authenticator struct {
	users   Users
	jwt     *JWTManager
	tokens  *TokenStore
	limiter *LoginLimiter
}

func NewAuthenticator(users Users, jwt *JWTManager, tokens *TokenStore, limiter *LoginLimiter) *Authenticator {
	if limiter == nil {
		limiter = NewLoginLimiter(0, 1)
	}
	return &Authenticator{users: users, jwt: jwt, tokens: tokens, limiter: limiter}
}

// Tokens returns the API token store.
func (a *Authenticator) Tokens() *TokenStore { return a.tokens }

// Login checks a username and password and returns a signed login token.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	if !a.limiter.Allow(username) {
		metrics.LoginAttempts.WithLabelValues("throttled").Inc()
		return "", time.Time{}, ErrThrottled
	}
	u, err := a.users.GetUserByUsername(ctx, username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return "", time.Time{}, ErrInvalidCredentials
	case err != nil:
		return "", time.Time{}, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		logging.Ctx(ctx).Info().Str("username", username).Msg("Rejected login with a wrong password")
		return "", time.Time{}, ErrInvalidCredentials
	}
	token, expires, err := a.jwt.Issue(u)
	if err != nil {
		return "", time.Time{}, err
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return token, expires, nil
}

// Authenticate resolves an Authorization header value of the form
// "Token <key>" or "Bearer <jwt>".
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*models.User, error) {
	scheme, credential, ok := strings.Cut(strings.TrimSpace(header), " ")
	credential = strings.TrimSpace(credential)
	if !ok || credential == "" {
		return nil, ErrUnauthenticated
	}

	var id int64
	switch strings.ToLower(scheme) {
	case "token":
		t, err := a.tokens.Lookup(ctx, credential)
		if errors.Is(err, ErrTokenNotFound) {
			return nil, ErrUnauthenticated
		}
		if err != nil {
			return nil, err
		}
		id = t.User
	case "bearer":
		claims, err := a.jwt.Validate(credential)
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).Msg("Rejected bearer token")
			return nil, ErrUnauthenticated
		}
		if id, err = claims.UserID(); err != nil {
			return nil, ErrUnauthenticated
		}
	default:
		return nil, ErrUnauthenticated
	}

	u, err := a.users.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	return u, err
}

// CreateUser hashes password and stores u.
func (a *Authenticator) CreateUser(ctx context.Context, u *models.User, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return a.users.CreateUser(ctx, u)
}

// Profile holds the user fields a user may change. Nil fields are kept.
type Profile struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// UpdateProfile applies p to the user with the given id and returns the
// stored result.
func (a *Authenticator) UpdateProfile(ctx context.Context, id int64, p Profile) (*models.User, error) {
	u, err := a.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, f := range []struct {
		dst *string
		src *string
	}{{&u.FirstName, p.FirstName}, {&u.LastName, p.LastName}, {&u.Email, p.Email}} {
		if f.src != nil {
			*f.dst = strings.TrimSpace(*f.src)
		}
	}
	if err := a.users.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Int64("user", id).Msg("User profile updated")
	return u, nil
}

// Bootstrap creates the superuser named in configuration unless a user
// with that name exists. Empty credentials skip it.
func (a *Authenticator) Bootstrap(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := a.users.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err := a.CreateUser(ctx, &models.User{Username: username, IsSuperuser: true}, password); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	logging.Info().Str("username", username).Msg("Created admin user")
	return nil
}
