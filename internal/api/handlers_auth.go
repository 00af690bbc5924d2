// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package api

import (
	"net/http"
	"time"

	"github.com/tator-io/tator/internal/auth"
	"github.com/tator-io/tator/internal/logging"
)

// LoginResponse carries a login token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreatedAPIToken is an API token together with its key. The key is not
// stored and cannot be retrieved later.
type CreatedAPIToken struct {
	Key string `json:"key"`
	auth.APIToken
}

// createLoginToken exchanges credentials for a login token.
//
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} LoginResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/token [post]
func (h *Handler) createLoginToken(_ http.ResponseWriter, c *call) (any, error) {
	token, expires, err := h.auth.Login(c.r.Context(), c.values.String("username"), c.values.String("password"))
	if err != nil {
		return nil, err
	}
	return LoginResponse{Token: token, ExpiresAt: expires}, nil
}

func (h *Handler) whoami(_ http.ResponseWriter, c *call) (any, error) {
	return c.user, nil
}

func (h *Handler) listAPITokens(_ http.ResponseWriter, c *call) (any, error) {
	tokens, err := h.auth.Tokens().List(c.r.Context(), c.user.ID)
	if err != nil {
		return nil, err
	}
	if tokens == nil {
		tokens = []auth.APIToken{}
	}
	return tokens, nil
}

func (h *Handler) createAPIToken(_ http.ResponseWriter, c *call) (any, error) {
	name := c.values.String("name")
	if name == "" {
		return nil, badRequest("token name must not be empty")
	}
	key, tok, err := h.auth.Tokens().Create(c.r.Context(), c.user.ID, name)
	if err != nil {
		return nil, err
	}
	logging.Ctx(c.r.Context()).Info().Int64("user", c.user.ID).Str("token", tok.Name).Msg("API token created")
	return CreatedAPIToken{Key: key, APIToken: *tok}, nil
}

func (h *Handler) deleteAPIToken(_ http.ResponseWriter, c *call) (any, error) {
	if err := h.auth.Tokens().Revoke(c.r.Context(), c.user.ID, c.values.String("digest")); err != nil {
		return nil, err
	}
	return Message{Message: "API token revoked."}, nil
}
