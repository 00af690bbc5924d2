// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tator-io/tator/internal/api"
)

func newTokenCmd() *cobra.Command {
	var (
		server   string
		username string
		password string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Log in to a running server and print a login token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" || password == "" {
				return errors.New("--username and --password are required")
			}
			body, err := json.Marshal(map[string]string{"username": username, "password": password})
			if err != nil {
				return err
			}
			url := strings.TrimRight(server, "/") + api.BasePath + "/auth/token"
			client := &http.Client{Timeout: 30 * time.Second}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				var e api.ErrorResponse
				if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error != nil {
					return fmt.Errorf("login failed: %s", e.Error.Message)
				}
				return fmt.Errorf("login failed: %s", resp.Status)
			}
			var login api.LoginResponse
			if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
				return fmt.Errorf("decode login response: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), login.Token)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&server, "server", "http://localhost:8000", "base URL of the server")
	f.StringVar(&username, "username", "", "login name")
	f.StringVar(&password, "password", "", "password")
	return cmd
}
