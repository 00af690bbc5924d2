// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tator-io/tator/internal/auth"
	"github.com/tator-io/tator/internal/config"
	"github.com/tator-io/tator/internal/database"
	"github.com/tator-io/tator/internal/models"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var (
		u         models.User
		password  string
		superuser bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user in the configured database",
		Long: `Create a user directly in the DuckDB database named by the configuration.

Stop the server first: DuckDB allows a single writer process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if u.Username == "" || password == "" {
				return errors.New("--username and --password are required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.Driver == "memory" {
				return errors.New("the memory store cannot be administered from another process")
			}
			db, err := database.New(&cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if u.PasswordHash, err = auth.HashPassword(password); err != nil {
				return err
			}
			u.IsSuperuser = superuser
			if err := db.CreateUser(cmd.Context(), &u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d)\n", u.Username, u.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&u.Username, "username", "", "login name")
	f.StringVar(&password, "password", "", "initial password")
	f.StringVar(&u.Email, "email", "", "email address")
	f.StringVar(&u.FirstName, "first-name", "", "first name")
	f.StringVar(&u.LastName, "last-name", "", "last name")
	f.BoolVar(&superuser, "superuser", false, "grant every permission on every project")
	return cmd
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}
