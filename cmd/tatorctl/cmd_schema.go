// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tator-io/tator/internal/api"
	"github.com/tator-io/tator/internal/openapi"
)

func newSchemaCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the Swagger document of the REST API",
		Long: `Print the Swagger 2.0 document generated from the route table.

The document is the same one the server serves at /api/v1/schema, built
without a store or credentials.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := api.Document(version)
			if err != nil {
				return err
			}
			rendered, err := openapi.Render(doc)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(append(rendered.JSON(), '\n'))
				return err
			}
			if err := os.WriteFile(out, rendered.JSON(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the document to a file instead of stdout")
	return cmd
}
