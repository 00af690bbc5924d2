// Tator - Media Annotation Platform
// Copyright 2026 The Tator Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tator-io/tator

// Command tatorctl administers a Tator deployment: it prints the API schema,
// creates users directly in the store and obtains login tokens from a
// running server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

// configPath is shared by commands that open the store.
var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tatorctl",
		Short:         "Administer a Tator deployment",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (default: search the usual locations)")
	root.AddCommand(newSchemaCmd(), newUserCmd(), newTokenCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
