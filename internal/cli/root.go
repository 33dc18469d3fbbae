// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cli implements the davx command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information (set by build flags)
var (
	version = "dev"
	commit  = "none"
)

// Execute runs the davx command with the process arguments.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "davx",
		Short: "Robust WebDAV and OCS client",
		Long: `davx - Robust WebDAV and OCS client

Executes WebDAV and OCS requests against a file sync server, following
redirects and falling back to IPv4 as needed, and prints the classified
result. Settings are read from DAVX_ environment variables and may be
overridden with flags.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("base-url", "", "Server base URL (overrides DAVX_BASE_URL)")
	root.PersistentFlags().String("user", "", "Account user name (overrides DAVX_USER)")
	root.PersistentFlags().Duration("timeout", 0, "Per-attempt timeout (overrides DAVX_TIMEOUT)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides DAVX_LOG_LEVEL)")
	root.PersistentFlags().Bool("no-follow", false, "Do not follow redirects")

	root.AddCommand(
		newVersionCmd(),
		newExecCmd(),
		newPropfindCmd(),
		newMkcolCmd(),
		newTransferCmd("move"),
		newTransferCmd("copy"),
		newGetCmd(),
		newPutCmd(),
		newDeleteCmd(),
		newOCSCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "davx %s (commit: %s)\n", version, commit)
		},
	}
}
