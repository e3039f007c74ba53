// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sparkql/client/internal/logging"
	"sparkql/client/spark"
)

var (
	// Version holds the CLI version information.
	// This value is typically set at build time using -ldflags.
	Version = "0.0.0-dev"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI, client library and server versions",
	Long: `The version command prints the CLI version and the Spark Connect client version.
When a connection is configured it also connects and reports the server's Spark version.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("sparkql %s\nspark connect client %s\n", Version, spark.Version)

		remote, source := resolveRemote()
		if source == sourceDefault && !versionServer {
			return nil
		}

		stop := startSpinner("contacting server")
		s, err := spark.Connect(cmd.Context(), remote, sessionOptions()...)
		stop()
		if err != nil {
			fmt.Println("server  unknown")
			logger.Debug("version check failed", "err", err)
			return nil
		}
		defer s.Close()

		fmt.Printf("server  spark %s\n", s.ServerVersion())
		ok, err := spark.SupportsPositionalArgs(s.ServerVersion())
		if err == nil && !ok {
			pterm.Println()
			pterm.Println(logging.Mask(fmt.Sprintf(
				"⚠️  %s runs Spark %s; '?' parameters need Spark %s or newer.",
				s.Endpoint(), s.ServerVersion(), spark.MinServerVersion)))
		}
		return nil
	},
}

var versionServer bool

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionServer, "server", false, "Contact the default server even when no connection is configured")
}
