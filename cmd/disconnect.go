// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sparkql/client/internal/config"
	"sparkql/client/internal/keychain"
)

// disconnectCmd removes every saved connection.
var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Remove saved connection strings and export credentials",
	Long: `The disconnect command clears the saved Spark Connect connection string from the
OS keychain and the configuration file, and removes the saved export DSN.

Connections given with --remote or SPARK_REMOTE are not affected.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if store, err := keychain.Default(); err == nil {
			if err := store.Clear(); err != nil {
				logger.Debug("clear keychain", "err", err)
			}
		} else {
			logger.Debug("keychain unavailable", "err", err)
		}

		if cfg.Remote != "" {
			cfg.Remote = ""
			if err := config.Save(cfg); err != nil {
				return err
			}
		}

		fmt.Println("✅ Saved connections have been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(disconnectCmd)
}
