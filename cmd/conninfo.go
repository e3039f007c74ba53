// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sparkql/client/internal/dsn"
	"sparkql/client/internal/keychain"
	"sparkql/client/internal/logging"
)

// conninfoCmd displays the connection string sparkql would use, with secrets masked.
var conninfoCmd = &cobra.Command{
	Use:   "conninfo",
	Short: "Show the current Spark Connect connection",
	Long: `The conninfo command displays the connection string sparkql would use and where it
was found. Tokens, authorization headers and passwords are replaced with ***.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		remote, source := resolveRemote()
		pterm.Printf("Using connection from the %s\n\n", source)

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Spark Connect")).
			WithPadding(1).
			Println(describeRemote(remote))
		pterm.Println()

		if store, err := keychain.Default(); err == nil {
			if exp, err := store.LoadExportDSN(); err == nil {
				pterm.DefaultBox.
					WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Export Database")).
					WithPadding(1).
					Println(logging.Mask(exp))
				pterm.Println()
			}
		}

		pterm.Println("To update this connection, run: sparkql connect")
		pterm.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(conninfoCmd)
}

// describeRemote renders the masked connection string followed by its parsed
// settings.
func describeRemote(remote string) string {
	var b strings.Builder
	b.WriteString(logging.Mask(remote))

	c, err := dsn.ParseSpark(remote)
	if err != nil {
		fmt.Fprintf(&b, "\n\n%s", pterm.Red(logging.Mask(err.Error())))
		return b.String()
	}
	fmt.Fprintf(&b, "\n\nEndpoint:  %s", c.Address())
	fmt.Fprintf(&b, "\nTLS:       %t", c.UseSSL)
	fmt.Fprintf(&b, "\nToken:     %s", yesNo(c.Token != ""))
	if c.UserID != "" {
		fmt.Fprintf(&b, "\nUser:      %s", c.UserID)
	}
	if c.SessionID != "" {
		fmt.Fprintf(&b, "\nSession:   %s", c.SessionID)
	}
	if len(c.Headers) > 0 {
		fmt.Fprintf(&b, "\nHeaders:   %d", len(c.Headers))
	}
	return b.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
