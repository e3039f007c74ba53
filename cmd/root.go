// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for sparkql. It implements
// subcommands for saving a Spark Connect connection, running parameterized SQL
// queries, an interactive shell and exporting results to PostgreSQL, using the Cobra
// CLI framework and pterm for terminal output.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"sparkql/client/internal/config"
	"sparkql/client/internal/dsn"
	errs "sparkql/client/internal/errors"
	"sparkql/client/internal/keychain"
	"sparkql/client/internal/logging"
	"sparkql/client/internal/neterrors"
	"sparkql/client/spark"
)

var (
	flagRemote  string
	flagVerbose bool

	cfg    config.Config
	logger = slog.New(slog.DiscardHandler)
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sparkql",
	Short: "Run SQL against Apache Spark over Spark Connect",
	Long: `sparkql sends SQL statements to a remote Spark cluster through the Spark Connect
protocol and renders the Arrow results in the terminal, or copies them into PostgreSQL.

The connection string has the form sc://host:port/;token=...;use_ssl=true and is taken
from --remote, SPARK_REMOTE, the saved configuration or the OS keychain, in that order.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		level := cfg.LogLevel
		if flagVerbose {
			level = "debug"
		}
		logger = logging.NewLogger(os.Stderr, level)
		return nil
	},
}

// Execute runs the CLI application. Interrupts cancel the running command's context.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRemote, "remote", "", "Spark Connect connection string (sc://host:port/;k=v)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// reportedError marks an error whose explanation has already been printed.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func reportError(err error) {
	var rep reportedError
	switch {
	case errors.As(err, &rep):
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "Canceled.")
	case errs.KindOf(err) != "":
		logging.PresentFailure(err)
	default:
		fmt.Fprintln(os.Stderr, logging.PresentError("Error", err))
	}
}

type remoteSource int

const (
	sourceFlag remoteSource = iota
	sourceEnv
	sourceConfig
	sourceKeychain
	sourceDefault
)

func (s remoteSource) String() string {
	switch s {
	case sourceFlag:
		return "--remote flag"
	case sourceEnv:
		return "SPARK_REMOTE environment variable"
	case sourceConfig:
		return "configuration file"
	case sourceKeychain:
		return "OS keychain"
	}
	return "built-in default"
}

// resolveRemote picks the connection string to use and reports where it came from.
func resolveRemote() (string, remoteSource) {
	if s := strings.TrimSpace(flagRemote); s != "" {
		return s, sourceFlag
	}
	if s := strings.TrimSpace(os.Getenv("SPARK_REMOTE")); s != "" {
		return s, sourceEnv
	}
	if s := strings.TrimSpace(cfg.Remote); s != "" {
		return s, sourceConfig
	}
	if store, err := keychain.Default(); err == nil {
		if s, err := store.LoadRemote(); err == nil {
			return s, sourceKeychain
		}
	} else {
		logger.Debug("keychain unavailable", "err", err)
	}
	return dsn.Remote(), sourceDefault
}

func sessionOptions() []spark.Option {
	opts := []spark.Option{spark.WithLogger(logger), spark.WithTags("sparkql-cli")}
	if cfg.ValidatePlans {
		opts = append(opts, spark.WithPlanValidation(true))
	}
	return opts
}

// connectSession opens a session to remote, explaining network failures in terms of
// the endpoint.
func connectSession(ctx context.Context, remote string) (*spark.Session, error) {
	stop := startSpinner("connecting")
	s, err := spark.Connect(ctx, remote, sessionOptions()...)
	stop()
	if err == nil {
		return s, nil
	}
	if spark.IsTransport(err) && neterrors.Classify(err) != neterrors.Other {
		host := remote
		if c, perr := dsn.ParseSpark(remote); perr == nil {
			host = c.Address()
		}
		return nil, reportedError{neterrors.Present(err, "connecting", host)}
	}
	return nil, err
}
