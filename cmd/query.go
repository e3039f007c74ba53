// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sparkql/client/internal/keychain"
	"sparkql/client/internal/logging"
	"sparkql/client/internal/neterrors"
	"sparkql/client/internal/render"
	"sparkql/client/internal/sqlexec"
	"sparkql/client/spark"
)

var (
	queryArgs    []string
	queryFormat  string
	queryMaxRows int
	queryTimeout time.Duration
	queryInto    string
	queryTable   string
	queryMode    string
)

// queryCmd runs one SQL statement and renders or exports the result.
var queryCmd = &cobra.Command{
	Use:   "query SQL",
	Short: "Run one SQL statement with positional parameters",
	Long: `The query command sends one SQL statement to Spark and prints the result. Each '?'
in the statement is bound, in order, to one --arg given as type:value.

Types: tinyint, smallint, int, bigint, float, double, string, boolean, binary (hex),
date (YYYY-MM-DD), timestamp (RFC 3339 or "YYYY-MM-DD hh:mm:ss"), and null or
null:type.

With --table the result is copied into PostgreSQL instead of printed, using --into or
the DSN saved with 'sparkql connect --export-dsn'.`,
	Example: `  sparkql query "SELECT ? AS answer" --arg int:42
  sparkql query "SELECT * FROM sales WHERE region = ? AND day >= ?" --arg string:EU --arg date:2024-01-01
  sparkql query "SELECT * FROM sales" --table analytics.sales --mode replace`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lits, err := parseArgs(queryArgs)
		if err != nil {
			return err
		}

		format := queryFormat
		if !cmd.Flags().Changed("format") {
			format = cfg.Format
		}
		f, err := render.ParseFormat(format)
		if err != nil {
			return err
		}
		maxRows := queryMaxRows
		if !cmd.Flags().Changed("max-rows") {
			maxRows = cfg.MaxRows
		}
		timeout := queryTimeout
		if !cmd.Flags().Changed("timeout") {
			timeout = cfg.Timeout
		}

		var export *exportTarget
		if queryTable != "" {
			export, err = resolveExport()
			if err != nil {
				return err
			}
		}

		ctx := cmd.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		remote, _ := resolveRemote()
		s, err := connectSession(ctx, remote)
		if err != nil {
			return err
		}
		defer s.Close()

		rs, err := runQuery(ctx, s, args[0], lits)
		if err != nil {
			return err
		}
		defer rs.Release()

		if export != nil {
			return export.run(ctx, rs)
		}
		return printResult(os.Stdout, f, rs, maxRows)
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringArrayVarP(&queryArgs, "arg", "a", nil, "Positional parameter as type:value (repeatable)")
	queryCmd.Flags().StringVarP(&queryFormat, "format", "f", "table", "Output format: table, plain, json or csv")
	queryCmd.Flags().IntVar(&queryMaxRows, "max-rows", 1000, "Rows shown by table formats (0 for all)")
	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", 0, "Cancel the query after this long (0 for no limit)")
	queryCmd.Flags().StringVar(&queryInto, "into", "", "PostgreSQL DSN to export into (default: saved export DSN)")
	queryCmd.Flags().StringVar(&queryTable, "table", "", "Export the result into this PostgreSQL table instead of printing it")
	queryCmd.Flags().StringVar(&queryMode, "mode", "", "Export mode: append, create or replace (default from config)")
}

func runQuery(ctx context.Context, s *spark.Session, sql string, lits []spark.Literal) (*spark.ResultSet, error) {
	stop := startSpinner("running query")
	defer stop()
	return s.Query(sql).BindAll(lits...).Execute(ctx)
}

func printResult(w io.Writer, f render.Format, rs *spark.ResultSet, maxRows int) error {
	shown, err := render.Write(w, f, rs.Schema(), rs.Batches(), maxRows)
	if err != nil {
		return err
	}
	if f == render.Table || f == render.Plain {
		fmt.Fprintln(w, pterm.Gray(render.Summary(shown, rs.NumRows())))
	}
	return nil
}

type exportTarget struct {
	dsn  string
	opts sqlexec.Options
}

func resolveExport() (*exportTarget, error) {
	modeName := queryMode
	if modeName == "" {
		modeName = cfg.ExportMode
	}
	mode, err := sqlexec.ParseMode(modeName)
	if err != nil {
		return nil, err
	}

	target := queryInto
	if target == "" {
		store, err := keychain.Default()
		if err != nil {
			return nil, fmt.Errorf("no --into given and the keychain is unavailable: %w", err)
		}
		target, err = store.LoadExportDSN()
		if errors.Is(err, keychain.ErrNotFound) {
			printWarning("No export database configured")
			printHint("Pass --into postgres://... or run: sparkql connect --export-dsn")
			return nil, reportedError{err}
		}
		if err != nil {
			return nil, err
		}
	}
	return &exportTarget{dsn: target, opts: sqlexec.Options{Table: queryTable, Mode: mode}}, nil
}

func (t *exportTarget) run(ctx context.Context, rs *spark.ResultSet) error {
	exp, err := sqlexec.Connect(ctx, t.dsn, logger)
	if err != nil {
		return reportedError{neterrors.Present(err, "connecting to the export database", logging.Mask(t.dsn))}
	}
	defer exp.Close()

	stop := startSpinner("copying rows into " + t.opts.Table)
	n, err := exp.Export(ctx, rs.Schema(), rs.Batches(), t.opts)
	stop()
	if err != nil {
		return fmt.Errorf("export into %s: %w", t.opts.Table, err)
	}
	printSuccess("Copied %d rows into %s", n, t.opts.Table)
	return nil
}
