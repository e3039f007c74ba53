// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sqlexec writes query results into PostgreSQL. Batches are streamed with
// COPY inside one transaction, so an export either lands completely or not at all.
//
// Key features include:
//   - Arrow to PostgreSQL type mapping for CREATE TABLE
//   - Column checks against an existing table via information_schema
//   - Nested values (lists, maps, structs) stored as jsonb
package sqlexec

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Mode controls what happens to the target table.
type Mode int

const (
	// Append copies into an existing table.
	Append Mode = iota
	// Create creates the table if it does not exist, then appends.
	Create
	// Replace truncates the table (creating it if needed) before copying.
	Replace
)

// ParseMode maps "append", "create" or "replace" to a Mode. Empty means Create.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "append":
		return Append, nil
	case "create", "":
		return Create, nil
	case "replace":
		return Replace, nil
	}
	return 0, fmt.Errorf("unknown export mode %q (want append, create or replace)", s)
}

// Options configures an export.
type Options struct {
	Table string
	Mode  Mode
}

// Exporter copies Arrow records into PostgreSQL tables.
type Exporter struct {
	// Pool is the PostgreSQL connection pool
	Pool      *pgxpool.Pool
	inspector *SchemaInspector
	logger    *slog.Logger
}

// New creates an Exporter from an existing pgx pool.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exporter{Pool: pool, inspector: NewSchemaInspector(pool), logger: logger}
}

// Connect opens a pool for dsn and pings it.
func Connect(ctx context.Context, dsn string, logger *slog.Logger) (*Exporter, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return New(pool, logger), nil
}

// Close closes the pool.
func (e *Exporter) Close() { e.Pool.Close() }

// Export copies recs, which must all have schema, into opts.Table and returns the
// number of rows written.
func (e *Exporter) Export(ctx context.Context, schema *arrow.Schema, recs []arrow.Record, opts Options) (int64, error) {
	ident := parseTableName(opts.Table)
	cols := make([]string, schema.NumFields())
	for i, f := range schema.Fields() {
		cols[i] = f.Name
	}

	tx, err := e.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) // no-op after commit

	if opts.Mode != Append {
		ddl, err := CreateTableSQL(opts.Table, schema)
		if err != nil {
			return 0, err
		}
		e.logger.Debug("export ddl", "sql", ddl)
		if _, err := tx.Exec(ctx, ddl); err != nil {
			return 0, fmt.Errorf("create %s: %w", ident.Sanitize(), err)
		}
	}
	if opts.Mode == Replace {
		if _, err := tx.Exec(ctx, "TRUNCATE "+ident.Sanitize()); err != nil {
			return 0, fmt.Errorf("truncate %s: %w", ident.Sanitize(), err)
		}
	}

	info, err := e.inspector.Columns(ctx, tx, opts.Table)
	if err != nil {
		return 0, err
	}
	if missing := info.Missing(cols); len(missing) > 0 {
		return 0, fmt.Errorf("table %s has no column(s) %s", ident.Sanitize(), strings.Join(missing, ", "))
	}

	n, err := tx.CopyFrom(ctx, ident, cols, newRecordSource(recs))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", ident.Sanitize(), err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit failed: %w", err)
	}
	e.inspector.Forget(opts.Table)
	e.logger.Debug("export finished", "table", opts.Table, "rows", n)
	return n, nil
}

// parseTableName splits "schema.table" into an identifier. Unqualified names use public.
func parseTableName(name string) pgx.Identifier {
	if s, t, ok := strings.Cut(name, "."); ok {
		return pgx.Identifier{s, t}
	}
	return pgx.Identifier{"public", name}
}
