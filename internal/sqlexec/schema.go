// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TableInfo lists the columns of a table.
type TableInfo struct {
	TableName string
	Columns   map[string]string // column name -> data_type
}

// Missing returns the names in cols the table does not have.
func (ti *TableInfo) Missing(cols []string) []string {
	var out []string
	for _, c := range cols {
		if _, ok := ti.Columns[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// querier is satisfied by pgx.Tx and *pgxpool.Conn.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SchemaInspector caches table column metadata from information_schema.
type SchemaInspector struct {
	pool  *pgxpool.Pool
	cache map[string]*TableInfo
	mu    sync.RWMutex
}

// NewSchemaInspector creates a new SchemaInspector with the given connection pool.
func NewSchemaInspector(pool *pgxpool.Pool) *SchemaInspector {
	return &SchemaInspector{pool: pool, cache: make(map[string]*TableInfo)}
}

// Columns returns the columns of table, querying through q on a cache miss. A table
// that does not exist is an error.
func (si *SchemaInspector) Columns(ctx context.Context, q querier, table string) (*TableInfo, error) {
	si.mu.RLock()
	if info, ok := si.cache[table]; ok {
		si.mu.RUnlock()
		return info, nil
	}
	si.mu.RUnlock()

	ident := parseTableName(table)
	rows, err := q.Query(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, ident[0], ident[1])
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	info := &TableInfo{TableName: table, Columns: map[string]string{}}
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, err
		}
		info.Columns[name] = typ
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(info.Columns) == 0 {
		return nil, fmt.Errorf("table %s does not exist", ident.Sanitize())
	}

	si.mu.Lock()
	si.cache[table] = info
	si.mu.Unlock()
	return info, nil
}

// Forget drops the cached entry for table.
func (si *SchemaInspector) Forget(table string) {
	si.mu.Lock()
	defer si.mu.Unlock()
	delete(si.cache, table)
}

// PostgresType returns the column type used to store values of t.
func PostgresType(t arrow.DataType) (string, error) {
	switch t.ID() {
	case arrow.NULL, arrow.STRING, arrow.LARGE_STRING:
		return "text", nil
	case arrow.BOOL:
		return "boolean", nil
	case arrow.INT8, arrow.INT16, arrow.UINT8:
		return "smallint", nil
	case arrow.INT32, arrow.UINT16:
		return "integer", nil
	case arrow.INT64, arrow.UINT32:
		return "bigint", nil
	case arrow.UINT64:
		return "numeric(20,0)", nil
	case arrow.FLOAT32:
		return "real", nil
	case arrow.FLOAT64:
		return "double precision", nil
	case arrow.BINARY, arrow.LARGE_BINARY:
		return "bytea", nil
	case arrow.DATE32:
		return "date", nil
	case arrow.TIMESTAMP:
		if t.(*arrow.TimestampType).TimeZone != "" {
			return "timestamptz", nil
		}
		return "timestamp", nil
	case arrow.DECIMAL128:
		d := t.(*arrow.Decimal128Type)
		return fmt.Sprintf("numeric(%d,%d)", d.Precision, d.Scale), nil
	case arrow.LIST, arrow.LARGE_LIST, arrow.MAP, arrow.STRUCT:
		return "jsonb", nil
	}
	return "", fmt.Errorf("cannot export column type %s", t)
}

// CreateTableSQL returns CREATE TABLE IF NOT EXISTS for schema.
func CreateTableSQL(table string, schema *arrow.Schema) (string, error) {
	if schema.NumFields() == 0 {
		return "", fmt.Errorf("cannot create %s: result has no columns", table)
	}
	defs := make([]string, schema.NumFields())
	for i, f := range schema.Fields() {
		typ, err := PostgresType(f.Type)
		if err != nil {
			return "", fmt.Errorf("column %q: %w", f.Name, err)
		}
		def := pgx.Identifier{f.Name}.Sanitize() + " " + typ
		if !f.Nullable {
			def += " NOT NULL"
		}
		defs[i] = def
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		parseTableName(table).Sanitize(), strings.Join(defs, ", ")), nil
}
