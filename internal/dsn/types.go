// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn parses the connection strings the CLI and library accept: sc:// strings
// for Spark Connect servers and postgres:// strings for the export sink.
package dsn

import "fmt"

// DBType is the kind of endpoint a connection string points at
type DBType string

const (
	DBTypeSpark      DBType = "spark"
	DBTypePostgreSQL DBType = "postgresql"
	DBTypeUnknown    DBType = "unknown"
)

// DSNInfo is the endpoint-neutral view of a parsed connection string. For Spark
// strings User is the user_id and Password the token.
type DSNInfo struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Params   map[string]string
	Original string
}

// String returns the connection string as given
func (d *DSNInfo) String() string {
	return d.Original
}

// Resolver parses, validates and normalizes one kind of connection string
type Resolver interface {
	Parse(dsn string) (*DSNInfo, error)
	Normalize(info *DSNInfo) (string, error)
	Validate(dsn string) error
}

// ParseError represents an error that occurred while parsing a connection string
type ParseError struct {
	DSN    string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid connection string: %s (hint: %s)", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid connection string: %s", e.Reason)
}

// NewParseError creates a new ParseError
func NewParseError(dsn, reason, hint string) *ParseError {
	return &ParseError{
		DSN:    dsn,
		Reason: reason,
		Hint:   hint,
	}
}
