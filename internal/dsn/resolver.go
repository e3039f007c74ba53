// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"strings"
)

// DetectDBType detects the endpoint type from the connection string scheme
func DetectDBType(dsn string) DBType {
	lower := strings.ToLower(strings.TrimSpace(dsn))

	switch {
	case strings.HasPrefix(lower, "sc://"):
		return DBTypeSpark
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DBTypePostgreSQL
	}
	return DBTypeUnknown
}

// ResolverFor returns the resolver for dsn's scheme.
func ResolverFor(dsn string) (Resolver, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, NewParseError(dsn, "empty connection string", "provide sc://host:port or postgres://user@host/db")
	}
	switch DetectDBType(dsn) {
	case DBTypeSpark:
		return NewSparkResolver(), nil
	case DBTypePostgreSQL:
		return NewPostgreSQLResolver(), nil
	}
	return nil, NewParseError(dsn, "unknown connection string scheme", "use sc:// or postgres://")
}

// Parse parses a connection string and returns its normalized form
func Parse(dsn string) (string, error) {
	resolver, err := ResolverFor(dsn)
	if err != nil {
		return "", err
	}
	info, err := resolver.Parse(dsn)
	if err != nil {
		return "", err
	}
	return resolver.Normalize(info)
}

// Validate validates a connection string without normalizing it
func Validate(dsn string) error {
	resolver, err := ResolverFor(dsn)
	if err != nil {
		return err
	}
	return resolver.Validate(dsn)
}

// ParseInfo parses a connection string and returns its details
func ParseInfo(dsn string) (*DSNInfo, error) {
	resolver, err := ResolverFor(dsn)
	if err != nil {
		return nil, err
	}
	return resolver.Parse(dsn)
}
