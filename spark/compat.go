// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package spark

import (
	"fmt"

	"github.com/hashicorp/go-version"
)

// MinServerVersion is the oldest Spark release that accepts positional parameters.
const MinServerVersion = "3.5.0"

var minServer = version.Must(version.NewVersion(MinServerVersion))

// SupportsPositionalArgs reports whether a server reporting v accepts '?'
// placeholders. Pre-release suffixes are ignored, so "4.0.0-preview1" counts as 4.0.0.
func SupportsPositionalArgs(v string) (bool, error) {
	parsed, err := version.NewVersion(v)
	if err != nil {
		return false, fmt.Errorf("invalid server version %q: %w", v, err)
	}
	return !parsed.Core().LessThan(minServer), nil
}
