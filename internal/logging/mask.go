// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging holds the CLI's presentation helpers: secret masking, error
// formatting for the terminal, and the slog handler that routes library diagnostics
// through pterm.
//
// Anything that may echo a connection string goes through Mask first, so tokens in
// sc:// strings and passwords in export DSNs never reach the terminal or a log.
package logging

import (
	"regexp"
	"strings"
)

var (
	rePassword = regexp.MustCompile(`(?i)(password=)([^\s;&]+)`)
	reToken    = regexp.MustCompile(`(?i)(token=|bearer\s+)([^\s;&]+)`)
	reDSNPass  = regexp.MustCompile(`(?i)(postgres(?:ql)?://)([^:/@\s]+):([^@\s]+)(@)`)
	reAuthHdr  = regexp.MustCompile(`(?i)(authorization[=:]\s*)((?:bearer\s+)?[^\s;&]+)`)
)

// Mask replaces secret values in s with "***". Postgres DSN credentials become "*:*".
func Mask(s string) string {
	out := s
	out = reAuthHdr.ReplaceAllString(out, "$1***")
	out = rePassword.ReplaceAllString(out, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reDSNPass.ReplaceAllString(out, "$1*:*$4")
	for _, k := range []string{"PGPASSWORD", "SPARK_TOKEN"} {
		out = strings.ReplaceAll(out, k+"=", k+"=***")
	}
	return out
}
