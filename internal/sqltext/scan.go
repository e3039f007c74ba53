// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sqltext provides lexical helpers over SQL statement text.
// It is not a parser: it only tells quoted text and comments apart from the rest of a
// statement so that positional placeholders and statement separators can be located.
package sqltext

import "strings"

// Placeholder is the positional parameter marker understood by Spark SQL.
const Placeholder = '?'

// Info describes the lexical features of a statement.
type Info struct {
	// Placeholders is the number of positional markers outside quotes and comments.
	Placeholders int
	// Statements is the number of non-empty statements separated by ';'.
	Statements int
	// Unterminated is set when a quote or block comment is still open at the end.
	Unterminated bool
}

// Scan walks the statement once and reports its lexical features.
func Scan(sql string) Info {
	var info Info
	pending := false // non-blank text seen since the last ';'

	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			end := skipQuoted(sql, i, c)
			if end < 0 {
				info.Unterminated = true
				pending = true
				i = len(sql)
				continue
			}
			pending = true
			i = end
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			nl := strings.IndexByte(sql[i:], '\n')
			if nl < 0 {
				i = len(sql)
				continue
			}
			i += nl
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				info.Unterminated = true
				i = len(sql)
				continue
			}
			i += end + 3
		case c == Placeholder:
			info.Placeholders++
			pending = true
		case c == ';':
			if pending {
				info.Statements++
			}
			pending = false
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
		default:
			pending = true
		}
	}
	if pending {
		info.Statements++
	}
	return info
}

// CountPlaceholders returns the number of positional markers in sql.
func CountPlaceholders(sql string) int {
	return Scan(sql).Placeholders
}

// skipQuoted returns the index of the closing quote matching sql[start], or -1.
// A doubled quote or a backslash escape does not close the literal.
func skipQuoted(sql string, start int, quote byte) int {
	for i := start + 1; i < len(sql); i++ {
		switch sql[i] {
		case '\\':
			if quote != '`' {
				i++
			}
		case quote:
			if i+1 < len(sql) && sql[i+1] == quote {
				i++
				continue
			}
			return i
		}
	}
	return -1
}
