// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqltext

import "testing"

func TestScan(t *testing.T) {
	tests := []struct {
		name             string
		sql              string
		wantPlaceholders int
		wantStatements   int
		wantUnterminated bool
	}{
		{name: "no placeholders", sql: "SELECT 1", wantStatements: 1},
		{name: "two placeholders", sql: "SELECT ? AS id, ? AS text", wantPlaceholders: 2, wantStatements: 1},
		{name: "placeholder in single quotes", sql: "SELECT '?' AS q, ? AS v", wantPlaceholders: 1, wantStatements: 1},
		{name: "placeholder in double quotes", sql: `SELECT "a?b" FROM t WHERE x = ?`, wantPlaceholders: 1, wantStatements: 1},
		{name: "placeholder in backticks", sql: "SELECT `c?` FROM t", wantStatements: 1},
		{name: "escaped quote", sql: `SELECT 'it\'s ?' , ?`, wantPlaceholders: 1, wantStatements: 1},
		{name: "doubled quote", sql: "SELECT 'it''s ?', ?", wantPlaceholders: 1, wantStatements: 1},
		{name: "line comment", sql: "SELECT ? -- why?\n, ?", wantPlaceholders: 2, wantStatements: 1},
		{name: "block comment", sql: "SELECT /* ? */ ?", wantPlaceholders: 1, wantStatements: 1},
		{name: "trailing semicolon", sql: "SELECT 1;  ", wantStatements: 1},
		{name: "two statements", sql: "SELECT 1; SELECT 2", wantStatements: 2},
		{name: "semicolon in literal", sql: "SELECT ';'", wantStatements: 1},
		{name: "only comment", sql: "-- nothing", wantStatements: 0},
		{name: "empty", sql: "   ", wantStatements: 0},
		{name: "unterminated quote", sql: "SELECT 'abc", wantStatements: 1, wantUnterminated: true},
		{name: "unterminated comment", sql: "SELECT 1 /* abc", wantStatements: 1, wantUnterminated: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scan(tt.sql)
			if got.Placeholders != tt.wantPlaceholders {
				t.Errorf("Placeholders = %d, want %d", got.Placeholders, tt.wantPlaceholders)
			}
			if got.Statements != tt.wantStatements {
				t.Errorf("Statements = %d, want %d", got.Statements, tt.wantStatements)
			}
			if got.Unterminated != tt.wantUnterminated {
				t.Errorf("Unterminated = %v, want %v", got.Unterminated, tt.wantUnterminated)
			}
		})
	}
}
