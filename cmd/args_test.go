// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"testing"
)

func TestParseArg(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"int:42", "42:int"},
		{"bigint:42", "42:bigint"},
		{"long:-7", "-7:bigint"},
		{"tinyint:-3", "-3:tinyint"},
		{"smallint:200", "200:smallint"},
		{"double:1.5", "1.5:double"},
		{"float:1.5", "1.5:float"},
		{"string:hello", `"hello":string`},
		{"string:a:b", `"a:b":string`},
		{"string:", `"":string`},
		{"bool:true", "true:boolean"},
		{"BOOLEAN:false", "false:boolean"},
		{"binary:cafe", "X'CAFE':binary"},
		{"binary:0xCAFE", "X'CAFE':binary"},
		{"date:2024-02-29", "2024-02-29:date"},
		{"timestamp:2024-01-02 03:04:05", "2024-01-02 03:04:05:timestamp"},
		{"timestamp:2024-01-02T03:04:05.000006Z", "2024-01-02 03:04:05.000006:timestamp"},
		{"null", "NULL:void"},
		{"null:string", "NULL:string"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			lit, err := parseArg(tt.in)
			if err != nil {
				t.Fatalf("parseArg(%q) error: %v", tt.in, err)
			}
			if got := lit.String(); got != tt.want {
				t.Errorf("parseArg(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseArgErrors(t *testing.T) {
	for _, in := range []string{
		"42",
		"int:abc",
		"int:3000000000",
		"tinyint:200",
		"decimal:1.5",
		"null:widget",
		"date:02/29/2024",
		"timestamp:yesterday",
		"binary:xyz",
	} {
		if _, err := parseArg(in); err == nil {
			t.Errorf("parseArg(%q) succeeded, want error", in)
		}
	}
}

func TestParseArgsKeepsOrder(t *testing.T) {
	lits, err := parseArgs([]string{"string:a", "int:1", "null"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{`"a":string`, "1:int", "NULL:void"}
	for i, l := range lits {
		if l.String() != want[i] {
			t.Errorf("lits[%d] = %s, want %s", i, l, want[i])
		}
	}
}
