// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"sparkql/client/internal/render"
	"sparkql/client/spark"
	"sparkql/client/transport/transportmock"
)

var answerSchema = arrow.NewSchema([]arrow.Field{
	{Name: "answer", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
}, nil)

func newTestShell(t *testing.T) (*shell, *transportmock.Mock, *bytes.Buffer) {
	t.Helper()
	b := array.NewRecordBuilder(memory.DefaultAllocator, answerSchema)
	b.Field(0).(*array.Int32Builder).Append(42)
	rec := b.NewRecord()
	b.Release()
	t.Cleanup(rec.Release)

	m := transportmock.New(transportmock.Config{Scripts: [][]transportmock.Step{{
		transportmock.Schema(answerSchema),
		transportmock.Batch(rec),
		transportmock.End(),
	}}})
	s, err := spark.Connect(context.Background(), "sc://localhost:15002", spark.WithTransport(m))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })

	var out bytes.Buffer
	return &shell{sess: s, out: &out, format: render.JSON, base: context.Background()}, m, &out
}

func TestStatementComplete(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"SELECT 1;", true},
		{"SELECT 1", false},
		{"SELECT 1;  \n", true},
		{"SELECT ';", false},
		{"SELECT 1 /* ;", false},
		{"SELECT 'a;b';", true},
	}
	for _, tt := range tests {
		if got := statementComplete(tt.text); got != tt.want {
			t.Errorf("statementComplete(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestParsePairs(t *testing.T) {
	pairs, err := parsePairs([]string{"spark.sql.shuffle.partitions=8", "a=b=c"})
	if err != nil {
		t.Fatal(err)
	}
	if pairs["spark.sql.shuffle.partitions"] != "8" || pairs["a"] != "b=c" {
		t.Errorf("parsePairs() = %v", pairs)
	}
	for _, bad := range [][]string{nil, {"novalue"}, {"=x"}} {
		if _, err := parsePairs(bad); err == nil {
			t.Errorf("parsePairs(%v) succeeded, want error", bad)
		}
	}
}

func TestShellMultiLineStatement(t *testing.T) {
	sh, m, out := newTestShell(t)

	if sh.feed("SELECT 42") {
		t.Fatal("shell quit on a statement line")
	}
	if got := len(m.Submissions()); got != 0 {
		t.Fatalf("submitted %d plans before ';'", got)
	}
	sh.feed("AS answer;")
	if got := len(m.Submissions()); got != 1 {
		t.Fatalf("submitted %d plans, want 1", got)
	}
	if !strings.Contains(out.String(), `"answer":42`) {
		t.Errorf("output = %q", out.String())
	}
}

func TestShellBindAppliesToNextStatementOnly(t *testing.T) {
	sh, m, out := newTestShell(t)

	sh.feed(`\bind int:42`)
	if !strings.Contains(out.String(), "42:int") {
		t.Errorf("bind echo = %q", out.String())
	}
	sh.feed("SELECT ?;")
	if got := len(m.Submissions()); got != 1 {
		t.Fatalf("submitted %d plans, want 1", got)
	}

	// The binding is consumed; a second placeholder statement is malformed.
	out.Reset()
	sh.feed("SELECT ?;")
	if got := len(m.Submissions()); got != 1 {
		t.Errorf("submitted %d plans, want 1", got)
	}
	if !strings.Contains(out.String(), "placeholders") {
		t.Errorf("output = %q", out.String())
	}
}

func TestShellMetaCommands(t *testing.T) {
	sh, _, out := newTestShell(t)

	sh.feed(`\format plain`)
	if sh.format != render.Plain {
		t.Errorf("format = %s, want plain", sh.format)
	}

	sh.feed(`\set spark.sql.ansi.enabled=true`)
	out.Reset()
	sh.feed(`\conf spark.sql.ansi.enabled`)
	if !strings.Contains(out.String(), "spark.sql.ansi.enabled = true") {
		t.Errorf("conf output = %q", out.String())
	}

	out.Reset()
	sh.feed(`\nope`)
	if !strings.Contains(out.String(), "Unknown command") {
		t.Errorf("output = %q", out.String())
	}

	if !sh.feed(`\q`) {
		t.Error(`\q did not quit`)
	}
}
