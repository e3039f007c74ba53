// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package render prints query results. Formats:
//
//	table  boxed pterm table (default)
//	plain  borderless columns, psql style
//	json   one JSON object per row
//	csv    RFC 4180 with a header row
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/olekukonko/tablewriter"
	"github.com/pterm/pterm"
)

// Format names an output format.
type Format string

const (
	Table Format = "table"
	Plain Format = "plain"
	JSON  Format = "json"
	CSV   Format = "csv"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Table, Plain, JSON, CSV:
		return f, nil
	case "":
		return Table, nil
	}
	return "", fmt.Errorf("unknown format %q (want table, plain, json or csv)", s)
}

// NullText is how table formats show nulls.
const NullText = "NULL"

// Write renders the batches to w. maxRows limits the rows shown by the table formats;
// zero or less means no limit. It returns the number of rows written.
func Write(w io.Writer, f Format, schema *arrow.Schema, batches []arrow.Record, maxRows int) (int64, error) {
	switch f {
	case JSON:
		return writeJSON(w, batches)
	case CSV:
		return writeCSV(w, schema, batches)
	case Plain:
		header, rows := Cells(schema, batches, maxRows)
		writePlain(w, header, rows)
		return int64(len(rows)), nil
	default:
		header, rows := Cells(schema, batches, maxRows)
		return int64(len(rows)), writeTable(w, header, rows)
	}
}

// Cells flattens the batches into display strings, at most maxRows rows.
func Cells(schema *arrow.Schema, batches []arrow.Record, maxRows int) ([]string, [][]string) {
	header := make([]string, schema.NumFields())
	for i, f := range schema.Fields() {
		header[i] = f.Name
	}
	var rows [][]string
	for _, rec := range batches {
		for r := 0; r < int(rec.NumRows()); r++ {
			if maxRows > 0 && len(rows) >= maxRows {
				return header, rows
			}
			row := make([]string, rec.NumCols())
			for c := range row {
				row[c] = cell(rec.Column(c), r)
			}
			rows = append(rows, row)
		}
	}
	return header, rows
}

func cell(arr arrow.Array, i int) string {
	if arr.IsNull(i) {
		return NullText
	}
	return arr.ValueStr(i)
}

func writeTable(w io.Writer, header []string, rows [][]string) error {
	data := pterm.TableData{header}
	data = append(data, rows...)
	out, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(data).
		Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func writePlain(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.AppendBulk(rows)
	table.Render()
}

func writeJSON(w io.Writer, batches []arrow.Record) (int64, error) {
	var n int64
	for _, rec := range batches {
		if err := array.RecordToJSON(rec, w); err != nil {
			return n, err
		}
		n += rec.NumRows()
	}
	return n, nil
}

func writeCSV(w io.Writer, schema *arrow.Schema, batches []arrow.Record) (int64, error) {
	cw := csv.NewWriter(w, schema, csv.WithHeader(true), csv.WithNullWriter(""))
	var n int64
	for _, rec := range batches {
		if err := cw.Write(rec); err != nil {
			return n, err
		}
		n += rec.NumRows()
	}
	if len(batches) == 0 {
		// The header is only written with the first record.
		b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
		empty := b.NewRecord()
		b.Release()
		defer empty.Release()
		if err := cw.Write(empty); err != nil {
			return 0, err
		}
	}
	return n, cw.Flush()
}

// Summary returns the "(n rows)" footer.
func Summary(shown, total int64) string {
	noun := "rows"
	if total == 1 {
		noun = "row"
	}
	if shown < total {
		return fmt.Sprintf("(%d of %d %s shown)", shown, total, noun)
	}
	return fmt.Sprintf("(%d %s)", total, noun)
}
