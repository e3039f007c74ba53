// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package arrowio adapts Arrow IPC payloads and Spark type descriptors to arrow-go values.
package arrowio

import (
	"bytes"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// RowCountError reports a batch whose decoded rows disagree with the row count the
// server announced for it.
type RowCountError struct {
	Want int64
	Got  int64
}

func (e *RowCountError) Error() string {
	return fmt.Sprintf("arrow batch declares %d rows but decodes to %d", e.Want, e.Got)
}

// Decode reads one Arrow IPC stream. The returned records are owned by the caller. A
// negative rowCount skips the row-count check.
func Decode(data []byte, rowCount int64, mem memory.Allocator) (*arrow.Schema, []arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	rdr, err := ipc.NewReader(bytes.NewReader(data), ipc.WithAllocator(mem))
	if err != nil {
		return nil, nil, fmt.Errorf("open ipc stream: %w", err)
	}
	defer rdr.Release()

	var (
		recs []arrow.Record
		rows int64
	)
	for rdr.Next() {
		rec := rdr.Record()
		rec.Retain()
		recs = append(recs, rec)
		rows += rec.NumRows()
	}
	if err := rdr.Err(); err != nil {
		Release(recs)
		return nil, nil, fmt.Errorf("read ipc stream: %w", err)
	}
	if rowCount >= 0 && rows != rowCount {
		Release(recs)
		return nil, nil, &RowCountError{Want: rowCount, Got: rows}
	}
	return rdr.Schema(), recs, nil
}

// Encode writes records sharing schema as one Arrow IPC stream.
func Encode(schema *arrow.Schema, recs ...arrow.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(schema))
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("write ipc record: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close ipc stream: %w", err)
	}
	return buf.Bytes(), nil
}

// Release releases every record.
func Release(recs []arrow.Record) {
	for _, r := range recs {
		r.Release()
	}
}
