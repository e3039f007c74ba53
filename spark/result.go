// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package spark

import (
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"sparkql/client/internal/arrowio"
)

// ResultSet is the complete, materialized result of one plan execution: a schema and
// its batches in arrival order. It owns the batches; call Release when done.
type ResultSet struct {
	schema  *arrow.Schema
	batches []arrow.Record
	once    sync.Once
}

func newResultSet(schema *arrow.Schema, batches []arrow.Record) *ResultSet {
	if batches == nil {
		batches = []arrow.Record{}
	}
	return &ResultSet{schema: schema, batches: batches}
}

// Schema returns the result schema.
func (r *ResultSet) Schema() *arrow.Schema { return r.schema }

// Batches returns the batches in arrival order. They stay valid until Release.
func (r *ResultSet) Batches() []arrow.Record { return r.batches }

// NumBatches returns the number of batches.
func (r *ResultSet) NumBatches() int { return len(r.batches) }

// NumRows returns the total row count over all batches.
func (r *ResultSet) NumRows() int64 {
	var n int64
	for _, b := range r.batches {
		n += b.NumRows()
	}
	return n
}

// Table assembles the batches into a single table. The table holds its own references;
// release it independently of the ResultSet.
func (r *ResultSet) Table() arrow.Table {
	return array.NewTableFromRecords(r.schema, r.batches)
}

// Release frees the batches. Later calls do nothing.
func (r *ResultSet) Release() {
	r.once.Do(func() {
		arrowio.Release(r.batches)
		r.batches = nil
	})
}
