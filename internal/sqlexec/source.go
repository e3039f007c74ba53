// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// recordSource feeds Arrow records to COPY row by row.
type recordSource struct {
	recs []arrow.Record
	rec  int
	row  int64
	vals []any
	err  error
}

var _ pgx.CopyFromSource = (*recordSource)(nil)

func newRecordSource(recs []arrow.Record) *recordSource {
	return &recordSource{recs: recs, row: -1}
}

func (s *recordSource) Next() bool {
	if s.err != nil {
		return false
	}
	s.row++
	for s.rec < len(s.recs) && s.row >= s.recs[s.rec].NumRows() {
		s.rec++
		s.row = 0
	}
	if s.rec >= len(s.recs) {
		return false
	}

	r := s.recs[s.rec]
	if cap(s.vals) < int(r.NumCols()) {
		s.vals = make([]any, r.NumCols())
	}
	s.vals = s.vals[:r.NumCols()]
	for c := range s.vals {
		v, err := value(r.Column(c), int(s.row))
		if err != nil {
			s.err = fmt.Errorf("batch %d row %d column %q: %w", s.rec, s.row, r.ColumnName(c), err)
			return false
		}
		s.vals[c] = v
	}
	return true
}

func (s *recordSource) Values() ([]any, error) { return s.vals, nil }

func (s *recordSource) Err() error { return s.err }

// value converts one Arrow cell to a value pgx can encode for the column type
// PostgresType picks.
func value(arr arrow.Array, i int) (any, error) {
	if arr.IsNull(i) {
		return nil, nil
	}
	switch a := arr.(type) {
	case *array.Boolean:
		return a.Value(i), nil
	case *array.Int8:
		return int16(a.Value(i)), nil
	case *array.Int16:
		return a.Value(i), nil
	case *array.Int32:
		return a.Value(i), nil
	case *array.Int64:
		return a.Value(i), nil
	case *array.Uint8:
		return int16(a.Value(i)), nil
	case *array.Uint16:
		return int32(a.Value(i)), nil
	case *array.Uint32:
		return int64(a.Value(i)), nil
	case *array.Uint64:
		return pgtype.Numeric{Int: new(big.Int).SetUint64(a.Value(i)), Valid: true}, nil
	case *array.Float32:
		return a.Value(i), nil
	case *array.Float64:
		return a.Value(i), nil
	case *array.String:
		return a.Value(i), nil
	case *array.LargeString:
		return a.Value(i), nil
	case *array.Binary:
		return a.Value(i), nil
	case *array.LargeBinary:
		return a.Value(i), nil
	case *array.Date32:
		return a.Value(i).ToTime(), nil
	case *array.Timestamp:
		toTime, err := a.DataType().(*arrow.TimestampType).GetToTimeFunc()
		if err != nil {
			return nil, err
		}
		return toTime(a.Value(i)), nil
	case *array.Decimal128:
		scale := a.DataType().(*arrow.Decimal128Type).Scale
		return pgtype.Numeric{Int: a.Value(i).BigInt(), Exp: -scale, Valid: true}, nil
	case *array.List, *array.LargeList, *array.Map, *array.Struct:
		return json.Marshal(a.GetOneForMarshal(i))
	case *array.Null:
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported type %s", arr.DataType())
}
