// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package arrowio

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sparkpb "sparkql/client/internal/bridge/proto"
)

func int64Record(t *testing.T, mem memory.Allocator, vals ...int64) arrow.Record {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{{Name: "n", Type: arrow.PrimitiveTypes.Int64}}, nil)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.Int64Builder).AppendValues(vals, nil)
	return b.NewRecord()
}

func TestDecodeRoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	r1 := int64Record(t, mem, 1, 2)
	r2 := int64Record(t, mem, 3)
	data, err := Encode(r1.Schema(), r1, r2)
	require.NoError(t, err)
	r1.Release()
	r2.Release()

	schema, recs, err := Decode(data, 3, mem)
	require.NoError(t, err)
	defer Release(recs)

	assert.Equal(t, "n", schema.Field(0).Name)
	require.Len(t, recs, 2)
	assert.EqualValues(t, 2, recs[0].NumRows())
	assert.EqualValues(t, 1, recs[1].NumRows())
	assert.Equal(t, int64(3), recs[1].Column(0).(*array.Int64).Value(0))
}

func TestDecodeRowCountMismatch(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	rec := int64Record(t, mem, 1, 2)
	data, err := Encode(rec.Schema(), rec)
	require.NoError(t, err)
	rec.Release()

	_, recs, err := Decode(data, 5, mem)
	assert.Nil(t, recs)
	var rce *RowCountError
	require.ErrorAs(t, err, &rce)
	assert.Equal(t, int64(5), rce.Want)
	assert.Equal(t, int64(2), rce.Got)
}

func TestDecodeSkipsCheckForNegativeCount(t *testing.T) {
	rec := int64Record(t, memory.DefaultAllocator, 1)
	defer rec.Release()
	data, err := Encode(rec.Schema(), rec)
	require.NoError(t, err)

	_, recs, err := Decode(data, -1, nil)
	require.NoError(t, err)
	Release(recs)
}

func TestDecodeGarbage(t *testing.T) {
	_, _, err := Decode([]byte("not arrow"), 0, nil)
	assert.Error(t, err)
}

func TestSchemaFromDataType(t *testing.T) {
	st := &sparkpb.DataType{
		Kind: sparkpb.TypeStruct,
		Fields: []sparkpb.StructField{
			{Name: "id", Type: sparkpb.Simple(sparkpb.TypeLong)},
			{Name: "name", Type: sparkpb.Simple(sparkpb.TypeString), Nullable: true},
			{Name: "amount", Type: &sparkpb.DataType{Kind: sparkpb.TypeDecimal, Precision: 12, Scale: 2}},
			{Name: "at", Type: sparkpb.Simple(sparkpb.TypeTimestamp)},
			{Name: "tags", Type: &sparkpb.DataType{Kind: sparkpb.TypeArray, Element: sparkpb.Simple(sparkpb.TypeString)}},
		},
	}
	got, err := SchemaFromDataType(st)
	require.NoError(t, err)

	want := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "amount", Type: &arrow.Decimal128Type{Precision: 12, Scale: 2}},
		{Name: "at", Type: &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "America/New_York"}},
		{Name: "tags", Type: arrow.ListOf(arrow.BinaryTypes.String)},
	}, nil)
	assert.True(t, SameSchema(got, want), "got %s", got)
}

func TestSchemaFromScalarType(t *testing.T) {
	got, err := SchemaFromDataType(sparkpb.Simple(sparkpb.TypeInteger))
	require.NoError(t, err)
	require.Equal(t, 1, got.NumFields())
	assert.Equal(t, "value", got.Field(0).Name)
}

func TestSchemaFromUnsupportedType(t *testing.T) {
	_, err := SchemaFromDataType(&sparkpb.DataType{
		Kind:   sparkpb.TypeStruct,
		Fields: []sparkpb.StructField{{Name: "u", Type: sparkpb.Simple(sparkpb.TypeKind(25))}},
	})
	assert.Error(t, err)
}

func TestSameSchema(t *testing.T) {
	base := arrow.NewSchema([]arrow.Field{
		{Name: "a", Type: arrow.PrimitiveTypes.Int32},
		{Name: "b", Type: arrow.BinaryTypes.String},
	}, nil)

	tests := []struct {
		name  string
		other *arrow.Schema
		want  bool
	}{
		{"identical", base, true},
		{"nullability differs", arrow.NewSchema([]arrow.Field{
			{Name: "a", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
			{Name: "b", Type: arrow.BinaryTypes.String, Nullable: true},
		}, nil), true},
		{"renamed column", arrow.NewSchema([]arrow.Field{
			{Name: "a", Type: arrow.PrimitiveTypes.Int32},
			{Name: "c", Type: arrow.BinaryTypes.String},
		}, nil), false},
		{"type differs", arrow.NewSchema([]arrow.Field{
			{Name: "a", Type: arrow.PrimitiveTypes.Int64},
			{Name: "b", Type: arrow.BinaryTypes.String},
		}, nil), false},
		{"fewer columns", arrow.NewSchema([]arrow.Field{
			{Name: "a", Type: arrow.PrimitiveTypes.Int32},
		}, nil), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameSchema(base, tt.other))
		})
	}
}

func TestSameTypeNested(t *testing.T) {
	a := arrow.StructOf(arrow.Field{Name: "x", Type: arrow.MapOf(arrow.BinaryTypes.String, arrow.PrimitiveTypes.Int64)})
	b := arrow.StructOf(arrow.Field{Name: "x", Type: arrow.MapOf(arrow.BinaryTypes.String, arrow.PrimitiveTypes.Int64), Nullable: true})
	c := arrow.StructOf(arrow.Field{Name: "x", Type: arrow.MapOf(arrow.BinaryTypes.String, arrow.PrimitiveTypes.Int32)})

	assert.True(t, sameType(a, b))
	assert.False(t, sameType(a, c))
	assert.False(t, sameType(&arrow.TimestampType{Unit: arrow.Microsecond}, &arrow.TimestampType{Unit: arrow.Millisecond}))
}
