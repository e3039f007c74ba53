// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package spark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sparkpb "sparkql/client/internal/bridge/proto"
)

type celsius float64

func TestLitTypes(t *testing.T) {
	tests := []struct {
		name string
		lit  Literal
		want string
	}{
		{"int32", Lit(int32(42)), "42:int"},
		{"int", Lit(42), "42:bigint"},
		{"int8", Lit(int8(-3)), "-3:tinyint"},
		{"uint8", Lit(uint8(200)), "200:smallint"},
		{"uint64", Lit(uint64(18446744073709551615)), "18446744073709551615:decimal(20,0)"},
		{"string", Lit("world"), `"world":string`},
		{"bool", Lit(true), "true:boolean"},
		{"float64", Lit(1.5), "1.5:double"},
		{"named float", Lit(celsius(21.5)), "21.5:double"},
		{"bytes", Lit([]byte{0xca, 0xfe}), "X'CAFE':binary"},
		{"null", Null(), "NULL:void"},
		{"typed null", TypedNull(StringType), "NULL:string"},
		{"zero literal", Literal{}, "NULL:void"},
		{"date", Date(time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC)), "2024-02-29:date"},
		{"timestamp", Lit(time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC)), "2024-01-02 03:04:05.000006:timestamp"},
		{"array", ArrayOf([]string{"a", "b"}), `["a", "b"]:array<string>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.lit.String())
		})
	}
}

func TestLitWireEncoding(t *testing.T) {
	b, err := Lit(int32(42)).proto().Marshal()
	require.NoError(t, err)

	var got sparkpb.Literal
	require.NoError(t, got.Unmarshal(b))
	assert.Equal(t, sparkpb.LiteralInteger, got.Kind)
	assert.EqualValues(t, 42, got.Int)

	b, err = TypedNull(IntegerType).proto().Marshal()
	require.NoError(t, err)
	got = sparkpb.Literal{}
	require.NoError(t, got.Unmarshal(b))
	assert.Equal(t, sparkpb.LiteralNull, got.Kind)
	assert.Equal(t, sparkpb.TypeInteger, got.NullType.Kind)
}

func TestLiteralEqual(t *testing.T) {
	assert.True(t, Lit("a").Equal(Lit("a")))
	assert.False(t, Lit("a").Equal(Lit("b")))
	assert.False(t, Lit(int32(1)).Equal(Lit(int64(1))), "same value, different width")
	assert.True(t, Null().Equal(Literal{}))
	assert.True(t, Null().IsNull())
	assert.False(t, Lit(0).IsNull())
}

func TestBinaryLiteralIsCopied(t *testing.T) {
	buf := []byte("abc")
	l := Lit(buf)
	buf[0] = 'z'
	assert.Equal(t, "X'616263':binary", l.String())
}

func TestTypeEqual(t *testing.T) {
	assert.True(t, ArrayType(LongType).Equal(ArrayOf([]int64{1}).Type()))
	assert.False(t, DecimalType(10, 2).Equal(DecimalType(10, 3)))
	assert.Equal(t, "decimal(10,2)", DecimalType(10, 2).String())
}
