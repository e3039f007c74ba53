// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package spark

import (
	"bytes"
	"encoding/hex"
	"reflect"
	"strconv"
	"strings"
	"time"

	sparkpb "sparkql/client/internal/bridge/proto"
)

// Type is a Spark SQL data type carried by literals.
type Type struct {
	dt *sparkpb.DataType
}

var (
	NullType      = Type{sparkpb.Simple(sparkpb.TypeNull)}
	BooleanType   = Type{sparkpb.Simple(sparkpb.TypeBoolean)}
	ByteType      = Type{sparkpb.Simple(sparkpb.TypeByte)}
	ShortType     = Type{sparkpb.Simple(sparkpb.TypeShort)}
	IntegerType   = Type{sparkpb.Simple(sparkpb.TypeInteger)}
	LongType      = Type{sparkpb.Simple(sparkpb.TypeLong)}
	FloatType     = Type{sparkpb.Simple(sparkpb.TypeFloat)}
	DoubleType    = Type{sparkpb.Simple(sparkpb.TypeDouble)}
	StringType    = Type{sparkpb.Simple(sparkpb.TypeString)}
	BinaryType    = Type{sparkpb.Simple(sparkpb.TypeBinary)}
	DateType      = Type{sparkpb.Simple(sparkpb.TypeDate)}
	TimestampType = Type{sparkpb.Simple(sparkpb.TypeTimestamp)}
)

// DecimalType returns decimal(precision, scale).
func DecimalType(precision, scale int32) Type {
	return Type{&sparkpb.DataType{Kind: sparkpb.TypeDecimal, Precision: precision, Scale: scale}}
}

// ArrayType returns array<elem>.
func ArrayType(elem Type) Type {
	return Type{&sparkpb.DataType{Kind: sparkpb.TypeArray, Element: elem.proto(), ContainsNull: true}}
}

func (t Type) proto() *sparkpb.DataType {
	if t.dt == nil {
		return sparkpb.Simple(sparkpb.TypeNull)
	}
	return t.dt
}

// String returns the Spark SQL name of the type, e.g. "int" or "array<string>".
func (t Type) String() string { return t.proto().String() }

// Equal reports whether two types are the same Spark type.
func (t Type) Equal(o Type) bool { return t.String() == o.String() }

// LiteralValue is the set of Go types Lit accepts.
type LiteralValue interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64 |
		~string | ~bool | ~[]byte |
		time.Time
}

// Literal is a typed value bound to a query placeholder. The zero Literal is a null.
type Literal struct {
	pb  *sparkpb.Literal
	typ Type
}

// Lit encodes v as a Spark literal. Integer widths map to the narrowest Spark type that
// holds every value of the Go type: int8 to byte, int16 and uint8 to short, int32 and
// uint16 to integer, int, int64 and uint32 to long. uint, uint64 and uintptr become
// decimal(20,0). time.Time becomes a timestamp with microsecond precision.
//
// An untyped constant is a Go int, so Lit(42) is 42:bigint. Use Lit(int32(42)) for a
// Spark int.
func Lit[T LiteralValue](v T) Literal {
	if t, ok := any(v).(time.Time); ok {
		return Timestamp(t)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int8:
		return intLit(sparkpb.LiteralByte, ByteType, rv.Int())
	case reflect.Int16:
		return intLit(sparkpb.LiteralShort, ShortType, rv.Int())
	case reflect.Uint8:
		return intLit(sparkpb.LiteralShort, ShortType, int64(rv.Uint()))
	case reflect.Int32:
		return intLit(sparkpb.LiteralInteger, IntegerType, rv.Int())
	case reflect.Uint16:
		return intLit(sparkpb.LiteralInteger, IntegerType, int64(rv.Uint()))
	case reflect.Int, reflect.Int64:
		return intLit(sparkpb.LiteralLong, LongType, rv.Int())
	case reflect.Uint32:
		return intLit(sparkpb.LiteralLong, LongType, int64(rv.Uint()))
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return Literal{
			pb:  &sparkpb.Literal{Kind: sparkpb.LiteralDecimal, Str: strconv.FormatUint(rv.Uint(), 10), Precision: 20},
			typ: DecimalType(20, 0),
		}
	case reflect.Float32:
		return Literal{pb: &sparkpb.Literal{Kind: sparkpb.LiteralFloat, Float: rv.Float()}, typ: FloatType}
	case reflect.Float64:
		return Literal{pb: &sparkpb.Literal{Kind: sparkpb.LiteralDouble, Float: rv.Float()}, typ: DoubleType}
	case reflect.String:
		return Literal{pb: &sparkpb.Literal{Kind: sparkpb.LiteralString, Str: rv.String()}, typ: StringType}
	case reflect.Bool:
		return Literal{pb: &sparkpb.Literal{Kind: sparkpb.LiteralBoolean, Bool: rv.Bool()}, typ: BooleanType}
	case reflect.Slice:
		b := bytes.Clone(rv.Bytes())
		if b == nil {
			b = []byte{}
		}
		return Literal{pb: &sparkpb.Literal{Kind: sparkpb.LiteralBinary, Bytes: b}, typ: BinaryType}
	}
	// The constraint admits no other kinds.
	panic("spark: unsupported literal kind " + rv.Kind().String())
}

func intLit(kind sparkpb.LiteralKind, t Type, v int64) Literal {
	return Literal{pb: &sparkpb.Literal{Kind: kind, Int: v}, typ: t}
}

// Null returns an untyped null.
func Null() Literal { return TypedNull(NullType) }

// TypedNull returns a null of type t, e.g. TypedNull(StringType) for CAST(NULL AS STRING).
func TypedNull(t Type) Literal {
	return Literal{pb: &sparkpb.Literal{Kind: sparkpb.LiteralNull, NullType: t.proto()}, typ: t}
}

// Timestamp returns a timestamp literal at microsecond precision.
func Timestamp(t time.Time) Literal {
	return intLit(sparkpb.LiteralTimestamp, TimestampType, t.UnixMicro())
}

// Date returns a date literal for the calendar day of t in t's location.
func Date(t time.Time) Literal {
	y, m, d := t.Date()
	days := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
	return intLit(sparkpb.LiteralDate, DateType, days)
}

// ArrayOf returns an array literal whose element type is the type Lit gives T.
func ArrayOf[T LiteralValue](vs []T) Literal {
	var zero T
	elems := make([]Literal, len(vs))
	for i, v := range vs {
		elems[i] = Lit(v)
	}
	return Array(Lit(zero).Type(), elems...)
}

// Array returns an array literal of element type elem. Element types are checked by the
// server, not here.
func Array(elem Type, elems ...Literal) Literal {
	pb := &sparkpb.Literal{Kind: sparkpb.LiteralArray, ElementType: elem.proto()}
	for _, e := range elems {
		pb.Elements = append(pb.Elements, e.proto())
	}
	return Literal{pb: pb, typ: ArrayType(elem)}
}

func (l Literal) proto() *sparkpb.Literal {
	if l.pb == nil {
		return Null().pb
	}
	return l.pb
}

// Type returns the Spark type of the literal.
func (l Literal) Type() Type {
	if l.pb == nil {
		return NullType
	}
	return l.typ
}

// IsNull reports whether the literal is a null.
func (l Literal) IsNull() bool { return l.proto().Kind == sparkpb.LiteralNull }

// Equal reports whether two literals encode to the same wire value.
func (l Literal) Equal(o Literal) bool {
	a, _ := l.proto().Marshal()
	b, _ := o.proto().Marshal()
	return bytes.Equal(a, b)
}

// String renders the literal as value:type, e.g. 42:int or "world":string.
func (l Literal) String() string {
	return l.valueString() + ":" + l.Type().String()
}

func (l Literal) valueString() string {
	pb := l.proto()
	switch pb.Kind {
	case sparkpb.LiteralNull:
		return "NULL"
	case sparkpb.LiteralBoolean:
		return strconv.FormatBool(pb.Bool)
	case sparkpb.LiteralByte, sparkpb.LiteralShort, sparkpb.LiteralInteger, sparkpb.LiteralLong:
		return strconv.FormatInt(pb.Int, 10)
	case sparkpb.LiteralFloat:
		return strconv.FormatFloat(pb.Float, 'g', -1, 32)
	case sparkpb.LiteralDouble:
		return strconv.FormatFloat(pb.Float, 'g', -1, 64)
	case sparkpb.LiteralDecimal:
		return pb.Str
	case sparkpb.LiteralString:
		return strconv.Quote(pb.Str)
	case sparkpb.LiteralBinary:
		return "X'" + strings.ToUpper(hex.EncodeToString(pb.Bytes)) + "'"
	case sparkpb.LiteralDate:
		return time.Unix(pb.Int*86400, 0).UTC().Format(time.DateOnly)
	case sparkpb.LiteralTimestamp:
		return time.UnixMicro(pb.Int).UTC().Format("2006-01-02 15:04:05.999999")
	case sparkpb.LiteralArray:
		parts := make([]string, len(pb.Elements))
		for i, e := range pb.Elements {
			parts[i] = Literal{pb: e}.valueString()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return "?"
}
