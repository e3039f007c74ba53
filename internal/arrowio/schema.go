// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package arrowio

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	sparkpb "sparkql/client/internal/bridge/proto"
)

// SchemaFromDataType converts a Spark struct type into the Arrow schema Spark uses when it
// serializes rows of that type. A non-struct type becomes a single column named "value".
func SchemaFromDataType(t *sparkpb.DataType) (*arrow.Schema, error) {
	if t == nil {
		return nil, fmt.Errorf("nil data type")
	}
	if t.Kind != sparkpb.TypeStruct {
		dt, err := DataTypeToArrow(t)
		if err != nil {
			return nil, err
		}
		return arrow.NewSchema([]arrow.Field{{Name: "value", Type: dt, Nullable: true}}, nil), nil
	}
	fields, err := structFields(t.Fields)
	if err != nil {
		return nil, err
	}
	return arrow.NewSchema(fields, nil), nil
}

func structFields(in []sparkpb.StructField) ([]arrow.Field, error) {
	out := make([]arrow.Field, 0, len(in))
	for _, f := range in {
		dt, err := DataTypeToArrow(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		out = append(out, arrow.Field{Name: f.Name, Type: dt, Nullable: f.Nullable})
	}
	return out, nil
}

// DataTypeToArrow maps one Spark type to its Arrow counterpart.
func DataTypeToArrow(t *sparkpb.DataType) (arrow.DataType, error) {
	if t == nil {
		return nil, fmt.Errorf("nil data type")
	}
	switch t.Kind {
	case sparkpb.TypeNull:
		return arrow.Null, nil
	case sparkpb.TypeBinary:
		return arrow.BinaryTypes.Binary, nil
	case sparkpb.TypeBoolean:
		return arrow.FixedWidthTypes.Boolean, nil
	case sparkpb.TypeByte:
		return arrow.PrimitiveTypes.Int8, nil
	case sparkpb.TypeShort:
		return arrow.PrimitiveTypes.Int16, nil
	case sparkpb.TypeInteger:
		return arrow.PrimitiveTypes.Int32, nil
	case sparkpb.TypeLong:
		return arrow.PrimitiveTypes.Int64, nil
	case sparkpb.TypeFloat:
		return arrow.PrimitiveTypes.Float32, nil
	case sparkpb.TypeDouble:
		return arrow.PrimitiveTypes.Float64, nil
	case sparkpb.TypeDecimal:
		p, s := t.Precision, t.Scale
		if p == 0 {
			p, s = 10, 0
		}
		return &arrow.Decimal128Type{Precision: p, Scale: s}, nil
	case sparkpb.TypeString, sparkpb.TypeChar, sparkpb.TypeVarChar:
		return arrow.BinaryTypes.String, nil
	case sparkpb.TypeDate:
		return arrow.FixedWidthTypes.Date32, nil
	case sparkpb.TypeTimestamp:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}, nil
	case sparkpb.TypeTimestampNTZ:
		return &arrow.TimestampType{Unit: arrow.Microsecond}, nil
	case sparkpb.TypeCalendarInterval:
		return arrow.FixedWidthTypes.MonthDayNanoInterval, nil
	case sparkpb.TypeYearMonthInterval:
		return arrow.FixedWidthTypes.MonthInterval, nil
	case sparkpb.TypeDayTimeInterval:
		return arrow.FixedWidthTypes.Duration_us, nil
	case sparkpb.TypeArray:
		elem, err := DataTypeToArrow(t.Element)
		if err != nil {
			return nil, err
		}
		return arrow.ListOfField(arrow.Field{Name: "element", Type: elem, Nullable: t.ContainsNull}), nil
	case sparkpb.TypeStruct:
		fields, err := structFields(t.Fields)
		if err != nil {
			return nil, err
		}
		return arrow.StructOf(fields...), nil
	case sparkpb.TypeMap:
		key, err := DataTypeToArrow(t.Key)
		if err != nil {
			return nil, err
		}
		val, err := DataTypeToArrow(t.Value)
		if err != nil {
			return nil, err
		}
		m := arrow.MapOf(key, val)
		m.SetItemNullable(t.ValueContainsNull)
		return m, nil
	}
	return nil, fmt.Errorf("unsupported spark type %s", t.Kind)
}

// SameSchema reports whether two schemas describe the same columns: equal count, names
// and types. Field nullability, metadata and timestamp time zones are not compared.
func SameSchema(a, b *arrow.Schema) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.NumFields() != b.NumFields() {
		return false
	}
	for i := 0; i < a.NumFields(); i++ {
		fa, fb := a.Field(i), b.Field(i)
		if fa.Name != fb.Name || !sameType(fa.Type, fb.Type) {
			return false
		}
	}
	return true
}

func sameType(a, b arrow.DataType) bool {
	if a.ID() != b.ID() {
		return false
	}
	switch ta := a.(type) {
	case *arrow.TimestampType:
		return ta.Unit == b.(*arrow.TimestampType).Unit
	case *arrow.MapType:
		tb := b.(*arrow.MapType)
		return sameType(ta.KeyType(), tb.KeyType()) && sameType(ta.ItemType(), tb.ItemType())
	case *arrow.ListType:
		return sameType(ta.Elem(), b.(*arrow.ListType).Elem())
	case *arrow.StructType:
		tb := b.(*arrow.StructType)
		if ta.NumFields() != tb.NumFields() {
			return false
		}
		for i := 0; i < ta.NumFields(); i++ {
			if ta.Field(i).Name != tb.Field(i).Name || !sameType(ta.Field(i).Type, tb.Field(i).Type) {
				return false
			}
		}
		return true
	}
	return arrow.TypeEqual(a, b)
}
