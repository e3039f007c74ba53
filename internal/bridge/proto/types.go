// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sparkpb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// TypeKind identifies a DataType variant. Values are the field numbers of the
// DataType.kind oneof.
type TypeKind int32

const (
	TypeUnset             TypeKind = 0
	TypeNull              TypeKind = 1
	TypeBinary            TypeKind = 2
	TypeBoolean           TypeKind = 3
	TypeByte              TypeKind = 4
	TypeShort             TypeKind = 5
	TypeInteger           TypeKind = 6
	TypeLong              TypeKind = 7
	TypeFloat             TypeKind = 8
	TypeDouble            TypeKind = 9
	TypeDecimal           TypeKind = 10
	TypeString            TypeKind = 11
	TypeChar              TypeKind = 12
	TypeVarChar           TypeKind = 13
	TypeDate              TypeKind = 14
	TypeTimestamp         TypeKind = 15
	TypeTimestampNTZ      TypeKind = 16
	TypeCalendarInterval  TypeKind = 17
	TypeYearMonthInterval TypeKind = 18
	TypeDayTimeInterval   TypeKind = 19
	TypeArray             TypeKind = 20
	TypeStruct            TypeKind = 21
	TypeMap               TypeKind = 22
)

var typeNames = map[TypeKind]string{
	TypeNull:              "void",
	TypeBinary:            "binary",
	TypeBoolean:           "boolean",
	TypeByte:              "tinyint",
	TypeShort:             "smallint",
	TypeInteger:           "int",
	TypeLong:              "bigint",
	TypeFloat:             "float",
	TypeDouble:            "double",
	TypeDecimal:           "decimal",
	TypeString:            "string",
	TypeChar:              "char",
	TypeVarChar:           "varchar",
	TypeDate:              "date",
	TypeTimestamp:         "timestamp",
	TypeTimestampNTZ:      "timestamp_ntz",
	TypeCalendarInterval:  "interval",
	TypeYearMonthInterval: "interval year to month",
	TypeDayTimeInterval:   "interval day to second",
	TypeArray:             "array",
	TypeStruct:            "struct",
	TypeMap:               "map",
}

// String returns the Spark SQL name of the kind.
func (k TypeKind) String() string {
	if n, ok := typeNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int32(k))
}

// DataType is spark.connect.DataType. Only the fields relevant to Kind are set.
type DataType struct {
	Kind TypeKind

	// Decimal
	Precision int32
	Scale     int32

	// Char, VarChar
	Length int32

	// Array
	Element      *DataType
	ContainsNull bool

	// Struct
	Fields []StructField

	// Map
	Key               *DataType
	Value             *DataType
	ValueContainsNull bool
}

// StructField is spark.connect.DataType.StructField.
type StructField struct {
	Name     string
	Type     *DataType
	Nullable bool
}

// Simple returns a DataType of a kind without parameters.
func Simple(kind TypeKind) *DataType { return &DataType{Kind: kind} }

// String renders the type the way Spark prints it in schemas.
func (t *DataType) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case TypeDecimal:
		return fmt.Sprintf("decimal(%d,%d)", t.Precision, t.Scale)
	case TypeChar, TypeVarChar:
		return fmt.Sprintf("%s(%d)", t.Kind, t.Length)
	case TypeArray:
		return fmt.Sprintf("array<%s>", t.Element)
	case TypeMap:
		return fmt.Sprintf("map<%s,%s>", t.Key, t.Value)
	case TypeStruct:
		s := "struct<"
		for i, f := range t.Fields {
			if i > 0 {
				s += ","
			}
			s += f.Name + ":" + f.Type.String()
		}
		return s + ">"
	}
	return t.Kind.String()
}

func (t *DataType) appendTo(b []byte) []byte {
	var body []byte
	switch t.Kind {
	case TypeDecimal:
		if t.Precision > 0 {
			body = appendInt64(body, 1, int64(t.Scale))
			body = appendInt64(body, 2, int64(t.Precision))
		}
	case TypeChar, TypeVarChar:
		body = appendInt64(body, 1, int64(t.Length))
	case TypeArray:
		if t.Element != nil {
			body = appendMessage(body, 1, t.Element)
		}
		if t.ContainsNull {
			body = appendBool(body, 2, true)
		}
	case TypeStruct:
		for i := range t.Fields {
			body = appendMessage(body, 1, &t.Fields[i])
		}
	case TypeMap:
		if t.Key != nil {
			body = appendMessage(body, 1, t.Key)
		}
		if t.Value != nil {
			body = appendMessage(body, 2, t.Value)
		}
		if t.ValueContainsNull {
			body = appendBool(body, 3, true)
		}
	}
	return appendBytes(b, protowire.Number(t.Kind), body)
}

func (f *StructField) appendTo(b []byte) []byte {
	b = appendString(b, 1, f.Name)
	if f.Type != nil {
		b = appendMessage(b, 2, f.Type)
	}
	if f.Nullable {
		b = appendBool(b, 3, true)
	}
	return b
}

// Marshal encodes the data type.
func (t *DataType) Marshal() ([]byte, error) { return t.appendTo(nil), nil }

// Unmarshal decodes a spark.connect.DataType.
func (t *DataType) Unmarshal(b []byte) error {
	*t = DataType{}
	return forEachField(b, func(f field) error {
		if f.num > protowire.Number(TypeMap) {
			// udt, unparsed, variant and future kinds: keep the kind, ignore the body.
			t.Kind = TypeKind(f.num)
			return nil
		}
		if err := expect(f, protowire.BytesType, "DataType"); err != nil {
			return err
		}
		t.Kind = TypeKind(f.num)
		return t.unmarshalBody(f.bytes)
	})
}

func (t *DataType) unmarshalBody(b []byte) error {
	return forEachField(b, func(f field) error {
		switch t.Kind {
		case TypeDecimal:
			switch f.num {
			case 1:
				t.Scale = f.int32()
			case 2:
				t.Precision = f.int32()
			}
		case TypeChar, TypeVarChar:
			if f.num == 1 {
				t.Length = f.int32()
			}
		case TypeArray:
			switch f.num {
			case 1:
				t.Element = &DataType{}
				return t.Element.Unmarshal(f.bytes)
			case 2:
				t.ContainsNull = f.bool()
			}
		case TypeStruct:
			if f.num == 1 {
				var sf StructField
				if err := sf.Unmarshal(f.bytes); err != nil {
					return err
				}
				t.Fields = append(t.Fields, sf)
			}
		case TypeMap:
			switch f.num {
			case 1:
				t.Key = &DataType{}
				return t.Key.Unmarshal(f.bytes)
			case 2:
				t.Value = &DataType{}
				return t.Value.Unmarshal(f.bytes)
			case 3:
				t.ValueContainsNull = f.bool()
			}
		}
		return nil
	})
}

// Unmarshal decodes a spark.connect.DataType.StructField.
func (sf *StructField) Unmarshal(b []byte) error {
	*sf = StructField{}
	return forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			sf.Name = f.str()
		case 2:
			sf.Type = &DataType{}
			return sf.Type.Unmarshal(f.bytes)
		case 3:
			sf.Nullable = f.bool()
		}
		return nil
	})
}
