// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sparkpb

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrUnsupportedPlan is returned when decoding a plan whose root is not a SQL relation.
var ErrUnsupportedPlan = errors.New("sparkpb: plan root is not a SQL relation")

// Plan is spark.connect.Plan restricted to a root relation.
type Plan struct {
	Root *Relation
}

// Relation is spark.connect.Relation restricted to the sql variant (field 10).
type Relation struct {
	SQL *SQL
}

// SQL is spark.connect.SQL with positional literal arguments (pos_args, field 3).
type SQL struct {
	Query   string
	PosArgs []*Literal
}

// NewSQLPlan builds a plan whose root relation runs query with positional arguments.
func NewSQLPlan(query string, args []*Literal) *Plan {
	return &Plan{Root: &Relation{SQL: &SQL{Query: query, PosArgs: args}}}
}

func (p *Plan) appendTo(b []byte) []byte {
	if p.Root != nil {
		b = appendMessage(b, 1, p.Root)
	}
	return b
}

func (r *Relation) appendTo(b []byte) []byte {
	if r.SQL != nil {
		b = appendMessage(b, 10, r.SQL)
	}
	return b
}

func (s *SQL) appendTo(b []byte) []byte {
	b = appendString(b, 1, s.Query)
	for _, a := range s.PosArgs {
		b = appendMessage(b, 3, a)
	}
	return b
}

// Marshal encodes the plan.
func (p *Plan) Marshal() ([]byte, error) { return p.appendTo(nil), nil }

// Unmarshal decodes a plan produced by Marshal.
func (p *Plan) Unmarshal(b []byte) error {
	*p = Plan{}
	err := forEachField(b, func(f field) error {
		if f.num != 1 {
			return nil
		}
		p.Root = &Relation{}
		return p.Root.unmarshal(f.bytes)
	})
	if err != nil {
		return err
	}
	if p.Root == nil || p.Root.SQL == nil {
		return ErrUnsupportedPlan
	}
	return nil
}

func (r *Relation) unmarshal(b []byte) error {
	return forEachField(b, func(f field) error {
		if f.num != 10 {
			return nil
		}
		r.SQL = &SQL{}
		return r.SQL.unmarshal(f.bytes)
	})
}

func (s *SQL) unmarshal(b []byte) error {
	return forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			s.Query = f.str()
		case 3:
			l := &Literal{}
			if err := l.Unmarshal(f.bytes); err != nil {
				return err
			}
			s.PosArgs = append(s.PosArgs, l)
		}
		return nil
	})
}

// LiteralKind identifies an Expression.Literal variant. Values are the field numbers of
// the literal_type oneof.
type LiteralKind int32

const (
	LiteralNull         LiteralKind = 1
	LiteralBinary       LiteralKind = 2
	LiteralBoolean      LiteralKind = 3
	LiteralByte         LiteralKind = 4
	LiteralShort        LiteralKind = 5
	LiteralInteger      LiteralKind = 6
	LiteralLong         LiteralKind = 7
	LiteralFloat        LiteralKind = 10
	LiteralDouble       LiteralKind = 11
	LiteralDecimal      LiteralKind = 12
	LiteralString       LiteralKind = 13
	LiteralDate         LiteralKind = 16
	LiteralTimestamp    LiteralKind = 17
	LiteralTimestampNTZ LiteralKind = 18
	LiteralArray        LiteralKind = 22
)

// Literal is spark.connect.Expression.Literal.
type Literal struct {
	Kind LiteralKind

	// NullType is the type of a null literal.
	NullType *DataType

	// Int holds byte, short, integer, long, date (days) and timestamp (micros) values.
	Int   int64
	Float float64
	Bool  bool
	// Str holds string values and the decimal digits of decimal values.
	Str   string
	Bytes []byte

	// Decimal precision and scale; zero precision means unset.
	Precision int32
	Scale     int32

	// Array
	ElementType *DataType
	Elements    []*Literal
}

func (l *Literal) appendTo(b []byte) []byte {
	num := protowire.Number(l.Kind)
	switch l.Kind {
	case LiteralNull:
		t := l.NullType
		if t == nil {
			t = Simple(TypeNull)
		}
		b = appendMessage(b, num, t)
	case LiteralBinary:
		b = appendBytes(b, num, l.Bytes)
	case LiteralBoolean:
		b = appendBool(b, num, l.Bool)
	case LiteralByte, LiteralShort, LiteralInteger, LiteralLong, LiteralDate, LiteralTimestamp, LiteralTimestampNTZ:
		b = appendInt64(b, num, l.Int)
	case LiteralFloat:
		b = appendFloat(b, num, float32(l.Float))
	case LiteralDouble:
		b = appendDouble(b, num, l.Float)
	case LiteralDecimal:
		var body []byte
		body = appendString(body, 1, l.Str)
		if l.Precision > 0 {
			body = appendInt64(body, 2, int64(l.Precision))
			body = appendInt64(body, 3, int64(l.Scale))
		}
		b = appendBytes(b, num, body)
	case LiteralString:
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendString(b, l.Str)
	case LiteralArray:
		var body []byte
		if l.ElementType != nil {
			body = appendMessage(body, 1, l.ElementType)
		}
		for _, e := range l.Elements {
			body = appendMessage(body, 2, e)
		}
		b = appendBytes(b, num, body)
	}
	return b
}

// Marshal encodes the literal.
func (l *Literal) Marshal() ([]byte, error) {
	if l.Kind == 0 {
		return nil, fmt.Errorf("sparkpb: literal kind not set")
	}
	return l.appendTo(nil), nil
}

// Unmarshal decodes a spark.connect.Expression.Literal.
func (l *Literal) Unmarshal(b []byte) error {
	*l = Literal{}
	return forEachField(b, func(f field) error {
		kind := LiteralKind(f.num)
		switch kind {
		case LiteralNull:
			l.Kind = kind
			l.NullType = &DataType{}
			return l.NullType.Unmarshal(f.bytes)
		case LiteralBinary:
			l.Kind = kind
			l.Bytes = append([]byte(nil), f.bytes...)
		case LiteralBoolean:
			l.Kind = kind
			l.Bool = f.bool()
		case LiteralByte, LiteralShort, LiteralInteger, LiteralDate:
			l.Kind = kind
			l.Int = int64(f.int32())
		case LiteralLong, LiteralTimestamp, LiteralTimestampNTZ:
			l.Kind = kind
			l.Int = f.int64()
		case LiteralFloat:
			l.Kind = kind
			l.Float = float64(f.float32())
		case LiteralDouble:
			l.Kind = kind
			l.Float = f.float64()
		case LiteralDecimal:
			l.Kind = kind
			return forEachField(f.bytes, func(d field) error {
				switch d.num {
				case 1:
					l.Str = d.str()
				case 2:
					l.Precision = d.int32()
				case 3:
					l.Scale = d.int32()
				}
				return nil
			})
		case LiteralString:
			l.Kind = kind
			l.Str = f.str()
		case LiteralArray:
			l.Kind = kind
			return forEachField(f.bytes, func(a field) error {
				switch a.num {
				case 1:
					l.ElementType = &DataType{}
					return l.ElementType.Unmarshal(a.bytes)
				case 2:
					e := &Literal{}
					if err := e.Unmarshal(a.bytes); err != nil {
						return err
					}
					l.Elements = append(l.Elements, e)
				}
				return nil
			})
		default:
			return fmt.Errorf("sparkpb: unsupported literal field %d", f.num)
		}
		return nil
	})
}
