// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sparkpb contains the subset of the Spark Connect protocol messages used by the
// client, encoded and decoded directly with protowire. Field numbers follow
// spark/connect/{base,relations,expressions,types}.proto.
//
// Every message implements Marshal and Unmarshal so it can travel through the gRPC
// codec in codec.go without generated code.
package sparkpb

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// field is one decoded tag/value pair.
type field struct {
	num     protowire.Number
	typ     protowire.Type
	varint  uint64
	fixed32 uint32
	fixed64 uint64
	bytes   []byte
}

func (f field) int64() int64     { return int64(f.varint) }
func (f field) int32() int32     { return int32(f.varint) }
func (f field) bool() bool       { return f.varint != 0 }
func (f field) str() string      { return string(f.bytes) }
func (f field) float32() float32 { return math.Float32frombits(f.fixed32) }
func (f field) float64() float64 { return math.Float64frombits(f.fixed64) }

// forEachField decodes b field by field, skipping groups.
func forEachField(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(b)
		case protowire.Fixed32Type:
			f.fixed32, n = protowire.ConsumeFixed32(b)
		case protowire.Fixed64Type:
			f.fixed64, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// expect returns an error when f does not have the wire type of its declared field.
func expect(f field, typ protowire.Type, msg string) error {
	if f.typ != typ {
		return fmt.Errorf("sparkpb: %s field %d: wire type %d, want %d", msg, f.num, f.typ, typ)
	}
	return nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// appendOptionalString emits the field even when empty (proto3 optional presence).
func appendOptionalString(b []byte, num protowire.Number, s *string) []byte {
	if s == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, *s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	return appendVarint(b, num, uint64(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	return appendVarint(b, num, protowire.EncodeBool(v))
}

func appendFloat(b []byte, num protowire.Number, v float32) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, math.Float32bits(v))
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

// appendEmpty emits a present but empty sub-message.
func appendEmpty(b []byte, num protowire.Number) []byte {
	return appendBytes(b, num, nil)
}

type appender interface {
	appendTo(b []byte) []byte
}

func appendMessage(b []byte, num protowire.Number, m appender) []byte {
	return appendBytes(b, num, m.appendTo(nil))
}
