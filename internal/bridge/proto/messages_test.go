// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sparkpb

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func TestSQLPlanEncoding(t *testing.T) {
	args := []*Literal{
		{Kind: LiteralInteger, Int: 42},
		{Kind: LiteralString, Str: ""},
		{Kind: LiteralNull},
	}
	b, err := NewSQLPlan("SELECT ?, ?, ?", args).Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got Plan
	if err := got.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Root.SQL.Query != "SELECT ?, ?, ?" {
		t.Errorf("query = %q", got.Root.SQL.Query)
	}
	if len(got.Root.SQL.PosArgs) != 3 {
		t.Fatalf("pos args = %d, want 3", len(got.Root.SQL.PosArgs))
	}
	if a := got.Root.SQL.PosArgs[0]; a.Kind != LiteralInteger || a.Int != 42 {
		t.Errorf("arg 0 = %+v", a)
	}
	// Empty strings must survive: the oneof tag is always written.
	if a := got.Root.SQL.PosArgs[1]; a.Kind != LiteralString || a.Str != "" {
		t.Errorf("arg 1 = %+v", a)
	}
	if a := got.Root.SQL.PosArgs[2]; a.Kind != LiteralNull || a.NullType.Kind != TypeNull {
		t.Errorf("arg 2 = %+v", a)
	}
}

func TestPlanWireLayout(t *testing.T) {
	b, _ := NewSQLPlan("SELECT 1", nil).Marshal()

	// Plan.root (1) -> Relation.sql (10) -> SQL.query (1)
	var want []byte
	sql := protowire.AppendString(protowire.AppendTag(nil, 1, protowire.BytesType), "SELECT 1")
	rel := protowire.AppendBytes(protowire.AppendTag(nil, 10, protowire.BytesType), sql)
	want = protowire.AppendBytes(protowire.AppendTag(want, 1, protowire.BytesType), rel)

	if !bytes.Equal(b, want) {
		t.Errorf("Marshal() = %x, want %x", b, want)
	}
}

func TestPlanUnmarshalRejectsNonSQL(t *testing.T) {
	// root relation carrying only field 2 (a read relation)
	rel := protowire.AppendBytes(protowire.AppendTag(nil, 2, protowire.BytesType), nil)
	b := protowire.AppendBytes(protowire.AppendTag(nil, 1, protowire.BytesType), rel)

	var p Plan
	if err := p.Unmarshal(b); !errors.Is(err, ErrUnsupportedPlan) {
		t.Errorf("Unmarshal() error = %v, want ErrUnsupportedPlan", err)
	}
}

func TestLiteralRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		lit  Literal
	}{
		{"byte", Literal{Kind: LiteralByte, Int: -7}},
		{"short", Literal{Kind: LiteralShort, Int: 300}},
		{"integer negative", Literal{Kind: LiteralInteger, Int: -2147483648}},
		{"long", Literal{Kind: LiteralLong, Int: 1 << 40}},
		{"float", Literal{Kind: LiteralFloat, Float: 1.5}},
		{"double", Literal{Kind: LiteralDouble, Float: -0.25}},
		{"boolean false", Literal{Kind: LiteralBoolean, Bool: false}},
		{"binary", Literal{Kind: LiteralBinary, Bytes: []byte{0, 1, 2}}},
		{"decimal", Literal{Kind: LiteralDecimal, Str: "18446744073709551615", Precision: 20, Scale: 0}},
		{"date", Literal{Kind: LiteralDate, Int: 19000}},
		{"timestamp", Literal{Kind: LiteralTimestamp, Int: 1700000000000000}},
		{"typed null", Literal{Kind: LiteralNull, NullType: Simple(TypeString)}},
		{"array", Literal{
			Kind:        LiteralArray,
			ElementType: Simple(TypeInteger),
			Elements:    []*Literal{{Kind: LiteralInteger, Int: 1}, {Kind: LiteralInteger, Int: 2}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.lit.Marshal()
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			var got Literal
			if err := got.Unmarshal(b); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.lit) {
				t.Errorf("round trip = %+v, want %+v", got, tt.lit)
			}
		})
	}
}

func TestLiteralMarshalRequiresKind(t *testing.T) {
	if _, err := (&Literal{}).Marshal(); err == nil {
		t.Error("Marshal() of an unset literal should fail")
	}
}

func TestDataTypeRoundTrip(t *testing.T) {
	typ := &DataType{
		Kind: TypeStruct,
		Fields: []StructField{
			{Name: "id", Type: Simple(TypeLong)},
			{Name: "price", Type: &DataType{Kind: TypeDecimal, Precision: 10, Scale: 2}, Nullable: true},
			{Name: "tags", Type: &DataType{Kind: TypeArray, Element: Simple(TypeString), ContainsNull: true}},
			{Name: "attrs", Type: &DataType{Kind: TypeMap, Key: Simple(TypeString), Value: Simple(TypeDouble)}},
		},
	}
	b, _ := typ.Marshal()

	var got DataType
	if err := got.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(&got, typ) {
		t.Errorf("round trip = %s, want %s", &got, typ)
	}
	if want := "struct<id:bigint,price:decimal(10,2),tags:array<string>,attrs:map<string,double>>"; got.String() != want {
		t.Errorf("String() = %q, want %q", got.String(), want)
	}
}

func TestExecutePlanResponseDecode(t *testing.T) {
	in := &ExecutePlanResponse{
		SessionID:           "s",
		ServerSideSessionID: "srv",
		OperationID:         "op",
		ArrowBatch:          &ArrowBatch{RowCount: 3, Data: []byte("ipc")},
	}
	b, _ := in.Marshal()

	var got ExecutePlanResponse
	if err := got.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(&got, in) {
		t.Errorf("got %+v, want %+v", got, in)
	}

	done, _ := (&ExecutePlanResponse{ResultComplete: true}).Marshal()
	if err := got.Unmarshal(done); err != nil || !got.ResultComplete {
		t.Errorf("result_complete not decoded: %+v, %v", got, err)
	}
}

func TestRequestsRoundTrip(t *testing.T) {
	v := "true"
	tests := []struct {
		name string
		in   Message
		out  Message
	}{
		{
			name: "execute",
			in: &ExecutePlanRequest{
				SessionID:   "6f1e1f0c-1d1c-4f00-9a8a-1f4bdbf9a0c1",
				UserContext: UserContext{UserID: "alice"},
				Plan:        []byte{1, 2},
				ClientType:  "sparkql",
				OperationID: "op-1",
				Tags:        []string{"a", "b"},
			},
			out: &ExecutePlanRequest{},
		},
		{
			name: "analyze schema",
			in:   &AnalyzePlanRequest{SessionID: "s", SchemaPlan: []byte{9}},
			out:  &AnalyzePlanRequest{},
		},
		{
			name: "analyze version",
			in:   &AnalyzePlanRequest{SessionID: "s", SparkVersion: true},
			out:  &AnalyzePlanRequest{},
		},
		{
			name: "config set",
			in:   &ConfigRequest{SessionID: "s", Set: []KeyValue{{Key: "spark.sql.ansi.enabled", Value: &v}}},
			out:  &ConfigRequest{},
		},
		{
			name: "config get",
			in:   &ConfigRequest{SessionID: "s", Get: []string{"a", "b"}},
			out:  &ConfigRequest{},
		},
		{
			name: "interrupt",
			in:   &InterruptRequest{SessionID: "s", Type: InterruptOperationID, OperationID: "op"},
			out:  &InterruptRequest{},
		},
		{
			name: "analyze response",
			in:   &AnalyzePlanResponse{SessionID: "s", SparkVersion: "3.5.1", ServerSideSessionID: "x"},
			out:  &AnalyzePlanResponse{},
		},
		{
			name: "config response",
			in:   &ConfigResponse{SessionID: "s", Pairs: []KeyValue{{Key: "k"}}, Warnings: []string{"w"}},
			out:  &ConfigResponse{},
		},
		{
			name: "interrupt response",
			in:   &InterruptResponse{SessionID: "s", InterruptedIDs: []string{"op"}},
			out:  &InterruptResponse{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Codec{}.Marshal(tt.in)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if err := (Codec{}).Unmarshal(b, tt.out); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !reflect.DeepEqual(tt.out, tt.in) {
				t.Errorf("round trip = %+v, want %+v", tt.out, tt.in)
			}
		})
	}
}

func TestCodecRawFrame(t *testing.T) {
	c := Codec{}
	if c.Name() != "proto" {
		t.Errorf("Name() = %q", c.Name())
	}
	var f RawFrame
	if err := c.Unmarshal([]byte{1, 2, 3}, &f); err != nil {
		t.Fatal(err)
	}
	b, err := c.Marshal(&f)
	if err != nil || !bytes.Equal(b, []byte{1, 2, 3}) {
		t.Errorf("Marshal(&RawFrame) = %v, %v", b, err)
	}
	if _, err := c.Marshal(42); err == nil {
		t.Error("Marshal(int) should fail")
	}
}
