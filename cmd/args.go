// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sparkql/client/spark"
)

var literalTypes = map[string]spark.Type{
	"tinyint":   spark.ByteType,
	"byte":      spark.ByteType,
	"smallint":  spark.ShortType,
	"short":     spark.ShortType,
	"int":       spark.IntegerType,
	"integer":   spark.IntegerType,
	"bigint":    spark.LongType,
	"long":      spark.LongType,
	"float":     spark.FloatType,
	"double":    spark.DoubleType,
	"string":    spark.StringType,
	"boolean":   spark.BooleanType,
	"bool":      spark.BooleanType,
	"binary":    spark.BinaryType,
	"date":      spark.DateType,
	"timestamp": spark.TimestampType,
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05.999999",
}

// parseArg turns a --arg value of the form type:value into a literal. "null" alone is
// an untyped null; "null:type" is a typed one. Binary values are hex.
func parseArg(s string) (spark.Literal, error) {
	if strings.EqualFold(strings.TrimSpace(s), "null") {
		return spark.Null(), nil
	}
	name, val, ok := strings.Cut(s, ":")
	if !ok {
		return spark.Literal{}, fmt.Errorf("argument %q: want type:value, e.g. int:42 or string:hello", s)
	}
	name = strings.ToLower(strings.TrimSpace(name))

	if name == "null" {
		t, ok := literalTypes[strings.ToLower(strings.TrimSpace(val))]
		if !ok {
			return spark.Literal{}, fmt.Errorf("argument %q: unknown type %q", s, val)
		}
		return spark.TypedNull(t), nil
	}

	lit, err := literalOf(name, val)
	if err != nil {
		return spark.Literal{}, fmt.Errorf("argument %q: %w", s, err)
	}
	return lit, nil
}

func literalOf(name, val string) (spark.Literal, error) {
	switch literalTypes[name] {
	case spark.ByteType:
		n, err := strconv.ParseInt(val, 10, 8)
		return spark.Lit(int8(n)), err
	case spark.ShortType:
		n, err := strconv.ParseInt(val, 10, 16)
		return spark.Lit(int16(n)), err
	case spark.IntegerType:
		n, err := strconv.ParseInt(val, 10, 32)
		return spark.Lit(int32(n)), err
	case spark.LongType:
		n, err := strconv.ParseInt(val, 10, 64)
		return spark.Lit(n), err
	case spark.FloatType:
		f, err := strconv.ParseFloat(val, 32)
		return spark.Lit(float32(f)), err
	case spark.DoubleType:
		f, err := strconv.ParseFloat(val, 64)
		return spark.Lit(f), err
	case spark.StringType:
		return spark.Lit(val), nil
	case spark.BooleanType:
		b, err := strconv.ParseBool(val)
		return spark.Lit(b), err
	case spark.BinaryType:
		b, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(val), "0x"))
		return spark.Lit(b), err
	case spark.DateType:
		t, err := time.Parse(time.DateOnly, val)
		return spark.Date(t), err
	case spark.TimestampType:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, val); err == nil {
				return spark.Timestamp(t), nil
			}
		}
		return spark.Literal{}, fmt.Errorf("cannot parse %q as a timestamp", val)
	}
	return spark.Literal{}, fmt.Errorf("unknown type %q", name)
}

func parseArgs(ss []string) ([]spark.Literal, error) {
	lits := make([]spark.Literal, 0, len(ss))
	for _, s := range ss {
		l, err := parseArg(s)
		if err != nil {
			return nil, err
		}
		lits = append(lits, l)
	}
	return lits, nil
}
