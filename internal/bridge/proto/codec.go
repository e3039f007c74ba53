// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sparkpb

import (
	"fmt"
)

// Message is implemented by every request and response in this package.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal(b []byte) error
}

// RawFrame carries an undecoded message body through the codec.
type RawFrame []byte

// Codec is a grpc encoding.Codec for the hand-written messages. It registers under the
// "proto" name so the wire content type stays application/grpc+proto.
type Codec struct{}

func (Codec) Name() string { return "proto" }

func (Codec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case Message:
		return m.Marshal()
	case RawFrame:
		return m, nil
	case *RawFrame:
		return *m, nil
	}
	return nil, fmt.Errorf("sparkpb: cannot marshal %T", v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case Message:
		return m.Unmarshal(data)
	case *RawFrame:
		*m = append((*m)[:0], data...)
		return nil
	}
	return fmt.Errorf("sparkpb: cannot unmarshal into %T", v)
}
