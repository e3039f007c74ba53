// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package grpcclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"

	sparkpb "sparkql/client/internal/bridge/proto"
	"sparkql/client/internal/arrowio"
	"sparkql/client/transport"
)

// stream adapts an ExecutePlan server stream to transport.Stream. One server message can
// expand into several responses (a schema plus each record of an Arrow batch), so decoded
// responses are queued in pending.
type stream struct {
	cs     grpc.ClientStream
	cancel context.CancelFunc
	mem    memory.Allocator

	pending []transport.Response
	done    bool
	once    sync.Once
}

func (s *stream) Next(ctx context.Context) (transport.Response, error) {
	if err := ctx.Err(); err != nil {
		return transport.Response{}, err
	}
	stop := context.AfterFunc(ctx, s.cancel)
	defer stop()

	for len(s.pending) == 0 {
		if s.done {
			return transport.Response{Kind: transport.KindEnd}, nil
		}
		var msg sparkpb.ExecutePlanResponse
		if err := s.cs.RecvMsg(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				s.done = true
				continue
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return transport.Response{}, ctxErr
			}
			var se *transport.ServerError
			if errors.As(classify(err), &se) {
				s.done = true
				return transport.Response{Kind: transport.KindError, Err: se}, nil
			}
			return transport.Response{}, classify(err)
		}
		if err := s.expand(&msg); err != nil {
			return transport.Response{}, err
		}
	}

	r := s.pending[0]
	s.pending = s.pending[1:]
	return r, nil
}

// expand queues the responses carried by one server message.
func (s *stream) expand(msg *sparkpb.ExecutePlanResponse) error {
	if msg.Schema != nil {
		schema, err := arrowio.SchemaFromDataType(msg.Schema)
		if err != nil {
			return fmt.Errorf("decode result schema: %w", err)
		}
		s.pending = append(s.pending, transport.Response{
			Kind:                transport.KindSchema,
			Schema:              schema,
			ServerSideSessionID: msg.ServerSideSessionID,
		})
	}
	if b := msg.ArrowBatch; b != nil {
		schema, recs, err := arrowio.Decode(b.Data, b.RowCount, s.mem)
		if err != nil {
			return fmt.Errorf("decode arrow batch: %w", err)
		}
		if len(recs) == 0 {
			// A batch with a schema and no rows still announces the result schema.
			s.pending = append(s.pending, transport.Response{
				Kind:                transport.KindSchema,
				Schema:              schema,
				ServerSideSessionID: msg.ServerSideSessionID,
			})
		}
		for _, rec := range recs {
			s.pending = append(s.pending, transport.Response{
				Kind:                transport.KindBatch,
				Batch:               rec,
				ServerSideSessionID: msg.ServerSideSessionID,
			})
		}
	}
	if msg.ResultComplete {
		s.done = true
	}
	return nil
}

func (s *stream) Close() error {
	s.once.Do(func() {
		for _, r := range s.pending {
			if r.Batch != nil {
				r.Batch.Release()
			}
		}
		s.pending = nil
		s.done = true
		s.cancel()
	})
	return nil
}
