// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package spark

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"sparkql/client/internal/arrowio"
	errs "sparkql/client/internal/errors"
	"sparkql/client/transport"
)

// collectStream drains st into a ResultSet. observe is called with every server-side
// session id the stream reports. The stream is closed before returning, and on failure
// every batch received so far is released.
func collectStream(ctx context.Context, st transport.Stream, observe func(string) error) (rs *ResultSet, err error) {
	defer st.Close()

	var (
		schema  *arrow.Schema
		batches []arrow.Record
	)
	// The descriptor and the Arrow batches may disagree on time zones and nullability;
	// once a batch arrives its schema becomes the result schema.
	defer func() {
		if err != nil {
			arrowio.Release(batches)
		}
	}()

	fix := func(s *arrow.Schema, batch bool) error {
		if schema == nil {
			schema = s
			return nil
		}
		if !arrowio.SameSchema(schema, s) {
			return errs.New(SchemaMismatch,
				fmt.Sprintf("batch %d schema %s does not match result schema %s", len(batches), s, schema))
		}
		if batch && len(batches) == 0 {
			schema = s
		}
		return nil
	}

	for {
		resp, nerr := st.Next(ctx)
		if nerr != nil {
			return nil, errs.WrapCause(ExecutionError, CauseTransport, "read result stream", nerr)
		}
		if observe != nil {
			if oerr := observe(resp.ServerSideSessionID); oerr != nil {
				if resp.Batch != nil {
					resp.Batch.Release()
				}
				return nil, oerr
			}
		}

		switch resp.Kind {
		case transport.KindSchema:
			if resp.Schema == nil {
				continue
			}
			if err := fix(resp.Schema, false); err != nil {
				return nil, err
			}
		case transport.KindBatch:
			if resp.Batch == nil {
				continue
			}
			if err := fix(resp.Batch.Schema(), true); err != nil {
				resp.Batch.Release()
				return nil, err
			}
			batches = append(batches, resp.Batch)
		case transport.KindError:
			var cause error
			if resp.Err != nil {
				cause = resp.Err
			}
			return nil, errs.WrapCause(ExecutionError, CauseServer, "plan execution failed", cause)
		case transport.KindEnd:
			if schema == nil {
				schema = arrow.NewSchema(nil, nil)
			}
			return newResultSet(schema, batches), nil
		default:
			if resp.Batch != nil {
				resp.Batch.Release()
			}
			return nil, errs.WrapCause(ExecutionError, CauseTransport,
				fmt.Sprintf("unexpected response %s", resp.Kind), nil)
		}
	}
}
