// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package transport defines the channel a Session uses to reach a Spark Connect server:
// a plan submission that yields an ordered stream of responses, plus the few unary
// calls (analyze, config, interrupt) the session needs around it.
//
// The gRPC implementation lives in internal/bridge/grpcclient; transportmock provides a
// scripted in-memory implementation for tests.
package transport

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"google.golang.org/grpc/codes"
)

// SessionContext identifies the logical session a request belongs to.
type SessionContext struct {
	SessionID  string
	UserID     string
	UserName   string
	ClientType string

	// ServerSideSessionID is the last server-side session id observed by the client.
	// Empty before the first response.
	ServerSideSessionID string

	// OperationID is set on plan submissions so the operation can be interrupted.
	OperationID string
	Tags        []string
}

// Kind is the type of a streamed response.
type Kind int

const (
	// KindSchema carries the result schema descriptor.
	KindSchema Kind = iota + 1
	// KindBatch carries one columnar data batch.
	KindBatch
	// KindError carries a server-reported failure. No further responses follow.
	KindError
	// KindEnd marks the end of the result stream.
	KindEnd
)

func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "schema"
	case KindBatch:
		return "batch"
	case KindError:
		return "error"
	case KindEnd:
		return "end"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Response is one message of a result stream. Batch is owned by the receiver, which must
// Release it (or hand it on) once done.
type Response struct {
	Kind   Kind
	Schema *arrow.Schema
	Batch  arrow.Record
	Err    *ServerError

	// ServerSideSessionID as reported by the server on this response, if any.
	ServerSideSessionID string
}

// ServerError is a failure reported by the server for a well-formed request, such as an
// analysis error or a runtime failure while executing a plan.
type ServerError struct {
	Code       codes.Code
	Message    string
	ErrorClass string
	SQLState   string
	Reason     string
}

func (e *ServerError) Error() string {
	if e.ErrorClass != "" {
		return fmt.Sprintf("[%s] %s", e.ErrorClass, e.Message)
	}
	return e.Message
}

// Stream yields the responses of one plan execution in arrival order.
type Stream interface {
	// Next blocks until the next response is available. Transport-level faults are
	// returned as errors; server-reported failures arrive as KindError responses.
	Next(ctx context.Context) (Response, error)
	// Close releases the stream. It is safe to call more than once.
	Close() error
}

// AnalyzeResult is the outcome of a schema analysis.
type AnalyzeResult struct {
	Schema              *arrow.Schema
	ServerSideSessionID string
}

// ConfigResult is the outcome of a configuration call. Values holds the value of each
// requested key in request order; nil means unset.
type ConfigResult struct {
	Values              []*string
	Warnings            []string
	ServerSideSessionID string
}

// Client is a persistent channel to one server. Implementations must be safe for
// concurrent use.
type Client interface {
	// SubmitPlan sends an encoded plan for execution and returns its response stream.
	SubmitPlan(ctx context.Context, plan []byte, sc SessionContext) (Stream, error)
	// AnalyzeSchema resolves the output schema of an encoded plan without running it.
	// Server rejections are returned as *ServerError.
	AnalyzeSchema(ctx context.Context, plan []byte, sc SessionContext) (AnalyzeResult, error)
	// SparkVersion returns the server version; it also establishes the session.
	SparkVersion(ctx context.Context, sc SessionContext) (string, error)
	// Interrupt interrupts the operation sc.OperationID, or every operation of the
	// session when it is empty. It returns the interrupted operation ids.
	Interrupt(ctx context.Context, sc SessionContext) ([]string, error)
	// SetConfig sets session-scoped configuration.
	SetConfig(ctx context.Context, sc SessionContext, pairs map[string]string) (ConfigResult, error)
	// GetConfig reads session-scoped configuration.
	GetConfig(ctx context.Context, sc SessionContext, keys []string) (ConfigResult, error)
	// Close releases the underlying connection.
	Close() error
}
