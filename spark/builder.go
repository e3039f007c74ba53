// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package spark

import (
	"context"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"

	"sparkql/client/transport"
)

// Option configures Connect.
type Option func(*options)

type options struct {
	client    transport.Client
	logger    *slog.Logger
	validate  *bool
	allocator memory.Allocator
	dial      []grpc.DialOption
	tags      []string
}

// WithTransport uses c instead of dialing the server over gRPC. The session takes
// ownership of c and closes it on Close.
func WithTransport(c transport.Client) Option {
	return func(o *options) { o.client = c }
}

// WithLogger sets the logger for session diagnostics. Sessions are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPlanValidation overrides the validate_plans connection string key.
func WithPlanValidation(on bool) Option {
	return func(o *options) { o.validate = &on }
}

// WithAllocator sets the Arrow allocator used to decode result batches.
func WithAllocator(mem memory.Allocator) Option {
	return func(o *options) { o.allocator = mem }
}

// WithDialOptions appends gRPC dial options, e.g. a custom dialer or interceptors.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(o *options) { o.dial = append(o.dial, opts...) }
}

// WithTags attaches operation tags to every plan the session executes.
func WithTags(tags ...string) Option {
	return func(o *options) { o.tags = append(o.tags, tags...) }
}

// SessionBuilder collects a connection string and options before connecting.
type SessionBuilder struct {
	conn string
	opts []Option
}

// NewSessionBuilder starts a builder for conn. An empty conn uses SPARK_REMOTE or
// sc://localhost:15002.
func NewSessionBuilder(conn string) *SessionBuilder {
	return &SessionBuilder{conn: conn}
}

// With appends options.
func (b *SessionBuilder) With(opts ...Option) *SessionBuilder {
	b.opts = append(b.opts, opts...)
	return b
}

// Build connects the session.
func (b *SessionBuilder) Build(ctx context.Context) (*Session, error) {
	return Connect(ctx, b.conn, b.opts...)
}
