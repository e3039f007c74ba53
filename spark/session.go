// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package spark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"sparkql/client/internal/bridge/grpcclient"
	"sparkql/client/internal/dsn"
	errs "sparkql/client/internal/errors"
	"sparkql/client/transport"
)

// Version is the client version reported to the server.
const Version = "0.3.0"

const interruptTimeout = 5 * time.Second

// Session is one logical connection to a Spark Connect server. Methods are safe for
// concurrent use; Collect calls are serialized so at most one runs at a time.
type Session struct {
	id         string
	origin     string
	userID     string
	clientType string
	validate   bool
	tags       []string
	version    string
	endpoint   string

	client transport.Client
	logger *slog.Logger

	exec *semaphore.Weighted

	mu           sync.Mutex
	serverSideID string

	closed    atomic.Bool
	closeOnce sync.Once
}

// Connect parses conn, opens the transport and performs the handshake. An empty conn
// uses SPARK_REMOTE or sc://localhost:15002. Failures are ConnectionError and are not
// retried.
func Connect(ctx context.Context, conn string, opts ...Option) (*Session, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if conn == "" {
		conn = dsn.Remote()
	}

	c, err := dsn.ParseSpark(conn)
	if err != nil {
		return nil, errs.Wrap(ConnectionError, "parse connection string", err)
	}

	s := &Session{
		id:         c.SessionID,
		userID:     c.UserID,
		clientType: clientType(c.UserAgent),
		validate:   c.ValidatePlans,
		tags:       o.tags,
		endpoint:   c.Address(),
		client:     o.client,
		logger:     o.logger,
		exec:       semaphore.NewWeighted(1),
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	// Plans are bound to this handle, not to the id, which callers may reuse.
	s.origin = uuid.NewString()
	if o.validate != nil {
		s.validate = *o.validate
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}

	if s.client == nil {
		s.client, err = grpcclient.New(grpcclient.Options{
			Target:      c.Address(),
			UseTLS:      c.UseSSL,
			Token:       c.Token,
			Headers:     c.Headers,
			UserAgent:   s.clientType,
			DialOptions: o.dial,
			Allocator:   o.allocator,
			Logger:      s.logger,
		})
		if err != nil {
			return nil, errs.WrapCause(ConnectionError, CauseTransport, "open channel to "+c.Address(), err)
		}
	}

	version, err := s.client.SparkVersion(ctx, s.sessionContext(""))
	if err != nil {
		_ = s.client.Close()
		return nil, errs.WrapCause(ConnectionError, causeOf(err), "handshake with "+c.Address(), err)
	}
	s.version = version
	s.logger.Info("session established", "endpoint", c.Address(), "session", s.id, "spark", version)
	if ok, verr := SupportsPositionalArgs(version); verr == nil && !ok {
		s.logger.Warn("server predates positional parameters; bound queries will be rejected",
			"spark", version, "minimum", MinServerVersion)
	}
	return s, nil
}

// WithSession connects, runs fn and closes the session, returning fn's error joined
// with any close error.
func WithSession(ctx context.Context, conn string, fn func(*Session) error, opts ...Option) error {
	s, err := Connect(ctx, conn, opts...)
	if err != nil {
		return err
	}
	ferr := fn(s)
	return errors.Join(ferr, s.Close())
}

func clientType(userAgent string) string {
	if userAgent == "" {
		userAgent = "sparkql"
	}
	return fmt.Sprintf("%s os/%s spark_connect/%s", userAgent, runtime.GOOS, Version)
}

// ID returns the client-side session id.
func (s *Session) ID() string { return s.id }

// Endpoint returns the host:port the session talks to.
func (s *Session) Endpoint() string { return s.endpoint }

// ServerVersion returns the Spark version reported during the handshake.
func (s *Session) ServerVersion() string { return s.version }

// ServerSideSessionID returns the server-side session id observed so far, if any.
func (s *Session) ServerSideSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serverSideID
}

// Query starts a query bound to the session, so it can Execute.
func (s *Session) Query(sql string) *QueryBuilder {
	return &QueryBuilder{sql: sql, sess: s}
}

func (s *Session) sessionContext(operationID string) transport.SessionContext {
	sc := transport.SessionContext{
		SessionID:           s.id,
		UserID:              s.userID,
		ClientType:          s.clientType,
		ServerSideSessionID: s.ServerSideSessionID(),
		OperationID:         operationID,
	}
	if operationID != "" {
		sc.Tags = s.tags
	}
	return sc
}

// observe records the server-side session id. A change means the server lost the
// session, and every later result would be computed without its state.
func (s *Session) observe(id string) error {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.serverSideID == "" {
		s.serverSideID = id
		return nil
	}
	if s.serverSideID != id {
		return errs.WrapCause(ExecutionError, CauseServer,
			fmt.Sprintf("server-side session changed from %s to %s", s.serverSideID, id), nil)
	}
	return nil
}

// Collect executes p and returns its complete result. It fails with InvalidPlanOrigin,
// without any network call, when p was produced by another session.
func (s *Session) Collect(ctx context.Context, p Plan) (*ResultSet, error) {
	if p.origin == "" || p.origin != s.origin {
		return nil, errs.New(InvalidPlanOrigin,
			fmt.Sprintf("plan was built by another session (id %q); this session is %q", p.sessionID, s.id))
	}
	if s.closed.Load() {
		return nil, errs.New(ConnectionError, "session is closed")
	}

	if err := s.exec.Acquire(ctx, 1); err != nil {
		return nil, errs.WrapCause(ExecutionError, CauseTransport, "wait for session", err)
	}
	defer s.exec.Release(1)

	sc := s.sessionContext(uuid.NewString())
	start := time.Now()
	st, err := s.client.SubmitPlan(ctx, p.encoded, sc)
	if err != nil {
		return nil, errs.WrapCause(ExecutionError, causeOf(err), "submit plan", err)
	}

	rs, err := collectStream(ctx, st, s.observe)
	if err != nil {
		if ctx.Err() != nil {
			s.interruptOperation(sc)
		}
		s.logger.Debug("collect failed", "operation", sc.OperationID, "error", err)
		return nil, err
	}
	s.logger.Debug("collect finished", "operation", sc.OperationID,
		"batches", len(rs.batches), "rows", rs.NumRows(), "elapsed", time.Since(start))
	return rs, nil
}

// interruptOperation asks the server to stop an abandoned operation. Failures are only
// logged: the caller already has the cancellation error.
func (s *Session) interruptOperation(sc transport.SessionContext) {
	ctx, cancel := context.WithTimeout(context.Background(), interruptTimeout)
	defer cancel()
	if _, err := s.client.Interrupt(ctx, sc); err != nil {
		s.logger.Warn("interrupt failed", "operation", sc.OperationID, "error", err)
	}
}

// Interrupt interrupts every operation running in the session and returns their ids.
func (s *Session) Interrupt(ctx context.Context) ([]string, error) {
	if s.closed.Load() {
		return nil, errs.New(ConnectionError, "session is closed")
	}
	ids, err := s.client.Interrupt(ctx, s.sessionContext(""))
	if err != nil {
		return nil, errs.WrapCause(ExecutionError, causeOf(err), "interrupt", err)
	}
	return ids, nil
}

// SetConf sets session-scoped Spark configuration.
func (s *Session) SetConf(ctx context.Context, pairs map[string]string) error {
	if s.closed.Load() {
		return errs.New(ConnectionError, "session is closed")
	}
	res, err := s.client.SetConfig(ctx, s.sessionContext(""), pairs)
	if err != nil {
		return errs.WrapCause(ExecutionError, causeOf(err), "set config", err)
	}
	for _, w := range res.Warnings {
		s.logger.Warn("config warning", "warning", w)
	}
	return s.observe(res.ServerSideSessionID)
}

// GetConf reads session-scoped Spark configuration. Unset keys are absent from the map.
func (s *Session) GetConf(ctx context.Context, keys ...string) (map[string]string, error) {
	if s.closed.Load() {
		return nil, errs.New(ConnectionError, "session is closed")
	}
	res, err := s.client.GetConfig(ctx, s.sessionContext(""), keys)
	if err != nil {
		return nil, errs.WrapCause(ExecutionError, causeOf(err), "get config", err)
	}
	if err := s.observe(res.ServerSideSessionID); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(keys))
	for i, k := range keys {
		if i < len(res.Values) && res.Values[i] != nil {
			out[k] = *res.Values[i]
		}
	}
	return out, nil
}

// Close releases the transport. Only the first call does anything; later calls return nil.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if cerr := s.client.Close(); cerr != nil {
			err = errs.WrapCause(ConnectionError, CauseTransport, "close session", cerr)
		}
		s.logger.Debug("session closed", "session", s.id)
	})
	return err
}

// causeOf tells server rejections from transport faults.
func causeOf(err error) Cause {
	var se *transport.ServerError
	if errors.As(err, &se) {
		return CauseServer
	}
	return CauseTransport
}
