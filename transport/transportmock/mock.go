// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

/*
Package transportmock provides a scripted, in-memory transport.Client.

It lets session and collector tests run without a Spark server: each plan submission
replays a script of responses, and the mock records what was submitted, interrupted
and closed so tests can assert on it.

Quick start

	m := transportmock.New(transportmock.Config{
	  Scripts: [][]transportmock.Step{{
	    transportmock.Schema(schema),
	    transportmock.Batch(rec),
	    transportmock.End(),
	  }},
	})
	sess, _ := spark.Connect(ctx, "sc://localhost", spark.WithTransport(m))

Behavior

  - Submission n replays Scripts[n], or the last script once they run out.
  - Batches are retained before they are handed out, so scripts can be replayed and
    the caller still owns every record it receives.
  - When Block is set, Next waits for it to be closed (or for ctx to end) before
    returning anything.
*/
package transportmock

import (
	"context"
	"errors"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"google.golang.org/grpc/codes"

	"sparkql/client/transport"
)

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("transportmock: client closed")

// Step is one scripted result of Stream.Next: either a response or a transport error.
type Step struct {
	Response transport.Response
	Err      error
}

// Schema scripts a schema descriptor.
func Schema(s *arrow.Schema) Step {
	return Step{Response: transport.Response{Kind: transport.KindSchema, Schema: s}}
}

// Batch scripts a data batch.
func Batch(rec arrow.Record) Step {
	return Step{Response: transport.Response{Kind: transport.KindBatch, Batch: rec}}
}

// ServerError scripts a server-reported failure.
func ServerError(code codes.Code, msg string) Step {
	return Step{Response: transport.Response{
		Kind: transport.KindError,
		Err:  &transport.ServerError{Code: code, Message: msg},
	}}
}

// End scripts the end of the stream.
func End() Step {
	return Step{Response: transport.Response{Kind: transport.KindEnd}}
}

// Fault scripts a transport-level error from Next.
func Fault(err error) Step {
	return Step{Err: err}
}

// WithSession stamps a server-side session id on a scripted response.
func (s Step) WithSession(id string) Step {
	s.Response.ServerSideSessionID = id
	return s
}

// Config scripts the mock.
type Config struct {
	Scripts [][]Step

	// SubmitErr fails every SubmitPlan call.
	SubmitErr error

	// Analyze answers AnalyzeSchema. When nil, AnalyzeSchema returns an empty schema.
	Analyze func(plan []byte, sc transport.SessionContext) (transport.AnalyzeResult, error)

	Version    string
	VersionErr error

	// Block holds every Next call until it is closed.
	Block chan struct{}
}

// Submission records one SubmitPlan call.
type Submission struct {
	Plan    []byte
	Session transport.SessionContext
}

// Mock implements transport.Client.
type Mock struct {
	cfg Config

	mu          sync.Mutex
	submissions []Submission
	interrupts  []transport.SessionContext
	conf        map[string]string
	active      int
	maxActive   int
	streams     int
	closedCount int
	closes      int
	analyzes    int
	handshakes  int
}

// New returns a mock following cfg.
func New(cfg Config) *Mock {
	return &Mock{cfg: cfg, conf: map[string]string{}}
}

var _ transport.Client = (*Mock)(nil)

func (m *Mock) SubmitPlan(ctx context.Context, plan []byte, sc transport.SessionContext) (transport.Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closes > 0 {
		return nil, ErrClosed
	}
	m.submissions = append(m.submissions, Submission{Plan: append([]byte(nil), plan...), Session: sc})
	if m.cfg.SubmitErr != nil {
		return nil, m.cfg.SubmitErr
	}

	var script []Step
	if n := len(m.cfg.Scripts); n > 0 {
		script = m.cfg.Scripts[min(len(m.submissions)-1, n-1)]
	}
	m.active++
	m.maxActive = max(m.maxActive, m.active)
	m.streams++
	return &stream{mock: m, steps: script}, nil
}

func (m *Mock) AnalyzeSchema(ctx context.Context, plan []byte, sc transport.SessionContext) (transport.AnalyzeResult, error) {
	m.mu.Lock()
	m.analyzes++
	m.mu.Unlock()
	if m.cfg.Analyze != nil {
		return m.cfg.Analyze(plan, sc)
	}
	return transport.AnalyzeResult{Schema: arrow.NewSchema(nil, nil)}, nil
}

func (m *Mock) SparkVersion(ctx context.Context, sc transport.SessionContext) (string, error) {
	m.mu.Lock()
	m.handshakes++
	m.mu.Unlock()
	if m.cfg.VersionErr != nil {
		return "", m.cfg.VersionErr
	}
	if m.cfg.Version == "" {
		return "3.5.0", nil
	}
	return m.cfg.Version, nil
}

func (m *Mock) Interrupt(ctx context.Context, sc transport.SessionContext) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interrupts = append(m.interrupts, sc)
	if sc.OperationID != "" {
		return []string{sc.OperationID}, nil
	}
	return nil, nil
}

func (m *Mock) SetConfig(ctx context.Context, sc transport.SessionContext, pairs map[string]string) (transport.ConfigResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range pairs {
		m.conf[k] = v
	}
	return transport.ConfigResult{}, nil
}

func (m *Mock) GetConfig(ctx context.Context, sc transport.SessionContext, keys []string) (transport.ConfigResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := transport.ConfigResult{Values: make([]*string, len(keys))}
	for i, k := range keys {
		if v, ok := m.conf[k]; ok {
			res.Values[i] = &v
		}
	}
	return res, nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	return nil
}

// Submissions returns the recorded SubmitPlan calls.
func (m *Mock) Submissions() []Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Submission(nil), m.submissions...)
}

// Interrupts returns the recorded Interrupt calls.
func (m *Mock) Interrupts() []transport.SessionContext {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]transport.SessionContext(nil), m.interrupts...)
}

// Closes reports how many times Close was called.
func (m *Mock) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

// Analyzes reports how many schema analyses were requested.
func (m *Mock) Analyzes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.analyzes
}

// Handshakes reports how many version requests were made.
func (m *Mock) Handshakes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handshakes
}

// MaxActive reports the highest number of streams open at the same time.
func (m *Mock) MaxActive() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxActive
}

// OpenStreams reports how many streams were opened and not yet closed.
func (m *Mock) OpenStreams() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streams - m.closedCount
}

type stream struct {
	mock  *Mock
	steps []Step
	pos   int
	once  sync.Once
}

func (s *stream) Next(ctx context.Context) (transport.Response, error) {
	if b := s.mock.cfg.Block; b != nil {
		select {
		case <-b:
		case <-ctx.Done():
			return transport.Response{}, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return transport.Response{}, err
	}
	if s.pos >= len(s.steps) {
		return transport.Response{Kind: transport.KindEnd}, nil
	}
	step := s.steps[s.pos]
	s.pos++
	if step.Err != nil {
		return transport.Response{}, step.Err
	}
	if step.Response.Batch != nil {
		step.Response.Batch.Retain()
	}
	return step.Response, nil
}

func (s *stream) Close() error {
	s.once.Do(func() {
		s.mock.mu.Lock()
		s.mock.active--
		s.mock.closedCount++
		s.mock.mu.Unlock()
	})
	return nil
}
