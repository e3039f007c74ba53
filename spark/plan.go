// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package spark

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"

	sparkpb "sparkql/client/internal/bridge/proto"
	errs "sparkql/client/internal/errors"
	"sparkql/client/internal/sqltext"
)

// Plan is a query translated into a Spark Connect plan and not yet executed. It holds no
// network resources and is only valid on the Session that produced it.
type Plan struct {
	origin    string
	sessionID string
	query     Query
	encoded   []byte
	schema    *arrow.Schema
}

// SessionID returns the id of the session that produced the plan.
func (p Plan) SessionID() string { return p.sessionID }

// Query returns the query the plan was built from.
func (p Plan) Query() Query { return p.query }

// Schema returns the analyzed result schema, or nil when the plan was not validated
// by the server.
func (p Plan) Schema() *arrow.Schema { return p.schema }

// Bytes returns a copy of the encoded spark.connect.Plan.
func (p Plan) Bytes() []byte { return append([]byte(nil), p.encoded...) }

// Plan translates q into a plan. Translation is local; with plan validation enabled the
// plan's schema is also analyzed by the server, which may reject it.
func (s *Session) Plan(ctx context.Context, q Query) (Plan, error) {
	if s.closed.Load() {
		return Plan{}, errs.New(ConnectionError, "session is closed")
	}

	info := sqltext.Scan(q.sql)
	switch {
	case info.Unterminated:
		return Plan{}, errs.New(PlanError, "statement has an unterminated quote or comment")
	case info.Statements == 0:
		return Plan{}, errs.New(PlanError, "empty statement")
	case info.Statements > 1:
		return Plan{}, errs.New(PlanError, "only one statement per query is supported")
	}
	if info.Placeholders != len(q.args) {
		return Plan{}, errs.New(MalformedQuery, "query was not built with Finish")
	}

	args := make([]*sparkpb.Literal, len(q.args))
	for i, a := range q.args {
		args[i] = a.proto()
	}
	encoded, err := sparkpb.NewSQLPlan(q.sql, args).Marshal()
	if err != nil {
		return Plan{}, errs.Wrap(PlanError, "encode plan", err)
	}
	p := Plan{origin: s.origin, sessionID: s.id, query: q, encoded: encoded}

	if s.validate {
		res, err := s.client.AnalyzeSchema(ctx, encoded, s.sessionContext(""))
		if err != nil {
			return Plan{}, errs.WrapCause(PlanError, causeOf(err), "plan rejected", err)
		}
		if err := s.observe(res.ServerSideSessionID); err != nil {
			return Plan{}, errs.WrapCause(PlanError, CauseServer, "plan rejected", err)
		}
		p.schema = res.Schema
	}
	s.logger.Debug("plan built", "session", s.id, "args", len(args), "validated", s.validate)
	return p, nil
}

// PlanSQL builds and plans sql with the given arguments.
func (s *Session) PlanSQL(ctx context.Context, sql string, args ...Literal) (Plan, error) {
	q, err := NewQuery(sql).BindAll(args...).Finish()
	if err != nil {
		return Plan{}, err
	}
	return s.Plan(ctx, q)
}
