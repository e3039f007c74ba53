// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package spark

import (
	"context"
	"fmt"
	"strings"

	errs "sparkql/client/internal/errors"
	"sparkql/client/internal/sqltext"
)

// Query is an immutable SQL template with its ordered literal arguments. Placeholders
// are positional '?' markers.
type Query struct {
	sql  string
	args []Literal
}

// SQL returns the template.
func (q Query) SQL() string { return q.sql }

// Args returns a copy of the bound literals in binding order.
func (q Query) Args() []Literal { return append([]Literal(nil), q.args...) }

// Equal reports whether q and o have the same template and literals.
func (q Query) Equal(o Query) bool {
	if q.sql != o.sql || len(q.args) != len(o.args) {
		return false
	}
	for i := range q.args {
		if !q.args[i].Equal(o.args[i]) {
			return false
		}
	}
	return true
}

func (q Query) String() string {
	parts := make([]string, len(q.args))
	for i, a := range q.args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s [%s]", q.sql, strings.Join(parts, ", "))
}

// QueryBuilder accumulates a template and its arguments. Builders made with
// Session.Query can also Execute.
type QueryBuilder struct {
	sql  string
	args []Literal
	sess *Session
}

// NewQuery starts a query for sql.
func NewQuery(sql string) *QueryBuilder {
	return &QueryBuilder{sql: sql}
}

// Bind appends one argument and returns the builder.
func (b *QueryBuilder) Bind(l Literal) *QueryBuilder {
	b.args = append(b.args, l)
	return b
}

// BindAll appends arguments in order.
func (b *QueryBuilder) BindAll(ls ...Literal) *QueryBuilder {
	b.args = append(b.args, ls...)
	return b
}

// Finish checks that every placeholder has exactly one argument and returns the query.
func (b *QueryBuilder) Finish() (Query, error) {
	want := sqltext.CountPlaceholders(b.sql)
	if want != len(b.args) {
		return Query{}, errs.New(MalformedQuery,
			fmt.Sprintf("query has %d placeholders but %d values are bound", want, len(b.args)))
	}
	return Query{sql: b.sql, args: append([]Literal(nil), b.args...)}, nil
}

// Execute finishes the query, plans it and collects the result on the builder's session.
func (b *QueryBuilder) Execute(ctx context.Context) (*ResultSet, error) {
	if b.sess == nil {
		return nil, errs.New(ConnectionError, "query is not bound to a session; use Session.Query")
	}
	q, err := b.Finish()
	if err != nil {
		return nil, err
	}
	p, err := b.sess.Plan(ctx, q)
	if err != nil {
		return nil, err
	}
	return b.sess.Collect(ctx, p)
}
