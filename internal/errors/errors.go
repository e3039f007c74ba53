// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for the sparkql client.
// Every fallible library operation returns an *E carrying a machine-readable Kind,
// a Cause distinguishing transport faults from server-reported faults, and the
// underlying error when there is one.
//
// The public spark package re-exports these types so applications can match on
// kinds without importing an internal package.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// MalformedQuery indicates a placeholder/binding count mismatch.
	MalformedQuery Kind = "malformed_query"
	// ConnectionError indicates a failure to establish or use the session transport.
	ConnectionError Kind = "connection_error"
	// PlanError indicates a local or server-side rejection of a plan.
	PlanError Kind = "plan_error"
	// InvalidPlanOrigin indicates a plan submitted to a session that did not produce it.
	InvalidPlanOrigin Kind = "invalid_plan_origin"
	// SchemaMismatch indicates inconsistent batch schemas within one result stream.
	SchemaMismatch Kind = "schema_mismatch"
	// ExecutionError indicates a failed plan execution.
	ExecutionError Kind = "execution_error"
)

// Cause tells whether a failure came from the network or from the engine.
type Cause string

const (
	CauseNone      Cause = ""
	CauseTransport Cause = "transport"
	CauseServer    Cause = "server"
)

// E wraps an error with kind, cause and human-friendly message.
type E struct {
	Kind    Kind
	Cause   Cause
	Message string
	Err     error
}

func (e *E) Error() string {
	prefix := string(e.Kind)
	if e.Cause != CauseNone {
		prefix += " (" + string(e.Cause) + ")"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

// Is reports kind equality so errors.Is(err, &E{Kind: k}) matches any *E of kind k.
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	if t.Cause != CauseNone && t.Cause != e.Cause {
		return false
	}
	return t.Kind == e.Kind
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// WrapCause is Wrap with an explicit fault origin.
func WrapCause(kind Kind, cause Cause, msg string, err error) *E {
	return &E{Kind: kind, Cause: cause, Message: msg, Err: err}
}

// KindOf returns the kind of the first *E in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// CauseOf returns the cause of the first *E in err's chain.
func CauseOf(err error) Cause {
	var e *E
	if stderrors.As(err, &e) {
		return e.Cause
	}
	return CauseNone
}
