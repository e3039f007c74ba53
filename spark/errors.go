// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package spark

import (
	"errors"

	errs "sparkql/client/internal/errors"
	"sparkql/client/transport"
)

// Error is the error type returned by every fallible operation in this package.
type Error = errs.E

// ErrorKind categorizes an Error.
type ErrorKind = errs.Kind

// Cause tells a transport fault from a server-reported fault.
type Cause = errs.Cause

const (
	MalformedQuery    = errs.MalformedQuery
	ConnectionError   = errs.ConnectionError
	PlanError         = errs.PlanError
	InvalidPlanOrigin = errs.InvalidPlanOrigin
	SchemaMismatch    = errs.SchemaMismatch
	ExecutionError    = errs.ExecutionError

	CauseNone      = errs.CauseNone
	CauseTransport = errs.CauseTransport
	CauseServer    = errs.CauseServer
)

// IsKind reports whether err carries kind k.
func IsKind(err error, k ErrorKind) bool { return errs.KindOf(err) == k }

// IsTransport reports whether err is a network-level fault. Such failures may be worth
// retrying; the library itself never retries.
func IsTransport(err error) bool { return errs.CauseOf(err) == CauseTransport }

// IsServer reports whether err was reported by the server for a well-formed request.
func IsServer(err error) bool { return errs.CauseOf(err) == CauseServer }

// AsServerError returns the server-reported details of err, if any.
func AsServerError(err error) (*transport.ServerError, bool) {
	var se *transport.ServerError
	ok := errors.As(err, &se)
	return se, ok
}
