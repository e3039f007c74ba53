// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"google.golang.org/grpc/codes"

	errs "sparkql/client/internal/errors"
	"sparkql/client/transport"
)

// GRPCErrorType represents the category of gRPC error
type GRPCErrorType int

const (
	GRPCErrorUnknown GRPCErrorType = iota
	GRPCErrorNetwork
	GRPCErrorAuth
	GRPCErrorTimeout
	GRPCErrorInternal
	GRPCErrorUnavailable
)

func (t GRPCErrorType) String() string {
	switch t {
	case GRPCErrorNetwork:
		return "network"
	case GRPCErrorAuth:
		return "auth"
	case GRPCErrorTimeout:
		return "timeout"
	case GRPCErrorInternal:
		return "internal"
	case GRPCErrorUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// ParseGRPCError categorizes a gRPC error message
func ParseGRPCError(errMsg string) GRPCErrorType {
	lower := strings.ToLower(errMsg)

	if strings.Contains(lower, "rst_stream") || strings.Contains(lower, "connection reset") ||
		strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host") {
		return GRPCErrorNetwork
	}
	if strings.Contains(lower, "internal_error") {
		return GRPCErrorInternal
	}
	if strings.Contains(lower, "unavailable") {
		return GRPCErrorUnavailable
	}
	if strings.Contains(lower, "deadline") || strings.Contains(lower, "timeout") || strings.Contains(lower, "canceled") {
		return GRPCErrorTimeout
	}
	if strings.Contains(lower, "unauthenticated") || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "permissiondenied") || strings.Contains(lower, "permission denied") {
		return GRPCErrorAuth
	}

	return GRPCErrorUnknown
}

// CategoryForCode maps a status code to a category, falling back to the message.
func CategoryForCode(code codes.Code, msg string) GRPCErrorType {
	switch code {
	case codes.Unauthenticated, codes.PermissionDenied:
		return GRPCErrorAuth
	case codes.DeadlineExceeded, codes.Canceled:
		return GRPCErrorTimeout
	case codes.Internal:
		return GRPCErrorInternal
	}
	if t := ParseGRPCError(msg); t != GRPCErrorUnknown {
		return t
	}
	if code == codes.Unavailable {
		return GRPCErrorUnavailable
	}
	return GRPCErrorUnknown
}

// FormatFailure renders a library error for the terminal: a title per error kind, a
// short hint, and the masked technical details.
func FormatFailure(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	title, hint := describe(err)

	b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(title))
	b.WriteString("\n\n")

	var se *transport.ServerError
	if errors.As(err, &se) {
		if se.ErrorClass != "" {
			fmt.Fprintf(&b, "Error class: %s\n", se.ErrorClass)
		}
		if se.SQLState != "" {
			fmt.Fprintf(&b, "SQL state:   %s\n", se.SQLState)
		}
		b.WriteString(Mask(se.Message))
		b.WriteString("\n\n")
	}

	if hint != "" {
		b.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ " + hint))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
	return b.String()
}

func describe(err error) (title, hint string) {
	switch errs.KindOf(err) {
	case errs.MalformedQuery:
		return "Malformed Query", "bind exactly one --arg per '?' placeholder"
	case errs.PlanError:
		if errs.CauseOf(err) == errs.CauseServer {
			return "Query Rejected", "check table and column names"
		}
		return "Invalid Statement", "submit exactly one SQL statement"
	case errs.SchemaMismatch:
		return "Inconsistent Result", "the server returned batches with different schemas"
	case errs.InvalidPlanOrigin:
		return "Wrong Session", "plans can only run on the session that built them"
	case errs.ConnectionError, errs.ExecutionError:
		if errs.CauseOf(err) == errs.CauseServer {
			return "Query Failed", ""
		}
		return "Connection Problem", transportHint(ParseGRPCError(err.Error()))
	}
	return "Error", ""
}

func transportHint(t GRPCErrorType) string {
	switch t {
	case GRPCErrorNetwork:
		return "check that the Spark Connect server is running and reachable"
	case GRPCErrorUnavailable:
		return "the server is unavailable; try again shortly"
	case GRPCErrorTimeout:
		return "the call timed out or was canceled; raise --timeout for long queries"
	case GRPCErrorAuth:
		return "check the token in your connection string; run 'sparkql connect' to update it"
	case GRPCErrorInternal:
		return "the server hit an internal error"
	}
	return "run 'sparkql conninfo' to check the configured connection"
}

// PresentFailure prints FormatFailure(err) to stdout.
func PresentFailure(err error) {
	pterm.Println()
	pterm.Println(FormatFailure(err))
	pterm.Println()
}
