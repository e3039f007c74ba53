// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"google.golang.org/grpc/codes"

	errs "sparkql/client/internal/errors"
	"sparkql/client/transport"
)

func TestPresentErrorMasks(t *testing.T) {
	got := PresentError("connect", errors.New("dial sc://h:1/;token=s3cr3t failed"))
	if strings.Contains(got, "s3cr3t") {
		t.Errorf("secret leaked: %s", got)
	}
	if !strings.HasPrefix(got, "connect: ") {
		t.Errorf("PresentError() = %q", got)
	}
	if PresentError("x", nil) != "" {
		t.Error("PresentError(nil) should be empty")
	}
}

func TestNewLoggerMasksAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "debug")
	log.Debug("connecting", "remote", "sc://h:15002/;token=s3cr3t", "err", errors.New("password=hunter2"))

	out := buf.String()
	if !strings.Contains(out, "connecting") {
		t.Fatalf("message missing from %q", out)
	}
	if strings.Contains(out, "s3cr3t") || strings.Contains(out, "hunter2") {
		t.Errorf("secret leaked: %q", out)
	}
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "warn")
	log.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]pterm.LogLevel{
		"debug":   pterm.LogLevelDebug,
		" WARN ":  pterm.LogLevelWarn,
		"error":   pterm.LogLevelError,
		"off":     pterm.LogLevelDisabled,
		"":        pterm.LogLevelInfo,
		"verbose": pterm.LogLevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCategoryForCode(t *testing.T) {
	tests := []struct {
		code codes.Code
		msg  string
		want GRPCErrorType
	}{
		{codes.Unauthenticated, "", GRPCErrorAuth},
		{codes.DeadlineExceeded, "", GRPCErrorTimeout},
		{codes.Unavailable, "connection refused", GRPCErrorNetwork},
		{codes.Unavailable, "", GRPCErrorUnavailable},
		{codes.Internal, "", GRPCErrorInternal},
		{codes.Unknown, "", GRPCErrorUnknown},
	}
	for _, tt := range tests {
		if got := CategoryForCode(tt.code, tt.msg); got != tt.want {
			t.Errorf("CategoryForCode(%s, %q) = %s, want %s", tt.code, tt.msg, got, tt.want)
		}
	}
}

func TestFormatFailure(t *testing.T) {
	pterm.DisableStyling()
	t.Cleanup(pterm.EnableStyling)

	se := &transport.ServerError{Message: "[DIVIDE_BY_ZERO] Division by zero", ErrorClass: "DIVIDE_BY_ZERO", SQLState: "22012"}
	out := FormatFailure(errs.WrapCause(errs.ExecutionError, errs.CauseServer, "plan execution failed", se))
	for _, want := range []string{"Query Failed", "Error class: DIVIDE_BY_ZERO", "SQL state:   22012"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatFailure() missing %q:\n%s", want, out)
		}
	}

	out = FormatFailure(errs.WrapCause(errs.ConnectionError, errs.CauseTransport, "handshake",
		errors.New("rpc error: code = Unavailable desc = connection refused; token=abc")))
	if !strings.Contains(out, "Connection Problem") || !strings.Contains(out, "reachable") {
		t.Errorf("FormatFailure() = %s", out)
	}
	if strings.Contains(out, "token=abc") {
		t.Errorf("secret leaked: %s", out)
	}
	if FormatFailure(nil) != "" {
		t.Error("FormatFailure(nil) should be empty")
	}
}
