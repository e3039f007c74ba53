// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"
)

func TestError(t *testing.T) {
	tests := []struct {
		name string
		err  *E
		want string
	}{
		{
			name: "kind and message",
			err:  New(MalformedQuery, "expected 2 bound values, got 1"),
			want: "malformed_query: expected 2 bound values, got 1",
		},
		{
			name: "wrapped with cause",
			err:  WrapCause(ExecutionError, CauseTransport, "stream interrupted", io.ErrUnexpectedEOF),
			want: "execution_error (transport): stream interrupted: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindAndCauseThroughWrapping(t *testing.T) {
	base := WrapCause(ExecutionError, CauseServer, "table not found", nil)
	wrapped := fmt.Errorf("collect: %w", base)

	if KindOf(wrapped) != ExecutionError {
		t.Errorf("KindOf() = %q, want %q", KindOf(wrapped), ExecutionError)
	}
	if CauseOf(wrapped) != CauseServer {
		t.Errorf("CauseOf() = %q, want %q", CauseOf(wrapped), CauseServer)
	}
	if !stderrors.Is(wrapped, &E{Kind: ExecutionError}) {
		t.Error("errors.Is should match on kind")
	}
	if stderrors.Is(wrapped, &E{Kind: ExecutionError, Cause: CauseTransport}) {
		t.Error("errors.Is should not match a different cause")
	}
	if KindOf(io.EOF) != "" {
		t.Error("KindOf() of a foreign error should be empty")
	}
}

func TestUnwrap(t *testing.T) {
	err := Wrap(ConnectionError, "dial failed", io.ErrClosedPipe)
	if !stderrors.Is(err, io.ErrClosedPipe) {
		t.Error("wrapped error should be reachable with errors.Is")
	}
}
