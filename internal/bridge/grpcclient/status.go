// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package grpcclient

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"sparkql/client/internal/logging"
	"sparkql/client/transport"
)

// TransportError is a failure of the channel itself: the server could not be reached,
// the connection dropped, or the call was canceled.
type TransportError struct {
	Code     codes.Code
	Category logging.GRPCErrorType
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// transportCodes are the status codes gRPC itself produces for channel failures.
var transportCodes = map[codes.Code]bool{
	codes.Unavailable:      true,
	codes.Canceled:         true,
	codes.DeadlineExceeded: true,
	codes.Unknown:          true,
}

// classify turns a gRPC error into a *TransportError or a *transport.ServerError.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Code: status.Code(err), Category: logging.GRPCErrorTimeout, Err: err}
	}
	st, ok := status.FromError(err)
	if !ok {
		return &TransportError{Code: codes.Unknown, Category: logging.ParseGRPCError(err.Error()), Err: err}
	}

	info := errorInfo(st)
	if transportCodes[st.Code()] && info == nil {
		return &TransportError{Code: st.Code(), Category: logging.CategoryForCode(st.Code(), st.Message()), Err: err}
	}

	se := &transport.ServerError{Code: st.Code(), Message: st.Message()}
	if info != nil {
		se.Reason = info.GetReason()
		se.ErrorClass = info.GetMetadata()["errorClass"]
		se.SQLState = info.GetMetadata()["sqlState"]
	}
	return se
}

func errorInfo(st *status.Status) *errdetails.ErrorInfo {
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info
		}
	}
	return nil
}
