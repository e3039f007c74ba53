// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package neterrors explains network failures (timeouts, DNS, refused connections, TLS)
// when dialing the Spark Connect server or the export database.
package neterrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Class is the kind of network failure.
type Class int

const (
	Other Class = iota
	Timeout
	DNS
	Refused
	TLS
)

func (c Class) String() string {
	switch c {
	case Timeout:
		return "timeout"
	case DNS:
		return "dns"
	case Refused:
		return "refused"
	case TLS:
		return "tls"
	}
	return "other"
}

// Classify inspects err's chain first and falls back to its message, since gRPC
// flattens dial errors into status text.
func Classify(err error) Class {
	if err == nil {
		return Other
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return DNS
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return Refused
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such host"):
		return DNS
	case strings.Contains(msg, "connection refused"):
		return Refused
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return Timeout
	case strings.Contains(msg, "tls") || strings.Contains(msg, "certificate") || strings.Contains(msg, "x509"):
		return TLS
	}
	return Other
}

// Explain returns a multi-line explanation of err while doing action against host.
func Explain(err error, action, host string) string {
	var b strings.Builder
	switch Classify(err) {
	case Timeout:
		fmt.Fprintf(&b, "⏱️  Timed out while %s\n\n", action)
		fmt.Fprintf(&b, "%s took too long to respond. Long queries may need a larger --timeout.\n", host)
	case DNS:
		fmt.Fprintf(&b, "🌐 Cannot resolve %s while %s\n\n", host, action)
		b.WriteString("Check the host name in the connection string and your DNS settings.\n")
	case Refused:
		fmt.Fprintf(&b, "🚫 Connection refused by %s while %s\n\n", host, action)
		b.WriteString("Nothing is listening on that port. Is the server running?\n")
	case TLS:
		fmt.Fprintf(&b, "🔒 Secure connection to %s failed while %s\n\n", host, action)
		b.WriteString("Check use_ssl in the connection string and the server certificate.\n")
	default:
		fmt.Fprintf(&b, "❌ Network error while %s\n", action)
	}
	return b.String()
}

// Present prints Explain(err, action, host) and returns err wrapped with action.
func Present(err error, action, host string) error {
	if err == nil {
		return nil
	}
	pterm.Println(Explain(err, action, host))
	return fmt.Errorf("%s: %w", action, err)
}
