// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dbconn

import (
	"context"
	"errors"
	"net"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// Server error codes that mean the credentials were rejected.
const (
	codeUnauthorized         = 13
	codeAuthenticationFailed = 18
)

// Classify maps a dial or ping failure to a Kind. The driver mostly reports
// connect failures as wrapped server-selection errors, so the message is
// inspected after the typed checks.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && (cmdErr.Code == codeAuthenticationFailed || cmdErr.Code == codeUnauthorized) {
		return KindAuthFailed
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "authentication failed") || strings.Contains(msg, "auth error") {
		return KindAuthFailed
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return KindHostNotFound
	}
	if strings.Contains(msg, "no such host") || strings.Contains(msg, "lookup ") {
		return KindHostNotFound
	}

	for _, marker := range []string{"connection refused", "network is unreachable", "no route to host", "connection reset"} {
		if strings.Contains(msg, marker) {
			return KindNetworkUnreachable
		}
	}

	if mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out") ||
		strings.Contains(msg, "deadline exceeded") {
		return KindTimeout
	}

	if mongo.IsNetworkError(err) || strings.Contains(msg, "network") {
		return KindNetworkUnreachable
	}

	return KindUnknown
}
