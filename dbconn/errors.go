// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dbconn

import (
	"errors"
	"fmt"
)

// Kind classifies why a connection could not be used.
type Kind string

const (
	KindMissingURI   Kind = "missing_uri"
	KindMalformedURI Kind = "malformed_uri"

	KindAuthFailed         Kind = "auth_failed"
	KindHostNotFound       Kind = "host_not_found"
	KindTimeout            Kind = "timeout"
	KindNetworkUnreachable Kind = "network_unreachable"
	KindUnknown            Kind = "unknown"
)

// ErrClosed is returned by Acquire after Close.
var ErrClosed = errors.New("dbconn: manager closed")

// ConfigurationError reports a missing or malformed connection string.
// It is fatal: retrying without changing configuration cannot succeed.
type ConfigurationError struct {
	Kind  Kind
	msg   string
	cause error
}

func (e *ConfigurationError) Error() string { return e.msg }
func (e *ConfigurationError) Unwrap() error { return e.cause }

// ConnectivityError reports a failed connection attempt. The message is safe
// to log; the wrapped driver error may not be.
type ConnectivityError struct {
	Kind      Kind
	Hosts     string
	Diagnosis string
	cause     error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("dbconn: connection failed (hosts=%s): %s", e.Hosts, e.Diagnosis)
}

func (e *ConnectivityError) Unwrap() error { return e.cause }

// OperationError reports a query that failed on an established connection.
type OperationError struct {
	Op    string
	cause error
}

// NewOperationError wraps cause as the failure of op.
func NewOperationError(op string, cause error) *OperationError {
	return &OperationError{Op: op, cause: cause}
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("dbconn: %s failed: %v", e.Op, e.cause)
}

func (e *OperationError) Unwrap() error { return e.cause }

// IsConfiguration reports whether err is, or wraps, a *ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsConnectivity reports whether err is, or wraps, a *ConnectivityError.
func IsConnectivity(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}

var diagnoses = map[Kind]string{
	KindAuthFailed:         "authentication failed; check the database user name and password",
	KindHostNotFound:       "host not found; check the cluster host name in the connection string",
	KindTimeout:            "timed out; the cluster may be paused or slow to respond",
	KindNetworkUnreachable: "network unreachable; check that the cluster accepts connections from this host (IP access list, firewall)",
	KindUnknown:            "unexpected error while connecting",
}

// Diagnosis returns the operator-facing hint for k.
func Diagnosis(k Kind) string {
	if d, ok := diagnoses[k]; ok {
		return d
	}
	return diagnoses[KindUnknown]
}
