// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dbconn

import "time"

// Default values applied by Settings.withDefaults.
const (
	DefaultDatabase               = "anonchat"
	DefaultAppName                = "anonchat"
	DefaultServerSelectionTimeout = 30 * time.Second
	DefaultSocketTimeout          = 45 * time.Second
	DefaultConnectTimeout         = 30 * time.Second
	DefaultHeartbeatInterval      = 10 * time.Second
	DefaultMaxPoolSize            = 10
	DefaultAttemptTimeout         = 60 * time.Second
)

// Settings controls how the Manager dials.
type Settings struct {
	// URI is the connection string. Required.
	URI string

	// Database defaults to "anonchat".
	Database string

	// AppName is reported to the server in the handshake.
	AppName string

	// ServerSelectionTimeout defaults to 30s.
	ServerSelectionTimeout time.Duration

	// SocketTimeout defaults to 45s.
	SocketTimeout time.Duration

	// ConnectTimeout bounds the TCP/TLS handshake; defaults to 30s.
	ConnectTimeout time.Duration

	// HeartbeatInterval defaults to 10s.
	HeartbeatInterval time.Duration

	// MaxPoolSize defaults to 10.
	MaxPoolSize uint64

	// AttemptTimeout bounds one whole attempt (dial plus initial ping),
	// independent of any caller's context. Defaults to 60s.
	AttemptTimeout time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.Database == "" {
		s.Database = DefaultDatabase
	}
	if s.AppName == "" {
		s.AppName = DefaultAppName
	}
	if s.ServerSelectionTimeout <= 0 {
		s.ServerSelectionTimeout = DefaultServerSelectionTimeout
	}
	if s.SocketTimeout <= 0 {
		s.SocketTimeout = DefaultSocketTimeout
	}
	if s.ConnectTimeout <= 0 {
		s.ConnectTimeout = DefaultConnectTimeout
	}
	if s.HeartbeatInterval <= 0 {
		s.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if s.MaxPoolSize == 0 {
		s.MaxPoolSize = DefaultMaxPoolSize
	}
	if s.AttemptTimeout <= 0 {
		s.AttemptTimeout = DefaultAttemptTimeout
	}
	return s
}
