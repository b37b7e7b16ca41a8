// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the AnonChat API.

# Handler Types

  - AuthHandler: sign-up, username checks, verification codes, sessions
  - DiagnosticsHandler: database connectivity and configuration checks

Handlers never hold a database handle. Every request goes through the
store, which acquires from the shared dbconn.Manager, so the first request
after start-up (or after the connection drops) triggers the dial and the
rest wait on it.

# Error Mapping

Store and connection errors map to status codes in one place (errors.go):

	*dbconn.ConnectivityError, dbconn.ErrClosed → 503
	*dbconn.ConfigurationError, *dbconn.OperationError → 500

Validation failures answer 400 and bad credentials 401. Only messages
known to be free of credentials are sent to the client.

# Verification

When a mailer is configured, sign-up stores a six-digit code valid for
models.VerifyCodeTTL and emails it; sign-in is refused until
POST /api/verify-code succeeds. Without a mailer, accounts are verified
on creation.
*/
package handlers
