// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and document types for the API.

# Request Types

Types for parsing incoming JSON:

  - SignUpRequest: username, email, password
  - SignInRequest: identifier (email or username), password
  - VerifyCodeRequest: username, code

# Response Types

Every JSON endpoint answers with the same envelope:

	{"success": true, "message": "..."}

  - APIResponse: success, message
  - SessionResponse: envelope plus the signed-in user
  - DebugResponse: connection and environment diagnostics
  - EnvCheckResponse: connection string diagnosis (never the value)

# Documents

Stored in MongoDB with camelCase field names:

  - User: account, bcrypt password hash, verification code, messages
  - Session: sign-in record keyed by the cookie token, TTL-expired

Passwords and verification codes are tagged json:"-" and never leave the
server.
*/
package models
