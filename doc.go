// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the AnonChat server.

AnonChat lets people sign up for a public profile and receive anonymous
messages. This server owns accounts, sessions and email verification, and
the single shared MongoDB connection everything else goes through.

# Starting the Server

	MONGODB_URI=mongodb+srv://... go run .

Or with flags:

	go run . -p 3000 -u "mongodb://localhost:27017" -db anonchat

A .env file in the working directory is loaded first when present.

# Configuration

  - MONGODB_URI (-u): mongodb:// or mongodb+srv:// connection string
  - MONGODB_DATABASE (-db): database name (default: anonchat)
  - PORT (-p): server port (default: 3000)
  - RESEND_API_KEY (-resend-key): enables verification email
  - EMAIL_FROM (-email-from): sender address for verification email
  - BASE_URL (-base-url): public origin used for links and redirects
  - APP_ENV (-env): "production" makes a bad MONGODB_URI fatal and marks
    cookies Secure
  - CONFIG_FILE (-config): YAML file of connection timeouts, pool size and
    session lifetime; ${VAR} references are expanded

The database is not contacted at start-up. The first request that needs
it dials, and concurrent requests wait on that same attempt.

# Architecture

  - dbconn: connection lifecycle manager and error classification
  - store: users and sessions on top of the manager
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, sessions, page guard, JSON helpers
  - models: Request/response and document types
  - auth: Passwords, codes, tokens, validation and redirects
  - mailer: Verification email via Resend
  - db: Index definitions
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
