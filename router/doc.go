// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the AnonChat server.

# Route Registration

NewRouter returns the complete handler with CORS applied. The session
cookie is only resolved on the page routes, sign-out and session, so health
and diagnostic requests never touch the session store:

	h := router.NewRouter(mgr, st, mail, cfg)

# Endpoints

Health:

	GET /api/health

Accounts:

	POST /api/sign-up                          - Register or re-register an unverified account
	GET  /api/check-username-unique?username=  - Availability check
	POST /api/verify-code                      - Confirm the emailed code

Sessions:

	POST /api/sign-in                 - Issue the session cookie
	POST /api/sign-out?callbackUrl=   - Drop the session
	GET  /api/session                 - Current user

Diagnostics:

	GET /api/test-db         - Acquire and ping
	GET /api/debug           - Connection state and user count
	GET /api/check-env-vars  - Connection string shape, never its value

Pages (behind middleware.PageGuard):

	GET /
	GET /sign-in
	GET /sign-up
	GET /verify/{username}
	GET /dashboard
*/
package router
