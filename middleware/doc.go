// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /api/health", middleware.WithLogging(handler))

Each request gets an ID (a UUID, or a valid incoming X-Request-ID) that is
echoed in the response header and attached to the start and completion log
lines. Handlers log with the same ID via middleware.Logger(r.Context()).

# Sessions

WithSession resolves the anonchat_session cookie to a stored session:

	withSession := middleware.WithSession(st)
	mux.Handle("GET /dashboard", withSession(middleware.PageGuard(page)))
	sess, ok := middleware.SessionFromContext(r.Context())

PageGuard redirects page requests (not /api/*) with auth.PageRedirect.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

ErrorResponse writes {"success": false, "message": ...}.

Parse JSON request bodies (capped at 1 MiB):

	var req models.SignUpRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware
