// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielhkuo/anonchat/dbconn"
	"github.com/danielhkuo/anonchat/middleware"
)

const msgUnavailable = "Database is unavailable. Please try again later."

// statusFor maps a store or connection error to an HTTP status
func statusFor(err error) int {
	switch {
	case dbconn.IsConnectivity(err),
		errors.Is(err, dbconn.ErrClosed),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeStoreError logs err and answers with msg, or the generic
// unavailable message when the database cannot be reached
func writeStoreError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusServiceUnavailable {
		msg = msgUnavailable
	}

	log := middleware.Logger(r.Context())
	var ce *dbconn.ConnectivityError
	if errors.As(err, &ce) {
		log.Error(msg, "error", err, "kind", ce.Kind, "status", status)
	} else {
		log.Error(msg, "error", err, "status", status)
	}

	middleware.ErrorResponse(w, status, msg)
}

// safeMessage is err's text when it is known not to carry credentials
func safeMessage(err error, fallback string) string {
	if dbconn.IsConfiguration(err) || dbconn.IsConnectivity(err) {
		return err.Error()
	}
	return fallback
}
