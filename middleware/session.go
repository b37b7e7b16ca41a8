// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielhkuo/anonchat/auth"
	"github.com/danielhkuo/anonchat/models"
	"github.com/danielhkuo/anonchat/store"
)

// SessionCookie is the name of the sign-in cookie
const SessionCookie = "anonchat_session"

// SessionLookup resolves a cookie value to a live session
type SessionLookup interface {
	GetSession(ctx context.Context, id string) (*models.Session, error)
}

// WithSession loads the session named by the cookie, if any, into the
// request context. A lookup failure other than "not found" is logged and
// the request continues signed out.
func WithSession(sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookie)
			if err != nil || auth.ValidateSessionToken(c.Value) != nil {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := sessions.GetSession(r.Context(), c.Value)
			switch {
			case err == nil:
				r = r.WithContext(context.WithValue(r.Context(), sessionKey, sess))
			case errors.Is(err, store.ErrNotFound):
				// stale cookie
			default:
				Logger(r.Context()).Warn("session lookup failed", "error", err)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext returns the session loaded by WithSession
func SessionFromContext(ctx context.Context) (*models.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*models.Session)
	return s, ok && s != nil
}

// PageGuard redirects page requests according to auth.PageRedirect.
// It must run inside WithSession.
func PageGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, signedIn := SessionFromContext(r.Context())
		if target, ok := auth.PageRedirect(r.URL.Path, signedIn); ok {
			http.Redirect(w, r, target, http.StatusTemporaryRedirect)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetSessionCookie issues the sign-in cookie
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the sign-in cookie
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
