// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/anonchat/cliparse"
	"github.com/danielhkuo/anonchat/handlers"
	"github.com/danielhkuo/anonchat/mailer"
	"github.com/danielhkuo/anonchat/middleware"
	"github.com/danielhkuo/anonchat/store"
)

func NewRouter(conns handlers.ConnManager, st store.Store, mail mailer.Sender, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(st, mail, cfg)
	diagHandler := handlers.NewDiagnosticsHandler(conns, st, cfg)

	// Health check
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts
	mux.HandleFunc("POST /api/sign-up", middleware.WithLogging(authHandler.SignUp))
	mux.HandleFunc("GET /api/check-username-unique", middleware.WithLogging(authHandler.CheckUsernameUnique))
	mux.HandleFunc("POST /api/verify-code", middleware.WithLogging(authHandler.VerifyCode))

	// Sessions; only routes that read the cookie pay for the lookup
	withSession := middleware.WithSession(st)
	mux.HandleFunc("POST /api/sign-in", middleware.WithLogging(authHandler.SignIn))
	mux.HandleFunc("POST /api/sign-out", middleware.WithLogging(withSession(http.HandlerFunc(authHandler.SignOut)).ServeHTTP))
	mux.HandleFunc("GET /api/session", middleware.WithLogging(withSession(http.HandlerFunc(authHandler.Session)).ServeHTTP))

	// Diagnostics
	mux.HandleFunc("GET /api/test-db", middleware.WithLogging(diagHandler.TestDB))
	mux.HandleFunc("GET /api/debug", middleware.WithLogging(diagHandler.Debug))
	mux.HandleFunc("GET /api/check-env-vars", middleware.WithLogging(diagHandler.CheckEnvVars))

	// Pages
	page := func(title string) http.Handler {
		return withSession(middleware.PageGuard(handlers.Page(title)))
	}
	mux.Handle("GET /{$}", page("Home"))
	mux.Handle("GET /sign-in", page("Sign in"))
	mux.Handle("GET /sign-up", page("Sign up"))
	mux.Handle("GET /verify/{username}", page("Verify your account"))
	mux.Handle("GET /dashboard", page("Dashboard"))
	mux.Handle("GET /dashboard/", page("Dashboard"))

	return middleware.CORS(mux)
}
