// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/danielhkuo/anonchat/auth"
	"github.com/danielhkuo/anonchat/middleware"
	"github.com/danielhkuo/anonchat/models"
	"github.com/danielhkuo/anonchat/store"
)

// SignIn handles POST /api/sign-in
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Identifier == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "identifier and password are required")
		return
	}

	ctx := r.Context()
	log := middleware.Logger(ctx)

	u, err := h.store.FindByIdentifier(ctx, req.Identifier)
	if errors.Is(err, store.ErrNotFound) {
		log.Info("sign-in rejected", "reason", "unknown identifier")
		middleware.ErrorResponse(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}
	if err != nil {
		writeStoreError(w, r, "Error signing in", err)
		return
	}

	if err := auth.CheckPassword(u.Password, req.Password); err != nil {
		log.Info("sign-in rejected", "reason", "bad password", "username", u.Username)
		middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}

	// Only enforced when codes can actually be delivered
	if h.mail.Enabled() && !u.IsVerified {
		middleware.ErrorResponse(w, http.StatusForbidden, "Please verify your account before signing in")
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		log.Error("failed to generate session token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error signing in")
		return
	}

	now := h.now()
	sess := &models.Session{
		ID:        token,
		UserID:    u.ID,
		Username:  u.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(h.cfg.Tuning.SessionTTL),
	}
	if err := h.store.CreateSession(ctx, sess); err != nil {
		writeStoreError(w, r, "Error signing in", err)
		return
	}

	middleware.SetSessionCookie(w, token, sess.ExpiresAt, h.cfg.IsProduction())
	log.Info("user signed in", "username", u.Username)

	callback := req.CallbackURL
	if callback == "" {
		callback = "/"
	}
	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{
		Success: true,
		Message: "Signed in",
		User:    u.SessionUser(),
		URL:     auth.ResolveRedirect(callback, h.cfg.BaseURL),
	})
}

// SignOut handles POST /api/sign-out?callbackUrl=
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if sess, ok := middleware.SessionFromContext(ctx); ok {
		if err := h.store.DeleteSession(ctx, sess.ID); err != nil {
			// The cookie is cleared regardless; the TTL index removes the rest
			middleware.Logger(ctx).Warn("failed to delete session", "username", sess.Username, "error", err)
		}
	}
	middleware.ClearSessionCookie(w, h.cfg.IsProduction())

	callback := r.URL.Query().Get("callbackUrl")
	if callback == "" {
		callback = auth.PathSignIn
	}
	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{
		Success: true,
		Message: "Signed out",
		URL:     auth.ResolveRedirect(callback, h.cfg.BaseURL),
	})
}

// Session handles GET /api/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		middleware.JSONResponse(w, http.StatusUnauthorized, models.SessionResponse{
			Success: false,
			Message: "Not signed in",
		})
		return
	}

	u, err := h.store.FindByUsername(r.Context(), sess.Username)
	if errors.Is(err, store.ErrNotFound) || (err == nil && u.ID != sess.UserID) {
		// Account was replaced after this session was issued
		middleware.JSONResponse(w, http.StatusUnauthorized, models.SessionResponse{
			Success: false,
			Message: "Not signed in",
		})
		return
	}
	if err != nil {
		writeStoreError(w, r, "Error loading session", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{
		Success: true,
		User:    u.SessionUser(),
	})
}
