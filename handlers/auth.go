// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/danielhkuo/anonchat/auth"
	"github.com/danielhkuo/anonchat/cliparse"
	"github.com/danielhkuo/anonchat/mailer"
	"github.com/danielhkuo/anonchat/middleware"
	"github.com/danielhkuo/anonchat/models"
	"github.com/danielhkuo/anonchat/store"
)

const (
	msgUsernameTaken = "Username is already taken"
	msgEmailTaken    = "User already exists with this email"
	msgSignUpFailed  = "Error registering user"
)

type AuthHandler struct {
	store store.Store
	mail  mailer.Sender
	cfg   cliparse.Config
	now   func() time.Time
}

func NewAuthHandler(st store.Store, mail mailer.Sender, cfg cliparse.Config) *AuthHandler {
	if mail == nil {
		mail = mailer.Disabled{}
	}
	return &AuthHandler{store: st, mail: mail, cfg: cfg, now: time.Now}
}

// SignUp handles POST /api/sign-up
//
// An existing unverified account with the same username or email is
// overwritten. Without a mail provider the account is verified at once.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := auth.ValidateSignUp(req.Username, req.Email, req.Password); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	log := middleware.Logger(ctx)

	// Look up both owners before writing anything
	byName, err := h.store.FindByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		writeStoreError(w, r, msgSignUpFailed, err)
		return
	}
	if byName != nil && byName.IsVerified {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgUsernameTaken)
		return
	}

	byEmail, err := h.store.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		writeStoreError(w, r, msgSignUpFailed, err)
		return
	}
	if byEmail != nil && byEmail.IsVerified {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgEmailTaken)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgSignUpFailed)
		return
	}
	code, err := auth.GenerateVerifyCode()
	if err != nil {
		log.Error("failed to generate verify code", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgSignUpFailed)
		return
	}

	now := h.now()
	verified := !h.mail.Enabled()

	// Reuse the unverified record that matched; username wins over email
	user := byName
	if user == nil {
		user = byEmail
	}

	if user != nil {
		user.Username = req.Username
		user.Email = req.Email
		user.Password = hash
		user.IsVerified = verified
		setVerifyCode(user, code, now, verified)
		err = h.store.Update(ctx, user)
	} else {
		user = &models.User{
			Username:            req.Username,
			Email:               req.Email,
			Password:            hash,
			IsVerified:          verified,
			IsAcceptingMessages: true,
			Messages:            []models.Message{},
			CreatedAt:           now,
		}
		setVerifyCode(user, code, now, verified)
		err = h.store.Create(ctx, user)
	}

	if errors.Is(err, store.ErrDuplicate) {
		// Lost a race, or the email belongs to a different unverified user
		middleware.ErrorResponse(w, http.StatusBadRequest, "Username or email is already taken")
		return
	}
	if err != nil {
		writeStoreError(w, r, msgSignUpFailed, err)
		return
	}

	if verified {
		log.Info("user registered", "username", user.Username, "verified", true)
		middleware.JSONResponse(w, http.StatusCreated, models.APIResponse{
			Success: true,
			Message: "User registered successfully. You can sign in now.",
		})
		return
	}

	if err := h.mail.SendVerification(ctx, user.Email, user.Username, code); err != nil {
		log.Error("failed to send verification email", "username", user.Username, "error", err)
		msg := "Failed to send verification email"
		var se *mailer.SendError
		if errors.As(err, &se) {
			msg = se.Error()
		}
		middleware.ErrorResponse(w, http.StatusInternalServerError, msg)
		return
	}

	log.Info("user registered", "username", user.Username, "verified", false)
	middleware.JSONResponse(w, http.StatusCreated, models.APIResponse{
		Success: true,
		Message: "User registered successfully. Please verify your account.",
	})
}

func setVerifyCode(u *models.User, code string, now time.Time, verified bool) {
	if verified {
		u.VerifyCode = ""
		u.VerifyCodeExpiry = time.Time{}
		return
	}
	u.VerifyCode = code
	u.VerifyCodeExpiry = now.Add(models.VerifyCodeTTL)
}

// CheckUsernameUnique handles GET /api/check-username-unique?username=
func (h *AuthHandler) CheckUsernameUnique(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Username parameter is required")
		return
	}
	if err := auth.ValidateUsername(username); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.store.FindByUsername(r.Context(), username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		writeStoreError(w, r, "Error checking username. Please try again.", err)
		return
	}

	// Unverified usernames can be claimed again
	if u != nil && u.IsVerified {
		middleware.JSONResponse(w, http.StatusOK, models.APIResponse{
			Success: false,
			Message: msgUsernameTaken,
		})
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Username is unique",
	})
}

// VerifyCode handles POST /api/verify-code
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyCodeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Username == "" || req.Code == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username and code are required")
		return
	}

	ctx := r.Context()
	u, err := h.store.FindByUsername(ctx, req.Username)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		writeStoreError(w, r, "Error verifying user", err)
		return
	}

	if u.IsVerified {
		middleware.JSONResponse(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Account is already verified",
		})
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Code), []byte(u.VerifyCode)) != 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Incorrect verification code")
		return
	}
	if !h.now().Before(u.VerifyCodeExpiry) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Verification code has expired. Please sign up again to get a new code.")
		return
	}

	u.IsVerified = true
	u.VerifyCode = ""
	u.VerifyCodeExpiry = time.Time{}
	if err := h.store.Update(ctx, u); err != nil {
		writeStoreError(w, r, "Error verifying user", err)
		return
	}

	middleware.Logger(ctx).Info("user verified", "username", u.Username)
	middleware.JSONResponse(w, http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Account verified successfully",
	})
}
