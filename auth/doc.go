// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing, token generation, input validation
and redirect rules.

# Passwords

Passwords are stored as bcrypt hashes with cost 10:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, attempt) // ErrInvalidCredentials on mismatch

# Verify Codes

Sign-up verification codes are six random digits:

	code, err := auth.GenerateVerifyCode() // "100000".."999999"

# Session Tokens

Session tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GenerateSessionToken()

Tokens are URL-safe base64 encoded (32 characters) and used as both the
session cookie value and the session document ID. ValidateSessionToken
rejects anything of the wrong shape before a database lookup.

# Validation

ValidateUsername, ValidateEmail and ValidatePassword return user-facing
messages. Usernames are 2-20 characters of letters, digits and underscore.

# Redirects

PageRedirect applies the page guard:

	if target, ok := auth.PageRedirect(r.URL.Path, signedIn); ok {
		http.Redirect(w, r, target, http.StatusFound)
	}

ResolveRedirect pins a sign-in or sign-out callback to the configured base
URL; anything pointing at another origin is replaced with /sign-in.
*/
package auth
