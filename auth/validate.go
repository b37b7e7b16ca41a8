// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	UsernameMinLen = 2
	UsernameMaxLen = 20
	PasswordMinLen = 6
	PasswordMaxLen = 72 // bcrypt ignores anything longer
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateUsername returns a user-facing error for an unusable username
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	switch {
	case n < UsernameMinLen:
		return errors.New("Username must be at least 2 characters")
	case n > UsernameMaxLen:
		return errors.New("Username must be no more than 20 characters")
	case !usernamePattern.MatchString(username):
		return errors.New("Username must not contain special characters")
	}
	return nil
}

// ValidateEmail accepts a bare address only, no display name
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(addr.Address, ".") {
		return errors.New("Invalid email address")
	}
	return nil
}

func ValidatePassword(password string) error {
	switch {
	case len(password) < PasswordMinLen:
		return errors.New("Password must be at least 6 characters")
	case len(password) > PasswordMaxLen:
		return errors.New("Password must be at most 72 bytes")
	}
	return nil
}

// ValidateSignUp checks all three sign-up fields, in form order
func ValidateSignUp(username, email, password string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	return ValidatePassword(password)
}
