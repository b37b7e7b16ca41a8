// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mailer

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/resend/resend-go/v2"
)

const verificationSubject = "AnonChat | Verification Code"

type Reason string

const (
	ReasonConfig    Reason = "config"
	ReasonRateLimit Reason = "rate_limit"
	ReasonFailed    Reason = "failed"
)

var ErrMissingFields = errors.New("email, username, and verification code are required")

// SendError is a classified delivery failure
type SendError struct {
	Reason Reason
	cause  error
}

func (e *SendError) Error() string {
	switch e.Reason {
	case ReasonConfig:
		return "Invalid email service configuration"
	case ReasonRateLimit:
		return "Email rate limit exceeded. Please try again later."
	default:
		return "Failed to send verification email"
	}
}

func (e *SendError) Unwrap() error { return e.cause }

// Sender delivers verification codes
type Sender interface {
	SendVerification(ctx context.Context, email, username, code string) error
	Enabled() bool
}

// Disabled is used when no provider is configured
type Disabled struct{}

func (Disabled) SendVerification(context.Context, string, string, string) error {
	return &SendError{Reason: ReasonConfig, cause: errors.New("mailer: email service is not configured")}
}

func (Disabled) Enabled() bool { return false }

// emailAPI is the part of the Resend client we use
type emailAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Resend sends through resend.com
type Resend struct {
	emails  emailAPI
	from    string
	baseURL string
}

func NewResend(apiKey, from, baseURL string) *Resend {
	client := resend.NewClient(apiKey)
	return &Resend{emails: client.Emails, from: from, baseURL: strings.TrimRight(baseURL, "/")}
}

func (r *Resend) Enabled() bool { return true }

func (r *Resend) SendVerification(ctx context.Context, email, username, code string) error {
	if email == "" || username == "" || code == "" {
		return ErrMissingFields
	}

	html, err := renderVerification(username, code, r.baseURL+"/verify/"+username)
	if err != nil {
		return &SendError{Reason: ReasonFailed, cause: err}
	}

	_, err = r.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{email},
		Subject: verificationSubject,
		Html:    html,
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

func classify(err error) *SendError {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key"):
		return &SendError{Reason: ReasonConfig, cause: err}
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "too many requests"):
		return &SendError{Reason: ReasonRateLimit, cause: err}
	default:
		return &SendError{Reason: ReasonFailed, cause: fmt.Errorf("mailer: send: %w", err)}
	}
}

var verificationTmpl = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html lang="en">
<body style="font-family: sans-serif">
<h2>Hello {{.Username}},</h2>
<p>Thank you for registering. Please use the following verification code to complete your registration:</p>
<p style="font-size: 24px; letter-spacing: 4px"><strong>{{.Code}}</strong></p>
<p>Or verify here: <a href="{{.Link}}">{{.Link}}</a></p>
<p>If you did not request this code, please ignore this email.</p>
</body>
</html>`))

func renderVerification(username, code, link string) (string, error) {
	var b strings.Builder
	err := verificationTmpl.Execute(&b, struct {
		Username, Code, Link string
	}{username, code, link})
	if err != nil {
		return "", fmt.Errorf("mailer: render: %w", err)
	}
	return b.String(), nil
}
