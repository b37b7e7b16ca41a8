// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"net/url"
	"strings"
)

const (
	PathSignIn    = "/sign-in"
	PathSignUp    = "/sign-up"
	PathDashboard = "/dashboard"
	PathVerify    = "/verify"
)

// PageRedirect decides whether a page request must be sent elsewhere.
// It returns the target path and true when a redirect is needed.
//
//   - /api/* is never redirected
//   - /dashboard and below need a session, else /sign-in
//   - signed-in users on /, /sign-in, /sign-up or /verify/* go to /dashboard
func PageRedirect(path string, authenticated bool) (string, bool) {
	if strings.HasPrefix(path, "/api/") {
		return "", false
	}

	if !authenticated {
		if underPath(path, PathDashboard) {
			return PathSignIn, true
		}
		return "", false
	}

	switch {
	case path == "/", path == PathSignIn, path == PathSignUp, underPath(path, PathVerify):
		return PathDashboard, true
	}
	return "", false
}

func underPath(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// ResolveRedirect turns a post-sign-in or post-sign-out target into a safe
// absolute URL on baseURL. Targets on other origins fall back to sign-in.
func ResolveRedirect(target, baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	signIn := base + PathSignIn

	baseU, err := url.Parse(base)
	if err != nil || baseU.Host == "" {
		return PathSignIn
	}

	// "//host/x" is protocol-relative, not a path
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") {
		if target == "/" {
			return base + PathDashboard
		}
		return base + target
	}

	u, err := url.Parse(target)
	if err != nil || u.Scheme != baseU.Scheme || u.Host != baseU.Host {
		return signIn
	}

	if u.Path == "" || u.Path == "/" {
		return base + PathDashboard
	}
	return target
}
