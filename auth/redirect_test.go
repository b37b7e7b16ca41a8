// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import "testing"

func TestPageRedirect(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		authenticated bool
		wantTarget    string
		wantRedirect  bool
	}{
		// Signed out
		{"anon home", "/", false, "", false},
		{"anon sign-in", "/sign-in", false, "", false},
		{"anon sign-up", "/sign-up", false, "", false},
		{"anon verify", "/verify/alice", false, "", false},
		{"anon dashboard", "/dashboard", false, "/sign-in", true},
		{"anon dashboard child", "/dashboard/settings", false, "/sign-in", true},
		{"anon dashboard lookalike", "/dashboards", false, "", false},
		{"anon api", "/api/sign-up", false, "", false},

		// Signed in
		{"user home", "/", true, "/dashboard", true},
		{"user sign-in", "/sign-in", true, "/dashboard", true},
		{"user sign-up", "/sign-up", true, "/dashboard", true},
		{"user verify", "/verify/alice", true, "/dashboard", true},
		{"user dashboard", "/dashboard", true, "", false},
		{"user profile page", "/u/alice", true, "", false},
		{"user api", "/api/session", true, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, redirect := PageRedirect(tt.path, tt.authenticated)
			if redirect != tt.wantRedirect || target != tt.wantTarget {
				t.Errorf("PageRedirect(%q, %v) = (%q, %v), want (%q, %v)",
					tt.path, tt.authenticated, target, redirect, tt.wantTarget, tt.wantRedirect)
			}
		})
	}
}

func TestResolveRedirect(t *testing.T) {
	const base = "https://anonchat.example"

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"base url", base, base + "/dashboard"},
		{"base url slash", base + "/", base + "/dashboard"},
		{"root path", "/", base + "/dashboard"},
		{"relative path", "/dashboard/inbox", base + "/dashboard/inbox"},
		{"relative sign-in", "/sign-in", base + "/sign-in"},
		{"same origin", base + "/u/alice", base + "/u/alice"},
		{"same origin sign-in", base + "/sign-in", base + "/sign-in"},
		{"foreign origin", "https://evil.example/dashboard", base + "/sign-in"},
		{"foreign sign-in", "https://evil.example/sign-in", base + "/sign-in"},
		{"protocol relative", "//evil.example/x", base + "/sign-in"},
		{"scheme downgrade", "http://anonchat.example/dashboard", base + "/sign-in"},
		{"garbage", "::::", base + "/sign-in"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveRedirect(tt.target, base); got != tt.want {
				t.Errorf("ResolveRedirect(%q) = %q, want %q", tt.target, got, tt.want)
			}
		})
	}

	// Trailing slash on the base is ignored
	if got := ResolveRedirect("/x", base+"/"); got != base+"/x" {
		t.Errorf("ResolveRedirect with slash base = %q", got)
	}
}
