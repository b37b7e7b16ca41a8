// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dbconn

import (
	"strconv"
	"strings"
)

const (
	SchemeStandard = "mongodb://"
	SchemeSRV      = "mongodb+srv://"
)

// Validate checks uri without touching the network. It returns a
// *ConfigurationError for an empty string, a foreign scheme, or an
// unusable host list.
func Validate(uri string) error {
	if strings.TrimSpace(uri) == "" {
		return &ConfigurationError{
			Kind: KindMissingURI,
			msg:  "dbconn: MONGODB_URI is required but not set",
		}
	}

	scheme, rest, ok := cutScheme(uri)
	if !ok {
		// SECURITY: never echo the input, it usually carries a password.
		return &ConfigurationError{
			Kind: KindMalformedURI,
			msg:  "dbconn: invalid connection string scheme (expected mongodb:// or mongodb+srv://)",
		}
	}

	hosts := splitHosts(rest)
	if len(hosts) == 0 {
		return malformed("no host")
	}
	anyPort := false
	for _, h := range hosts {
		if h == "" {
			return malformed("empty host in host list")
		}
		name, port, hasPort, ok := splitHostPort(h)
		if !ok {
			return malformed("bad IPv6 literal")
		}
		if name == "" {
			return malformed("empty host name")
		}
		if hasPort {
			n, err := strconv.Atoi(port)
			if err != nil || n < 1 || n > 65535 {
				return malformed("invalid port")
			}
			anyPort = true
		}
	}

	if scheme == SchemeSRV {
		if len(hosts) != 1 {
			return malformed("mongodb+srv:// takes exactly one host")
		}
		if anyPort {
			return malformed("mongodb+srv:// host must not have a port")
		}
	}

	return nil
}

// splitHostPort splits host[:port], where host may be a bracketed IPv6
// literal. ok is false for a "[" without its closing "]" or with trailing
// text other than ":port".
func splitHostPort(h string) (name, port string, hasPort, ok bool) {
	if strings.HasPrefix(h, "[") {
		end := strings.IndexByte(h, ']')
		if end < 0 {
			return "", "", false, false
		}
		name, rest := h[1:end], h[end+1:]
		if rest == "" {
			return name, "", false, true
		}
		port, found := strings.CutPrefix(rest, ":")
		if !found {
			return "", "", false, false
		}
		return name, port, true, true
	}
	name, port, hasPort = strings.Cut(h, ":")
	return name, port, hasPort, true
}

func malformed(reason string) *ConfigurationError {
	return &ConfigurationError{
		Kind: KindMalformedURI,
		msg:  "dbconn: invalid connection string (" + reason + "; expected mongodb:// or mongodb+srv:// followed by a host list)",
	}
}

// Redact returns the comma-separated host list of uri with credentials,
// path and options removed. It returns "unknown" if uri has no usable
// scheme.
func Redact(uri string) string {
	_, rest, ok := cutScheme(uri)
	if !ok {
		return "unknown"
	}
	hosts := splitHosts(rest)
	if len(hosts) == 0 {
		return "unknown"
	}
	return strings.Join(hosts, ",")
}

// IsSRV reports whether uri uses DNS seed-list discovery.
func IsSRV(uri string) bool {
	return strings.HasPrefix(uri, SchemeSRV)
}

func cutScheme(uri string) (scheme, rest string, ok bool) {
	for _, s := range []string{SchemeSRV, SchemeStandard} {
		if r, found := strings.CutPrefix(uri, s); found {
			return s, r, true
		}
	}
	return "", "", false
}

// splitHosts extracts host[:port] entries from the part of a connection
// string after the scheme.
func splitHosts(rest string) []string {
	authority := rest
	if i := strings.IndexAny(authority, "/?"); i >= 0 {
		authority = authority[:i]
	}
	if i := strings.LastIndex(authority, "@"); i >= 0 {
		authority = authority[i+1:]
	}
	if authority == "" {
		return nil
	}
	return strings.Split(authority, ",")
}
