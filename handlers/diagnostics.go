// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/anonchat/cliparse"
	"github.com/danielhkuo/anonchat/dbconn"
	"github.com/danielhkuo/anonchat/middleware"
	"github.com/danielhkuo/anonchat/models"
	"github.com/danielhkuo/anonchat/store"
)

// ConnManager is the part of *dbconn.Manager the diagnostics need
type ConnManager interface {
	Ping(ctx context.Context) error
	Stats() dbconn.Stats
	ConfigErr() error
}

type DiagnosticsHandler struct {
	conns ConnManager
	users store.Users
	cfg   cliparse.Config
	now   func() time.Time
}

func NewDiagnosticsHandler(conns ConnManager, users store.Users, cfg cliparse.Config) *DiagnosticsHandler {
	return &DiagnosticsHandler{conns: conns, users: users, cfg: cfg, now: time.Now}
}

// TestDB handles GET /api/test-db
func (h *DiagnosticsHandler) TestDB(w http.ResponseWriter, r *http.Request) {
	if err := h.conns.Ping(r.Context()); err != nil {
		middleware.Logger(r.Context()).Error("database test failed", "error", err)
		middleware.ErrorResponse(w, statusFor(err), safeMessage(err, "Database connection failed"))
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Database connection successful",
	})
}

// Debug handles GET /api/debug
func (h *DiagnosticsHandler) Debug(w http.ResponseWriter, r *http.Request) {
	info := models.DebugInfo{
		Timestamp: h.now().UTC(),
		Environment: models.DebugEnvironment{
			MongoURI:      presence(h.cfg.MongoURI),
			AppEnv:        h.cfg.AppEnv,
			MailerEnabled: h.cfg.MailerEnabled(),
		},
	}

	n, err := h.users.Count(r.Context())
	info.Connection = h.connection(h.conns.Stats())
	if err != nil {
		middleware.Logger(r.Context()).Error("debug: database check failed", "error", err)
		info.Error = safeMessage(err, "Database operation failed")
		middleware.JSONResponse(w, statusFor(err), models.DebugResponse{
			Success: false,
			Message: "Database connection failed",
			Debug:   info,
		})
		return
	}

	info.Database = &models.DebugDatabase{Connected: true, UserCount: n}
	middleware.JSONResponse(w, http.StatusOK, models.DebugResponse{
		Success: true,
		Message: "Database connection and operations successful",
		Debug:   info,
	})
}

func (h *DiagnosticsHandler) connection(st dbconn.Stats) models.DebugConnection {
	c := models.DebugConnection{
		State:              st.State.String(),
		Hosts:              st.Hosts,
		Attempts:           st.Attempts,
		LastErrorKind:      string(st.LastErrorKind),
		LastErrorDiagnosis: st.LastErrorDiagnosis,
	}
	if !st.ConnectedAt.IsZero() {
		c.ConnectedSince = humanize.RelTime(st.ConnectedAt, h.now(), "ago", "from now")
	}
	if !st.LastAttemptAt.IsZero() {
		c.LastAttempt = humanize.RelTime(st.LastAttemptAt, h.now(), "ago", "from now")
		c.LastAttemptTook = st.LastAttemptDuration.Round(time.Millisecond).String()
	}
	return c
}

func presence(v string) string {
	if v == "" {
		return "Not set"
	}
	return "Set"
}

// CheckEnvVars handles GET /api/check-env-vars
// Reports the shape of the connection string without echoing any of it
// beyond the host list.
func (h *DiagnosticsHandler) CheckEnvVars(w http.ResponseWriter, r *http.Request) {
	uri := h.cfg.MongoURI
	check := models.URICheck{
		Exists: uri != "",
		Length: len(uri),
	}

	cfgErr := h.conns.ConfigErr()
	if uri != "" {
		switch {
		case dbconn.IsSRV(uri):
			check.Scheme = strings.TrimSuffix(dbconn.SchemeSRV, "://")
		case strings.HasPrefix(uri, dbconn.SchemeStandard):
			check.Scheme = strings.TrimSuffix(dbconn.SchemeStandard, "://")
		default:
			check.Scheme = "invalid"
		}
		if cfgErr == nil {
			check.Hosts = dbconn.Redact(uri)
		}
		check.IsLocalhost = strings.Contains(check.Hosts, "localhost") || strings.Contains(check.Hosts, "127.0.0.1") || strings.Contains(check.Hosts, "[::1]")
		check.IsAtlas = strings.Contains(check.Hosts, "mongodb.net")
	}

	diagnosis, solution := diagnoseURI(check, cfgErr, h.conns.Stats())

	middleware.JSONResponse(w, http.StatusOK, models.EnvCheckResponse{
		Success:  true,
		Message:  "Environment variables checked",
		MongoURI: check,
		Variables: map[string]bool{
			"MONGODB_URI":      uri != "",
			"MONGODB_DATABASE": h.cfg.DatabaseName != "",
			"RESEND_API_KEY":   h.cfg.ResendAPIKey != "",
			"EMAIL_FROM":       h.cfg.EmailFrom != "",
			"BASE_URL":         h.cfg.BaseURL != "",
		},
		Diagnosis: diagnosis,
		Solution:  solution,
	})
}

func diagnoseURI(c models.URICheck, cfgErr error, st dbconn.Stats) (diagnosis, solution string) {
	switch {
	case !c.Exists:
		return "MONGODB_URI environment variable is missing",
			"Set MONGODB_URI to a mongodb:// or mongodb+srv:// connection string"
	case cfgErr != nil:
		return "MONGODB_URI format looks incorrect",
			cfgErr.Error()
	case c.IsLocalhost:
		return "MONGODB_URI points at localhost",
			"Use a connection string for a server reachable from this host, e.g. your MongoDB Atlas cluster"
	case st.LastErrorKind != "":
		return "MONGODB_URI is well-formed but the last connection attempt failed",
			st.LastErrorDiagnosis
	case c.IsAtlas:
		return "MONGODB_URI appears to be correctly formatted for MongoDB Atlas",
			"Check MongoDB Atlas Network Access and Database User permissions"
	default:
		return "MONGODB_URI is well-formed",
			"Check that the server is reachable and the database user has access"
	}
}
