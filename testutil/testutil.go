// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/danielhkuo/anonchat/auth"
	"github.com/danielhkuo/anonchat/cliparse"
	"github.com/danielhkuo/anonchat/dbconn"
	"github.com/danielhkuo/anonchat/models"
	"github.com/danielhkuo/anonchat/store"
)

// MongoImage is the server version the integration tests run against
const MongoImage = "mongo:7"

// StartMongo runs a throwaway MongoDB container and returns its connection
// string. Skipped with -short or when Docker is unavailable.
func StartMongo(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping MongoDB container in -short mode")
	}
	tc.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcmongo.Run(ctx, MongoImage)
	if err != nil {
		t.Fatalf("Failed to start mongo container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate mongo container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get mongo connection string: %v", err)
	}
	return uri
}

// QuietLogger discards everything below warn
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// NewTestManager builds a manager for uri with short timeouts, closed at
// the end of the test
func NewTestManager(t *testing.T, uri string, opts ...dbconn.Option) *dbconn.Manager {
	t.Helper()

	opts = append([]dbconn.Option{dbconn.WithLogger(QuietLogger())}, opts...)
	m := dbconn.New(dbconn.Settings{
		URI:                    uri,
		Database:               "anonchat_test",
		ServerSelectionTimeout: 5 * time.Second,
		ConnectTimeout:         5 * time.Second,
		AttemptTimeout:         15 * time.Second,
	}, opts...)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.Close(ctx)
	})
	return m
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3000,
		MongoURI:     "mongodb://localhost:27017",
		DatabaseName: "anonchat_test",
		EmailFrom:    "AnonChat <test@example.com>",
		BaseURL:      "http://localhost:3000",
		AppEnv:       "test",
		Tuning: cliparse.Tuning{
			SessionTTL: time.Hour,
		},
	}
}

// CreateTestUser stores a user with a real bcrypt hash of password
func CreateTestUser(t *testing.T, users store.Users, username, email, password string, verified bool) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	u := &models.User{
		Username:            username,
		Email:               email,
		Password:            hash,
		IsVerified:          verified,
		IsAcceptingMessages: true,
		CreatedAt:           time.Now(),
	}
	if !verified {
		u.VerifyCode = "123456"
		u.VerifyCodeExpiry = time.Now().Add(models.VerifyCodeTTL)
	}

	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return u
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
