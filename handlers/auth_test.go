// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/anonchat/auth"
	"github.com/danielhkuo/anonchat/dbconn"
	"github.com/danielhkuo/anonchat/mailer"
	"github.com/danielhkuo/anonchat/models"
	"github.com/danielhkuo/anonchat/store"
	"github.com/danielhkuo/anonchat/testutil"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeMailer records the last code it was asked to send
type fakeMailer struct {
	mu    sync.Mutex
	codes map[string]string // username → code
	err   error
}

func (f *fakeMailer) SendVerification(_ context.Context, email, username, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.codes == nil {
		f.codes = make(map[string]string)
	}
	f.codes[username] = code
	return nil
}

func (f *fakeMailer) Enabled() bool { return true }

func newTestAuthHandler(mail mailer.Sender) (*AuthHandler, *store.Memory) {
	st := store.NewMemory()
	st.Now = func() time.Time { return testNow }
	h := NewAuthHandler(st, mail, testutil.GetTestConfig())
	h.now = func() time.Time { return testNow }
	return h, st
}

func signUpBody(username, email, password string) models.SignUpRequest {
	return models.SignUpRequest{Username: username, Email: email, Password: password}
}

func TestSignUp(t *testing.T) {
	tests := []struct {
		name        string
		seed        func(t *testing.T, st *store.Memory)
		body        interface{}
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "new user",
			body:        signUpBody("alice", "alice@example.com", "secret1"),
			wantStatus:  http.StatusCreated,
			wantMessage: "registered successfully",
		},
		{
			name:        "invalid JSON",
			body:        "not an object",
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid JSON",
		},
		{
			name:        "invalid username",
			body:        signUpBody("a!", "alice@example.com", "secret1"),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "special characters",
		},
		{
			name:        "invalid email",
			body:        signUpBody("alice", "alice", "secret1"),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid email",
		},
		{
			name:        "short password",
			body:        signUpBody("alice", "alice@example.com", "123"),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "at least 6",
		},
		{
			name: "verified username taken",
			seed: func(t *testing.T, st *store.Memory) {
				testutil.CreateTestUser(t, st, "alice", "first@example.com", "secret1", true)
			},
			body:        signUpBody("alice", "alice@example.com", "secret1"),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Username is already taken",
		},
		{
			name: "verified email taken",
			seed: func(t *testing.T, st *store.Memory) {
				testutil.CreateTestUser(t, st, "first", "alice@example.com", "secret1", true)
			},
			body:        signUpBody("alice", "alice@example.com", "secret1"),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "already exists with this email",
		},
		{
			name: "database unreachable",
			seed: func(t *testing.T, st *store.Memory) {
				st.SetErr(&dbconn.ConnectivityError{Kind: dbconn.KindTimeout, Hosts: "db.example:27017"})
			},
			body:        signUpBody("alice", "alice@example.com", "secret1"),
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: "Database is unavailable",
		},
		{
			name: "query failure",
			seed: func(t *testing.T, st *store.Memory) {
				st.SetErr(dbconn.NewOperationError("find user by username", errors.New("boom")))
			},
			body:        signUpBody("alice", "alice@example.com", "secret1"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Error registering user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, st := newTestAuthHandler(mailer.Disabled{})
			if tt.seed != nil {
				tt.seed(t, st)
			}

			w := httptest.NewRecorder()
			h.SignUp(w, testutil.MakeRequest("POST", "/api/sign-up", tt.body, nil))

			testutil.AssertStatus(t, w, tt.wantStatus)
			var resp models.APIResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Success != (tt.wantStatus == http.StatusCreated) {
				t.Errorf("Expected success=%v, got %v", tt.wantStatus == http.StatusCreated, resp.Success)
			}
			if !strings.Contains(resp.Message, tt.wantMessage) {
				t.Errorf("Expected message containing %q, got %q", tt.wantMessage, resp.Message)
			}
		})
	}
}

func TestSignUp_NoMailerVerifiesImmediately(t *testing.T) {
	h, st := newTestAuthHandler(mailer.Disabled{})

	w := httptest.NewRecorder()
	h.SignUp(w, testutil.MakeRequest("POST", "/api/sign-up", signUpBody("alice", "alice@example.com", "secret1"), nil))
	testutil.AssertStatus(t, w, http.StatusCreated)

	u, err := st.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if !u.IsVerified {
		t.Error("Expected user to be verified without a mailer")
	}
	if u.VerifyCode != "" {
		t.Errorf("Expected no verify code, got %q", u.VerifyCode)
	}
	if !u.IsAcceptingMessages {
		t.Error("Expected new users to accept messages")
	}
	if u.Password == "secret1" {
		t.Fatal("Password stored in plaintext")
	}
	if err := auth.CheckPassword(u.Password, "secret1"); err != nil {
		t.Errorf("Stored hash does not match: %v", err)
	}
}

func TestSignUp_WithMailer(t *testing.T) {
	mail := &fakeMailer{}
	h, st := newTestAuthHandler(mail)

	w := httptest.NewRecorder()
	h.SignUp(w, testutil.MakeRequest("POST", "/api/sign-up", signUpBody("alice", "alice@example.com", "secret1"), nil))
	testutil.AssertStatus(t, w, http.StatusCreated)

	u, err := st.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if u.IsVerified {
		t.Error("Expected user to wait for verification")
	}
	if u.VerifyCode == "" || u.VerifyCode != mail.codes["alice"] {
		t.Errorf("Stored code %q does not match sent code %q", u.VerifyCode, mail.codes["alice"])
	}
	if want := testNow.Add(models.VerifyCodeTTL); !u.VerifyCodeExpiry.Equal(want) {
		t.Errorf("Expected expiry %v, got %v", want, u.VerifyCodeExpiry)
	}
}

func TestSignUp_MailerFailure(t *testing.T) {
	mail := &fakeMailer{err: &mailer.SendError{Reason: mailer.ReasonRateLimit}}
	h, _ := newTestAuthHandler(mail)

	w := httptest.NewRecorder()
	h.SignUp(w, testutil.MakeRequest("POST", "/api/sign-up", signUpBody("alice", "alice@example.com", "secret1"), nil))
	testutil.AssertStatus(t, w, http.StatusInternalServerError)

	var resp models.APIResponse
	testutil.AssertJSON(t, w, &resp)
	if !strings.Contains(resp.Message, "rate limit") {
		t.Errorf("Expected rate limit message, got %q", resp.Message)
	}
}

func TestSignUp_OverwritesUnverified(t *testing.T) {
	t.Run("same username", func(t *testing.T) {
		h, st := newTestAuthHandler(&fakeMailer{})
		old := testutil.CreateTestUser(t, st, "alice", "old@example.com", "oldpass", false)

		w := httptest.NewRecorder()
		h.SignUp(w, testutil.MakeRequest("POST", "/api/sign-up", signUpBody("alice", "new@example.com", "newpass"), nil))
		testutil.AssertStatus(t, w, http.StatusCreated)

		u, err := st.FindByUsername(context.Background(), "alice")
		if err != nil {
			t.Fatal(err)
		}
		if u.ID != old.ID {
			t.Error("Expected the existing record to be reused")
		}
		if u.Email != "new@example.com" {
			t.Errorf("Expected email to be replaced, got %q", u.Email)
		}
		if auth.CheckPassword(u.Password, "newpass") != nil {
			t.Error("Expected password to be replaced")
		}
		if n, _ := st.Count(context.Background()); n != 1 {
			t.Errorf("Expected 1 user, got %d", n)
		}
	})

	t.Run("same email", func(t *testing.T) {
		h, st := newTestAuthHandler(&fakeMailer{})
		old := testutil.CreateTestUser(t, st, "oldname", "alice@example.com", "oldpass", false)

		w := httptest.NewRecorder()
		h.SignUp(w, testutil.MakeRequest("POST", "/api/sign-up", signUpBody("alice", "alice@example.com", "newpass"), nil))
		testutil.AssertStatus(t, w, http.StatusCreated)

		u, err := st.FindByEmail(context.Background(), "alice@example.com")
		if err != nil {
			t.Fatal(err)
		}
		if u.ID != old.ID || u.Username != "alice" {
			t.Errorf("Expected record %v renamed to alice, got %v %q", old.ID, u.ID, u.Username)
		}
	})
}

// TestConcurrentSignUps verifies that when many goroutines register the
// same username, exactly one succeeds
func TestConcurrentSignUps(t *testing.T) {
	h, st := newTestAuthHandler(mailer.Disabled{})

	const n = 8
	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := string(rune('a'+i)) + "@example.com"
			w := httptest.NewRecorder()
			h.SignUp(w, testutil.MakeRequest("POST", "/api/sign-up", signUpBody("racer", email, "secret1"), nil))
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, c := range codes {
		switch c {
		case http.StatusCreated:
			created++
		case http.StatusBadRequest:
		default:
			t.Errorf("Unexpected status %d", c)
		}
	}
	if created != 1 {
		t.Errorf("Expected exactly 1 sign-up to win, got %d", created)
	}
	if count, _ := st.Count(context.Background()); count != 1 {
		t.Errorf("Expected 1 stored user, got %d", count)
	}
}

func TestCheckUsernameUnique(t *testing.T) {
	h, st := newTestAuthHandler(mailer.Disabled{})
	testutil.CreateTestUser(t, st, "taken", "taken@example.com", "secret1", true)
	testutil.CreateTestUser(t, st, "pending", "pending@example.com", "secret1", false)

	tests := []struct {
		name        string
		query       string
		wantStatus  int
		wantSuccess bool
		wantMessage string
	}{
		{"missing", "", http.StatusBadRequest, false, "Username parameter is required"},
		{"invalid", "?username=a", http.StatusBadRequest, false, "at least 2"},
		{"free", "?username=newbie", http.StatusOK, true, "Username is unique"},
		{"verified owner", "?username=taken", http.StatusOK, false, "Username is already taken"},
		{"unverified owner", "?username=pending", http.StatusOK, true, "Username is unique"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.CheckUsernameUnique(w, testutil.MakeRequest("GET", "/api/check-username-unique"+tt.query, nil, nil))

			testutil.AssertStatus(t, w, tt.wantStatus)
			var resp models.APIResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Success != tt.wantSuccess {
				t.Errorf("Expected success=%v, got %v", tt.wantSuccess, resp.Success)
			}
			if !strings.Contains(resp.Message, tt.wantMessage) {
				t.Errorf("Expected message containing %q, got %q", tt.wantMessage, resp.Message)
			}
		})
	}
}

func TestCheckUsernameUnique_DatabaseDown(t *testing.T) {
	h, st := newTestAuthHandler(mailer.Disabled{})
	st.SetErr(&dbconn.ConnectivityError{Kind: dbconn.KindHostNotFound, Hosts: "nowhere.example"})

	w := httptest.NewRecorder()
	h.CheckUsernameUnique(w, testutil.MakeRequest("GET", "/api/check-username-unique?username=alice", nil, nil))
	testutil.AssertStatus(t, w, http.StatusServiceUnavailable)
}

func TestVerifyCode(t *testing.T) {
	tests := []struct {
		name       string
		verified   bool
		code       string
		username   string
		clockSkew  time.Duration
		wantStatus int
		wantVerify bool
	}{
		{"correct code", false, "123456", "alice", 0, http.StatusOK, true},
		{"wrong code", false, "654321", "alice", 0, http.StatusBadRequest, false},
		{"expired code", false, "123456", "alice", 2 * time.Hour, http.StatusBadRequest, false},
		{"unknown user", false, "123456", "bob", 0, http.StatusNotFound, false},
		{"already verified", true, "000000", "alice", 0, http.StatusOK, true},
		{"missing code", false, "", "alice", 0, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, st := newTestAuthHandler(&fakeMailer{})
			u := testutil.CreateTestUser(t, st, "alice", "alice@example.com", "secret1", tt.verified)
			if !tt.verified {
				u.VerifyCodeExpiry = testNow.Add(models.VerifyCodeTTL)
				if err := st.Update(context.Background(), u); err != nil {
					t.Fatal(err)
				}
			}
			h.now = func() time.Time { return testNow.Add(tt.clockSkew) }

			body := models.VerifyCodeRequest{Username: tt.username, Code: tt.code}
			w := httptest.NewRecorder()
			h.VerifyCode(w, testutil.MakeRequest("POST", "/api/verify-code", body, nil))

			testutil.AssertStatus(t, w, tt.wantStatus)

			got, err := st.FindByUsername(context.Background(), "alice")
			if err != nil {
				t.Fatal(err)
			}
			if got.IsVerified != tt.wantVerify {
				t.Errorf("Expected verified=%v, got %v", tt.wantVerify, got.IsVerified)
			}
			if tt.wantVerify && got.VerifyCode != "" {
				t.Error("Expected verify code to be cleared")
			}
		})
	}
}
