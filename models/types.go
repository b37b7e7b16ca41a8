package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VerifyCodeTTL is how long a sign-up verification code stays valid.
const VerifyCodeTTL = time.Hour

// Collection names
const (
	CollectionUsers    = "users"
	CollectionSessions = "sessions"
)

// Request types

type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identifier is either an email address or a username
type SignInRequest struct {
	Identifier  string `json:"identifier"`
	Password    string `json:"password"`
	CallbackURL string `json:"callbackUrl,omitempty"`
}

type VerifyCodeRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

// Response types

// APIResponse is the envelope every JSON endpoint answers with
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SessionUser struct {
	ID                  string `json:"_id"`
	Username            string `json:"username"`
	Email               string `json:"email"`
	IsVerified          bool   `json:"isVerified"`
	IsAcceptingMessages bool   `json:"isAcceptingMessages"`
}

type SessionResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    *SessionUser `json:"user,omitempty"`
	URL     string       `json:"url,omitempty"` // where the client should go next
}

type DebugEnvironment struct {
	MongoURI      string `json:"MONGODB_URI"` // "Set" / "Not set", never the value
	AppEnv        string `json:"APP_ENV"`
	MailerEnabled bool   `json:"mailerEnabled"`
}

type DebugConnection struct {
	State              string `json:"state"`
	Hosts              string `json:"hosts"`
	Attempts           int64  `json:"attempts"`
	ConnectedSince     string `json:"connectedSince,omitempty"`
	LastAttempt        string `json:"lastAttempt,omitempty"`
	LastAttemptTook    string `json:"lastAttemptTook,omitempty"`
	LastErrorKind      string `json:"lastErrorKind,omitempty"`
	LastErrorDiagnosis string `json:"lastErrorDiagnosis,omitempty"`
}

type DebugDatabase struct {
	Connected bool  `json:"connected"`
	UserCount int64 `json:"userCount"`
}

type DebugInfo struct {
	Timestamp   time.Time        `json:"timestamp"`
	Environment DebugEnvironment `json:"environment"`
	Connection  DebugConnection  `json:"connection"`
	Database    *DebugDatabase   `json:"database,omitempty"`
	Error       string           `json:"error,omitempty"`
}

type DebugResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Debug   DebugInfo `json:"debug"`
}

type URICheck struct {
	Exists      bool   `json:"exists"`
	Length      int    `json:"length"`
	Scheme      string `json:"scheme,omitempty"`
	Hosts       string `json:"hosts,omitempty"`
	IsLocalhost bool   `json:"isLocalhost"`
	IsAtlas     bool   `json:"isAtlas"`
}

type EnvCheckResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	MongoURI  URICheck        `json:"MONGODB_URI"`
	Variables map[string]bool `json:"variables"`
	Diagnosis string          `json:"diagnosis"`
	Solution  string          `json:"solution"`
}

// Domain types

// Message is an anonymous message left for a user
type Message struct {
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username            string             `bson:"username" json:"username"`
	Email               string             `bson:"email" json:"email"`
	Password            string             `bson:"password" json:"-"` // bcrypt hash
	VerifyCode          string             `bson:"verifyCode" json:"-"`
	VerifyCodeExpiry    time.Time          `bson:"verifyCodeExpiry" json:"-"`
	IsVerified          bool               `bson:"isVerified" json:"isVerified"`
	IsAcceptingMessages bool               `bson:"isAcceptingMessages" json:"isAcceptingMessages"`
	Messages            []Message          `bson:"messages" json:"messages"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
}

// SessionUser returns the public projection stored in sessions and responses
func (u *User) SessionUser() *SessionUser {
	return &SessionUser{
		ID:                  u.ID.Hex(),
		Username:            u.Username,
		Email:               u.Email,
		IsVerified:          u.IsVerified,
		IsAcceptingMessages: u.IsAcceptingMessages,
	}
}

// Session is a server-side sign-in record; ID is the cookie value
type Session struct {
	ID        string             `bson:"_id" json:"-"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Username  string             `bson:"username" json:"username"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
}

// Expired reports whether the session is no longer usable at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
