// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"

	"github.com/danielhkuo/anonchat/dbconn"
	"github.com/danielhkuo/anonchat/models"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// Acquirer hands out the shared database handle. *dbconn.Manager
// implements it.
type Acquirer interface {
	Acquire(ctx context.Context) (dbconn.Handle, error)
}

// Users is the user-account collection.
type Users interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByIdentifier matches either email or username.
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)

	// Create assigns an ID if u has none.
	Create(ctx context.Context, u *models.User) error

	// Update replaces the stored document with the same ID.
	Update(ctx context.Context, u *models.User) error

	Count(ctx context.Context) (int64, error)
}

// Sessions is the sign-in session collection.
type Sessions interface {
	CreateSession(ctx context.Context, s *models.Session) error

	// GetSession returns ErrNotFound for unknown and expired sessions.
	GetSession(ctx context.Context, id string) (*models.Session, error)

	DeleteSession(ctx context.Context, id string) error
}

// Store is everything the HTTP handlers need.
type Store interface {
	Users
	Sessions
	EnsureIndexes(ctx context.Context) error
}
