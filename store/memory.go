// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/danielhkuo/anonchat/models"
)

// Memory is an in-process Store for tests. Set Err to make every call fail
// with that error, e.g. a *dbconn.ConnectivityError.
type Memory struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]models.User
	sessions map[string]models.Session

	Err error
	Now func() time.Time
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		users:    make(map[primitive.ObjectID]models.User),
		sessions: make(map[string]models.Session),
		Now:      time.Now,
	}
}

func (m *Memory) SetErr(err error) {
	m.mu.Lock()
	m.Err = err
	m.mu.Unlock()
}

func (m *Memory) find(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.users {
		if match(&u) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Username == username })
}

func (m *Memory) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == email })
}

func (m *Memory) FindByIdentifier(_ context.Context, identifier string) (*models.User, error) {
	return m.find(func(u *models.User) bool {
		return u.Email == identifier || u.Username == identifier
	})
}

// conflictLocked reports whether another user already holds u's username
// or email.
func (m *Memory) conflictLocked(u *models.User) bool {
	for id, other := range m.users {
		if id == u.ID {
			continue
		}
		if other.Username == u.Username || other.Email == u.Email {
			return true
		}
	}
	return false
}

func (m *Memory) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, exists := m.users[u.ID]; exists || m.conflictLocked(u) {
		return ErrDuplicate
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = m.Now()
	}
	if u.Messages == nil {
		u.Messages = []models.Message{}
	}
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) Update(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	if m.conflictLocked(u) {
		return ErrDuplicate
	}
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return int64(len(m.users)), nil
}

func (m *Memory) CreateSession(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, exists := m.sessions[s.ID]; exists {
		return ErrDuplicate
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *Memory) GetSession(_ context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	s, ok := m.sessions[id]
	if !ok || s.Expired(m.Now()) {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *Memory) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.sessions, id)
	return nil
}

func (m *Memory) EnsureIndexes(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Err
}
