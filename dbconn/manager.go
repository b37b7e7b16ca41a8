// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dbconn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const disconnectTimeout = 10 * time.Second

// State is the lifecycle position of a Manager.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Stats is a point-in-time snapshot for diagnostics.
type Stats struct {
	State               State         `json:"state"`
	Hosts               string        `json:"hosts"`
	Attempts            int64         `json:"attempts"`
	ConnectedAt         time.Time     `json:"connected_at,omitzero"`
	LastAttemptAt       time.Time     `json:"last_attempt_at,omitzero"`
	LastAttemptDuration time.Duration `json:"last_attempt_duration_ns"`
	LastErrorKind       Kind          `json:"last_error_kind,omitempty"`
	LastErrorDiagnosis  string        `json:"last_error_diagnosis,omitempty"`
}

// attempt is one dial. done is closed once handle/err are final.
type attempt struct {
	done    chan struct{}
	handle  Handle
	err     error
	waiters int
}

// Option configures New.
type Option func(*Manager)

// WithDialer replaces the MongoDB dialer.
func WithDialer(d Dialer) Option {
	return func(m *Manager) { m.dialer = d }
}

// WithLogger sets the logger; slog.Default() otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// Manager owns the shared database handle. The zero value is not usable;
// construct with New.
type Manager struct {
	settings Settings
	hosts    string
	dialer   Dialer
	logger   *slog.Logger
	cfgErr   error

	mu             sync.Mutex
	state          State
	handle         Handle
	inflight       *attempt
	lastErr        error
	attempts       int64
	connectedAt    time.Time
	lastAttemptAt  time.Time
	lastAttemptDur time.Duration
	closed         bool
}

// New builds a Manager in StateDisconnected. It does no I/O; a bad
// connection string is remembered and returned by every Acquire.
func New(s Settings, opts ...Option) *Manager {
	m := &Manager{
		settings: s.withDefaults(),
		dialer:   MongoDialer{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.cfgErr = Validate(m.settings.URI)
	m.hosts = Redact(m.settings.URI)
	return m
}

// Acquire returns a ready handle, dialing if necessary. See the package
// documentation for the state rules.
func (m *Manager) Acquire(ctx context.Context) (Handle, error) {
	if m.cfgErr != nil {
		return nil, m.cfgErr
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}

	if m.state == StateConnected {
		if m.handle.Healthy() {
			h := m.handle
			m.mu.Unlock()
			return h, nil
		}
		m.logger.Warn("database handle unhealthy, reconnecting", "hosts", m.hosts)
		m.dropLocked()
	}

	a := m.inflight
	if a == nil {
		a = m.startLocked()
	}
	a.waiters++
	m.mu.Unlock()

	select {
	case <-a.done:
		if a.err != nil {
			return nil, a.err
		}
		return a.handle, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// startLocked records a new attempt and runs it. m.mu must be held.
func (m *Manager) startLocked() *attempt {
	a := &attempt{done: make(chan struct{})}
	m.inflight = a
	m.state = StateConnecting
	m.attempts++
	m.lastAttemptAt = time.Now()
	go m.run(a, m.attempts)
	return a
}

func (m *Manager) run(a *attempt, n int64) {
	ctx, cancel := context.WithTimeout(context.Background(), m.settings.AttemptTimeout)
	defer cancel()

	m.logger.Info("connecting to database", "hosts", m.hosts, "attempt", n)

	start := time.Now()
	h, err := m.dialer.Dial(ctx, m.settings)
	elapsed := time.Since(start)

	m.mu.Lock()
	m.inflight = nil
	m.lastAttemptDur = elapsed
	waiters := a.waiters
	switch {
	case err != nil:
		a.err = m.wrap(err)
		m.state = StateError
		m.lastErr = a.err
	case m.closed:
		a.err = ErrClosed
		m.state = StateDisconnected
		go m.disconnect(h)
	default:
		a.handle = h
		m.handle = h
		m.state = StateConnected
		m.connectedAt = time.Now()
		m.lastErr = nil
	}
	m.mu.Unlock()
	close(a.done)

	if a.err != nil {
		var ce *ConnectivityError
		if errors.As(a.err, &ce) {
			m.logger.Error("database connection failed",
				"hosts", m.hosts,
				"kind", ce.Kind,
				"diagnosis", ce.Diagnosis,
				"duration_ms", elapsed.Milliseconds(),
				"waiters", waiters,
				"error", ce.cause,
			)
		} else {
			m.logger.Error("database connection failed", "hosts", m.hosts, "error", a.err)
		}
		return
	}
	m.logger.Info("database connected",
		"hosts", m.hosts,
		"database", m.settings.Database,
		"duration_ms", elapsed.Milliseconds(),
		"waiters", waiters,
	)
}

func (m *Manager) wrap(err error) error {
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return cfgErr
	}
	kind := Classify(err)
	return &ConnectivityError{
		Kind:      kind,
		Hosts:     m.hosts,
		Diagnosis: Diagnosis(kind),
		cause:     err,
	}
}

// dropLocked forgets the current handle and closes it in the background.
// m.mu must be held.
func (m *Manager) dropLocked() {
	h := m.handle
	m.handle = nil
	m.state = StateDisconnected
	if h != nil {
		go m.disconnect(h)
	}
}

func (m *Manager) disconnect(h Handle) {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	if err := h.Disconnect(ctx); err != nil {
		m.logger.Warn("database disconnect failed", "hosts", m.hosts, "error", err)
	}
}

// Reset disconnects the current handle, if any, and returns the Manager to
// StateDisconnected. An attempt already in flight is left to finish.
func (m *Manager) Reset(ctx context.Context) error {
	m.mu.Lock()
	h := m.handle
	m.handle = nil
	m.lastErr = nil
	if m.inflight == nil {
		m.state = StateDisconnected
	}
	m.mu.Unlock()

	if h == nil {
		return nil
	}
	m.logger.Info("database connection reset", "hosts", m.hosts)
	if err := h.Disconnect(ctx); err != nil {
		return fmt.Errorf("dbconn: disconnect: %w", err)
	}
	return nil
}

// Close resets the Manager and makes every later Acquire fail with
// ErrClosed.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return m.Reset(ctx)
}

// Ping acquires a handle and round-trips to the server. A failed ping is
// reported as a *ConnectivityError.
func (m *Manager) Ping(ctx context.Context) error {
	h, err := m.Acquire(ctx)
	if err != nil {
		return err
	}
	if err := h.Ping(ctx); err != nil {
		return m.wrap(err)
	}
	return nil
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Hosts returns the redacted host list of the connection string.
func (m *Manager) Hosts() string { return m.hosts }

// ConfigErr returns the validation error captured by New, or nil.
func (m *Manager) ConfigErr() error { return m.cfgErr }

// Stats returns a snapshot of the Manager.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Stats{
		State:               m.state,
		Hosts:               m.hosts,
		Attempts:            m.attempts,
		LastAttemptAt:       m.lastAttemptAt,
		LastAttemptDuration: m.lastAttemptDur,
	}
	if m.state == StateConnected {
		st.ConnectedAt = m.connectedAt
	}
	var ce *ConnectivityError
	if errors.As(m.lastErr, &ce) {
		st.LastErrorKind = ce.Kind
		st.LastErrorDiagnosis = ce.Diagnosis
	}
	return st
}
