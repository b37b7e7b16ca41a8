// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dbconn

import (
	"context"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/description"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Handle is a live database session. It is borrowed for the duration of a
// request and must not be disconnected by the borrower.
type Handle interface {
	// Database returns the application database.
	Database() *mongo.Database

	// Healthy reports the last known topology state. It performs no I/O.
	Healthy() bool

	// Ping round-trips to the primary.
	Ping(ctx context.Context) error

	// Disconnect closes the underlying client. Only the Manager calls it.
	Disconnect(ctx context.Context) error
}

// Dialer establishes a Handle. The Manager calls Dial at most once at a
// time.
type Dialer interface {
	Dial(ctx context.Context, s Settings) (Handle, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, s Settings) (Handle, error)

func (f DialerFunc) Dial(ctx context.Context, s Settings) (Handle, error) { return f(ctx, s) }

// MongoDialer dials with the official driver.
type MongoDialer struct{}

// newClient is a package-private seam so tests can observe the options
// passed to the driver without a server.
var newClient = func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	return mongo.Connect(ctx, opts)
}

func (MongoDialer) Dial(ctx context.Context, s Settings) (Handle, error) {
	h := &mongoHandle{dbName: s.Database}

	opts := clientOptions(s, h.topologyChanged)
	if err := opts.Validate(); err != nil {
		// SECURITY: driver parse errors can quote the URI.
		return nil, &ConfigurationError{
			Kind:  KindMalformedURI,
			msg:   "dbconn: connection string rejected by driver",
			cause: err,
		}
	}

	client, err := newClient(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	h.client = client
	h.healthy.Store(true)
	return h, nil
}

func clientOptions(s Settings, onTopology func(*event.TopologyDescriptionChangedEvent)) *options.ClientOptions {
	return options.Client().
		ApplyURI(s.URI).
		SetAppName(s.AppName).
		SetServerSelectionTimeout(s.ServerSelectionTimeout).
		SetSocketTimeout(s.SocketTimeout).
		SetConnectTimeout(s.ConnectTimeout).
		SetHeartbeatInterval(s.HeartbeatInterval).
		SetMaxPoolSize(s.MaxPoolSize).
		SetServerMonitor(&event.ServerMonitor{
			TopologyDescriptionChanged: onTopology,
		})
}

type mongoHandle struct {
	client  *mongo.Client
	dbName  string
	healthy atomic.Bool
}

func (h *mongoHandle) Database() *mongo.Database { return h.client.Database(h.dbName) }
func (h *mongoHandle) Healthy() bool             { return h.healthy.Load() }

func (h *mongoHandle) Ping(ctx context.Context) error {
	return h.client.Ping(ctx, readpref.Primary())
}

func (h *mongoHandle) Disconnect(ctx context.Context) error {
	h.healthy.Store(false)
	return h.client.Disconnect(ctx)
}

// topologyChanged keeps the health flag current from heartbeat results:
// the handle is healthy while at least one server is of a known kind.
func (h *mongoHandle) topologyChanged(e *event.TopologyDescriptionChangedEvent) {
	h.healthy.Store(hasKnownServer(e.NewDescription))
}

func hasKnownServer(t description.Topology) bool {
	for _, s := range t.Servers {
		if s.Kind != description.Unknown {
			return true
		}
	}
	return false
}
