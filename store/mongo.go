// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/danielhkuo/anonchat/db"
	"github.com/danielhkuo/anonchat/dbconn"
	"github.com/danielhkuo/anonchat/models"
)

// Mongo implements Store on the shared connection.
type Mongo struct {
	conns Acquirer
	now   func() time.Time
}

var _ Store = (*Mongo)(nil)

func NewMongo(conns Acquirer) *Mongo {
	return &Mongo{conns: conns, now: time.Now}
}

func (s *Mongo) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	h, err := s.conns.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return h.Database().Collection(name), nil
}

func (s *Mongo) findUser(ctx context.Context, op string, filter bson.M) (*models.User, error) {
	coll, err := s.collection(ctx, models.CollectionUsers)
	if err != nil {
		return nil, err
	}

	var u models.User
	if err := coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, dbconn.NewOperationError(op, err)
	}
	return &u, nil
}

func (s *Mongo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, "find user by username", bson.M{"username": username})
}

func (s *Mongo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "find user by email", bson.M{"email": email})
}

func (s *Mongo) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return s.findUser(ctx, "find user by identifier", bson.M{
		"$or": bson.A{
			bson.M{"email": identifier},
			bson.M{"username": identifier},
		},
	})
}

func (s *Mongo) Create(ctx context.Context, u *models.User) error {
	coll, err := s.collection(ctx, models.CollectionUsers)
	if err != nil {
		return err
	}

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	if u.Messages == nil {
		u.Messages = []models.Message{}
	}

	if _, err := coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return dbconn.NewOperationError("insert user", err)
	}
	return nil
}

func (s *Mongo) Update(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		return fmt.Errorf("store: update user without id")
	}

	coll, err := s.collection(ctx, models.CollectionUsers)
	if err != nil {
		return err
	}

	res, err := coll.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return dbconn.NewOperationError("update user", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Mongo) Count(ctx context.Context) (int64, error) {
	coll, err := s.collection(ctx, models.CollectionUsers)
	if err != nil {
		return 0, err
	}

	n, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, dbconn.NewOperationError("count users", err)
	}
	return n, nil
}

func (s *Mongo) CreateSession(ctx context.Context, sess *models.Session) error {
	coll, err := s.collection(ctx, models.CollectionSessions)
	if err != nil {
		return err
	}

	if _, err := coll.InsertOne(ctx, sess); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return dbconn.NewOperationError("insert session", err)
	}
	return nil
}

func (s *Mongo) GetSession(ctx context.Context, id string) (*models.Session, error) {
	coll, err := s.collection(ctx, models.CollectionSessions)
	if err != nil {
		return nil, err
	}

	var sess models.Session
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&sess); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, dbconn.NewOperationError("find session", err)
	}

	// The TTL monitor only sweeps once a minute.
	if sess.Expired(s.now()) {
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *Mongo) DeleteSession(ctx context.Context, id string) error {
	coll, err := s.collection(ctx, models.CollectionSessions)
	if err != nil {
		return err
	}

	if _, err := coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return dbconn.NewOperationError("delete session", err)
	}
	return nil
}

// EnsureIndexes creates the unique and TTL indexes. Safe to call on every
// start.
func (s *Mongo) EnsureIndexes(ctx context.Context) error {
	h, err := s.conns.Acquire(ctx)
	if err != nil {
		return err
	}
	if err := db.CreateSchema(ctx, h.Database()); err != nil {
		return dbconn.NewOperationError("ensure indexes", err)
	}
	return nil
}
