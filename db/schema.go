// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/danielhkuo/anonchat/models"
)

// Indexes lists the indexes each collection needs, keyed by collection name.
var Indexes = map[string][]mongo.IndexModel{
	models.CollectionUsers: {
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("username_unique"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
	},
	models.CollectionSessions: {
		{
			// expireAfterSeconds 0 drops a session once expiresAt has passed
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
		},
	},
}

// CreateSchema creates all indexes needed for the application.
// Safe to call multiple times - identical indexes are left alone.
func CreateSchema(ctx context.Context, database *mongo.Database) error {
	for coll, idx := range Indexes {
		if _, err := database.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}

	return nil
}
