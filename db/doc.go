// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db holds the collection indexes.

# Schema Creation

CreateSchema builds every index in Indexes:

	if err := db.CreateSchema(ctx, handle.Database()); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - MongoDB ignores an index that already exists
with the same keys and options.

# Collections

  - users: one document per account, with embedded messages
  - sessions: server-side sign-in sessions, keyed by cookie token

# Indexes

  - users.username (unique)
  - users.email (unique)
  - sessions.expiresAt (TTL, expires at the stored time)
*/
package db
