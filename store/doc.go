// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store reads and writes the users and sessions collections.

Every operation borrows a handle from the connection manager for the
duration of the call:

	users := store.NewMongo(mgr)
	u, err := users.FindByUsername(ctx, "alice")

Errors come back in three shapes:

  - ErrNotFound / ErrDuplicate for a missing document or a unique-index
    violation.
  - *dbconn.ConfigurationError or *dbconn.ConnectivityError, unchanged, when
    no connection could be acquired.
  - *dbconn.OperationError when the query itself failed.

Memory implements Store without a database for handler tests.
*/
package store
