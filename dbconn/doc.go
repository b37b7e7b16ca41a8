// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package dbconn owns the lifecycle of the single shared MongoDB connection.

# Manager

A Manager is constructed once at process start and passed to everything
that needs the database:

	mgr := dbconn.New(dbconn.Settings{URI: cfg.MongoURI, Database: cfg.DatabaseName})
	defer mgr.Close(ctx)

	h, err := mgr.Acquire(ctx)
	if err != nil {
		return err
	}
	users := h.Database().Collection("users")

The first Acquire dials. Later calls return the same Handle without I/O for
as long as the driver's topology monitor reports a reachable server. When the
handle turns unhealthy, or the last attempt failed, the next Acquire dials
again. Callers never replace the handle; Reset and Close are the only other
transitions.

# States

	Disconnected → Connecting → Connected
	                    ↓
	                  Error → Connecting (next Acquire)

At most one attempt is in flight. Callers that arrive while an attempt runs
wait for it and all receive its outcome. A caller whose context ends stops
waiting; the attempt keeps running on its own bounded context and its
result is kept for later callers.

# Errors

  - *ConfigurationError: missing or malformed connection string. Never
    retryable, never reaches the network.
  - *ConnectivityError: the dial or initial ping failed. Kind and Diagnosis
    say why (auth, host not found, timeout, network). Retryable by the caller;
    the manager itself never retries.
  - *OperationError: a query failed on a healthy connection.

Error strings carry hosts but never credentials.
*/
package dbconn
