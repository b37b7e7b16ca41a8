// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3000)
  - MongoURI: MongoDB connection string (mongodb:// or mongodb+srv://)
  - DatabaseName: Database to use (default: anonchat)
  - ResendAPIKey: Enables verification emails when set
  - EmailFrom: Sender of verification emails
  - BaseURL: Public origin, used for redirects and email links
  - AppEnv: "development" or "production"
  - Tuning: Optional timeouts, pool size and session lifetime

# CLI Flags

	-p            Server port
	-u            MongoDB connection string
	-db           Database name
	-base-url     Public base URL
	-env          Application environment
	-config       YAML tuning file
	-resend-key   Resend API key
	-email-from   Verification email sender

# Environment Variables

Flags fall back to environment variables:

	PORT             → -p
	MONGODB_URI      → -u
	MONGODB_DATABASE → -db
	BASE_URL         → -base-url
	APP_ENV          → -env
	CONFIG_FILE      → -config
	RESEND_API_KEY   → -resend-key
	EMAIL_FROM       → -email-from

CLI flags take precedence over environment variables. A .env file in the
working directory is loaded first; it never overrides a variable that is
already set.

# Tuning File

	server_selection_timeout: 10s
	socket_timeout: ${MONGO_SOCKET_TIMEOUT}
	max_pool_size: 20
	session_ttl: 720h

${VAR} references are expanded before parsing. Omitted fields keep their
defaults.

# Validation

MONGODB_URI is not checked here. The connection manager validates it so
that /check-env-vars can still explain what is wrong.
*/
package cliparse
