// Copyright (c) 2025 Hosteldesk.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3320)
  - DatabaseURL: PostgreSQL connection string (required)
  - IdentitySalt: Secret shared with the identity provider (required)

# CLI Flags

	-p             Server port
	-d             Database URL
	-c             Path to TOML config file
	-identity-salt Identity key salt

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d
	IDENTITY_SALT   → -identity-salt
	MESSVOTE_CONFIG → -c

# Config File

Anything still unset falls back to the optional TOML file:

	[server]
	port = 3320

	[database]
	url = "postgres://..."

	[auth]
	identity_salt = "..."

Precedence: CLI flags > environment variables > config file.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - IDENTITY_SALT must be provided
*/
package cliparse
