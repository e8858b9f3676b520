// Copyright (c) 2025 Hosteldesk.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the messvote API server.

Messvote is the weekly mess-menu voting service for the hostel platform:
staff plan a week of candidate foods per (day, meal) slot, students vote
one choice per slot (revotes move the vote), and staff finalize the week
into a frozen winning menu.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... IDENTITY_SALT=... go run main.go

Or with flags:

	go run main.go -p 3320 -d "postgres://..." -identity-salt "..."

A .env file in the working directory is loaded if present, and a TOML
config file can supply anything not set by flag or environment:

	go run main.go -c messvote.toml

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string
  - IDENTITY_SALT (-identity-salt): Secret shared with the identity provider

Optional settings:

  - PORT (-p): Server port (default: 3320)
  - MESSVOTE_CONFIG (-c): Path to TOML config file

# Identity

Authentication lives in the identity provider fronting this service. It
forwards X-User-Id, X-User-Role, and X-Hostel on every request, signed
as X-Identity-Key (HMAC-SHA256 with the shared salt). See package auth.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers plus the voting/finalization core
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, JSON helpers
  - models: Request/response/domain types and validation
  - auth: Identity header verification and role predicates
  - metrics: Prometheus collectors
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
