// Copyright (c) 2025 Hosteldesk.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the mess-menu voting API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Week management (staff, signed identity headers with caretaker/warden role):

	POST /menu/weeks               - Create week (idempotent per start date)
	GET  /menu/weeks               - List weeks, newest first
	POST /menu/weeks/{id}/options  - Add option batch
	POST /menu/weeks/{id}/finalize - Freeze the winning menu
	GET  /menu/votes               - Running vote tallies

Voting (students):

	POST /menu/vote     - Cast or move a vote
	GET  /menu/my-votes - The caller's current choices

Menu views (any authenticated role):

	GET /menu/week  - Week with options grouped by day and meal
	GET /menu/final - Finalized menu only

The read endpoints take an optional ?weekId= query parameter; without it
the current week (latest start date) is used.

# Handler Initialization

The router creates handler instances with dependency injection:

	weekHandler := handlers.NewWeekHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)

All handlers receive the database connection and configuration.
*/
package router
