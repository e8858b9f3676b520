// Copyright (c) 2025 Hosteldesk.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the mess-menu API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - WeekHandler: Week lifecycle (create, list, add options, finalize)
  - VotingHandler: Vote casting and the caller's ballot
  - ResultsHandler: Week views, finalized menu, vote tallies

Handlers are created via constructor functions that accept *sql.DB and Config:

	weekHandler := handlers.NewWeekHandler(db, cfg)

# Week Lifecycle

Weeks progress through two states: VOTING → FINALIZED (one-way)

	POST /menu/weeks               → CreateWeek (idempotent on start date)
	POST /menu/weeks/{id}/options  → AddOptions (VOTING only)
	POST /menu/weeks/{id}/finalize → FinalizeWeek (idempotent)
	GET  /menu/weeks               → ListWeeks

All four are staff-only (caretaker or warden).

# Voting Flow

Students vote per (day, meal) slot; a revote reassigns the existing
vote row and moves the counters atomically:

	POST /menu/vote     → CastVote
	GET  /menu/my-votes → GetMyVotes

The castVote transaction locks the week row FOR SHARE and the student's
vote row FOR UPDATE. Counter changes are relative single-statement
updates, so concurrent casts never lose an increment, and a student's
double-submission cannot produce two vote rows for one slot.

# Finalization

finalizeWeek runs in a single transaction holding the week row FOR
UPDATE: tally read, final_menu upserts, and the status flip all commit
together or not at all. Winner selection is the pure function
pickWinners: highest vote count per slot, earliest-created on ties.

# Views

GetWeek, GetFinal, and GetVoteTally project the flat option/final rows
into a 7-day grid (GroupOptionsByDayMeal, GroupFinalByDayMeal). Slots
without a finalized entry stay absent and render as "N/A" downstream.
*/
package handlers
