// Copyright (c) 2025 Hosteldesk.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Weekly menu cycles
CREATE TABLE IF NOT EXISTS menu_week (
    id TEXT PRIMARY KEY,
    week_start_date DATE NOT NULL UNIQUE,
    status TEXT NOT NULL DEFAULT 'VOTING' CHECK (status IN ('VOTING', 'FINALIZED')),
    created_by TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_menu_week_start_date ON menu_week(week_start_date);

-- Candidate foods per (day, meal) slot; vote_count is a cache maintained
-- by the voting transaction, backed by the menu_vote rows
CREATE TABLE IF NOT EXISTS meal_option (
    id TEXT PRIMARY KEY,
    week_id TEXT NOT NULL REFERENCES menu_week(id) ON DELETE CASCADE,
    day INT NOT NULL CHECK (day BETWEEN 0 AND 6),
    meal_type TEXT NOT NULL CHECK (meal_type IN ('breakfast', 'lunch', 'dinner')),
    food_name TEXT NOT NULL,
    vote_count INT NOT NULL DEFAULT 0 CHECK (vote_count >= 0),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    UNIQUE (week_id, day, meal_type, food_name)
);

CREATE INDEX IF NOT EXISTS idx_meal_option_week_id ON meal_option(week_id);

-- One live vote per (student, week, day, meal); revotes reassign
-- meal_option_id on the same row
CREATE TABLE IF NOT EXISTS menu_vote (
    id TEXT PRIMARY KEY,
    student_id TEXT NOT NULL,
    week_id TEXT NOT NULL REFERENCES menu_week(id) ON DELETE CASCADE,
    day INT NOT NULL CHECK (day BETWEEN 0 AND 6),
    meal_type TEXT NOT NULL CHECK (meal_type IN ('breakfast', 'lunch', 'dinner')),
    meal_option_id TEXT NOT NULL REFERENCES meal_option(id) ON DELETE CASCADE,
    UNIQUE (student_id, week_id, day, meal_type)
);

CREATE INDEX IF NOT EXISTS idx_menu_vote_week_id ON menu_vote(week_id);
CREATE INDEX IF NOT EXISTS idx_menu_vote_student ON menu_vote(student_id, week_id);

-- Frozen winners, written only by finalization
CREATE TABLE IF NOT EXISTS final_menu (
    week_id TEXT NOT NULL REFERENCES menu_week(id) ON DELETE CASCADE,
    day INT NOT NULL CHECK (day BETWEEN 0 AND 6),
    meal_type TEXT NOT NULL CHECK (meal_type IN ('breakfast', 'lunch', 'dinner')),
    food_name TEXT NOT NULL,
    vote_count INT NOT NULL,
    PRIMARY KEY (week_id, day, meal_type)
);
`
