// Copyright (c) 2025 Hosteldesk.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - menu_week: Weekly menu cycles (unique week_start_date, VOTING/FINALIZED)
  - meal_option: Candidate foods per (day, meal) slot with cached vote_count
  - menu_vote: One live vote per (student, week, day, meal)
  - final_menu: Frozen winner per (week, day, meal)

# Relationships

	menu_week 1──* meal_option
	menu_week 1──* menu_vote
	menu_week 1──* final_menu
	meal_option 1──* menu_vote

All foreign keys use ON DELETE CASCADE.

# Uniqueness Constraints

The constraints back up the service-level checks, they do not replace them:

  - menu_week.week_start_date (idempotent week creation)
  - meal_option.(week_id, day, meal_type, food_name) (idempotent option upsert)
  - menu_vote.(student_id, week_id, day, meal_type) (one live vote per slot)
  - final_menu.(week_id, day, meal_type) (primary key)
*/
package db
