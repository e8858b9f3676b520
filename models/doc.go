// Copyright (c) 2025 Hosteldesk.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateWeekRequest: week_start_date ("2006-01-02")
  - AddOptionsRequest: options ([]OptionInput)
  - CastVoteRequest: meal_option_id

OptionInput carries validator tags (day 0-6, meal enum, food name
required) and a Validate method.

# Response Types

Types for JSON responses:

  - AddOptionsResponse: options plus per-index skipped entries
  - CastVoteResponse: message
  - MyVotesResponse: week_id, my_votes ("day-mealType" -> option ID)
  - TallyResponse: week_id, total_votes, by_day_meal
  - WeekResponse: week, status, options_by_day_meal, final_by_day_meal
  - FinalResponse: week, status, final_by_day_meal
  - FinalizeWeekResponse: week, entries
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Week: one 7-day planning cycle with lifecycle status
  - MealOption: candidate food for a (day, meal) slot with cached vote count
  - Vote: a student's current choice for a slot
  - FinalEntry: the frozen winner for a slot

# Constants

Week status values:

	StatusVoting    = "VOTING"
	StatusFinalized = "FINALIZED"

Meal types:

	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"

Roles:

	RoleStudent   = "student"
	RoleCaretaker = "caretaker"
	RoleWarden    = "warden"
*/
package models
