// Copyright (c) 2025 Hosteldesk.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"

	"github.com/hosteldesk/messvote/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx, so the row loaders
// can run inside or outside a transaction.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// loadOptions returns all options for a week in deterministic order:
// by day, then meal, then vote count descending, then creation time
// ascending (the finalization tie-break order), then ID.
func loadOptions(db querier, weekID string) ([]models.MealOption, error) {
	rows, err := db.Query(`
		SELECT id, week_id, day, meal_type, food_name, vote_count, created_at
		FROM meal_option
		WHERE week_id = $1
		ORDER BY day, meal_type, vote_count DESC, created_at, id
	`, weekID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := []models.MealOption{}
	for rows.Next() {
		var opt models.MealOption
		if err := rows.Scan(&opt.ID, &opt.WeekID, &opt.Day, &opt.MealType, &opt.FoodName, &opt.VoteCount, &opt.CreatedAt); err != nil {
			return nil, err
		}
		options = append(options, opt)
	}

	return options, rows.Err()
}

// loadOptionsInEntryOrder returns the week's options the way staff
// entered them: by day, then meal, then creation time. The menu view
// keeps this order stable no matter how the running tallies move.
func loadOptionsInEntryOrder(db querier, weekID string) ([]models.MealOption, error) {
	rows, err := db.Query(`
		SELECT id, week_id, day, meal_type, food_name, vote_count, created_at
		FROM meal_option
		WHERE week_id = $1
		ORDER BY day, meal_type, created_at, id
	`, weekID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := []models.MealOption{}
	for rows.Next() {
		var opt models.MealOption
		if err := rows.Scan(&opt.ID, &opt.WeekID, &opt.Day, &opt.MealType, &opt.FoodName, &opt.VoteCount, &opt.CreatedAt); err != nil {
			return nil, err
		}
		options = append(options, opt)
	}

	return options, rows.Err()
}

func loadFinalEntries(db querier, weekID string) ([]models.FinalEntry, error) {
	rows, err := db.Query(`
		SELECT week_id, day, meal_type, food_name, vote_count
		FROM final_menu
		WHERE week_id = $1
		ORDER BY day, meal_type
	`, weekID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.FinalEntry{}
	for rows.Next() {
		var e models.FinalEntry
		if err := rows.Scan(&e.WeekID, &e.Day, &e.MealType, &e.FoodName, &e.VoteCount); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// GroupOptionsByDayMeal projects a flat option list into the 7-day menu
// grid: one map per day, meal type -> options in input order.
func GroupOptionsByDayMeal(options []models.MealOption) []map[string][]models.OptionView {
	grid := make([]map[string][]models.OptionView, models.DaysPerWeek)
	for i := range grid {
		grid[i] = map[string][]models.OptionView{}
	}

	for _, opt := range options {
		if opt.Day < 0 || opt.Day >= models.DaysPerWeek {
			continue
		}
		grid[opt.Day][opt.MealType] = append(grid[opt.Day][opt.MealType], models.OptionView{
			ID:        opt.ID,
			FoodName:  opt.FoodName,
			VoteCount: opt.VoteCount,
		})
	}

	return grid
}

// GroupFinalByDayMeal projects finalized entries into the 7-day grid.
// Slots with no entry stay absent; consumers render those as "N/A".
func GroupFinalByDayMeal(entries []models.FinalEntry) []map[string]models.FinalView {
	grid := make([]map[string]models.FinalView, models.DaysPerWeek)
	for i := range grid {
		grid[i] = map[string]models.FinalView{}
	}

	for _, e := range entries {
		if e.Day < 0 || e.Day >= models.DaysPerWeek {
			continue
		}
		grid[e.Day][e.MealType] = models.FinalView{
			FoodName:  e.FoodName,
			VoteCount: e.VoteCount,
		}
	}

	return grid
}
