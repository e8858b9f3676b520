// Copyright (c) 2025 Hosteldesk.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/hosteldesk/messvote/metrics"
	"github.com/hosteldesk/messvote/middleware"
	"github.com/hosteldesk/messvote/models"
)

// FinalizeWeek handles POST /menu/weeks/{id}/finalize
// Idempotent: finalizing an already-finalized week returns its entries
// without re-tallying.
func (h *WeekHandler) FinalizeWeek(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireStaff(w, r, h.cfg); !ok {
		return
	}

	weekID := r.PathValue("id")
	if weekID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "week_id is required")
		return
	}

	week, entries, finalized, err := finalizeWeek(h.db, weekID)
	if err == ErrWeekNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "Week not found")
		return
	}
	if err != nil {
		slog.Error("failed to finalize week", "error", err, "week_id", weekID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to finalize week")
		return
	}

	if finalized {
		metrics.WeeksFinalizedTotal.Inc()
		slog.Info("week finalized", "week_id", week.ID, "entries", len(entries))
	}

	middleware.JSONResponse(w, http.StatusOK, models.FinalizeWeekResponse{
		Week:    week,
		Entries: entries,
	})
}

// finalizeWeek freezes the winning menu for the week. The week row is
// locked FOR UPDATE for the duration, so in-flight votes either commit
// before the tally is read or fail their closed-week check after the
// status flips; a crash mid-way rolls the whole thing back and the week
// stays VOTING.
func finalizeWeek(db *sql.DB, weekID string) (models.Week, []models.FinalEntry, bool, error) {
	tx, err := db.Begin()
	if err != nil {
		return models.Week{}, nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var week models.Week
	err = tx.QueryRow(`
		SELECT id, week_start_date, status, created_by, created_at
		FROM menu_week
		WHERE id = $1
		FOR UPDATE
	`, weekID).Scan(&week.ID, &week.WeekStartDate, &week.Status, &week.CreatedBy, &week.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Week{}, nil, false, ErrWeekNotFound
	}
	if err != nil {
		return models.Week{}, nil, false, fmt.Errorf("failed to load week: %w", err)
	}

	if week.Status == models.StatusFinalized {
		entries, err := loadFinalEntries(tx, week.ID)
		if err != nil {
			return models.Week{}, nil, false, fmt.Errorf("failed to load final entries: %w", err)
		}
		return week, entries, false, tx.Commit()
	}

	options, err := loadOptions(tx, week.ID)
	if err != nil {
		return models.Week{}, nil, false, fmt.Errorf("failed to load options: %w", err)
	}

	entries := pickWinners(options)

	for _, e := range entries {
		// Overwrite, not insert: a stale entry from an aborted prior
		// attempt must not survive
		if _, err := tx.Exec(`
			INSERT INTO final_menu (week_id, day, meal_type, food_name, vote_count)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (week_id, day, meal_type) DO UPDATE
			SET food_name = EXCLUDED.food_name, vote_count = EXCLUDED.vote_count
		`, e.WeekID, e.Day, e.MealType, e.FoodName, e.VoteCount); err != nil {
			return models.Week{}, nil, false, fmt.Errorf("failed to upsert final entry: %w", err)
		}
	}

	if _, err := tx.Exec(`
		UPDATE menu_week SET status = $1 WHERE id = $2
	`, models.StatusFinalized, week.ID); err != nil {
		return models.Week{}, nil, false, fmt.Errorf("failed to update week status: %w", err)
	}
	week.Status = models.StatusFinalized

	if err := tx.Commit(); err != nil {
		return models.Week{}, nil, false, fmt.Errorf("failed to commit finalization: %w", err)
	}

	return week, entries, true, nil
}

// pickWinners selects one winner per (day, meal) slot: highest vote
// count, earliest creation time on a tie, ID as the last resort so the
// result is reproducible for identical timestamps. Slots with no
// options get no entry. Input order does not matter.
func pickWinners(options []models.MealOption) []models.FinalEntry {
	sorted := make([]models.MealOption, len(options))
	copy(sorted, options)

	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.MealType != b.MealType {
			return a.MealType < b.MealType
		}
		if a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	entries := []models.FinalEntry{}
	seen := map[string]bool{}
	for _, opt := range sorted {
		key := slotKey(opt.Day, opt.MealType)
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, models.FinalEntry{
			WeekID:    opt.WeekID,
			Day:       opt.Day,
			MealType:  opt.MealType,
			FoodName:  opt.FoodName,
			VoteCount: opt.VoteCount,
		})
	}

	return entries
}
