// Copyright (c) 2025 Hosteldesk.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hosteldesk/messvote/metrics"
	"github.com/hosteldesk/messvote/middleware"
	"github.com/hosteldesk/messvote/models"
)

// AddOptions handles POST /menu/weeks/{id}/options
// Batch upsert: valid entries are inserted or returned unchanged if the
// same (day, meal, food) already exists; invalid entries are reported as
// skipped without failing the batch.
func (h *WeekHandler) AddOptions(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireStaff(w, r, h.cfg); !ok {
		return
	}

	weekID := r.PathValue("id")
	if weekID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "week_id is required")
		return
	}

	var req models.AddOptionsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.Options) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at least one option is required")
		return
	}

	week, err := resolveWeek(h.db, weekID)
	if err == ErrWeekNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "Week not found")
		return
	}
	if err != nil {
		slog.Error("failed to resolve week", "error", err, "week_id", weekID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if week.Status != models.StatusVoting {
		middleware.ErrorResponse(w, http.StatusConflict, "Cannot add options to a finalized week")
		return
	}

	options, skipped, err := addOptions(h.db, week.ID, req.Options)
	switch {
	case err == ErrWeekNotFound:
		middleware.ErrorResponse(w, http.StatusNotFound, "Week not found")
		return
	case err == ErrVotingClosed:
		middleware.ErrorResponse(w, http.StatusConflict, "Cannot add options to a finalized week")
		return
	case err != nil:
		slog.Error("failed to add options", "error", err, "week_id", week.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add options")
		return
	}

	slog.Info("options added", "week_id", week.ID, "accepted", len(options), "skipped", len(skipped))

	middleware.JSONResponse(w, http.StatusCreated, models.AddOptionsResponse{
		Options: options,
		Skipped: skipped,
	})
}

// addOptions upserts each valid input and reports invalid ones by index.
// Re-submitting the same option list is a no-op: the unique index on
// (week_id, day, meal_type, food_name) makes the insert idempotent and
// the existing row is returned with its vote count untouched.
// The whole batch runs in one transaction holding FOR SHARE on the week
// row, so a finalize committing after the handler's status check cannot
// gain options afterwards: either the batch commits first and the tally
// sees it, or the in-transaction re-check fails with ErrVotingClosed.
func addOptions(db *sql.DB, weekID string, inputs []models.OptionInput) ([]models.MealOption, []models.SkippedOption, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRow(`
		SELECT status FROM menu_week WHERE id = $1 FOR SHARE
	`, weekID).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, nil, ErrWeekNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load week: %w", err)
	}
	if status != models.StatusVoting {
		return nil, nil, ErrVotingClosed
	}

	options := []models.MealOption{}
	skipped := []models.SkippedOption{}
	var created, existing int

	for i, in := range inputs {
		in.FoodName = strings.TrimSpace(in.FoodName)
		if err := in.Validate(); err != nil {
			skipped = append(skipped, models.SkippedOption{Index: i, Reason: skipReason(err)})
			continue
		}

		res, err := tx.Exec(`
			INSERT INTO meal_option (id, week_id, day, meal_type, food_name, vote_count, created_at)
			VALUES ($1, $2, $3, $4, $5, 0, $6)
			ON CONFLICT (week_id, day, meal_type, food_name) DO NOTHING
		`, uuid.NewString(), weekID, in.Day, in.Meal, in.FoodName, time.Now())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to insert option: %w", err)
		}

		// Covers both the fresh insert and the pre-existing row
		var opt models.MealOption
		err = tx.QueryRow(`
			SELECT id, week_id, day, meal_type, food_name, vote_count, created_at
			FROM meal_option
			WHERE week_id = $1 AND day = $2 AND meal_type = $3 AND food_name = $4
		`, weekID, in.Day, in.Meal, in.FoodName).Scan(
			&opt.ID, &opt.WeekID, &opt.Day, &opt.MealType, &opt.FoodName, &opt.VoteCount, &opt.CreatedAt,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read option back: %w", err)
		}
		options = append(options, opt)

		if inserted, err := res.RowsAffected(); err == nil && inserted > 0 {
			created++
		} else {
			existing++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit options: %w", err)
	}

	// Counters only reflect committed work
	metrics.OptionsTotal.WithLabelValues("created").Add(float64(created))
	metrics.OptionsTotal.WithLabelValues("existing").Add(float64(existing))
	metrics.OptionsTotal.WithLabelValues("skipped").Add(float64(len(skipped)))

	return options, skipped, nil
}

// skipReason turns a validation failure into a caller-facing reason for
// the skipped entry.
func skipReason(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "Day":
			return "day must be between 0 and 6"
		case "Meal":
			return "meal must be breakfast, lunch, or dinner"
		case "FoodName":
			return "food name is required"
		}
	}
	return "invalid option"
}
