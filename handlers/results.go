// Copyright (c) 2025 Hosteldesk.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/hosteldesk/messvote/cliparse"
	"github.com/hosteldesk/messvote/middleware"
	"github.com/hosteldesk/messvote/models"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg}
}

// GetWeek handles GET /menu/week?weekId=...
// Open to any authenticated role. Without weekId, resolves the current
// week (latest start date). Options within a slot keep the order staff
// entered them. The finalized grid is populated only once the week is
// FINALIZED.
func (h *ResultsHandler) GetWeek(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r, h.cfg); !ok {
		return
	}

	week, err := resolveWeek(h.db, r.URL.Query().Get("weekId"))
	if err == ErrWeekNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "No active week found")
		return
	}
	if err != nil {
		slog.Error("failed to resolve week", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	options, err := loadOptionsInEntryOrder(h.db, week.ID)
	if err != nil {
		slog.Error("failed to query options", "error", err, "week_id", week.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	finals := []models.FinalEntry{}
	if week.Status == models.StatusFinalized {
		finals, err = loadFinalEntries(h.db, week.ID)
		if err != nil {
			slog.Error("failed to query final entries", "error", err, "week_id", week.ID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
	}

	middleware.JSONResponse(w, http.StatusOK, models.WeekResponse{
		Week:             week,
		Status:           week.Status,
		OptionsByDayMeal: GroupOptionsByDayMeal(options),
		FinalByDayMeal:   GroupFinalByDayMeal(finals),
	})
}

// GetFinal handles GET /menu/final?weekId=...
// Open to any authenticated role. The grid is empty while the week is
// still VOTING; absent slots are rendered as "N/A" by consumers.
func (h *ResultsHandler) GetFinal(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r, h.cfg); !ok {
		return
	}

	week, err := resolveWeek(h.db, r.URL.Query().Get("weekId"))
	if err == ErrWeekNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "No active week found")
		return
	}
	if err != nil {
		slog.Error("failed to resolve week", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	finals, err := loadFinalEntries(h.db, week.ID)
	if err != nil {
		slog.Error("failed to query final entries", "error", err, "week_id", week.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.FinalResponse{
		Week:           week,
		Status:         week.Status,
		FinalByDayMeal: GroupFinalByDayMeal(finals),
	})
}

// GetVoteTally handles GET /menu/votes?weekId=...
// Staff view of the running tallies: per slot, options sorted by vote
// count descending (creation order breaks ties, matching finalization).
func (h *ResultsHandler) GetVoteTally(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireStaff(w, r, h.cfg); !ok {
		return
	}

	week, err := resolveWeek(h.db, r.URL.Query().Get("weekId"))
	if err == ErrWeekNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "No active week found")
		return
	}
	if err != nil {
		slog.Error("failed to resolve week", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	options, err := loadOptions(h.db, week.ID)
	if err != nil {
		slog.Error("failed to query options", "error", err, "week_id", week.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	byDayMeal := make([]map[string][]models.SlotTally, models.DaysPerWeek)
	for i := range byDayMeal {
		byDayMeal[i] = map[string][]models.SlotTally{}
	}

	totalVotes := 0
	for _, opt := range options {
		if opt.Day < 0 || opt.Day >= models.DaysPerWeek {
			continue
		}
		// loadOptions already orders by vote count desc within a slot
		byDayMeal[opt.Day][opt.MealType] = append(byDayMeal[opt.Day][opt.MealType], models.SlotTally{
			FoodName:  opt.FoodName,
			VoteCount: opt.VoteCount,
		})
		totalVotes += opt.VoteCount
	}

	middleware.JSONResponse(w, http.StatusOK, models.TallyResponse{
		WeekID:     week.ID,
		TotalVotes: totalVotes,
		ByDayMeal:  byDayMeal,
	})
}
