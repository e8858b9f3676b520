// Copyright (c) 2025 Hosteldesk.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hosteldesk/messvote/auth"
	"github.com/hosteldesk/messvote/cliparse"
	"github.com/hosteldesk/messvote/metrics"
	"github.com/hosteldesk/messvote/middleware"
	"github.com/hosteldesk/messvote/models"
)

var (
	ErrWeekNotFound = errors.New("week not found")
)

type WeekHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewWeekHandler(db *sql.DB, cfg cliparse.Config) *WeekHandler {
	return &WeekHandler{db: db, cfg: cfg}
}

// CreateWeek handles POST /menu/weeks
// Idempotent on week_start_date: re-creating an existing week returns it unchanged.
func (h *WeekHandler) CreateWeek(w http.ResponseWriter, r *http.Request) {
	ident, ok := requireStaff(w, r, h.cfg)
	if !ok {
		return
	}

	var req models.CreateWeekRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.WeekStartDate == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "week_start_date is required")
		return
	}

	startDate, err := parseWeekStartDate(req.WeekStartDate)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid week_start_date")
		return
	}

	week, created, err := createWeek(h.db, startDate, ident.UserID)
	if err != nil {
		slog.Error("failed to create week", "error", err, "week_start_date", req.WeekStartDate)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create week")
		return
	}

	if created {
		metrics.WeeksCreatedTotal.Inc()
		slog.Info("week created", "week_id", week.ID, "week_start_date", req.WeekStartDate, "created_by", ident.UserID)
		middleware.JSONResponse(w, http.StatusCreated, week)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, week)
}

// ListWeeks handles GET /menu/weeks
// Administrative browsing view, newest first.
func (h *WeekHandler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireStaff(w, r, h.cfg); !ok {
		return
	}

	rows, err := h.db.Query(`
		SELECT id, week_start_date, status, created_by, created_at
		FROM menu_week
		ORDER BY week_start_date DESC
	`)
	if err != nil {
		slog.Error("failed to query weeks", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	weeks := []models.Week{}
	for rows.Next() {
		var week models.Week
		if err := rows.Scan(&week.ID, &week.WeekStartDate, &week.Status, &week.CreatedBy, &week.CreatedAt); err != nil {
			slog.Error("failed to scan week", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		weeks = append(weeks, week)
	}

	middleware.JSONResponse(w, http.StatusOK, weeks)
}

// parseWeekStartDate normalizes the client-supplied start date to a
// date-only value in UTC. Accepts "2006-01-02" or RFC 3339.
func parseWeekStartDate(s string) (time.Time, error) {
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// createWeek inserts a new VOTING week, or returns the existing one for
// the same start date. The unique index on week_start_date closes the
// race between the lookup and the insert.
func createWeek(db *sql.DB, startDate time.Time, creatorID string) (models.Week, bool, error) {
	if week, err := weekByStartDate(db, startDate); err == nil {
		return week, false, nil
	} else if err != sql.ErrNoRows {
		return models.Week{}, false, err
	}

	week := models.Week{
		ID:            uuid.NewString(),
		WeekStartDate: startDate,
		Status:        models.StatusVoting,
		CreatedBy:     &creatorID,
		CreatedAt:     time.Now(),
	}

	_, err := db.Exec(`
		INSERT INTO menu_week (id, week_start_date, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (week_start_date) DO NOTHING
	`, week.ID, week.WeekStartDate, week.Status, creatorID, week.CreatedAt)
	if err != nil {
		return models.Week{}, false, err
	}

	// Re-read so a concurrent creator's row wins consistently
	stored, err := weekByStartDate(db, startDate)
	if err != nil {
		return models.Week{}, false, err
	}

	return stored, stored.ID == week.ID, nil
}

func weekByStartDate(db *sql.DB, startDate time.Time) (models.Week, error) {
	var week models.Week
	err := db.QueryRow(`
		SELECT id, week_start_date, status, created_by, created_at
		FROM menu_week
		WHERE week_start_date = $1
	`, startDate).Scan(&week.ID, &week.WeekStartDate, &week.Status, &week.CreatedBy, &week.CreatedAt)
	return week, err
}

// resolveWeek fetches the week by ID, or, when weekID is empty, the
// "current" week. Current means the week with the latest start date,
// i.e. whichever was planned last - NOT the week containing today.
// That matches how staff use the system: the newest cycle is the one
// being voted on or served.
func resolveWeek(db querier, weekID string) (models.Week, error) {
	var week models.Week
	var err error

	if weekID != "" {
		err = db.QueryRow(`
			SELECT id, week_start_date, status, created_by, created_at
			FROM menu_week
			WHERE id = $1
		`, weekID).Scan(&week.ID, &week.WeekStartDate, &week.Status, &week.CreatedBy, &week.CreatedAt)
	} else {
		err = db.QueryRow(`
			SELECT id, week_start_date, status, created_by, created_at
			FROM menu_week
			ORDER BY week_start_date DESC
			LIMIT 1
		`).Scan(&week.ID, &week.WeekStartDate, &week.Status, &week.CreatedBy, &week.CreatedAt)
	}

	if err == sql.ErrNoRows {
		return models.Week{}, ErrWeekNotFound
	}
	if err != nil {
		return models.Week{}, err
	}

	return week, nil
}

// requireIdentity resolves the caller or writes a 401.
func requireIdentity(w http.ResponseWriter, r *http.Request, cfg cliparse.Config) (auth.Identity, bool) {
	ident, err := auth.FromRequest(r, cfg.IdentitySalt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid identity")
		return auth.Identity{}, false
	}
	return ident, true
}

// requireStaff resolves the caller and writes a 401/403 unless the role
// is caretaker or warden.
func requireStaff(w http.ResponseWriter, r *http.Request, cfg cliparse.Config) (auth.Identity, bool) {
	ident, ok := requireIdentity(w, r, cfg)
	if !ok {
		return auth.Identity{}, false
	}
	if !ident.IsStaff() {
		middleware.ErrorResponse(w, http.StatusForbidden, "Staff role required")
		return auth.Identity{}, false
	}
	return ident, true
}

// requireStudent resolves the caller and writes a 401/403 unless the
// role is student.
func requireStudent(w http.ResponseWriter, r *http.Request, cfg cliparse.Config) (auth.Identity, bool) {
	ident, ok := requireIdentity(w, r, cfg)
	if !ok {
		return auth.Identity{}, false
	}
	if !ident.IsStudent() {
		middleware.ErrorResponse(w, http.StatusForbidden, "Student role required")
		return auth.Identity{}, false
	}
	return ident, true
}
