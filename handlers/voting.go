// Copyright (c) 2025 Hosteldesk.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hosteldesk/messvote/cliparse"
	"github.com/hosteldesk/messvote/metrics"
	"github.com/hosteldesk/messvote/middleware"
	"github.com/hosteldesk/messvote/models"
)

var (
	ErrOptionNotFound = errors.New("menu option not found")
	ErrVotingClosed   = errors.New("voting is closed for this week")
	ErrVoteConflict   = errors.New("vote conflicted with a concurrent request")
)

// voteOutcome describes what a cast actually did to the counters.
type voteOutcome int

const (
	voteNew      voteOutcome = iota // first vote for the slot
	voteRepeat                      // same option resubmitted, counts untouched
	voteTransfer                    // moved from another option
)

func (o voteOutcome) String() string {
	switch o {
	case voteNew:
		return "new"
	case voteRepeat:
		return "repeat"
	case voteTransfer:
		return "transfer"
	}
	return "unknown"
}

type VotingHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg}
}

// CastVote handles POST /menu/vote
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	ident, ok := requireStudent(w, r, h.cfg)
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.MealOptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "meal_option_id is required")
		return
	}

	outcome, err := castVote(h.db, ident.UserID, req.MealOptionID)
	switch {
	case err == ErrOptionNotFound:
		middleware.ErrorResponse(w, http.StatusNotFound, "Menu option not found")
		return
	case err == ErrWeekNotFound:
		middleware.ErrorResponse(w, http.StatusNotFound, "Week not found")
		return
	case err == ErrVotingClosed:
		middleware.ErrorResponse(w, http.StatusConflict, "Voting is closed for this week")
		return
	case err == ErrVoteConflict:
		middleware.ErrorResponse(w, http.StatusConflict, "Vote conflicted with a concurrent request, please retry")
		return
	case err != nil:
		slog.Error("failed to cast vote", "error", err, "student_id", ident.UserID, "option_id", req.MealOptionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
		return
	}

	metrics.VotesTotal.WithLabelValues(outcome.String()).Inc()
	slog.Info("vote recorded", "student_id", ident.UserID, "option_id", req.MealOptionID, "outcome", outcome.String())

	message := "vote recorded"
	if outcome == voteTransfer {
		message = "vote updated"
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{Message: message})
}

// castVote records the student's current choice for the option's slot.
// Two transfers crossing between the same pair of options can deadlock
// on the counter rows; Postgres aborts one of them, and that loser is
// surfaced as the retryable ErrVoteConflict.
func castVote(db *sql.DB, studentID, optionID string) (voteOutcome, error) {
	outcome, err := castVoteTx(db, studentID, optionID)
	if isDeadlock(err) {
		return outcome, ErrVoteConflict
	}
	return outcome, err
}

// castVoteTx is the whole read-modify-write in one transaction:
//
//   - the week row is locked FOR SHARE so finalization cannot flip the
//     status mid-vote (votes on different weeks don't block each other)
//   - the student's vote row is locked FOR UPDATE so a double-submission
//     serializes instead of creating two rows
//   - counter changes are single-statement relative updates, so two
//     students hitting the same option never lose an increment
func castVoteTx(db *sql.DB, studentID, optionID string) (voteOutcome, error) {
	tx, err := db.Begin()
	if err != nil {
		return voteNew, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The option carries the slot key (week, day, meal)
	var opt models.MealOption
	err = tx.QueryRow(`
		SELECT id, week_id, day, meal_type
		FROM meal_option
		WHERE id = $1
	`, optionID).Scan(&opt.ID, &opt.WeekID, &opt.Day, &opt.MealType)
	if err == sql.ErrNoRows {
		return voteNew, ErrOptionNotFound
	}
	if err != nil {
		return voteNew, fmt.Errorf("failed to load option: %w", err)
	}

	var status string
	err = tx.QueryRow(`
		SELECT status FROM menu_week WHERE id = $1 FOR SHARE
	`, opt.WeekID).Scan(&status)
	if err == sql.ErrNoRows {
		return voteNew, ErrWeekNotFound
	}
	if err != nil {
		return voteNew, fmt.Errorf("failed to load week: %w", err)
	}
	if status != models.StatusVoting {
		return voteNew, ErrVotingClosed
	}

	var voteID, prevOptionID string
	err = tx.QueryRow(`
		SELECT id, meal_option_id
		FROM menu_vote
		WHERE student_id = $1 AND week_id = $2 AND day = $3 AND meal_type = $4
		FOR UPDATE
	`, studentID, opt.WeekID, opt.Day, opt.MealType).Scan(&voteID, &prevOptionID)

	var outcome voteOutcome
	switch {
	case err == sql.ErrNoRows:
		_, err = tx.Exec(`
			INSERT INTO menu_vote (id, student_id, week_id, day, meal_type, meal_option_id)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.NewString(), studentID, opt.WeekID, opt.Day, opt.MealType, optionID)
		if isUniqueViolation(err) {
			// A concurrent cast by the same student won the insert race
			return voteNew, ErrVoteConflict
		}
		if err != nil {
			return voteNew, fmt.Errorf("failed to insert vote: %w", err)
		}

		if _, err := tx.Exec(`
			UPDATE meal_option SET vote_count = vote_count + 1 WHERE id = $1
		`, optionID); err != nil {
			return voteNew, fmt.Errorf("failed to increment vote count: %w", err)
		}
		outcome = voteNew

	case err != nil:
		return voteNew, fmt.Errorf("failed to load existing vote: %w", err)

	case prevOptionID == optionID:
		// Same choice resubmitted; nothing to move
		outcome = voteRepeat

	default:
		// Floored at 0 to absorb any historical inconsistency
		if _, err := tx.Exec(`
			UPDATE meal_option SET vote_count = GREATEST(vote_count - 1, 0) WHERE id = $1
		`, prevOptionID); err != nil {
			return voteNew, fmt.Errorf("failed to decrement previous vote count: %w", err)
		}

		if _, err := tx.Exec(`
			UPDATE menu_vote SET meal_option_id = $1 WHERE id = $2
		`, optionID, voteID); err != nil {
			return voteNew, fmt.Errorf("failed to reassign vote: %w", err)
		}

		if _, err := tx.Exec(`
			UPDATE meal_option SET vote_count = vote_count + 1 WHERE id = $1
		`, optionID); err != nil {
			return voteNew, fmt.Errorf("failed to increment vote count: %w", err)
		}
		outcome = voteTransfer
	}

	if err := tx.Commit(); err != nil {
		return voteNew, fmt.Errorf("failed to commit vote: %w", err)
	}

	return outcome, nil
}

// GetMyVotes handles GET /menu/my-votes
// Returns the caller's current choices for pre-filling the ballot UI.
func (h *VotingHandler) GetMyVotes(w http.ResponseWriter, r *http.Request) {
	ident, ok := requireStudent(w, r, h.cfg)
	if !ok {
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

	rows, err := h.db.Query(`
		SELECT day, meal_type, meal_option_id
		FROM menu_vote
		WHERE student_id = $1 AND week_id = $2
	`, ident.UserID, week.ID)
	if err != nil {
		slog.Error("failed to query votes", "error", err, "week_id", week.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	myVotes := map[string]string{}
	for rows.Next() {
		var day int
		var mealType, optionID string
		if err := rows.Scan(&day, &mealType, &optionID); err != nil {
			slog.Error("failed to scan vote", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		myVotes[slotKey(day, mealType)] = optionID
	}

	middleware.JSONResponse(w, http.StatusOK, models.MyVotesResponse{
		WeekID:  week.ID,
		MyVotes: myVotes,
	})
}

// slotKey builds the "day-mealType" key used by the ballot UI.
func slotKey(day int, mealType string) string {
	return fmt.Sprintf("%d-%s", day, mealType)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// isDeadlock detects a Postgres deadlock abort (40P01) anywhere in the
// error chain.
func isDeadlock(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "40P01"
}
