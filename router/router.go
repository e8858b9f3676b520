// Copyright (c) 2025 Hosteldesk.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hosteldesk/messvote/cliparse"
	"github.com/hosteldesk/messvote/handlers"
	"github.com/hosteldesk/messvote/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	weekHandler := handlers.NewWeekHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics
	mux.Handle("GET /metrics", promhttp.Handler())

	// Week management (staff operations)
	mux.HandleFunc("POST /menu/weeks", middleware.WithLogging(weekHandler.CreateWeek))
	mux.HandleFunc("GET /menu/weeks", middleware.WithLogging(weekHandler.ListWeeks))
	mux.HandleFunc("POST /menu/weeks/{id}/options", middleware.WithLogging(weekHandler.AddOptions))
	mux.HandleFunc("POST /menu/weeks/{id}/finalize", middleware.WithLogging(weekHandler.FinalizeWeek))
	mux.HandleFunc("GET /menu/votes", middleware.WithLogging(resultsHandler.GetVoteTally))

	// Voting operations (students)
	mux.HandleFunc("POST /menu/vote", middleware.WithLogging(votingHandler.CastVote))
	mux.HandleFunc("GET /menu/my-votes", middleware.WithLogging(votingHandler.GetMyVotes))

	// Menu views (any authenticated role)
	mux.HandleFunc("GET /menu/week", middleware.WithLogging(resultsHandler.GetWeek))
	mux.HandleFunc("GET /menu/final", middleware.WithLogging(resultsHandler.GetFinal))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("messvote API v1"))
	})

	return mux
}
