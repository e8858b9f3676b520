// Copyright (c) 2025 Hosteldesk.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VotesTotal counts processed vote casts by outcome:
	// "new", "transfer" (revote to a different option), "repeat" (same option).
	VotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menu_votes_total",
			Help: "Total number of processed menu votes",
		},
		[]string{"outcome"},
	)

	WeeksCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "menu_weeks_created_total",
			Help: "Total number of menu weeks created",
		},
	)

	WeeksFinalizedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "menu_weeks_finalized_total",
			Help: "Total number of menu weeks finalized",
		},
	)

	// OptionsTotal counts option batch items by result:
	// "created", "existing", "skipped".
	OptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menu_options_total",
			Help: "Total number of option batch items processed",
		},
		[]string{"result"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
