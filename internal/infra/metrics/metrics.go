// Package metrics provides Prometheus collectors for the attendance
// engine: session churn, experience flow, achievements, season jobs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Sessions ───────────────────────────────────────────────────────────────

// SessionsOpened counts successful check-ins.
var SessionsOpened = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cattime",
	Name:      "sessions_opened_total",
	Help:      "Total attendance sessions opened.",
})

// SessionsClosed counts successful check-outs.
var SessionsClosed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cattime",
	Name:      "sessions_closed_total",
	Help:      "Total attendance sessions closed.",
})

// SessionEdits counts manual join/leave timestamp edits.
var SessionEdits = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cattime",
	Name:      "session_edits_total",
	Help:      "Total manual session timestamp edits.",
})

// ─── Progression ────────────────────────────────────────────────────────────

// ExperienceAwarded sums experience granted at session close.
var ExperienceAwarded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cattime",
	Name:      "experience_awarded_total",
	Help:      "Total experience points awarded.",
})

// AchievementsGranted counts achievement grant records.
var AchievementsGranted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cattime",
	Name:      "achievements_granted_total",
	Help:      "Total achievement grants persisted.",
})

// LevelUps counts season-rank level transitions.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cattime",
	Name:      "level_ups_total",
	Help:      "Total level-up transitions.",
})

// ─── Jobs ───────────────────────────────────────────────────────────────────

// RolloverRuns counts completed season rollover passes.
var RolloverRuns = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cattime",
	Name:      "season_rollover_runs_total",
	Help:      "Total season rollover passes completed.",
})

// DigestRuns counts completed daily digest builds.
var DigestRuns = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "cattime",
	Name:      "daily_digest_runs_total",
	Help:      "Total daily digest builds completed.",
})
