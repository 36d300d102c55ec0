// Package api provides the read-only HTTP surface over the attendance
// engine: profiles, leaderboards, digests and operational job triggers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cat-time-bot/cattime/internal/app"
	"github.com/cat-time-bot/cattime/internal/domain"
	"github.com/cat-time-bot/cattime/internal/health"
)

// Server is the cattime HTTP API server.
type Server struct {
	engine         *app.Engine
	grants         domain.AchievementRepository
	metricsEnabled bool
	checker        *health.Checker
	log            *zap.Logger
}

// NewServer creates a new API server.
func NewServer(engine *app.Engine, grants domain.AchievementRepository, log *zap.Logger) *Server {
	return &Server{engine: engine, grants: grants, log: log}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealth attaches the periodic health checker to /health.
func (s *Server) SetHealth(c *health.Checker) { s.checker = c }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/profile/{userID}", s.handleProfile)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/digest/{date}", s.handleDigest)
		r.Get("/achievements/{userID}", s.handleAchievements)

		r.Post("/jobs/rollover", s.handleRollover)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.checker == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	status := http.StatusOK
	state := "ok"
	if !s.checker.IsHealthy() {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	writeJSON(w, status, map[string]any{
		"status": state,
		"checks": s.checker.Statuses(),
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	profile, err := s.engine.Profile(userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoActiveSeason), errors.Is(err, domain.ErrRankNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			s.log.Error("profile lookup failed", zap.Int64("user_id", userID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	ranks, err := s.engine.Leaderboard(limit)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveSeason) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.log.Error("leaderboard failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ranks": ranks})
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	day, err := time.ParseInLocation("2006-01-02", chi.URLParam(r, "date"), time.Local)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}

	digest, err := s.engine.RunDailyDigest(day)
	if err != nil {
		s.log.Error("digest failed", zap.Time("day", day), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, digest)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	grants, err := s.grants.AchievementsForUser(userID)
	if err != nil {
		s.log.Error("achievements lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"achievements": grants})
}

func (s *Server) handleRollover(w http.ResponseWriter, r *http.Request) {
	report, err := s.engine.RunSeasonRollover()
	if err != nil {
		s.log.Error("rollover failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}
