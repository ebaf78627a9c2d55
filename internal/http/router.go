package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/atlasjose/Bases-de-datos2/internal/domain/report"
	"github.com/atlasjose/Bases-de-datos2/internal/domain/survey"
	"github.com/atlasjose/Bases-de-datos2/internal/domain/user"
	"github.com/atlasjose/Bases-de-datos2/internal/domain/vote"
	jwtpkg "github.com/atlasjose/Bases-de-datos2/internal/platform/jwt"
	"github.com/atlasjose/Bases-de-datos2/internal/worker"
)

type Handler struct {
	userSvc   *user.Service
	surveySvc *survey.Service
	voteSvc   *vote.Service
	reportSvc *report.Service
	jwtMgr    *jwtpkg.Manager
	voteCh    chan<- worker.VoteEvent
	db        *sql.DB
}

func NewRouter(
	userSvc *user.Service,
	surveySvc *survey.Service,
	voteSvc *vote.Service,
	reportSvc *report.Service,
	jwtMgr *jwtpkg.Manager,
	voteCh chan<- worker.VoteEvent,
	db *sql.DB,
) http.Handler {
	h := &Handler{
		userSvc:   userSvc,
		surveySvc: surveySvc,
		voteSvc:   voteSvc,
		reportSvc: reportSvc,
		jwtMgr:    jwtMgr,
		voteCh:    voteCh,
		db:        db,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(RequestLogger)
	r.Use(CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", h.handleReady)
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", h.handleRegister)
		r.Post("/auth/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(jwtMgr))

			r.Get("/surveys", h.handleListSurveys)
			r.Get("/surveys/{id}", h.handleGetSurvey)
			r.Post("/surveys", h.handleCreateSurvey)
			r.Patch("/surveys/{id}", h.handleUpdateSurvey)
			r.Patch("/surveys/{id}/active", h.handleSetSurveyActive)
			r.Delete("/surveys/{id}", h.handleDeleteSurvey)
			r.Post("/surveys/{id}/questions", h.handleAddQuestion)

			r.With(RateLimitVotes(rate.Every(time.Minute/10), 3)).Post("/votes", h.handleCastVote)
			r.Get("/surveys/{id}/voted", h.handleHasVoted)

			r.Get("/surveys/{id}/summary", h.handleSurveySummary)
			r.Get("/surveys/{id}/breakdown", h.handleVoteBreakdown)
			r.Get("/dashboard", h.handleDashboard)

			r.Patch("/me", h.handleUpdateProfile)

			r.Group(func(r chi.Router) {
				r.Use(RequireRole("admin"))
				r.Get("/users", h.handleListUsers)
				r.Patch("/users/{id}/deactivate", h.handleDeactivateUser)
			})
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	return strconv.ParseInt(idStr, 10, 64)
}

func parseTimePtr(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil
	}
	return &t
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "db_unavailable",
			"message": "database not configured",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "db_unavailable",
			"message": "database not ready",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
