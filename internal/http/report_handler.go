package api

import (
	"net/http"

	"github.com/atlasjose/Bases-de-datos2/internal/domain/report"
	"github.com/atlasjose/Bases-de-datos2/internal/platform/apperr"
)

// @Summary     Survey summary
// @Tags        reports
// @Security    BearerAuth
// @Produce     json
// @Param       id   path      int64  true  "Survey ID"
// @Success     200  {object}  report.SurveySummary
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/surveys/{id}/summary [get]
func (h *Handler) handleSurveySummary(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid survey id", err))
		return
	}

	sum, err := h.reportSvc.SurveySummary(r.Context(), id)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// @Summary     Per-option vote breakdown
// @Tags        reports
// @Security    BearerAuth
// @Produce     json
// @Param       id   path      int64  true  "Survey ID"
// @Success     200  {array}   report.OptionTally
// @Router      /api/v1/surveys/{id}/breakdown [get]
func (h *Handler) handleVoteBreakdown(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid survey id", err))
		return
	}

	seq, err := h.reportSvc.VoteBreakdown(r.Context(), id)
	if err != nil {
		errorResponse(w, err)
		return
	}

	tallies := make([]report.OptionTally, 0)
	for t := range seq {
		tallies = append(tallies, t)
	}
	writeJSON(w, http.StatusOK, tallies)
}

// @Summary     System-wide dashboard
// @Tags        reports
// @Security    BearerAuth
// @Produce     json
// @Success     200  {object}  report.Dashboard
// @Router      /api/v1/dashboard [get]
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.reportSvc.Dashboard(r.Context())
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
