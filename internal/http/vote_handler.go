package api

import (
	"encoding/json"
	"net/http"

	"github.com/atlasjose/Bases-de-datos2/internal/platform/apperr"
	"github.com/atlasjose/Bases-de-datos2/internal/worker"
)

type castVoteRequest struct {
	OptionID int64 `json:"option_id"`
}

// @Summary     Cast a vote on an option
// @Tags        votes
// @Security    BearerAuth
// @Accept      json
// @Param       request  body      castVoteRequest  true  "Vote payload"
// @Success     201      {object}  map[string]any
// @Failure     400      {object}  map[string]string  "invalid body"
// @Failure     404      {object}  map[string]string  "option not found"
// @Failure     409      {object}  map[string]string  "already voted"
// @Failure     503      {object}  map[string]string  "transient write conflict"
// @Router      /api/v1/votes [post]
func (h *Handler) handleCastVote(w http.ResponseWriter, r *http.Request) {
	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}
	if req.OptionID == 0 {
		errorResponse(w, apperr.BadRequest("invalid_input", "option_id is required", nil))
		return
	}

	userID := userIDFromCtx(r)

	v, surveyID, err := h.voteSvc.Cast(r.Context(), userID, req.OptionID)
	if err != nil {
		errorResponse(w, err)
		return
	}

	select {
	case h.voteCh <- worker.VoteEvent{SurveyID: surveyID, OptionID: req.OptionID, UserID: userID}:
	default:
	}

	writeJSON(w, http.StatusCreated, map[string]any{"vote": v})
}

// @Summary     Has the user already voted in this survey
// @Tags        votes
// @Security    BearerAuth
// @Produce     json
// @Param       id   path      int64  true  "Survey ID"
// @Success     200  {object}  map[string]bool
// @Router      /api/v1/surveys/{id}/voted [get]
func (h *Handler) handleHasVoted(w http.ResponseWriter, r *http.Request) {
	surveyID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid survey id", err))
		return
	}

	voted, err := h.voteSvc.HasVoted(r.Context(), userIDFromCtx(r), surveyID)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"has_voted": voted})
}
