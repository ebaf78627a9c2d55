package api

import (
	"encoding/json"
	"net/http"

	"github.com/atlasjose/Bases-de-datos2/internal/domain/survey"
	"github.com/atlasjose/Bases-de-datos2/internal/platform/apperr"
)

type createSurveyRequest struct {
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	IsActive    bool              `json:"is_active"`
	CreatedAt   *string           `json:"created_at"`
	Questions   []questionRequest `json:"questions"`
}

type questionRequest struct {
	Text    string   `json:"text"`
	Type    string   `json:"type"`
	Options []string `json:"options"`
}

type updateSurveyRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// @Summary     Create a survey with its questions
// @Tags        surveys
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       request  body      createSurveyRequest  true  "Survey payload"
// @Success     201      {object}  map[string]int64
// @Failure     400      {object}  map[string]string  "validation failure"
// @Router      /api/v1/surveys [post]
func (h *Handler) handleCreateSurvey(w http.ResponseWriter, r *http.Request) {
	var req createSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	sv := &survey.Survey{
		OwnerID:     userIDFromCtx(r),
		Title:       req.Title,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	if t := parseTimePtr(req.CreatedAt); t != nil {
		sv.CreatedAt = *t
	}

	id, err := h.surveySvc.Create(r.Context(), sv)
	if err != nil {
		errorResponse(w, err)
		return
	}

	for _, qr := range req.Questions {
		q := &survey.Question{
			SurveyID: id,
			Text:     qr.Text,
			Type:     qr.Type,
		}
		for _, text := range qr.Options {
			q.Options = append(q.Options, survey.Option{Text: text})
		}
		if err := h.surveySvc.AddQuestion(r.Context(), q); err != nil {
			errorResponse(w, err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) handleListSurveys(w http.ResponseWriter, r *http.Request) {
	var active *bool
	switch r.URL.Query().Get("active") {
	case "true":
		v := true
		active = &v
	case "false":
		v := false
		active = &v
	}

	surveys, err := h.surveySvc.List(r.Context(), active)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, surveys)
}

func (h *Handler) handleGetSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid survey id", err))
		return
	}

	sv, questions, err := h.surveySvc.Get(r.Context(), id)
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"survey":    sv,
		"questions": questions,
	})
}

func (h *Handler) handleUpdateSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid survey id", err))
		return
	}

	var req updateSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	if err := h.surveySvc.UpdateInfo(r.Context(), id, req.Title, req.Description); err != nil {
		errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetSurveyActive(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid survey id", err))
		return
	}

	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	if err := h.surveySvc.SetActive(r.Context(), id, req.Active); err != nil {
		errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeleteSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid survey id", err))
		return
	}

	if err := h.surveySvc.Delete(r.Context(), id); err != nil {
		errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid survey id", err))
		return
	}

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	q := &survey.Question{
		SurveyID: id,
		Text:     req.Text,
		Type:     req.Type,
	}
	for _, text := range req.Options {
		q.Options = append(q.Options, survey.Option{Text: text})
	}

	if err := h.surveySvc.AddQuestion(r.Context(), q); err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}
