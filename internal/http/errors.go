package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/atlasjose/Bases-de-datos2/internal/domain/stats"
	"github.com/atlasjose/Bases-de-datos2/internal/domain/survey"
	"github.com/atlasjose/Bases-de-datos2/internal/domain/user"
	"github.com/atlasjose/Bases-de-datos2/internal/domain/vote"
	"github.com/atlasjose/Bases-de-datos2/internal/platform/apperr"
)

func errorResponse(w http.ResponseWriter, err error) {
	appErr := mapError(err)
	writeJSON(w, appErr.StatusCode(), map[string]string{
		"error":   appErr.Code,
		"message": appErr.Message,
	})
}

func mapError(err error) *apperr.AppError {
	if err == nil {
		return apperr.Internal("internal_error", "internal server error", nil)
	}

	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound("not_found", "resource not found", err)
	case errors.Is(err, user.ErrInvalidEmail):
		return apperr.BadRequest("invalid_email", err.Error(), err)
	case errors.Is(err, user.ErrEmptyUsername):
		return apperr.BadRequest("empty_username", "username must not be empty", err)
	case errors.Is(err, user.ErrWeakCredential):
		return apperr.BadRequest("weak_credential", "password must be at least 8 characters", err)
	case errors.Is(err, user.ErrInvalidCredentials):
		return apperr.Unauthorized("invalid_credentials", "invalid credentials", err)
	case errors.Is(err, user.ErrInactiveUser):
		return apperr.Unauthorized("inactive_user", "user is inactive", err)
	case errors.Is(err, user.ErrEmailTaken):
		return apperr.BadRequest("email_taken", "email already taken", err)
	case errors.Is(err, survey.ErrTitleRequired):
		return apperr.BadRequest("title_required", "title is required", err)
	case errors.Is(err, survey.ErrFutureDate):
		return apperr.BadRequest("future_date", "creation date must not be in the future", err)
	case errors.Is(err, survey.ErrInvalidQuestion):
		return apperr.BadRequest("invalid_question", err.Error(), err)
	case errors.Is(err, survey.ErrInvalidOptionCount):
		return apperr.BadRequest("invalid_options", "question must have at least 2 options", err)
	case errors.Is(err, survey.ErrSurveyHasVotes):
		return apperr.Conflict("survey_has_votes", "survey with recorded votes cannot be deleted", err)
	case errors.Is(err, vote.ErrAlreadyVoted):
		return apperr.Conflict("already_voted", "user already voted in this survey", err)
	case errors.Is(err, vote.ErrOptionNotFound):
		return apperr.NotFound("option_not_found", "option not found", err)
	case errors.Is(err, stats.ErrTransientWrite):
		return apperr.Unavailable("transient_write", "statistics update conflicted, retry the vote", err)
	case errors.Is(err, stats.ErrDanglingReference):
		return apperr.Internal("consistency_error", "vote references a missing option chain", err)
	default:
		return apperr.Internal("internal_error", http.StatusText(http.StatusInternalServerError), err)
	}
}
