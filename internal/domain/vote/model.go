package vote

import (
	"context"
	"time"
)

type Vote struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	OptionID int64     `json:"option_id"`
	CastAt   time.Time `json:"cast_at"`
}

type Repository interface {
	// HasVoted reports whether the user has at least one vote whose option
	// chain resolves to the given survey.
	HasVoted(ctx context.Context, userID, surveyID int64) (bool, error)
	// SurveyForOption walks option -> question -> survey.
	SurveyForOption(ctx context.Context, optionID int64) (int64, error)
}

// Recorder persists a vote together with its statistics side effects. The
// statistics aggregator implements it.
type Recorder interface {
	OnVoteCast(ctx context.Context, v *Vote) error
}
