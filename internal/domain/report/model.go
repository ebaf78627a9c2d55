package report

import (
	"context"
	"time"
)

// SurveySummary joins a survey with its owner and stats row.
type SurveySummary struct {
	SurveyID    int64     `json:"survey_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	OwnerName   string    `json:"owner_name"`
	CreatedAt   time.Time `json:"created_at"`
	IsActive    bool      `json:"is_active"`
	TotalVotes  int64     `json:"total_votes"`
	LastUpdate  time.Time `json:"last_update"`
	DaysActive  int       `json:"days_active"`
}

// BreakdownRow is one option's raw vote count as read from the store,
// ordered by question text, then by option insertion order.
type BreakdownRow struct {
	QuestionID   int64
	QuestionText string
	OptionID     int64
	OptionText   string
	Votes        int64
}

// OptionTally is one row of the per-option breakdown: count, share of the
// question's total and dense rank by count descending.
type OptionTally struct {
	QuestionID   int64   `json:"question_id"`
	QuestionText string  `json:"question_text"`
	OptionID     int64   `json:"option_id"`
	OptionText   string  `json:"option_text"`
	Votes        int64   `json:"votes"`
	Percentage   float64 `json:"percentage"`
	Rank         int     `json:"rank"`
}

// Dashboard aggregates the whole system. Zero-valued when no surveys exist.
type Dashboard struct {
	TotalSurveys   int64  `json:"total_surveys"`
	ActiveSurveys  int64  `json:"active_surveys"`
	VotingUsers    int64  `json:"voting_users"`
	TotalVotes     int64  `json:"total_votes"`
	TopSurveyID    int64  `json:"top_survey_id,omitempty"`
	TopSurveyTitle string `json:"top_survey_title,omitempty"`
	TopSurveyVotes int64  `json:"top_survey_votes"`
}

type Repository interface {
	// Summary returns sql.ErrNoRows when the survey does not exist.
	Summary(ctx context.Context, surveyID int64) (*SurveySummary, error)
	// BreakdownRows returns every option of every question of the survey,
	// including options with zero votes, ordered by question text then by
	// option id.
	BreakdownRows(ctx context.Context, surveyID int64) ([]BreakdownRow, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
}
