package survey

import (
	"context"
	"time"
)

// Question type tags. Descriptive metadata only: the option set of a question
// is not checked against its tag.
const (
	TypeSingleChoice = "single_choice"
	TypeMultiChoice  = "multi_choice"
	TypeScale        = "scale"
	TypeYesNo        = "yes_no"
)

type Survey struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Question struct {
	ID       int64    `json:"id"`
	SurveyID int64    `json:"survey_id"`
	Text     string   `json:"text"`
	Type     string   `json:"type"`
	Options  []Option `json:"options,omitempty"`
}

type Option struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Text       string `json:"text"`
}

type Repository interface {
	Create(ctx context.Context, sv *Survey) error
	GetByID(ctx context.Context, id int64) (*Survey, []Question, error)
	List(ctx context.Context, active *bool) ([]Survey, error)
	UpdateInfo(ctx context.Context, id int64, title string, description *string) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
	AddQuestion(ctx context.Context, q *Question) error
}
