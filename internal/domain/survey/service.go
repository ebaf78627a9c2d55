package survey

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrTitleRequired      = errors.New("title required")
	ErrFutureDate         = errors.New("creation date is in the future")
	ErrInvalidQuestion    = errors.New("invalid question")
	ErrSurveyHasVotes     = errors.New("survey has recorded votes")
	ErrSurveyNotFound     = errors.New("survey not found")
	ErrInvalidOptionCount = errors.New("question must have at least 2 options")
)

// StatsHook is implemented by the statistics aggregator. The write path calls
// it explicitly so the counter side effects stay visible and testable.
type StatsHook interface {
	OnSurveyCreated(ctx context.Context, sv *Survey) error
	OnSurveyActivated(ctx context.Context, sv *Survey) error
	TotalVotes(ctx context.Context, surveyID int64) (int64, error)
}

type Service struct {
	repo  Repository
	stats StatsHook
	now   func() time.Time
}

func NewService(repo Repository, stats StatsHook) *Service {
	return &Service{repo: repo, stats: stats, now: time.Now}
}

// Create validates the candidate and persists it, then seeds the statistics
// row. A zero creation date defaults to the current time; a future one is
// rejected before anything is written.
func (s *Service) Create(ctx context.Context, sv *Survey) (int64, error) {
	if sv.Title == "" {
		return 0, ErrTitleRequired
	}
	now := s.now()
	if sv.CreatedAt.IsZero() {
		sv.CreatedAt = now
	}
	if sv.CreatedAt.After(now) {
		return 0, fmt.Errorf("%w: %s", ErrFutureDate, sv.CreatedAt.Format(time.RFC3339))
	}

	if err := s.repo.Create(ctx, sv); err != nil {
		return 0, err
	}

	if err := s.stats.OnSurveyCreated(ctx, sv); err != nil {
		return 0, err
	}
	if sv.IsActive {
		if err := s.stats.OnSurveyActivated(ctx, sv); err != nil {
			return 0, err
		}
	}

	return sv.ID, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Survey, []Question, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, active *bool) ([]Survey, error) {
	return s.repo.List(ctx, active)
}

func (s *Service) UpdateInfo(ctx context.Context, id int64, title string, description *string) error {
	if title == "" {
		return ErrTitleRequired
	}
	return s.repo.UpdateInfo(ctx, id, title, description)
}

// SetActive toggles the active flag. A false->true transition re-ensures the
// statistics row and emits the activation event; the counter is never zeroed.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	sv, _, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}

	if active && !sv.IsActive {
		sv.IsActive = true
		return s.stats.OnSurveyActivated(ctx, sv)
	}
	return nil
}

// Delete restricts deletion of surveys that already recorded votes.
func (s *Service) Delete(ctx context.Context, id int64) error {
	total, err := s.stats.TotalVotes(ctx, id)
	if err != nil {
		return err
	}
	if total > 0 {
		return ErrSurveyHasVotes
	}
	return s.repo.Delete(ctx, id)
}

// AddQuestion appends a question with its options to an existing survey.
func (s *Service) AddQuestion(ctx context.Context, q *Question) error {
	if q.Text == "" {
		return fmt.Errorf("%w: text required", ErrInvalidQuestion)
	}
	if q.Type == "" {
		q.Type = TypeSingleChoice
	}
	switch q.Type {
	case TypeSingleChoice, TypeMultiChoice, TypeScale, TypeYesNo:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, q.Type)
	}
	if len(q.Options) < 2 {
		return ErrInvalidOptionCount
	}

	if _, _, err := s.repo.GetByID(ctx, q.SurveyID); err != nil {
		return err
	}
	return s.repo.AddQuestion(ctx, q)
}
