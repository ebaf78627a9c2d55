package vote

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/atlasjose/Bases-de-datos2/internal/config"
)

var (
	ErrAlreadyVoted   = errors.New("user already voted in this survey")
	ErrOptionNotFound = errors.New("option not found")
)

type Service struct {
	repo     Repository
	recorder Recorder
	policy   string
	now      func() time.Time
}

func NewService(repo Repository, recorder Recorder, policy string) *Service {
	return &Service{repo: repo, recorder: recorder, policy: policy, now: time.Now}
}

// Cast records a vote by userID on optionID and returns the vote together
// with the survey it resolved to. Under the single-vote policy the
// participation guard runs first and a repeated vote in the same survey is
// rejected. The vote row and the statistics increment are written together by
// the recorder.
func (s *Service) Cast(ctx context.Context, userID, optionID int64) (*Vote, int64, error) {
	surveyID, err := s.repo.SurveyForOption(ctx, optionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrOptionNotFound
		}
		return nil, 0, err
	}

	if s.policy == config.PolicySingleVote {
		voted, err := s.repo.HasVoted(ctx, userID, surveyID)
		if err != nil {
			return nil, 0, err
		}
		if voted {
			return nil, 0, ErrAlreadyVoted
		}
	}

	v := &Vote{
		UserID:   userID,
		OptionID: optionID,
		CastAt:   s.now(),
	}
	if err := s.recorder.OnVoteCast(ctx, v); err != nil {
		return nil, 0, err
	}
	return v, surveyID, nil
}

// HasVoted is a pure read with no side effects.
func (s *Service) HasVoted(ctx context.Context, userID, surveyID int64) (bool, error) {
	return s.repo.HasVoted(ctx, userID, surveyID)
}
