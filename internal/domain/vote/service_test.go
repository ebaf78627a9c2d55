package vote

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/atlasjose/Bases-de-datos2/internal/config"
)

type memoryVoteRepo struct {
	mu           sync.Mutex
	optionSurvey map[int64]int64
	votes        []Vote
}

func newMemoryVoteRepo() *memoryVoteRepo {
	return &memoryVoteRepo{optionSurvey: make(map[int64]int64)}
}

func (r *memoryVoteRepo) HasVoted(ctx context.Context, userID, surveyID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.votes {
		if v.UserID == userID && r.optionSurvey[v.OptionID] == surveyID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryVoteRepo) SurveyForOption(ctx context.Context, optionID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	surveyID, ok := r.optionSurvey[optionID]
	if !ok {
		return 0, sql.ErrNoRows
	}
	return surveyID, nil
}

func (r *memoryVoteRepo) record(v Vote) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.votes = append(r.votes, v)
}

type memoryRecorder struct {
	repo *memoryVoteRepo
	err  error
}

func (rec *memoryRecorder) OnVoteCast(ctx context.Context, v *Vote) error {
	if rec.err != nil {
		return rec.err
	}
	rec.repo.record(*v)
	return nil
}

func TestCastSingleVotePolicy(t *testing.T) {
	repo := newMemoryVoteRepo()
	repo.optionSurvey[10] = 1
	repo.optionSurvey[11] = 1
	svc := NewService(repo, &memoryRecorder{repo: repo}, config.PolicySingleVote)
	ctx := context.Background()

	voted, err := svc.HasVoted(ctx, 42, 1)
	if err != nil || voted {
		t.Fatalf("expected no prior vote, got voted=%v err=%v", voted, err)
	}

	v, surveyID, err := svc.Cast(ctx, 42, 10)
	if err != nil {
		t.Fatalf("expected first vote ok, got %v", err)
	}
	if surveyID != 1 || v.OptionID != 10 || v.UserID != 42 || v.CastAt.IsZero() {
		t.Fatalf("unexpected vote %+v survey=%d", v, surveyID)
	}

	voted, err = svc.HasVoted(ctx, 42, 1)
	if err != nil || !voted {
		t.Fatalf("expected vote to be visible, got voted=%v err=%v", voted, err)
	}
	// pure read, repeated calls agree
	voted, _ = svc.HasVoted(ctx, 42, 1)
	if !voted {
		t.Fatalf("has voted must be idempotent")
	}

	// second vote in the same survey, even on another option
	if _, _, err := svc.Cast(ctx, 42, 11); !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("expected duplicate vote error, got %v", err)
	}

	// other users are unaffected
	if _, _, err := svc.Cast(ctx, 43, 11); err != nil {
		t.Fatalf("other user should vote fine: %v", err)
	}
}

func TestCastMultiVotePolicy(t *testing.T) {
	repo := newMemoryVoteRepo()
	repo.optionSurvey[10] = 1
	svc := NewService(repo, &memoryRecorder{repo: repo}, config.PolicyMultiVote)
	ctx := context.Background()

	if _, _, err := svc.Cast(ctx, 42, 10); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if _, _, err := svc.Cast(ctx, 42, 10); err != nil {
		t.Fatalf("multi policy must accept repeated votes, got %v", err)
	}
	if len(repo.votes) != 2 {
		t.Fatalf("expected 2 votes recorded, got %d", len(repo.votes))
	}
}

func TestCastUnknownOption(t *testing.T) {
	repo := newMemoryVoteRepo()
	svc := NewService(repo, &memoryRecorder{repo: repo}, config.PolicySingleVote)

	if _, _, err := svc.Cast(context.Background(), 42, 999); !errors.Is(err, ErrOptionNotFound) {
		t.Fatalf("expected option not found, got %v", err)
	}
}

func TestCastRecorderFailureSurfaces(t *testing.T) {
	repo := newMemoryVoteRepo()
	repo.optionSurvey[10] = 1
	boom := errors.New("boom")
	svc := NewService(repo, &memoryRecorder{repo: repo, err: boom}, config.PolicySingleVote)

	if _, _, err := svc.Cast(context.Background(), 42, 10); !errors.Is(err, boom) {
		t.Fatalf("recorder error must propagate, got %v", err)
	}
	if len(repo.votes) != 0 {
		t.Fatalf("failed cast must not record a vote")
	}
}
