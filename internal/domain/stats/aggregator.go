package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atlasjose/Bases-de-datos2/internal/domain/survey"
	"github.com/atlasjose/Bases-de-datos2/internal/domain/vote"
	"github.com/atlasjose/Bases-de-datos2/internal/metrics"
	"github.com/atlasjose/Bases-de-datos2/internal/retry"
)

var (
	// ErrDanglingReference means a vote pointed at a missing option, question
	// or survey. Referential integrity should make this impossible, so it is
	// surfaced loudly instead of retried.
	ErrDanglingReference = errors.New("vote references a broken option chain")
	// ErrWriteConflict is returned by repositories when the store aborted a
	// counter update under contention. It is retried internally.
	ErrWriteConflict = errors.New("statistics write conflict")
	// ErrTransientWrite is surfaced after the bounded retry budget for
	// conflicting counter updates is exhausted.
	ErrTransientWrite = errors.New("statistics update failed after retries")
)

const (
	defaultAttempts  = 3
	defaultBaseDelay = 10 * time.Millisecond
)

// Aggregator keeps SurveyStats consistent with the vote table. All write-path
// hooks are explicit calls from the survey and vote services.
type Aggregator struct {
	repo      Repository
	log       *slog.Logger
	attempts  int
	baseDelay time.Duration
	now       func() time.Time
}

func NewAggregator(repo Repository, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{
		repo:      repo,
		log:       log,
		attempts:  defaultAttempts,
		baseDelay: defaultBaseDelay,
		now:       time.Now,
	}
}

// OnSurveyCreated seeds a zero-count stats row. Idempotent: a second call for
// the same survey only refreshes last_update.
func (a *Aggregator) OnSurveyCreated(ctx context.Context, sv *survey.Survey) error {
	return a.repo.Seed(ctx, sv.ID, sv.CreatedAt)
}

// OnSurveyActivated ensures the stats row exists and emits the activation
// event. It never re-zeroes an existing counter.
func (a *Aggregator) OnSurveyActivated(ctx context.Context, sv *survey.Survey) error {
	if err := a.repo.Seed(ctx, sv.ID, a.now()); err != nil {
		return err
	}
	a.log.Info("survey activated",
		"survey_id", sv.ID,
		"title", sv.Title,
		"activated_at", a.now().Format(time.RFC3339),
	)
	return nil
}

// OnVoteCast persists the vote and increments the survey counter atomically.
// Write conflicts are retried a bounded number of times; a broken option
// chain fails immediately with ErrDanglingReference.
func (a *Aggregator) OnVoteCast(ctx context.Context, v *vote.Vote) error {
	var surveyID int64
	err := retry.DoWithRetry(ctx, a.attempts, a.baseDelay, func() error {
		id, err := a.repo.RecordVote(ctx, v)
		if err != nil {
			if errors.Is(err, ErrDanglingReference) {
				return retry.Permanent(err)
			}
			return err
		}
		surveyID = id
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrWriteConflict) {
			return fmt.Errorf("%w: %v", ErrTransientWrite, err)
		}
		return err
	}

	metrics.IncVoteRecorded()
	a.log.Info("vote recorded", "survey_id", surveyID, "option_id", v.OptionID, "user_id", v.UserID)
	return nil
}

// TotalVotes reads the counter, defaulting to 0 when no stats row exists.
func (a *Aggregator) TotalVotes(ctx context.Context, surveyID int64) (int64, error) {
	st, err := a.repo.Get(ctx, surveyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return st.TotalVotes, nil
}

// Reconcile recomputes the counter from the live vote rows. Idempotent and
// safe to re-run; used by the background worker as a self-healing pass in
// case a crash left votes uncounted.
func (a *Aggregator) Reconcile(ctx context.Context, surveyID int64) (int64, error) {
	total, err := a.repo.Recount(ctx, surveyID)
	if err != nil {
		return 0, err
	}
	metrics.IncReconcileRun()
	a.log.Info("survey stats reconciled", "survey_id", surveyID, "total_votes", total)
	return total, nil
}
