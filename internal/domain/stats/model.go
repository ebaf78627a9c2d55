package stats

import (
	"context"
	"time"

	"github.com/atlasjose/Bases-de-datos2/internal/domain/vote"
)

// SurveyStats is the denormalized per-survey vote counter. At most one row
// per survey; TotalVotes must equal the live count of votes whose option
// chain resolves to the survey.
type SurveyStats struct {
	SurveyID   int64     `json:"survey_id"`
	TotalVotes int64     `json:"total_votes"`
	LastUpdate time.Time `json:"last_update"`
}

type Repository interface {
	// Seed upserts a zero-count row. An existing counter is left untouched;
	// only last_update is refreshed.
	Seed(ctx context.Context, surveyID int64, asOf time.Time) error
	// RecordVote inserts the vote row and applies the counter increment as a
	// single atomic unit, returning the survey the vote resolved to. It
	// reports ErrDanglingReference when the option chain is broken and
	// ErrWriteConflict when the store aborted the transaction under
	// contention.
	RecordVote(ctx context.Context, v *vote.Vote) (int64, error)
	// Get returns sql.ErrNoRows when no stats row exists.
	Get(ctx context.Context, surveyID int64) (*SurveyStats, error)
	// Recount recomputes the counter from the live vote rows and stores it.
	Recount(ctx context.Context, surveyID int64) (int64, error)
}
