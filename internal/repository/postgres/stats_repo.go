package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/atlasjose/Bases-de-datos2/internal/domain/stats"
	"github.com/atlasjose/Bases-de-datos2/internal/domain/vote"
)

type StatsRepo struct {
	db *sql.DB
}

func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// Seed upserts a zero-count row; an existing counter keeps its value.
func (r *StatsRepo) Seed(ctx context.Context, surveyID int64, asOf time.Time) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO survey_stats (survey_id, total_votes, last_update)
        VALUES ($1, 0, $2)
        ON CONFLICT (survey_id) DO UPDATE
        SET last_update = EXCLUDED.last_update
    `, surveyID, asOf)
	return err
}

// RecordVote writes the vote row and the counter increment in one
// transaction, so a crash cannot leave a vote uncounted. The increment is an
// atomic upsert: concurrent casts on the same survey serialize on the stats
// row and none is lost.
func (r *StatsRepo) RecordVote(ctx context.Context, v *vote.Vote) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var surveyID int64
	err = tx.QueryRowContext(ctx, `
        SELECT s.id
        FROM options o
        JOIN questions q ON q.id = o.question_id
        JOIN surveys s ON s.id = q.survey_id
        WHERE o.id = $1
    `, v.OptionID).Scan(&surveyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: option %d", stats.ErrDanglingReference, v.OptionID)
		}
		return 0, err
	}

	err = tx.QueryRowContext(ctx, `
        INSERT INTO votes (user_id, option_id, cast_at)
        VALUES ($1, $2, $3)
        RETURNING id
    `, v.UserID, v.OptionID, v.CastAt).Scan(&v.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("%w: option %d", stats.ErrDanglingReference, v.OptionID)
		}
		return 0, classifyWriteErr(err)
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO survey_stats (survey_id, total_votes, last_update)
        VALUES ($1, 1, $2)
        ON CONFLICT (survey_id) DO UPDATE
        SET total_votes = survey_stats.total_votes + 1,
            last_update = EXCLUDED.last_update
    `, surveyID, v.CastAt)
	if err != nil {
		return 0, classifyWriteErr(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, classifyWriteErr(err)
	}
	return surveyID, nil
}

func (r *StatsRepo) Get(ctx context.Context, surveyID int64) (*stats.SurveyStats, error) {
	st := &stats.SurveyStats{}
	err := r.db.QueryRowContext(ctx, `
        SELECT survey_id, total_votes, last_update
        FROM survey_stats WHERE survey_id = $1
    `, surveyID).Scan(&st.SurveyID, &st.TotalVotes, &st.LastUpdate)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// Recount recomputes the counter from the live vote rows.
func (r *StatsRepo) Recount(ctx context.Context, surveyID int64) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO survey_stats (survey_id, total_votes, last_update)
        SELECT $1,
               COUNT(v.id),
               NOW()
        FROM questions q
        JOIN options o ON o.question_id = q.id
        LEFT JOIN votes v ON v.option_id = o.id
        WHERE q.survey_id = $1
        ON CONFLICT (survey_id) DO UPDATE
        SET total_votes = EXCLUDED.total_votes,
            last_update = EXCLUDED.last_update
        RETURNING total_votes
    `, surveyID).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// survey without questions yet, nothing to recount
			return 0, nil
		}
		return 0, err
	}
	return total, nil
}

// classifyWriteErr maps serialization failures and deadlocks to the
// aggregator's retryable sentinel.
func classifyWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%w: %s", stats.ErrWriteConflict, pgErr.Code)
		}
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}
