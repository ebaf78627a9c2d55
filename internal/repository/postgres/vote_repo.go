package postgres

import (
	"context"
	"database/sql"
)

type VoteRepo struct {
	db *sql.DB
}

func NewVoteRepo(db *sql.DB) *VoteRepo {
	return &VoteRepo{db: db}
}

func (r *VoteRepo) HasVoted(ctx context.Context, userID, surveyID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
        SELECT EXISTS (
            SELECT 1
            FROM votes v
            JOIN options o ON o.id = v.option_id
            JOIN questions q ON q.id = o.question_id
            WHERE v.user_id = $1 AND q.survey_id = $2
        )
    `, userID, surveyID).Scan(&exists)
	return exists, err
}

func (r *VoteRepo) SurveyForOption(ctx context.Context, optionID int64) (int64, error) {
	var surveyID int64
	err := r.db.QueryRowContext(ctx, `
        SELECT s.id
        FROM options o
        JOIN questions q ON q.id = o.question_id
        JOIN surveys s ON s.id = q.survey_id
        WHERE o.id = $1
    `, optionID).Scan(&surveyID)
	if err != nil {
		return 0, err
	}
	return surveyID, nil
}
