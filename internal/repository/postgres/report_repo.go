package postgres

import (
	"context"
	"database/sql"

	"github.com/atlasjose/Bases-de-datos2/internal/domain/report"
)

type ReportRepo struct {
	db *sql.DB
}

func NewReportRepo(db *sql.DB) *ReportRepo {
	return &ReportRepo{db: db}
}

func (r *ReportRepo) Summary(ctx context.Context, surveyID int64) (*report.SurveySummary, error) {
	sum := &report.SurveySummary{}
	var lastUpdate sql.NullTime
	err := r.db.QueryRowContext(ctx, `
        SELECT s.id, s.title, s.description, u.name, s.created_at, s.is_active,
               COALESCE(st.total_votes, 0), st.last_update
        FROM surveys s
        JOIN users u ON u.id = s.owner_id
        LEFT JOIN survey_stats st ON st.survey_id = s.id
        WHERE s.id = $1
    `, surveyID).Scan(
		&sum.SurveyID, &sum.Title, &sum.Description, &sum.OwnerName,
		&sum.CreatedAt, &sum.IsActive, &sum.TotalVotes, &lastUpdate,
	)
	if err != nil {
		return nil, err
	}
	if lastUpdate.Valid {
		sum.LastUpdate = lastUpdate.Time
	}
	return sum, nil
}

// BreakdownRows includes zero-vote options via the left join and keeps option
// insertion order inside each question so rank tie-breaks stay stable.
func (r *ReportRepo) BreakdownRows(ctx context.Context, surveyID int64) ([]report.BreakdownRow, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT q.id, q.text, o.id, o.text, COUNT(v.id)
        FROM questions q
        JOIN options o ON o.question_id = q.id
        LEFT JOIN votes v ON v.option_id = o.id
        WHERE q.survey_id = $1
        GROUP BY q.id, q.text, o.id, o.text
        ORDER BY q.text, q.id, o.id
    `, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []report.BreakdownRow
	for rows.Next() {
		var row report.BreakdownRow
		if err := rows.Scan(&row.QuestionID, &row.QuestionText, &row.OptionID, &row.OptionText, &row.Votes); err != nil {
			return nil, err
		}
		res = append(res, row)
	}
	return res, rows.Err()
}

func (r *ReportRepo) Dashboard(ctx context.Context) (*report.Dashboard, error) {
	d := &report.Dashboard{}
	err := r.db.QueryRowContext(ctx, `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE is_active)
        FROM surveys
    `).Scan(&d.TotalSurveys, &d.ActiveSurveys)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `
        SELECT COUNT(DISTINCT user_id), COUNT(*)
        FROM votes
    `).Scan(&d.VotingUsers, &d.TotalVotes)
	if err != nil {
		return nil, err
	}

	// lowest id wins ties
	err = r.db.QueryRowContext(ctx, `
        SELECT s.id, s.title, COALESCE(st.total_votes, 0)
        FROM surveys s
        LEFT JOIN survey_stats st ON st.survey_id = s.id
        ORDER BY COALESCE(st.total_votes, 0) DESC, s.id ASC
        LIMIT 1
    `).Scan(&d.TopSurveyID, &d.TopSurveyTitle, &d.TopSurveyVotes)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return d, nil
}
