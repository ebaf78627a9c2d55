package postgres

import (
	"context"
	"database/sql"

	"github.com/atlasjose/Bases-de-datos2/internal/domain/survey"
)

type SurveyRepo struct {
	db *sql.DB
}

func NewSurveyRepo(db *sql.DB) *SurveyRepo {
	return &SurveyRepo{db: db}
}

func (r *SurveyRepo) Create(ctx context.Context, sv *survey.Survey) error {
	query := `
        INSERT INTO surveys (owner_id, title, description, is_active, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	return r.db.QueryRowContext(ctx, query,
		sv.OwnerID, sv.Title, sv.Description, sv.IsActive, sv.CreatedAt,
	).Scan(&sv.ID)
}

func (r *SurveyRepo) GetByID(ctx context.Context, id int64) (*survey.Survey, []survey.Question, error) {
	sv := &survey.Survey{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, owner_id, title, description, is_active, created_at
        FROM surveys WHERE id = $1
    `, id).Scan(&sv.ID, &sv.OwnerID, &sv.Title, &sv.Description, &sv.IsActive, &sv.CreatedAt)
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT q.id, q.survey_id, q.text, q.question_type, o.id, o.question_id, o.text
        FROM questions q
        LEFT JOIN options o ON o.question_id = q.id
        WHERE q.survey_id = $1
        ORDER BY q.id, o.id
    `, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var questions []survey.Question
	for rows.Next() {
		var q survey.Question
		var optID, optQID sql.NullInt64
		var optText sql.NullString
		if err := rows.Scan(&q.ID, &q.SurveyID, &q.Text, &q.Type, &optID, &optQID, &optText); err != nil {
			return nil, nil, err
		}
		if len(questions) == 0 || questions[len(questions)-1].ID != q.ID {
			questions = append(questions, q)
		}
		if optID.Valid {
			last := &questions[len(questions)-1]
			last.Options = append(last.Options, survey.Option{
				ID:         optID.Int64,
				QuestionID: optQID.Int64,
				Text:       optText.String,
			})
		}
	}
	return sv, questions, rows.Err()
}

func (r *SurveyRepo) List(ctx context.Context, active *bool) ([]survey.Survey, error) {
	query := `
        SELECT id, owner_id, title, description, is_active, created_at
        FROM surveys
    `
	var rows *sql.Rows
	var err error

	if active != nil {
		query += " WHERE is_active = $1 ORDER BY created_at DESC"
		rows, err = r.db.QueryContext(ctx, query, *active)
	} else {
		query += " ORDER BY created_at DESC"
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []survey.Survey
	for rows.Next() {
		var sv survey.Survey
		if err := rows.Scan(&sv.ID, &sv.OwnerID, &sv.Title, &sv.Description, &sv.IsActive, &sv.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, sv)
	}
	return res, rows.Err()
}

func (r *SurveyRepo) UpdateInfo(ctx context.Context, id int64, title string, description *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE surveys SET title = $1, description = $2 WHERE id = $3`,
		title, description, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *SurveyRepo) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE surveys SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes the survey with its questions, options and stats row. The
// vote-count restriction is enforced by the survey service before this runs.
func (r *SurveyRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
        DELETE FROM options WHERE question_id IN (SELECT id FROM questions WHERE survey_id = $1)
    `, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE survey_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM survey_stats WHERE survey_id = $1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM surveys WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SurveyRepo) AddQuestion(ctx context.Context, q *survey.Question) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
        INSERT INTO questions (survey_id, text, question_type)
        VALUES ($1, $2, $3)
        RETURNING id
    `, q.SurveyID, q.Text, q.Type).Scan(&q.ID)
	if err != nil {
		return err
	}

	for i := range q.Options {
		q.Options[i].QuestionID = q.ID
		err = tx.QueryRowContext(ctx, `
            INSERT INTO options (question_id, text)
            VALUES ($1, $2)
            RETURNING id
        `, q.ID, q.Options[i].Text).Scan(&q.Options[i].ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
