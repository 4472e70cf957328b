package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/campusbuddy/helpdesk/core"
	"github.com/campusbuddy/helpdesk/core/syncspot"
)

const (
	questionColumns     = "id, question, user_id, created_at"
	answerColumns       = "id, question_id, answer, user_id, created_at"
	foreignKeyViolation = "23503"
)

type questionRow struct {
	ID        string    `db:"id"`
	Question  string    `db:"question"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (row questionRow) question() syncspot.Question {
	return syncspot.Question{
		ID:        row.ID,
		Question:  row.Question,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt.UTC(),
		Answers:   make([]syncspot.Answer, 0),
	}
}

type answerRow struct {
	ID         string    `db:"id"`
	QuestionID string    `db:"question_id"`
	Answer     string    `db:"answer"`
	UserID     string    `db:"user_id"`
	CreatedAt  time.Time `db:"created_at"`
}

func (row answerRow) answer() syncspot.Answer {
	return syncspot.Answer{
		ID:         row.ID,
		QuestionID: row.QuestionID,
		Answer:     row.Answer,
		UserID:     row.UserID,
		CreatedAt:  row.CreatedAt.UTC(),
	}
}

type syncSpotRepository struct {
	repository
}

var _ syncspot.Repository = (*syncSpotRepository)(nil) // interface compliance check

func NewSyncSpotRepository(exec core.DBExecutor) syncspot.Repository {
	return &syncSpotRepository{repository{exec: exec}}
}

// withAnswers loads the answers of questions, oldest first.
func (repo *syncSpotRepository) withAnswers(ctx context.Context, exe core.DBExecutor, rows []questionRow) ([]syncspot.Question, error) {
	questions := make([]syncspot.Question, 0, len(rows))
	if len(rows) == 0 {
		return questions, nil
	}
	ids := make([]string, 0, len(rows))
	index := make(map[string]int, len(rows))
	for i, row := range rows {
		questions = append(questions, row.question())
		ids = append(ids, row.ID)
		index[row.ID] = i
	}

	var answers []answerRow
	q := "SELECT " + answerColumns + " FROM syncspot_answers WHERE question_id = ANY($1) ORDER BY created_at ASC, id ASC"
	if err := sqlx.SelectContext(ctx, exe, &answers, q, pq.Array(ids)); err != nil {
		return nil, errors.Wrap(err, "querying answers")
	}
	for _, a := range answers {
		i := index[a.QuestionID]
		questions[i].Answers = append(questions[i].Answers, a.answer())
	}
	return questions, nil
}

func (repo *syncSpotRepository) CreateQuestion(ctx context.Context, q syncspot.Question, exec ...core.DBExecutor) (syncspot.Question, error) {
	q.ID = uuid.New().String()
	q.Answers = nil
	_, err := repo.getExec(exec).ExecContext(ctx,
		"INSERT INTO syncspot_questions ("+questionColumns+") VALUES ($1, $2, $3, $4)",
		q.ID, q.Question, q.UserID, q.CreatedAt.UTC())
	if err != nil {
		return syncspot.Question{}, errors.Wrap(err, "inserting question")
	}
	return q, nil
}

func (repo *syncSpotRepository) FindOpenQuestion(ctx context.Context, text string, exec ...core.DBExecutor) (syncspot.Question, error) {
	var row questionRow
	q := "SELECT " + questionColumns + ` FROM syncspot_questions sq
		WHERE lower(sq.question) = lower($1)
		AND NOT EXISTS (SELECT 1 FROM syncspot_answers sa WHERE sa.question_id = sq.id)
		ORDER BY sq.created_at ASC LIMIT 1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, text); err != nil {
		return syncspot.Question{}, trapNoRowsErr(err, syncspot.ErrNotFound, "finding open question")
	}
	return row.question(), nil
}

func (repo *syncSpotRepository) QueryQuestions(ctx context.Context, exec ...core.DBExecutor) ([]syncspot.Question, error) {
	exe := repo.getExec(exec)
	var rows []questionRow
	q := "SELECT " + questionColumns + " FROM syncspot_questions ORDER BY created_at DESC, id ASC"
	if err := sqlx.SelectContext(ctx, exe, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	return repo.withAnswers(ctx, exe, rows)
}

func (repo *syncSpotRepository) GetQuestion(ctx context.Context, id string, exec ...core.DBExecutor) (syncspot.Question, error) {
	if _, err := uuid.Parse(id); err != nil {
		return syncspot.Question{}, syncspot.ErrNotFound
	}
	exe := repo.getExec(exec)
	var row questionRow
	q := "SELECT " + questionColumns + " FROM syncspot_questions WHERE id = $1"
	if err := sqlx.GetContext(ctx, exe, &row, q, id); err != nil {
		return syncspot.Question{}, trapNoRowsErr(err, syncspot.ErrNotFound, "finding question")
	}
	questions, err := repo.withAnswers(ctx, exe, []questionRow{row})
	if err != nil {
		return syncspot.Question{}, err
	}
	return questions[0], nil
}

// DeleteQuestion deletes the question. Its answers are removed by ON DELETE CASCADE.
func (repo *syncSpotRepository) DeleteQuestion(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := uuid.Parse(id); err != nil {
		return syncspot.ErrNotFound
	}
	res, err := repo.getExec(exec).ExecContext(ctx, "DELETE FROM syncspot_questions WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting question")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return syncspot.ErrNotFound
	}
	return nil
}

func (repo *syncSpotRepository) CreateAnswer(ctx context.Context, a syncspot.Answer, exec ...core.DBExecutor) (syncspot.Answer, error) {
	if _, err := uuid.Parse(a.QuestionID); err != nil {
		return syncspot.Answer{}, syncspot.ErrNotFound
	}
	a.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		"INSERT INTO syncspot_answers ("+answerColumns+") VALUES ($1, $2, $3, $4, $5)",
		a.ID, a.QuestionID, a.Answer, a.UserID, a.CreatedAt.UTC())
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == foreignKeyViolation {
			return syncspot.Answer{}, syncspot.ErrNotFound
		}
		return syncspot.Answer{}, errors.Wrap(err, "inserting answer")
	}
	return a, nil
}
