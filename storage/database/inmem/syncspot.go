package inmemdb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/campusbuddy/helpdesk/core"
	"github.com/campusbuddy/helpdesk/core/syncspot"
)

var (
	questionOrdering = []core.DBOrdering{{Field: "created_at"}}
	questionFields   = map[string]compareFunc[syncspot.Question]{
		"created_at": func(a, b syncspot.Question) int { return a.CreatedAt.Compare(b.CreatedAt) },
	}
	answerOrdering = []core.DBOrdering{{Field: "created_at", Ascending: true}}
	answerFields   = map[string]compareFunc[syncspot.Answer]{
		"created_at": func(a, b syncspot.Answer) int { return a.CreatedAt.Compare(b.CreatedAt) },
	}
)

type syncSpotRepository struct {
	db *DB
}

var _ syncspot.Repository = (*syncSpotRepository)(nil) // interface compliance check

func NewSyncSpotRepository(db *DB) syncspot.Repository {
	return &syncSpotRepository{db: db}
}

// answersOf must be called with the lock held.
func (repo *syncSpotRepository) answersOf(questionID string) []syncspot.Answer {
	answers := make([]syncspot.Answer, 0)
	for _, a := range repo.db.answers {
		if a.QuestionID == questionID {
			answers = append(answers, a)
		}
	}
	sortBy(answers, answerOrdering, answerFields)
	return answers
}

func (repo *syncSpotRepository) CreateQuestion(_ context.Context, q syncspot.Question, _ ...core.DBExecutor) (syncspot.Question, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	q.ID = uuid.New().String()
	q.Answers = nil
	repo.db.questions = append(repo.db.questions, q)
	return q, nil
}

func (repo *syncSpotRepository) FindOpenQuestion(_ context.Context, text string, _ ...core.DBExecutor) (syncspot.Question, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	for _, q := range repo.db.questions {
		if strings.EqualFold(q.Question, text) {
			if answers := repo.answersOf(q.ID); len(answers) == 0 {
				q.Answers = answers
				return q, nil
			}
		}
	}
	return syncspot.Question{}, syncspot.ErrNotFound
}

func (repo *syncSpotRepository) QueryQuestions(_ context.Context, _ ...core.DBExecutor) ([]syncspot.Question, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	questions := make([]syncspot.Question, 0, len(repo.db.questions))
	for _, q := range repo.db.questions {
		q.Answers = repo.answersOf(q.ID)
		questions = append(questions, q)
	}
	sortBy(questions, questionOrdering, questionFields)
	return questions, nil
}

func (repo *syncSpotRepository) GetQuestion(_ context.Context, id string, _ ...core.DBExecutor) (syncspot.Question, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	for _, q := range repo.db.questions {
		if q.ID == id {
			q.Answers = repo.answersOf(q.ID)
			return q, nil
		}
	}
	return syncspot.Question{}, syncspot.ErrNotFound
}

func (repo *syncSpotRepository) DeleteQuestion(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	found := false
	questions := repo.db.questions[:0]
	for _, q := range repo.db.questions {
		if q.ID == id {
			found = true
			continue
		}
		questions = append(questions, q)
	}
	if !found {
		return syncspot.ErrNotFound
	}
	repo.db.questions = questions

	// cascade
	answers := repo.db.answers[:0]
	for _, a := range repo.db.answers {
		if a.QuestionID != id {
			answers = append(answers, a)
		}
	}
	repo.db.answers = answers
	return nil
}

func (repo *syncSpotRepository) CreateAnswer(_ context.Context, a syncspot.Answer, _ ...core.DBExecutor) (syncspot.Answer, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for _, q := range repo.db.questions {
		if q.ID == a.QuestionID {
			a.ID = uuid.New().String()
			repo.db.answers = append(repo.db.answers, a)
			return a, nil
		}
	}
	return syncspot.Answer{}, syncspot.ErrNotFound
}
