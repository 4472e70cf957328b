package syncspot

import (
	"context"
	"errors"
	"net/mail"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/campusbuddy/helpdesk/core"
	"github.com/campusbuddy/helpdesk/core/profile"
)

var (
	// errors
	ErrNotFound  = errors.New("question not found")
	ErrForbidden = errors.New("only the author or a faculty member can delete this question")
)

type (
	Repository interface {
		CreateQuestion(ctx context.Context, q Question, exec ...core.DBExecutor) (Question, error)
		// FindOpenQuestion returns the unanswered question whose text equals text (case-insensitive).
		FindOpenQuestion(ctx context.Context, text string, exec ...core.DBExecutor) (Question, error)
		// QueryQuestions returns questions newest first, each with its answers oldest first.
		QueryQuestions(ctx context.Context, exec ...core.DBExecutor) ([]Question, error)
		GetQuestion(ctx context.Context, id string, exec ...core.DBExecutor) (Question, error)
		DeleteQuestion(ctx context.Context, id string, exec ...core.DBExecutor) error
		CreateAnswer(ctx context.Context, a Answer, exec ...core.DBExecutor) (Answer, error)
	}

	Service interface {
		// Ask posts a question, or returns the identical open one. The bool reports whether it was created.
		Ask(ctx context.Context, userID, text string) (Question, bool, error)
		List(ctx context.Context) ([]Question, error)
		Answer(ctx context.Context, questionID string, author profile.Profile, text string) (Answer, error)
		Delete(ctx context.Context, questionID string, actor profile.Profile) error
	}

	service struct {
		repo       Repository
		profileSvc profile.Service
		mailSvc    core.EmailService
		logger     core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, profileSvc profile.Service, mailSvc core.EmailService, logger core.Logger) Service {
	return &service{
		repo:       repo,
		profileSvc: profileSvc,
		mailSvc:    mailSvc,
		logger:     logger,
	}
}

func (svc *service) Ask(ctx context.Context, userID, text string) (Question, bool, error) {
	text, err := cleanText("question", text)
	if err != nil {
		return Question{}, false, err
	}

	q, err := svc.repo.FindOpenQuestion(ctx, text)
	if err == nil {
		return q, false, nil
	}
	if pkgerrors.Cause(err) != ErrNotFound {
		return Question{}, false, pkgerrors.Wrap(err, "finding open question")
	}

	q, err = svc.repo.CreateQuestion(ctx, Question{
		Question:  text,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Question{}, false, pkgerrors.Wrap(err, "creating question")
	}
	q.Answers = []Answer{}
	return q, true, nil
}

func (svc *service) List(ctx context.Context) ([]Question, error) {
	return svc.repo.QueryQuestions(ctx)
}

func (svc *service) Answer(ctx context.Context, questionID string, author profile.Profile, text string) (Answer, error) {
	text, err := cleanText("answer", text)
	if err != nil {
		return Answer{}, err
	}

	q, err := svc.repo.GetQuestion(ctx, questionID)
	if err != nil {
		return Answer{}, err
	}

	a, err := svc.repo.CreateAnswer(ctx, Answer{
		QuestionID: q.ID,
		Answer:     text,
		UserID:     author.ID,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return Answer{}, pkgerrors.Wrap(err, "creating answer")
	}

	if q.UserID != author.ID {
		svc.notifyAsker(ctx, q, a)
	}
	return a, nil
}

func (svc *service) notifyAsker(ctx context.Context, q Question, a Answer) {
	asker, err := svc.profileSvc.GetByID(ctx, q.UserID)
	if err != nil {
		if pkgerrors.Cause(err) != profile.ErrNotFound {
			svc.logger.Warn("finding question author", pkgerrors.Wrap(err, "finding question author"))
		}
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: asker.FullName, Address: asker.Email}},
		Subject:      "Your question got an answer",
		TemplateName: "syncspot_answer",
		TemplateData: answerMailData{
			Name:     asker.FullName,
			Question: q.Question,
			Answer:   a.Answer,
		},
	})
}

func (svc *service) Delete(ctx context.Context, questionID string, actor profile.Profile) error {
	q, err := svc.repo.GetQuestion(ctx, questionID)
	if err != nil {
		return err
	}
	if q.UserID != actor.ID && !actor.IsFaculty() {
		return ErrForbidden
	}
	return svc.repo.DeleteQuestion(ctx, q.ID)
}
