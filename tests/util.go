package testutil

import (
	"context"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/campusbuddy/helpdesk/core"
	"github.com/campusbuddy/helpdesk/core/collegedata"
	"github.com/campusbuddy/helpdesk/core/profile"
	"github.com/campusbuddy/helpdesk/core/syncspot"
)

// NewValidator returns a validator with all the app validators registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	profile.InitValidators(validate, translator)
	collegedata.InitValidators(validate, translator)
	return validate, translator
}

func CreateProfile(
	t *testing.T,
	repo profile.Repository,
	name, email, pwd, userType string,
	isActive bool,
	createdAt ...time.Time,
) profile.Profile {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	p := profile.Profile{
		FullName:  name,
		Email:     email,
		UserType:  userType,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := p.SetPassword(pwd); err != nil {
			t.Fatalf("CreateProfile() failed: %v", err)
		}
	}
	p, err := repo.CreateProfile(context.Background(), p)
	if err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}
	return p
}

func CreateRecord(
	t *testing.T,
	repo collegedata.Repository,
	title, category, content string,
	tags []string,
	createdAt ...time.Time,
) collegedata.Record {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	rec, err := repo.CreateRecord(context.Background(), collegedata.Record{
		Title:     title,
		Category:  category,
		Content:   content,
		Tags:      tags,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateRecord() failed: %v", err)
	}
	return rec
}

func CreateQuestion(t *testing.T, repo syncspot.Repository, userID, text string, createdAt ...time.Time) syncspot.Question {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	q, err := repo.CreateQuestion(context.Background(), syncspot.Question{Question: text, UserID: userID, CreatedAt: tstamp})
	if err != nil {
		t.Fatalf("CreateQuestion() failed: %v", err)
	}
	return q
}

func CreateAnswer(t *testing.T, repo syncspot.Repository, questionID, userID, text string, createdAt ...time.Time) syncspot.Answer {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	a, err := repo.CreateAnswer(context.Background(), syncspot.Answer{
		QuestionID: questionID,
		Answer:     text,
		UserID:     userID,
		CreatedAt:  tstamp,
	})
	if err != nil {
		t.Fatalf("CreateAnswer() failed: %v", err)
	}
	return a
}
