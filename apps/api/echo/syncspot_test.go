package echoapi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbuddy/helpdesk/core/profile"
	"github.com/campusbuddy/helpdesk/core/syncspot"
	emailsvc "github.com/campusbuddy/helpdesk/services/email"
	testutil "github.com/campusbuddy/helpdesk/tests"
)

func TestSyncSpotAPI_query(t *testing.T) {
	f := setup(t)
	now := time.Now()
	older := testutil.CreateQuestion(t, f.syncRepo, f.student.ID, "Is there a bus on Sundays?", now.Add(-time.Hour))
	newer := testutil.CreateQuestion(t, f.syncRepo, f.student.ID, "Where is the placement cell?", now)
	testutil.CreateAnswer(t, f.syncRepo, older.ID, f.faculty.ID, "Only route 3.", now)

	runHTTPTests(t, f, []httpTest{
		{
			name:     "no token",
			path:     "/v1/syncspot/questions",
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
	})

	req, rec := newAuthRequest(http.MethodGet, "/v1/syncspot/questions", f.token(t, f.student))
	f.serve(req, rec)
	require.Equal(t, http.StatusOK, rec.Code)

	var questions []syncspot.Question
	decode(t, rec, &questions)
	require.Len(t, questions, 2)
	assert.Equal(t, newer.ID, questions[0].ID)
	assert.Empty(t, questions[0].Answers)
	assert.Equal(t, older.ID, questions[1].ID)
	require.Len(t, questions[1].Answers, 1)
	assert.Equal(t, "Only route 3.", questions[1].Answers[0].Answer)
}

func TestSyncSpotAPI_ask(t *testing.T) {
	f := setup(t)

	runHTTPTests(t, f, []httpTest{
		{
			name:     "blank",
			method:   http.MethodPost,
			path:     "/v1/syncspot/questions",
			body:     []byte(`{"question":"  "}`),
			token:    f.token(t, f.student),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"question": "this field is required"}),
		},
	})

	body := []byte(`{"question":" Is the gym open on holidays? "}`)
	req, rec := newAuthRequest(http.MethodPost, "/v1/syncspot/questions", f.token(t, f.student), body)
	f.serve(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var q syncspot.Question
	decode(t, rec, &q)
	assert.NotEmpty(t, q.ID)
	assert.Equal(t, "Is the gym open on holidays?", q.Question)
	assert.Equal(t, f.student.ID, q.UserID)

	// an open duplicate is returned as is
	body = []byte(`{"question":"is the GYM open on holidays?"}`)
	req, rec = newAuthRequest(http.MethodPost, "/v1/syncspot/questions", f.token(t, f.faculty), body)
	f.serve(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var dup syncspot.Question
	decode(t, rec, &dup)
	assert.Equal(t, q.ID, dup.ID)
}

func TestSyncSpotAPI_answer(t *testing.T) {
	f := setup(t)
	q := testutil.CreateQuestion(t, f.syncRepo, f.student.ID, "Is there a bus on Sundays?")

	runHTTPTests(t, f, []httpTest{
		{
			name:     "blank",
			method:   http.MethodPost,
			path:     "/v1/syncspot/questions/" + q.ID + "/answers",
			body:     []byte(`{"answer":""}`),
			token:    f.token(t, f.faculty),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"answer": "this field is required"}),
		},
		{
			name:     "unknown question",
			method:   http.MethodPost,
			path:     "/v1/syncspot/questions/2b1c0d2e-8a53-4c39-9d43-4d0cbf4f3d1a/answers",
			body:     []byte(`{"answer":"Yes"}`),
			token:    f.token(t, f.faculty),
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "question not found"}),
		},
	})

	emailsvc.ResetSentMessages()
	body := []byte(`{"answer":"Only route 3."}`)
	req, rec := newAuthRequest(http.MethodPost, "/v1/syncspot/questions/"+q.ID+"/answers", f.token(t, f.faculty), body)
	f.serve(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var a syncspot.Answer
	decode(t, rec, &a)
	assert.Equal(t, q.ID, a.QuestionID)
	assert.Equal(t, f.faculty.ID, a.UserID)
	assert.Equal(t, "Only route 3.", a.Answer)

	// the asker is notified
	msgs := emailsvc.SentMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, f.student.Email, msgs[0].To[0].Address)
}

func TestSyncSpotAPI_destroy(t *testing.T) {
	f := setup(t)
	other := testutil.CreateProfile(t, f.profileRepo, "Other Student", "other@college.edu", "Sup3rSecret!", profile.TypeStudent, true)
	mine := testutil.CreateQuestion(t, f.syncRepo, f.student.ID, "Is there a bus on Sundays?")
	theirs := testutil.CreateQuestion(t, f.syncRepo, other.ID, "Where is the placement cell?")
	testutil.CreateAnswer(t, f.syncRepo, theirs.ID, f.student.ID, "Block C")

	runHTTPTests(t, f, []httpTest{
		{
			name:     "not the author",
			method:   http.MethodDelete,
			path:     "/v1/syncspot/questions/" + theirs.ID,
			token:    f.token(t, f.student),
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "only the author or a faculty member can delete this question"}),
		},
		{
			name:     "author",
			method:   http.MethodDelete,
			path:     "/v1/syncspot/questions/" + mine.ID,
			token:    f.token(t, f.student),
			wantCode: http.StatusNoContent,
		},
		{
			name:     "faculty",
			method:   http.MethodDelete,
			path:     "/v1/syncspot/questions/" + theirs.ID,
			token:    f.token(t, f.faculty),
			wantCode: http.StatusNoContent,
		},
		{
			name:     "already deleted",
			method:   http.MethodDelete,
			path:     "/v1/syncspot/questions/" + mine.ID,
			token:    f.token(t, f.faculty),
			wantCode: http.StatusNotFound,
		},
	})

	questions, err := f.syncRepo.QueryQuestions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, questions)
}
