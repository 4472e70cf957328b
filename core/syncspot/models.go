package syncspot

import (
	"time"

	"github.com/campusbuddy/helpdesk/core"
)

type Question struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
	Answers   []Answer  `json:"syncspot_answers"`
}

func (q Question) IsOpen() bool { return len(q.Answers) == 0 }

type Answer struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"question_id"`
	Answer     string    `json:"answer"`
	UserID     string    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

type NewQuestion struct {
	Question string `json:"question"`
}

type NewAnswer struct {
	Answer string `json:"answer"`
}

func cleanText(field, text string) (string, error) {
	text = core.CleanString(text)
	if text == "" {
		return "", core.NewFieldValidationError(field, "this field is required")
	}
	return text, nil
}

// answerMailData is the data of the `syncspot_answer` email template.
type answerMailData struct {
	Name     string
	Question string
	Answer   string
}
