package assistant

import (
	"fmt"
	"strings"

	"github.com/campusbuddy/helpdesk/core/collegedata"
	"github.com/campusbuddy/helpdesk/core/syncspot"
)

// BuildContext renders the college data and the answered SyncSpot questions as the
// plain-text knowledge base given to the model.
func BuildContext(records []collegedata.Record, questions []syncspot.Question) string {
	parts := make([]string, 0, 2)
	if s := recordsContext(records); s != "" {
		parts = append(parts, s)
	}
	if s := communityContext(questions); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n\n")
}

func recordsContext(records []collegedata.Record) string {
	blocks := make([]string, 0, len(records))
	for _, rec := range records {
		var b strings.Builder
		fmt.Fprintf(&b, "Title: %s\nCategory: %s\nContent: %s\nTags: %s",
			rec.Title, rec.Category, rec.Content, strings.Join(rec.Tags, ", "))
		if rec.ParsedContent != "" {
			fmt.Fprintf(&b, "\nDocument Content: %s", rec.ParsedContent)
		}
		if rec.FileName != "" {
			fileType := rec.FileType
			if fileType == "" {
				fileType = "unknown type"
			}
			fmt.Fprintf(&b, "\nAttached File: %s (%s)", rec.FileName, fileType)
		}
		b.WriteString("\n---")
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// communityContext skips unanswered questions.
func communityContext(questions []syncspot.Question) string {
	blocks := make([]string, 0, len(questions))
	for _, q := range questions {
		if len(q.Answers) == 0 {
			continue
		}
		answers := make([]string, 0, len(q.Answers))
		for _, a := range q.Answers {
			answers = append(answers, "Answer: "+a.Answer)
		}
		blocks = append(blocks, fmt.Sprintf("Community Q&A:\nQuestion: %s\n%s\n---", q.Question, strings.Join(answers, "\n")))
	}
	return strings.Join(blocks, "\n\n")
}
