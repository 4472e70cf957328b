package assistant

import (
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

// NoInfoSentinel starts the model reply when the knowledge base has no answer.
const NoInfoSentinel = "NO_INFO_AVAILABLE:"

var promptTmpl = template.Must(template.New("assistant").Parse(`You are a helpful college information assistant with real-time access to the college data: faculty, contact details, departments, events, timings, uploaded documents and answers from the student community.

You do not store or remember this information. Search the data below for every question to find the most relevant and up-to-date answer:

1. Search all of the data, including document content and community answers.
2. When you find the requested information, give it directly and clearly.
3. For partial matches, reason about the most relevant information.
4. Include contact info, phone numbers, emails and departments when relevant.
5. Be conversational and natural.
6. When using an uploaded document (PDF, Word, image...), say it comes from official college documents.
7. When using a community answer, say it comes from the student community.
8. If the data does not contain the requested information, respond with exactly: "{{.Sentinel}} [original question]"
9. For faculty questions, also search name variations, departments, subjects and related keywords.
10. Combine related information from several sources into one complete answer.

College Data, Documents, and Community Answers:
{{.Context}}

Remember: You are searching through this data in REAL-TIME for each question. You don't remember previous conversations or data - you search fresh each time to ensure accuracy and up-to-date responses.

Student Question: {{.Question}}`))

type promptData struct {
	Sentinel string
	Context  string
	Question string
}

func renderPrompt(context, question string) (string, error) {
	var b strings.Builder
	err := promptTmpl.Execute(&b, promptData{
		Sentinel: NoInfoSentinel,
		Context:  context,
		Question: question,
	})
	if err != nil {
		return "", errors.Wrap(err, "rendering assistant prompt")
	}
	return b.String(), nil
}

// IsNoInfo reports whether the model reply is the "no answer" sentinel.
// Leading whitespace, quotes and markdown emphasis added by the model are ignored.
func IsNoInfo(reply string) bool {
	reply = strings.TrimLeft(reply, " \t\r\n\"'`*_“”")
	return strings.HasPrefix(reply, NoInfoSentinel)
}
