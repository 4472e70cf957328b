package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/campusbuddy/helpdesk/core"
	"github.com/campusbuddy/helpdesk/core/collegedata"
	"github.com/campusbuddy/helpdesk/core/profile"
	"github.com/campusbuddy/helpdesk/core/syncspot"
)

const (
	// FallbackResponse is shown to the student when no answer could be generated.
	FallbackResponse = "I'm sorry, I'm having trouble accessing my knowledge base right now. " +
		"Please try again later or contact the college administration directly for assistance."

	redirectResponse = "I don't have information about this in my database. " +
		"I've posted your question to **SyncSpot** where the community can help answer it!"
	noAnswerResponse = "I don't have information about this in my database. " +
		"You can ask the community on **SyncSpot**."

	RedirectSyncSpot = "syncspot"
)

var ErrAllProvidersFailed = errors.New("all AI providers failed")

// generation parameters of the chat completions
const (
	chatTemperature = 0.7
	chatTopK        = 40
	chatTopP        = 0.95
	chatMaxTokens   = 1024
)

type (
	Reply struct {
		Response   string `json:"response"`
		Provider   string `json:"provider,omitempty"`
		Redirect   string `json:"redirect,omitempty"`
		NoAnswer   bool   `json:"noAnswer,omitempty"`
		Question   string `json:"question,omitempty"`
		QuestionID string `json:"questionId,omitempty"`
	}

	Service interface {
		// Ask answers the student's message from the college data, or posts it to SyncSpot
		// when the data has no answer.
		Ask(ctx context.Context, asker profile.Profile, message string) (Reply, error)
	}

	Options struct {
		// Providers are tried in order until one replies.
		Providers []core.LLMService
		// Timeout bounds each provider call. Zero means no timeout.
		Timeout time.Duration
	}

	service struct {
		dataSvc   collegedata.Service
		syncSvc   syncspot.Service
		providers []core.LLMService
		timeout   time.Duration
		metrics   core.Metrics
		logger    core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	dataSvc collegedata.Service,
	syncSvc syncspot.Service,
	opts Options,
	metrics core.Metrics,
	logger core.Logger,
) Service {
	return &service{
		dataSvc:   dataSvc,
		syncSvc:   syncSvc,
		providers: opts.Providers,
		timeout:   opts.Timeout,
		metrics:   metrics,
		logger:    logger,
	}
}

func (svc *service) Ask(ctx context.Context, asker profile.Profile, message string) (Reply, error) {
	message = core.CleanString(message)
	if message == "" {
		return Reply{}, core.NewFieldValidationError("message", "Message is required")
	}

	knowledge, err := svc.loadContext(ctx)
	if err != nil {
		svc.metrics.IncChatOutcome(core.ChatFailed)
		return Reply{}, err
	}
	prompt, err := renderPrompt(knowledge, message)
	if err != nil {
		svc.metrics.IncChatOutcome(core.ChatFailed)
		return Reply{}, err
	}

	answer, provider, err := svc.complete(ctx, prompt)
	if err != nil {
		svc.metrics.IncChatOutcome(core.ChatFailed)
		return Reply{}, err
	}

	if IsNoInfo(answer) {
		return svc.redirect(ctx, asker, message), nil
	}

	svc.metrics.IncChatOutcome(core.ChatAnswered)
	return Reply{Response: answer, Provider: provider}, nil
}

// loadContext fetches the college data and the SyncSpot threads concurrently.
// Only the college data is required.
func (svc *service) loadContext(ctx context.Context) (string, error) {
	var (
		records   []collegedata.Record
		questions []syncspot.Question
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = svc.dataSvc.Query(gctx, nil, nil)
		return pkgerrors.Wrap(err, "fetching college data")
	})
	g.Go(func() error {
		qs, err := svc.syncSvc.List(gctx)
		if err != nil {
			svc.logger.Warn("fetching SyncSpot questions", pkgerrors.Wrap(err, "fetching SyncSpot questions"))
			return nil
		}
		questions = qs
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}
	return BuildContext(records, questions), nil
}

// complete runs the provider chain: the first non-empty reply wins.
func (svc *service) complete(ctx context.Context, prompt string) (string, string, error) {
	req := core.CompletionRequest{
		Prompt:      prompt,
		Temperature: chatTemperature,
		TopK:        chatTopK,
		TopP:        chatTopP,
		MaxTokens:   chatMaxTokens,
	}

	for _, p := range svc.providers {
		if err := ctx.Err(); err != nil {
			return "", "", pkgerrors.Wrap(err, "completing chat")
		}

		text, err := svc.call(ctx, p, req)
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("%s failed, trying next provider: %v", p.Name(), err), err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			svc.logger.Warn(fmt.Sprintf("%s returned an empty reply, trying next provider", p.Name()))
			continue
		}
		return strings.TrimSpace(text), p.Name(), nil
	}
	return "", "", ErrAllProvidersFailed
}

func (svc *service) call(ctx context.Context, p core.LLMService, req core.CompletionRequest) (string, error) {
	if svc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, svc.timeout)
		defer cancel()
	}
	start := time.Now()
	text, err := p.Complete(ctx, req)
	svc.metrics.ObserveProviderCall(p.Name(), time.Since(start), err)
	return text, err
}

// redirect posts the student's message to SyncSpot on their behalf.
func (svc *service) redirect(ctx context.Context, asker profile.Profile, message string) Reply {
	q, _, err := svc.syncSvc.Ask(ctx, asker.ID, message)
	if err != nil {
		svc.logger.Error("posting question to SyncSpot", pkgerrors.Wrap(err, "posting question to SyncSpot"), asker.Person())
		svc.metrics.IncChatOutcome(core.ChatNoAnswer)
		return Reply{Response: noAnswerResponse, NoAnswer: true, Question: message}
	}

	svc.metrics.IncChatOutcome(core.ChatRedirected)
	return Reply{
		Response:   redirectResponse,
		Redirect:   RedirectSyncSpot,
		NoAnswer:   true,
		Question:   q.Question,
		QuestionID: q.ID,
	}
}
