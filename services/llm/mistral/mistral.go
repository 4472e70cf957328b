// Package mistral talks to Mistral's OpenAI-compatible chat completions API.
package mistral

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/pkg/errors"

	"github.com/campusbuddy/helpdesk/core"
)

const DefaultBaseURL = "https://api.mistral.ai/v1/"

var ErrEmptyResponse = errors.New("mistral: no choices in response")

type Options struct {
	APIKey  string
	BaseURL string
	// Model is used when the request does not name one.
	Model      string
	MaxRetries int
	HTTPClient *http.Client
}

type service struct {
	name   string
	model  string
	client *openai.Client
}

var _ core.LLMService = (*service)(nil)

// NewService returns a Mistral-backed LLMService. Without an API key every call fails
// with core.ErrProviderNotConfigured.
func NewService(name string, opts Options) core.LLMService {
	svc := &service{name: name, model: opts.Model}
	if opts.APIKey == "" {
		return svc
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(opts.MaxRetries),
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	client := openai.NewClient(reqOpts...)
	svc.client = &client
	return svc
}

func (svc *service) Name() string { return svc.name }

func (svc *service) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	if svc.client == nil {
		return "", core.ErrProviderNotConfigured
	}

	model := req.Model
	if model == "" {
		model = svc.model
	}
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages(req),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.TopP > 0 {
		params.TopP = openai.Float(req.TopP)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := svc.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", errors.Wrapf(err, "%s: chat completion", svc.name)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func messages(req core.CompletionRequest) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	if req.Image == nil {
		return append(msgs, openai.UserMessage(req.Prompt))
	}
	return append(msgs, openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(req.Prompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: DataURL(req.Image.MIMEType, req.Image.Data),
		}),
	}))
}

// DataURL inlines data as a base64 data URL.
func DataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
