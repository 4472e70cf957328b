// Package gemini talks to the Gemini API through the genai SDK.
package gemini

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/campusbuddy/helpdesk/core"
)

var ErrEmptyResponse = errors.New("gemini: empty response")

type Options struct {
	APIKey string
	// BaseURL overrides the Gemini API endpoint.
	BaseURL string
	// Model is used when the request does not name one.
	Model      string
	HTTPClient *http.Client
}

type service struct {
	name   string
	model  string
	client *genai.Client
}

var _ core.LLMService = (*service)(nil)

// NewService returns a Gemini-backed LLMService. Without an API key every call fails
// with core.ErrProviderNotConfigured.
func NewService(ctx context.Context, name string, opts Options) (core.LLMService, error) {
	svc := &service{name: name, model: opts.Model}
	if opts.APIKey == "" {
		return svc, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: opts.BaseURL},
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating gemini client")
	}
	svc.client = client
	return svc, nil
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
	resp, err := svc.client.Models.GenerateContent(ctx, model, contents(req), config(req))
	if err != nil {
		return "", errors.Wrapf(err, "%s: generate content", svc.name)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func contents(req core.CompletionRequest) []*genai.Content {
	if req.Image == nil {
		return genai.Text(req.Prompt)
	}
	return []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(req.Prompt),
			genai.NewPartFromBytes(req.Image.Data, req.Image.MIMEType),
		}, genai.RoleUser),
	}
}

func config(req core.CompletionRequest) *genai.GenerateContentConfig {
	conf := new(genai.GenerateContentConfig)
	if req.System != "" {
		conf.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Temperature > 0 {
		conf.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.TopK > 0 {
		conf.TopK = genai.Ptr(float32(req.TopK))
	}
	if req.TopP > 0 {
		conf.TopP = genai.Ptr(float32(req.TopP))
	}
	if req.MaxTokens > 0 {
		conf.MaxOutputTokens = int32(req.MaxTokens)
	}
	return conf
}
