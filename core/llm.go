package core

import (
	"context"
	"errors"
)

// ErrProviderNotConfigured is returned by LLM services missing their API key.
var ErrProviderNotConfigured = errors.New("llm provider not configured")

type (
	// LLMService generates a completion from a prompt (and optionally an image) using a hosted model.
	LLMService interface {
		Name() string
		Complete(ctx context.Context, req CompletionRequest) (string, error)
	}

	CompletionRequest struct {
		System string
		Prompt string
		Image  *ImageInput // vision models only

		// zero values leave the provider defaults
		Model       string
		Temperature float64
		TopK        float64
		TopP        float64
		MaxTokens   int
	}

	ImageInput struct {
		MIMEType string
		Data     []byte
	}
)
