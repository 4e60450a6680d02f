package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("empty response from language model")

type LanguageModel interface {
	Complete(ctx context.Context, req *CompletionRequest) (string, error)
}

type CompletionRequest struct {
	SystemPrompt     string
	UserMessage      string
	MaxTokens        int
	Temperature      float32
	FrequencyPenalty float32
}

// GenerationParams are the sampling settings shared by every request a
// caller makes.
type GenerationParams struct {
	MaxTokens        int     `mapstructure:"max_tokens"`
	Temperature      float32 `mapstructure:"temperature"`
	FrequencyPenalty float32 `mapstructure:"frequency_penalty"`
}

func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		MaxTokens:        200,
		Temperature:      0.1,
		FrequencyPenalty: 0.5,
	}
}

func (p GenerationParams) Request(system, user string) *CompletionRequest {
	return &CompletionRequest{
		SystemPrompt:     system,
		UserMessage:      user,
		MaxTokens:        p.MaxTokens,
		Temperature:      p.Temperature,
		FrequencyPenalty: p.FrequencyPenalty,
	}
}
