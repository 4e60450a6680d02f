package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const DefaultOpenAIModel = openai.GPT4oMini

type OpenAILanguageModel struct {
	client *openai.Client
	model  string
}

func NewOpenAILanguageModel(apiKey string, model string) *OpenAILanguageModel {
	return NewOpenAILanguageModelWithConfig(openai.DefaultConfig(apiKey), model)
}

func NewOpenAILanguageModelWithConfig(
	config openai.ClientConfig,
	model string,
) *OpenAILanguageModel {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAILanguageModel{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (o *OpenAILanguageModel) Complete(
	ctx context.Context,
	req *CompletionRequest,
) (string, error) {
	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: o.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: req.SystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: req.UserMessage,
				},
			},
			MaxTokens:        req.MaxTokens,
			Temperature:      req.Temperature,
			FrequencyPenalty: req.FrequencyPenalty,
		},
	)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices: %w", ErrEmptyResponse)
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf(
			"finish reason %s: %w",
			resp.Choices[0].FinishReason,
			ErrEmptyResponse,
		)
	}
	return out, nil
}
