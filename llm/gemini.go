package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-1.5-flash"

type GeminiLanguageModel struct {
	client *genai.Client
	model  string
}

func NewGeminiLanguageModel(
	ctx context.Context,
	apiKey string,
	model string,
) (*GeminiLanguageModel, error) {
	return NewGeminiLanguageModelWithConfig(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model)
}

func NewGeminiLanguageModelWithConfig(
	ctx context.Context,
	config *genai.ClientConfig,
	model string,
) (*GeminiLanguageModel, error) {
	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiLanguageModel{client: client, model: model}, nil
}

// Close is a no-op; the client holds no connections of its own.
func (g *GeminiLanguageModel) Close() error {
	return nil
}

func generateConfig(req *CompletionRequest) *genai.GenerateContentConfig {
	temperature := req.Temperature
	cfg := &genai.GenerateContentConfig{
		Temperature: &temperature,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(req.SystemPrompt)},
		},
		SafetySettings: []*genai.SafetySetting{
			{
				Category:  genai.HarmCategoryHarassment,
				Threshold: genai.HarmBlockThresholdBlockOnlyHigh,
			},
			{
				Category:  genai.HarmCategoryHateSpeech,
				Threshold: genai.HarmBlockThresholdBlockOnlyHigh,
			},
			{
				Category:  genai.HarmCategoryDangerousContent,
				Threshold: genai.HarmBlockThresholdBlockOnlyHigh,
			},
		},
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.FrequencyPenalty != 0 {
		penalty := req.FrequencyPenalty
		cfg.FrequencyPenalty = &penalty
	}
	return cfg
}

func (g *GeminiLanguageModel) Complete(
	ctx context.Context,
	req *CompletionRequest,
) (string, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(req.UserMessage),
		generateConfig(req),
	)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates: %w", ErrEmptyResponse)
	}

	var text strings.Builder
	candidate := resp.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" {
				text.WriteString(part.Text)
			}
		}
	}

	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", fmt.Errorf(
			"finish reason %s: %w",
			candidate.FinishReason,
			ErrEmptyResponse,
		)
	}
	return out, nil
}
