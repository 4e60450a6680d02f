package tts

import (
	"context"
	"fmt"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/speak/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/pkg/client/speak"
)

const DefaultDeepgramVoice = "aura-asteria-en"

// DeepgramSpeechGenerator uses Deepgram Aura, which shares its API key with
// the speech recognition session.
type DeepgramSpeechGenerator struct {
	apiKey     string
	speak      *api.Client
	model      string
	sampleRate int
}

func NewDeepgramSpeechGenerator(apiKey string, model string) *DeepgramSpeechGenerator {
	if model == "" {
		model = DefaultDeepgramVoice
	}
	c := client.NewREST(apiKey, &interfaces.ClientOptions{})
	return &DeepgramSpeechGenerator{
		apiKey:     apiKey,
		speak:      api.New(c),
		model:      model,
		sampleRate: 24000,
	}
}

func (d *DeepgramSpeechGenerator) TextToSpeech(
	ctx context.Context,
	text string,
) ([]byte, error) {
	if d.apiKey == "" {
		return nil, fmt.Errorf("missing deepgram API key")
	}

	options := &interfaces.SpeakOptions{
		Model:      d.model,
		Encoding:   "linear16",
		Container:  "wav",
		SampleRate: d.sampleRate,
	}

	var buffer interfaces.RawResponse
	if _, err := d.speak.ToStream(ctx, text, options, &buffer); err != nil {
		return nil, fmt.Errorf("failed to generate speech: %w", err)
	}

	if buffer.Len() == 0 {
		return nil, fmt.Errorf("deepgram returned no audio")
	}

	return buffer.Bytes(), nil
}
