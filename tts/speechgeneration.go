package tts

import (
	"context"
	"fmt"
	"time"

	"github.com/haguro/elevenlabs-go"
)

// SpeechGenerator turns one sentence of text into a playable WAV file.
type SpeechGenerator interface {
	TextToSpeech(ctx context.Context, text string) ([]byte, error)
}

const (
	DefaultElevenLabsModel = "eleven_turbo_v2_5"
	DefaultElevenLabsVoice = "pKLLpypGseGMUjkb5fEZ"

	elevenLabsSampleRate = 16000
)

type ElevenLabsSpeechGenerator struct {
	apiKey  string
	voiceID string
	modelID string
	timeout time.Duration
}

func NewElevenLabsSpeechGenerator(
	apiKey string,
	voiceID string,
) *ElevenLabsSpeechGenerator {
	if voiceID == "" {
		voiceID = DefaultElevenLabsVoice
	}
	return &ElevenLabsSpeechGenerator{
		apiKey:  apiKey,
		voiceID: voiceID,
		modelID: DefaultElevenLabsModel,
		timeout: 30 * time.Second,
	}
}

// ElevenLabs only offers headerless PCM, so the samples are wrapped in a
// WAV container before they leave this package.
func (e *ElevenLabsSpeechGenerator) TextToSpeech(
	ctx context.Context,
	text string,
) ([]byte, error) {
	client := elevenlabs.NewClient(ctx, e.apiKey, e.timeout)
	ttsReq := elevenlabs.TextToSpeechRequest{
		Text:    text,
		ModelID: e.modelID,
	}

	pcm, err := client.TextToSpeech(
		e.voiceID,
		ttsReq,
		elevenlabs.OutputFormat(fmt.Sprintf("pcm_%d", elevenLabsSampleRate)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate speech: %w", err)
	}

	return EncodeWAV(pcm, elevenLabsSampleRate, 1), nil
}
