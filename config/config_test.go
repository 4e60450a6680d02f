package config

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func load(t *testing.T, yaml string) (*Config, error) {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewBufferString(yaml)); err != nil {
		t.Fatalf("read config: %v", err)
	}
	return LoadFrom(v)
}

func TestDefaults(t *testing.T) {
	c, err := load(t, "")
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if c.Port != 8080 {
		t.Errorf("port = %d", c.Port)
	}
	if c.SourceLanguage != "es" || c.STT.Language != "es" || c.TargetLanguage != "en" {
		t.Errorf("languages = %q/%q/%q", c.SourceLanguage, c.STT.Language, c.TargetLanguage)
	}
	if c.STT.Endpointing != 300 {
		t.Errorf("endpointing = %d", c.STT.Endpointing)
	}
	if c.TranslateProvider != "gemini" || c.TTSProvider != "deepgram" {
		t.Errorf("providers = %q/%q", c.TranslateProvider, c.TTSProvider)
	}
	if c.Generation.MaxTokens != 200 || c.Generation.Temperature != 0.1 || c.Generation.FrequencyPenalty != 0.5 {
		t.Errorf("generation = %+v", c.Generation)
	}
	if c.Relay.WriteTimeout != 10*time.Second || c.Relay.Sequential {
		t.Errorf("relay = %+v", c.Relay)
	}
	if c.Prompt.TargetLanguage != "" {
		t.Errorf("prompt should be empty without a prompt section, got %+v", c.Prompt)
	}
}

func TestFileOverrides(t *testing.T) {
	c, err := load(t, `
deepgram_api_key: dg
source_language: pt
translate:
  provider: OpenAI
  temperature: 0.3
tts:
  provider: elevenlabs
relay:
  sequential: true
  broadcast_partials: true
prompt:
  target_language: French
  examples:
    - input: "Bom dia"
      output: "Bonjour"
`)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if c.DeepgramAPIKey != "dg" {
		t.Errorf("deepgram key = %q", c.DeepgramAPIKey)
	}
	if c.STT.Language != "pt" {
		t.Errorf("stt language = %q", c.STT.Language)
	}
	if c.TranslateProvider != "openai" {
		t.Errorf("provider = %q", c.TranslateProvider)
	}
	if c.Generation.Temperature < 0.29 || c.Generation.Temperature > 0.31 {
		t.Errorf("temperature = %v", c.Generation.Temperature)
	}
	if !c.Relay.Sequential || !c.Relay.BroadcastPartials {
		t.Errorf("relay = %+v", c.Relay)
	}
	if c.Prompt.TargetLanguage != "French" {
		t.Errorf("prompt target = %q", c.Prompt.TargetLanguage)
	}
	if len(c.Prompt.Examples) != 1 || c.Prompt.Examples[0].Output != "Bonjour" {
		t.Errorf("prompt examples = %+v", c.Prompt.Examples)
	}
}

func TestUnknownProvider(t *testing.T) {
	if _, err := load(t, "translate:\n  provider: bard\n"); err == nil {
		t.Error("expected an error for an unknown translate provider")
	}
	if _, err := load(t, "tts:\n  provider: robot\n"); err == nil {
		t.Error("expected an error for an unknown tts provider")
	}
}

func TestMissing(t *testing.T) {
	tests := []struct {
		name string
		c    Config
		want []string
	}{
		{
			name: "nothing set",
			c:    Config{TranslateProvider: "gemini", TTSProvider: "deepgram"},
			want: []string{"DEEPGRAM_API_KEY", "GEMINI_API_KEY", "YOUTUBE_API_KEY"},
		},
		{
			name: "all set",
			c: Config{
				DeepgramAPIKey:    "a",
				GeminiAPIKey:      "b",
				YouTubeAPIKey:     "c",
				TranslateProvider: "gemini",
				TTSProvider:       "deepgram",
			},
		},
		{
			name: "alternative providers",
			c: Config{
				DeepgramAPIKey:    "a",
				GeminiAPIKey:      "b",
				YouTubeAPIKey:     "c",
				TranslateProvider: "openai",
				TTSProvider:       "elevenlabs",
			},
			want: []string{"OPENAI_API_KEY", "ELEVENLABS_API_KEY"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Missing(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Missing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsSecret(t *testing.T) {
	if !IsSecret("gemini_api_key") || IsSecret("port") {
		t.Error("IsSecret misclassifies keys")
	}
}
