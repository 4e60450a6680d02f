package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"node.town/relay/config"
	"node.town/relay/llm"
	"node.town/relay/tts"
)

func TestMask(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "(not set)"},
		{"short", "*****"},
		{"abcd1234efgh", "abcd********"},
	}
	for _, tt := range tests {
		if got := mask(tt.in); got != tt.want {
			t.Errorf("mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConfigRowsMaskSecrets(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("deepgram_api_key", "dg-secret-value")
	v.Set("prompt.persona", "hidden")

	var out bytes.Buffer
	renderConfig(&out, v)

	if strings.Contains(out.String(), "dg-secret-value") {
		t.Error("secret printed in clear")
	}
	if !strings.Contains(out.String(), "dg-s") {
		t.Error("masked secret missing")
	}
	for _, row := range configRows(v) {
		if strings.HasPrefix(row[0], "prompt") {
			t.Errorf("prompt row listed: %v", row)
		}
	}
}

func TestWriteSetupMergesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: 9000\ngemini_api_key: old\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	err := writeSetup(path, setupAnswers{
		DeepgramAPIKey:    "dg",
		TranslateProvider: "openai",
	})
	if err != nil {
		t.Fatalf("writeSetup: %v", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}
	if v.GetInt("port") != 9000 {
		t.Errorf("port = %d, want existing value kept", v.GetInt("port"))
	}
	if v.GetString("gemini_api_key") != "old" {
		t.Errorf("empty answer overwrote gemini key: %q", v.GetString("gemini_api_key"))
	}
	if v.GetString("deepgram_api_key") != "dg" || v.GetString("translate.provider") != "openai" {
		t.Errorf("answers not written: %v", v.AllSettings())
	}
}

func TestWriteSetupNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := writeSetup(path, setupAnswers{YouTubeAPIKey: "yt"}); err != nil {
		t.Fatalf("writeSetup: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "youtube_api_key: yt") {
		t.Errorf("config file = %s", raw)
	}
}

func TestNewSpeechGenerator(t *testing.T) {
	if _, ok := newSpeechGenerator(&config.Config{TTSProvider: "deepgram", DeepgramAPIKey: "dg"}).(*tts.DeepgramSpeechGenerator); !ok {
		t.Error("deepgram provider not selected")
	}
	if _, ok := newSpeechGenerator(&config.Config{TTSProvider: "elevenlabs", ElevenLabsAPIKey: "el"}).(*tts.ElevenLabsSpeechGenerator); !ok {
		t.Error("elevenlabs provider not selected")
	}
}

func TestNewLanguageModelOpenAI(t *testing.T) {
	model, closeModel := newLanguageModel(
		context.Background(),
		&config.Config{TranslateProvider: "openai", OpenAIAPIKey: "sk"},
		nil,
	)
	defer closeModel()
	if _, ok := model.(*llm.OpenAILanguageModel); !ok {
		t.Errorf("model = %T", model)
	}
}

func TestUnavailableModel(t *testing.T) {
	want := errors.New("no key")
	_, err := unavailableModel{want}.Complete(context.Background(), &llm.CompletionRequest{})
	if !errors.Is(err, want) {
		t.Errorf("err = %v", err)
	}
}
