package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"node.town/relay/llm"
	"node.town/relay/relay"
	"node.town/relay/stt"
	"node.town/relay/translate"
)

type Config struct {
	DeepgramAPIKey   string
	GeminiAPIKey     string
	YouTubeAPIKey    string
	OpenAIAPIKey     string
	ElevenLabsAPIKey string

	Port            int
	LogLevel        string
	ShutdownTimeout time.Duration

	// ISO codes, used by recognition and the language guardrail.
	SourceLanguage string
	TargetLanguage string

	STT stt.Options

	TranslateProvider string
	TranslateModel    string
	Generation        llm.GenerationParams
	Prompt            translate.Prompt

	TTSProvider string
	TTSVoice    string

	Relay relay.Options
}

// SetDefaults registers every key with its default so that environment
// variables and config.yaml entries are both picked up by Load.
func SetDefaults(v *viper.Viper) {
	sttDefaults := stt.DefaultOptions()
	gen := llm.DefaultGenerationParams()
	relayDefaults := relay.DefaultOptions()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range secretKeys {
		v.SetDefault(key, "")
	}

	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("shutdown_timeout", 15*time.Second)

	v.SetDefault("source_language", sttDefaults.Language)
	v.SetDefault("target_language", "en")

	v.SetDefault("stt.model", sttDefaults.Model)
	v.SetDefault("stt.endpointing", sttDefaults.Endpointing)
	v.SetDefault("stt.encoding", "")
	v.SetDefault("stt.sample_rate", 0)
	v.SetDefault("stt.channels", 0)

	v.SetDefault("translate.provider", "gemini")
	v.SetDefault("translate.model", "")
	v.SetDefault("translate.max_tokens", gen.MaxTokens)
	v.SetDefault("translate.temperature", gen.Temperature)
	v.SetDefault("translate.frequency_penalty", gen.FrequencyPenalty)

	v.SetDefault("tts.provider", "deepgram")
	v.SetDefault("tts.voice", "")

	v.SetDefault("relay.broadcast_partials", relayDefaults.BroadcastPartials)
	v.SetDefault("relay.require_source_role", relayDefaults.RequireSourceRole)
	v.SetDefault("relay.sequential", relayDefaults.Sequential)
	v.SetDefault("relay.write_timeout", relayDefaults.WriteTimeout)
}

var secretKeys = []string{
	"deepgram_api_key",
	"gemini_api_key",
	"youtube_api_key",
	"openai_api_key",
	"elevenlabs_api_key",
}

// IsSecret reports whether key holds a credential.
func IsSecret(key string) bool {
	for _, k := range secretKeys {
		if k == key {
			return true
		}
	}
	return false
}

func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

func LoadFrom(v *viper.Viper) (*Config, error) {
	c := &Config{
		DeepgramAPIKey:   v.GetString("deepgram_api_key"),
		GeminiAPIKey:     v.GetString("gemini_api_key"),
		YouTubeAPIKey:    v.GetString("youtube_api_key"),
		OpenAIAPIKey:     v.GetString("openai_api_key"),
		ElevenLabsAPIKey: v.GetString("elevenlabs_api_key"),

		Port:            v.GetInt("port"),
		LogLevel:        v.GetString("log_level"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),

		SourceLanguage: v.GetString("source_language"),
		TargetLanguage: v.GetString("target_language"),

		STT: stt.Options{
			Model:       v.GetString("stt.model"),
			Language:    v.GetString("source_language"),
			Encoding:    v.GetString("stt.encoding"),
			SampleRate:  v.GetInt("stt.sample_rate"),
			Channels:    v.GetInt("stt.channels"),
			Endpointing: v.GetInt("stt.endpointing"),
		},

		TranslateProvider: strings.ToLower(v.GetString("translate.provider")),
		TranslateModel:    v.GetString("translate.model"),
		Generation: llm.GenerationParams{
			MaxTokens:        v.GetInt("translate.max_tokens"),
			Temperature:      float32(v.GetFloat64("translate.temperature")),
			FrequencyPenalty: float32(v.GetFloat64("translate.frequency_penalty")),
		},

		TTSProvider: strings.ToLower(v.GetString("tts.provider")),
		TTSVoice:    v.GetString("tts.voice"),

		Relay: relay.Options{
			BroadcastPartials: v.GetBool("relay.broadcast_partials"),
			RequireSourceRole: v.GetBool("relay.require_source_role"),
			Sequential:        v.GetBool("relay.sequential"),
			WriteTimeout:      v.GetDuration("relay.write_timeout"),
		},
	}

	if err := v.UnmarshalKey("prompt", &c.Prompt); err != nil {
		return nil, fmt.Errorf("failed to read prompt: %w", err)
	}

	switch c.TranslateProvider {
	case "gemini", "openai":
	default:
		return nil, fmt.Errorf("unknown translate.provider %q", c.TranslateProvider)
	}
	switch c.TTSProvider {
	case "deepgram", "elevenlabs":
	default:
		return nil, fmt.Errorf("unknown tts.provider %q", c.TTSProvider)
	}

	return c, nil
}

// Missing lists the environment variables that must be set for the chosen
// providers but are empty.
func (c *Config) Missing() []string {
	var missing []string
	if c.DeepgramAPIKey == "" {
		missing = append(missing, "DEEPGRAM_API_KEY")
	}
	switch c.TranslateProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	}
	if c.TTSProvider == "elevenlabs" && c.ElevenLabsAPIKey == "" {
		missing = append(missing, "ELEVENLABS_API_KEY")
	}
	if c.YouTubeAPIKey == "" {
		missing = append(missing, "YOUTUBE_API_KEY")
	}
	return missing
}
