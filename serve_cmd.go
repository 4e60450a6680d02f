package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"node.town/relay/config"
	"node.town/relay/lang"
	"node.town/relay/llm"
	"node.town/relay/relay"
	"node.town/relay/stt"
	"node.town/relay/translate"
	"node.town/relay/tts"
	"node.town/relay/www"
	"node.town/relay/youtube"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the relay server",
	Long: `Start the websocket relay together with the liveness check and the
YouTube live status endpoint.`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) {
	mainLogger, relayLogger, hearLogger, tranLogger, talkLogger, httpLogger := createLoggers()

	cfg, err := config.Load()
	if err != nil {
		mainLogger.Fatal("load config", "error", err)
	}

	// Missing keys are not fatal: the server starts and the affected
	// connections or requests fail on their own.
	for _, env := range cfg.Missing() {
		mainLogger.Error("missing configuration", "env", env)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	model, closeModel := newLanguageModel(ctx, cfg, tranLogger)
	defer closeModel()

	prompt := cfg.Prompt
	if prompt.SourceLanguage == "" {
		prompt.SourceLanguage = lang.Name(cfg.SourceLanguage)
	}
	if prompt.TargetLanguage == "" {
		prompt.TargetLanguage = lang.Name(cfg.TargetLanguage)
	}

	translator := translate.New(
		model,
		lang.NewDetector(cfg.SourceLanguage, cfg.TargetLanguage),
		prompt,
		cfg.Generation,
		tranLogger,
	)

	speech := newSpeechGenerator(cfg)
	talkLogger.Info("voice", "provider", cfg.TTSProvider)

	recognition := stt.NewDeepgramClient(cfg.DeepgramAPIKey, cfg.STT, hearLogger)

	server := relay.NewServer(recognition, translator, speech, cfg.Relay, relayLogger)

	router := www.NewRouter(
		server,
		youtube.NewClient(cfg.YouTubeAPIKey, httpLogger),
		httpLogger,
	)

	mainLogger.Info(
		"relay",
		"from", cfg.SourceLanguage,
		"to", cfg.TargetLanguage,
		"translator", cfg.TranslateProvider,
	)

	err = www.Serve(
		ctx,
		fmt.Sprintf(":%d", cfg.Port),
		router,
		cfg.ShutdownTimeout,
		httpLogger,
	)
	if err != nil {
		mainLogger.Error("http server", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	mainLogger.Info("shutting down", "peers", server.Peers())
	if err := server.Close(shutdownCtx); err != nil {
		mainLogger.Warn("relay shutdown", "error", err)
	}
}

func newLanguageModel(
	ctx context.Context,
	cfg *config.Config,
	logger *log.Logger,
) (llm.LanguageModel, func()) {
	switch cfg.TranslateProvider {
	case "openai":
		return llm.NewOpenAILanguageModel(cfg.OpenAIAPIKey, cfg.TranslateModel), func() {}
	default:
		model, err := llm.NewGeminiLanguageModel(ctx, cfg.GeminiAPIKey, cfg.TranslateModel)
		if err != nil {
			logger.Error("gemini unavailable", "error", err)
			return unavailableModel{err}, func() {}
		}
		return model, func() { model.Close() }
	}
}

// unavailableModel stands in for a translator that could not be created,
// so every utterance degrades to an empty translation.
type unavailableModel struct {
	err error
}

func (m unavailableModel) Complete(
	ctx context.Context,
	req *llm.CompletionRequest,
) (string, error) {
	return "", m.err
}

func newSpeechGenerator(cfg *config.Config) tts.SpeechGenerator {
	switch cfg.TTSProvider {
	case "elevenlabs":
		return tts.NewElevenLabsSpeechGenerator(cfg.ElevenLabsAPIKey, cfg.TTSVoice)
	default:
		return tts.NewDeepgramSpeechGenerator(cfg.DeepgramAPIKey, cfg.TTSVoice)
	}
}
