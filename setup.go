package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Write API keys and providers to config.yaml",
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("file")
		RunSetup(path)
	},
}

func init() {
	setupCmd.Flags().String("file", "config.yaml", "Config file to write")
}

type setupAnswers struct {
	DeepgramAPIKey    string
	GeminiAPIKey      string
	YouTubeAPIKey     string
	TranslateProvider string
	TTSProvider       string
	SourceLanguage    string
	TargetLanguage    string
}

func RunSetup(path string) {
	mainLogger, _, _, _, _, _ := createLoggers()
	mainLogger.Info("setup", "file", path)

	answers := setupAnswers{
		DeepgramAPIKey:    viper.GetString("deepgram_api_key"),
		GeminiAPIKey:      viper.GetString("gemini_api_key"),
		YouTubeAPIKey:     viper.GetString("youtube_api_key"),
		TranslateProvider: viper.GetString("translate.provider"),
		TTSProvider:       viper.GetString("tts.provider"),
		SourceLanguage:    viper.GetString("source_language"),
		TargetLanguage:    viper.GetString("target_language"),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Enter your Deepgram API Key").
				EchoMode(huh.EchoModePassword).
				Value(&answers.DeepgramAPIKey),
			huh.NewInput().
				Title("Enter your Google Cloud (Gemini) API Key").
				EchoMode(huh.EchoModePassword).
				Value(&answers.GeminiAPIKey),
			huh.NewInput().
				Title("Enter your YouTube Data API Key").
				EchoMode(huh.EchoModePassword).
				Value(&answers.YouTubeAPIKey),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Translation provider").
				Options(huh.NewOptions("gemini", "openai")...).
				Value(&answers.TranslateProvider),
			huh.NewSelect[string]().
				Title("Voice provider").
				Options(huh.NewOptions("deepgram", "elevenlabs")...).
				Value(&answers.TTSProvider),
			huh.NewInput().
				Title("Speaker language code").
				Value(&answers.SourceLanguage),
			huh.NewInput().
				Title("Listener language code").
				Value(&answers.TargetLanguage),
		),
	)

	if err := form.Run(); err != nil {
		mainLogger.Fatal("setup form", "error", err)
	}

	if err := writeSetup(path, answers); err != nil {
		mainLogger.Fatal("save config", "error", err)
	}

	mainLogger.Info("setup completed", "file", path)
}

// writeSetup merges the answers into the config file at path, keeping any
// settings it already has.
func writeSetup(path string, answers setupAnswers) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("deepgram_api_key", answers.DeepgramAPIKey)
	set("gemini_api_key", answers.GeminiAPIKey)
	set("youtube_api_key", answers.YouTubeAPIKey)
	set("translate.provider", answers.TranslateProvider)
	set("tts.provider", answers.TTSProvider)
	set("source_language", answers.SourceLanguage)
	set("target_language", answers.TargetLanguage)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
