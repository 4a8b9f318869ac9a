package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"indigo/config"
	"indigo/internal/application"
	"indigo/internal/domain"
	"indigo/internal/infra/anthropic"
	"indigo/internal/infra/audio"
	"indigo/internal/infra/azure"
	"indigo/internal/infra/gemini"
	"indigo/internal/infra/homeassistant"
	"indigo/internal/infra/openai"
	"indigo/internal/infra/pushover"
)

func main() {
	configPath := flag.String("config", "", "path to config file (environment only when empty)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	reportFault(logger, guard(func() error {
		return run(ctx, cfg, logger)
	}))
}

// guard turns a panic in fn into an error so it is reported like any other
// fault.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// reportFault logs whatever ended the conversation. The process exits
// normally either way.
func reportFault(logger *slog.Logger, err error) {
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		logger.Info("conversation interrupted")
	default:
		logger.Error("unhandled fault", "error", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

// run wires the components and drives one conversation.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	source := createAudioSource(cfg.Audio, logger)
	recognizer := application.NewAudioRecognizer(source, createSpeechToText(cfg), logger)

	synthesizer := azure.NewSynthesisClient(cfg.Speech.Key, cfg.Speech.Region, cfg.Speech.Voice)
	output := application.NewSpeechOutput(synthesizer, createAudioSink(cfg.Audio, logger), logger)

	assistant := application.NewAssistant(
		createCompleter(cfg.LLM),
		output,
		createNotifier(cfg),
		logger,
	).WithMaxTokens(cfg.LLM.MaxTokens)

	var farewellSpeaker application.Speaker
	if cfg.Conversation.SpeakFarewell {
		farewellSpeaker = output
	}

	controller := application.NewController(recognizer, assistant, logger,
		application.WithPhrases(domain.Phrases{
			Stop:   cfg.Conversation.StopPhrase,
			Wake:   cfg.Conversation.WakePhrase,
			Thanks: cfg.Conversation.ThanksPhrase,
		}),
		application.WithFarewell(cfg.Conversation.FarewellReply, farewellSpeaker),
		application.WithMaxConsecutiveCancellations(cfg.Conversation.MaxConsecutiveCancellations),
	)

	if err := recognizer.Start(ctx); err != nil {
		return fmt.Errorf("starting audio source: %w", err)
	}
	defer func() {
		if stopErr := recognizer.Stop(); stopErr != nil {
			logger.Warn("stopping audio source", "error", stopErr)
		}
	}()

	logger.Info("starting indigo",
		"audio_source", source.Name(),
		"audio_output", cfg.Audio.Output,
		"speech_provider", cfg.Speech.Provider,
		"llm_provider", cfg.LLM.Provider,
	)

	return controller.Run(ctx)
}

func createAudioSource(cfg config.AudioConfig, logger *slog.Logger) application.AudioSource {
	switch cfg.Source {
	case "http":
		return audio.NewHTTPSource(cfg.HTTPAddr, cfg.AuthToken, logger)
	case "file":
		return audio.NewFileSource(cfg.FileDir, logger)
	default:
		return audio.NewMicrophoneSource(cfg.SampleRate, logger)
	}
}

func createAudioSink(cfg config.AudioConfig, logger *slog.Logger) application.AudioSink {
	if cfg.Output == "none" {
		return audio.NewDiscardSink(logger)
	}
	return audio.NewSpeaker(logger)
}

func createSpeechToText(cfg *config.Config) application.SpeechToText {
	switch cfg.Speech.Provider {
	case "whisper":
		return openai.NewWhisperClient(cfg.Whisper.APIKey, cfg.Whisper.Language)
	case "none":
		return &application.NoopSTT{}
	}
	return azure.NewSpeechClient(cfg.Speech.Key, cfg.Speech.Region, cfg.Speech.Language).WithSampleRate(cfg.Audio.SampleRate)
}

func createCompleter(cfg config.LLMConfig) application.Completer {
	switch cfg.Provider {
	case "openai":
		return openai.NewCompletionClient(cfg.APIKey, cfg.Model, cfg.Endpoint)
	case "anthropic":
		return anthropic.NewClaudeClient(cfg.APIKey, cfg.Model)
	case "gemini":
		return gemini.NewClient(cfg.APIKey, cfg.Model)
	default:
		return openai.NewAzureCompletionClient(cfg.APIKey, cfg.Endpoint, cfg.Deployment)
	}
}

func createNotifier(cfg *config.Config) application.Notifier {
	var notifiers application.MultiNotifier
	if cfg.Pushover.Enabled {
		notifiers = append(notifiers, pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey))
	}
	if cfg.HomeAssistant.Enabled {
		notifiers = append(notifiers, homeassistant.NewClient(cfg.HomeAssistant.URL, cfg.HomeAssistant.Token, cfg.HomeAssistant.NotifyService))
	}

	switch len(notifiers) {
	case 0:
		return &application.NoopNotifier{}
	case 1:
		return notifiers[0]
	default:
		return notifiers
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
