package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"indigo/internal/domain"
)

// DefaultMaxTokens caps the length of every completion.
const DefaultMaxTokens = 100

// Assistant performs the ask-and-speak round trip: one completion request
// followed by one synthesis request.
type Assistant struct {
	completer Completer
	speaker   Speaker
	notifier  Notifier
	maxTokens int
	logger    *slog.Logger
}

func NewAssistant(
	completer Completer,
	speaker Speaker,
	notifier Notifier,
	logger *slog.Logger,
) *Assistant {
	if notifier == nil {
		notifier = &NoopNotifier{}
	}
	return &Assistant{
		completer: completer,
		speaker:   speaker,
		notifier:  notifier,
		maxTokens: DefaultMaxTokens,
		logger:    logger,
	}
}

// WithMaxTokens overrides DefaultMaxTokens. Non-positive values are ignored.
func (a *Assistant) WithMaxTokens(n int) *Assistant {
	if n > 0 {
		a.maxTokens = n
	}
	return a
}

func (a *Assistant) AskAndSpeak(ctx context.Context, prompt string) error {
	reply, err := a.ask(ctx, prompt)
	if err != nil {
		return err
	}

	a.logger.Info("assistant response", "text", reply.Text)

	if err := a.notifier.Notify(ctx, reply.Text); err != nil {
		a.logger.Error("notifying reply", "error", err)
	}

	result := a.speaker.Speak(ctx, reply.Text)
	ReportSynthesis(a.logger, result)
	return nil
}

func (a *Assistant) ask(ctx context.Context, prompt string) (domain.Reply, error) {
	text, err := a.completer.Complete(ctx, prompt, a.maxTokens)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("requesting completion: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Reply{}, errors.New("empty completion")
	}
	return domain.Reply{Text: text}, nil
}

// ReportSynthesis logs the outcome of one synthesis request.
func ReportSynthesis(logger *slog.Logger, result domain.SynthesisResult) {
	switch result.Outcome {
	case domain.SynthesisCompleted:
		logger.Info("speech synthesized to speaker", "text", result.Text)
	case domain.SynthesisCanceled:
		if result.Cancellation == nil {
			logger.Warn("speech synthesis canceled")
			return
		}
		if result.Cancellation.Reason == domain.CancellationError {
			logger.Warn("speech synthesis canceled",
				"reason", result.Cancellation.Reason,
				"error_details", result.Cancellation.ErrorDetails,
			)
			return
		}
		logger.Warn("speech synthesis canceled", "reason", result.Cancellation.Reason)
	}
}
