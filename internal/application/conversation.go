package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"indigo/internal/domain"
)

// ErrRecognitionUnavailable is returned by Controller.Run once the configured
// number of consecutive recognition cancellations has been reached.
var ErrRecognitionUnavailable = errors.New("speech recognition unavailable")

const (
	DefaultAcknowledgement = "Ok, I'm listening."
	DefaultFarewell        = "You're Welcome"
)

// RoundTrip is the assistant side of the conversation.
type RoundTrip interface {
	AskAndSpeak(ctx context.Context, prompt string) error
}

// Controller drives the listen, classify, act loop.
type Controller struct {
	recognizer SpeechRecognizer
	assistant  RoundTrip
	logger     *slog.Logger

	phrases          domain.Phrases
	farewell         string
	farewellSpeaker  Speaker
	maxCancellations int

	state         domain.ConversationState
	cancellations int
}

type ControllerOption func(*Controller)

func WithPhrases(p domain.Phrases) ControllerOption {
	return func(c *Controller) {
		c.phrases = p
	}
}

// WithFarewell sets the reply used for the thanks phrase. When speaker is not
// nil the farewell is spoken as well as logged.
func WithFarewell(reply string, speaker Speaker) ControllerOption {
	return func(c *Controller) {
		if reply != "" {
			c.farewell = reply
		}
		c.farewellSpeaker = speaker
	}
}

// WithMaxConsecutiveCancellations makes Run give up after n cancellations in a
// row. Zero means never.
func WithMaxConsecutiveCancellations(n int) ControllerOption {
	return func(c *Controller) {
		c.maxCancellations = n
	}
}

func NewController(recognizer SpeechRecognizer, assistant RoundTrip, logger *slog.Logger, opts ...ControllerOption) *Controller {
	c := &Controller{
		recognizer: recognizer,
		assistant:  assistant,
		logger:     logger,
		phrases:    domain.DefaultPhrases(),
		farewell:   DefaultFarewell,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() domain.ConversationState {
	return c.state
}

// Run returns nil once the conversation has ended. Any other return is a
// fault the caller has to handle.
func (c *Controller) Run(ctx context.Context) error {
	c.state = domain.ConversationState{}
	c.cancellations = 0

	logger := c.logger.With("conversation_id", uuid.NewString())

	for !c.state.Ended {
		if err := ctx.Err(); err != nil {
			return err
		}

		logger.Info("listening", "hint", fmt.Sprintf("say %q to end the conversation", c.phrases.Stop))

		utterance, err := c.recognizer.RecognizeOnce(ctx)
		if err != nil {
			return fmt.Errorf("recognizing speech: %w", err)
		}

		if err := c.handle(ctx, logger, utterance); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) handle(ctx context.Context, logger *slog.Logger, u domain.Utterance) error {
	next, action := c.state.Apply(u, c.phrases)
	c.state = next

	if action == domain.ActionCanceled {
		c.cancellations++
	} else {
		c.cancellations = 0
	}

	switch action {
	case domain.ActionCanceled:
		reportCancellation(logger, u.Cancellation)
		if c.maxCancellations > 0 && c.cancellations >= c.maxCancellations {
			return fmt.Errorf("%w: %d consecutive cancellations", ErrRecognitionUnavailable, c.cancellations)
		}

	case domain.ActionNoMatch:
		logger.Info("no speech could be recognized", "text", u.Text)

	case domain.ActionStop:
		logger.Info("recognized speech", "text", u.Text)
		logger.Info("conversation ended")

	case domain.ActionAttend:
		logger.Info(DefaultAcknowledgement)

	case domain.ActionFarewell:
		logger.Info(c.farewell)
		if c.farewellSpeaker != nil {
			ReportSynthesis(logger, c.farewellSpeaker.Speak(ctx, c.farewell))
		}

	case domain.ActionDispatch:
		logger.Info("recognized speech", "text", u.Text)
		if err := c.assistant.AskAndSpeak(ctx, u.Text); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("assistant round trip", "error", err)
		}

	case domain.ActionIgnore:
		logger.Debug("ignoring speech without attention", "text", u.Text)
	}
	return nil
}

func reportCancellation(logger *slog.Logger, c *domain.Cancellation) {
	if c == nil {
		logger.Warn("speech recognition canceled")
		return
	}
	if c.Reason == domain.CancellationError {
		logger.Warn("speech recognition canceled", "reason", c.Reason, "error_details", c.ErrorDetails)
		return
	}
	logger.Warn("speech recognition canceled", "reason", c.Reason)
}
