package application

import (
	"context"
	"errors"
	"log/slog"

	"indigo/internal/domain"
)

// Synthesizer renders text as a WAV payload with a fixed voice.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Speaker says text out loud and reports how that went.
type Speaker interface {
	Speak(ctx context.Context, text string) domain.SynthesisResult
}

type SpeechOutput struct {
	synth  Synthesizer
	sink   AudioSink
	logger *slog.Logger
}

func NewSpeechOutput(synth Synthesizer, sink AudioSink, logger *slog.Logger) *SpeechOutput {
	return &SpeechOutput{
		synth:  synth,
		sink:   sink,
		logger: logger,
	}
}

func (s *SpeechOutput) Speak(ctx context.Context, text string) domain.SynthesisResult {
	wav, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		return aborted(text, err)
	}

	s.logger.Debug("synthesized speech", "bytes", len(wav), "sink", s.sink.Name())

	if err := s.sink.Play(ctx, wav); err != nil {
		return aborted(text, err)
	}
	return domain.SynthesisDone(text)
}

func aborted(text string, err error) domain.SynthesisResult {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.SynthesisAborted(text, domain.CancellationCancelledByUser, "")
	}
	return domain.SynthesisAborted(text, domain.CancellationError, err.Error())
}
