package application

import (
	"context"
	"fmt"

	"indigo/internal/domain"
)

// SpeechToText turns one captured audio payload into an utterance. Failures the
// service reports about the audio itself come back as NoMatch or Canceled
// utterances; the error return is reserved for context cancellation.
type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte) (domain.Utterance, error)
}

// SpeechRecognizer yields one utterance per call, blocking until it has one.
type SpeechRecognizer interface {
	RecognizeOnce(ctx context.Context) (domain.Utterance, error)
}

// NoopSTT is a no-op speech-to-text client for text-only sources.
// It cancels every recognition that carries actual audio data.
type NoopSTT struct{}

func (n *NoopSTT) Transcribe(ctx context.Context, audio []byte) (domain.Utterance, error) {
	if err := ctx.Err(); err != nil {
		return domain.Utterance{}, err
	}
	return domain.Canceled(domain.CancellationError, fmt.Sprintf("speech-to-text not configured, dropped %d bytes of audio", len(audio))), nil
}
