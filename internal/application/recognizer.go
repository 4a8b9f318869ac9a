package application

import (
	"context"
	"errors"
	"log/slog"

	"indigo/internal/domain"
)

// ErrSourceClosed is returned by audio sources that will not produce any
// further captures.
var ErrSourceClosed = errors.New("audio source closed")

// AudioRecognizer turns captures from an AudioSource into utterances, one per
// RecognizeOnce call.
type AudioRecognizer struct {
	audio  AudioSource
	stt    SpeechToText
	logger *slog.Logger
}

func NewAudioRecognizer(audio AudioSource, stt SpeechToText, logger *slog.Logger) *AudioRecognizer {
	return &AudioRecognizer{
		audio:  audio,
		stt:    stt,
		logger: logger,
	}
}

func (r *AudioRecognizer) Start(ctx context.Context) error {
	r.logger.Info("starting audio source", "source", r.audio.Name())
	return r.audio.Start(ctx)
}

func (r *AudioRecognizer) Stop() error {
	return r.audio.Stop()
}

func (r *AudioRecognizer) RecognizeOnce(ctx context.Context) (domain.Utterance, error) {
	audioData, err := r.audio.NextCommand(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Utterance{}, ctx.Err()
		}
		if errors.Is(err, ErrSourceClosed) {
			return domain.Canceled(domain.CancellationEndOfStream, ""), nil
		}
		return domain.Canceled(domain.CancellationError, "getting audio: "+err.Error()), nil
	}

	if len(audioData) == 0 {
		return domain.NoMatch(""), nil
	}

	if text, ok := isTextCommand(audioData); ok {
		r.logger.Info("received text command directly", "text", text)
		return domain.Recognized(text), nil
	}

	r.logger.Debug("received audio", "bytes", len(audioData))

	utterance, err := r.stt.Transcribe(ctx, audioData)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Utterance{}, ctx.Err()
		}
		return domain.Canceled(domain.CancellationError, "transcribing: "+err.Error()), nil
	}
	return utterance, nil
}

func isTextCommand(data []byte) (string, bool) {
	if len(data) > len(domain.TextCommandPrefix) && string(data[:len(domain.TextCommandPrefix)]) == domain.TextCommandPrefix {
		return string(data[len(domain.TextCommandPrefix):]), true
	}
	return "", false
}
