//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Speaker plays WAV payloads on the default output device.
type Speaker struct {
	logger *slog.Logger
	mu     sync.Mutex
}

func NewSpeaker(logger *slog.Logger) *Speaker {
	return &Speaker{logger: logger}
}

func (s *Speaker) Name() string {
	return "speaker"
}

func (s *Speaker) Play(ctx context.Context, wav []byte) error {
	pcm, err := DecodeWAV(wav)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Initialize is reference counted, so this is safe next to the microphone.
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	frame := make([]int16, framesPerBuffer*pcm.Channels)
	stream, err := portaudio.OpenDefaultStream(0, pcm.Channels, float64(pcm.SampleRate), framesPerBuffer, frame)
	if err != nil {
		return fmt.Errorf("opening output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("starting output stream: %w", err)
	}
	defer stream.Stop()

	for off := 0; off < len(pcm.Samples); off += len(frame) {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := copy(frame, pcm.Samples[off:])
		clear(frame[n:])

		if err := stream.Write(); err != nil {
			return fmt.Errorf("writing to output stream: %w", err)
		}
	}

	s.logger.Debug("played audio", "samples", len(pcm.Samples), "sampleRate", pcm.SampleRate)
	return nil
}
